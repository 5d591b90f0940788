package classify

import "fmt"

// Headline is the emoji, title and one-line description shown for a Result.
type Headline struct {
	Emoji       string `json:"emoji"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Describe renders the headline for r.
func Describe(r Result) Headline {
	switch r.Kind {
	case KindDog:
		return Headline{
			Emoji:       "🐶",
			Title:       "강아지상 확률 높음!",
			Description: fmt.Sprintf("부드럽고 친근한 인상이 강해요 · 확률 %s%%", percent(r.Score)),
		}
	case KindCat:
		return Headline{
			Emoji:       "🐱",
			Title:       "고양이상 확률 높음!",
			Description: fmt.Sprintf("차분하고 또렷한 인상이 돋보여요 · 확률 %s%%", percent(r.Score)),
		}
	default:
		return Headline{
			Emoji:       "✨",
			Title:       "믹스 매력형",
			Description: "강아지/고양이 느낌이 비슷해요. 다른 사진도 시도해 보세요.",
		}
	}
}

func percent(score float64) string {
	return fmt.Sprintf("%.1f", score*100)
}
