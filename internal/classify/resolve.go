package classify

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

const (
	// MinConfidence is the lowest top probability that can produce a
	// Dog or Cat verdict.
	MinConfidence = 0.6
	// MinMargin is the smallest lead the top class needs over the runner-up.
	MinMargin = 0.12
)

var dogMarkers = []string{"dog", "강아지"}

// Resolve picks the verdict for one prediction set. It never fails: an empty
// set is Mixed with score 0, and a single entry is mapped straight from its
// label without the confidence and margin checks.
func Resolve(predictions []Prediction) Result {
	sorted := slices.Clone(predictions)
	slices.SortStableFunc(sorted, func(a, b Prediction) int {
		switch {
		case a.Probability > b.Probability:
			return -1
		case a.Probability < b.Probability:
			return 1
		}
		return 0
	})

	switch len(sorted) {
	case 0:
		return Undecided
	case 1:
		return Result{Kind: KindOf(sorted[0].ClassName), Score: sorted[0].Probability}
	}

	top, second := sorted[0], sorted[1]
	if top.Probability < MinConfidence || top.Probability-second.Probability < MinMargin {
		return Result{Kind: KindMixed, Score: top.Probability}
	}
	return Result{Kind: KindOf(top.ClassName), Score: top.Probability}
}

// KindOf maps a class label to Dog when it mentions a dog, Cat otherwise.
func KindOf(label string) Kind {
	// Casers keep state, so each call gets its own.
	name := cases.Lower(language.Und).String(norm.NFC.String(label))
	for _, marker := range dogMarkers {
		if strings.Contains(name, marker) {
			return KindDog
		}
	}
	return KindCat
}
