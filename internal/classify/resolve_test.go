package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/unicode/norm"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name  string
		preds []Prediction
		want  Result
	}{
		{
			name:  "confident dog",
			preds: []Prediction{{"dog", 0.92}, {"cat", 0.08}},
			want:  Result{Kind: KindDog, Score: 0.92},
		},
		{
			name:  "narrow margin is mixed",
			preds: []Prediction{{"cat", 0.55}, {"dog", 0.45}},
			want:  Result{Kind: KindMixed, Score: 0.55},
		},
		{
			name:  "korean dog label",
			preds: []Prediction{{"강아지", 0.7}, {"cat", 0.3}},
			want:  Result{Kind: KindDog, Score: 0.7},
		},
		{
			name:  "single entry skips thresholds",
			preds: []Prediction{{"cat", 0.99}},
			want:  Result{Kind: KindCat, Score: 0.99},
		},
		{
			name:  "empty",
			preds: nil,
			want:  Result{Kind: KindMixed, Score: 0},
		},
		{
			name:  "confident cat",
			preds: []Prediction{{"고양이", 0.81}, {"강아지", 0.19}},
			want:  Result{Kind: KindCat, Score: 0.81},
		},
		{
			name:  "low confidence with wide margin",
			preds: []Prediction{{"dog", 0.5}, {"cat", 0.2}, {"fox", 0.3}},
			want:  Result{Kind: KindMixed, Score: 0.5},
		},
		{
			name:  "confidence floor is inclusive",
			preds: []Prediction{{"dog", 0.6}, {"cat", 0.4}},
			want:  Result{Kind: KindDog, Score: 0.6},
		},
		{
			name:  "margin just under floor",
			preds: []Prediction{{"Dog face", 0.7}, {"cat", 0.59}},
			want:  Result{Kind: KindMixed, Score: 0.7},
		},
		{
			name:  "margin just over floor",
			preds: []Prediction{{"Dog face", 0.7}, {"cat", 0.57}},
			want:  Result{Kind: KindDog, Score: 0.7},
		},
		{
			name:  "unsorted input",
			preds: []Prediction{{"cat", 0.1}, {"hotdog", 0.05}, {"DOG", 0.85}},
			want:  Result{Kind: KindDog, Score: 0.85},
		},
		{
			name:  "tied top is mixed",
			preds: []Prediction{{"dog", 0.5}, {"cat", 0.5}},
			want:  Result{Kind: KindMixed, Score: 0.5},
		},
		{
			// A lone class is reported confidently even at low probability.
			name:  "single low entry",
			preds: []Prediction{{"dog", 0.2}},
			want:  Result{Kind: KindDog, Score: 0.2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.preds))
		})
	}
}

func TestResolveIgnoresInputOrder(t *testing.T) {
	base := []Prediction{{"cat", 0.15}, {"dog", 0.7}, {"rabbit", 0.1}, {"fox", 0.05}}
	want := Resolve(base)

	for _, perm := range permutations(base) {
		assert.Equal(t, want, Resolve(perm), "order %v", perm)
	}
}

func TestResolveDoesNotMutateInput(t *testing.T) {
	preds := []Prediction{{"cat", 0.1}, {"dog", 0.9}}
	Resolve(preds)
	assert.Equal(t, []Prediction{{"cat", 0.1}, {"dog", 0.9}}, preds)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindDog, KindOf("DOG"))
	assert.Equal(t, KindDog, KindOf("Class 1 - Dog"))
	assert.Equal(t, KindDog, KindOf("강아지상"))
	assert.Equal(t, KindDog, KindOf(norm.NFD.String("강아지")))
	assert.Equal(t, KindCat, KindOf("고양이상"))
	assert.Equal(t, KindCat, KindOf(""))
}

func permutations(in []Prediction) [][]Prediction {
	if len(in) <= 1 {
		return [][]Prediction{append([]Prediction(nil), in...)}
	}
	var out [][]Prediction
	for i := range in {
		rest := make([]Prediction, 0, len(in)-1)
		rest = append(rest, in[:i]...)
		rest = append(rest, in[i+1:]...)
		for _, p := range permutations(rest) {
			out = append(out, append([]Prediction{in[i]}, p...))
		}
	}
	return out
}
