// Package classify decides whether a set of model predictions reads as a
// dog face, a cat face, or neither.
package classify

// Kind is the verdict reported for one inference.
type Kind string

const (
	KindDog   Kind = "dog"
	KindCat   Kind = "cat"
	KindMixed Kind = "mixed"
)

// Prediction is one class label paired with its model probability.
type Prediction struct {
	ClassName   string  `json:"className"`
	Probability float64 `json:"probability"`
}

// Result is the verdict derived from a prediction set.
type Result struct {
	Kind  Kind    `json:"kind"`
	Score float64 `json:"score"`
}

// Undecided is the result shown before any inference has completed.
var Undecided = Result{Kind: KindMixed}
