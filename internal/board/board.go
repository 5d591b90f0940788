// Package board keeps the per-class probability rows shown under a verdict.
package board

import (
	"math"
	"sync"

	"github.com/Brownie44l1/petface/internal/classify"
)

// Row is one class label with its latest percentage. The bar width is the
// same percentage.
type Row struct {
	Label   string `json:"label"`
	Percent int    `json:"percent"`
}

// Board holds one row per model class in the model's class order. Updates are
// matched by label, so prediction order does not matter.
type Board struct {
	mu    sync.RWMutex
	rows  []Row
	index map[string]int
}

// New creates a board with a zeroed row for every class. Duplicate labels
// share the first row.
func New(classes []string) *Board {
	b := &Board{index: make(map[string]int, len(classes))}
	for _, label := range classes {
		if _, ok := b.index[label]; ok {
			continue
		}
		b.index[label] = len(b.rows)
		b.rows = append(b.rows, Row{Label: label})
	}
	return b
}

// Update writes each prediction into the row carrying its label. Labels
// without a row are skipped.
func (b *Board) Update(predictions []classify.Prediction) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, p := range predictions {
		i, ok := b.index[p.ClassName]
		if !ok {
			continue
		}
		b.rows[i].Percent = Percent(p.Probability)
	}
}

// Reset zeroes every row.
func (b *Board) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.rows {
		b.rows[i].Percent = 0
	}
}

// Rows returns a copy of the rows.
func (b *Board) Rows() []Row {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Row, len(b.rows))
	copy(out, b.rows)
	return out
}

// Percent converts a probability to a whole percentage clamped to 0..100.
func Percent(probability float64) int {
	p := int(math.Round(probability * 100))
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
