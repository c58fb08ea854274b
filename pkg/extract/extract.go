// Package extract is the boundary to the extraction oracle: the external
// component that turns raw booking text into a first-pass structured guess.
// The rest of the pipeline treats the oracle as opaque and must tolerate
// partially-populated or entirely-empty guesses.
package extract

import (
	"context"

	"github.com/voyagekit/resdesk/pkg/booking"
)

// Result is the oracle's guess for one raw text: a partial document of field
// guesses, a self-reported confidence in [0, 1], and free-form notes.
type Result struct {
	Fields     booking.Document `json:"fields" yaml:"fields"`
	Confidence float64          `json:"confidence" yaml:"confidence"`
	Notes      string           `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// Extractor produces a structured guess from raw booking text. Retry policy
// and timeouts belong to the caller; implementations respect ctx.
type Extractor interface {
	Extract(ctx context.Context, rawText string) (*Result, error)
}

// Fallback is the degraded-mode extractor used when the oracle is
// unavailable. It never fails: the guess is empty with zero confidence, so a
// draft stays completable by hand end to end.
type Fallback struct{}

// Extract implements Extractor.
func (Fallback) Extract(_ context.Context, _ string) (*Result, error) {
	return &Result{
		Fields:     booking.Document{},
		Confidence: 0,
		Notes:      "extraction unavailable; fields must be filled manually",
	}, nil
}

// clampConfidence bounds an oracle-reported confidence to [0, 1].
func clampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}
