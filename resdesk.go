// Package resdesk manages the lifecycle of reservation drafts: raw booking
// text is captured as a draft, an extraction oracle contributes a first-pass
// guess, normalization and manual review layer corrections on top, and a
// commit produces the canonical reservation with an audit diff of everything
// review changed.
package resdesk

import (
	"context"
	"fmt"

	"github.com/voyagekit/resdesk/pkg/booking"
	"github.com/voyagekit/resdesk/pkg/errors"
	"github.com/voyagekit/resdesk/pkg/extract"
	"github.com/voyagekit/resdesk/pkg/normalize"
	"github.com/voyagekit/resdesk/pkg/overlay"
	"github.com/voyagekit/resdesk/pkg/store"
	"github.com/voyagekit/resdesk/pkg/validate"
)

// Resdesk manages reservation drafts from capture through commit.
type Resdesk interface {
	// CreateDraft captures raw booking text as a new draft.
	CreateDraft(ctx context.Context, rawText string) (*booking.Draft, error)

	// ExtractDraft runs the configured extraction oracle on the draft's raw
	// text and ingests the guess. Oracle failures degrade to an empty guess
	// so the draft stays completable by hand.
	ExtractDraft(ctx context.Context, draftID string) (*booking.Draft, error)

	// IngestExtraction stores an extraction result and normalizes it.
	IngestExtraction(ctx context.Context, draftID string, result *extract.Result) (*booking.Draft, error)

	// EditDraft merges a reviewer's patch into the draft's manual layer.
	EditDraft(ctx context.Context, draftID string, patch booking.Patch) (*booking.Draft, error)

	// CommitDraft validates the effective record and, when valid, produces
	// the reservation. A failed validation is an outcome, not an error.
	CommitDraft(ctx context.Context, draftID string) (*CommitResult, error)

	// RejectDraft terminally rejects a draft without producing a reservation.
	RejectDraft(ctx context.Context, draftID, reason string) (*booking.Draft, error)

	// GetDraft returns a draft by id.
	GetDraft(ctx context.Context, draftID string) (*booking.Draft, error)

	// Effective returns the draft's current effective record and the
	// per-field provenance of the merge that produced it.
	Effective(ctx context.Context, draftID string) (*booking.Record, overlay.Provenance, error)

	// GetReservation returns a committed reservation by id.
	GetReservation(ctx context.Context, id string) (*booking.Reservation, error)

	// ListDrafts returns drafts in a status, newest first.
	ListDrafts(ctx context.Context, status booking.Status, limit int) ([]*booking.Draft, error)

	// OnDraftCommitted registers a callback fired after a successful commit.
	OnDraftCommitted(DraftCommittedHook)

	// OnDraftRejected registers a callback fired after a rejection.
	OnDraftRejected(DraftRejectedHook)

	// OnFlagsRaised registers a callback fired when validation raises flags.
	OnFlagsRaised(FlagsRaisedHook)

	// Close releases the underlying store.
	Close() error
}

// CommitResult is the outcome of a commit attempt. When validation blocks
// the commit, Committed is false, Validation carries every finding, and the
// draft is left unchanged and still reviewable.
type CommitResult struct {
	Committed   bool                 `json:"committed" yaml:"committed"`
	Reservation *booking.Reservation `json:"reservation,omitempty" yaml:"reservation,omitempty"`
	Validation  *validate.Result     `json:"validation" yaml:"validation"`
}

// resdesk is the internal implementation of the Resdesk interface
type resdesk struct {
	config *config
	hooks  *hooks
}

// New creates a new Resdesk instance with the given options
func New(opts ...Option) (Resdesk, error) {
	c := defaultConfig()
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, fmt.Errorf("applying options: %w", err)
		}
	}
	if c.store == nil {
		c.store = store.NewMemory()
	}
	if c.validator == nil {
		c.validator = validate.New(validate.WithClock(c.now))
	}
	if c.normalizer == nil {
		c.normalizer = normalize.New(normalize.WithClock(c.now))
	}

	return &resdesk{config: c, hooks: newHooks()}, nil
}

// GetDraft returns a draft by id
func (r *resdesk) GetDraft(ctx context.Context, draftID string) (*booking.Draft, error) {
	return r.config.store.GetDraft(ctx, draftID)
}

// Effective returns the draft's merged record and field provenance
func (r *resdesk) Effective(ctx context.Context, draftID string) (*booking.Record, overlay.Provenance, error) {
	draft, err := r.config.store.GetDraft(ctx, draftID)
	if err != nil {
		return nil, nil, err
	}
	rec, prov := overlay.Merge(draft.Parsed, draft.Normalized, draft.Manual)
	return rec, prov, nil
}

// GetReservation returns a committed reservation by id
func (r *resdesk) GetReservation(ctx context.Context, id string) (*booking.Reservation, error) {
	return r.config.store.GetReservation(ctx, id)
}

// ListDrafts returns drafts in a status, newest first
func (r *resdesk) ListDrafts(ctx context.Context, status booking.Status, limit int) ([]*booking.Draft, error) {
	if status != "" {
		switch status {
		case booking.StatusDraft, booking.StatusNormalized, booking.StatusReviewed,
			booking.StatusCommitted, booking.StatusRejected:
		default:
			return nil, errors.Wrapf(errors.ErrInvalidInput, "unknown status %q", status)
		}
	}
	return r.config.store.ListDrafts(ctx, status, limit)
}

// Close releases the underlying store
func (r *resdesk) Close() error {
	return r.config.store.Close()
}
