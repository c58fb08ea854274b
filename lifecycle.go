package resdesk

import (
	"context"
	"strings"

	"github.com/voyagekit/resdesk/pkg/booking"
	"github.com/voyagekit/resdesk/pkg/constants"
	"github.com/voyagekit/resdesk/pkg/diff"
	"github.com/voyagekit/resdesk/pkg/errors"
	"github.com/voyagekit/resdesk/pkg/extract"
	"github.com/voyagekit/resdesk/pkg/overlay"
)

// CreateDraft captures raw booking text as a new draft. Invoking the
// extraction oracle is a separate step; the new draft holds only the text.
func (r *resdesk) CreateDraft(ctx context.Context, rawText string) (*booking.Draft, error) {
	if strings.TrimSpace(rawText) == "" {
		return nil, errors.Wrap(errors.ErrInvalidInput, "raw text is empty")
	}
	if len(rawText) > constants.MaxRawTextBytes {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "raw text exceeds %d bytes", constants.MaxRawTextBytes)
	}

	now := r.config.now().UTC()
	draft := &booking.Draft{
		ID:        r.config.newID(),
		RawText:   rawText,
		Status:    booking.StatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.config.store.CreateDraft(ctx, draft); err != nil {
		return nil, err
	}

	r.config.log.Info().Str("draft_id", draft.ID).Msg("Draft created")
	return r.config.store.GetDraft(ctx, draft.ID)
}

// ExtractDraft runs the configured oracle over the draft's raw text and
// ingests the result. When the oracle fails the guess degrades to empty with
// zero confidence rather than failing the draft.
func (r *resdesk) ExtractDraft(ctx context.Context, draftID string) (*booking.Draft, error) {
	draft, err := r.config.store.GetDraft(ctx, draftID)
	if err != nil {
		return nil, err
	}

	result, err := r.config.extractor.Extract(ctx, draft.RawText)
	if err != nil {
		r.config.log.Warn().Err(err).Str("draft_id", draftID).Msg("Extraction failed, degrading to empty guess")
		result, _ = extract.Fallback{}.Extract(ctx, draft.RawText)
	}
	return r.IngestExtraction(ctx, draftID, result)
}

// IngestExtraction stores the oracle's guess as the draft's parsed layer,
// runs the normalizer over it, and moves an untouched draft to normalized.
// The parsed layer is written exactly once: re-ingesting is a lifecycle
// error. A draft already under manual review accepts the guess too and keeps
// its reviewed status, so a late-running oracle never blocks on the reviewer.
func (r *resdesk) IngestExtraction(ctx context.Context, draftID string, result *extract.Result) (*booking.Draft, error) {
	if result == nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, "extraction result is nil")
	}

	draft, err := r.config.store.GetDraft(ctx, draftID)
	if err != nil {
		return nil, err
	}
	if draft.Status.IsTerminal() {
		return nil, errors.NewLifecycleError(draftID, draft.Status.String(), "ingest extraction into")
	}
	if draft.Parsed != nil {
		return nil, errors.NewLifecycleError(draftID, draft.Status.String(), "re-ingest extraction into")
	}

	parsed := result.Fields
	if parsed == nil {
		parsed = booking.Document{}
	}
	confidence := result.Confidence
	if confidence < 0 {
		confidence = 0
	} else if confidence > 1 {
		confidence = 1
	}

	if err := r.config.store.SaveParsed(ctx, draftID, parsed, confidence, result.Notes); err != nil {
		return nil, err
	}
	if err := r.config.store.SaveNormalized(ctx, draftID, r.config.normalizer.Normalize(parsed)); err != nil {
		return nil, err
	}
	if draft.Status == booking.StatusDraft {
		if err := r.config.store.SwapStatus(ctx, draftID, booking.StatusDraft, booking.StatusNormalized); err != nil {
			return nil, err
		}
	}

	r.config.log.Info().
		Str("draft_id", draftID).
		Float64("confidence", confidence).
		Int("field_count", len(parsed)).
		Msg("Extraction ingested")
	return r.config.store.GetDraft(ctx, draftID)
}

// EditDraft merges the patch into the manual layer by shallow key overwrite.
// Validation deliberately does not run here, so partial edits are never
// rejected mid-review. Concurrent edits are last-writer-wins per field.
func (r *resdesk) EditDraft(ctx context.Context, draftID string, patch booking.Patch) (*booking.Draft, error) {
	if len(patch) == 0 {
		return nil, errors.Wrap(errors.ErrInvalidInput, "patch is empty")
	}
	for key := range patch {
		if !booking.IsRecognizedField(key) {
			return nil, errors.NewPatchError(key, "not a recognized field")
		}
	}

	draft, err := r.config.store.GetDraft(ctx, draftID)
	if err != nil {
		return nil, err
	}
	if draft.Status.IsTerminal() {
		return nil, errors.NewLifecycleError(draftID, draft.Status.String(), "edit")
	}

	manual := draft.Manual
	if manual == nil {
		manual = booking.Patch{}
	}
	for key, val := range patch {
		manual[key] = val
	}

	if err := r.config.store.SaveManual(ctx, draftID, manual); err != nil {
		return nil, err
	}
	if draft.Status != booking.StatusReviewed {
		if err := r.config.store.SwapStatus(ctx, draftID, draft.Status, booking.StatusReviewed); err != nil {
			return nil, err
		}
	}

	r.config.log.Info().Str("draft_id", draftID).Int("patched_fields", len(patch)).Msg("Manual edit applied")
	return r.config.store.GetDraft(ctx, draftID)
}

// CommitDraft validates the effective record and, when valid, produces the
// canonical reservation. The status swap is the critical section: only the
// caller that wins the check-and-set persists a reservation, so a draft can
// never commit twice.
func (r *resdesk) CommitDraft(ctx context.Context, draftID string) (*CommitResult, error) {
	draft, err := r.config.store.GetDraft(ctx, draftID)
	if err != nil {
		return nil, err
	}
	if draft.Status.IsTerminal() {
		return nil, errors.NewLifecycleError(draftID, draft.Status.String(), "commit")
	}

	effective, prov := overlay.Merge(draft.Parsed, draft.Normalized, draft.Manual)
	validation := r.config.validator.Validate(effective)
	if !validation.Valid {
		r.config.log.Info().
			Str("draft_id", draftID).
			Int("error_count", len(validation.Errors)).
			Msg("Commit blocked by validation")
		return &CommitResult{Committed: false, Validation: validation}, nil
	}

	if err := r.config.store.SwapStatus(ctx, draftID, draft.Status, booking.StatusCommitted); err != nil {
		if errors.Is(err, errors.ErrInvalidState) {
			current, getErr := r.config.store.GetDraft(ctx, draftID)
			if getErr == nil {
				return nil, errors.NewLifecycleError(draftID, current.Status.String(), "commit")
			}
		}
		return nil, err
	}

	if len(validation.Flags) > 0 {
		if err := r.config.store.AppendFlags(ctx, draftID, validation.Flags); err != nil {
			return nil, err
		}
	}

	audit := diff.Compute(draft.Parsed, effective.Document())
	reservation := &booking.Reservation{
		ID:          r.config.newID(),
		DraftID:     draftID,
		Record:      effective,
		Flags:       validation.Flags,
		AuditDiff:   audit.Document(),
		CommittedAt: r.config.now().UTC(),
	}
	if err := r.config.store.SaveReservation(ctx, reservation); err != nil {
		return nil, errors.Wrap(err, "draft committed but reservation not persisted")
	}

	committed, err := r.config.store.GetDraft(ctx, draftID)
	if err != nil {
		return nil, err
	}

	r.config.log.Info().
		Str("draft_id", draftID).
		Str("reservation_id", reservation.ID).
		Int("flag_count", len(validation.Flags)).
		Int("provenance_fields", len(prov)).
		Msg("Draft committed")

	r.hooks.triggerFlags(draftID, validation.Flags)
	r.hooks.triggerCommitted(committed, reservation)

	return &CommitResult{Committed: true, Reservation: reservation, Validation: validation}, nil
}

// RejectDraft terminally rejects a draft. No reservation is produced and the
// draft stays queryable for audit.
func (r *resdesk) RejectDraft(ctx context.Context, draftID, reason string) (*booking.Draft, error) {
	draft, err := r.config.store.GetDraft(ctx, draftID)
	if err != nil {
		return nil, err
	}
	if draft.Status.IsTerminal() {
		return nil, errors.NewLifecycleError(draftID, draft.Status.String(), "reject")
	}

	if err := r.config.store.RejectDraft(ctx, draftID, draft.Status, reason); err != nil {
		return nil, err
	}

	rejected, err := r.config.store.GetDraft(ctx, draftID)
	if err != nil {
		return nil, err
	}

	r.config.log.Info().Str("draft_id", draftID).Str("reason", reason).Msg("Draft rejected")
	r.hooks.triggerRejected(rejected, reason)
	return rejected, nil
}
