package resdesk

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voyagekit/resdesk/pkg/booking"
	"github.com/voyagekit/resdesk/pkg/errors"
	"github.com/voyagekit/resdesk/pkg/extract"
	"github.com/voyagekit/resdesk/pkg/logging"
	"github.com/voyagekit/resdesk/pkg/overlay"
)

func fixedClock() time.Time {
	return time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
}

// sequentialIDs returns an id generator yielding id-1, id-2, ...
func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newTestResdesk(t *testing.T, opts ...Option) Resdesk {
	t.Helper()
	base := []Option{
		WithClock(fixedClock),
		WithIDGenerator(sequentialIDs()),
		WithLogger(logging.NewNopLogger()),
	}
	rd, err := New(append(base, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { rd.Close() })
	return rd
}

// completeGuess is an extraction guess that survives validation unmodified.
func completeGuess() *extract.Result {
	return &extract.Result{
		Fields: booking.Document{
			"reservation_no": "NV-20250310-001",
			"channel":        "네이버",
			"product_name":   "서울 시티 투어",
			"usage_date":     "2025-03-15",
			"usage_time":     "14:30",
			"name_ko":        "김민수",
			"phone":          "010-1234-5678",
			"adults":         float64(2),
			"children":       float64(1),
			"total_amount":   float64(150000),
			"adult_unit_price": float64(50000),
			"child_unit_price": float64(50000),
			"payment_status": "결제완료",
		},
		Confidence: 0.93,
	}
}

func TestCreateDraft(t *testing.T) {
	rd := newTestResdesk(t)

	draft, err := rd.CreateDraft(context.Background(), "[네이버예약] 서울 시티 투어")
	require.NoError(t, err)

	assert.Equal(t, "id-1", draft.ID)
	assert.Equal(t, booking.StatusDraft, draft.Status)
	assert.Equal(t, fixedClock(), draft.CreatedAt)

	_, err = rd.CreateDraft(context.Background(), "   ")
	assert.True(t, errors.IsInvalidInput(err))
}

func TestIngestExtractionNormalizes(t *testing.T) {
	rd := newTestResdesk(t)
	ctx := context.Background()

	draft, err := rd.CreateDraft(ctx, "raw text")
	require.NoError(t, err)

	// Stated guest total is wrong; normalization recomputes it from parts.
	draft, err = rd.IngestExtraction(ctx, draft.ID, &extract.Result{
		Fields: booking.Document{
			"total_amount": float64(304),
			"adults":       float64(2),
			"children":     float64(1),
			"infants":      float64(0),
			"guest_count":  float64(1),
		},
		Confidence: 0.8,
	})
	require.NoError(t, err)

	assert.Equal(t, booking.StatusNormalized, draft.Status)
	assert.Equal(t, float64(1), draft.Parsed["guest_count"]) // parsed kept verbatim
	require.NotNil(t, draft.Normalized)
	require.NotNil(t, draft.Normalized.GuestCount)
	assert.Equal(t, 3, *draft.Normalized.GuestCount)

	// Headcount is consistent, so commit must not raise a guest_count error.
	result, err := rd.CommitDraft(ctx, draft.ID)
	require.NoError(t, err)
	for _, issue := range result.Validation.Errors {
		assert.NotEqual(t, "guest_count", issue.Path)
	}
}

func TestIngestExtractionOnlyOnce(t *testing.T) {
	rd := newTestResdesk(t)
	ctx := context.Background()

	draft, err := rd.CreateDraft(ctx, "raw text")
	require.NoError(t, err)
	_, err = rd.IngestExtraction(ctx, draft.ID, completeGuess())
	require.NoError(t, err)

	_, err = rd.IngestExtraction(ctx, draft.ID, completeGuess())
	assert.True(t, errors.IsLifecycle(err))
}

func TestIngestExtractionAfterManualEdit(t *testing.T) {
	rd := newTestResdesk(t)
	ctx := context.Background()

	draft, err := rd.CreateDraft(ctx, "raw text")
	require.NoError(t, err)

	// Manual review can start before the oracle runs.
	draft, err = rd.EditDraft(ctx, draft.ID, booking.Patch{"memo": "수기 메모"})
	require.NoError(t, err)
	require.Equal(t, booking.StatusReviewed, draft.Status)

	// The parsed layer was never written, so a late extraction still lands;
	// the reviewed status is kept.
	draft, err = rd.IngestExtraction(ctx, draft.ID, completeGuess())
	require.NoError(t, err)
	assert.Equal(t, booking.StatusReviewed, draft.Status)
	require.NotNil(t, draft.Normalized)
	assert.NotEmpty(t, draft.Parsed)

	// The manual layer still wins over the ingested guess.
	rec, prov, err := rd.Effective(ctx, draft.ID)
	require.NoError(t, err)
	require.NotNil(t, rec.Memo)
	assert.Equal(t, "수기 메모", *rec.Memo)
	assert.Equal(t, overlay.LayerManual, prov["memo"])

	// Parsed stays write-once.
	_, err = rd.IngestExtraction(ctx, draft.ID, completeGuess())
	assert.True(t, errors.IsLifecycle(err))
}

func TestEditDraftManualWins(t *testing.T) {
	rd := newTestResdesk(t)
	ctx := context.Background()

	draft, err := rd.CreateDraft(ctx, "raw text")
	require.NoError(t, err)
	_, err = rd.IngestExtraction(ctx, draft.ID, &extract.Result{
		Fields:     booking.Document{"payment_status": "입금대기"},
		Confidence: 0.4,
	})
	require.NoError(t, err)

	draft, err = rd.EditDraft(ctx, draft.ID, booking.Patch{"payment_status": "confirmed"})
	require.NoError(t, err)
	assert.Equal(t, booking.StatusReviewed, draft.Status)

	rec, prov, err := rd.Effective(ctx, draft.ID)
	require.NoError(t, err)
	require.NotNil(t, rec.PaymentStatus)
	assert.Equal(t, "confirmed", *rec.PaymentStatus)
	assert.Equal(t, overlay.LayerManual, prov["payment_status"])
}

func TestEditDraftRejectsUnknownFields(t *testing.T) {
	rd := newTestResdesk(t)
	ctx := context.Background()

	draft, err := rd.CreateDraft(ctx, "raw text")
	require.NoError(t, err)

	_, err = rd.EditDraft(ctx, draft.ID, booking.Patch{"pickup_spot": "광화문역"})
	require.Error(t, err)
	assert.True(t, errors.IsInvalidInput(err))

	_, err = rd.EditDraft(ctx, draft.ID, booking.Patch{})
	assert.True(t, errors.IsInvalidInput(err))
}

func TestCommitBlockedByValidationKeepsDraftReviewable(t *testing.T) {
	rd := newTestResdesk(t)
	ctx := context.Background()

	draft, err := rd.CreateDraft(ctx, "raw text")
	require.NoError(t, err)
	// Invalid calendar date normalizes to null; usage_date is required.
	_, err = rd.IngestExtraction(ctx, draft.ID, &extract.Result{
		Fields:     booking.Document{"usage_date": "2025-13-45"},
		Confidence: 0.3,
	})
	require.NoError(t, err)

	result, err := rd.CommitDraft(ctx, draft.ID)
	require.NoError(t, err)
	assert.False(t, result.Committed)
	assert.Nil(t, result.Reservation)

	paths := make([]string, 0, len(result.Validation.Errors))
	for _, issue := range result.Validation.Errors {
		paths = append(paths, issue.Path)
	}
	assert.Contains(t, paths, "usage_date")

	// No state change: the draft is still reviewable and fixable.
	got, err := rd.GetDraft(ctx, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.StatusNormalized, got.Status)
}

func TestCommitProducesReservationWithAuditDiff(t *testing.T) {
	rd := newTestResdesk(t)
	ctx := context.Background()

	var hookedReservation *booking.Reservation
	var hookedFlags []booking.Flag
	rd.OnDraftCommitted(func(_ *booking.Draft, res *booking.Reservation) {
		hookedReservation = res
	})
	rd.OnFlagsRaised(func(_ string, flags []booking.Flag) {
		hookedFlags = flags
	})

	draft, err := rd.CreateDraft(ctx, "raw text")
	require.NoError(t, err)
	_, err = rd.IngestExtraction(ctx, draft.ID, completeGuess())
	require.NoError(t, err)
	_, err = rd.EditDraft(ctx, draft.ID, booking.Patch{"memo": "오전 픽업 요청"})
	require.NoError(t, err)

	result, err := rd.CommitDraft(ctx, draft.ID)
	require.NoError(t, err)
	require.True(t, result.Committed)
	require.NotNil(t, result.Reservation)

	res := result.Reservation
	assert.Equal(t, draft.ID, res.DraftID)
	assert.Equal(t, fixedClock(), res.CommittedAt)
	require.NotNil(t, res.Record.Memo)
	assert.Equal(t, "오전 픽업 요청", *res.Record.Memo)

	// The audit diff records what review changed relative to the raw guess:
	// at minimum the channel canonicalization and the manual memo.
	assert.Contains(t, res.AuditDiff, "channel")
	assert.Contains(t, res.AuditDiff, "memo")

	// Draft is terminally committed.
	got, err := rd.GetDraft(ctx, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.StatusCommitted, got.Status)

	require.NotNil(t, hookedReservation)
	assert.Equal(t, res.ID, hookedReservation.ID)
	assert.Empty(t, hookedFlags) // complete record raises no flags
}

func TestCommitTwiceIsLifecycleError(t *testing.T) {
	rd := newTestResdesk(t)
	ctx := context.Background()

	draft, err := rd.CreateDraft(ctx, "raw text")
	require.NoError(t, err)
	_, err = rd.IngestExtraction(ctx, draft.ID, completeGuess())
	require.NoError(t, err)

	first, err := rd.CommitDraft(ctx, draft.ID)
	require.NoError(t, err)
	require.True(t, first.Committed)

	_, err = rd.CommitDraft(ctx, draft.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrAlreadyCommitted))

	// No duplicate reservation exists for the draft.
	res, err := rd.GetReservation(ctx, first.Reservation.ID)
	require.NoError(t, err)
	assert.Equal(t, draft.ID, res.DraftID)
}

func TestCommitPersistsAdvisoryFlags(t *testing.T) {
	rd := newTestResdesk(t)
	ctx := context.Background()

	guess := completeGuess()
	guess.Fields["usage_date"] = "2025-03-01" // before the fixed clock date
	delete(guess.Fields, "name_ko")
	delete(guess.Fields, "phone")

	draft, err := rd.CreateDraft(ctx, "raw text")
	require.NoError(t, err)
	_, err = rd.IngestExtraction(ctx, draft.ID, guess)
	require.NoError(t, err)

	result, err := rd.CommitDraft(ctx, draft.ID)
	require.NoError(t, err)
	require.True(t, result.Committed)

	assert.Contains(t, result.Reservation.Flags, booking.FlagStaleUsageDate)
	assert.Contains(t, result.Reservation.Flags, booking.FlagMissingName)
	assert.Contains(t, result.Reservation.Flags, booking.FlagMissingContact)

	got, err := rd.GetDraft(ctx, draft.ID)
	require.NoError(t, err)
	assert.Contains(t, got.Flags, booking.FlagStaleUsageDate)
}

func TestRejectDraft(t *testing.T) {
	rd := newTestResdesk(t)
	ctx := context.Background()

	var hookedReason string
	rd.OnDraftRejected(func(_ *booking.Draft, reason string) {
		hookedReason = reason
	})

	draft, err := rd.CreateDraft(ctx, "raw text")
	require.NoError(t, err)

	rejected, err := rd.RejectDraft(ctx, draft.ID, "duplicate request")
	require.NoError(t, err)
	assert.Equal(t, booking.StatusRejected, rejected.Status)
	assert.Equal(t, "duplicate request", rejected.RejectReason)
	assert.Equal(t, "duplicate request", hookedReason)

	_, err = rd.EditDraft(ctx, draft.ID, booking.Patch{"memo": "x"})
	assert.True(t, errors.IsLifecycle(err))

	_, err = rd.RejectDraft(ctx, draft.ID, "again")
	assert.True(t, errors.IsLifecycle(err))
}

// failingExtractor always errors, exercising the degraded oracle path.
type failingExtractor struct{}

func (failingExtractor) Extract(context.Context, string) (*extract.Result, error) {
	return nil, errors.NewOracleError("test", "unreachable", errors.New("dial timeout"))
}

func TestExtractDraftDegradesWhenOracleFails(t *testing.T) {
	rd := newTestResdesk(t, WithExtractor(failingExtractor{}))
	ctx := context.Background()

	draft, err := rd.CreateDraft(ctx, "[직접예약] 경복궁 투어 문의")
	require.NoError(t, err)

	draft, err = rd.ExtractDraft(ctx, draft.ID)
	require.NoError(t, err)

	// Degraded guess: empty fields, zero confidence, draft still progresses.
	assert.Equal(t, booking.StatusNormalized, draft.Status)
	assert.Zero(t, draft.Confidence)

	// The draft remains completable by hand end to end.
	_, err = rd.EditDraft(ctx, draft.ID, booking.Patch{
		"channel":        "direct",
		"product_name":   "경복궁 투어",
		"usage_date":     "2025-03-20",
		"guest_count":    float64(1),
		"adults":         float64(1),
		"children":       float64(0),
		"infants":        float64(0),
		"total_amount":   float64(30000),
		"payment_status": "pending",
		"name_ko":        "박지은",
		"phone":          "010-9876-5432",
	})
	require.NoError(t, err)

	result, err := rd.CommitDraft(ctx, draft.ID)
	require.NoError(t, err)
	assert.True(t, result.Committed)
}

func TestClockDrivesReservationNoSynthesis(t *testing.T) {
	rd := newTestResdesk(t)
	ctx := context.Background()

	draft, err := rd.CreateDraft(ctx, "raw text")
	require.NoError(t, err)

	// No reservation number in the guess: the default normalizer synthesizes
	// one from the injected clock.
	draft, err = rd.IngestExtraction(ctx, draft.ID, &extract.Result{
		Fields:     booking.Document{"name_ko": "김민수"},
		Confidence: 0.5,
	})
	require.NoError(t, err)

	require.NotNil(t, draft.Normalized)
	require.NotNil(t, draft.Normalized.ReservationNo)
	assert.True(t, strings.HasPrefix(*draft.Normalized.ReservationNo, "TMP-20250314090000-"),
		"got %s", *draft.Normalized.ReservationNo)
}

func TestCommitLogsDraftAndReservation(t *testing.T) {
	tl := logging.NewTestLogger(t)
	rd := newTestResdesk(t, WithLogger(tl.Logger))
	ctx := context.Background()

	draft, err := rd.CreateDraft(ctx, "raw text")
	require.NoError(t, err)
	_, err = rd.IngestExtraction(ctx, draft.ID, completeGuess())
	require.NoError(t, err)

	result, err := rd.CommitDraft(ctx, draft.ID)
	require.NoError(t, err)
	require.True(t, result.Committed)

	assert.True(t, tl.ContainsAll("Draft committed", draft.ID, result.Reservation.ID),
		"log output:\n%s", tl.Output())
	tl.AssertContains(t, "draft_id")
}

func TestListDrafts(t *testing.T) {
	rd := newTestResdesk(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := rd.CreateDraft(ctx, fmt.Sprintf("raw text %d", i))
		require.NoError(t, err)
	}

	all, err := rd.ListDrafts(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = rd.ListDrafts(ctx, booking.Status("bogus"), 0)
	assert.True(t, errors.IsInvalidInput(err))
}
