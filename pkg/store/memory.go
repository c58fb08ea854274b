package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/voyagekit/resdesk/pkg/booking"
	"github.com/voyagekit/resdesk/pkg/constants"
	"github.com/voyagekit/resdesk/pkg/errors"
)

// Memory is an in-process Store. Drafts and reservations are deep-copied on
// the way in and out, so callers can never alias stored state.
type Memory struct {
	mu           sync.RWMutex
	drafts       map[string]*booking.Draft
	reservations map[string]*booking.Reservation
	byDraft      map[string]string // draft id -> reservation id
	now          func() time.Time
}

// MemoryOption configures a Memory store.
type MemoryOption func(*Memory)

// WithMemoryClock injects the clock used for updated_at stamps.
func WithMemoryClock(now func() time.Time) MemoryOption {
	return func(m *Memory) {
		m.now = now
	}
}

// NewMemory creates an empty in-memory store.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		drafts:       make(map[string]*booking.Draft),
		reservations: make(map[string]*booking.Reservation),
		byDraft:      make(map[string]string),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// CreateDraft implements Store.
func (m *Memory) CreateDraft(_ context.Context, draft *booking.Draft) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.drafts[draft.ID]; exists {
		return errors.Wrapf(errors.ErrAlreadyExists, "draft %s", draft.ID)
	}
	m.drafts[draft.ID] = draft.Clone()
	return nil
}

// GetDraft implements Store.
func (m *Memory) GetDraft(_ context.Context, id string) (*booking.Draft, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	draft, ok := m.drafts[id]
	if !ok {
		return nil, errors.NewNotFoundError("draft", id)
	}
	return draft.Clone(), nil
}

// SaveParsed implements Store.
func (m *Memory) SaveParsed(_ context.Context, id string, parsed booking.Document, confidence float64, notes string) error {
	return m.update(id, func(d *booking.Draft) {
		d.Parsed = cloneDocument(parsed)
		d.Confidence = confidence
		d.Notes = notes
	})
}

// SaveNormalized implements Store.
func (m *Memory) SaveNormalized(_ context.Context, id string, rec *booking.Record) error {
	return m.update(id, func(d *booking.Draft) {
		d.Normalized = rec.Clone()
	})
}

// SaveManual implements Store.
func (m *Memory) SaveManual(_ context.Context, id string, manual booking.Patch) error {
	return m.update(id, func(d *booking.Draft) {
		d.Manual = cloneDocument(manual)
	})
}

// AppendFlags implements Store.
func (m *Memory) AppendFlags(_ context.Context, id string, flags []booking.Flag) error {
	return m.update(id, func(d *booking.Draft) {
		d.AppendFlags(flags)
	})
}

// SwapStatus implements Store.
func (m *Memory) SwapStatus(_ context.Context, id string, from, to booking.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	draft, ok := m.drafts[id]
	if !ok {
		return errors.NewNotFoundError("draft", id)
	}
	if draft.Status != from {
		return errors.Wrapf(errors.ErrInvalidState, "draft %s is %q, expected %q", id, draft.Status, from)
	}
	draft.Status = to
	draft.UpdatedAt = m.now().UTC()
	return nil
}

// RejectDraft implements Store.
func (m *Memory) RejectDraft(_ context.Context, id string, from booking.Status, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	draft, ok := m.drafts[id]
	if !ok {
		return errors.NewNotFoundError("draft", id)
	}
	if draft.Status != from {
		return errors.Wrapf(errors.ErrInvalidState, "draft %s is %q, expected %q", id, draft.Status, from)
	}
	draft.Status = booking.StatusRejected
	draft.RejectReason = reason
	draft.UpdatedAt = m.now().UTC()
	return nil
}

// SaveReservation implements Store.
func (m *Memory) SaveReservation(_ context.Context, res *booking.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.reservations[res.ID]; exists {
		return errors.Wrapf(errors.ErrAlreadyExists, "reservation %s", res.ID)
	}
	if _, exists := m.byDraft[res.DraftID]; exists {
		return errors.Wrapf(errors.ErrAlreadyExists, "reservation for draft %s", res.DraftID)
	}
	m.reservations[res.ID] = res.Clone()
	m.byDraft[res.DraftID] = res.ID
	return nil
}

// GetReservation implements Store.
func (m *Memory) GetReservation(_ context.Context, id string) (*booking.Reservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	res, ok := m.reservations[id]
	if !ok {
		return nil, errors.NewNotFoundError("reservation", id)
	}
	return res.Clone(), nil
}

// GetReservationByDraft implements Store.
func (m *Memory) GetReservationByDraft(_ context.Context, draftID string) (*booking.Reservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byDraft[draftID]
	if !ok {
		return nil, errors.NewNotFoundError("reservation for draft", draftID)
	}
	return m.reservations[id].Clone(), nil
}

// ListDrafts implements Store.
func (m *Memory) ListDrafts(_ context.Context, status booking.Status, limit int) ([]*booking.Draft, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if limit <= 0 {
		limit = constants.DefaultListLimit
	}

	drafts := make([]*booking.Draft, 0, len(m.drafts))
	for _, d := range m.drafts {
		if status != "" && d.Status != status {
			continue
		}
		drafts = append(drafts, d.Clone())
	}
	sort.Slice(drafts, func(i, j int) bool {
		if !drafts[i].CreatedAt.Equal(drafts[j].CreatedAt) {
			return drafts[i].CreatedAt.After(drafts[j].CreatedAt)
		}
		return drafts[i].ID < drafts[j].ID
	})
	if len(drafts) > limit {
		drafts = drafts[:limit]
	}
	return drafts, nil
}

// Close implements Store.
func (m *Memory) Close() error {
	return nil
}

func (m *Memory) update(id string, fn func(*booking.Draft)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	draft, ok := m.drafts[id]
	if !ok {
		return errors.NewNotFoundError("draft", id)
	}
	fn(draft)
	draft.UpdatedAt = m.now().UTC()
	return nil
}

// cloneDocument deep-copies a JSON-shaped map.
func cloneDocument(doc map[string]any) map[string]any {
	if doc == nil {
		return nil
	}
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		out[k] = cloneDocValue(v)
	}
	return out
}

func cloneDocValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneDocument(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneDocValue(item)
		}
		return out
	default:
		return v
	}
}
