package resdesk

import (
	"sync"

	"github.com/voyagekit/resdesk/pkg/booking"
)

// Hook function types for draft lifecycle events
type (
	// DraftCommittedHook is called after a draft commits successfully
	DraftCommittedHook func(draft *booking.Draft, reservation *booking.Reservation)

	// DraftRejectedHook is called after a draft is rejected
	DraftRejectedHook func(draft *booking.Draft, reason string)

	// FlagsRaisedHook is called when a commit-time validation raises
	// advisory flags
	FlagsRaisedHook func(draftID string, flags []booking.Flag)
)

// hooks manages event callbacks for draft lifecycle changes
type hooks struct {
	mu          sync.RWMutex
	onCommitted []DraftCommittedHook
	onRejected  []DraftRejectedHook
	onFlags     []FlagsRaisedHook
}

// newHooks creates a new hooks instance
func newHooks() *hooks {
	return &hooks{}
}

// OnDraftCommitted registers a callback fired after a successful commit
func (r *resdesk) OnDraftCommitted(fn DraftCommittedHook) {
	r.hooks.mu.Lock()
	defer r.hooks.mu.Unlock()
	r.hooks.onCommitted = append(r.hooks.onCommitted, fn)
}

// OnDraftRejected registers a callback fired after a rejection
func (r *resdesk) OnDraftRejected(fn DraftRejectedHook) {
	r.hooks.mu.Lock()
	defer r.hooks.mu.Unlock()
	r.hooks.onRejected = append(r.hooks.onRejected, fn)
}

// OnFlagsRaised registers a callback fired when validation raises flags
func (r *resdesk) OnFlagsRaised(fn FlagsRaisedHook) {
	r.hooks.mu.Lock()
	defer r.hooks.mu.Unlock()
	r.hooks.onFlags = append(r.hooks.onFlags, fn)
}

// triggerCommitted fires the committed hooks synchronously
func (h *hooks) triggerCommitted(draft *booking.Draft, reservation *booking.Reservation) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, hook := range h.onCommitted {
		hook(draft, reservation)
	}
}

// triggerRejected fires the rejected hooks synchronously
func (h *hooks) triggerRejected(draft *booking.Draft, reason string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, hook := range h.onRejected {
		hook(draft, reason)
	}
}

// triggerFlags fires the flag hooks synchronously
func (h *hooks) triggerFlags(draftID string, flags []booking.Flag) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(flags) == 0 {
		return
	}
	for _, hook := range h.onFlags {
		hook(draftID, flags)
	}
}
