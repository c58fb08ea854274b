// Package store persists drafts and committed reservations. Two backends are
// provided: an in-memory store for tests and embedding, and a SQLite store
// for durable single-node deployments. Both keep the draft's three document
// layers verbatim and treat the flags list as append-only.
package store

import (
	"context"

	"github.com/voyagekit/resdesk/pkg/booking"
)

// Store is the persistence boundary for the draft lifecycle.
//
// SwapStatus is a check-and-set: it moves a draft from one status to another
// only when the draft is still in the expected status, and fails with
// ErrInvalidState otherwise. Commit relies on this as its critical section.
type Store interface {
	// CreateDraft persists a newly created draft.
	CreateDraft(ctx context.Context, draft *booking.Draft) error

	// GetDraft returns the draft with the given id.
	GetDraft(ctx context.Context, id string) (*booking.Draft, error)

	// SaveParsed stores the extraction oracle's raw guess along with its
	// confidence and notes. The parsed layer is written once and never
	// rewritten afterwards.
	SaveParsed(ctx context.Context, id string, parsed booking.Document, confidence float64, notes string) error

	// SaveNormalized stores the normalized layer.
	SaveNormalized(ctx context.Context, id string, rec *booking.Record) error

	// SaveManual stores the accumulated manual patch layer.
	SaveManual(ctx context.Context, id string, manual booking.Patch) error

	// AppendFlags adds validation flags to the draft, skipping duplicates.
	AppendFlags(ctx context.Context, id string, flags []booking.Flag) error

	// SwapStatus atomically moves the draft from one status to another.
	SwapStatus(ctx context.Context, id string, from, to booking.Status) error

	// RejectDraft atomically moves the draft from the given status to
	// rejected and records the reason.
	RejectDraft(ctx context.Context, id string, from booking.Status, reason string) error

	// SaveReservation persists a committed reservation.
	SaveReservation(ctx context.Context, res *booking.Reservation) error

	// GetReservation returns the reservation with the given id.
	GetReservation(ctx context.Context, id string) (*booking.Reservation, error)

	// GetReservationByDraft returns the reservation committed from a draft.
	GetReservationByDraft(ctx context.Context, draftID string) (*booking.Reservation, error)

	// ListDrafts returns drafts in a status, newest first. An empty status
	// lists every draft; limit <= 0 applies the default page size.
	ListDrafts(ctx context.Context, status booking.Status, limit int) ([]*booking.Draft, error)

	// Close releases backend resources.
	Close() error
}
