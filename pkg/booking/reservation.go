package booking

import (
	"time"
)

// Reservation is the canonical committed output of a draft. It is created
// exactly once per draft at commit time; its identity never changes
// afterwards. Later edits are a separate path outside this pipeline.
type Reservation struct {
	ID      string `json:"reservation_id" yaml:"reservation_id"`
	DraftID string `json:"draft_id" yaml:"draft_id"`

	// Record is the effective record at commit time.
	Record *Record `json:"record" yaml:"record"`

	// Flags carries the advisory findings from the commit-time validation.
	Flags []Flag `json:"flags,omitempty" yaml:"flags,omitempty"`

	// AuditDiff is the structural difference between the machine-extracted
	// first pass and the committed record: what review changed.
	AuditDiff Document `json:"audit_diff,omitempty" yaml:"audit_diff,omitempty"`

	CommittedAt time.Time `json:"committed_at" yaml:"committed_at"`
}

// Clone returns a deep copy of the reservation.
func (r *Reservation) Clone() *Reservation {
	if r == nil {
		return nil
	}
	clone := *r
	clone.Record = r.Record.Clone()
	if r.Flags != nil {
		clone.Flags = append([]Flag(nil), r.Flags...)
	}
	if r.AuditDiff != nil {
		clone.AuditDiff = make(Document, len(r.AuditDiff))
		for k, v := range r.AuditDiff {
			clone.AuditDiff[k] = cloneValue(v)
		}
	}
	return &clone
}
