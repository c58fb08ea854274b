package booking

import (
	"time"
)

// Status is the lifecycle state of a Draft.
type Status string

// String returns the string representation of a Status.
func (s Status) String() string {
	return string(s)
}

// Draft lifecycle states. committed and rejected are terminal.
const (
	StatusDraft      Status = "draft"      // raw text captured, nothing parsed yet
	StatusNormalized Status = "normalized" // extraction ingested and normalized
	StatusReviewed   Status = "reviewed"   // at least one manual edit applied
	StatusCommitted  Status = "committed"  // reservation produced; kept for audit
	StatusRejected   Status = "rejected"   // terminal, no reservation produced
)

// IsTerminal reports whether no further lifecycle transitions are allowed.
func (s Status) IsTerminal() bool {
	return s == StatusCommitted || s == StatusRejected
}

// Flag is a non-blocking advisory raised during validation. Flags never
// prevent commit but are persisted with the draft for reviewer attention.
type Flag string

// String returns the string representation of a Flag.
func (f Flag) String() string {
	return string(f)
}

// Advisory flags.
const (
	FlagMissingName        Flag = "missing_name"         // neither Korean name nor Latin first name
	FlagMissingContact     Flag = "missing_contact"      // neither email nor phone
	FlagMissingProduct     Flag = "missing_product"      // no product name
	FlagMissingUsageDate   Flag = "missing_usage_date"   // no usage date
	FlagPriceMismatch      Flag = "price_mismatch"       // total vs per-person amounts beyond tolerance
	FlagStaleUsageDate     Flag = "stale_usage_date"     // usage date before today
	FlagShortReservationNo Flag = "short_reservation_no" // reservation number under minimum length
)

// Draft is the mutable working record for a reservation under extraction and
// review. parsed and normalized are complete documents once set; manual is a
// strict field-level subset holding only reviewer overrides.
type Draft struct {
	ID      string `json:"draft_id" yaml:"draft_id"`
	RawText string `json:"raw_text" yaml:"raw_text"`

	// Parsed preserves the extraction oracle's output verbatim, raw vendor
	// text and all; it is never rewritten and anchors the commit audit diff.
	Parsed     Document `json:"parsed,omitempty" yaml:"parsed,omitempty"`
	Normalized *Record  `json:"normalized,omitempty" yaml:"normalized,omitempty"`
	Manual     Patch    `json:"manual,omitempty" yaml:"manual,omitempty"`

	// Confidence and Notes are the extraction oracle's self-report.
	Confidence float64 `json:"confidence" yaml:"confidence"`
	Notes      string  `json:"notes,omitempty" yaml:"notes,omitempty"`

	// Flags is append-only: validation findings accumulate across runs.
	Flags []Flag `json:"flags,omitempty" yaml:"flags,omitempty"`

	Status       Status `json:"status" yaml:"status"`
	RejectReason string `json:"reject_reason,omitempty" yaml:"reject_reason,omitempty"`

	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// Clone returns a deep copy of the draft.
func (d *Draft) Clone() *Draft {
	if d == nil {
		return nil
	}
	clone := *d
	if d.Parsed != nil {
		clone.Parsed = make(Document, len(d.Parsed))
		for k, v := range d.Parsed {
			clone.Parsed[k] = cloneValue(v)
		}
	}
	clone.Normalized = d.Normalized.Clone()
	if d.Manual != nil {
		clone.Manual = make(Patch, len(d.Manual))
		for k, v := range d.Manual {
			clone.Manual[k] = cloneValue(v)
		}
	}
	if d.Flags != nil {
		clone.Flags = append([]Flag(nil), d.Flags...)
	}
	return &clone
}

// cloneValue deep-copies a JSON-shaped value.
func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = cloneValue(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = cloneValue(val)
		}
		return out
	default:
		return v
	}
}

// AppendFlags adds flags not already present, preserving the append-only
// contract without duplicating repeat findings.
func (d *Draft) AppendFlags(flags []Flag) {
	seen := make(map[Flag]bool, len(d.Flags))
	for _, f := range d.Flags {
		seen[f] = true
	}
	for _, f := range flags {
		if !seen[f] {
			d.Flags = append(d.Flags, f)
			seen[f] = true
		}
	}
}
