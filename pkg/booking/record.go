// Package booking defines the canonical reservation data model shared by the
// reconciliation pipeline: the partial Record shape produced by extraction,
// the Draft working entity, the committed Reservation, and the restricted
// vocabularies for channels and payment statuses.
package booking

import (
	"encoding/json"
)

// Document is the serialization-shaped view of a record: a finite, acyclic
// JSON-style tree. The merger and the diff engine operate on Documents so
// they stay generic over the record shape.
type Document = map[string]any

// Patch is a sparse Document: only the fields a reviewer explicitly changed
// are present. Absence of a key is not a patch.
type Patch = map[string]any

// AssignOnSave is the placeholder a reviewer (or an upstream system) may put
// into a field to mean "the persistence layer assigns this at write time".
// The merger drops it from the effective record; it must never survive into
// validation or a committed Reservation.
const AssignOnSave = "__ASSIGN_ON_SAVE__"

// Record is the recognized reservation shape. Every field is optional: a nil
// pointer means the field is absent (unknown), which is distinct from a zero
// value. Unrecognized extractor keys are preserved in Extra but carry no
// meaning for the pipeline.
type Record struct {
	ReservationNo *string `json:"reservation_no,omitempty" yaml:"reservation_no,omitempty"`
	Channel       *string `json:"channel,omitempty" yaml:"channel,omitempty"`
	ProductName   *string `json:"product_name,omitempty" yaml:"product_name,omitempty"`
	OptionName    *string `json:"option_name,omitempty" yaml:"option_name,omitempty"`

	UsageDate *string `json:"usage_date,omitempty" yaml:"usage_date,omitempty"` // YYYY-MM-DD
	UsageTime *string `json:"usage_time,omitempty" yaml:"usage_time,omitempty"` // HH:MM

	NameKo    *string `json:"name_ko,omitempty" yaml:"name_ko,omitempty"`
	FirstName *string `json:"first_name,omitempty" yaml:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty" yaml:"last_name,omitempty"`
	Email     *string `json:"email,omitempty" yaml:"email,omitempty"`
	Phone     *string `json:"phone,omitempty" yaml:"phone,omitempty"`

	Adults     *int `json:"adults,omitempty" yaml:"adults,omitempty"`
	Children   *int `json:"children,omitempty" yaml:"children,omitempty"`
	Infants    *int `json:"infants,omitempty" yaml:"infants,omitempty"`
	GuestCount *int `json:"guest_count,omitempty" yaml:"guest_count,omitempty"`

	AdultUnitPrice *float64 `json:"adult_unit_price,omitempty" yaml:"adult_unit_price,omitempty"`
	ChildUnitPrice *float64 `json:"child_unit_price,omitempty" yaml:"child_unit_price,omitempty"`
	TotalAmount    *float64 `json:"total_amount,omitempty" yaml:"total_amount,omitempty"`
	Currency       *string  `json:"currency,omitempty" yaml:"currency,omitempty"`

	PaymentStatus *string `json:"payment_status,omitempty" yaml:"payment_status,omitempty"`
	Memo          *string `json:"memo,omitempty" yaml:"memo,omitempty"`

	// Extra holds unrecognized keys from the extraction oracle. Preserved for
	// audit, ignored by normalization, merge, and validation.
	Extra map[string]any `json:"-" yaml:"-"`
}

// Fields is the ordered registry of recognized field keys. The merger walks
// it field by field and the schema pass iterates it for shape checks; order
// here is the order diffs and summaries are reported in.
var Fields = []string{
	"reservation_no",
	"channel",
	"product_name",
	"option_name",
	"usage_date",
	"usage_time",
	"name_ko",
	"first_name",
	"last_name",
	"email",
	"phone",
	"adults",
	"children",
	"infants",
	"guest_count",
	"adult_unit_price",
	"child_unit_price",
	"total_amount",
	"currency",
	"payment_status",
	"memo",
}

var fieldSet = func() map[string]bool {
	set := make(map[string]bool, len(Fields))
	for _, f := range Fields {
		set[f] = true
	}
	return set
}()

// IsRecognizedField reports whether key is part of the canonical record shape.
func IsRecognizedField(key string) bool {
	return fieldSet[key]
}

// Document converts the record into its serialization-shaped view. Extra keys
// ride along so the audit diff sees everything the oracle reported; recognized
// keys always win over an Extra key of the same name.
func (r *Record) Document() Document {
	if r == nil {
		return Document{}
	}

	doc := Document{}
	for k, v := range r.Extra {
		if !IsRecognizedField(k) {
			doc[k] = v
		}
	}

	// JSON round-trip gives the exact shape a storage layer or diff consumer
	// would see: numbers as float64, absent fields omitted.
	raw, err := json.Marshal(r)
	if err != nil {
		return doc
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return doc
	}
	for k, v := range fields {
		doc[k] = v
	}
	return doc
}

// FromDocument builds a Record from a Document, splitting unrecognized keys
// into Extra. Values with the wrong type for their field are dropped rather
// than failing: extractor output is vendor-controlled and unbounded.
func FromDocument(doc Document) *Record {
	rec := &Record{}
	if len(doc) == 0 {
		return rec
	}

	recognized := make(map[string]any, len(doc))
	for k, v := range doc {
		if IsRecognizedField(k) {
			recognized[k] = v
		} else {
			if rec.Extra == nil {
				rec.Extra = make(map[string]any)
			}
			rec.Extra[k] = v
		}
	}

	raw, err := json.Marshal(recognized)
	if err != nil {
		return rec
	}
	// Ignore type mismatches field-by-field by decoding leniently: a failed
	// strict decode falls back to decoding each key on its own.
	if err := json.Unmarshal(raw, rec); err != nil {
		for k, v := range recognized {
			single, err := json.Marshal(map[string]any{k: v})
			if err != nil {
				continue
			}
			_ = json.Unmarshal(single, rec)
		}
	}
	return rec
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	clone := FromDocument(r.Document())
	return clone
}

// String helpers for building optional fields in call sites and tests.

// StringPtr returns a pointer to s.
func StringPtr(s string) *string { return &s }

// IntPtr returns a pointer to i.
func IntPtr(i int) *int { return &i }

// FloatPtr returns a pointer to f.
func FloatPtr(f float64) *float64 { return &f }
