// Package overlay assembles the effective reservation record from a draft's
// three layers: the raw parsed extraction, the normalized record, and the
// reviewer's manual patch. Precedence is manual over normalized over parsed,
// resolved field by field, and every resolved field carries a provenance tag
// naming the layer it came from.
package overlay

import (
	"github.com/voyagekit/resdesk/pkg/booking"
)

// Layer names the origin of a merged field value.
type Layer string

// Merge layers, lowest precedence first.
const (
	LayerParsed     Layer = "parsed"
	LayerNormalized Layer = "normalized"
	LayerManual     Layer = "manual"
)

// Provenance maps each field present in the effective record to the layer
// that supplied its value. Fields a manual edit cleared do not appear.
type Provenance map[string]Layer

// Merge builds the effective record for a draft.
//
// The normalized layer, when present, is a complete document: it shadows the
// parsed layer for every recognized field, absence included, so raw vendor
// text never leaks past normalization. The manual patch wins only for keys it
// actually contains; a patch value of nil, "", literal "null", or the
// assign-on-save placeholder clears the field instead.
func Merge(parsed booking.Document, normalized *booking.Record, manual booking.Patch) (*booking.Record, Provenance) {
	effective := booking.Document{}
	prov := Provenance{}

	if normalized != nil {
		for key, val := range normalized.Document() {
			effective[key] = val
			prov[key] = LayerNormalized
		}
	} else {
		for key, val := range parsed {
			if val == nil {
				continue
			}
			effective[key] = val
			prov[key] = LayerParsed
		}
	}

	for key, val := range manual {
		if !booking.IsRecognizedField(key) {
			continue
		}
		if cleared(val) {
			delete(effective, key)
			delete(prov, key)
			continue
		}
		effective[key] = val
		prov[key] = LayerManual
	}

	return booking.FromDocument(effective), prov
}

// cleared reports whether a manual patch value means "remove this field"
// rather than "set this value".
func cleared(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	if !ok {
		return false
	}
	return s == "" || s == "null" || s == booking.AssignOnSave
}
