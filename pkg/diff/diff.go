// Package diff computes, inverts, summarizes, and merges structural
// differences between two documents of the same shape family. Documents are
// finite, acyclic JSON-style trees, so diffing is pure and total. The diff
// carries old/new pairs, which is enough information to reconstruct the
// pre-diff document from the post-diff one at any nesting level.
package diff

import (
	"math"
	"reflect"
	"sort"
)

// Document is a JSON-shaped tree: maps keyed by strings, ordered slices,
// and scalar leaves.
type Document = map[string]any

// Op classifies the change at a single key.
type Op string

const (
	// OpAdded indicates the key exists only in the newer document.
	OpAdded Op = "added"
	// OpRemoved indicates the key exists only in the older document.
	OpRemoved Op = "removed"
	// OpChanged indicates the value changed wholesale.
	OpChanged Op = "changed"
	// OpModified indicates both sides are keyed structures that differ;
	// Nested holds the recursive changeset.
	OpModified Op = "modified"
)

// Entry describes the change at one key.
type Entry struct {
	Op     Op        `json:"op"`
	Old    any       `json:"old,omitempty"`
	New    any       `json:"new,omitempty"`
	Nested Changeset `json:"nested,omitempty"`
}

// Changeset maps field keys to their changes. An empty changeset means the
// documents are structurally equal.
type Changeset map[string]Entry

// IsEmpty reports whether the changeset contains no changes.
func (cs Changeset) IsEmpty() bool {
	return len(cs) == 0
}

// Compute returns the changeset between an older and a newer document.
// Keys present in either document are classified by structural equality:
// order-sensitive for slices, order-insensitive for maps. When both sides at
// a key are maps that differ, the result recurses as OpModified rather than
// flattening, so the changeset can be applied or inverted at any sub-level.
func Compute(older, newer Document) Changeset {
	cs := Changeset{}

	for key, oldVal := range older {
		newVal, inNewer := newer[key]
		if !inNewer {
			cs[key] = Entry{Op: OpRemoved, Old: oldVal}
			continue
		}
		if Equal(oldVal, newVal) {
			continue
		}
		oldMap, oldIsMap := asMap(oldVal)
		newMap, newIsMap := asMap(newVal)
		if oldIsMap && newIsMap {
			cs[key] = Entry{Op: OpModified, Nested: Compute(oldMap, newMap)}
			continue
		}
		cs[key] = Entry{Op: OpChanged, Old: oldVal, New: newVal}
	}

	for key, newVal := range newer {
		if _, inOlder := older[key]; !inOlder {
			cs[key] = Entry{Op: OpAdded, New: newVal}
		}
	}

	return cs
}

// Equal reports structural equality between two JSON-shaped values. Numeric
// leaves compare by value regardless of int/float64 decoding skew; maps
// compare key-by-key, slices element-by-element in order.
func Equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	if af, aok := asFloat(a); aok {
		bf, bok := asFloat(b)
		return bok && af == bf
	}

	if am, ok := asMap(a); ok {
		bm, bok := asMap(b)
		if !bok || len(am) != len(bm) {
			return false
		}
		for k, av := range am {
			bv, exists := bm[k]
			if !exists || !Equal(av, bv) {
				return false
			}
		}
		return true
	}

	if as, ok := asSlice(a); ok {
		bs, bok := asSlice(b)
		if !bok || len(as) != len(bs) {
			return false
		}
		for i := range as {
			if !Equal(as[i], bs[i]) {
				return false
			}
		}
		return true
	}

	return reflect.DeepEqual(a, b)
}

// sortedKeys returns the changeset keys in lexicographic order for
// deterministic iteration.
func (cs Changeset) sortedKeys() []string {
	keys := make([]string, 0, len(cs))
	for k := range cs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func asMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

func asSlice(v any) ([]any, bool) {
	s, ok := v.([]any)
	return s, ok
}

// asFloat widens any numeric leaf to float64. JSON decoding yields float64,
// but documents built in code commonly carry int values for the same fields.
func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		if n > math.MaxInt64 {
			return float64(n), true
		}
		return float64(int64(n)), true
	default:
		return 0, false
	}
}
