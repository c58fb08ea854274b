package diff

// Merge folds a sequence of changesets into one. Later changesets win on
// conflicting keys, but the first-seen old value is preserved, so a merged
// chain of diffs still reconstructs the original start state when applied to
// the final document.
func Merge(chain ...Changeset) Changeset {
	merged := Changeset{}

	for _, cs := range chain {
		for key, entry := range cs {
			existing, seen := merged[key]
			if !seen {
				merged[key] = cloneEntry(entry)
				continue
			}
			combined, keep := combine(existing, entry)
			if keep {
				merged[key] = combined
			} else {
				delete(merged, key)
			}
		}
	}

	return merged
}

// combine resolves a conflicting key: the later entry supplies the outcome,
// the earlier entry supplies the origin. keep is false when the two entries
// cancel out relative to the start state.
func combine(first, later Entry) (Entry, bool) {
	if first.Op == OpModified && later.Op == OpModified {
		return Entry{Op: OpModified, Nested: Merge(first.Nested, later.Nested)}, true
	}

	out := cloneEntry(later)

	// A key that was first added and later changed is, relative to the start
	// state, still an addition.
	if first.Op == OpAdded {
		if later.Op == OpRemoved {
			return Entry{}, false
		}
		out.Op = OpAdded
		out.Old = nil
		return out, true
	}

	// Otherwise the start-state value came from the first entry. A modified
	// first entry records only the nested keys it touched, so the full start
	// value is rebuilt by inverting its nested changeset against the value
	// the later entry saw.
	if first.Op == OpModified {
		base, _ := later.Old.(map[string]any)
		out.Old = Apply(base, first.Nested)
	} else {
		out.Old = cloneValue(first.Old)
	}
	if out.Op == OpAdded {
		// The key existed in the start state, so relative to it this is a
		// change, not an addition.
		out.Op = OpChanged
	}
	return out, true
}

func cloneEntry(e Entry) Entry {
	out := Entry{Op: e.Op, Old: cloneValue(e.Old), New: cloneValue(e.New)}
	if e.Nested != nil {
		out.Nested = Changeset{}
		for k, nested := range e.Nested {
			out.Nested[k] = cloneEntry(nested)
		}
	}
	return out
}
