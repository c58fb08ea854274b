package diff

// Apply reconstructs the older document from the newer one: for any pair of
// documents a and b, Apply(b, Compute(a, b)) reproduces a. The input document
// is not mutated; a deep copy is returned.
func Apply(newer Document, cs Changeset) Document {
	out := cloneDocument(newer)
	applyInPlace(out, cs)
	return out
}

func applyInPlace(doc Document, cs Changeset) {
	for key, entry := range cs {
		switch entry.Op {
		case OpAdded:
			delete(doc, key)
		case OpRemoved:
			doc[key] = cloneValue(entry.Old)
		case OpChanged:
			doc[key] = cloneValue(entry.Old)
		case OpModified:
			nested, ok := doc[key].(map[string]any)
			if !ok {
				// The document diverged from the diff's shape family; the
				// nested old values are still the best reconstruction.
				nested = Document{}
				doc[key] = nested
			}
			applyInPlace(nested, entry.Nested)
		}
	}
}

func cloneDocument(doc Document) Document {
	out := make(Document, len(doc))
	for k, v := range doc {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneDocument(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}
