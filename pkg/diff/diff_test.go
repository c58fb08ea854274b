package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeIdentityIsEmpty(t *testing.T) {
	doc := Document{
		"reservation_no": "R-2025-0412",
		"adults":         2,
		"amounts":        Document{"total": 150000.0, "currency": "KRW"},
		"guests":         []any{"김철수", "이영희"},
	}

	assert.True(t, Compute(doc, doc).IsEmpty())
	assert.True(t, Compute(Document{}, Document{}).IsEmpty())
}

func TestComputeClassifiesOps(t *testing.T) {
	older := Document{
		"a": 1,
		"b": Document{"c": 2},
		"e": "gone",
	}
	newer := Document{
		"a": 1,
		"b": Document{"c": 3},
		"d": 4,
	}

	cs := Compute(older, newer)
	require.Len(t, cs, 3)

	require.Equal(t, OpModified, cs["b"].Op)
	require.Len(t, cs["b"].Nested, 1)
	assert.Equal(t, OpChanged, cs["b"].Nested["c"].Op)
	assert.Equal(t, 2, cs["b"].Nested["c"].Old)
	assert.Equal(t, 3, cs["b"].Nested["c"].New)

	assert.Equal(t, OpAdded, cs["d"].Op)
	assert.Equal(t, 4, cs["d"].New)

	assert.Equal(t, OpRemoved, cs["e"].Op)
	assert.Equal(t, "gone", cs["e"].Old)
}

func TestComputeMapVersusScalarIsChanged(t *testing.T) {
	cs := Compute(Document{"x": Document{"y": 1}}, Document{"x": "flat"})
	require.Len(t, cs, 1)
	assert.Equal(t, OpChanged, cs["x"].Op)
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a    any
		b    any
		want bool
	}{
		{"int equals float", 1, 1.0, true},
		{"int64 equals int", int64(75000), 75000, true},
		{"different numbers", 1, 2.0, false},
		{"string not number", "1", 1, false},
		{"nil equals nil", nil, nil, true},
		{"nil not value", nil, "", false},
		{"slices in order", []any{1, 2}, []any{1.0, 2.0}, true},
		{"slices out of order", []any{1, 2}, []any{2, 1}, false},
		{"slices of different length", []any{1}, []any{1, 2}, false},
		{"equal nested maps", Document{"a": Document{"b": 1}}, Document{"a": Document{"b": 1.0}}, true},
		{"maps with extra key", Document{"a": 1}, Document{"a": 1, "b": 2}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Equal(tt.a, tt.b))
		})
	}
}

func TestApplyReconstructsOlder(t *testing.T) {
	older := Document{
		"reservation_no": "R-1",
		"usage_date":     "2025-04-12",
		"amounts":        Document{"total": 150000, "unit": 75000},
		"memo":           "창가 자리",
	}
	newer := Document{
		"reservation_no": "R-1",
		"usage_date":     "2025-04-13",
		"amounts":        Document{"total": 160000, "unit": 80000, "currency": "KRW"},
		"channel":        "klook",
	}

	cs := Compute(older, newer)
	got := Apply(newer, cs)

	assert.True(t, Compute(older, got).IsEmpty(), "Apply(newer, Compute(older, newer)) must reproduce older")

	// The input document is not mutated.
	assert.Equal(t, "2025-04-13", newer["usage_date"])
	assert.Equal(t, "KRW", newer["amounts"].(Document)["currency"])
}

func TestApplyEmptyChangesetIsClone(t *testing.T) {
	doc := Document{"a": Document{"b": 1}}
	got := Apply(doc, Changeset{})

	require.True(t, Equal(doc, got))
	got["a"].(Document)["b"] = 99
	assert.Equal(t, 1, doc["a"].(Document)["b"])
}

func TestMergeChainReconstructsStart(t *testing.T) {
	start := Document{
		"name":   "김철수",
		"adults": 1,
		"memo":   "원본",
	}
	middle := Document{
		"name":   "김철수",
		"adults": 2,
		"email":  "kim@example.com",
	}
	final := Document{
		"name":   "김영희",
		"adults": 3,
		"phone":  "010-1234-5678",
	}

	merged := Merge(Compute(start, middle), Compute(middle, final))
	got := Apply(final, merged)

	assert.True(t, Compute(start, got).IsEmpty(), "merged chain applied to final must reproduce start")
}

func TestMergeConflictSemantics(t *testing.T) {
	t.Run("changed then changed keeps first old", func(t *testing.T) {
		merged := Merge(
			Changeset{"adults": {Op: OpChanged, Old: 1, New: 2}},
			Changeset{"adults": {Op: OpChanged, Old: 2, New: 3}},
		)
		require.Contains(t, merged, "adults")
		assert.Equal(t, OpChanged, merged["adults"].Op)
		assert.Equal(t, 1, merged["adults"].Old)
		assert.Equal(t, 3, merged["adults"].New)
	})

	t.Run("added then removed cancels", func(t *testing.T) {
		merged := Merge(
			Changeset{"email": {Op: OpAdded, New: "a@b.c"}},
			Changeset{"email": {Op: OpRemoved, Old: "a@b.c"}},
		)
		assert.True(t, merged.IsEmpty())
	})

	t.Run("added then changed stays added", func(t *testing.T) {
		merged := Merge(
			Changeset{"email": {Op: OpAdded, New: "a@b.c"}},
			Changeset{"email": {Op: OpChanged, Old: "a@b.c", New: "x@y.z"}},
		)
		require.Contains(t, merged, "email")
		assert.Equal(t, OpAdded, merged["email"].Op)
		assert.Nil(t, merged["email"].Old)
		assert.Equal(t, "x@y.z", merged["email"].New)
	})

	t.Run("removed then added is a change", func(t *testing.T) {
		merged := Merge(
			Changeset{"memo": {Op: OpRemoved, Old: "old"}},
			Changeset{"memo": {Op: OpAdded, New: "new"}},
		)
		require.Contains(t, merged, "memo")
		assert.Equal(t, OpChanged, merged["memo"].Op)
		assert.Equal(t, "old", merged["memo"].Old)
		assert.Equal(t, "new", merged["memo"].New)
	})

	t.Run("modified then changed keeps untouched nested keys", func(t *testing.T) {
		start := Document{"b": Document{"c": 2, "x": 9}}
		middle := Document{"b": Document{"c": 3, "x": 9}}
		final := Document{"b": 5}

		merged := Merge(Compute(start, middle), Compute(middle, final))
		require.Contains(t, merged, "b")
		assert.True(t, Equal(Document{"c": 2, "x": 9}, merged["b"].Old))

		got := Apply(final, merged)
		assert.True(t, Compute(start, got).IsEmpty())
	})

	t.Run("modified then removed keeps untouched nested keys", func(t *testing.T) {
		start := Document{"b": Document{"c": 2, "x": 9}}
		middle := Document{"b": Document{"c": 3, "x": 9}}
		final := Document{}

		merged := Merge(Compute(start, middle), Compute(middle, final))
		got := Apply(final, merged)
		assert.True(t, Compute(start, got).IsEmpty())
	})

	t.Run("nested modifications merge recursively", func(t *testing.T) {
		a := Document{"amounts": Document{"total": 100, "unit": 50}}
		b := Document{"amounts": Document{"total": 200, "unit": 50}}
		c := Document{"amounts": Document{"total": 200, "unit": 100}}

		merged := Merge(Compute(a, b), Compute(b, c))
		got := Apply(c, merged)
		assert.True(t, Compute(a, got).IsEmpty())
	})
}

func TestSummarize(t *testing.T) {
	cs := Compute(
		Document{"adults": 1, "memo": "창가", "amounts": Document{"total": 100}},
		Document{"adults": 2, "amounts": Document{"total": 200}, "channel": "klook"},
	)

	lines := Summarize(cs)
	assert.Equal(t, []string{
		"adults: 1 -> 2",
		"amounts.total: 100 -> 200",
		`channel: added "klook"`,
		`memo: removed (was "창가")`,
	}, lines)
}

func TestSignificant(t *testing.T) {
	cs := Changeset{
		"updated_at": {Op: OpChanged, Old: "t1", New: "t2"},
		"adults":     {Op: OpChanged, Old: 1, New: 2},
	}

	assert.True(t, Significant(cs, "updated_at"))
	assert.False(t, Significant(Changeset{
		"updated_at": {Op: OpChanged, Old: "t1", New: "t2"},
	}, "updated_at"))
	assert.False(t, Significant(Changeset{}))
}

func TestChangesetDocumentRoundTrip(t *testing.T) {
	older := Document{"a": 1, "b": Document{"c": 2}}
	newer := Document{"a": 1, "b": Document{"c": 3}, "d": 4}

	cs := Compute(older, newer)
	restored, err := ParseChangeset(cs.Document())
	require.NoError(t, err)

	got := Apply(newer, restored)
	assert.True(t, Compute(older, got).IsEmpty())
}
