package entities

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortKeyDecoding(t *testing.T) {
	var v struct {
		A SortKey `json:"a"`
		B SortKey `json:"b"`
		C SortKey `json:"c"`
		D SortKey `json:"d"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": 3, "b": "x", "c": null}`), &v))

	assert.Equal(t, NewSortKey(3), v.A)
	assert.False(t, v.B.Set)
	assert.False(t, v.C.Set)
	assert.False(t, v.D.Set)
	assert.True(t, math.IsInf(v.D.Rank(), 1))
}

func TestFlagDecoding(t *testing.T) {
	cases := map[string]bool{
		`true`:     true,
		`"TRUE"`:   true,
		`"true "`:  true,
		`false`:    false,
		`"yes"`:    false,
		`1`:        false,
		`{"a": 1}`: false,
	}
	for raw, want := range cases {
		var f Flag
		require.NoError(t, json.Unmarshal([]byte(raw), &f), raw)
		assert.Equal(t, want, bool(f), raw)
	}
}

func TestStringListDecoding(t *testing.T) {
	var l StringList
	require.NoError(t, json.Unmarshal([]byte(`"single"`), &l))
	assert.Equal(t, StringList{"single"}, l)

	require.NoError(t, json.Unmarshal([]byte(`["a", 2, null, "b"]`), &l))
	assert.Equal(t, StringList{"a", "2", "b"}, l)

	require.NoError(t, json.Unmarshal([]byte(`{"x": 1}`), &l))
	assert.Empty(t, l)
}

func TestEntryAccessors(t *testing.T) {
	e := Entry{
		"date":      "2024-05-01",
		"tagIds":    []any{"t1", 2.0, nil},
		"location":  nil,
		"count":     12.5,
		"speakers":  []any{"Ann", "Bo"},
		"format":    "Important",
		"subLocIds": "s1",
	}

	assert.Equal(t, "2024-05-01", e.String("date"))
	assert.Equal(t, []string{"t1", "2"}, e.IDs("tagIds"))
	assert.Equal(t, []string{"s1"}, e.IDs("subLocIds"))
	assert.Nil(t, e.IDs("missing"))
	_, ok := e.Value("location")
	assert.False(t, ok)
	assert.Equal(t, "12.5", e.String("count"))
	assert.Equal(t, "Ann, Bo", e.String("speakers"))
	assert.Equal(t, VariantImportant, e.Variant())
}

func TestColumnShares(t *testing.T) {
	cols := []ColumnDef{{Field: "a", Width: 50}, {Field: "b", Width: 100}, {Field: "c", Width: 50}}
	assert.InDeltaSlice(t, []float64{0.25, 0.5, 0.25}, ColumnShares(cols), 1e-9)

	equal := ColumnShares([]ColumnDef{{Field: "a"}, {Field: "b", Width: -3}})
	assert.InDeltaSlice(t, []float64{0.5, 0.5}, equal, 1e-9)

	assert.Empty(t, ColumnShares(nil))
}

func TestBadgeColumn(t *testing.T) {
	assert.Equal(t, 1, BadgeColumn([]ColumnDef{{Field: "time"}, {Field: "description"}, {Field: "room"}}))
	assert.Equal(t, 1, BadgeColumn([]ColumnDef{{Field: "time"}, {Field: "room"}}))
	assert.Equal(t, -1, BadgeColumn(nil))
}

func TestVariantTable(t *testing.T) {
	styles := RowStyles{
		Default:   RowStyle{FontColour: "#000001"},
		Important: RowStyle{FontColour: "#000002"},
		New:       RowStyle{FontColour: "#000003"},
		Past:      RowStyle{FontColour: "#000004"},
	}

	assert.Equal(t, VariantDefault, ParseRowVariant(""))
	assert.Equal(t, VariantDefault, ParseRowVariant("unknown"))
	assert.Equal(t, VariantNew, ParseRowVariant("highlight"))

	assert.Equal(t, "row-new", VariantNew.Spec().CSSClass)
	assert.Equal(t, "NEW", VariantNew.Spec().Badge)
	assert.Empty(t, VariantPast.Spec().Badge)
	assert.Equal(t, "#000003", styles.For(VariantNew).FontColour)
	assert.Equal(t, "#000004", styles.For(VariantPast).FontColour)
	assert.Equal(t, "#000001", styles.For(RowVariant("bogus")).FontColour)
}

func TestDocumentGeometry(t *testing.T) {
	doc := DocumentSettings{PageSize: PageSize{Width: 200, Height: 300}, LeftMargin: 10, RightMargin: 10, TopMargin: 20, BottomMargin: 20}
	require.NoError(t, doc.ValidateGeometry())
	assert.Equal(t, 180.0, doc.ContentWidth())
	assert.Equal(t, 260.0, doc.ContentHeight())

	doc.PageSize.Width = 0
	assert.ErrorIs(t, doc.ValidateGeometry(), ErrInvalidPageGeometry)

	doc.PageSize.Width = 15
	assert.ErrorIs(t, doc.ValidateGeometry(), ErrInvalidPageGeometry)
}

func TestSnapshotDecoding(t *testing.T) {
	var s Snapshot
	raw := `{"name":"Day 1","group":"Days","sortOrder":2,"groupPresetId":"by-date","filterTagIds":["t1"],"filterLocationIds":"l1"}`
	require.NoError(t, json.Unmarshal([]byte(raw), &s))

	assert.Equal(t, "Day 1", s.Name)
	assert.Equal(t, 2.0, s.SortOrder.Rank())
	assert.Equal(t, StringList{"t1"}, s.TagIDs)
	assert.Equal(t, StringList{"l1"}, s.LocationIDs)
	assert.True(t, s.SubLocationIDs == nil)
}

func TestToSlug(t *testing.T) {
	assert.Equal(t, "day-1-main-hall", ToSlug("  Day 1: Main Hall! ", "snapshot"))
	assert.Equal(t, "snapshot", ToSlug("***", "snapshot"))
	assert.Equal(t, "event", ToSlug("", "event"))
}

func TestSlugSetDeduplicates(t *testing.T) {
	s := NewSlugSet()

	assert.Equal(t, "day-1", s.Next("Day 1"))
	assert.Equal(t, "day-1-2", s.Next("day 1"))
	assert.Equal(t, "day-1-2-2", s.Next("Day 1 2"))
	assert.Equal(t, "day-1-3", s.Next("DAY 1"))
	assert.Equal(t, "snapshot", s.Next(""))
}
