package schedule

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/runsheet/core/internal/domain/entities"
)

func TestParseSortTokens(t *testing.T) {
	got := ParseSortTokens([]string{"time", "description:DESC", " ", "date:sideways", ":asc"})

	assert.Equal(t, []SortToken{
		{Field: "time"},
		{Field: "description", Desc: true},
		{Field: "date"},
	}, got)
}

func TestBuildComparatorNullsLastBothDirections(t *testing.T) {
	entries := []entities.Entry{
		{"description": "no time"},
		{"description": "late", "time": "18:00"},
		{"description": "null time", "time": nil},
		{"description": "early", "time": "08:00"},
	}

	asc := slices.Clone(entries)
	slices.SortStableFunc(asc, BuildComparator[entities.Entry](ParseSortTokens([]string{"time:asc"}), EntryField))
	assert.Equal(t, []string{"early", "late", "no time", "null time"}, descriptions(asc))

	desc := slices.Clone(entries)
	slices.SortStableFunc(desc, BuildComparator[entities.Entry](ParseSortTokens([]string{"time:desc"}), EntryField))
	assert.Equal(t, []string{"late", "early", "no time", "null time"}, descriptions(desc))
}

func TestBuildComparatorNumericAndFallThrough(t *testing.T) {
	entries := []entities.Entry{
		{"description": "b", "priority": 10.0},
		{"description": "a", "priority": 9.0},
		{"description": "c", "priority": 10.0},
		{"description": "a", "priority": 10.0},
	}

	slices.SortStableFunc(entries, BuildComparator[entities.Entry](ParseSortTokens([]string{"priority:desc", "description"}), EntryField))

	got := make([][2]any, len(entries))
	for i, e := range entries {
		got[i] = [2]any{e["priority"], e["description"]}
	}
	assert.Equal(t, [][2]any{{10.0, "a"}, {10.0, "b"}, {10.0, "c"}, {9.0, "a"}}, got)
}

func TestBuildComparatorStableOnTies(t *testing.T) {
	entries := []entities.Entry{
		{"description": "first", "time": "09:00"},
		{"description": "second", "time": "09:00"},
		{"description": "third", "time": "09:00"},
	}

	slices.SortStableFunc(entries, BuildComparator[entities.Entry](ParseSortTokens([]string{"time"}), EntryField))
	assert.Equal(t, []string{"first", "second", "third"}, descriptions(entries))
}

func TestSortGroupsDefaultsToRawKey(t *testing.T) {
	groups := []entities.Group{{RawKey: "2024-05-03"}, {RawKey: "2024-05-01"}, {RawKey: "2024-05-02"}}

	SortGroupsInPlace(groups, entities.GroupPreset{})

	assert.Equal(t, "2024-05-01", groups[0].RawKey)
	assert.Equal(t, "2024-05-03", groups[2].RawKey)
}

func TestSortGroupsByTitleDesc(t *testing.T) {
	groups := []entities.Group{{RawKey: "1", Title: "Alpha"}, {RawKey: "2", Title: "Gamma"}, {RawKey: "3", Title: "Beta"}}

	SortGroupsInPlace(groups, entities.GroupPreset{GroupSort: []string{"title:desc"}})

	assert.Equal(t, []string{"Gamma", "Beta", "Alpha"}, []string{groups[0].Title, groups[1].Title, groups[2].Title})
}

func TestSortEntriesDefaults(t *testing.T) {
	byDate := []entities.Entry{
		{"description": "b", "time": "09:00"},
		{"description": "a", "time": "09:00"},
		{"description": "c", "time": "08:00"},
	}
	SortEntriesInPlace(byDate, entities.GroupByDate, entities.GroupPreset{})
	assert.Equal(t, []string{"c", "a", "b"}, descriptions(byDate))

	byTag := []entities.Entry{
		{"description": "x", "date": "2024-05-02", "time": "08:00"},
		{"description": "y", "date": "2024-05-01", "time": "09:00"},
	}
	SortEntriesInPlace(byTag, entities.GroupByTag, entities.GroupPreset{})
	assert.Equal(t, []string{"y", "x"}, descriptions(byTag))
}
