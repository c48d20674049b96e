package schedule

import (
	"slices"
	"strings"

	"github.com/runsheet/core/internal/domain/entities"
)

// SortToken is one "field:dir" ordering key.
type SortToken struct {
	Field string
	Desc  bool
}

// ParseSortTokens parses "field:asc|desc" tokens. A missing or unknown
// direction means ascending; blank tokens are ignored.
func ParseSortTokens(tokens []string) []SortToken {
	out := make([]SortToken, 0, len(tokens))
	for _, raw := range tokens {
		field, dir, _ := strings.Cut(strings.TrimSpace(raw), ":")
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		out = append(out, SortToken{
			Field: field,
			Desc:  strings.EqualFold(strings.TrimSpace(dir), "desc"),
		})
	}
	return out
}

// FieldGetter resolves a sort field on a record. ok is false for missing or
// null values.
type FieldGetter[T any] func(record T, field string) (value any, ok bool)

// BuildComparator compares records token by token, falling through on ties.
// Numbers compare numerically and everything else as strings. Missing values
// sort last whatever the direction.
func BuildComparator[T any](tokens []SortToken, get FieldGetter[T]) func(a, b T) int {
	return func(a, b T) int {
		for _, tok := range tokens {
			av, aok := get(a, tok.Field)
			bv, bok := get(b, tok.Field)

			switch {
			case !aok && !bok:
				continue
			case !aok:
				return 1
			case !bok:
				return -1
			}

			c := compareValues(av, bv)
			if c == 0 {
				continue
			}
			if tok.Desc {
				return -c
			}
			return c
		}
		return 0
	}
}

func compareValues(a, b any) int {
	af, aNum := numeric(a)
	bf, bNum := numeric(b)
	if aNum && bNum {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(entities.Stringify(a), entities.Stringify(b))
}

func numeric(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	default:
		return 0, false
	}
}

// EntryField reads a sort field from an entry.
func EntryField(e entities.Entry, field string) (any, bool) {
	return e.Value(field)
}

// GroupField reads a sort field from a group. Groups expose their key, title
// and size; any other field is treated as missing.
func GroupField(g entities.Group, field string) (any, bool) {
	switch field {
	case "rawKey", "key", "id", "date":
		return g.RawKey, true
	case "title", "name", "label":
		return g.Title, true
	case "count", "size":
		return float64(len(g.Entries)), true
	default:
		return nil, false
	}
}

var defaultGroupSort = []SortToken{{Field: "rawKey"}}

// DefaultEntrySort returns the entry ordering used when a preset has none.
func DefaultEntrySort(groupBy entities.GroupBy) []string {
	if groupBy == entities.GroupByDate {
		return []string{"time:asc", "description:asc"}
	}
	return []string{"date:asc", "time:asc", "description:asc"}
}

// SortGroupsInPlace orders groups by the preset's groupSort, ascending raw
// key when none is configured. The sort is stable.
func SortGroupsInPlace(groups []entities.Group, preset entities.GroupPreset) {
	tokens := ParseSortTokens(preset.GroupSort)
	if len(tokens) == 0 {
		tokens = defaultGroupSort
	}
	slices.SortStableFunc(groups, BuildComparator[entities.Group](tokens, GroupField))
}

// SortEntriesInPlace orders one group's entries by the preset's entrySort or
// the grouping default. The sort is stable.
func SortEntriesInPlace(entries []entities.Entry, groupBy entities.GroupBy, preset entities.GroupPreset) {
	tokens := ParseSortTokens(preset.EntrySort)
	if len(tokens) == 0 {
		tokens = ParseSortTokens(DefaultEntrySort(groupBy))
	}
	slices.SortStableFunc(entries, BuildComparator[entities.Entry](tokens, EntryField))
}
