package schedule

import (
	"strings"

	"github.com/runsheet/core/internal/domain/entities"
)

// GroupRows buckets rows by the preset's grouping key. Date grouping puts
// each row in at most one group; tag and location grouping fan a row out to
// one group per id. Rows without the key are skipped. Groups appear in order
// of first occurrence.
func GroupRows(rows []entities.Entry, groupBy entities.GroupBy) []entities.Group {
	index := make(map[string]int)
	var groups []entities.Group

	add := func(key string, row entities.Entry) {
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, entities.Group{RawKey: key})
		}
		groups[i].Entries = append(groups[i].Entries, row)
	}

	for _, row := range rows {
		if groupBy == entities.GroupByDate || !groupBy.Valid() {
			key := strings.TrimSpace(row.String(entities.FieldDate))
			if key == "" {
				continue
			}
			add(key, row)
			continue
		}

		seen := make(map[string]bool)
		for _, id := range row.IDs(groupBy.KeyField()) {
			if seen[id] {
				continue
			}
			seen[id] = true
			add(id, row)
		}
	}

	for i := range groups {
		groups[i].Title = ResolveGroupTitle(groups[i].RawKey, groups[i].Entries, groupBy)
	}
	return groups
}

// ResolveGroupTitle returns the display title of a bucket. Date groups keep
// the raw date. Tag and location groups take the name from the first entry
// carrying a non-empty names list, and only that entry: if it has no name for
// the id the raw id is used.
func ResolveGroupTitle(rawKey string, entries []entities.Entry, groupBy entities.GroupBy) string {
	namesField := groupBy.NamesField()
	if namesField == "" {
		return rawKey
	}

	for _, e := range entries {
		names, ok := nameList(e, namesField)
		if !ok {
			continue
		}
		if name := nameFor(rawKey, alignedIDs(e, groupBy.KeyField()), names); name != "" {
			return name
		}
		return rawKey
	}
	return rawKey
}

// alignedIDs keeps the positions of unusable ids so names stay aligned.
func alignedIDs(e entities.Entry, field string) []string {
	v, _ := e.Value(field)
	items, ok := v.([]any)
	if !ok {
		return e.IDs(field)
	}
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = entities.Stringify(item)
	}
	return ids
}

func nameList(e entities.Entry, field string) ([]any, bool) {
	v, ok := e.Value(field)
	if !ok {
		return nil, false
	}
	switch t := v.(type) {
	case []any:
		return t, len(t) > 0
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out, len(out) > 0
	default:
		return nil, false
	}
}

// nameFor picks the name for id. Names are either plain strings index-aligned
// with ids, or objects carrying their own id and name.
func nameFor(id string, ids []string, names []any) string {
	for _, n := range names {
		if obj, ok := n.(map[string]any); ok && entities.Stringify(obj["id"]) == id {
			return strings.TrimSpace(entities.Stringify(obj["name"]))
		}
	}

	for i, candidate := range ids {
		if candidate != id || i >= len(names) {
			continue
		}
		if s, ok := names[i].(string); ok {
			return strings.TrimSpace(s)
		}
	}
	return ""
}
