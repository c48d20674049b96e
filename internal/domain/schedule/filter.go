// Package schedule groups, filters and orders schedule entries into views.
package schedule

import "github.com/runsheet/core/internal/domain/entities"

// FilterEntries keeps the entries that pass every active filter dimension. A
// dimension passes when its filter list is empty or shares at least one id
// with the entry. Order is preserved and entries are never copied.
func FilterEntries(entries []entities.Entry, filter entities.EntryFilter) []entities.Entry {
	if filter.IsEmpty() {
		return entries
	}

	out := make([]entities.Entry, 0, len(entries))
	for _, e := range entries {
		if matches(e, filter) {
			out = append(out, e)
		}
	}
	return out
}

// ApplySnapshotFiltersToView filters every group of view and drops groups
// that end up empty. The input view is left untouched.
func ApplySnapshotFiltersToView(view entities.View, filter entities.EntryFilter) entities.View {
	out := view
	out.Groups = make([]entities.Group, 0, len(view.Groups))

	for _, g := range view.Groups {
		entries := FilterEntries(g.Entries, filter)
		if len(entries) == 0 {
			continue
		}
		g.Entries = entries
		out.Groups = append(out.Groups, g)
	}
	return out
}

func matches(e entities.Entry, filter entities.EntryFilter) bool {
	return intersects(e.IDs(entities.FieldTagIDs), filter.TagIDs) &&
		intersects(e.IDs(entities.FieldLocationIDs), filter.LocationIDs) &&
		intersects(e.IDs(entities.FieldSubLocationIDs), filter.SubLocationIDs)
}

// intersects reports whether ids and wanted share an id. An empty wanted list
// matches everything.
func intersects(ids []string, wanted []string) bool {
	if len(wanted) == 0 {
		return true
	}
	for _, id := range ids {
		for _, w := range wanted {
			if id == w {
				return true
			}
		}
	}
	return false
}
