package schedule

import (
	"encoding/json"
	"strings"

	"github.com/runsheet/core/internal/domain/entities"
)

// DefaultColumns is used when neither the preset nor the payload defines any.
var DefaultColumns = []entities.ColumnDef{
	{Field: entities.FieldTime, Label: "Time", Width: 20},
	{Field: entities.FieldDescription, Label: "Description", Width: 80},
}

// PrepareViews builds one view per preset from the full row set. Presets are
// independent: a row may appear under several of them at once.
func PrepareViews(payload entities.Payload, presets []entities.GroupPreset) map[string]entities.View {
	meta := ParseGroupMeta(payload)
	views := make(map[string]entities.View, len(presets))
	for _, preset := range presets {
		views[preset.ID] = PrepareView(payload.Data.ScheduleDetail, preset, meta, payload.Columns)
	}
	return views
}

// PrepareView groups, decorates and sorts rows for a single preset.
func PrepareView(rows []entities.Entry, preset entities.GroupPreset, meta map[string]entities.GroupMeta, fallbackColumns []entities.ColumnDef) entities.View {
	groupBy := preset.GroupBy
	if !groupBy.Valid() {
		groupBy = entities.GroupByDate
	}

	groups := GroupRows(rows, groupBy)
	if groupBy == entities.GroupByDate {
		for i := range groups {
			if m, ok := lookupMeta(meta, groups[i].RawKey); ok {
				groups[i].Meta = &m
			}
		}
	}

	SortGroupsInPlace(groups, preset)
	for i := range groups {
		SortEntriesInPlace(groups[i].Entries, groupBy, preset)
	}

	columns := preset.Columns
	if len(columns) == 0 {
		columns = fallbackColumns
	}
	if len(columns) == 0 {
		columns = DefaultColumns
	}

	label := preset.Label
	if label == "" {
		label = preset.ID
	}

	if groups == nil {
		groups = []entities.Group{}
	}

	return entities.View{
		Label:   label,
		GroupBy: groupBy,
		Columns: columns,
		Groups:  groups,
	}
}

// ParseGroupMeta reads per-date metadata from the payload's groupMeta, or
// from dicts.groupMeta.date when the former is absent. Both the object-map
// form keyed by date and the array form with a date field are accepted.
func ParseGroupMeta(payload entities.Payload) map[string]entities.GroupMeta {
	for _, raw := range []json.RawMessage{payload.GroupMeta, payload.Dicts.GroupMeta.Date} {
		if meta := decodeGroupMeta(raw); len(meta) > 0 {
			return meta
		}
	}
	return map[string]entities.GroupMeta{}
}

func decodeGroupMeta(raw json.RawMessage) map[string]entities.GroupMeta {
	if len(raw) == 0 {
		return nil
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}

	// {"date": {...}} wraps the per-date table
	if obj, ok := v.(map[string]any); ok && len(obj) == 1 {
		switch inner := obj["date"].(type) {
		case map[string]any, []any:
			v = inner
		}
	}

	out := make(map[string]entities.GroupMeta)
	switch t := v.(type) {
	case map[string]any:
		for key, item := range t {
			if m, ok := metaFrom(item); ok {
				out[dateKey(key)] = m
			}
		}
	case []any:
		for _, item := range t {
			obj, ok := item.(map[string]any)
			if !ok {
				continue
			}
			key := entities.Stringify(obj["date"])
			if key == "" {
				key = entities.Stringify(obj["key"])
			}
			if key == "" {
				continue
			}
			if m, ok := metaFrom(obj); ok {
				out[dateKey(key)] = m
			}
		}
	}
	return out
}

func metaFrom(v any) (entities.GroupMeta, bool) {
	obj, ok := v.(map[string]any)
	if !ok {
		return entities.GroupMeta{}, false
	}

	m := entities.GroupMeta{
		Title: strings.TrimSpace(firstString(obj, "title", "name")),
		Above: strings.TrimSpace(firstString(obj, "above", "textAbove", "before")),
		Below: strings.TrimSpace(firstString(obj, "below", "textBelow", "after")),
	}
	return m, !m.IsEmpty()
}

func firstString(obj map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := obj[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func lookupMeta(meta map[string]entities.GroupMeta, rawKey string) (entities.GroupMeta, bool) {
	m, ok := meta[dateKey(rawKey)]
	return m, ok
}

// dateKey reduces an ISO timestamp to its date part.
func dateKey(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 10 && s[4] == '-' && s[7] == '-' {
		return s[:10]
	}
	return s
}
