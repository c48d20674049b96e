package entities

import (
	"strconv"
	"strings"
)

// Well-known schedule entry fields
const (
	FieldDate           = "date"
	FieldTime           = "time"
	FieldDescription    = "description"
	FieldFormat         = "format"
	FieldTagIDs         = "tagIds"
	FieldLocationIDs    = "locationIds"
	FieldSubLocationIDs = "subLocationIds"
	FieldTags           = "tags"
	FieldLocations      = "locations"
)

// Entry is one schedule row as received. Besides the well-known fields it
// carries any extra fields a column definition may reference. Entries are
// shared between groups and must never be mutated.
type Entry map[string]any

// Value returns the raw field value. Missing and null fields report false.
func (e Entry) Value(field string) (any, bool) {
	v, ok := e[field]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// String returns a display string for the field.
func (e Entry) String(field string) string {
	v, ok := e.Value(field)
	if !ok {
		return ""
	}
	return Stringify(v)
}

// IDs returns the field as a list of ids. A scalar is treated as a one-element
// list; anything unusable yields nil.
func (e Entry) IDs(field string) []string {
	v, ok := e.Value(field)
	if !ok {
		return nil
	}

	switch t := v.(type) {
	case []string:
		return t
	case []any:
		ids := make([]string, 0, len(t))
		for _, item := range t {
			if item == nil {
				continue
			}
			if s := Stringify(item); s != "" {
				ids = append(ids, s)
			}
		}
		return ids
	case string:
		if t == "" {
			return nil
		}
		return []string{t}
	case float64, int, int64:
		return []string{Stringify(t)}
	default:
		return nil
	}
}

// Variant returns the row format of the entry.
func (e Entry) Variant() RowVariant {
	return ParseRowVariant(e.String(FieldFormat))
}

// Stringify renders a decoded JSON value as text.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case []string:
		return strings.Join(t, ", ")
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if s := Stringify(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		if name, ok := t["name"].(string); ok {
			return name
		}
		return ""
	default:
		return ""
	}
}

// GroupBy selects the bucketing key of a preset.
type GroupBy string

const (
	GroupByDate     GroupBy = "date"
	GroupByTag      GroupBy = "tagId"
	GroupByLocation GroupBy = "locationId"
)

// Valid reports whether g is a known grouping mode.
func (g GroupBy) Valid() bool {
	switch g {
	case GroupByDate, GroupByTag, GroupByLocation:
		return true
	}
	return false
}

// KeyField returns the entry field holding the bucket key(s).
func (g GroupBy) KeyField() string {
	switch g {
	case GroupByTag:
		return FieldTagIDs
	case GroupByLocation:
		return FieldLocationIDs
	default:
		return FieldDate
	}
}

// NamesField returns the entry field holding display names index-aligned
// with KeyField, or "" for date grouping.
func (g GroupBy) NamesField() string {
	switch g {
	case GroupByTag:
		return FieldTags
	case GroupByLocation:
		return FieldLocations
	default:
		return ""
	}
}

// ColumnDef describes one table column.
type ColumnDef struct {
	Field     string  `json:"field" yaml:"field"`
	Label     string  `json:"label" yaml:"label"`
	Width     float64 `json:"width" yaml:"width"`
	ShowLabel *bool   `json:"showLabel,omitempty" yaml:"showLabel,omitempty"`
}

// LabelVisible reports whether the column header shows its label.
func (c ColumnDef) LabelVisible() bool {
	return c.ShowLabel == nil || *c.ShowLabel
}

// ColumnShares returns each column's fraction of the table width. Non-positive
// widths count as 1.
func ColumnShares(columns []ColumnDef) []float64 {
	shares := make([]float64, len(columns))
	if len(columns) == 0 {
		return shares
	}

	total := 0.0
	for i, c := range columns {
		w := c.Width
		if w <= 0 {
			w = 1
		}
		shares[i] = w
		total += w
	}
	for i := range shares {
		shares[i] /= total
	}
	return shares
}

// AnyLabelVisible reports whether a header row should be emitted.
func AnyLabelVisible(columns []ColumnDef) bool {
	for _, c := range columns {
		if c.LabelVisible() {
			return true
		}
	}
	return false
}

// BadgeColumn returns the index of the column that carries the row badge:
// the description column if present, else the last one. -1 for no columns.
func BadgeColumn(columns []ColumnDef) int {
	for i, c := range columns {
		if c.Field == FieldDescription {
			return i
		}
	}
	return len(columns) - 1
}

// GroupPreset is a named grouping and ordering configuration.
type GroupPreset struct {
	ID        string      `json:"id" yaml:"id"`
	Label     string      `json:"label" yaml:"label"`
	GroupBy   GroupBy     `json:"groupBy" yaml:"groupBy"`
	GroupSort []string    `json:"groupSort,omitempty" yaml:"groupSort,omitempty"`
	EntrySort []string    `json:"entrySort,omitempty" yaml:"entrySort,omitempty"`
	Columns   []ColumnDef `json:"columns,omitempty" yaml:"columns,omitempty"`
}

// GroupMeta is optional per-date decoration.
type GroupMeta struct {
	Title string `json:"title,omitempty"`
	Above string `json:"above,omitempty"`
	Below string `json:"below,omitempty"`
}

// IsEmpty reports whether the metadata carries no text.
func (m GroupMeta) IsEmpty() bool {
	return m.Title == "" && m.Above == "" && m.Below == ""
}

// Group is one bucket of entries.
type Group struct {
	RawKey  string     `json:"rawKey"`
	Title   string     `json:"title"`
	Meta    *GroupMeta `json:"meta,omitempty"`
	Entries []Entry    `json:"entries"`
}

// View is a grouped, sorted projection of the schedule.
type View struct {
	Label   string      `json:"label"`
	GroupBy GroupBy     `json:"groupBy"`
	Columns []ColumnDef `json:"columns"`
	Groups  []Group     `json:"groups"`
}

// EntryFilter narrows entries by tag, location and sub-location ids.
type EntryFilter struct {
	TagIDs         StringList `json:"filterTagIds,omitempty"`
	LocationIDs    StringList `json:"filterLocationIds,omitempty"`
	SubLocationIDs StringList `json:"filterSubLocationIds,omitempty"`
}

// IsEmpty reports whether the filter passes everything.
func (f EntryFilter) IsEmpty() bool {
	return len(f.TagIDs) == 0 && len(f.LocationIDs) == 0 && len(f.SubLocationIDs) == 0
}

// Snapshot is a named, filtered rendering of one preset view.
type Snapshot struct {
	Name          string  `json:"name"`
	Group         string  `json:"group,omitempty"`
	SortOrder     SortKey `json:"sortOrder"`
	GroupPresetID string  `json:"groupPresetId"`
	EntryFilter
}
