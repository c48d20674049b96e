package entities

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
)

// SortKey is an optional numeric ordering field. Anything that is not a JSON
// number decodes as unset so a malformed value never fails the whole payload.
type SortKey struct {
	Value float64
	Set   bool
}

// NewSortKey returns a set key.
func NewSortKey(v float64) SortKey {
	return SortKey{Value: v, Set: true}
}

func (k *SortKey) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if bytes.Equal(trimmed, []byte("null")) {
		*k = SortKey{}
		return nil
	}

	var f float64
	if err := json.Unmarshal(trimmed, &f); err != nil || math.IsNaN(f) {
		*k = SortKey{}
		return nil
	}

	*k = NewSortKey(f)
	return nil
}

func (k SortKey) MarshalJSON() ([]byte, error) {
	if !k.Set {
		return []byte("null"), nil
	}
	return json.Marshal(k.Value)
}

// Rank returns the key value, or +Inf when unset.
func (k SortKey) Rank() float64 {
	if !k.Set {
		return math.Inf(1)
	}
	return k.Value
}

// Flag is a boolean-like switch: JSON true or the string "true" in any case.
type Flag bool

func (f *Flag) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		*f = false
		return nil
	}
	*f = Flag(IsTruthy(v))
	return nil
}

// IsTruthy reports whether v is true or a case-insensitive "true" string.
func IsTruthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return strings.EqualFold(strings.TrimSpace(t), "true")
	default:
		return false
	}
}

// StringList accepts either a single string or an array. Array members that
// are neither strings nor numbers are skipped.
type StringList []string

func (l *StringList) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		*l = nil
		return nil
	}
	*l = ToStringList(v)
	return nil
}

// ToStringList converts a decoded JSON/YAML value into a list of strings.
func ToStringList(v any) StringList {
	switch t := v.(type) {
	case string:
		if t == "" {
			return nil
		}
		return StringList{t}
	case []string:
		return StringList(t)
	case []any:
		out := make(StringList, 0, len(t))
		for _, item := range t {
			switch v := item.(type) {
			case string:
				out = append(out, v)
			case float64:
				out = append(out, Stringify(v))
			}
		}
		return out
	default:
		return nil
	}
}
