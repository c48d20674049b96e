package entities

import (
	"fmt"
	"regexp"
	"strings"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// ToSlug lowercases s, replaces runs of non-alphanumerics with hyphens and
// trims them from the ends. An empty result becomes fallback.
func ToSlug(s, fallback string) string {
	s = strings.ToLower(s)
	s = nonAlnum.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return fallback
	}
	return s
}

// SlugSet hands out unique slugs within one render run.
type SlugSet struct {
	seen map[string]int
}

func NewSlugSet() *SlugSet {
	return &SlugSet{seen: make(map[string]int)}
}

// Next returns the slug for name, suffixing -2, -3... on repeats.
func (s *SlugSet) Next(name string) string {
	base := ToSlug(name, "snapshot")
	s.seen[base]++
	n := s.seen[base]
	if n == 1 {
		return base
	}

	candidate := fmt.Sprintf("%s-%d", base, n)
	for s.seen[candidate] > 0 {
		n++
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
	s.seen[base] = n
	s.seen[candidate]++
	return candidate
}
