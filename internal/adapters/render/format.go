// Package render holds helpers shared by the HTML, PDF and home renderers.
package render

import (
	"strconv"
	"strings"
	"time"

	"github.com/runsheet/core/internal/domain/entities"
)

const (
	isoDate       = "2006-01-02"
	humanDate     = "Monday 2 January 2006"
	generatedAtTS = "2 Jan 2006 15:04 MST"
)

// GroupTitle is the display title of a group. ISO dates of date groups are
// spelled out; everything else is shown as derived.
func GroupTitle(g entities.Group, groupBy entities.GroupBy) string {
	if groupBy != entities.GroupByDate {
		return g.Title
	}
	return HumanDate(g.Title)
}

// HumanDate formats an ISO date (optionally followed by a time) as
// "Monday 2 January 2006". Unparseable input is returned unchanged.
func HumanDate(s string) string {
	trimmed := strings.TrimSpace(s)
	if len(trimmed) < len(isoDate) {
		return s
	}
	d, err := time.Parse(isoDate, trimmed[:len(isoDate)])
	if err != nil {
		return s
	}
	return d.Format(humanDate)
}

// GeneratedAt formats the render clock for page footers.
func GeneratedAt(now time.Time) string {
	return now.Format(generatedAtTS)
}

// CellText is the text shown for one column of an entry.
func CellText(e entities.Entry, field string) string {
	return strings.TrimSpace(e.String(field))
}

// Percent formats a column share as a CSS percentage.
func Percent(share float64) string {
	return strconv.FormatFloat(share*100, 'f', 4, 64) + "%"
}

// RGB splits a #RRGGBB colour into components. Malformed input is black.
func RGB(hex string) (r, g, b int) {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(hex) != 6 {
		return 0, 0, 0
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, 0, 0
	}
	return int(v >> 16 & 0xFF), int(v >> 8 & 0xFF), int(v & 0xFF)
}
