package styles

import (
	"regexp"
	"strings"
)

var (
	shortHex = regexp.MustCompile(`^#[0-9a-fA-F]{3}$`)
	longHex  = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
)

var namedColours = map[string]string{
	"red":    "#FF0000",
	"green":  "#008000",
	"blue":   "#0000FF",
	"black":  "#000000",
	"white":  "#FFFFFF",
	"gray":   "#808080",
	"grey":   "#808080",
	"orange": "#FFA500",
	"purple": "#800080",
	"yellow": "#FFFF00",
}

// ToHexColour normalizes value into #RRGGBB. Short hex is expanded, a few CSS
// colour names are recognised and anything else yields fallback.
func ToHexColour(value any, fallback string) string {
	s, ok := value.(string)
	if !ok {
		return fallback
	}
	s = strings.TrimSpace(s)

	switch {
	case shortHex.MatchString(s):
		return string([]byte{'#', s[1], s[1], s[2], s[2], s[3], s[3]})
	case longHex.MatchString(s):
		return s
	}

	if hex, ok := namedColours[strings.ToLower(s)]; ok {
		return hex
	}
	return fallback
}
