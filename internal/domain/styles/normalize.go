// Package styles turns loosely shaped, possibly historical style documents
// into the canonical StyleProfile the renderers consume.
package styles

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/runsheet/core/internal/domain/entities"
)

// SchemaVersion is stamped on every normalized profile.
const SchemaVersion = 2

const (
	defaultFontSize            = 10
	defaultLineSpacing         = 2
	defaultMargin              = 36
	defaultGroupPaddingBottom  = 12
	defaultBottomPageThreshold = 40
	defaultUnderlineWidth      = 50
	defaultUnderlineThickness  = 0.75
)

// A4 in points.
var defaultPageSize = entities.PageSize{Width: 595.28, Height: 841.89}

var namedPageSizes = map[string]entities.PageSize{
	"a3":     {Width: 841.89, Height: 1190.55},
	"a4":     defaultPageSize,
	"a5":     {Width: 419.53, Height: 595.28},
	"letter": {Width: 612, Height: 792},
	"legal":  {Width: 612, Height: 1008},
}

// Alias table. Each canonical key lists the raw keys it is read from, most
// preferred first; dotted keys address nested objects. Version 1 documents
// kept rows at the top level, called the "new" variant "highlight" and used
// US spellings. Version 2 is the canonical shape.
var (
	rowVariantKeys = map[entities.RowVariant][]string{
		entities.VariantDefault:   {"row.default", "rows.default", "default", "defaultRow"},
		entities.VariantImportant: {"row.important", "rows.important", "important", "importantRow"},
		entities.VariantNew:       {"row.new", "rows.new", "row.highlight", "rows.highlight", "new", "highlight", "highlightRow"},
		entities.VariantPast:      {"row.past", "rows.past", "past", "pastRow"},
	}
	lineSpacingKeys = []string{"row.lineSpacing", "rows.lineSpacing", "lineSpacing"}

	fontSizeKeys   = []string{"fontSize", "size"}
	fontStyleKeys  = []string{"fontStyle", "style"}
	fontColourKeys = []string{"fontColour", "fontColor", "colour", "color", "textColour", "textColor"}
	backgroundKeys = []string{"backgroundColour", "backgroundColor", "background", "bgColour", "bgColor"}
	gutterKeys     = []string{"gutterColour", "gutterColor", "gutter"}
	underlineKeys  = []string{"underline"}

	headerBlockKeys   = []string{"header", "headerStyle"}
	footerBlockKeys   = []string{"footer", "footerStyle"}
	groupTitleKeys    = []string{"groupTitle", "groupHeader", "dateTitle"}
	groupMetadataKeys = []string{"groupMetadata", "groupMeta", "metadata"}
	labelRowKeys      = []string{"labelRow", "columnLabels", "labels"}
	documentKeys      = []string{"document", "documentSettings"}

	pageSizeKeys       = []string{"pageSize", "size"}
	leftMarginKeys     = []string{"leftMargin", "marginLeft", "margins.left", "margin.left"}
	rightMarginKeys    = []string{"rightMargin", "marginRight", "margins.right", "margin.right"}
	topMarginKeys      = []string{"topMargin", "marginTop", "margins.top", "margin.top"}
	bottomMarginKeys   = []string{"bottomMargin", "marginBottom", "margins.bottom", "margin.bottom"}
	groupPaddingKeys   = []string{"groupPaddingBottom", "groupPadding"}
	pageThresholdKeys  = []string{"bottomPageThreshold", "pageBreakThreshold"}
	headerLogoKeys     = []string{"header.logo", "logo", "logoUrl"}
	headerTextKeys     = []string{"header.text", "headerText"}
	footerTextKeys     = []string{"footer.text", "footerText"}
	logoURLKeys        = []string{"url", "src", "href"}
	underlineWidthKeys = []string{"width", "length"}
)

var variantFontStyle = map[entities.RowVariant]entities.FontStyle{
	entities.VariantDefault:   entities.FontNormal,
	entities.VariantImportant: entities.FontBold,
	entities.VariantNew:       entities.FontNormal,
	entities.VariantPast:      entities.FontItalic,
}

var (
	headerDefaults        = entities.StyleBlock{FontSize: 14, FontStyle: entities.FontBold, FontColour: "#000000", BackgroundColour: "#FFFFFF"}
	footerDefaults        = entities.StyleBlock{FontSize: 8, FontStyle: entities.FontNormal, FontColour: "#000000", BackgroundColour: "#FFFFFF"}
	groupTitleDefaults    = entities.StyleBlock{FontSize: 12, FontStyle: entities.FontBold, FontColour: "#000000", BackgroundColour: "#FFFFFF"}
	groupMetadataDefaults = entities.StyleBlock{FontSize: 9, FontStyle: entities.FontItalic, FontColour: "#000000", BackgroundColour: "#FFFFFF"}
	labelRowDefaults      = entities.StyleBlock{FontSize: 9, FontStyle: entities.FontBold, FontColour: "#000000", BackgroundColour: "#EEEEEE"}
)

// Normalize returns a fully populated profile. It never fails: malformed
// values fall back to defaults field by field.
func Normalize(raw map[string]any) entities.StyleProfile {
	profile := entities.StyleProfile{
		Version: SchemaVersion,
		Row: entities.RowStyles{
			Default:     normalizeRow(asMap(first(raw, rowVariantKeys[entities.VariantDefault]...)), entities.VariantDefault),
			Important:   normalizeRow(asMap(first(raw, rowVariantKeys[entities.VariantImportant]...)), entities.VariantImportant),
			New:         normalizeRow(asMap(first(raw, rowVariantKeys[entities.VariantNew]...)), entities.VariantNew),
			Past:        normalizeRow(asMap(first(raw, rowVariantKeys[entities.VariantPast]...)), entities.VariantPast),
			LineSpacing: numberOr(first(raw, lineSpacingKeys...), defaultLineSpacing),
		},
		Header:        normalizeBlock(asMap(first(raw, headerBlockKeys...)), headerDefaults),
		Footer:        normalizeBlock(asMap(first(raw, footerBlockKeys...)), footerDefaults),
		GroupTitle:    normalizeBlock(asMap(first(raw, groupTitleKeys...)), groupTitleDefaults),
		GroupMetadata: normalizeBlock(asMap(first(raw, groupMetadataKeys...)), groupMetadataDefaults),
		LabelRow:      normalizeBlock(asMap(first(raw, labelRowKeys...)), labelRowDefaults),
		Document:      NormalizeDocument(asMap(first(raw, documentKeys...))),
	}

	return profile
}

// NormalizeDocument returns canonical page settings. Missing page dimensions
// default to A4; explicit non-positive ones are kept so the renderers can
// reject them.
func NormalizeDocument(raw map[string]any) entities.DocumentSettings {
	doc := entities.DocumentSettings{
		PageSize:            pageSize(raw),
		LeftMargin:          marginOr(first(raw, leftMarginKeys...), raw),
		RightMargin:         marginOr(first(raw, rightMarginKeys...), raw),
		TopMargin:           marginOr(first(raw, topMarginKeys...), raw),
		BottomMargin:        marginOr(first(raw, bottomMarginKeys...), raw),
		GroupPaddingBottom:  nonNegativeOr(first(raw, groupPaddingKeys...), defaultGroupPaddingBottom),
		BottomPageThreshold: nonNegativeOr(first(raw, pageThresholdKeys...), defaultBottomPageThreshold),
		Header: entities.HeaderSettings{
			Logo: logo(first(raw, headerLogoKeys...)),
			Text: []string(entities.ToStringList(first(raw, headerTextKeys...))),
		},
		Footer: entities.FooterSettings{
			Text: []string(entities.ToStringList(first(raw, footerTextKeys...))),
		},
	}

	if doc.Header.Text == nil {
		doc.Header.Text = []string{}
	}
	if doc.Footer.Text == nil {
		doc.Footer.Text = []string{}
	}

	return doc
}

func normalizeRow(raw map[string]any, variant entities.RowVariant) entities.RowStyle {
	style := entities.RowStyle{
		FontSize:         positiveOr(first(raw, fontSizeKeys...), defaultFontSize),
		FontStyle:        parseFontStyle(raw, variantFontStyle[variant]),
		FontColour:       ToHexColour(first(raw, fontColourKeys...), "#000000"),
		BackgroundColour: ToHexColour(first(raw, backgroundKeys...), "#FFFFFF"),
		GutterColour:     ToHexColour(first(raw, gutterKeys...), "#FFFFFF"),
	}
	style.Underline = normalizeUnderline(first(raw, underlineKeys...), style.FontColour)
	return style
}

func normalizeBlock(raw map[string]any, defaults entities.StyleBlock) entities.StyleBlock {
	return entities.StyleBlock{
		FontSize:         positiveOr(first(raw, fontSizeKeys...), defaults.FontSize),
		FontStyle:        parseFontStyle(raw, defaults.FontStyle),
		FontColour:       ToHexColour(first(raw, fontColourKeys...), defaults.FontColour),
		BackgroundColour: ToHexColour(first(raw, backgroundKeys...), defaults.BackgroundColour),
	}
}

// normalizeUnderline merges present fields over the defaults one by one. A
// bare boolean toggles the rule.
func normalizeUnderline(v any, fontColour string) entities.Underline {
	u := entities.Underline{
		Enabled:   true,
		Width:     defaultUnderlineWidth,
		Thickness: defaultUnderlineThickness,
		Colour:    fontColour,
	}

	switch t := v.(type) {
	case bool:
		u.Enabled = t
	case map[string]any:
		if enabled, ok := t["enabled"].(bool); ok {
			u.Enabled = enabled
		}
		u.Width = nonNegativeOr(first(t, underlineWidthKeys...), u.Width)
		u.Thickness = nonNegativeOr(t["thickness"], u.Thickness)
		u.Colour = ToHexColour(first(t, fontColourKeys...), fontColour)
	}

	return u
}

// parseFontStyle reads fontStyle/style plus the legacy fontWeight and
// bold/italic switches. Unrecognised values keep fallback.
func parseFontStyle(raw map[string]any, fallback entities.FontStyle) entities.FontStyle {
	bold, italic := fallback.Bold(), fallback.Italic()
	explicit := false

	if s, ok := first(raw, fontStyleKeys...).(string); ok {
		key := strings.NewReplacer("-", "", "_", "", " ", "").Replace(strings.ToLower(strings.TrimSpace(s)))
		switch key {
		case "normal", "regular":
			bold, italic, explicit = false, false, true
		case "bold":
			bold, italic, explicit = true, false, true
		case "italic":
			bold, italic, explicit = false, true, true
		case "bolditalic", "italicbold":
			bold, italic, explicit = true, true, true
		}
	}

	if !explicit {
		if w, ok := raw["fontWeight"].(string); ok {
			switch strings.ToLower(strings.TrimSpace(w)) {
			case "bold", "700", "800", "900":
				bold = true
			case "normal", "400":
				bold = false
			}
		}
		if b, ok := raw["bold"].(bool); ok {
			bold = b
		}
		if i, ok := raw["italic"].(bool); ok {
			italic = i
		}
	}

	switch {
	case bold && italic:
		return entities.FontBoldItalic
	case bold:
		return entities.FontBold
	case italic:
		return entities.FontItalic
	default:
		return entities.FontNormal
	}
}

func pageSize(raw map[string]any) entities.PageSize {
	size := defaultPageSize

	switch t := first(raw, pageSizeKeys...).(type) {
	case string:
		if named, ok := namedPageSizes[strings.ToLower(strings.TrimSpace(t))]; ok {
			size = named
		}
	case map[string]any:
		if w, ok := toNumber(t["width"]); ok {
			size.Width = w
		}
		if h, ok := toNumber(t["height"]); ok {
			size.Height = h
		}
	}

	if o, ok := raw["orientation"].(string); ok {
		landscape := strings.EqualFold(strings.TrimSpace(o), "landscape")
		if landscape != (size.Width > size.Height) {
			size.Width, size.Height = size.Height, size.Width
		}
	}

	return size
}

func logo(v any) *entities.Logo {
	switch t := v.(type) {
	case string:
		if strings.TrimSpace(t) == "" {
			return nil
		}
		return &entities.Logo{URL: strings.TrimSpace(t)}
	case map[string]any:
		url, _ := first(t, logoURLKeys...).(string)
		url = strings.TrimSpace(url)
		if url == "" {
			return nil
		}
		return &entities.Logo{
			URL:    url,
			Width:  nonNegativeOr(t["width"], 0),
			Height: nonNegativeOr(t["height"], 0),
		}
	default:
		return nil
	}
}

// marginOr falls back to a scalar "margin" before the default.
func marginOr(v any, raw map[string]any) float64 {
	fallback := nonNegativeOr(raw["margin"], defaultMargin)
	return nonNegativeOr(v, fallback)
}

// first returns the first non-nil value found under keys.
func first(raw map[string]any, keys ...string) any {
	for _, key := range keys {
		if v, ok := lookup(raw, key); ok {
			return v
		}
	}
	return nil
}

func lookup(raw map[string]any, path string) (any, bool) {
	var cur any = raw
	for _, part := range strings.Split(path, ".") {
		m := asMap(cur)
		if m == nil {
			return nil, false
		}
		v, ok := m[part]
		if !ok || v == nil {
			return nil, false
		}
		cur = v
	}
	return cur, true
}

func asMap(v any) map[string]any {
	switch t := v.(type) {
	case map[string]any:
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			if s, ok := k.(string); ok {
				out[s] = val
			}
		}
		return out
	default:
		return nil
	}
}

func toNumber(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case json.Number:
		n, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = n
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func numberOr(v any, fallback float64) float64 {
	if f, ok := toNumber(v); ok {
		return f
	}
	return fallback
}

func positiveOr(v any, fallback float64) float64 {
	if f, ok := toNumber(v); ok && f > 0 {
		return f
	}
	return fallback
}

func nonNegativeOr(v any, fallback float64) float64 {
	if f, ok := toNumber(v); ok && f >= 0 {
		return f
	}
	return fallback
}
