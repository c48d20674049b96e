package entities

import "strings"

// RowVariant is the closed set of row formats.
type RowVariant string

const (
	VariantDefault   RowVariant = "default"
	VariantImportant RowVariant = "important"
	VariantNew       RowVariant = "new"
	VariantPast      RowVariant = "past"
)

// RowVariants lists every variant in display order.
var RowVariants = []RowVariant{VariantDefault, VariantImportant, VariantNew, VariantPast}

// VariantSpec is everything a renderer needs to know about a variant.
type VariantSpec struct {
	CSSClass string
	Badge    string
	style    func(RowStyles) RowStyle
}

var variantTable = map[RowVariant]VariantSpec{
	VariantDefault:   {CSSClass: "row-default", style: func(r RowStyles) RowStyle { return r.Default }},
	VariantImportant: {CSSClass: "row-important", style: func(r RowStyles) RowStyle { return r.Important }},
	VariantNew:       {CSSClass: "row-new", Badge: "NEW", style: func(r RowStyles) RowStyle { return r.New }},
	VariantPast:      {CSSClass: "row-past", style: func(r RowStyles) RowStyle { return r.Past }},
}

// ParseRowVariant maps a format string onto a variant. Unknown and empty
// values are the default variant.
func ParseRowVariant(s string) RowVariant {
	v := RowVariant(strings.ToLower(strings.TrimSpace(s)))
	if v == "highlight" {
		return VariantNew
	}
	if _, ok := variantTable[v]; ok {
		return v
	}
	return VariantDefault
}

// Spec returns the lookup table entry for v.
func (v RowVariant) Spec() VariantSpec {
	if spec, ok := variantTable[v]; ok {
		return spec
	}
	return variantTable[VariantDefault]
}

// FontStyle is the weight/slant of a text run.
type FontStyle string

const (
	FontNormal     FontStyle = "normal"
	FontBold       FontStyle = "bold"
	FontItalic     FontStyle = "italic"
	FontBoldItalic FontStyle = "boldItalic"
)

func (s FontStyle) Bold() bool   { return s == FontBold || s == FontBoldItalic }
func (s FontStyle) Italic() bool { return s == FontItalic || s == FontBoldItalic }

// Underline describes the rule drawn under a row.
type Underline struct {
	Enabled   bool    `json:"enabled"`
	Width     float64 `json:"width"`
	Thickness float64 `json:"thickness"`
	Colour    string  `json:"colour"`
}

// RowStyle is the canonical style of one row variant.
type RowStyle struct {
	FontSize         float64   `json:"fontSize"`
	FontStyle        FontStyle `json:"fontStyle"`
	FontColour       string    `json:"fontColour"`
	BackgroundColour string    `json:"backgroundColour"`
	GutterColour     string    `json:"gutterColour"`
	Underline        Underline `json:"underline"`
}

// RowStyles holds the four variants and the shared line spacing.
type RowStyles struct {
	Default     RowStyle `json:"default"`
	Important   RowStyle `json:"important"`
	New         RowStyle `json:"new"`
	Past        RowStyle `json:"past"`
	LineSpacing float64  `json:"lineSpacing"`
}

// For returns the style of variant v.
func (r RowStyles) For(v RowVariant) RowStyle {
	return v.Spec().style(r)
}

// StyleBlock styles a non-row text block.
type StyleBlock struct {
	FontSize         float64   `json:"fontSize"`
	FontStyle        FontStyle `json:"fontStyle"`
	FontColour       string    `json:"fontColour"`
	BackgroundColour string    `json:"backgroundColour"`
}

// PageSize in points.
type PageSize struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Logo is an image shown in the document header.
type Logo struct {
	URL    string  `json:"url"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type HeaderSettings struct {
	Logo *Logo    `json:"logo,omitempty"`
	Text []string `json:"text"`
}

type FooterSettings struct {
	Text []string `json:"text"`
}

// DocumentSettings is the page geometry shared by the renderers.
type DocumentSettings struct {
	PageSize            PageSize       `json:"pageSize"`
	LeftMargin          float64        `json:"leftMargin"`
	RightMargin         float64        `json:"rightMargin"`
	TopMargin           float64        `json:"topMargin"`
	BottomMargin        float64        `json:"bottomMargin"`
	GroupPaddingBottom  float64        `json:"groupPaddingBottom"`
	BottomPageThreshold float64        `json:"bottomPageThreshold"`
	Header              HeaderSettings `json:"header"`
	Footer              FooterSettings `json:"footer"`
}

// ContentWidth is the page width minus the side margins.
func (d DocumentSettings) ContentWidth() float64 {
	return d.PageSize.Width - d.LeftMargin - d.RightMargin
}

// ContentHeight is the page height minus the top and bottom margins.
func (d DocumentSettings) ContentHeight() float64 {
	return d.PageSize.Height - d.TopMargin - d.BottomMargin
}

// ValidateGeometry returns ErrInvalidPageGeometry when nothing can be laid out.
func (d DocumentSettings) ValidateGeometry() error {
	if d.PageSize.Width <= 0 || d.PageSize.Height <= 0 {
		return ErrInvalidPageGeometry
	}
	if d.ContentWidth() <= 0 || d.ContentHeight() <= 0 {
		return ErrInvalidPageGeometry
	}
	return nil
}

// StyleProfile is the canonical, fully defaulted style document.
type StyleProfile struct {
	Version       int              `json:"version"`
	Row           RowStyles        `json:"row"`
	Header        StyleBlock       `json:"header"`
	Footer        StyleBlock       `json:"footer"`
	GroupTitle    StyleBlock       `json:"groupTitle"`
	GroupMetadata StyleBlock       `json:"groupMetadata"`
	LabelRow      StyleBlock       `json:"labelRow"`
	Document      DocumentSettings `json:"document"`
}
