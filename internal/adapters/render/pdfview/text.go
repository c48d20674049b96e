package pdfview

import "strings"

// textMeasurer is the subset of *fpdf.Fpdf the layout needs.
type textMeasurer interface {
	SetFont(family, style string, size float64)
	GetStringWidth(s string) float64
	SplitText(txt string, w float64) []string
}

// Sanitize drops every character the core fonts cannot encode, keeping
// printable ASCII (0x20-0x7E) and newlines. Tabs become spaces.
func Sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\n':
			b.WriteRune(r)
		case r == '\t':
			b.WriteByte(' ')
		case r >= 0x20 && r <= 0x7E:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// wrap sanitizes s and breaks it into lines no wider than width using the
// measurer's current font. Explicit newlines are kept.
func wrap(m textMeasurer, s string, width float64) []string {
	var lines []string
	for _, para := range strings.Split(Sanitize(s), "\n") {
		para = strings.TrimRight(para, " ")
		if para == "" {
			lines = append(lines, "")
			continue
		}
		if width <= 0 {
			lines = append(lines, para)
			continue
		}
		lines = append(lines, m.SplitText(para, width)...)
	}

	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// fontStyle maps a canonical style to the fpdf style string.
func fontStyle(bold, italic bool) string {
	switch {
	case bold && italic:
		return "BI"
	case bold:
		return "B"
	case italic:
		return "I"
	default:
		return ""
	}
}
