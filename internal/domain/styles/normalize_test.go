package styles

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/runsheet/core/internal/domain/entities"
)

func TestToHexColour(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		fallback string
		want     string
	}{
		{"short hex expands", "#abc", "#000000", "#aabbcc"},
		{"long hex kept", "#A1B2C3", "#000000", "#A1B2C3"},
		{"trimmed", "  #123456 ", "#000000", "#123456"},
		{"named", "red", "#000000", "#FF0000"},
		{"named any case", "Grey", "#000000", "#808080"},
		{"unknown", "not-a-colour", "#112233", "#112233"},
		{"bad length", "#12345", "#112233", "#112233"},
		{"non string", 42.0, "#112233", "#112233"},
		{"nil", nil, "#FFFFFF", "#FFFFFF"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToHexColour(tt.value, tt.fallback))
		})
	}
}

func decode(t *testing.T, raw string) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &m))
	return m
}

func TestNormalizeEmptyIsFullyPopulated(t *testing.T) {
	p := Normalize(nil)

	assert.Equal(t, SchemaVersion, p.Version)
	assert.Equal(t, 2.0, p.Row.LineSpacing)
	assert.Equal(t, entities.FontNormal, p.Row.Default.FontStyle)
	assert.Equal(t, entities.FontBold, p.Row.Important.FontStyle)
	assert.Equal(t, entities.FontNormal, p.Row.New.FontStyle)
	assert.Equal(t, entities.FontItalic, p.Row.Past.FontStyle)

	for _, v := range entities.RowVariants {
		row := p.Row.For(v)
		assert.Equal(t, 10.0, row.FontSize, v)
		assert.Equal(t, "#000000", row.FontColour, v)
		assert.Equal(t, "#FFFFFF", row.BackgroundColour, v)
		assert.Equal(t, entities.Underline{Enabled: true, Width: 50, Thickness: 0.75, Colour: "#000000"}, row.Underline, v)
	}

	assert.Equal(t, 595.28, p.Document.PageSize.Width)
	assert.Equal(t, 841.89, p.Document.PageSize.Height)
	assert.Equal(t, 36.0, p.Document.LeftMargin)
	assert.Equal(t, 12.0, p.Document.GroupPaddingBottom)
	assert.Equal(t, 40.0, p.Document.BottomPageThreshold)
	assert.NotNil(t, p.Document.Header.Text)
	assert.Nil(t, p.Document.Header.Logo)
}

func TestNormalizeExplicitFontStyleWins(t *testing.T) {
	p := Normalize(decode(t, `{"row": {"important": {"fontStyle": "normal"}, "past": {"fontStyle": "bold italic"}}}`))

	assert.Equal(t, entities.FontNormal, p.Row.Important.FontStyle)
	assert.Equal(t, entities.FontBoldItalic, p.Row.Past.FontStyle)
}

func TestNormalizeLegacyHighlight(t *testing.T) {
	p := Normalize(decode(t, `{"highlight": {"fontColor": "orange", "backgroundColor": "#ff0", "fontWeight": "bold"}}`))

	assert.Equal(t, "#FFA500", p.Row.New.FontColour)
	assert.Equal(t, "#ffff00", p.Row.New.BackgroundColour)
	assert.Equal(t, entities.FontBold, p.Row.New.FontStyle)
	assert.Equal(t, "#FFA500", p.Row.New.Underline.Colour)
}

func TestNormalizeCanonicalBeatsLegacy(t *testing.T) {
	p := Normalize(decode(t, `{"row": {"new": {"fontColour": "blue"}}, "highlight": {"fontColour": "red"}}`))

	assert.Equal(t, "#0000FF", p.Row.New.FontColour)
}

func TestNormalizeUnderlineFieldMerge(t *testing.T) {
	p := Normalize(decode(t, `{"row": {
		"default": {"fontColour": "#abc", "underline": {"thickness": 2}},
		"important": {"underline": false},
		"past": {"underline": {"colour": "nonsense", "width": -5}}
	}}`))

	assert.Equal(t, entities.Underline{Enabled: true, Width: 50, Thickness: 2, Colour: "#aabbcc"}, p.Row.Default.Underline)
	assert.False(t, p.Row.Important.Underline.Enabled)
	assert.Equal(t, 50.0, p.Row.Past.Underline.Width)
	assert.Equal(t, "#000000", p.Row.Past.Underline.Colour)
}

func TestNormalizeLineSpacing(t *testing.T) {
	assert.Equal(t, 4.0, Normalize(decode(t, `{"row": {"lineSpacing": 4}}`)).Row.LineSpacing)
	assert.Equal(t, 2.0, Normalize(decode(t, `{"row": {"lineSpacing": "4"}}`)).Row.LineSpacing)
	assert.Equal(t, 0.0, Normalize(decode(t, `{"lineSpacing": 0}`)).Row.LineSpacing)
}

func TestNormalizeMalformedDegrades(t *testing.T) {
	p := Normalize(decode(t, `{"row": {"default": "oops", "new": {"fontSize": "big", "fontStyle": 3}}, "header": [1,2]}`))

	assert.Equal(t, 10.0, p.Row.Default.FontSize)
	assert.Equal(t, 10.0, p.Row.New.FontSize)
	assert.Equal(t, entities.FontNormal, p.Row.New.FontStyle)
	assert.Equal(t, 14.0, p.Header.FontSize)
}

func TestNormalizeDocument(t *testing.T) {
	doc := NormalizeDocument(decode(t, `{
		"pageSize": {"width": 800},
		"margins": {"left": 10, "right": 20},
		"margin": 5,
		"header": {"logo": {"url": " https://example.com/logo.png ", "height": 30}, "text": ["Line 1", "Line 2"]},
		"footerText": "Confidential"
	}`))

	assert.Equal(t, 800.0, doc.PageSize.Width)
	assert.Equal(t, 841.89, doc.PageSize.Height)
	assert.Equal(t, 10.0, doc.LeftMargin)
	assert.Equal(t, 20.0, doc.RightMargin)
	assert.Equal(t, 5.0, doc.TopMargin)
	require.NotNil(t, doc.Header.Logo)
	assert.Equal(t, "https://example.com/logo.png", doc.Header.Logo.URL)
	assert.Equal(t, 30.0, doc.Header.Logo.Height)
	assert.Equal(t, []string{"Line 1", "Line 2"}, doc.Header.Text)
	assert.Equal(t, []string{"Confidential"}, doc.Footer.Text)
}

func TestNormalizeDocumentKeepsNonPositivePageSize(t *testing.T) {
	doc := NormalizeDocument(decode(t, `{"pageSize": {"width": 0, "height": -1}}`))

	assert.Equal(t, 0.0, doc.PageSize.Width)
	assert.ErrorIs(t, doc.ValidateGeometry(), entities.ErrInvalidPageGeometry)
}

func TestNormalizeDocumentNamedSizeAndOrientation(t *testing.T) {
	doc := NormalizeDocument(decode(t, `{"pageSize": "Letter", "orientation": "landscape"}`))

	assert.Equal(t, entities.PageSize{Width: 792, Height: 612}, doc.PageSize)
}

func TestNormalizeYAMLDocument(t *testing.T) {
	var raw map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(`
row:
  important:
    fontSize: 12
    backgroundColour: yellow
document:
  topMargin: 50
`), &raw))

	p := Normalize(raw)
	assert.Equal(t, 12.0, p.Row.Important.FontSize)
	assert.Equal(t, "#FFFF00", p.Row.Important.BackgroundColour)
	assert.Equal(t, 50.0, p.Document.TopMargin)
}

func TestNormalizeIsIdempotentOnCanonicalOutput(t *testing.T) {
	first := Normalize(decode(t, `{"row": {"past": {"fontColour": "gray"}}, "document": {"leftMargin": 20}}`))

	encoded, err := json.Marshal(first)
	require.NoError(t, err)
	second := Normalize(decode(t, string(encoded)))

	assert.Equal(t, first, second)
}
