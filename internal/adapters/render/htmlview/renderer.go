// Package htmlview renders a prepared schedule view as a self-contained HTML
// document.
package htmlview

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strconv"
	"strings"
	"time"

	"github.com/runsheet/core/internal/adapters/render"
	"github.com/runsheet/core/internal/adapters/render/markdown"
	"github.com/runsheet/core/internal/domain/entities"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Options carries the per-request inputs that are not part of the view.
type Options struct {
	Title       string
	EventName   string
	HeaderLines []string
	LogoURL     string
	PDFURL      string
	KeyInfo     string
	Now         time.Time
	Location    *time.Location
}

// Renderer is safe for concurrent use.
type Renderer struct {
	tmpl *template.Template
	md   *markdown.Renderer
}

// New parses the embedded templates.
func New(md *markdown.Renderer) (*Renderer, error) {
	tmpl, err := template.New("").ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse view templates: %w", err)
	}
	if md == nil {
		md = markdown.New()
	}
	return &Renderer{tmpl: tmpl, md: md}, nil
}

type columnData struct {
	Label string
	Width template.CSS
}

type cellData struct {
	Text  string
	Badge string
}

type rowData struct {
	Class     string
	Cells     []cellData
	RuleClass string
}

type groupData struct {
	Title     string
	MetaTitle string
	Above     string
	Below     string
	Rows      []rowData
}

type pageData struct {
	Title       string
	EventName   string
	HeaderLines []string
	LogoURL     string
	PDFURL      string
	KeyInfo     template.HTML
	CSS         template.CSS
	Columns     []columnData
	ShowLabels  bool
	ColumnCount int
	Groups      []groupData
	FooterLines []string
	GeneratedAt string
}

// Render produces the HTML document for view. All user text is escaped by
// html/template; key info is the only markup and goes through the sanitizer.
func (r *Renderer) Render(view entities.View, profile entities.StyleProfile, opts Options) (string, error) {
	keyInfo, err := r.md.Render(opts.KeyInfo)
	if err != nil {
		return "", fmt.Errorf("render key info: %w", err)
	}

	title := opts.Title
	if title == "" {
		title = view.Label
	}
	logoURL := opts.LogoURL
	if logoURL == "" && profile.Document.Header.Logo != nil {
		logoURL = profile.Document.Header.Logo.URL
	}

	data := pageData{
		Title:       title,
		EventName:   opts.EventName,
		HeaderLines: append(append([]string{}, profile.Document.Header.Text...), opts.HeaderLines...),
		LogoURL:     logoURL,
		PDFURL:      opts.PDFURL,
		KeyInfo:     keyInfo,
		CSS:         template.CSS(stylesheet(profile)),
		Columns:     columns(view.Columns),
		ShowLabels:  entities.AnyLabelVisible(view.Columns),
		ColumnCount: len(view.Columns),
		Groups:      groups(view, profile.Row),
		FooterLines: profile.Document.Footer.Text,
	}
	if !opts.Now.IsZero() {
		now := opts.Now
		if opts.Location != nil {
			now = now.In(opts.Location)
		}
		data.GeneratedAt = render.GeneratedAt(now)
	}

	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "view", data); err != nil {
		return "", fmt.Errorf("execute view template: %w", err)
	}
	return buf.String(), nil
}

func columns(defs []entities.ColumnDef) []columnData {
	shares := entities.ColumnShares(defs)
	out := make([]columnData, len(defs))
	for i, c := range defs {
		out[i] = columnData{Width: template.CSS(render.Percent(shares[i]))}
		if c.LabelVisible() {
			out[i].Label = c.Label
		}
	}
	return out
}

func groups(view entities.View, styles entities.RowStyles) []groupData {
	badgeAt := entities.BadgeColumn(view.Columns)
	out := make([]groupData, 0, len(view.Groups))

	for _, g := range view.Groups {
		gd := groupData{Title: render.GroupTitle(g, view.GroupBy)}
		if g.Meta != nil {
			gd.MetaTitle, gd.Above, gd.Below = g.Meta.Title, g.Meta.Above, g.Meta.Below
		}

		for _, e := range g.Entries {
			variant := e.Variant()
			spec := variant.Spec()
			row := rowData{Class: spec.CSSClass, Cells: make([]cellData, len(view.Columns))}
			for i, c := range view.Columns {
				row.Cells[i].Text = render.CellText(e, c.Field)
				if i == badgeAt {
					row.Cells[i].Badge = spec.Badge
				}
			}
			if styles.For(variant).Underline.Enabled {
				row.RuleClass = "rule-" + string(variant)
			}
			gd.Rows = append(gd.Rows, row)
		}
		out = append(out, gd)
	}
	return out
}

func stylesheet(p entities.StyleProfile) string {
	var b strings.Builder

	b.WriteString("*{box-sizing:border-box}")
	b.WriteString("body{margin:0;padding:24px;font-family:Helvetica,Arial,sans-serif;color:#000000}")
	b.WriteString(".doc-header{display:flex;align-items:flex-start;gap:16px;margin-bottom:16px}")
	b.WriteString(".doc-header .logo{max-height:80px}")
	b.WriteString(".doc-heading{flex:1}")
	b.WriteString(".doc-header h1{margin:0}")
	b.WriteString(".pdf-link{white-space:nowrap}")
	b.WriteString("table.schedule{width:100%;border-collapse:collapse;table-layout:fixed;margin-bottom:")
	b.WriteString(px(p.Document.GroupPaddingBottom))
	b.WriteString("}")
	b.WriteString("td,th{padding:2px 4px;vertical-align:top;text-align:left;word-wrap:break-word}")
	b.WriteString("tr.rule td{padding:0;background:transparent;border-left:none}")
	b.WriteString(".badge{display:inline-block;padding:0 4px;margin-left:4px;font-size:0.75em;font-weight:bold;border:1px solid currentColor;border-radius:3px}")

	block(&b, ".doc-header h1,.doc-header .event-name,.doc-header .header-line", p.Header)
	block(&b, ".doc-footer", p.Footer)
	block(&b, ".group-title", p.GroupTitle)
	block(&b, ".group-meta", p.GroupMetadata)
	block(&b, "th", p.LabelRow)

	for _, v := range entities.RowVariants {
		rs := p.Row.For(v)
		sel := "tr." + v.Spec().CSSClass + " td"
		b.WriteString(sel)
		b.WriteString("{")
		font(&b, rs.FontSize, rs.FontStyle, rs.FontColour)
		b.WriteString("background-color:" + rs.BackgroundColour + ";")
		b.WriteString("line-height:" + px(rs.FontSize+p.Row.LineSpacing) + "}")
		b.WriteString(sel + ":first-child{border-left:4px solid " + rs.GutterColour + "}")

		u := rs.Underline
		if u.Enabled {
			b.WriteString("tr.rule-" + string(v) + " div{width:" + num(u.Width) + "%;border-top:" + px(u.Thickness) + " solid " + u.Colour + "}")
		}
	}
	return b.String()
}

func block(b *strings.Builder, sel string, s entities.StyleBlock) {
	b.WriteString(sel)
	b.WriteString("{")
	font(b, s.FontSize, s.FontStyle, s.FontColour)
	if s.BackgroundColour != "" {
		b.WriteString("background-color:" + s.BackgroundColour + ";")
	}
	b.WriteString("}")
}

func font(b *strings.Builder, size float64, style entities.FontStyle, colour string) {
	b.WriteString("font-size:" + px(size) + ";")
	if style.Bold() {
		b.WriteString("font-weight:bold;")
	} else {
		b.WriteString("font-weight:normal;")
	}
	if style.Italic() {
		b.WriteString("font-style:italic;")
	} else {
		b.WriteString("font-style:normal;")
	}
	b.WriteString("color:" + colour + ";")
}

// Profile sizes are points; 1pt renders as 1px here to match the PDF scale.
func px(v float64) string {
	return num(v) + "px"
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
