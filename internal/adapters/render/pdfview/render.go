// Package pdfview renders a prepared schedule view as a paginated PDF using
// the PDF core fonts.
package pdfview

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/runsheet/core/internal/adapters/render"
	"github.com/runsheet/core/internal/domain/entities"
	"github.com/runsheet/core/internal/infrastructure/logger"
)

const (
	logoName       = "header-logo"
	logoGap        = 8.0
	baselineOffset = 0.85
	white          = "#FFFFFF"
)

// Options carries the per-request inputs that are not part of the view.
type Options struct {
	Title       string
	EventName   string
	HeaderLines []string
	Now         time.Time
	Location    *time.Location
}

// Renderer is safe for concurrent use; every call builds its own document.
type Renderer struct {
	logos  LogoFetcher
	logger *logger.Logger
}

func New(logos LogoFetcher, log *logger.Logger) *Renderer {
	return &Renderer{logos: logos, logger: log}
}

// Render lays out and draws view. Only invalid page geometry and PDF
// serialization failures are errors; an unavailable logo is skipped.
func (r *Renderer) Render(ctx context.Context, view entities.View, profile entities.StyleProfile, opts Options) ([]byte, error) {
	doc := profile.Document
	if err := doc.ValidateGeometry(); err != nil {
		return nil, err
	}

	title := opts.Title
	if title == "" {
		title = view.Label
	}

	pdf := newDocument(doc)
	pdf.SetTitle(Sanitize(title), false)
	pdf.SetCreator("runsheet", false)
	pdf.SetCatalogSort(true)

	var generated string
	if !opts.Now.IsZero() {
		now := opts.Now
		if opts.Location != nil {
			now = now.In(opts.Location)
		}
		pdf.SetCreationDate(now)
		pdf.SetModificationDate(now)
		generated = "Generated " + render.GeneratedAt(now)
	}

	pages := paginate(pdf, layoutInput{
		View:    view,
		Profile: profile,
		Title:   nonEmpty(opts.EventName, title),
	})
	logo := r.loadLogo(ctx, pdf, doc)

	d := drawer{pdf: pdf, profile: profile}
	headerLines := append(append([]string{}, doc.Header.Text...), opts.HeaderLines...)
	footerLines := append([]string{}, doc.Footer.Text...)
	if generated != "" {
		footerLines = append(footerLines, generated)
	}

	for i, page := range pages {
		pdf.AddPage()
		d.header(logo, headerLines)
		for _, it := range page.Items {
			d.item(it)
		}
		d.footer(footerLines, i+1, len(pages))
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// newDocument sizes the page from doc. The cell margin is zero because the
// layout already reserves cell padding inside each column width.
func newDocument(doc entities.DocumentSettings) *fpdf.Fpdf {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: doc.PageSize.Width, Ht: doc.PageSize.Height},
	})
	pdf.SetMargins(doc.LeftMargin, doc.TopMargin, doc.RightMargin)
	pdf.SetCellMargin(0)
	pdf.SetAutoPageBreak(false, 0)
	return pdf
}

type logoImage struct {
	kind string
	w, h float64
}

func (r *Renderer) loadLogo(ctx context.Context, pdf *fpdf.Fpdf, doc entities.DocumentSettings) *logoImage {
	if doc.Header.Logo == nil || r.logos == nil {
		return nil
	}
	url := doc.Header.Logo.URL

	data, err := r.logos.Fetch(ctx, url)
	if err != nil {
		r.logger.Warnw("Logo unavailable, rendering without it", "url", url, "error", err)
		return nil
	}
	kind := imageType(data)
	if kind == "" {
		r.logger.Warnw("Logo has unsupported image format", "url", url)
		return nil
	}

	info := pdf.RegisterImageOptionsReader(logoName, fpdf.ImageOptions{ImageType: kind}, bytes.NewReader(data))
	if !pdf.Ok() || info == nil || info.Width() <= 0 || info.Height() <= 0 {
		r.logger.Warnw("Logo could not be decoded", "url", url, "error", pdf.Error())
		pdf.ClearError()
		return nil
	}

	maxH := doc.TopMargin - 2*headerInset(doc.TopMargin)
	return fitLogo(*doc.Header.Logo, info.Width(), info.Height(), maxH)
}

// fitLogo resolves the drawn logo size: explicit dimensions win, a single
// dimension keeps the aspect ratio, and the height never exceeds maxH.
func fitLogo(l entities.Logo, imgW, imgH, maxH float64) *logoImage {
	ratio := imgW / imgH
	w, h := l.Width, l.Height
	switch {
	case w > 0 && h > 0:
	case w > 0:
		h = w / ratio
	case h > 0:
		w = h * ratio
	default:
		h = maxH
		w = h * ratio
	}
	if maxH > 0 && h > maxH {
		w, h = w*maxH/h, maxH
	}
	if w <= 0 || h <= 0 {
		return nil
	}
	return &logoImage{w: w, h: h}
}

func headerInset(topMargin float64) float64 {
	return min(topMargin/4, 12)
}

type drawer struct {
	pdf     *fpdf.Fpdf
	profile entities.StyleProfile
}

func (d drawer) font(size float64, style entities.FontStyle, colour string) {
	d.pdf.SetFont(fontFamily, fontStyle(style.Bold(), style.Italic()), size)
	d.pdf.SetTextColor(render.RGB(colour))
}

func (d drawer) fill(x, y, w, h float64, colour string) {
	if colour == "" || colour == white {
		return
	}
	d.pdf.SetFillColor(render.RGB(colour))
	d.pdf.Rect(x, y, w, h, "F")
}

func (d drawer) text(x, y float64, s string) {
	if s != "" {
		d.pdf.Text(x, y, s)
	}
}

func (d drawer) header(logo *logoImage, lines []string) {
	doc := d.profile.Document
	inset := headerInset(doc.TopMargin)
	x := doc.LeftMargin

	if logo != nil {
		d.pdf.ImageOptions(logoName, x, inset, logo.w, logo.h, false, fpdf.ImageOptions{}, 0, "")
		x += logo.w + logoGap
	}

	style := d.profile.Header
	d.font(style.FontSize, style.FontStyle, style.FontColour)
	y := inset + style.FontSize*baselineOffset
	for _, l := range lines {
		d.text(x, y, Sanitize(l))
		y += style.FontSize * blockLeading
	}
}

func (d drawer) footer(lines []string, page, total int) {
	doc := d.profile.Document
	style := d.profile.Footer
	d.font(style.FontSize, style.FontStyle, style.FontColour)

	y := doc.PageSize.Height - doc.BottomMargin/2
	for i, l := range lines {
		d.text(doc.LeftMargin, y+float64(i)*style.FontSize*blockLeading, Sanitize(l))
	}

	counter := fmt.Sprintf("Page %d of %d", page, total)
	d.text(doc.PageSize.Width-doc.RightMargin-d.pdf.GetStringWidth(counter), y, counter)
}

func (d drawer) item(it item) {
	switch it.Kind {
	case itemTitle:
		d.block(it, d.profile.Header)
	case itemGroupTitle:
		d.block(it, d.profile.GroupTitle)
	case itemMeta:
		d.block(it, d.profile.GroupMetadata)
	case itemLabels:
		d.labels(it)
	case itemRow:
		d.row(it)
	}
}

func (d drawer) block(it item, style entities.StyleBlock) {
	doc := d.profile.Document
	d.fill(doc.LeftMargin, it.Y, doc.ContentWidth(), it.Height, style.BackgroundColour)
	d.font(style.FontSize, style.FontStyle, style.FontColour)

	lh := style.FontSize * blockLeading
	for i, l := range it.Lines {
		d.text(doc.LeftMargin, it.Y+cellPadding+float64(i)*lh+style.FontSize*baselineOffset, l)
	}
}

func (d drawer) labels(it item) {
	doc := d.profile.Document
	style := d.profile.LabelRow
	d.fill(doc.LeftMargin, it.Y, doc.ContentWidth(), it.Height, style.BackgroundColour)
	d.font(style.FontSize, style.FontStyle, style.FontColour)

	lh := style.FontSize * blockLeading
	for _, c := range it.Cells {
		for i, l := range c.Lines {
			d.text(c.X+cellPadding, it.Y+cellPadding+float64(i)*lh+style.FontSize*baselineOffset, l)
		}
	}
}

func (d drawer) row(it item) {
	doc := d.profile.Document
	style := d.profile.Row.For(it.Variant)
	lh := rowLineHeight(style, d.profile.Row.LineSpacing)
	baseline := it.Y + cellPadding + d.profile.Row.LineSpacing/2 + style.FontSize*baselineOffset

	d.fill(doc.LeftMargin, it.Y, doc.ContentWidth(), it.Height, style.BackgroundColour)
	if style.GutterColour != style.BackgroundColour {
		d.fill(doc.LeftMargin, it.Y, gutterWidth, it.Height, style.GutterColour)
	}

	for i, c := range it.Cells {
		d.font(style.FontSize, style.FontStyle, style.FontColour)
		x := c.X + cellPadding
		if i == 0 {
			x += gutterWidth
		}
		for j, l := range c.Lines {
			d.text(x, baseline+float64(j)*lh, l)
		}
		if c.Badge != "" {
			d.badge(c, x, baseline, lh, style)
		}
	}

	if u := style.Underline; u.Enabled && u.Width > 0 && u.Thickness > 0 {
		y := it.Y + it.Height - u.Thickness/2
		d.pdf.SetLineWidth(u.Thickness)
		d.pdf.SetDrawColor(render.RGB(u.Colour))
		d.pdf.Line(doc.LeftMargin, y, doc.LeftMargin+doc.ContentWidth()*u.Width/100, y)
	}
}

// badge is drawn after the last text line of the cell, on the same baseline.
func (d drawer) badge(c cellLayout, x, baseline, lh float64, style entities.RowStyle) {
	last := ""
	line := 0
	if n := len(c.Lines); n > 0 {
		last = c.Lines[n-1]
		line = n - 1
	}
	bx := x + d.pdf.GetStringWidth(last)
	if last != "" {
		bx += badgeGap
	}
	by := baseline + float64(line)*lh

	size := style.FontSize * badgeScale
	d.font(size, entities.FontBold, style.FontColour)
	bw := d.pdf.GetStringWidth(c.Badge) + 2*badgePadding

	d.pdf.SetLineWidth(0.5)
	d.pdf.SetDrawColor(render.RGB(style.FontColour))
	d.pdf.Rect(bx, by-size*baselineOffset-1, bw, size+2, "D")
	d.text(bx+badgePadding, by, c.Badge)
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
