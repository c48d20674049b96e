package pdfview

import (
	"github.com/runsheet/core/internal/adapters/render"
	"github.com/runsheet/core/internal/domain/entities"
)

const (
	fontFamily   = "Helvetica"
	cellPadding  = 2.0
	gutterWidth  = 3.0
	blockLeading = 1.2
	titleGap     = 6.0
	badgeScale   = 0.75
	badgePadding = 2.0
	badgeGap     = 4.0
)

type itemKind int

const (
	itemTitle itemKind = iota
	itemGroupTitle
	itemMeta
	itemLabels
	itemRow
)

type cellLayout struct {
	X     float64
	Width float64
	Lines []string
	Badge string
}

// item is one positioned block on a page. Y is the top edge.
type item struct {
	Kind    itemKind
	Y       float64
	Height  float64
	Lines   []string
	Cells   []cellLayout
	Variant entities.RowVariant
}

type pageLayout struct {
	Items []item
}

type layoutInput struct {
	View    entities.View
	Profile entities.StyleProfile
	Title   []string
}

// paginate positions every block of the document without drawing anything,
// so the total page count is known before the first footer is written.
func paginate(m textMeasurer, in layoutInput) []pageLayout {
	doc := in.Profile.Document
	b := blockBuilder{m: m, profile: in.Profile, columns: columnGeometry(in.View.Columns, doc)}
	p := paginator{
		top:       doc.TopMargin,
		bottom:    doc.PageSize.Height - doc.BottomMargin,
		threshold: doc.BottomPageThreshold,
	}
	p.newPage()

	if title := b.block(itemTitle, in.Profile.Header, in.Title...); title.Height > 0 {
		p.place(title)
		p.y += titleGap
	}

	showLabels := entities.AnyLabelVisible(in.View.Columns)
	badgeAt := entities.BadgeColumn(in.View.Columns)

	for gi, g := range in.View.Groups {
		head := []item{b.block(itemGroupTitle, in.Profile.GroupTitle, render.GroupTitle(g, in.View.GroupBy))}
		var below item
		if g.Meta != nil {
			if meta := b.block(itemMeta, in.Profile.GroupMetadata, g.Meta.Title, g.Meta.Above); meta.Height > 0 {
				head = append(head, meta)
			}
			below = b.block(itemMeta, in.Profile.GroupMetadata, g.Meta.Below)
		}

		var labels item
		if showLabels {
			labels = b.labels(in.View.Columns)
			head = append(head, labels)
		}

		rows := make([]item, len(g.Entries))
		for i, e := range g.Entries {
			rows[i] = b.row(e, in.View.Columns, badgeAt)
		}

		// Title, metadata, labels and the first row move as a unit.
		lead := 0.0
		for _, it := range head {
			lead += it.Height
		}
		if len(rows) > 0 {
			lead += rows[0].Height
		}

		if gi > 0 && !p.empty() {
			p.y += doc.GroupPaddingBottom
		}
		if !p.empty() && (p.remaining() < p.threshold || !p.fits(lead)) {
			p.newPage()
		}
		for _, it := range head {
			p.place(it)
		}

		for i, row := range rows {
			if i > 0 && (p.remaining() < p.threshold || !p.fits(row.Height)) {
				p.newPage()
				if showLabels {
					p.place(labels)
				}
			}
			p.place(row)
		}

		if below.Height > 0 {
			if !p.fits(below.Height) {
				p.newPage()
			}
			p.place(below)
		}
	}

	return p.pages
}

type paginator struct {
	top, bottom, threshold float64
	y                      float64
	pages                  []pageLayout
}

func (p *paginator) newPage() {
	p.pages = append(p.pages, pageLayout{})
	p.y = p.top
}

func (p *paginator) place(it item) {
	it.Y = p.y
	p.y += it.Height
	last := &p.pages[len(p.pages)-1]
	last.Items = append(last.Items, it)
}

func (p *paginator) empty() bool {
	return len(p.pages[len(p.pages)-1].Items) == 0
}

func (p *paginator) remaining() float64 {
	return p.bottom - p.y
}

func (p *paginator) fits(h float64) bool {
	return p.y+h <= p.bottom
}

// columnGeometry splits the content width proportionally.
func columnGeometry(columns []entities.ColumnDef, doc entities.DocumentSettings) []cellLayout {
	shares := entities.ColumnShares(columns)
	width := doc.ContentWidth()
	x := doc.LeftMargin

	out := make([]cellLayout, len(columns))
	for i := range columns {
		out[i] = cellLayout{X: x, Width: width * shares[i]}
		x += out[i].Width
	}
	return out
}

type blockBuilder struct {
	m       textMeasurer
	profile entities.StyleProfile
	columns []cellLayout
}

func (b blockBuilder) setFont(size float64, style entities.FontStyle) {
	b.m.SetFont(fontFamily, fontStyle(style.Bold(), style.Italic()), size)
}

// block wraps free text across the full content width. Empty texts are
// skipped; an all-empty block has zero height.
func (b blockBuilder) block(kind itemKind, style entities.StyleBlock, texts ...string) item {
	b.setFont(style.FontSize, style.FontStyle)
	width := b.profile.Document.ContentWidth()

	it := item{Kind: kind}
	for _, t := range texts {
		it.Lines = append(it.Lines, wrap(b.m, t, width)...)
	}
	if len(it.Lines) > 0 {
		it.Height = float64(len(it.Lines))*style.FontSize*blockLeading + 2*cellPadding
	}
	return it
}

func (b blockBuilder) labels(columns []entities.ColumnDef) item {
	style := b.profile.LabelRow
	b.setFont(style.FontSize, style.FontStyle)

	it := item{Kind: itemLabels, Cells: make([]cellLayout, len(columns))}
	lines := 1
	for i, c := range columns {
		it.Cells[i] = b.columns[i]
		if c.LabelVisible() {
			it.Cells[i].Lines = wrap(b.m, c.Label, b.columns[i].Width-2*cellPadding)
		}
		lines = max(lines, len(it.Cells[i].Lines))
	}
	it.Height = float64(lines)*style.FontSize*blockLeading + 2*cellPadding
	return it
}

func (b blockBuilder) row(e entities.Entry, columns []entities.ColumnDef, badgeAt int) item {
	variant := e.Variant()
	spec := variant.Spec()
	style := b.profile.Row.For(variant)

	reserve := 0.0
	if spec.Badge != "" {
		b.setFont(style.FontSize*badgeScale, entities.FontBold)
		reserve = b.m.GetStringWidth(spec.Badge) + 2*badgePadding + badgeGap
	}
	b.setFont(style.FontSize, style.FontStyle)

	it := item{Kind: itemRow, Variant: variant, Cells: make([]cellLayout, len(columns))}
	lines := 1
	for i, c := range columns {
		it.Cells[i] = b.columns[i]
		width := b.columns[i].Width - 2*cellPadding
		if i == 0 {
			width -= gutterWidth
		}
		if i == badgeAt {
			it.Cells[i].Badge = spec.Badge
			width -= reserve
		}
		it.Cells[i].Lines = wrap(b.m, render.CellText(e, c.Field), width)
		lines = max(lines, len(it.Cells[i].Lines))
	}
	it.Height = float64(lines)*rowLineHeight(style, b.profile.Row.LineSpacing) + 2*cellPadding
	return it
}

func rowLineHeight(style entities.RowStyle, spacing float64) float64 {
	return style.FontSize + spacing
}
