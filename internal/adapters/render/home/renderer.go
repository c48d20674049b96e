// Package home renders the index page that links every snapshot of a run.
package home

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"slices"
	"strings"
	"time"

	"github.com/runsheet/core/internal/adapters/render"
	"github.com/runsheet/core/internal/adapters/render/markdown"
	"github.com/runsheet/core/internal/domain/entities"
)

// DefaultGroup labels snapshots that name no group.
const DefaultGroup = "Other"

//go:embed templates/*.tmpl
var templateFS embed.FS

// Link is one rendered snapshot. Empty URLs mean generation failed or is
// still pending.
type Link struct {
	Name      string
	Group     string
	SortOrder entities.SortKey
	HTMLURL   string
	PDFURL    string
}

// LinkGroup is a labelled run of links in input order.
type LinkGroup struct {
	Label string
	Links []Link
	rank  float64
}

type Options struct {
	Now      time.Time
	Location *time.Location
}

type Renderer struct {
	tmpl *template.Template
	md   *markdown.Renderer
}

func New(md *markdown.Renderer) (*Renderer, error) {
	tmpl, err := template.New("").ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse home templates: %w", err)
	}
	if md == nil {
		md = markdown.New()
	}
	return &Renderer{tmpl: tmpl, md: md}, nil
}

type pageData struct {
	Title       string
	LogoURL     string
	HeaderLines []string
	KeyInfo     template.HTML
	MOMKeyInfo  template.HTML
	KeyPeople   []entities.KeyPeopleCompany
	Groups      []LinkGroup
	GeneratedAt string
}

// Render builds the index page. Key info panels appear only when the event
// enables them and they have content.
func (r *Renderer) Render(links []Link, event entities.Event, opts Options) (string, error) {
	data := pageData{
		Title:       event.Name,
		LogoURL:     event.LogoURL,
		HeaderLines: event.Header,
		Groups:      GroupLinks(links),
	}
	if data.Title == "" {
		data.Title = "Schedule"
	}

	if event.ShowKeyInfo {
		var err error
		if data.KeyInfo, err = r.md.Render(event.KeyInfo); err != nil {
			return "", fmt.Errorf("render key info: %w", err)
		}
		if data.MOMKeyInfo, err = r.md.Render(event.MOMKeyInfo); err != nil {
			return "", fmt.Errorf("render meeting notes: %w", err)
		}
	}
	if event.ShowKeyPeople {
		data.KeyPeople = SortKeyPeople(event.KeyPeople)
	}
	if !opts.Now.IsZero() {
		now := opts.Now
		if opts.Location != nil {
			now = now.In(opts.Location)
		}
		data.GeneratedAt = render.GeneratedAt(now)
	}

	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "home", data); err != nil {
		return "", fmt.Errorf("execute home template: %w", err)
	}
	return buf.String(), nil
}

// GroupLinks buckets links by group label. Groups are ordered by the lowest
// sort order among their links (unset sorts last), then by label; links keep
// their input order within a group.
func GroupLinks(links []Link) []LinkGroup {
	var groups []LinkGroup
	index := make(map[string]int)

	for _, l := range links {
		label := strings.TrimSpace(l.Group)
		if label == "" {
			label = DefaultGroup
		}

		i, ok := index[label]
		if !ok {
			i = len(groups)
			index[label] = i
			groups = append(groups, LinkGroup{Label: label, rank: l.SortOrder.Rank()})
		}
		g := &groups[i]
		g.Links = append(g.Links, l)
		g.rank = min(g.rank, l.SortOrder.Rank())
	}

	slices.SortStableFunc(groups, func(a, b LinkGroup) int {
		switch {
		case a.rank < b.rank:
			return -1
		case a.rank > b.rank:
			return 1
		default:
			return strings.Compare(a.Label, b.Label)
		}
	})
	return groups
}

// SortKeyPeople orders companies and the people within them by sort order,
// keeping input order for ties. The input is not modified.
func SortKeyPeople(companies []entities.KeyPeopleCompany) []entities.KeyPeopleCompany {
	out := make([]entities.KeyPeopleCompany, 0, len(companies))
	for _, c := range companies {
		people := slices.Clone(c.People)
		slices.SortStableFunc(people, func(a, b entities.KeyPerson) int {
			return compareRank(a.SortOrder, b.SortOrder)
		})
		c.People = people
		out = append(out, c)
	}
	slices.SortStableFunc(out, func(a, b entities.KeyPeopleCompany) int {
		return compareRank(a.SortOrder, b.SortOrder)
	})
	return out
}

func compareRank(a, b entities.SortKey) int {
	ra, rb := a.Rank(), b.Rank()
	switch {
	case ra < rb:
		return -1
	case ra > rb:
		return 1
	default:
		return 0
	}
}
