package home

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runsheet/core/internal/domain/entities"
)

func labels(groups []LinkGroup) []string {
	out := make([]string, len(groups))
	for i, g := range groups {
		out[i] = g.Label
	}
	return out
}

func names(links []Link) []string {
	out := make([]string, len(links))
	for i, l := range links {
		out[i] = l.Name
	}
	return out
}

func TestGroupLinksOrdersByMinimumSortOrder(t *testing.T) {
	groups := GroupLinks([]Link{
		{Name: "b5", Group: "B", SortOrder: entities.NewSortKey(5)},
		{Name: "a1", Group: "A", SortOrder: entities.NewSortKey(1)},
		{Name: "b2", Group: "B", SortOrder: entities.NewSortKey(2)},
	})

	require.Equal(t, []string{"A", "B"}, labels(groups))
	assert.Equal(t, []string{"b5", "b2"}, names(groups[1].Links))
}

func TestGroupLinksUnsetSortOrderLast(t *testing.T) {
	groups := GroupLinks([]Link{
		{Name: "x", Group: "Unsorted"},
		{Name: "y", Group: "Late", SortOrder: entities.NewSortKey(100)},
		{Name: "z"},
		{Name: "w", Group: "Early", SortOrder: entities.NewSortKey(-1)},
	})

	assert.Equal(t, []string{"Early", "Late", DefaultGroup, "Unsorted"}, labels(groups))
}

func TestGroupLinksTiesByLabel(t *testing.T) {
	groups := GroupLinks([]Link{
		{Name: "1", Group: "Zeta", SortOrder: entities.NewSortKey(1)},
		{Name: "2", Group: "Alpha", SortOrder: entities.NewSortKey(1)},
	})
	assert.Equal(t, []string{"Alpha", "Zeta"}, labels(groups))
}

func TestSortKeyPeople(t *testing.T) {
	in := []entities.KeyPeopleCompany{
		{Company: "Later", People: []entities.KeyPerson{{Name: "p"}}},
		{Company: "Crew", SortOrder: entities.NewSortKey(1), People: []entities.KeyPerson{
			{Name: "unsorted"},
			{Name: "second", SortOrder: entities.NewSortKey(2)},
			{Name: "first", SortOrder: entities.NewSortKey(1)},
			{Name: "also-second", SortOrder: entities.NewSortKey(2)},
		}},
	}

	out := SortKeyPeople(in)

	require.Len(t, out, 2)
	assert.Equal(t, "Crew", out[0].Company)
	got := []string{}
	for _, p := range out[0].People {
		got = append(got, p.Name)
	}
	assert.Equal(t, []string{"first", "second", "also-second", "unsorted"}, got)
	assert.Equal(t, "unsorted", in[1].People[0].Name)
}

func TestRenderLinksAndPlaceholders(t *testing.T) {
	r, err := New(nil)
	require.NoError(t, err)

	out, err := r.Render([]Link{
		{Name: "Day 1", Group: "Days", HTMLURL: "https://cdn.example.com/day-1.html", PDFURL: "https://cdn.example.com/day-1.pdf"},
		{Name: "Day <2>", Group: "Days"},
	}, entities.Event{Name: "Summit & Co"}, Options{})
	require.NoError(t, err)

	assert.Contains(t, out, `<a class="button" href="https://cdn.example.com/day-1.html">Day 1</a>`)
	assert.Contains(t, out, `href="https://cdn.example.com/day-1.pdf"`)
	assert.Contains(t, out, `<span class="button disabled" aria-disabled="true" title="Not available">Day &lt;2&gt;</span>`)
	assert.Contains(t, out, "<title>Summit &amp; Co</title>")
}

func TestRenderPanelsRespectFlags(t *testing.T) {
	r, err := New(nil)
	require.NoError(t, err)

	event := entities.Event{
		Name:       "Summit",
		KeyInfo:    "**Wifi** guest <script>x()</script>",
		MOMKeyInfo: "Minutes",
		KeyPeople: []entities.KeyPeopleCompany{{Company: "Crew", People: []entities.KeyPerson{
			{Name: "Ann", Role: "Producer", Email: "ann@example.com"},
		}}},
	}

	out, err := r.Render(nil, event, Options{})
	require.NoError(t, err)
	assert.NotContains(t, out, "Wifi")
	assert.NotContains(t, out, "Key people")

	event.ShowKeyInfo = true
	event.ShowKeyPeople = true
	out, err = r.Render(nil, event, Options{})
	require.NoError(t, err)
	assert.Contains(t, out, "<strong>Wifi</strong>")
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "Meeting notes")
	assert.Contains(t, out, "<h3>Crew</h3>")
	assert.Contains(t, out, `href="mailto:ann@example.com"`)
}

func TestRenderGeneratedAt(t *testing.T) {
	r, err := New(nil)
	require.NoError(t, err)

	loc := time.FixedZone("CET", 3600)
	out, err := r.Render(nil, entities.Event{}, Options{Now: time.Date(2025, 3, 4, 8, 0, 0, 0, time.UTC), Location: loc})
	require.NoError(t, err)
	assert.Contains(t, out, "Generated 4 Mar 2025 09:00 CET")
	assert.True(t, strings.Contains(out, "<title>Schedule</title>"))
}
