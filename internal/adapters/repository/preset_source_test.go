package repository

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runsheet/core/internal/domain/entities"
)

const presetYAML = `
presets:
  - id: by-date
    label: By day
    groupSort: ["rawKey:asc"]
    columns:
      - field: time
        label: Time
        width: 20
      - field: description
        label: Session
        width: 80
        showLabel: false
  - id: by-stage
    label: By stage
    groupBy: locationId
    entrySort: ["date:asc", "time:asc"]
`

func writePresetFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "presets.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadPresetFile(t *testing.T) {
	src, err := LoadPresetFile(writePresetFile(t, presetYAML))
	require.NoError(t, err)

	presets := src.Presets()
	require.Len(t, presets, 2)
	assert.Equal(t, entities.GroupByDate, presets[0].GroupBy)
	require.Len(t, presets[0].Columns, 2)
	assert.False(t, presets[0].Columns[1].LabelVisible())
	assert.True(t, presets[0].Columns[0].LabelVisible())

	stage, ok := src.Preset("by-stage")
	require.True(t, ok)
	assert.Equal(t, entities.GroupByLocation, stage.GroupBy)
	assert.Equal(t, []string{"date:asc", "time:asc"}, stage.EntrySort)

	_, ok = src.Preset("missing")
	assert.False(t, ok)
}

func TestPresetsReturnsCopy(t *testing.T) {
	src, err := NewPresetSource([]entities.GroupPreset{{ID: "a"}})
	require.NoError(t, err)

	src.Presets()[0].ID = "mutated"
	p, ok := src.Preset("a")
	require.True(t, ok)
	assert.Equal(t, "a", p.ID)
}

func TestNewPresetSourceRejectsInvalid(t *testing.T) {
	cases := map[string][]entities.GroupPreset{
		"missing id": {{Label: "x"}},
		"duplicate":  {{ID: "a"}, {ID: "a"}},
		"bad group":  {{ID: "a", GroupBy: "speaker"}},
		"column":     {{ID: "a", Columns: []entities.ColumnDef{{Label: "x"}}}},
	}
	for name, presets := range cases {
		_, err := NewPresetSource(presets)
		assert.Error(t, err, name)
	}
}

func TestLoadPresetFileErrors(t *testing.T) {
	_, err := LoadPresetFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)

	_, err = LoadPresetFile(writePresetFile(t, "presets: [unterminated"))
	assert.Error(t, err)
}
