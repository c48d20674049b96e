package repository

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/runsheet/core/internal/domain/entities"
	"github.com/runsheet/core/internal/ports"
)

type presetFile struct {
	Presets []entities.GroupPreset `yaml:"presets"`
}

// PresetSourceImpl holds the group presets loaded at startup. It is
// read-only after construction.
type PresetSourceImpl struct {
	presets []entities.GroupPreset
	byID    map[string]int
}

var _ ports.PresetSource = (*PresetSourceImpl)(nil)

// LoadPresetFile reads and validates a YAML preset file.
func LoadPresetFile(path string) (*PresetSourceImpl, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read preset file: %w", err)
	}

	var file presetFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse preset file %s: %w", path, err)
	}
	return NewPresetSource(file.Presets)
}

// NewPresetSource validates presets. An empty groupBy means date grouping.
func NewPresetSource(presets []entities.GroupPreset) (*PresetSourceImpl, error) {
	src := &PresetSourceImpl{byID: make(map[string]int, len(presets))}

	for i, p := range presets {
		p.ID = strings.TrimSpace(p.ID)
		if p.ID == "" {
			return nil, fmt.Errorf("preset %d: id is required", i)
		}
		if _, dup := src.byID[p.ID]; dup {
			return nil, fmt.Errorf("preset %q: duplicate id", p.ID)
		}
		if p.GroupBy == "" {
			p.GroupBy = entities.GroupByDate
		}
		if !p.GroupBy.Valid() {
			return nil, fmt.Errorf("preset %q: unknown groupBy %q", p.ID, p.GroupBy)
		}
		for j, c := range p.Columns {
			if strings.TrimSpace(c.Field) == "" {
				return nil, fmt.Errorf("preset %q: column %d has no field", p.ID, j)
			}
		}

		src.byID[p.ID] = len(src.presets)
		src.presets = append(src.presets, p)
	}

	return src, nil
}

// Presets returns a copy in file order.
func (s *PresetSourceImpl) Presets() []entities.GroupPreset {
	return slices.Clone(s.presets)
}

func (s *PresetSourceImpl) Preset(id string) (entities.GroupPreset, bool) {
	i, ok := s.byID[id]
	if !ok {
		return entities.GroupPreset{}, false
	}
	return s.presets[i], true
}
