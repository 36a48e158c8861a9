package config

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/wricardo/foxandgeese/game/engine"
)

// MissionFile is the top-level document of a mission file
type MissionFile struct {
	Missions map[string]MissionEntry `yaml:"missions" json:"missions" jsonschema:"required,description=Missions keyed by id"`
}

// MissionEntry is one mission inside a mission file
type MissionEntry struct {
	Name        string       `yaml:"name,omitempty" json:"name,omitempty"`
	Description string       `yaml:"description,omitempty" json:"description,omitempty"`
	MapWidth    int          `yaml:"map width" json:"map width" jsonschema:"required,minimum=1,maximum=50"`
	MapHeight   int          `yaml:"map height" json:"map height" jsonschema:"required,minimum=1,maximum=50"`
	Fox         FoxEntry     `yaml:"fox" json:"fox" jsonschema:"required"`
	Geese       []GooseEntry `yaml:"geese" json:"geese" jsonschema:"required,minItems=1"`
}

// FoxEntry places the fox
type FoxEntry struct {
	Position engine.Position `yaml:"position" json:"position" jsonschema:"required"`
}

// GooseEntry places a goose and picks its AI
type GooseEntry struct {
	Position     engine.Position `yaml:"position" json:"position" jsonschema:"required"`
	AI           string          `yaml:"ai,omitempty" json:"ai,omitempty" jsonschema:"enum=chase,enum=wait,enum=replay"`
	Instructions []string        `yaml:"instructions,omitempty" json:"instructions,omitempty"`
}

// ParseMissionFile decodes a YAML mission document
func ParseMissionFile(data []byte) (*MissionFile, error) {
	var file MissionFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidMission, err)
	}
	if len(file.Missions) == 0 {
		return nil, fmt.Errorf("%w: no missions defined", ErrInvalidMission)
	}
	return &file, nil
}

// IDs returns the mission ids in the file, sorted
func (f *MissionFile) IDs() []string {
	ids := make([]string, 0, len(f.Missions))
	for id := range f.Missions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Definition builds and validates the engine definition for a mission id
func (f *MissionFile) Definition(id string) (*engine.MissionDefinition, error) {
	entry, ok := f.Missions[id]
	if !ok {
		return nil, ErrMissionNotFound
	}

	def := entry.toDefinition(id)
	if err := engine.ValidateMissionDefinition(def); err != nil {
		return nil, fmt.Errorf("%w: mission %q: %w", ErrInvalidMission, id, err)
	}
	return def, nil
}

func (e MissionEntry) toDefinition(id string) *engine.MissionDefinition {
	name := e.Name
	if name == "" {
		name = id
	}
	fox := e.Fox.Position

	geese := make([]engine.GooseSeed, 0, len(e.Geese))
	for _, g := range e.Geese {
		geese = append(geese, engine.GooseSeed{
			Position:     g.Position,
			AI:           engine.ControllerKind(g.AI),
			Instructions: g.Instructions,
		})
	}

	return &engine.MissionDefinition{
		ID:          id,
		Name:        name,
		Description: e.Description,
		Width:       e.MapWidth,
		Height:      e.MapHeight,
		Fox:         &fox,
		Geese:       geese,
	}
}

// EntryFromDefinition converts an engine definition back to its file form
func EntryFromDefinition(def *engine.MissionDefinition) MissionEntry {
	entry := MissionEntry{
		Name:        def.Name,
		Description: def.Description,
		MapWidth:    def.Width,
		MapHeight:   def.Height,
	}
	if def.Fox != nil {
		entry.Fox.Position = *def.Fox
	}
	for _, g := range def.Geese {
		entry.Geese = append(entry.Geese, GooseEntry{
			Position:     g.Position,
			AI:           string(g.AI),
			Instructions: g.Instructions,
		})
	}
	return entry
}
