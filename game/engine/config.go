package engine

import (
	"errors"
	"fmt"
)

// ErrInvalidDefinition is returned for missions that cannot be built
var ErrInvalidDefinition = errors.New("invalid mission definition")

// ControllerKind selects the AI variant that drives a goose
type ControllerKind string

const (
	ControllerChase  ControllerKind = "chase"
	ControllerWait   ControllerKind = "wait"
	ControllerReplay ControllerKind = "replay"
)

// Controller ids used by NewMissionFromDefinition
const (
	ChaseControllerID = "goose"
)

// GooseSeed is the starting state of one goose
type GooseSeed struct {
	Position     Position       `json:"position"`
	AI           ControllerKind `json:"ai,omitempty"`
	Instructions []string       `json:"instructions,omitempty"`
}

// Seed is one (entityType, x, y) entry of a mission's starting layout
type Seed struct {
	Type         EntityType
	X, Y         int
	Controller   ControllerKind
	Instructions []string
}

// MissionDefinition describes a mission grid and its starting entities
type MissionDefinition struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Width       int         `json:"width"`
	Height      int         `json:"height"`
	Fox         *Position   `json:"fox,omitempty"`
	Geese       []GooseSeed `json:"geese"`
}

// Seeds returns the flat list of starting entities, fox first
func (d *MissionDefinition) Seeds() []Seed {
	seeds := make([]Seed, 0, len(d.Geese)+1)
	if d.Fox != nil {
		seeds = append(seeds, Seed{Type: Fox, X: d.Fox.X, Y: d.Fox.Y})
	}
	for _, g := range d.Geese {
		kind := g.AI
		if kind == "" {
			kind = ControllerChase
		}
		seeds = append(seeds, Seed{
			Type:         Goose,
			X:            g.Position.X,
			Y:            g.Position.Y,
			Controller:   kind,
			Instructions: g.Instructions,
		})
	}
	return seeds
}

// ValidateMissionDefinition validates a mission definition for correctness and playability
func ValidateMissionDefinition(d *MissionDefinition) error {
	if d == nil {
		return fmt.Errorf("%w: definition is nil", ErrInvalidDefinition)
	}
	grid, err := NewGrid(d.Width, d.Height)
	if err != nil {
		return err
	}

	if d.Fox == nil {
		return fmt.Errorf("%w: a fox is required", ErrInvalidDefinition)
	}
	if !grid.Contains(*d.Fox) {
		return fmt.Errorf("%w: fox at (%d,%d) is outside the %dx%d grid",
			ErrInvalidDefinition, d.Fox.X, d.Fox.Y, d.Width, d.Height)
	}

	if len(d.Geese) == 0 {
		return fmt.Errorf("%w: at least one goose is required", ErrInvalidDefinition)
	}
	for i, g := range d.Geese {
		if !grid.Contains(g.Position) {
			return fmt.Errorf("%w: goose %d at (%d,%d) is outside the %dx%d grid",
				ErrInvalidDefinition, i+1, g.Position.X, g.Position.Y, d.Width, d.Height)
		}
		switch g.AI {
		case "", ControllerChase, ControllerWait, ControllerReplay:
		default:
			return fmt.Errorf("%w: goose %d has unknown ai %q", ErrInvalidDefinition, i+1, g.AI)
		}
		for j, code := range g.Instructions {
			if !IsValidDirection(code) {
				return fmt.Errorf("%w: goose %d instruction %d %q is not a direction",
					ErrInvalidDefinition, i+1, j+1, code)
			}
		}
	}

	return nil
}

// NewMissionFromDefinition builds a ready-to-play mission. The fox is
// driven by a ManualInstructions controller registered as "fox"; chasing
// geese share one ChaseTheFox controller and every other goose gets its
// own controller.
func NewMissionFromDefinition(d *MissionDefinition, opts ...MissionOption) (*Mission, error) {
	if err := ValidateMissionDefinition(d); err != nil {
		return nil, err
	}

	grid, err := NewGrid(d.Width, d.Height)
	if err != nil {
		return nil, err
	}
	m := NewMission(grid, opts...)

	var chasers []string
	type single struct {
		id         string
		controller Controller
	}
	var singles []single

	for _, seed := range d.Seeds() {
		id, err := m.AddEntity(seed.Type, Position{X: seed.X, Y: seed.Y})
		if err != nil {
			return nil, err
		}

		if seed.Type == Fox {
			if id == FoxID {
				m.AddController(FoxID, NewManualInstructions(id))
			}
			continue
		}

		switch seed.Controller {
		case ControllerWait:
			singles = append(singles, single{id: "wait:" + id, controller: NewAlwaysWait(id)})
		case ControllerReplay:
			singles = append(singles, single{id: "replay:" + id, controller: NewReplayInstructions(id, seed.Instructions...)})
		default:
			chasers = append(chasers, id)
		}
	}

	if len(chasers) > 0 {
		m.AddController(ChaseControllerID, NewChaseTheFox(chasers...))
	}
	for _, s := range singles {
		m.AddController(s.id, s.controller)
	}

	return m, nil
}

// DefaultMissionDefinition is the built-in mission used when no mission
// files are available
func DefaultMissionDefinition() *MissionDefinition {
	return &MissionDefinition{
		ID:          "default",
		Name:        "First Hunt",
		Description: "A single goose on a narrow field",
		Width:       5,
		Height:      2,
		Fox:         &Position{X: 2, Y: 0},
		Geese: []GooseSeed{
			{Position: Position{X: 0, Y: 0}},
		},
	}
}
