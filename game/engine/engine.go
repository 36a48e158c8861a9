package engine

import (
	"fmt"
	"math/rand/v2"
)

// Board is the read-only view of a mission that AI controllers plan against
type Board interface {
	Grid() Grid
	Entity(id string) (*Entity, bool)
	EntityIDs() []string
}

// Chooser picks the index of the entity that keeps a contested cell when
// none of the candidates stood still. n is always at least 1.
type Chooser func(n int) int

// MissionOption configures a Mission
type MissionOption func(*Mission)

// WithChooser replaces the random chooser used to break retreat ties
func WithChooser(chooser Chooser) MissionOption {
	return func(m *Mission) {
		if chooser != nil {
			m.chooser = chooser
		}
	}
}

// WithPolicy registers (or overrides) the collision policy for an entity type
func WithPolicy(entityType EntityType, policy CollisionPolicy) MissionOption {
	return func(m *Mission) {
		m.policies[entityType] = policy
	}
}

// Mission owns the grid, the entity registry, the AI controllers and the
// collisions of the current round. Registry order is insertion order and
// drives every deterministic ordering in the engine.
type Mission struct {
	grid Grid

	entities   map[string]*Entity
	order      []string
	typeCounts map[EntityType]int

	controllers     map[string]Controller
	controllerOrder []string

	collisions []Collision
	policies   PolicyRegistry
	chooser    Chooser
}

// NewMission creates an empty mission on the given grid
func NewMission(grid Grid, opts ...MissionOption) *Mission {
	m := &Mission{
		grid:        grid,
		entities:    make(map[string]*Entity),
		typeCounts:  make(map[EntityType]int),
		controllers: make(map[string]Controller),
		policies:    DefaultPolicies(),
		chooser:     rand.IntN,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Grid returns the mission grid
func (m *Mission) Grid() Grid {
	return m.grid
}

// AddEntity places a new entity and returns its generated id
func (m *Mission) AddEntity(entityType EntityType, pos Position) (string, error) {
	if entityType == "" {
		return "", fmt.Errorf("%w: entity type is required", ErrInvalidDefinition)
	}
	if !m.grid.Contains(pos) {
		return "", fmt.Errorf("%w: %s at (%d,%d) is outside the %dx%d grid",
			ErrInvalidDefinition, entityType, pos.X, pos.Y, m.grid.Width, m.grid.Height)
	}

	id := m.nextID(entityType)
	m.entities[id] = newEntity(entityType, pos)
	m.order = append(m.order, id)
	return id, nil
}

func (m *Mission) nextID(entityType EntityType) string {
	n := m.typeCounts[entityType]
	m.typeCounts[entityType] = n + 1
	if entityType == Fox && n == 0 {
		return string(Fox)
	}
	return fmt.Sprintf("%s_%03d", entityType, n)
}

// Entity looks up an entity by id
func (m *Mission) Entity(id string) (*Entity, bool) {
	e, ok := m.entities[id]
	return e, ok
}

func (m *Mission) mustEntity(id string) *Entity {
	e, ok := m.entities[id]
	if !ok {
		panic(fmt.Sprintf("engine: unknown entity id %q", id))
	}
	return e
}

// EntityIDs returns every registered id in registry order
func (m *Mission) EntityIDs() []string {
	ids := make([]string, len(m.order))
	copy(ids, m.order)
	return ids
}

// Snapshot returns the state of every entity in registry order
func (m *Mission) Snapshot() []EntityState {
	states := make([]EntityState, 0, len(m.order))
	for _, id := range m.order {
		e := m.entities[id]
		states = append(states, EntityState{
			ID:       id,
			Type:     e.entityType,
			Position: e.position,
			IsDead:   e.dead,
		})
	}
	return states
}

// AddController registers an AI controller under an id. Registering the
// same id twice replaces the earlier controller.
func (m *Mission) AddController(id string, c Controller) {
	if _, exists := m.controllers[id]; !exists {
		m.controllerOrder = append(m.controllerOrder, id)
	}
	m.controllers[id] = c
}

// Controller looks up an AI controller by id
func (m *Mission) Controller(id string) (Controller, bool) {
	c, ok := m.controllers[id]
	return c, ok
}

// ControllerIDs returns the controller ids in registration order
func (m *Mission) ControllerIDs() []string {
	ids := make([]string, len(m.controllerOrder))
	copy(ids, m.controllerOrder)
	return ids
}

// AskAllAIForNextMoves lets every controller plan its round
func (m *Mission) AskAllAIForNextMoves() {
	for _, id := range m.controllerOrder {
		m.controllers[id].DetermineNextMoves(m)
	}
}

// CollectMoves merges every controller's proposed moves. Later controllers
// win if two of them claim the same entity.
func (m *Mission) CollectMoves() map[string]string {
	moves := make(map[string]string)
	for _, id := range m.controllerOrder {
		for entityID, code := range m.controllers[id].NextMoves() {
			moves[entityID] = code
		}
	}
	return moves
}

// ClearAllAIMoves empties every controller's proposed moves
func (m *Mission) ClearAllAIMoves() {
	for _, id := range m.controllerOrder {
		m.controllers[id].ClearAllAIMoves()
	}
}

// DeleteDeadEntities removes dead entities from the registry and from every
// controller, returning the purged ids in registry order
func (m *Mission) DeleteDeadEntities() []string {
	var dead []string
	kept := m.order[:0]
	for _, id := range m.order {
		if m.entities[id].dead {
			dead = append(dead, id)
			delete(m.entities, id)
			continue
		}
		kept = append(kept, id)
	}
	m.order = kept

	if len(dead) > 0 {
		for _, id := range m.controllerOrder {
			m.controllers[id].DeleteEntities(dead)
		}
	}
	return dead
}

// Status reports whether the player has won, lost, or neither
func (m *Mission) Status() MissionStatus {
	foxes, deadFoxes := 0, 0
	geese, deadGeese := 0, 0
	for _, id := range m.order {
		e := m.entities[id]
		switch e.entityType {
		case Fox:
			foxes++
			if e.dead {
				deadFoxes++
			}
		case Goose:
			geese++
			if e.dead {
				deadGeese++
			}
		}
	}

	if foxes == 0 || geese == 0 {
		return NotFinished
	}
	if deadFoxes > 0 {
		return PlayerLose
	}
	if deadGeese == geese {
		return PlayerWin
	}
	return NotFinished
}
