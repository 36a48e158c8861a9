package engine

import "fmt"

// Grid is the immutable playing field of one mission
type Grid struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// NewGrid validates the dimensions and returns a grid
func NewGrid(width, height int) (Grid, error) {
	if width < MinGridSize || width > MaxGridSize {
		return Grid{}, fmt.Errorf("%w: width must be between %d and %d, got %d", ErrInvalidDefinition, MinGridSize, MaxGridSize, width)
	}
	if height < MinGridSize || height > MaxGridSize {
		return Grid{}, fmt.Errorf("%w: height must be between %d and %d, got %d", ErrInvalidDefinition, MinGridSize, MaxGridSize, height)
	}
	return Grid{Width: width, Height: height}, nil
}

// Contains checks if the position is on the grid
func (g Grid) Contains(p Position) bool {
	return p.X >= 0 && p.X < g.Width && p.Y >= 0 && p.Y < g.Height
}

// Clamp pulls a position back onto the grid
func (g Grid) Clamp(p Position) Position {
	if p.X < 0 {
		p.X = 0
	}
	if p.Y < 0 {
		p.Y = 0
	}
	if p.X >= g.Width {
		p.X = g.Width - 1
	}
	if p.Y >= g.Height {
		p.Y = g.Height - 1
	}
	return p
}

// pendingMove holds each axis independently so a partial move can be detected
type pendingMove struct {
	x, y       int
	hasX, hasY bool
}

// Entity is a creature on the grid. Its state is only changed through the
// Mission that owns it.
type Entity struct {
	entityType EntityType
	position   Position
	pending    pendingMove
	history    []Position
	dead       bool
}

func newEntity(entityType EntityType, pos Position) *Entity {
	return &Entity{
		entityType: entityType,
		position:   pos,
	}
}

// Type returns the entity type
func (e *Entity) Type() EntityType {
	return e.entityType
}

// Position returns the current position
func (e *Entity) Position() Position {
	return e.position
}

// IsDead reports whether the entity was killed
func (e *Entity) IsDead() bool {
	return e.dead
}

// PreviousPosition returns the position held before the latest move, if any
func (e *Entity) PreviousPosition() (Position, bool) {
	if len(e.history) == 0 {
		return Position{}, false
	}
	return e.history[len(e.history)-1], true
}

// PendingPosition returns the pending move when both axes are set
func (e *Entity) PendingPosition() (Position, bool) {
	if !e.pending.hasX || !e.pending.hasY {
		return Position{}, false
	}
	return Position{X: e.pending.x, Y: e.pending.y}, true
}

// wasStationary is true when the entity did not move in the latest round
func (e *Entity) wasStationary() bool {
	prev, ok := e.PreviousPosition()
	return !ok || prev == e.position
}

func (e *Entity) pushHistory() {
	e.history = append(e.history, e.position)
	if len(e.history) > historyLimit {
		e.history = append(e.history[:0], e.history[len(e.history)-historyLimit:]...)
	}
}

func (e *Entity) retreat() {
	if prev, ok := e.PreviousPosition(); ok {
		e.position = prev
	}
}
