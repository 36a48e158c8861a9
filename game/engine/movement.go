package engine

import "strings"

// Direction codes accepted by TryMove
const (
	DirUp        = "U"
	DirDown      = "D"
	DirLeft      = "L"
	DirRight     = "R"
	DirUpLeft    = "UL"
	DirUpRight   = "UR"
	DirDownLeft  = "DL"
	DirDownRight = "DR"
)

// AllDirections lists every code TryMove understands, wait included
var AllDirections = []string{DirUpLeft, DirUp, DirUpRight, DirLeft, WaitCode, DirRight, DirDownLeft, DirDown, DirDownRight}

// IsValidDirection checks if a direction code is recognised (case-insensitive)
func IsValidDirection(code string) bool {
	code = strings.ToUpper(code)
	for _, d := range AllDirections {
		if d == code {
			return true
		}
	}
	return false
}

// TryMove sets the pending position of an entity from a direction code.
// Unknown codes leave the entity untouched. An unknown id panics.
func (m *Mission) TryMove(id, code string) {
	e := m.mustEntity(id)
	code = strings.ToUpper(code)

	matched := false
	switch code {
	case DirUpLeft, DirUp, DirUpRight:
		e.pending.y, e.pending.hasY = e.position.Y+1, true
		matched = true
	case DirDownLeft, DirDown, DirDownRight:
		e.pending.y, e.pending.hasY = e.position.Y-1, true
		matched = true
	}
	switch code {
	case DirUpLeft, DirLeft, DirDownLeft:
		e.pending.x, e.pending.hasX = e.position.X-1, true
		matched = true
	case DirUpRight, DirRight, DirDownRight:
		e.pending.x, e.pending.hasX = e.position.X+1, true
		matched = true
	}
	if code == WaitCode {
		e.pending = pendingMove{x: e.position.X, y: e.position.Y, hasX: true, hasY: true}
		matched = true
	}

	if !matched {
		return
	}
	if !e.pending.hasX {
		e.pending.x, e.pending.hasX = e.position.X, true
	}
	if !e.pending.hasY {
		e.pending.y, e.pending.hasY = e.position.Y, true
	}
}

// MoveAllEntities applies every pending move at once. Each entity records
// where it stood, adopts its pending position if one is set, and is
// clamped back onto the grid.
func (m *Mission) MoveAllEntities() {
	for _, id := range m.order {
		e := m.entities[id]
		e.pushHistory()
		if pos, ok := e.PendingPosition(); ok {
			e.position = pos
		}
		e.position = m.grid.Clamp(e.position)
		e.pending = pendingMove{}
	}
}
