package engine

// FindCollisions records every shared cell and every swapped pair among
// living entities. Records are appended to the existing list, so callers
// normally ClearCollisions first.
func (m *Mission) FindCollisions() {
	byCell := make(map[Position][]*Entity)
	var cells []Position
	for _, id := range m.order {
		e := m.entities[id]
		if e.dead {
			continue
		}
		if _, seen := byCell[e.position]; !seen {
			cells = append(cells, e.position)
		}
		byCell[e.position] = append(byCell[e.position], e)
	}

	for _, cell := range cells {
		occupants := byCell[cell]
		if len(occupants) < 2 {
			continue
		}
		m.collisions = append(m.collisions, Collision{
			Kind:     CellCollision,
			Position: cell,
			Entities: occupants,
		})
	}

	for _, idA := range m.order {
		a := m.entities[idA]
		aPrev, ok := a.PreviousPosition()
		if a.dead || !ok {
			continue
		}
		for _, idB := range m.order {
			if idA == idB {
				continue
			}
			b := m.entities[idB]
			bPrev, ok := b.PreviousPosition()
			if b.dead || !ok {
				continue
			}
			if aPrev == b.position && bPrev == a.position {
				m.collisions = append(m.collisions, Collision{
					Kind:     SwapCollision,
					Position: a.position,
					Entities: []*Entity{b, a},
				})
			}
		}
	}
}

// ClearCollisions forgets every recorded collision
func (m *Mission) ClearCollisions() {
	m.collisions = nil
}

// Collisions returns a copy of the recorded collisions
func (m *Mission) Collisions() []Collision {
	out := make([]Collision, len(m.collisions))
	copy(out, m.collisions)
	return out
}
