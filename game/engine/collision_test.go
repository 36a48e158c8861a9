package engine

import "testing"

func TestFindCollisionsSameCell(t *testing.T) {
	m := newTestMission(t, 3, 2)
	fox := mustAdd(t, m, Fox, 1, 0)
	goose := mustAdd(t, m, Goose, 0, 0)
	other := mustAdd(t, m, Goose, 2, 1)

	m.TryMove(fox, "W")
	m.TryMove(goose, "R")
	m.TryMove(other, "W")
	m.MoveAllEntities()
	m.FindCollisions()

	collisions := m.Collisions()
	if len(collisions) != 1 {
		t.Fatalf("Expected 1 collision, got %d", len(collisions))
	}
	c := collisions[0]
	if c.Kind != CellCollision {
		t.Errorf("Expected cell collision, got %s", c.Kind)
	}
	if c.Position != (Position{X: 1, Y: 0}) {
		t.Errorf("Collision at %v, want (1,0)", c.Position)
	}
	if len(c.Entities) != 2 {
		t.Fatalf("Expected 2 occupants, got %d", len(c.Entities))
	}
	f, _ := m.Entity(fox)
	g, _ := m.Entity(goose)
	if c.Entities[0] != f || c.Entities[1] != g {
		t.Error("Occupants should be listed in registry order")
	}
}

func TestFindCollisionsSwap(t *testing.T) {
	m := newTestMission(t, 2, 1)
	a := mustAdd(t, m, Goose, 0, 0)
	b := mustAdd(t, m, Goose, 1, 0)

	m.TryMove(a, "R")
	m.TryMove(b, "L")
	m.MoveAllEntities()
	m.FindCollisions()

	collisions := m.Collisions()
	if len(collisions) != 2 {
		t.Fatalf("Expected 2 swap records (one per ordered pair), got %d", len(collisions))
	}

	ea, _ := m.Entity(a)
	eb, _ := m.Entity(b)

	first := collisions[0]
	if first.Kind != SwapCollision {
		t.Errorf("Expected swap collision, got %s", first.Kind)
	}
	if first.Position != ea.Position() {
		t.Errorf("First swap at %v, want A's position %v", first.Position, ea.Position())
	}
	if first.Entities[0] != eb || first.Entities[1] != ea {
		t.Error("First swap record should list [B, A]")
	}

	second := collisions[1]
	if second.Position != eb.Position() {
		t.Errorf("Second swap at %v, want B's position %v", second.Position, eb.Position())
	}
	if second.Entities[0] != ea || second.Entities[1] != eb {
		t.Error("Second swap record should list [A, B]")
	}
}

func TestFindCollisionsWithoutHistory(t *testing.T) {
	m := newTestMission(t, 3, 3)
	mustAdd(t, m, Goose, 1, 1)
	mustAdd(t, m, Goose, 1, 1)

	m.FindCollisions()

	collisions := m.Collisions()
	if len(collisions) != 1 {
		t.Fatalf("Expected only the cell collision, got %d records", len(collisions))
	}
	if collisions[0].Kind != CellCollision {
		t.Errorf("Expected cell collision, got %s", collisions[0].Kind)
	}
}

func TestFindCollisionsAccumulates(t *testing.T) {
	m := newTestMission(t, 3, 3)
	mustAdd(t, m, Goose, 1, 1)
	mustAdd(t, m, Goose, 1, 1)

	m.FindCollisions()
	m.FindCollisions()
	if got := len(m.Collisions()); got != 2 {
		t.Errorf("Second FindCollisions without clearing should duplicate records, got %d", got)
	}

	m.ClearCollisions()
	if got := len(m.Collisions()); got != 0 {
		t.Errorf("Expected no collisions after clear, got %d", got)
	}

	m.FindCollisions()
	if got := len(m.Collisions()); got != 1 {
		t.Errorf("Expected 1 collision after clear and find, got %d", got)
	}
}

func TestFindCollisionsSkipsDead(t *testing.T) {
	m := newTestMission(t, 3, 3)
	a := mustAdd(t, m, Goose, 1, 1)
	mustAdd(t, m, Goose, 1, 1)

	e, _ := m.Entity(a)
	e.dead = true

	m.FindCollisions()
	if got := len(m.Collisions()); got != 0 {
		t.Errorf("Dead entities should not collide, got %d records", got)
	}
}

func TestCollisionsReturnsCopy(t *testing.T) {
	m := newTestMission(t, 3, 3)
	mustAdd(t, m, Goose, 0, 0)
	mustAdd(t, m, Goose, 0, 0)
	m.FindCollisions()

	got := m.Collisions()
	got[0].Position = Position{X: 2, Y: 2}

	if m.Collisions()[0].Position != (Position{X: 0, Y: 0}) {
		t.Error("Mutating the returned slice changed the mission")
	}
}
