package engine

// CollisionPolicy decides what happens to one entity caught in a collision
type CollisionPolicy interface {
	Resolve(self *Entity, collision Collision) []Action
}

// PolicyFunc adapts a plain function to CollisionPolicy
type PolicyFunc func(self *Entity, collision Collision) []Action

// Resolve calls f
func (f PolicyFunc) Resolve(self *Entity, collision Collision) []Action {
	return f(self, collision)
}

// PolicyRegistry maps entity types to their collision policy. Types without
// a policy are never affected by collisions.
type PolicyRegistry map[EntityType]CollisionPolicy

// DefaultPolicies returns a registry with the fox and goose rules
func DefaultPolicies() PolicyRegistry {
	return PolicyRegistry{
		Fox:   FoxPolicy{},
		Goose: GoosePolicy{},
	}
}

// FoxPolicy kills the fox when a mob of geese reaches it
type FoxPolicy struct{}

// Resolve implements CollisionPolicy
func (FoxPolicy) Resolve(self *Entity, collision Collision) []Action {
	geese := 0
	for _, e := range collision.Entities {
		if e == self {
			continue
		}
		if e.entityType == Goose {
			geese++
		}
	}
	if geese >= GooseMobSize {
		return []Action{{Kind: ActionKill, Position: collision.Position}}
	}
	return nil
}

// GoosePolicy kills a goose that meets the fox without enough backup and
// makes geese sharing a cell sort out who keeps it
type GoosePolicy struct{}

// Resolve implements CollisionPolicy
func (GoosePolicy) Resolve(self *Entity, collision Collision) []Action {
	var geese []*Entity
	foxPresent := false
	for _, e := range collision.Entities {
		switch {
		case e == self:
			geese = append(geese, e)
		case e.entityType == Goose:
			geese = append(geese, e)
		case e.entityType == Fox:
			foxPresent = true
		}
	}

	var actions []Action
	if foxPresent && len(geese) < GooseMobSize {
		actions = append(actions, Action{Kind: ActionKill, Position: collision.Position})
	}
	if len(geese) >= 2 {
		actions = append(actions, Action{Kind: ActionRetreat, Position: collision.Position, Group: geese})
	}
	return actions
}

type retreatGroup struct {
	position Position
	entities []*Entity
}

// ResolveCollisions applies the policies of every entity in every recorded
// collision. Kills land first. Retreats are then collapsed to one group per
// cell, the first group seen for a cell wins, and every member of a group
// except the advancing one goes back to where it started the round.
func (m *Mission) ResolveCollisions() {
	type pending struct {
		entity *Entity
		action Action
	}
	var actions []pending
	for _, collision := range m.collisions {
		for _, e := range collision.Entities {
			policy, ok := m.policies[e.entityType]
			if !ok || policy == nil {
				continue
			}
			for _, a := range policy.Resolve(e, collision) {
				actions = append(actions, pending{entity: e, action: a})
			}
		}
	}

	for _, p := range actions {
		if p.action.Kind == ActionKill {
			p.entity.dead = true
		}
	}

	var groups []retreatGroup
	seen := make(map[Position]bool)
	for _, p := range actions {
		if p.action.Kind != ActionRetreat || seen[p.action.Position] {
			continue
		}
		seen[p.action.Position] = true
		groups = append(groups, retreatGroup{position: p.action.Position, entities: p.action.Group})
	}

	for _, g := range groups {
		advancing := m.selectAdvancingEntity(g.entities)
		for _, e := range g.entities {
			if e == advancing {
				continue
			}
			e.retreat()
		}
	}
}

// selectAdvancingEntity returns the first entity that stood still this
// round, or a random one if they all moved
func (m *Mission) selectAdvancingEntity(group []*Entity) *Entity {
	if len(group) == 0 {
		return nil
	}
	for _, e := range group {
		if e.wasStationary() {
			return e
		}
	}
	idx := m.chooser(len(group))
	if idx < 0 || idx >= len(group) {
		idx = 0
	}
	return group[idx]
}
