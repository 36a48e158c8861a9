package main

import (
	"math/rand"

	"github.com/wricardo/foxandgeese/game/engine"
)

// HuntStrategy steers the fox towards the nearest goose while never stepping
// where a mob of geese can reach it in the same round
type HuntStrategy struct {
	grid engine.Grid
	rng  *rand.Rand

	// visits counts rounds spent on each cell, to break out of loops
	visits map[engine.Position]int
}

// NewHuntStrategy creates a strategy for a grid. The seed breaks ties between
// equally good moves so repeated attempts explore different lines.
func NewHuntStrategy(grid engine.Grid, seed int64) *HuntStrategy {
	return &HuntStrategy{
		grid:   grid,
		rng:    rand.New(rand.NewSource(seed)),
		visits: make(map[engine.Position]int),
	}
}

type candidate struct {
	code    string
	threats int
	score   int
}

// NextMove picks the fox's direction for the next round
func (s *HuntStrategy) NextMove(entities []engine.EntityState) string {
	var fox *engine.EntityState
	var geese []engine.Position
	for i := range entities {
		e := &entities[i]
		if e.IsDead {
			continue
		}
		switch e.Type {
		case engine.Fox:
			fox = e
		case engine.Goose:
			geese = append(geese, e.Position)
		}
	}
	if fox == nil || len(geese) == 0 {
		return engine.WaitCode
	}
	s.visits[fox.Position]++

	var safe, all []candidate
	for _, code := range engine.AllDirections {
		next := s.grid.Clamp(stepFrom(fox.Position, code))

		c := candidate{code: code, score: s.visits[next]}
		nearest := -1
		for _, g := range geese {
			d := engine.ChebyshevDistance(next, g)
			if d <= 1 {
				c.threats++
			}
			if nearest < 0 || d < nearest {
				nearest = d
			}
		}
		c.score += nearest * 10

		all = append(all, c)
		if c.threats < engine.GooseMobSize {
			safe = append(safe, c)
		}
	}

	if len(safe) > 0 {
		return s.pick(safe, func(c candidate) int { return c.score })
	}
	return s.pick(all, func(c candidate) int { return c.threats })
}

// pick returns the code of a lowest-cost candidate, breaking ties at random
func (s *HuntStrategy) pick(candidates []candidate, cost func(candidate) int) string {
	var best []candidate
	for _, c := range candidates {
		switch {
		case len(best) == 0 || cost(c) < cost(best[0]):
			best = []candidate{c}
		case cost(c) == cost(best[0]):
			best = append(best, c)
		}
	}
	return best[s.rng.Intn(len(best))].code
}

// stepFrom returns the unclamped cell one step from p in a direction
func stepFrom(p engine.Position, code string) engine.Position {
	switch code {
	case engine.DirUpLeft, engine.DirUp, engine.DirUpRight:
		p.Y++
	case engine.DirDownLeft, engine.DirDown, engine.DirDownRight:
		p.Y--
	}
	switch code {
	case engine.DirUpLeft, engine.DirLeft, engine.DirDownLeft:
		p.X--
	case engine.DirUpRight, engine.DirRight, engine.DirDownRight:
		p.X++
	}
	return p
}
