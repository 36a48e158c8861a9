// Package engine provides the core simulation for Fox and Geese.
//
// The engine package implements the game mechanics including:
//   - Grid-based simultaneous movement with bounds clamping
//   - Same-cell and swap collision detection
//   - Per-type collision policies (kill, forced retreat)
//   - AI controllers that propose moves every round
//   - The round controller that sequences input, movement and resolution
//
// Core Types:
//
// Mission owns the grid, the entity registry, the AI controller registry and
// the collision list. MissionController drives one round at a time on top of
// a Mission. MissionDefinition describes a mission's grid and starting seeds
// and is usually produced by the config package.
//
// Usage:
//
//	mission, err := engine.NewMissionFromDefinition(def)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	controller := engine.NewMissionController(mission)
//	controller.PlayerInput("ul")
//	controller.MoveAIEntities()
//	status := controller.Status()
//	controller.ResetForNewRound()
//
// Game Rules:
//
// Every round the player moves the fox one step in any of eight directions
// (or waits) and the geese move towards it. A goose that meets the fox alone
// or with one other goose dies. Three or more geese meeting the fox kill it.
// Geese that bump into each other are sorted out by retreat: one keeps the
// cell, the others go back to where they started the round. The player wins
// when every goose is dead and loses when the fox dies.
package engine
