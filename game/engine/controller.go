package engine

import (
	"sort"
	"strings"

	"go.uber.org/zap"
)

// ControllerStatus is a snapshot of the round controller
type ControllerStatus struct {
	Ready                  bool                  `json:"ready"`
	MissionStatus          MissionStatus         `json:"mission_status"`
	FoxMoved               bool                  `json:"fox_moved"`
	OtherEntityMoveResults map[string]MoveResult `json:"other_entity_move_results"`
	LastPlayerInput        *string               `json:"last_player_input"`
	Phase                  RoundPhase            `json:"phase"`
	Round                  int                   `json:"round"`
}

// ControllerOption configures a MissionController
type ControllerOption func(*MissionController)

// WithLogger sets the logger used for round tracing
func WithLogger(logger *zap.Logger) ControllerOption {
	return func(c *MissionController) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// MissionController runs one round at a time on top of a Mission:
// awaiting input, input received, round resolved, then back to awaiting
// input after ResetForNewRound.
type MissionController struct {
	mission *Mission
	logger  *zap.Logger

	phase       RoundPhase
	round       int
	foxMoved    bool
	playerInput *string
	results     map[string]MoveResult
	status      MissionStatus
}

// NewMissionController creates a controller for the mission. A nil mission
// gives a controller that reports itself as not ready and refuses input.
func NewMissionController(mission *Mission, opts ...ControllerOption) *MissionController {
	c := &MissionController{
		mission: mission,
		logger:  zap.NewNop(),
		phase:   PhaseAwaitingInput,
		status:  NotFinished,
	}
	for _, opt := range opts {
		opt(c)
	}
	if mission != nil {
		c.status = mission.Status()
	}
	return c
}

// Mission returns the underlying mission
func (c *MissionController) Mission() *Mission {
	return c.mission
}

// Phase returns the current round phase
func (c *MissionController) Phase() RoundPhase {
	return c.phase
}

// PlayerInput takes the player's direction for this round. It returns
// false if the controller is not waiting for input or the mission is over.
func (c *MissionController) PlayerInput(direction string) bool {
	if c.mission == nil || c.phase != PhaseAwaitingInput || c.status.IsFinished() {
		return false
	}

	direction = strings.ToLower(direction)
	if ctrl, ok := c.mission.Controller(FoxID); ok {
		if receiver, ok := ctrl.(InstructionReceiver); ok {
			receiver.AddInstruction(direction)
		}
	}

	c.results = nil
	c.foxMoved = true
	c.playerInput = &direction
	c.phase = PhaseInputReceived
	return true
}

// MoveAIEntities runs the round: every controller plans, every entity
// moves, collisions are found and resolved, and the results are recorded.
// It only runs once per round, after PlayerInput.
func (c *MissionController) MoveAIEntities() bool {
	if c.mission == nil || c.phase != PhaseInputReceived {
		return false
	}
	m := c.mission

	m.AskAllAIForNextMoves()
	moves := m.CollectMoves()
	ids := make([]string, 0, len(moves))
	for id := range moves {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	// an id missing from the registry panics in TryMove
	for _, id := range ids {
		m.TryMove(id, moves[id])
	}
	m.MoveAllEntities()

	m.ClearCollisions()
	m.FindCollisions()
	m.ResolveCollisions()

	c.results = make(map[string]MoveResult, len(m.order))
	for _, id := range m.order {
		e := m.entities[id]
		c.results[id] = MoveResult{X: e.position.X, Y: e.position.Y, IsDead: e.dead}
	}
	c.status = m.Status()
	c.round++
	c.phase = PhaseRoundResolved

	c.logger.Debug("Round resolved",
		zap.Int("round", c.round),
		zap.Any("moves", moves),
		zap.Int("collisions", len(m.collisions)),
		zap.String("mission_status", string(c.status)),
	)
	return true
}

// ResetForNewRound clears the round and removes dead entities everywhere.
// It returns the ids that were removed.
func (c *MissionController) ResetForNewRound() []string {
	c.foxMoved = false
	c.results = nil
	c.playerInput = nil
	c.phase = PhaseAwaitingInput

	if c.mission == nil {
		return nil
	}
	c.mission.ClearAllAIMoves()
	dead := c.mission.DeleteDeadEntities()
	if len(dead) > 0 {
		c.logger.Debug("Removed dead entities", zap.Strings("ids", dead))
	}
	return dead
}

// Status returns a snapshot of the round
func (c *MissionController) Status() ControllerStatus {
	var results map[string]MoveResult
	if c.results != nil {
		results = make(map[string]MoveResult, len(c.results))
		for id, r := range c.results {
			results[id] = r
		}
	}

	var input *string
	if c.playerInput != nil {
		v := *c.playerInput
		input = &v
	}

	return ControllerStatus{
		Ready:                  c.mission != nil,
		MissionStatus:          c.status,
		FoxMoved:               c.foxMoved,
		OtherEntityMoveResults: results,
		LastPlayerInput:        input,
		Phase:                  c.phase,
		Round:                  c.round,
	}
}
