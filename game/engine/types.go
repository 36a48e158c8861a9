package engine

// EntityType identifies the kind of creature an entity is
type EntityType string

const (
	Fox   EntityType = "fox"
	Goose EntityType = "goose"
)

// MissionStatus reports whether a mission has ended and who won
type MissionStatus string

const (
	NotFinished MissionStatus = "not finished"
	PlayerWin   MissionStatus = "player win"
	PlayerLose  MissionStatus = "player lose"
)

// IsFinished reports whether the status is a win or a loss
func (s MissionStatus) IsFinished() bool {
	return s == PlayerWin || s == PlayerLose
}

// RoundPhase is the round controller's position in the per-round state machine
type RoundPhase string

const (
	PhaseAwaitingInput RoundPhase = "awaiting input"
	PhaseInputReceived RoundPhase = "input received"
	PhaseRoundResolved RoundPhase = "round resolved"
)

// CollisionKind distinguishes shared-cell collisions from position swaps
type CollisionKind string

const (
	CellCollision CollisionKind = "cell"
	SwapCollision CollisionKind = "swap"
)

// ActionKind is the outcome a collision policy asks for
type ActionKind string

const (
	ActionKill    ActionKind = "kill"
	ActionRetreat ActionKind = "retreat"
)

const (
	// WaitCode keeps an entity in place for the round
	WaitCode = "W"

	// Validation constants
	MinGridSize  = 1
	MaxGridSize  = 50
	MaxPlayMoves = 50

	// GooseMobSize is the number of geese that overpower the fox
	GooseMobSize = 3

	historyLimit = 16
)

// Position represents x,y coordinates
type Position struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// Collision is one round's record of entities that met
type Collision struct {
	Kind     CollisionKind
	Position Position
	Entities []*Entity
}

// Action is a single outcome returned by a collision policy
type Action struct {
	Kind     ActionKind
	Position Position
	Group    []*Entity
}

// MoveResult is where an entity ended the round and whether it survived
type MoveResult struct {
	X      int  `json:"x"`
	Y      int  `json:"y"`
	IsDead bool `json:"is_dead"`
}

// EntityState is a read-only view of an entity for snapshots
type EntityState struct {
	ID       string     `json:"id"`
	Type     EntityType `json:"type"`
	Position Position   `json:"position"`
	IsDead   bool       `json:"is_dead"`
}
