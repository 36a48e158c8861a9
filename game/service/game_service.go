package service

import (
	"context"
	"time"

	"github.com/wricardo/foxandgeese/game/engine"
	"github.com/wricardo/foxandgeese/game/presenter"
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, missionID string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Round Operations
	PlayerInput(ctx context.Context, sessionID, direction string) (*ActionResult, error)
	Tick(ctx context.Context, sessionID string) (*ActionResult, error)
	FinishMoving(ctx context.Context, sessionID string) (*ActionResult, error)
	EndRound(ctx context.Context, sessionID string) (*ActionResult, error)
	Play(ctx context.Context, sessionID string, moves []string) (*PlayResult, error)

	// Game State
	GetStatus(ctx context.Context, sessionID string) (*SessionStatus, error)
	GetRoundHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Missions
	ListMissions(ctx context.Context) ([]*MissionInfo, error)
	LoadMission(ctx context.Context, missionID string) (*engine.MissionDefinition, error)
	SaveMission(ctx context.Context, missionID string, def *engine.MissionDefinition) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, def *engine.MissionDefinition) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
}

// MissionManager handles mission definition loading
type MissionManager interface {
	LoadMission(id string) (*engine.MissionDefinition, error)
	ListMissions() ([]*MissionInfo, error)
	GetDefault() *engine.MissionDefinition
	SaveMission(id string, def *engine.MissionDefinition) error
}

// Session represents an active mission
type Session struct {
	ID             string
	Definition     *engine.MissionDefinition
	Controller     *engine.MissionController
	Presenter      *presenter.Presenter
	History        []RoundRecord
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
