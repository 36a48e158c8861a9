package service

import (
	"errors"
	"time"

	"github.com/wricardo/foxandgeese/game/engine"
	"github.com/wricardo/foxandgeese/game/presenter"
)

// ErrInvalidDirection is returned for direction codes the engine does not know
var ErrInvalidDirection = errors.New("invalid direction")

// Play stop codes
const (
	StopMissionComplete  = "mission_complete"
	StopInvalidDirection = "invalid_direction"
	StopInputRejected    = "input_rejected"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string         `json:"id"`
	MissionID      string         `json:"mission_id"`
	MissionName    string         `json:"mission_name"`
	CreatedAt      time.Time      `json:"created_at"`
	LastAccessedAt time.Time      `json:"last_accessed_at"`
	Status         *SessionStatus `json:"status"`
}

// SessionStatus is a full snapshot of a session's mission
type SessionStatus struct {
	SessionID     string               `json:"session_id"`
	MissionID     string               `json:"mission_id"`
	Round         int                  `json:"round"`
	Phase         engine.RoundPhase    `json:"phase"`
	MissionStatus engine.MissionStatus `json:"mission_status"`
	Grid          engine.Grid          `json:"grid"`
	Entities      []engine.EntityState `json:"entities"`
	Presenter     presenter.Status     `json:"presenter"`
	Board         []string             `json:"board"`
}

// ActionResult is returned by the single-step round operations
type ActionResult struct {
	Accepted bool           `json:"accepted"`
	Message  string         `json:"message,omitempty"`
	Step     presenter.Step `json:"step,omitempty"`
	Removed  []string       `json:"removed,omitempty"`
	Status   *SessionStatus `json:"status"`
}

// PlayResult contains the result of a batch of rounds
type PlayResult struct {
	RequestedMoves int                  `json:"requested_moves"`
	RoundsPlayed   int                  `json:"rounds_played"`
	Truncated      bool                 `json:"truncated,omitempty"`
	Limit          int                  `json:"limit,omitempty"`
	StoppedReason  string               `json:"stopped_reason,omitempty"`
	StopReasonCode string               `json:"stop_reason_code,omitempty"` // mission_complete|invalid_direction|input_rejected
	StoppedOnMove  int                  `json:"stopped_on_move,omitempty"`  // 1-based index of the move that caused stop
	MissionStatus  engine.MissionStatus `json:"mission_status"`
	Rounds         []RoundRecord        `json:"rounds"`
	Status         *SessionStatus       `json:"status"`
}

// RoundRecord is one resolved round in a session's history
type RoundRecord struct {
	Round         int                          `json:"round"`
	PlayerInput   string                       `json:"player_input"`
	Results       map[string]engine.MoveResult `json:"results"`
	MissionStatus engine.MissionStatus         `json:"mission_status"`
	Timestamp     time.Time                    `json:"timestamp"`
}

// HistoryOptions configures round history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated round history
type HistoryResponse struct {
	Rounds      []RoundRecord `json:"rounds"`
	TotalRounds int           `json:"total_rounds"`
	Page        int           `json:"page"`
	PageSize    int           `json:"page_size"`
	TotalPages  int           `json:"total_pages"`
	HasNext     bool          `json:"has_next"`
	HasPrevious bool          `json:"has_previous"`
}

// MissionInfo provides information about a mission definition
type MissionInfo struct {
	Filename    string `json:"filename"`
	MissionID   string `json:"mission_id"` // The identifier to use for session creation
	Name        string `json:"name"`
	Description string `json:"description"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Geese       int    `json:"geese"`
}
