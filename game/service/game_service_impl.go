package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wricardo/foxandgeese/game/engine"
	"github.com/wricardo/foxandgeese/game/presenter"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	missions MissionManager
	logger   *zap.Logger
	mu       sync.Mutex
}

// Option configures the game service
type Option func(*gameServiceImpl)

// WithLogger sets the service logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *gameServiceImpl) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, missions MissionManager, opts ...Option) GameService {
	s := &gameServiceImpl{
		sessions: sessions,
		missions: missions,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, missionID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var def *engine.MissionDefinition
	if missionID != "" {
		var err error
		def, err = s.missions.LoadMission(missionID)
		if err != nil {
			available, listErr := s.missions.ListMissions()
			if listErr == nil && len(available) > 0 {
				ids := make([]string, 0, len(available))
				for _, m := range available {
					ids = append(ids, m.MissionID)
				}
				return nil, fmt.Errorf("failed to load mission %q (available: %s): %w", missionID, strings.Join(ids, ", "), err)
			}
			return nil, fmt.Errorf("failed to load mission %q: %w", missionID, err)
		}
	} else {
		def = s.missions.GetDefault()
	}

	sess, err := s.sessions.Create("", def)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.logger.Info("Session created",
		zap.String("session_id", sess.ID),
		zap.String("mission_id", def.ID),
	)
	return buildSessionInfo(sess), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return buildSessionInfo(sess), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, buildSessionInfo(sess))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("failed to delete session %s: %w", sessionID, err)
	}
	s.logger.Info("Session deleted", zap.String("session_id", sessionID))
	return nil
}

// PlayerInput hands the player's direction to the session. The
// mission-start banner is skipped if it is still showing.
func (s *gameServiceImpl) PlayerInput(ctx context.Context, sessionID, direction string) (*ActionResult, error) {
	if !engine.IsValidDirection(direction) {
		return nil, fmt.Errorf("%w: %q (use one of %s)", ErrInvalidDirection, direction, strings.Join(engine.AllDirections, ", "))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	finishMissionStart(sess.Presenter)
	result := &ActionResult{Accepted: sess.Presenter.ApplyPlayerInput(direction)}
	if !result.Accepted {
		result.Message = rejectionMessage(sess)
	}
	result.Status = buildStatus(sess)
	return result, nil
}

// Tick advances the session's presenter by one step
func (s *gameServiceImpl) Tick(ctx context.Context, sessionID string) (*ActionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	step := s.update(sess)
	return &ActionResult{
		Accepted: step != presenter.StepNone,
		Step:     step,
		Status:   buildStatus(sess),
	}, nil
}

// FinishMoving tells the session that the view has finished animating
func (s *gameServiceImpl) FinishMoving(ctx context.Context, sessionID string) (*ActionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	result := &ActionResult{Accepted: sess.Presenter.SetEntitiesFinishedMoving()}
	if !result.Accepted {
		result.Message = "no moves to animate"
	}
	result.Status = buildStatus(sess)
	return result, nil
}

// EndRound resets the session for the next round
func (s *gameServiceImpl) EndRound(ctx context.Context, sessionID string) (*ActionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	removed, ok := sess.Presenter.ResetForNewRound()
	result := &ActionResult{Accepted: ok, Removed: removed}
	if !ok {
		result.Message = "entities are still animating; call finish-moving first"
	}
	result.Status = buildStatus(sess)
	return result, nil
}

// Play runs whole rounds, one per move, stopping when the mission ends
func (s *gameServiceImpl) Play(ctx context.Context, sessionID string, moves []string) (*PlayResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	result := &PlayResult{
		RequestedMoves: len(moves),
		Rounds:         []RoundRecord{},
	}
	if len(moves) > engine.MaxPlayMoves {
		moves = moves[:engine.MaxPlayMoves]
		result.Truncated = true
		result.Limit = engine.MaxPlayMoves
	}

	s.settleRound(sess)

	for i, move := range moves {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if sess.Controller.Status().MissionStatus.IsFinished() {
			result.StopReasonCode = StopMissionComplete
			result.StoppedReason = "mission is already over"
			result.StoppedOnMove = i + 1
			break
		}
		if !engine.IsValidDirection(move) {
			result.StopReasonCode = StopInvalidDirection
			result.StoppedReason = fmt.Sprintf("%q is not a direction", move)
			result.StoppedOnMove = i + 1
			break
		}

		if !sess.Presenter.ApplyPlayerInput(move) {
			result.StopReasonCode = StopInputRejected
			result.StoppedReason = rejectionMessage(sess)
			result.StoppedOnMove = i + 1
			break
		}
		s.update(sess)
		result.RoundsPlayed++
		if n := len(sess.History); n > 0 {
			result.Rounds = append(result.Rounds, sess.History[n-1])
		}

		s.settleRound(sess)

		if sess.Controller.Status().MissionStatus.IsFinished() {
			result.StopReasonCode = StopMissionComplete
			result.StoppedReason = fmt.Sprintf("mission ended: %s", sess.Controller.Status().MissionStatus)
			result.StoppedOnMove = i + 1
			break
		}
	}

	result.MissionStatus = sess.Controller.Status().MissionStatus
	result.Status = buildStatus(sess)

	s.logger.Debug("Play finished",
		zap.String("session_id", sess.ID),
		zap.Int("rounds_played", result.RoundsPlayed),
		zap.String("stop_reason_code", result.StopReasonCode),
	)
	return result, nil
}

// GetStatus retrieves the current session status
func (s *gameServiceImpl) GetStatus(ctx context.Context, sessionID string) (*SessionStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return buildStatus(sess), nil
}

// GetRoundHistory returns paginated round history
func (s *gameServiceImpl) GetRoundHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	history := sess.History
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := min(start+opts.Limit, total)

	rounds := []RoundRecord{}
	if start < total {
		if opts.Order == "desc" {
			for i := total - 1 - start; i >= total-end; i-- {
				rounds = append(rounds, history[i])
			}
		} else {
			rounds = append(rounds, history[start:end]...)
		}
	}

	return &HistoryResponse{
		Rounds:      rounds,
		TotalRounds: total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// ListMissions returns available missions
func (s *gameServiceImpl) ListMissions(ctx context.Context) ([]*MissionInfo, error) {
	return s.missions.ListMissions()
}

// LoadMission loads a specific mission definition
func (s *gameServiceImpl) LoadMission(ctx context.Context, missionID string) (*engine.MissionDefinition, error) {
	return s.missions.LoadMission(missionID)
}

// SaveMission saves a mission definition to disk
func (s *gameServiceImpl) SaveMission(ctx context.Context, missionID string, def *engine.MissionDefinition) error {
	if err := s.missions.SaveMission(missionID, def); err != nil {
		return fmt.Errorf("failed to save mission %q: %w", missionID, err)
	}
	return nil
}

func (s *gameServiceImpl) getSession(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	if err := s.sessions.UpdateLastAccessed(sessionID); err != nil {
		s.logger.Warn("Failed to update last accessed", zap.String("session_id", sessionID), zap.Error(err))
	}
	return sess, nil
}

// update runs one presenter step and records the round if moves were computed
func (s *gameServiceImpl) update(sess *Session) presenter.Step {
	step := sess.Presenter.Update()
	if step == presenter.StepMoveEntities {
		s.recordRound(sess)
	}
	return step
}

func (s *gameServiceImpl) recordRound(sess *Session) {
	status := sess.Controller.Status()
	input := ""
	if status.LastPlayerInput != nil {
		input = *status.LastPlayerInput
	}
	record := RoundRecord{
		Round:         status.Round,
		PlayerInput:   input,
		Results:       status.OtherEntityMoveResults,
		MissionStatus: status.MissionStatus,
		Timestamp:     time.Now(),
	}
	sess.History = append(sess.History, record)

	s.logger.Debug("Round recorded",
		zap.String("session_id", sess.ID),
		zap.Int("round", record.Round),
		zap.String("input", input),
		zap.String("mission_status", string(record.MissionStatus)),
	)
}

// settleRound drives the presenter until it is waiting for input or the
// mission is over, finishing any outstanding animation on the way
func (s *gameServiceImpl) settleRound(sess *Session) {
	p := sess.Presenter
	finishMissionStart(p)

	st := p.Status()
	if st.WaitingForPlayerInput {
		return
	}
	if st.EntityMoves == nil {
		// input given but moves not computed yet
		s.update(sess)
	}
	p.Update() // animation signal
	p.SetEntitiesFinishedMoving()

	if sess.Controller.Status().MissionStatus.IsFinished() {
		for p.Status().MissionCompleteStage != presenter.Complete {
			if p.Update() != presenter.StepMissionComplete {
				break
			}
		}
		return
	}
	p.ResetForNewRound()
}

func finishMissionStart(p *presenter.Presenter) {
	for !p.Status().FinishedMissionStart {
		if p.Update() != presenter.StepMissionStart {
			return
		}
	}
}

func rejectionMessage(sess *Session) string {
	status := sess.Controller.Status()
	switch {
	case status.MissionStatus.IsFinished():
		return fmt.Sprintf("mission is over: %s", status.MissionStatus)
	case status.Phase != engine.PhaseAwaitingInput:
		return fmt.Sprintf("round in progress (%s); end the round first", status.Phase)
	}
	return "not waiting for input"
}

func buildSessionInfo(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		MissionID:      sess.Definition.ID,
		MissionName:    sess.Definition.Name,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		Status:         buildStatus(sess),
	}
}

func buildStatus(sess *Session) *SessionStatus {
	controller := sess.Controller.Status()
	mission := sess.Controller.Mission()
	grid := mission.Grid()
	entities := mission.Snapshot()

	return &SessionStatus{
		SessionID:     sess.ID,
		MissionID:     sess.Definition.ID,
		Round:         controller.Round,
		Phase:         controller.Phase,
		MissionStatus: controller.MissionStatus,
		Grid:          grid,
		Entities:      entities,
		Presenter:     sess.Presenter.Status(),
		Board:         RenderBoard(grid, entities),
	}
}
