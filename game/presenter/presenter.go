package presenter

import (
	"go.uber.org/zap"

	"github.com/wricardo/foxandgeese/game/engine"
)

// Stage is the progress of a banner: not started, in progress, complete
type Stage string

const (
	NotStarted Stage = "not started"
	InProgress Stage = "in progress"
	Complete   Stage = "complete"
)

func (s Stage) next() Stage {
	switch s {
	case NotStarted:
		return InProgress
	default:
		return Complete
	}
}

// Step names what a call to Update did
type Step string

const (
	StepNone            Step = "none"
	StepMissionStart    Step = "mission_start"
	StepMoveEntities    Step = "move_entities"
	StepAnimate         Step = "animate"
	StepAwaitAnimation  Step = "await_animation"
	StepMissionComplete Step = "mission_complete"
)

// Message ids reported once the mission is over
const (
	MessageWin  = "win"
	MessageLose = "lose"
)

// Collaborator is notified by the presenter whenever a view should react
type Collaborator interface {
	OnMissionStartStageChanged(stage Stage)
	OnEntitiesShouldAnimate(results map[string]engine.MoveResult)
	OnMissionCompleteStageChanged(stage Stage, messageID string)
}

// NopCollaborator ignores every notification
type NopCollaborator struct{}

func (NopCollaborator) OnMissionStartStageChanged(Stage)                     {}
func (NopCollaborator) OnEntitiesShouldAnimate(map[string]engine.MoveResult) {}
func (NopCollaborator) OnMissionCompleteStageChanged(Stage, string)          {}

// Status is the presenter's view of the round
type Status struct {
	ControllerInitialized   bool                         `json:"controller_initialized"`
	MissionStartStage       Stage                        `json:"mission_start_stage"`
	ShowingMissionStart     bool                         `json:"showing_mission_start"`
	FinishedMissionStart    bool                         `json:"finished_mission_start"`
	WaitingForPlayerInput   bool                         `json:"waiting_for_player_input"`
	EntityMoves             map[string]engine.MoveResult `json:"entity_moves"`
	EntitiesHaveMoved       bool                         `json:"entities_have_moved"`
	MissionCompleteStage    Stage                        `json:"mission_complete_stage"`
	ShowingMissionComplete  bool                         `json:"showing_mission_complete"`
	FinishedMissionComplete bool                         `json:"finished_mission_complete"`
	MessageID               string                       `json:"message_id,omitempty"`
	Controller              engine.ControllerStatus      `json:"controller"`
}

// Option configures a Presenter
type Option func(*Presenter)

// WithCollaborator sets the collaborator that receives stage notifications
func WithCollaborator(c Collaborator) Option {
	return func(p *Presenter) {
		if c != nil {
			p.collaborator = c
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(p *Presenter) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// Presenter sequences a round for an external view. Each Update call does
// at most one thing so the view can observe every transition.
type Presenter struct {
	controller   *engine.MissionController
	collaborator Collaborator
	logger       *zap.Logger

	missionStart    Stage
	missionComplete Stage

	playerInput        *string
	results            map[string]engine.MoveResult
	finishedMoving     bool
	animationSignalled bool
}

// New creates a presenter on top of a round controller
func New(controller *engine.MissionController, opts ...Option) *Presenter {
	p := &Presenter{
		controller:      controller,
		collaborator:    NopCollaborator{},
		logger:          zap.NewNop(),
		missionStart:    NotStarted,
		missionComplete: NotStarted,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Controller returns the round controller
func (p *Presenter) Controller() *engine.MissionController {
	return p.controller
}

// Update advances the first stage that has work to do
func (p *Presenter) Update() Step {
	if p.controller == nil {
		return StepNone
	}

	if p.missionStart != Complete {
		p.missionStart = p.missionStart.next()
		p.logger.Debug("Mission start stage changed", zap.String("stage", string(p.missionStart)))
		p.collaborator.OnMissionStartStageChanged(p.missionStart)
		return StepMissionStart
	}

	if p.playerInput != nil && p.results == nil {
		if !p.controller.MoveAIEntities() {
			return StepNone
		}
		p.results = p.controller.Status().OtherEntityMoveResults
		if p.results == nil {
			p.results = map[string]engine.MoveResult{}
		}
		return StepMoveEntities
	}

	if p.results != nil && !p.finishedMoving {
		if p.animationSignalled {
			return StepAwaitAnimation
		}
		p.animationSignalled = true
		p.collaborator.OnEntitiesShouldAnimate(copyResults(p.results))
		return StepAnimate
	}

	if p.finishedMoving && p.messageID() != "" && p.missionComplete != Complete {
		p.missionComplete = p.missionComplete.next()
		p.logger.Debug("Mission complete stage changed",
			zap.String("stage", string(p.missionComplete)),
			zap.String("message_id", p.messageID()),
		)
		p.collaborator.OnMissionCompleteStageChanged(p.missionComplete, p.messageID())
		return StepMissionComplete
	}

	return StepNone
}

// ApplyPlayerInput hands the direction to the round controller if the
// presenter is waiting for input
func (p *Presenter) ApplyPlayerInput(direction string) bool {
	if !p.waitingForInput() {
		return false
	}
	if !p.controller.PlayerInput(direction) {
		return false
	}
	p.playerInput = &direction
	return true
}

// SetEntitiesFinishedMoving is called by the view once its animation is done
func (p *Presenter) SetEntitiesFinishedMoving() bool {
	if p.results == nil {
		return false
	}
	p.finishedMoving = true
	return true
}

// ResetForNewRound starts the next round. It is refused while the view
// still owes an animation. The purged entity ids are returned.
func (p *Presenter) ResetForNewRound() ([]string, bool) {
	if p.controller == nil {
		return nil, false
	}
	if p.results != nil && !p.finishedMoving {
		return nil, false
	}

	dead := p.controller.ResetForNewRound()
	p.playerInput = nil
	p.results = nil
	p.finishedMoving = false
	p.animationSignalled = false
	return dead, true
}

// Status returns the presenter's view of the round
func (p *Presenter) Status() Status {
	if p.controller == nil {
		return Status{}
	}

	return Status{
		ControllerInitialized:   true,
		MissionStartStage:       p.missionStart,
		ShowingMissionStart:     p.missionStart == InProgress,
		FinishedMissionStart:    p.missionStart == Complete,
		WaitingForPlayerInput:   p.waitingForInput(),
		EntityMoves:             copyResults(p.results),
		EntitiesHaveMoved:       p.finishedMoving,
		MissionCompleteStage:    p.missionComplete,
		ShowingMissionComplete:  p.missionComplete == InProgress,
		FinishedMissionComplete: p.missionComplete == Complete,
		MessageID:               p.messageID(),
		Controller:              p.controller.Status(),
	}
}

func (p *Presenter) waitingForInput() bool {
	return p.controller != nil && p.missionStart == Complete && p.playerInput == nil
}

func (p *Presenter) messageID() string {
	switch p.controller.Status().MissionStatus {
	case engine.PlayerWin:
		return MessageWin
	case engine.PlayerLose:
		return MessageLose
	}
	return ""
}

func copyResults(results map[string]engine.MoveResult) map[string]engine.MoveResult {
	if results == nil {
		return nil
	}
	out := make(map[string]engine.MoveResult, len(results))
	for id, r := range results {
		out[id] = r
	}
	return out
}
