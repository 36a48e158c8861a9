package engine

import (
	"fmt"
	"slices"
)

// FoxID is the id given to the first fox of a mission and to the
// controller that takes the player's input
const FoxID = "fox"

// Controller proposes a direction code for each entity it owns every round
type Controller interface {
	// DetermineNextMoves plans the next round against the board
	DetermineNextMoves(board Board)
	// NextMoves returns the planned moves keyed by entity id
	NextMoves() map[string]string
	// ClearAllAIMoves forgets the planned moves
	ClearAllAIMoves()
	// DeleteEntities stops the controller from driving the given ids
	DeleteEntities(ids []string)
	// EntityIDs returns the ids the controller still drives
	EntityIDs() []string
}

// InstructionReceiver is implemented by controllers that take moves from outside
type InstructionReceiver interface {
	AddInstruction(code string)
}

// baseController holds the owned ids and the planned moves shared by every
// controller variant
type baseController struct {
	ids   []string
	moves map[string]string
}

func newBaseController(ids ...string) baseController {
	return baseController{
		ids:   slices.Clone(ids),
		moves: make(map[string]string),
	}
}

func (c *baseController) NextMoves() map[string]string {
	out := make(map[string]string, len(c.moves))
	for id, code := range c.moves {
		out[id] = code
	}
	return out
}

func (c *baseController) ClearAllAIMoves() {
	c.moves = make(map[string]string)
}

func (c *baseController) DeleteEntities(ids []string) {
	c.ids = slices.DeleteFunc(c.ids, func(id string) bool {
		return slices.Contains(ids, id)
	})
	for _, id := range ids {
		delete(c.moves, id)
	}
}

func (c *baseController) EntityIDs() []string {
	return slices.Clone(c.ids)
}

// AlwaysWait keeps its entities in place every round
type AlwaysWait struct {
	baseController
}

// NewAlwaysWait creates an AlwaysWait controller for the given entities
func NewAlwaysWait(ids ...string) *AlwaysWait {
	return &AlwaysWait{baseController: newBaseController(ids...)}
}

// DetermineNextMoves implements Controller
func (c *AlwaysWait) DetermineNextMoves(Board) {
	for _, id := range c.ids {
		c.moves[id] = WaitCode
	}
}

// ChaseTheFox steps each of its entities one cell towards the fox
type ChaseTheFox struct {
	baseController
}

// NewChaseTheFox creates a ChaseTheFox controller for the given entities
func NewChaseTheFox(ids ...string) *ChaseTheFox {
	return &ChaseTheFox{baseController: newBaseController(ids...)}
}

// DetermineNextMoves implements Controller. Every entity waits when there
// is no fox on the board.
func (c *ChaseTheFox) DetermineNextMoves(board Board) {
	c.moves = make(map[string]string, len(c.ids))

	fox, foxFound := board.Entity(FoxID)
	for _, id := range c.ids {
		e, ok := board.Entity(id)
		if !ok {
			panic(fmt.Sprintf("engine: controller entity %q is not on the board", id))
		}
		if !foxFound {
			c.moves[id] = WaitCode
			continue
		}
		c.moves[id] = DirectionTowards(e.Position(), fox.Position())
	}
}

// ManualInstructions drives a single entity with the latest instruction it
// was given, waiting when there is none
type ManualInstructions struct {
	baseController
	next string
}

// NewManualInstructions creates a ManualInstructions controller
func NewManualInstructions(id string) *ManualInstructions {
	return &ManualInstructions{baseController: newBaseController(id)}
}

// AddInstruction replaces the pending instruction
func (c *ManualInstructions) AddInstruction(code string) {
	c.next = code
}

// DetermineNextMoves implements Controller. The pending instruction is
// consumed.
func (c *ManualInstructions) DetermineNextMoves(Board) {
	code := WaitCode
	if c.next != "" {
		code = c.next
		c.next = ""
	}
	for _, id := range c.ids {
		c.moves[id] = code
	}
}

// ReplayInstructions plays back a queue of instructions, one per round,
// then waits
type ReplayInstructions struct {
	baseController
	queue []string
}

// NewReplayInstructions creates a ReplayInstructions controller
func NewReplayInstructions(id string, instructions ...string) *ReplayInstructions {
	c := &ReplayInstructions{baseController: newBaseController(id)}
	c.AddInstructions(instructions)
	return c
}

// AddInstructions appends to the queue
func (c *ReplayInstructions) AddInstructions(instructions []string) {
	c.queue = append(c.queue, instructions...)
}

// AddInstruction appends a single instruction to the queue
func (c *ReplayInstructions) AddInstruction(code string) {
	c.queue = append(c.queue, code)
}

// Remaining returns the number of queued instructions
func (c *ReplayInstructions) Remaining() int {
	return len(c.queue)
}

// DetermineNextMoves implements Controller
func (c *ReplayInstructions) DetermineNextMoves(Board) {
	code := WaitCode
	if len(c.queue) > 0 {
		code = c.queue[0]
		c.queue = c.queue[1:]
	}
	for _, id := range c.ids {
		c.moves[id] = code
	}
}
