package engine

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/wricardo/mcp-training/wordsearch/game/puzzle"
)

// Phase is the lifecycle stage of a round.
type Phase string

const (
	PhaseSetup    Phase = "setup"
	PhaseActive   Phase = "active"
	PhaseSolved   Phase = "solved"
	PhaseTimedOut Phase = "timed_out"
	PhaseExited   Phase = "exited"
)

// IsOver reports whether the round no longer accepts play.
func (p Phase) IsOver() bool {
	return p == PhaseSolved || p == PhaseTimedOut || p == PhaseExited
}

// SelectStatus describes what a Select call did.
type SelectStatus string

const (
	SelectRejected  SelectStatus = "rejected"  // round not accepting input, or cell off the board
	SelectDuplicate SelectStatus = "duplicate" // cell already in the selection
	SelectBroken    SelectStatus = "broken"    // cell left the line; selection cleared
	SelectExtended  SelectStatus = "extended"  // selection is still a prefix of an unfound word
	SelectFound     SelectStatus = "found"     // selection spelled an unfound word
	SelectDeadEnd   SelectStatus = "dead_end"  // selection cannot become a word; cleared
)

// SelectResult reports the effect of one tap.
type SelectResult struct {
	Status    SelectStatus  `json:"status"`
	Cell      puzzle.Cell   `json:"cell"`
	Word      string        `json:"word,omitempty"`
	Candidate string        `json:"candidate"`
	Selection []puzzle.Cell `json:"selection"`
	Score     int           `json:"score"`
	Phase     Phase         `json:"phase"`
	Events    []Event       `json:"events,omitempty"`
}

// Round is one word search round: board, selection, found words and clock.
type Round struct {
	cfg       RoundConfig
	rng       puzzle.Rand
	observers []Observer

	id        string
	phase     Phase
	board     puzzle.Result
	selection SelectionTracker
	matcher   *WordMatcher
	timer     *RoundTimer
	message   string
	announced bool

	// host-supplied flags
	paused   bool
	gameOver bool

	pending []Event
}

// NewRound validates cfg and sets up the first round. A nil rng uses a
// time-seeded source.
func NewRound(cfg RoundConfig, rng puzzle.Rand, observers ...Observer) (*Round, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	r := &Round{
		cfg:       cfg,
		rng:       rng,
		observers: observers,
	}
	r.setup()
	r.drain()
	return r, nil
}

// AddObserver registers o for subsequent events.
func (r *Round) AddObserver(o Observer) {
	r.observers = append(r.observers, o)
}

// setup generates a fresh board and starts the round.
func (r *Round) setup() {
	r.id = uuid.NewString()
	r.phase = PhaseSetup
	r.selection.Clear()
	r.matcher = NewWordMatcher(r.cfg.Words)
	r.timer = NewRoundTimer(r.cfg.Duration, r.cfg.TickInterval)
	r.announced = false

	r.board = puzzle.GenerateWithLimits(r.cfg.Words, r.cfg.GridSize, r.cfg.Alphabet, r.rng, r.cfg.Limits)

	// A failed board still gives an active, unsolvable round.
	r.phase = PhaseActive
	r.message = r.cfg.Messages.Welcome
	r.emit(Event{Type: EventRoundStarted, Message: r.message})
	if r.board.Failed {
		r.message = r.cfg.Messages.GenerationFailed
		r.emit(Event{Type: EventGenerationFailed, Message: r.message})
	}
	r.startTimer()
}

// Select taps the cell at row, col.
func (r *Round) Select(row, col int) SelectResult {
	cell := puzzle.Cell{Row: row, Col: col}
	res := SelectResult{Cell: cell, Status: SelectRejected}

	if r.AcceptingInput() && r.board.Grid.InBounds(cell) {
		res.Status, res.Word = r.apply(cell)
	}

	res.Candidate = r.selection.Word(r.board.Grid)
	res.Selection = r.selection.Cells()
	res.Score = r.matcher.Score()
	res.Phase = r.phase
	res.Events = r.drain()
	return res
}

func (r *Round) apply(cell puzzle.Cell) (SelectStatus, string) {
	switch r.selection.Add(cell) {
	case Duplicate:
		return SelectDuplicate, ""
	case Broken:
		r.emit(Event{Type: EventSelectionCleared, Message: "selection must follow a straight line"})
		return SelectBroken, ""
	}

	candidate := r.selection.Word(r.board.Grid)
	match, complete := r.matcher.Evaluate(candidate)
	switch match {
	case MatchFound:
		r.selection.Clear()
		r.message = fmt.Sprintf(r.cfg.Messages.WordFound, candidate)
		r.emit(Event{Type: EventWordFound, Word: candidate, Message: r.message})
		r.emit(Event{Type: EventScoreChanged})
		if complete {
			r.announceComplete()
		}
		r.settle(false)
		return SelectFound, candidate
	case MatchDeadEnd:
		r.selection.Clear()
		r.emit(Event{Type: EventSelectionCleared, Word: candidate, Message: "no remaining word starts with " + candidate})
		return SelectDeadEnd, ""
	default:
		return SelectExtended, ""
	}
}

// Tick advances the round clock by one interval.
func (r *Round) Tick() []Event {
	if r.phase != PhaseActive || r.paused || r.gameOver || !r.timer.Running() {
		return nil
	}
	timedOut := r.timer.Tick()
	r.emit(Event{Type: EventTick})
	r.settle(timedOut)
	return r.drain()
}

// settle ends the round if it is complete or its clock ran out. A complete
// puzzle wins over a timeout observed in the same step.
func (r *Round) settle(timedOut bool) {
	if r.phase != PhaseActive {
		return
	}
	if r.matcher.IsComplete() {
		r.announceComplete()
		r.finish(PhaseSolved)
		return
	}
	if timedOut {
		r.emit(Event{Type: EventRoundTimeout})
		r.finish(PhaseTimedOut)
	}
}

func (r *Round) announceComplete() {
	if r.announced {
		return
	}
	r.announced = true
	r.emit(Event{Type: EventPuzzleComplete, Message: r.cfg.Messages.PuzzleComplete})
}

// finish moves an active round into a terminal phase and notifies game over.
func (r *Round) finish(phase Phase) {
	r.timer.Stop()
	r.phase = phase
	switch phase {
	case PhaseSolved:
		r.message = r.cfg.Messages.PuzzleComplete
	case PhaseTimedOut:
		r.message = r.cfg.Messages.TimeUp
	}
	r.emit(Event{Type: EventGameOver, Message: r.message})
}

// Pause sets the host pause flag: the clock stops and selections are rejected.
func (r *Round) Pause() []Event {
	if !r.paused {
		r.paused = true
		r.pauseTimer()
	}
	return r.drain()
}

// Resume clears the host pause flag and continues the clock where it stopped.
func (r *Round) Resume() []Event {
	if r.paused {
		r.paused = false
		r.startTimer()
	}
	return r.drain()
}

// SetPaused applies the host isPaused flag.
func (r *Round) SetPaused(paused bool) []Event {
	if paused {
		return r.Pause()
	}
	return r.Resume()
}

// SetGameOverFlag applies the host isGameOver flag. While set, the clock is
// held and selections are rejected.
func (r *Round) SetGameOverFlag(over bool) []Event {
	if over != r.gameOver {
		r.gameOver = over
		if over {
			r.pauseTimer()
		} else {
			r.startTimer()
		}
	}
	return r.drain()
}

// ForceGameOver ends an active round as timed out, whatever the clock says.
func (r *Round) ForceGameOver() []Event {
	if r.phase == PhaseActive {
		r.finish(PhaseTimedOut)
	}
	return r.drain()
}

// Exit abandons the round immediately.
func (r *Round) Exit() []Event {
	if r.phase != PhaseExited {
		r.timer.Stop()
		r.selection.Clear()
		r.phase = PhaseExited
		r.emit(Event{Type: EventRoundExited})
	}
	return r.drain()
}

// Restart discards the round and sets up a new one with a fresh board.
func (r *Round) Restart() []Event {
	prevScore := r.matcher.Score()
	r.timer.Stop()
	r.emit(Event{Type: EventTimerReset})
	r.setup()
	if prevScore != 0 {
		r.emit(Event{Type: EventScoreChanged})
	}
	return r.drain()
}

func (r *Round) startTimer() {
	if r.phase != PhaseActive || r.paused || r.gameOver || r.timer.Running() || r.timer.Expired() {
		return
	}
	r.timer.Start()
	r.emit(Event{Type: EventTimerStarted})
}

func (r *Round) pauseTimer() {
	if !r.timer.Running() {
		return
	}
	r.timer.Pause()
	r.emit(Event{Type: EventTimerPaused})
}

// AcceptingInput reports whether Select calls are currently processed.
func (r *Round) AcceptingInput() bool {
	return r.phase == PhaseActive && !r.paused && !r.gameOver && !r.matcher.IsComplete()
}

// emit stamps e with the current round state, queues it for the caller and
// delivers it to observers.
func (r *Round) emit(e Event) {
	e.RoundID = r.id
	e.Score = r.matcher.Score()
	e.Phase = r.phase
	e.RemainingMs = r.timer.RemainingMillis()
	e.Timestamp = time.Now()
	r.pending = append(r.pending, e)
	for _, o := range r.observers {
		o.Notify(e)
	}
}

func (r *Round) drain() []Event {
	events := r.pending
	r.pending = nil
	return events
}

// ID returns the current round's identifier; it changes on Restart.
func (r *Round) ID() string { return r.id }

// Phase returns the lifecycle phase.
func (r *Round) Phase() Phase { return r.phase }

// Score returns the number of words found.
func (r *Round) Score() int { return r.matcher.Score() }

// Found returns the words found so far.
func (r *Round) Found() []string { return r.matcher.Found() }

// Remaining returns the words not found yet.
func (r *Round) Remaining() []string { return r.matcher.Remaining() }

// Grid returns a copy of the board.
func (r *Round) Grid() puzzle.Grid { return r.board.Grid.Clone() }

// Placements returns every placement of the board, found or not.
func (r *Round) Placements() []puzzle.Placement {
	return append([]puzzle.Placement(nil), r.board.Placements...)
}

// GenerationFailed reports whether the board is the blank fallback.
func (r *Round) GenerationFailed() bool { return r.board.Failed }

// Paused reports the host pause flag.
func (r *Round) Paused() bool { return r.paused }

// Remaining time on the clock.
func (r *Round) RemainingTime() time.Duration { return r.timer.Remaining() }

// Config returns the settings the round was created with.
func (r *Round) Config() RoundConfig { return r.cfg }
