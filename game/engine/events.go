package engine

import "time"

// EventType identifies what happened in a round.
type EventType string

const (
	EventRoundStarted     EventType = "round_started"
	EventGenerationFailed EventType = "generation_failed"
	EventWordFound        EventType = "word_found"
	EventScoreChanged     EventType = "score_changed"
	EventSelectionCleared EventType = "selection_cleared"
	EventPuzzleComplete   EventType = "puzzle_complete"
	EventRoundTimeout     EventType = "round_timeout"
	EventGameOver         EventType = "game_over"
	EventRoundExited      EventType = "round_exited"
	EventTimerStarted     EventType = "timer_started"
	EventTimerPaused      EventType = "timer_paused"
	EventTimerReset       EventType = "timer_reset"
	EventTick             EventType = "tick"
)

// Event is a notification from a round to its host.
type Event struct {
	Type        EventType `json:"type"`
	RoundID     string    `json:"round_id"`
	Message     string    `json:"message,omitempty"`
	Word        string    `json:"word,omitempty"`
	Score       int       `json:"score"`
	Phase       Phase     `json:"phase"`
	RemainingMs int64     `json:"remaining_ms"`
	Timestamp   time.Time `json:"timestamp"`
}

// Observer receives round events as they are emitted.
type Observer interface {
	Notify(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

// Notify calls f(e).
func (f ObserverFunc) Notify(e Event) {
	f(e)
}

// HasEvent reports whether events contains an event of type t.
func HasEvent(events []Event, t EventType) bool {
	for _, e := range events {
		if e.Type == t {
			return true
		}
	}
	return false
}
