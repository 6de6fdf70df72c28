package service

import (
	"time"

	"github.com/wricardo/mcp-training/wordsearch/game/engine"
	"github.com/wricardo/mcp-training/wordsearch/game/puzzle"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string               `json:"id"`
	ConfigName     string               `json:"config_name"`
	CreatedAt      time.Time            `json:"created_at"`
	LastAccessedAt time.Time            `json:"last_accessed_at"`
	RoundState     *engine.RoundState   `json:"round_state"`
	PuzzleConfig   *engine.PuzzleConfig `json:"puzzle_config"`
}

// SelectResult contains the result of a single tap
type SelectResult struct {
	Status     engine.SelectStatus `json:"status"`
	Cell       puzzle.Cell         `json:"cell"`
	Word       string              `json:"word,omitempty"`
	Candidate  string              `json:"candidate"`
	Message    string              `json:"message"`
	RoundState *engine.RoundState  `json:"round_state"`
	Events     []engine.Event      `json:"events,omitempty"`
}

// PathResult contains the result of a tap sequence
type PathResult struct {
	SelectsExecuted  int                `json:"selects_executed"`
	RequestedSelects int                `json:"requested_selects"`
	WordsFound       []string           `json:"words_found"`
	ScoreDelta       int                `json:"score_delta"`
	StoppedReason    string             `json:"stopped_reason,omitempty"`
	StoppedOnSelect  int                `json:"stopped_on_select,omitempty"` // 1-based
	Truncated        bool               `json:"truncated,omitempty"`
	Limit            int                `json:"limit,omitempty"`
	GameOver         bool               `json:"game_over"`
	Steps            []StepInfo         `json:"steps,omitempty"`
	RoundState       *engine.RoundState `json:"round_state"`
	Events           []engine.Event     `json:"events"`
}

// StepInfo is a compact record of one tap in a sequence
type StepInfo struct {
	Idx       int                 `json:"idx"`
	Cell      puzzle.Cell         `json:"cell"`
	Letter    string              `json:"letter,omitempty"`
	Status    engine.SelectStatus `json:"status"`
	Candidate string              `json:"candidate"`
	Word      string              `json:"word,omitempty"`
}

// CommandResult is returned by host commands such as pause or restart
type CommandResult struct {
	Command    string             `json:"command"`
	Message    string             `json:"message"`
	RoundState *engine.RoundState `json:"round_state"`
	Events     []engine.Event     `json:"events,omitempty"`
}

// HintResult points at the first letter of a word not found yet
type HintResult struct {
	Word      string      `json:"word"`
	Cell      puzzle.Cell `json:"cell"`
	Remaining int         `json:"remaining"`
}

// ConfigInfo provides information about a puzzle configuration
type ConfigInfo struct {
	Filename     string `json:"filename"`
	ConfigID     string `json:"config_id"` // The identifier to use for session creation
	Name         string `json:"name"`      // Display name
	Description  string `json:"description"`
	GridSize     int    `json:"grid_size"`
	WordCount    int    `json:"word_count"`
	RoundSeconds int    `json:"round_seconds"`
}
