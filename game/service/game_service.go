package service

import (
	"context"
	"time"

	"github.com/wricardo/mcp-training/wordsearch/game/engine"
	"github.com/wricardo/mcp-training/wordsearch/game/puzzle"
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, configName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Play
	Select(ctx context.Context, sessionID string, row, col int) (*SelectResult, error)
	SelectPath(ctx context.Context, sessionID string, cells []puzzle.Cell, reset bool) (*PathResult, error)
	Hint(ctx context.Context, sessionID string) (*HintResult, error)

	// Host commands
	Pause(ctx context.Context, sessionID string) (*CommandResult, error)
	Resume(ctx context.Context, sessionID string) (*CommandResult, error)
	Restart(ctx context.Context, sessionID string) (*CommandResult, error)
	ForceGameOver(ctx context.Context, sessionID string) (*CommandResult, error)
	Exit(ctx context.Context, sessionID string) (*CommandResult, error)

	// Round State
	GetRoundState(ctx context.Context, sessionID string) (*engine.RoundState, error)

	// Clock advances every session's round by one tick.
	Tick(ctx context.Context) int
	// ExpireSessions exits and removes sessions idle for longer than maxAge.
	ExpireSessions(ctx context.Context, maxAge time.Duration) int

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.PuzzleConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.PuzzleConfig) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id, configID string, config *engine.PuzzleConfig) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
}

// ConfigManager handles puzzle configuration loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.PuzzleConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.PuzzleConfig
	SaveConfig(name string, config *engine.PuzzleConfig) error
}

// Notifier receives round events and the state they produced, per session.
type Notifier interface {
	Publish(sessionID string, events []engine.Event, state *engine.RoundState)
}

// Session represents an active game session
type Session struct {
	ID             string
	ConfigID       string
	Round          *engine.Round
	Config         *engine.PuzzleConfig
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
