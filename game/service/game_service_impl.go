package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/wricardo/mcp-training/wordsearch/game/engine"
	"github.com/wricardo/mcp-training/wordsearch/game/puzzle"
	"github.com/wricardo/mcp-training/wordsearch/telemetry"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrConfigNotFound  = errors.New("configuration not found")
	ErrNoHint          = errors.New("no hint available")
)

// Option configures a game service.
type Option func(*gameServiceImpl)

// WithNotifier publishes round events to n.
func WithNotifier(n Notifier) Option {
	return func(s *gameServiceImpl) { s.notifier = n }
}

// WithTracer overrides the tracer used for service spans.
func WithTracer(t trace.Tracer) Option {
	return func(s *gameServiceImpl) { s.tracer = t }
}

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	notifier Notifier
	tracer   trace.Tracer

	// mu serializes every round input and guards Session.LastAccessedAt.
	// Anything that marks a session accessed takes it for writing.
	mu sync.RWMutex
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager, opts ...Option) GameService {
	s := &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
		tracer:   telemetry.Tracer("service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	_, span := s.tracer.Start(ctx, "session.create")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	var config *engine.PuzzleConfig
	var err error
	configID := configName
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			return nil, s.configError(configName, err)
		}
	} else {
		config = s.configs.GetDefault()
		configID = s.configIDFor(config)
	}

	// Let session manager generate a proper 4-character ID
	session, err := s.sessions.Create("", configID, config)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	state := session.Round.Snapshot()
	span.SetAttributes(roundAttributes(session.ID, &state)...)
	log.Info().
		Str("session", session.ID).
		Str("config", configID).
		Bool("generation_failed", state.GenerationFailed).
		Int("attempts", state.Attempts).
		Msg("session created")

	return sessionInfo(session, &state), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.touch(sessionID)
	if err != nil {
		return nil, err
	}

	state := session.Round.Snapshot()
	return sessionInfo(session, &state), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		state := sess.Round.Snapshot()
		result = append(result, sessionInfo(sess, &state))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return err
	}
	log.Info().Str("session", sessionID).Msg("session deleted")
	return nil
}

// Select taps one cell
func (s *gameServiceImpl) Select(ctx context.Context, sessionID string, row, col int) (*SelectResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.touch(sessionID)
	if err != nil {
		return nil, err
	}

	res := sess.Round.Select(row, col)
	state := sess.Round.Snapshot()
	s.publish(sess.ID, res.Events, &state)

	return &SelectResult{
		Status:     res.Status,
		Cell:       res.Cell,
		Word:       res.Word,
		Candidate:  res.Candidate,
		Message:    selectMessage(res, state.Message),
		RoundState: &state,
		Events:     res.Events,
	}, nil
}

// SelectPath taps cells in order. It stops early once the round no longer
// accepts input.
func (s *gameServiceImpl) SelectPath(ctx context.Context, sessionID string, cells []puzzle.Cell, reset bool) (*PathResult, error) {
	_, span := s.tracer.Start(ctx, "round.select_path")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.touch(sessionID)
	if err != nil {
		return nil, err
	}

	result := &PathResult{
		RequestedSelects: len(cells),
		WordsFound:       []string{},
		Events:           []engine.Event{},
	}

	if reset {
		result.Events = append(result.Events, sess.Round.Restart()...)
	}

	if len(cells) > engine.MaxBulkSelects {
		cells = cells[:engine.MaxBulkSelects]
		result.Truncated = true
		result.Limit = engine.MaxBulkSelects
	}

	startScore := sess.Round.Score()
	grid := sess.Round.Grid()

	for i, c := range cells {
		if !sess.Round.AcceptingInput() {
			result.StoppedReason = stopReason(sess.Round)
			result.StoppedOnSelect = i + 1
			break
		}

		res := sess.Round.Select(c.Row, c.Col)
		result.SelectsExecuted++
		result.Events = append(result.Events, res.Events...)

		step := StepInfo{Idx: i + 1, Cell: c, Status: res.Status, Candidate: res.Candidate, Word: res.Word}
		if r, ok := grid.At(c); ok {
			step.Letter = string(r)
		}
		result.Steps = append(result.Steps, step)

		if res.Word != "" {
			result.WordsFound = append(result.WordsFound, res.Word)
		}
		if res.Status == engine.SelectRejected {
			result.StoppedReason = fmt.Sprintf("cell (%d,%d) is outside the board", c.Row, c.Col)
			result.StoppedOnSelect = i + 1
			break
		}
	}

	state := sess.Round.Snapshot()
	result.ScoreDelta = sess.Round.Score() - startScore
	result.GameOver = state.Phase.IsOver()
	result.RoundState = &state

	span.SetAttributes(
		attribute.String("session.id", sess.ID),
		attribute.Int("selects.requested", result.RequestedSelects),
		attribute.Int("selects.executed", result.SelectsExecuted),
		attribute.Int("score.delta", result.ScoreDelta),
	)
	s.publish(sess.ID, result.Events, &state)
	return result, nil
}

// Hint returns the first cell of the next unfound word
func (s *gameServiceImpl) Hint(ctx context.Context, sessionID string) (*HintResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.touch(sessionID)
	if err != nil {
		return nil, err
	}

	word, cell, ok := sess.Round.Hint()
	if !ok {
		return nil, ErrNoHint
	}
	return &HintResult{Word: word, Cell: cell, Remaining: len(sess.Round.Remaining())}, nil
}

// Pause holds the round clock and input
func (s *gameServiceImpl) Pause(ctx context.Context, sessionID string) (*CommandResult, error) {
	return s.command(ctx, sessionID, "pause", (*engine.Round).Pause)
}

// Resume continues a paused round
func (s *gameServiceImpl) Resume(ctx context.Context, sessionID string) (*CommandResult, error) {
	return s.command(ctx, sessionID, "resume", (*engine.Round).Resume)
}

// Restart sets up a fresh round for the session
func (s *gameServiceImpl) Restart(ctx context.Context, sessionID string) (*CommandResult, error) {
	return s.command(ctx, sessionID, "restart", (*engine.Round).Restart)
}

// ForceGameOver ends the round as if time ran out
func (s *gameServiceImpl) ForceGameOver(ctx context.Context, sessionID string) (*CommandResult, error) {
	return s.command(ctx, sessionID, "force_game_over", (*engine.Round).ForceGameOver)
}

// Exit abandons the round
func (s *gameServiceImpl) Exit(ctx context.Context, sessionID string) (*CommandResult, error) {
	return s.command(ctx, sessionID, "exit", (*engine.Round).Exit)
}

func (s *gameServiceImpl) command(ctx context.Context, sessionID, name string, fn func(*engine.Round) []engine.Event) (*CommandResult, error) {
	_, span := s.tracer.Start(ctx, "round."+name)
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.touch(sessionID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	events := fn(sess.Round)
	state := sess.Round.Snapshot()
	span.SetAttributes(roundAttributes(sess.ID, &state)...)
	s.publish(sess.ID, events, &state)

	log.Debug().Str("session", sess.ID).Str("command", name).Str("phase", string(state.Phase)).Msg("round command")

	return &CommandResult{
		Command:    name,
		Message:    state.Message,
		RoundState: &state,
		Events:     events,
	}, nil
}

// GetRoundState returns the current round snapshot
func (s *gameServiceImpl) GetRoundState(ctx context.Context, sessionID string) (*engine.RoundState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.touch(sessionID)
	if err != nil {
		return nil, err
	}
	state := sess.Round.Snapshot()
	return &state, nil
}

// Tick advances every session's clock by one interval and returns how many
// rounds were running.
func (s *gameServiceImpl) Tick(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	advanced := 0
	for _, sess := range s.sessions.List() {
		events := sess.Round.Tick()
		if len(events) == 0 {
			continue
		}
		advanced++
		state := sess.Round.Snapshot()
		s.publish(sess.ID, events, &state)
	}
	return advanced
}

// ExpireSessions exits and removes every session not accessed within
// maxAge. The exit events are published before the session is dropped.
func (s *gameServiceImpl) ExpireSessions(ctx context.Context, maxAge time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, sess := range s.sessions.List() {
		if !sess.LastAccessedAt.Before(cutoff) {
			continue
		}
		events := sess.Round.Exit()
		state := sess.Round.Snapshot()
		s.publish(sess.ID, events, &state)

		if err := s.sessions.Delete(sess.ID); err != nil {
			log.Warn().Err(err).Str("session", sess.ID).Msg("failed to remove expired session")
			continue
		}
		removed++
		log.Info().Str("session", sess.ID).Time("last_accessed", sess.LastAccessedAt).Msg("session expired")
	}
	return removed
}

// ListConfigs returns all available configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.PuzzleConfig, error) {
	config, err := s.configs.LoadConfig(configName)
	if err != nil {
		return nil, s.configError(configName, err)
	}
	return config, nil
}

// SaveConfig saves a puzzle configuration to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.PuzzleConfig) error {
	return s.configs.SaveConfig(configName, config)
}

// touch looks up a session and marks it accessed. Caller holds s.mu for
// writing.
func (s *gameServiceImpl) touch(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}
	s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

func (s *gameServiceImpl) publish(sessionID string, events []engine.Event, state *engine.RoundState) {
	if s.notifier == nil || len(events) == 0 {
		return
	}
	s.notifier.Publish(sessionID, events, state)
}

// configError wraps a load failure, listing the available configs when the
// name is unknown.
func (s *gameServiceImpl) configError(configName string, err error) error {
	if !errors.Is(err, ErrConfigNotFound) {
		return fmt.Errorf("failed to load config %s: %w", configName, err)
	}
	available, listErr := s.configs.ListConfigs()
	if listErr == nil && len(available) > 0 {
		ids := make([]string, 0, len(available))
		for _, cfg := range available {
			ids = append(ids, cfg.ConfigID)
		}
		return fmt.Errorf("config '%s' not found. Available configs: %v: %w", configName, ids, ErrConfigNotFound)
	}
	return fmt.Errorf("config '%s' not found. Use /api/configs to list available configurations: %w", configName, ErrConfigNotFound)
}

// configIDFor finds the config ID of a loaded config by display name.
func (s *gameServiceImpl) configIDFor(config *engine.PuzzleConfig) string {
	if available, err := s.configs.ListConfigs(); err == nil {
		for _, cfg := range available {
			if cfg.Name == config.Name {
				return cfg.ConfigID
			}
		}
	}
	return config.Name
}

func sessionInfo(sess *Session, state *engine.RoundState) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     sess.ConfigID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		RoundState:     state,
		PuzzleConfig:   sess.Config,
	}
}

func roundAttributes(sessionID string, state *engine.RoundState) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("session.id", sessionID),
		attribute.String("round.id", state.RoundID),
		attribute.String("round.phase", string(state.Phase)),
		attribute.Int("grid.size", state.GridSize),
		attribute.Int("words.count", state.Total),
		attribute.Int("generation.attempts", state.Attempts),
		attribute.Bool("generation.failed", state.GenerationFailed),
	}
}

func stopReason(r *engine.Round) string {
	switch {
	case r.Phase().IsOver():
		return "round is over: " + string(r.Phase())
	case r.Paused():
		return "round is paused"
	default:
		return "round is not accepting input"
	}
}

func selectMessage(res engine.SelectResult, fallback string) string {
	switch res.Status {
	case engine.SelectRejected:
		return "selection ignored"
	case engine.SelectDuplicate:
		return "cell already selected"
	case engine.SelectBroken:
		return "selection must follow a straight line; cleared"
	case engine.SelectDeadEnd:
		return "no word starts that way; selection cleared"
	case engine.SelectExtended:
		return "selecting " + res.Candidate
	default:
		return fallback
	}
}
