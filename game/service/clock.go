package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wricardo/mcp-training/wordsearch/game/engine"
)

// RunClock ticks every session once per interval until ctx is done.
func RunClock(ctx context.Context, svc GameService, interval time.Duration) {
	if interval <= 0 {
		interval = engine.DefaultTickInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			svc.Tick(ctx)
		}
	}
}

// LogObserver returns an observer that logs round milestones for sessionID.
func LogObserver(sessionID string) engine.Observer {
	return engine.ObserverFunc(func(e engine.Event) {
		switch e.Type {
		case engine.EventGameOver:
			log.Info().
				Str("session", sessionID).
				Str("round", e.RoundID).
				Str("phase", string(e.Phase)).
				Int("score", e.Score).
				Int64("remaining_ms", e.RemainingMs).
				Msg("round over")
		case engine.EventGenerationFailed:
			log.Warn().Str("session", sessionID).Str("round", e.RoundID).Msg("board generation failed")
		case engine.EventWordFound:
			log.Debug().Str("session", sessionID).Str("word", e.Word).Int("score", e.Score).Msg("word found")
		case engine.EventRoundStarted, engine.EventRoundExited:
			log.Debug().Str("session", sessionID).Str("round", e.RoundID).Str("event", string(e.Type)).Msg("round lifecycle")
		}
	})
}
