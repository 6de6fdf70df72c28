// Package engine provides the round logic for the word search game.
//
// The engine package implements:
//   - Straight-line, non-repeating cell selection (SelectionTracker)
//   - Matching the selected letters against the word list (WordMatcher)
//   - A countdown clock that survives pause/resume (RoundTimer)
//   - The round state machine that composes them (Round)
//   - Puzzle configuration validation
//
// Core Types:
//
// Round owns all state of one round: the board from package puzzle, the
// current selection, the found words and score, and the clock. Hosts drive
// it with explicit commands (Select, Tick, Pause, Resume, Restart,
// ForceGameOver, Exit) and receive Events through Observers.
//
// Phases:
//
//	setup -> active -> solved | timed_out | exited
//
// A board that could not be generated still yields an active round with a
// blank, unsolvable grid. Solved and timed_out are terminal until Restart.
//
// Usage:
//
//	cfg := engine.DefaultPuzzleConfig()
//	round, err := engine.NewRound(cfg.RoundConfig(), rand.New(rand.NewSource(1)))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	res := round.Select(0, 0)
//	round.Tick()
//	state := round.Snapshot()
//
// Concurrency:
//
// A Round is not safe for concurrent use. Hosts must serialize every call
// for a given round; package service does this with a per-session lock.
package engine
