// Package config loads, lists and saves puzzle definitions.
//
// Puzzles live in a directory as JSON (*.json) or YAML (*.yaml, *.yml)
// files. A file's name without extension is its config ID, which is what
// sessions are created with:
//
//	{
//	  "name": "Animals",
//	  "description": "Find the animals hidden in a 10x10 board",
//	  "grid_size": 10,
//	  "words": ["GATO", "PERRO", "RANA", "OSO", "LEON"],
//	  "round_seconds": 180
//	}
//
// Words are trimmed and uppercased on load, and every file is validated
// with engine.ValidatePuzzleConfig before it is cached. Invalid files are
// skipped by ListConfigs and rejected by LoadConfig.
//
// The "animals" ID always resolves: when no file provides it the built-in
// engine.DefaultPuzzleConfig is served, so the manager works without a
// config directory at all.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		return err
//	}
//	puzzle, err := manager.LoadConfig("planets")
//	configs, err := manager.ListConfigs()
package config
