package main

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v3"
	"go.uber.org/multierr"

	"github.com/wricardo/mcp-training/wordsearch/game/config"
	"github.com/wricardo/mcp-training/wordsearch/game/engine"
	"github.com/wricardo/mcp-training/wordsearch/game/puzzle"
)

func generateAction(ctx context.Context, cmd *cli.Command) error {
	manager, err := config.NewManager(cmd.String("config-dir"))
	if err != nil {
		return err
	}

	cfg := manager.GetDefault()
	if name := cmd.Args().First(); name != "" {
		if cfg, err = manager.LoadConfig(name); err != nil {
			return fmt.Errorf("failed to load config %s: %w", name, err)
		}
	}

	seed := cmd.Int64("seed")
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	printBoard(cmd.Root().Writer, cfg, seed)
	return nil
}

// printBoard generates one board for cfg and prints it with its placements.
func printBoard(w io.Writer, cfg *engine.PuzzleConfig, seed int64) puzzle.Result {
	rc := cfg.RoundConfig()
	result := puzzle.GenerateWithLimits(rc.Words, rc.GridSize, rc.Alphabet, rand.New(rand.NewSource(seed)), rc.Limits)

	fmt.Fprintf(w, "%s (%dx%d, seed %d)\n\n", cfg.Name, cfg.GridSize, cfg.GridSize, seed)
	if result.Failed {
		fmt.Fprintf(w, "generation failed after %d attempts\n", result.Attempts)
		return result
	}

	for _, row := range result.Grid.Rows() {
		for i, r := range []rune(row) {
			if i > 0 {
				fmt.Fprint(w, " ")
			}
			fmt.Fprintf(w, "%c", r)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "\nattempts: %d\n", result.Attempts)
	for _, word := range cfg.Words {
		path := puzzle.PathOf(result.Placements, word)
		dir, _ := puzzle.DirectionOf(path)
		fmt.Fprintf(w, "  %-12s (%d,%d) %s\n", word, path[0].Row, path[0].Col, dir)
	}
	return result
}

func validateAction(ctx context.Context, cmd *cli.Command) error {
	invalid, err := validateConfigs(cmd.Root().Writer, cmd.String("config-dir"))
	if err != nil {
		return err
	}
	if invalid > 0 {
		return cli.Exit(fmt.Sprintf("%d invalid config(s)", invalid), 1)
	}
	return nil
}

// validateConfigs checks every config file in dir, printing each problem
// found. It returns the number of invalid files.
func validateConfigs(w io.Writer, dir string) (int, error) {
	files, err := config.ConfigFiles(dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read config directory: %w", err)
	}

	invalid := 0
	for _, path := range files {
		cfg, err := config.ValidateFile(path)
		if err == nil {
			fmt.Fprintf(w, "✅ %s: %d words on %dx%d, %s\n", filepath.Base(path), len(cfg.Words), cfg.GridSize, cfg.GridSize,
				engine.FormatClock(time.Duration(cfg.RoundSeconds)*time.Second))
			continue
		}

		invalid++
		fmt.Fprintf(w, "❌ %s\n", filepath.Base(path))
		for _, e := range multierr.Errors(err) {
			fmt.Fprintf(w, "   - %v\n", e)
		}
	}

	fmt.Fprintf(w, "\n%d file(s), %d invalid\n", len(files), invalid)
	return invalid, nil
}

func analyzeAction(ctx context.Context, cmd *cli.Command) error {
	seed := cmd.Int64("seed")
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return analyzeConfigs(cmd.Root().Writer, cmd.String("config-dir"), cmd.Int("runs"), seed)
}

// Analysis summarizes repeated generation of one config.
type Analysis struct {
	Name        string
	Runs        int
	Failures    int
	MaxAttempts int
	AvgAttempts float64 // over successful runs
}

// SuccessRate is the share of runs that produced a board.
func (a Analysis) SuccessRate() float64 {
	if a.Runs == 0 {
		return 0
	}
	return float64(a.Runs-a.Failures) / float64(a.Runs)
}

// analyzeConfig generates cfg runs times from seed and records how many
// attempts each board took.
func analyzeConfig(cfg *engine.PuzzleConfig, runs int, seed int64) Analysis {
	rc := cfg.RoundConfig()
	rng := rand.New(rand.NewSource(seed))

	a := Analysis{Name: cfg.Name, Runs: runs}
	total := 0
	for i := 0; i < runs; i++ {
		result := puzzle.GenerateWithLimits(rc.Words, rc.GridSize, rc.Alphabet, rng, rc.Limits)
		if result.Failed {
			a.Failures++
			continue
		}
		total += result.Attempts
		if result.Attempts > a.MaxAttempts {
			a.MaxAttempts = result.Attempts
		}
	}
	if ok := runs - a.Failures; ok > 0 {
		a.AvgAttempts = float64(total) / float64(ok)
	}
	return a
}

// analyzeConfigs prints a generation-difficulty report for every valid
// config in dir.
func analyzeConfigs(w io.Writer, dir string, runs int, seed int64) error {
	if runs <= 0 {
		return fmt.Errorf("runs must be positive, got %d", runs)
	}
	manager, err := config.NewManager(dir)
	if err != nil {
		return err
	}
	infos, err := manager.ListConfigs()
	if err != nil {
		return err
	}

	for _, info := range infos {
		cfg, err := manager.LoadConfig(info.ConfigID)
		if err != nil {
			fmt.Fprintf(w, "\n=== %s ===\nError: %v\n", info.ConfigID, err)
			continue
		}

		a := analyzeConfig(cfg, runs, seed)
		fmt.Fprintf(w, "\n=== %s ===\n", info.ConfigID)
		fmt.Fprintf(w, "Grid: %dx%d, Words: %d, Letters: %d of %d cells\n",
			cfg.GridSize, cfg.GridSize, len(cfg.Words), letterCount(cfg.Words), cfg.GridSize*cfg.GridSize)
		fmt.Fprintf(w, "Success rate: %.1f%% (%d/%d)\n", a.SuccessRate()*100, a.Runs-a.Failures, a.Runs)
		fmt.Fprintf(w, "Attempts: avg %.2f, max %d\n", a.AvgAttempts, a.MaxAttempts)

		switch {
		case a.Failures > 0:
			fmt.Fprintf(w, "⚠️  WARNING: %d boards could not be generated; consider a larger grid or fewer words\n", a.Failures)
		case a.AvgAttempts > 5:
			fmt.Fprintf(w, "⚠️  Crowded board: generation often restarts\n")
		default:
			fmt.Fprintf(w, "✅ Boards generate reliably\n")
		}
	}
	return nil
}

func letterCount(words []string) int {
	n := 0
	for _, w := range words {
		n += len([]rune(w))
	}
	return n
}
