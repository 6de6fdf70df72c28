package engine

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"go.uber.org/multierr"

	"github.com/wricardo/mcp-training/wordsearch/game/puzzle"
)

// Validation constants
const (
	MinGridSize     = 3
	MaxGridSize     = 30
	MaxWords        = 40
	MinRoundSeconds = 10
	MaxRoundSeconds = 3600
	MaxBulkSelects  = 200
)

// Messages are the texts shown for round milestones.
type Messages struct {
	Welcome          string `json:"welcome" yaml:"welcome"`
	WordFound        string `json:"word_found" yaml:"word_found"`
	PuzzleComplete   string `json:"puzzle_complete" yaml:"puzzle_complete"`
	TimeUp           string `json:"time_up" yaml:"time_up"`
	GenerationFailed string `json:"generation_failed" yaml:"generation_failed"`
}

// PuzzleConfig is a puzzle definition as stored in the configs directory.
type PuzzleConfig struct {
	Name         string   `json:"name" yaml:"name"`
	Description  string   `json:"description" yaml:"description"`
	GridSize     int      `json:"grid_size" yaml:"grid_size"`
	Words        []string `json:"words" yaml:"words"`
	Alphabet     string   `json:"alphabet,omitempty" yaml:"alphabet,omitempty"`
	RoundSeconds int      `json:"round_seconds" yaml:"round_seconds"`
	TickMillis   int      `json:"tick_millis,omitempty" yaml:"tick_millis,omitempty"`
	MaxAttempts  int      `json:"max_attempts,omitempty" yaml:"max_attempts,omitempty"`
	MaxWordTries int      `json:"max_word_tries,omitempty" yaml:"max_word_tries,omitempty"`
	Messages     Messages `json:"messages" yaml:"messages"`
}

// RoundConfig is everything a Round needs to set itself up.
type RoundConfig struct {
	Words        []string
	GridSize     int
	Alphabet     string
	Duration     time.Duration
	TickInterval time.Duration
	Limits       puzzle.Limits
	Messages     Messages
}

// DefaultMessages returns the stock round messages.
func DefaultMessages() Messages {
	return Messages{
		Welcome:          "Find the hidden words!",
		WordFound:        "Found %s!",
		PuzzleComplete:   "Puzzle complete!",
		TimeUp:           "Time's up! Game over.",
		GenerationFailed: "Could not build a board for this word list. Restart to try again.",
	}
}

// DefaultPuzzleConfig returns the built-in animals puzzle.
func DefaultPuzzleConfig() *PuzzleConfig {
	return &PuzzleConfig{
		Name:         "animals",
		Description:  "Find the animals hidden in a 10x10 board",
		GridSize:     10,
		Words:        []string{"GATO", "PERRO", "RANA", "OSO", "LEON"},
		Alphabet:     puzzle.DefaultAlphabet,
		RoundSeconds: int(DefaultRoundDuration / time.Second),
		TickMillis:   int(DefaultTickInterval / time.Millisecond),
		Messages:     DefaultMessages(),
	}
}

// Normalize trims and uppercases the word list and fills unset optional fields.
func (c *PuzzleConfig) Normalize() {
	for i, w := range c.Words {
		c.Words[i] = strings.ToUpper(strings.TrimSpace(w))
	}
	c.Alphabet = strings.ToUpper(c.Alphabet)
	if c.Alphabet == "" {
		c.Alphabet = puzzle.DefaultAlphabet
	}
	if c.TickMillis == 0 {
		c.TickMillis = int(DefaultTickInterval / time.Millisecond)
	}

	c.Messages = c.Messages.withDefaults()
}

// RoundConfig converts the puzzle definition into round settings.
func (c *PuzzleConfig) RoundConfig() RoundConfig {
	return RoundConfig{
		Words:        append([]string(nil), c.Words...),
		GridSize:     c.GridSize,
		Alphabet:     c.Alphabet,
		Duration:     time.Duration(c.RoundSeconds) * time.Second,
		TickInterval: time.Duration(c.TickMillis) * time.Millisecond,
		Limits:       puzzle.Limits{MaxAttempts: c.MaxAttempts, MaxWordTries: c.MaxWordTries},
		Messages:     c.Messages,
	}
}

// ValidatePuzzleConfig checks a puzzle definition and reports every problem found.
func ValidatePuzzleConfig(config *PuzzleConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}

	var errs error
	if config.Name == "" {
		errs = multierr.Append(errs, fmt.Errorf("config validation: name is required"))
	}
	if config.Description == "" {
		errs = multierr.Append(errs, fmt.Errorf("config validation: description is required"))
	}
	if config.GridSize < MinGridSize || config.GridSize > MaxGridSize {
		errs = multierr.Append(errs, fmt.Errorf("config validation: grid_size must be between %d and %d, got %d", MinGridSize, MaxGridSize, config.GridSize))
	}
	if config.RoundSeconds < MinRoundSeconds || config.RoundSeconds > MaxRoundSeconds {
		errs = multierr.Append(errs, fmt.Errorf("config validation: round_seconds must be between %d and %d, got %d", MinRoundSeconds, MaxRoundSeconds, config.RoundSeconds))
	}
	if config.TickMillis < 0 || config.TickMillis > config.RoundSeconds*1000 {
		errs = multierr.Append(errs, fmt.Errorf("config validation: tick_millis must be between 0 and the round length, got %d", config.TickMillis))
	}
	if config.MaxAttempts < 0 || config.MaxWordTries < 0 {
		errs = multierr.Append(errs, fmt.Errorf("config validation: max_attempts and max_word_tries cannot be negative"))
	}
	if config.Messages.WordFound != "" && !strings.Contains(config.Messages.WordFound, "%s") {
		errs = multierr.Append(errs, fmt.Errorf("config validation: messages.word_found must contain %%s for the word"))
	}
	errs = multierr.Append(errs, validateWords(config.Words, config.GridSize))
	return errs
}

// Validate checks round settings before setup.
func (c RoundConfig) Validate() error {
	var errs error
	if c.GridSize <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("round config: grid size must be positive, got %d", c.GridSize))
	}
	if c.Duration <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("round config: duration must be positive, got %s", c.Duration))
	}
	if c.TickInterval <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("round config: tick interval must be positive, got %s", c.TickInterval))
	}
	return multierr.Append(errs, validateWords(c.Words, c.GridSize))
}

// withDefaults fills unset durations, alphabet and messages.
func (c RoundConfig) withDefaults() RoundConfig {
	if c.Duration == 0 {
		c.Duration = DefaultRoundDuration
	}
	if c.TickInterval == 0 {
		c.TickInterval = DefaultTickInterval
	}
	if c.Alphabet == "" {
		c.Alphabet = puzzle.DefaultAlphabet
	}
	c.Messages = c.Messages.withDefaults()
	return c
}

func (m Messages) withDefaults() Messages {
	def := DefaultMessages()
	if m.Welcome == "" {
		m.Welcome = def.Welcome
	}
	if m.WordFound == "" {
		m.WordFound = def.WordFound
	}
	if m.PuzzleComplete == "" {
		m.PuzzleComplete = def.PuzzleComplete
	}
	if m.TimeUp == "" {
		m.TimeUp = def.TimeUp
	}
	if m.GenerationFailed == "" {
		m.GenerationFailed = def.GenerationFailed
	}
	return m
}

func validateWords(words []string, gridSize int) error {
	if len(words) == 0 {
		return fmt.Errorf("config validation: words must contain at least one word")
	}
	if len(words) > MaxWords {
		return fmt.Errorf("config validation: at most %d words are allowed, got %d", MaxWords, len(words))
	}

	var errs error
	seen := make(map[string]bool, len(words))
	for i, w := range words {
		n := len([]rune(w))
		switch {
		case n == 0:
			errs = multierr.Append(errs, fmt.Errorf("config validation: word %d is empty", i+1))
			continue
		case gridSize > 0 && n > gridSize:
			errs = multierr.Append(errs, fmt.Errorf("config validation: word %q is longer than grid_size %d", w, gridSize))
		}
		for _, r := range w {
			if !unicode.IsLetter(r) || !unicode.IsUpper(r) {
				errs = multierr.Append(errs, fmt.Errorf("config validation: word %q must contain only uppercase letters", w))
				break
			}
		}
		if seen[w] {
			errs = multierr.Append(errs, fmt.Errorf("config validation: word %q is listed twice", w))
		}
		seen[w] = true
	}
	return errs
}
