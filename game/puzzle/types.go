package puzzle

import (
	"encoding/json"
	"fmt"
)

const (
	// DefaultAlphabet is the filler alphabet of the Spanish board.
	DefaultAlphabet = "ABCDEFGHIJKLMNÑOPQRSTUVWXYZ"

	// Placeholder fills every cell of a board that could not be generated.
	Placeholder = ' '

	// DefaultMaxAttempts bounds full-board attempts.
	DefaultMaxAttempts = 50
	// DefaultMaxWordTries bounds random placements tried per word.
	DefaultMaxWordTries = 100
)

// empty marks an unwritten cell while a board is being built.
const empty rune = 0

// Direction is a constant step between consecutive letters of a word.
type Direction struct {
	DRow int `json:"d_row"`
	DCol int `json:"d_col"`
}

var (
	Horizontal = Direction{DRow: 0, DCol: 1}
	Vertical   = Direction{DRow: 1, DCol: 0}
	Diagonal   = Direction{DRow: 1, DCol: 1}
)

// Directions lists the placement directions in the order the generator draws them.
var Directions = []Direction{Horizontal, Vertical, Diagonal}

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	case Diagonal:
		return "diagonal"
	default:
		return fmt.Sprintf("(%d,%d)", d.DRow, d.DCol)
	}
}

// Cell is a row/column coordinate on the grid.
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Add returns the cell one step away in direction d.
func (c Cell) Add(d Direction) Cell {
	return Cell{Row: c.Row + d.DRow, Col: c.Col + d.DCol}
}

// Sub returns the step from o to c.
func (c Cell) Sub(o Cell) Direction {
	return Direction{DRow: c.Row - o.Row, DCol: c.Col - o.Col}
}

// Placement records one letter of a placed word.
type Placement struct {
	Word  string `json:"word"`
	Row   int    `json:"row"`
	Col   int    `json:"col"`
	Index int    `json:"index"` // position of the letter within Word
}

// Cell returns the placement's coordinate.
func (p Placement) Cell() Cell {
	return Cell{Row: p.Row, Col: p.Col}
}

// Grid is an N×N board of letters, indexed [row][col].
type Grid [][]rune

// Limits bounds the backtracking search.
type Limits struct {
	MaxAttempts  int `json:"max_attempts"`
	MaxWordTries int `json:"max_word_tries"`
}

// DefaultLimits returns the standard search bounds.
func DefaultLimits() Limits {
	return Limits{MaxAttempts: DefaultMaxAttempts, MaxWordTries: DefaultMaxWordTries}
}

// Result is the outcome of a generation run.
//
// When Failed is true the grid is filled with Placeholder and Placements is
// empty; the board is playable but cannot be solved.
type Result struct {
	Grid       Grid        `json:"grid"`
	Placements []Placement `json:"placements"`
	Attempts   int         `json:"attempts"`
	Failed     bool        `json:"failed"`
}

// Rand is the random source used by the generator. *math/rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
}

// NewGrid returns a size×size grid with every cell set to fill.
func NewGrid(size int, fill rune) Grid {
	if size < 0 {
		size = 0
	}
	g := make(Grid, size)
	for r := range g {
		g[r] = make([]rune, size)
		for c := range g[r] {
			g[r][c] = fill
		}
	}
	return g
}

// Size returns N for an N×N grid.
func (g Grid) Size() int {
	return len(g)
}

// InBounds reports whether c lies on the grid.
func (g Grid) InBounds(c Cell) bool {
	if c.Row < 0 || c.Row >= len(g) {
		return false
	}
	return c.Col >= 0 && c.Col < len(g[c.Row])
}

// At returns the letter at c.
func (g Grid) At(c Cell) (rune, bool) {
	if !g.InBounds(c) {
		return 0, false
	}
	return g[c.Row][c.Col], true
}

// Filled reports whether every cell holds a letter (no unwritten or placeholder cells).
func (g Grid) Filled() bool {
	if len(g) == 0 {
		return false
	}
	for _, row := range g {
		for _, r := range row {
			if r == empty || r == Placeholder {
				return false
			}
		}
	}
	return true
}

// Rows returns the grid as one string per row.
func (g Grid) Rows() []string {
	rows := make([]string, len(g))
	for i, row := range g {
		rows[i] = string(row)
	}
	return rows
}

// Clone returns a deep copy of the grid.
func (g Grid) Clone() Grid {
	out := make(Grid, len(g))
	for i, row := range g {
		out[i] = append([]rune(nil), row...)
	}
	return out
}

// MarshalJSON encodes the grid as an array of row strings.
func (g Grid) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.Rows())
}

// UnmarshalJSON decodes an array of row strings.
func (g *Grid) UnmarshalJSON(data []byte) error {
	var rows []string
	if err := json.Unmarshal(data, &rows); err != nil {
		return err
	}
	out := make(Grid, len(rows))
	for i, row := range rows {
		out[i] = []rune(row)
	}
	*g = out
	return nil
}
