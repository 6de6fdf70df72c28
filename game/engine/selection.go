package engine

import "github.com/wricardo/mcp-training/wordsearch/game/puzzle"

// SelectOutcome is the tracker's response to a tapped cell.
type SelectOutcome int

const (
	// Appended means the cell extended the selection.
	Appended SelectOutcome = iota
	// Duplicate means the cell was already selected; nothing changed.
	Duplicate
	// Broken means the cell left the line; the selection was cleared and the tap discarded.
	Broken
)

// String returns the outcome name.
func (o SelectOutcome) String() string {
	switch o {
	case Appended:
		return "appended"
	case Duplicate:
		return "duplicate"
	case Broken:
		return "broken"
	default:
		return "unknown"
	}
}

// SelectionTracker holds the player's in-progress path.
//
// The first two cells fix the step vector; every later cell must continue
// that vector from the last cell.
type SelectionTracker struct {
	cells []puzzle.Cell
}

// Add applies one tap.
func (s *SelectionTracker) Add(c puzzle.Cell) SelectOutcome {
	if s.Contains(c) {
		return Duplicate
	}
	if len(s.cells) >= 2 {
		step := s.cells[1].Sub(s.cells[0])
		if s.cells[len(s.cells)-1].Add(step) != c {
			s.Clear()
			return Broken
		}
	}
	s.cells = append(s.cells, c)
	return Appended
}

// Contains reports whether c is already selected.
func (s *SelectionTracker) Contains(c puzzle.Cell) bool {
	for _, sel := range s.cells {
		if sel == c {
			return true
		}
	}
	return false
}

// Clear empties the selection.
func (s *SelectionTracker) Clear() {
	s.cells = nil
}

// Len returns the number of selected cells.
func (s *SelectionTracker) Len() int {
	return len(s.cells)
}

// Cells returns a copy of the selected cells in tap order.
func (s *SelectionTracker) Cells() []puzzle.Cell {
	out := make([]puzzle.Cell, len(s.cells))
	copy(out, s.cells)
	return out
}

// Word returns the candidate word: the letters under the selection, in order.
func (s *SelectionTracker) Word(grid puzzle.Grid) string {
	return puzzle.WordAt(grid, s.cells)
}
