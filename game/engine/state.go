package engine

import "github.com/wricardo/mcp-training/wordsearch/game/puzzle"

// RoundState is a read-only view of a round for hosts and clients.
type RoundState struct {
	RoundID          string             `json:"round_id"`
	Phase            Phase              `json:"phase"`
	Grid             puzzle.Grid        `json:"grid"`
	GridSize         int                `json:"grid_size"`
	Words            []string           `json:"words"`
	FoundWords       []string           `json:"found_words"`
	Score            int                `json:"score"`
	Total            int                `json:"total"`
	Selection        []puzzle.Cell      `json:"selection"`
	Candidate        string             `json:"candidate"`
	FoundCells       []puzzle.Placement `json:"found_cells"`
	RemainingMs      int64              `json:"remaining_ms"`
	Clock            string             `json:"clock"`
	TimerRunning     bool               `json:"timer_running"`
	Paused           bool               `json:"paused"`
	HostGameOver     bool               `json:"host_game_over"`
	GenerationFailed bool               `json:"generation_failed"`
	Attempts         int                `json:"attempts"`
	Message          string             `json:"message"`
}

// Snapshot returns the current state. Placements are only reported for
// words the player has already found.
func (r *Round) Snapshot() RoundState {
	found := make([]puzzle.Placement, 0)
	for _, p := range r.board.Placements {
		if r.matcher.IsFound(p.Word) {
			found = append(found, p)
		}
	}

	return RoundState{
		RoundID:          r.id,
		Phase:            r.phase,
		Grid:             r.board.Grid.Clone(),
		GridSize:         r.board.Grid.Size(),
		Words:            r.matcher.Words(),
		FoundWords:       r.matcher.Found(),
		Score:            r.matcher.Score(),
		Total:            r.matcher.Total(),
		Selection:        r.selection.Cells(),
		Candidate:        r.selection.Word(r.board.Grid),
		FoundCells:       found,
		RemainingMs:      r.timer.RemainingMillis(),
		Clock:            r.timer.Display(),
		TimerRunning:     r.timer.Running(),
		Paused:           r.paused,
		HostGameOver:     r.gameOver,
		GenerationFailed: r.board.Failed,
		Attempts:         r.board.Attempts,
		Message:          r.message,
	}
}

// Hint returns the first cell of an unfound word, or false when there is
// none to give.
func (r *Round) Hint() (word string, cell puzzle.Cell, ok bool) {
	if r.phase != PhaseActive {
		return "", puzzle.Cell{}, false
	}
	for _, w := range r.matcher.Remaining() {
		path := puzzle.PathOf(r.board.Placements, w)
		if len(path) > 0 {
			return w, path[0], true
		}
	}
	return "", puzzle.Cell{}, false
}
