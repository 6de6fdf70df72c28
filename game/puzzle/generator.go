package puzzle

import "sort"

// Generate places words on a size×size grid with the default search limits.
func Generate(words []string, size int, alphabet string, rng Rand) Result {
	return GenerateWithLimits(words, size, alphabet, rng, DefaultLimits())
}

// GenerateWithLimits places words in list order on a size×size grid.
//
// Each attempt starts from an empty board. A word gets up to
// limits.MaxWordTries random placements; if none fits, the attempt is
// abandoned. The first attempt that places every word has its remaining
// cells filled from alphabet and is returned. If every attempt fails, or the
// input can never fit, the result is a blank board with Failed set.
func GenerateWithLimits(words []string, size int, alphabet string, rng Rand, limits Limits) Result {
	if limits.MaxAttempts <= 0 {
		limits.MaxAttempts = DefaultMaxAttempts
	}
	if limits.MaxWordTries <= 0 {
		limits.MaxWordTries = DefaultMaxWordTries
	}

	letters := []rune(alphabet)
	if len(letters) == 0 {
		letters = []rune(DefaultAlphabet)
	}

	targets := make([][]rune, len(words))
	for i, w := range words {
		targets[i] = []rune(w)
		if len(targets[i]) == 0 || len(targets[i]) > size {
			return failure(size, 0)
		}
	}
	if size <= 0 {
		return failure(size, 0)
	}

	for attempt := 1; attempt <= limits.MaxAttempts; attempt++ {
		grid := NewGrid(size, empty)
		placements, ok := placeAll(grid, words, targets, rng, limits.MaxWordTries)
		if !ok {
			continue
		}
		fill(grid, letters, rng)
		return Result{Grid: grid, Placements: placements, Attempts: attempt}
	}

	return failure(size, limits.MaxAttempts)
}

// placeAll writes every word onto grid, or reports false as soon as one word
// cannot be placed.
func placeAll(grid Grid, words []string, targets [][]rune, rng Rand, maxTries int) ([]Placement, bool) {
	var placements []Placement
	for i, word := range targets {
		placed := false
		for try := 0; try < maxTries && !placed; try++ {
			dir := Directions[rng.Intn(len(Directions))]
			start := randomAnchor(len(grid), len(word), dir, rng)
			if !fits(grid, word, start, dir) {
				continue
			}
			cell := start
			for idx, r := range word {
				grid[cell.Row][cell.Col] = r
				placements = append(placements, Placement{Word: words[i], Row: cell.Row, Col: cell.Col, Index: idx})
				cell = cell.Add(dir)
			}
			placed = true
		}
		if !placed {
			return nil, false
		}
	}
	return placements, true
}

// randomAnchor picks a start cell from which a word of length n stays inside
// the grid when walked in direction d. The row is drawn before the column.
func randomAnchor(size, n int, d Direction, rng Rand) Cell {
	rowSpan := size - d.DRow*(n-1)
	colSpan := size - d.DCol*(n-1)
	row := rng.Intn(rowSpan)
	col := rng.Intn(colSpan)
	return Cell{Row: row, Col: col}
}

// fits reports whether every target cell is unwritten or already holds the
// matching letter.
func fits(grid Grid, word []rune, start Cell, d Direction) bool {
	cell := start
	for _, r := range word {
		current := grid[cell.Row][cell.Col]
		if current != empty && current != r {
			return false
		}
		cell = cell.Add(d)
	}
	return true
}

// fill writes a random filler letter into every unwritten cell, row by row.
func fill(grid Grid, letters []rune, rng Rand) {
	for r := range grid {
		for c := range grid[r] {
			if grid[r][c] == empty {
				grid[r][c] = letters[rng.Intn(len(letters))]
			}
		}
	}
}

func failure(size, attempts int) Result {
	return Result{
		Grid:       NewGrid(size, Placeholder),
		Placements: []Placement{},
		Attempts:   attempts,
		Failed:     true,
	}
}

// PathOf returns the cells of word's placement run in letter order.
func PathOf(placements []Placement, word string) []Cell {
	var run []Placement
	for _, p := range placements {
		if p.Word == word {
			run = append(run, p)
		}
	}
	sort.SliceStable(run, func(i, j int) bool { return run[i].Index < run[j].Index })

	cells := make([]Cell, len(run))
	for i, p := range run {
		cells[i] = p.Cell()
	}
	return cells
}

// DirectionOf returns the constant step of path and whether the path is a
// straight run along one of the placement directions.
func DirectionOf(path []Cell) (Direction, bool) {
	if len(path) < 2 {
		return Direction{}, false
	}
	step := path[1].Sub(path[0])
	for i := 2; i < len(path); i++ {
		if path[i].Sub(path[i-1]) != step {
			return step, false
		}
	}
	for _, d := range Directions {
		if d == step {
			return step, true
		}
	}
	return step, false
}

// WordAt reads the letters along path.
func WordAt(grid Grid, path []Cell) string {
	out := make([]rune, 0, len(path))
	for _, c := range path {
		r, ok := grid.At(c)
		if !ok {
			return ""
		}
		out = append(out, r)
	}
	return string(out)
}
