// Package puzzle builds word-search boards.
//
// Generate places a word list on an N×N grid using a bounded backtracking
// search: every word gets a limited number of random tries (direction plus
// anchor, checked against letters already written), and a word that runs out
// of tries abandons the whole board attempt. After a fixed number of failed
// attempts the generator gives up and returns a blank board flagged as
// failed, which callers treat as an unplayable round rather than an error.
//
// Words are only ever placed in three directions:
//
//	Horizontal  (0, 1)  left to right
//	Vertical    (1, 0)  top to bottom
//	Diagonal    (1, 1)  top-left to bottom-right
//
// The package is pure: all randomness comes from the Rand passed in, so a
// seeded *math/rand.Rand reproduces the same board.
//
// Usage:
//
//	rng := rand.New(rand.NewSource(42))
//	res := puzzle.Generate([]string{"GATO", "PERRO"}, 10, puzzle.DefaultAlphabet, rng)
//	if res.Failed {
//		// blank board, still a valid round
//	}
//	fmt.Println(res.Grid.Rows())
package puzzle
