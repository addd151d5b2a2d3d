package game

import "tinytiles/internal/board"

// Scorer maps the tiles placed in one turn to a point total. It is the
// single seam where a real letter-value/word-multiplier scorer slots in.
type Scorer func(placed []board.Placement) int

// CountScorer awards one point per placed tile. Placeholder scoring,
// kept as the documented baseline.
func CountScorer(placed []board.Placement) int {
	return len(placed)
}
