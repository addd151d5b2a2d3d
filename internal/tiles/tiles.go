// Package tiles holds the standard tile distribution and the per-game
// bag ledger that all draws subtract from.
package tiles

import (
	"fmt"

	"lukechampine.com/frand"
)

// Blank is the letter value of the two zero-point wildcard tiles.
const Blank = "BLANK"

// RackLimit is the maximum number of tiles on a player's rack.
const RackLimit = 7

// Tile is an immutable letter/point pair.
type Tile struct {
	Letter string `json:"letter"`
	Points int    `json:"points"`
}

type pieceCount struct {
	letter string
	count  int
	points int
}

// The standard 100-tile English distribution.
var standardPieces = []pieceCount{
	{"A", 9, 1}, {"B", 2, 3}, {"C", 2, 3}, {"D", 4, 2}, {"E", 12, 1},
	{"F", 2, 4}, {"G", 3, 2}, {"H", 2, 4}, {"I", 9, 1}, {"J", 1, 8},
	{"K", 1, 5}, {"L", 4, 1}, {"M", 2, 3}, {"N", 6, 1}, {"O", 8, 1},
	{"P", 2, 3}, {"Q", 1, 10}, {"R", 6, 1}, {"S", 4, 1}, {"T", 6, 1},
	{"U", 4, 1}, {"V", 2, 4}, {"W", 2, 4}, {"X", 1, 8}, {"Y", 2, 4},
	{"Z", 1, 10}, {Blank, 2, 0},
}

var pointValues = func() map[string]int {
	m := make(map[string]int, len(standardPieces))
	for _, p := range standardPieces {
		m[p.letter] = p.points
	}
	return m
}()

// PointValue returns the point value for a letter, or an error if the
// letter is not part of the standard set.
func PointValue(letter string) (int, error) {
	pts, ok := pointValues[letter]
	if !ok {
		return 0, fmt.Errorf("no such letter %q in the standard set", letter)
	}
	return pts, nil
}

// StandardSet returns the full 100-tile set in distribution order.
func StandardSet() []Tile {
	set := make([]Tile, 0, 100)
	for _, p := range standardPieces {
		for i := 0; i < p.count; i++ {
			set = append(set, Tile{Letter: p.letter, Points: p.points})
		}
	}
	return set
}

// Shuffle permutes ts in place with a uniform Fisher-Yates shuffle.
func Shuffle(ts []Tile) {
	frand.Shuffle(len(ts), func(i, j int) {
		ts[i], ts[j] = ts[j], ts[i]
	})
}

// Split divides a sequence of tiles at its midpoint. No score balancing
// happens; a shuffled input gives each side a fair allocation.
func Split(ts []Tile) ([]Tile, []Tile) {
	mid := len(ts) / 2
	return ts[:mid], ts[mid:]
}

// Subtract returns rack minus one tile per letter in letters. The rack is
// not modified. It fails if any letter is not on the rack.
func Subtract(rack []Tile, letters []string) ([]Tile, error) {
	remaining := make([]Tile, len(rack))
	copy(remaining, rack)
	for _, letter := range letters {
		found := -1
		for i, t := range remaining {
			if t.Letter == letter {
				found = i
				break
			}
		}
		if found == -1 {
			return nil, fmt.Errorf("tile %q is not on the rack", letter)
		}
		remaining = append(remaining[:found], remaining[found+1:]...)
	}
	return remaining, nil
}

// Clone returns a copy of a tile slice.
func Clone(ts []Tile) []Tile {
	if ts == nil {
		return nil
	}
	out := make([]Tile, len(ts))
	copy(out, ts)
	return out
}
