package tiles

import (
	"fmt"

	"lukechampine.com/frand"
)

// A Bag is the undrawn remainder of a player's tile allocation. It is the
// single authority on which tiles may still be drawn: draws subtract from
// it monotonically and it is never rebuilt from rack snapshots.
type Bag struct {
	tiles []Tile
}

// NewBag creates a bag holding a copy of the given tiles.
func NewBag(ts []Tile) *Bag {
	return &Bag{tiles: Clone(ts)}
}

// Draw removes exactly n tiles from the bag, chosen uniformly at random
// without replacement.
func (b *Bag) Draw(n int) ([]Tile, error) {
	if n > len(b.tiles) {
		return nil, fmt.Errorf("tried to draw %v tiles, bag has %v", n, len(b.tiles))
	}
	drawn := make([]Tile, n)
	for i := 0; i < n; i++ {
		idx := frand.Intn(len(b.tiles))
		drawn[i] = b.tiles[idx]
		last := len(b.tiles) - 1
		b.tiles[idx] = b.tiles[last]
		b.tiles = b.tiles[:last]
	}
	return drawn, nil
}

// DrawAtMost draws at most n tiles. It can draw fewer if the bag is
// running low, or none at all.
func (b *Bag) DrawAtMost(n int) []Tile {
	if n > len(b.tiles) {
		n = len(b.tiles)
	}
	drawn, _ := b.Draw(n)
	return drawn
}

// PutBack returns tiles to the bag.
func (b *Bag) PutBack(ts []Tile) {
	b.tiles = append(b.tiles, ts...)
}

// TilesRemaining returns the number of undrawn tiles.
func (b *Bag) TilesRemaining() int {
	return len(b.tiles)
}

// Tiles returns a snapshot of the undrawn tiles. The order carries no
// meaning; draws are random regardless.
func (b *Bag) Tiles() []Tile {
	return Clone(b.tiles)
}

// Copy returns a deep copy of the bag.
func (b *Bag) Copy() *Bag {
	return &Bag{tiles: Clone(b.tiles)}
}
