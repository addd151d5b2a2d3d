// Package board implements the 15x15 game board. Cells are write-once:
// a placement batch is validated in full before any cell is written, and
// occupied cells are never overwritten.
package board

import (
	"encoding/json"
	"fmt"
)

// Dim is the board edge length.
const Dim = 15

// Board is a Dim x Dim grid of single letters. The empty string marks an
// empty cell.
type Board struct {
	cells [Dim][Dim]string
}

// Placement binds a letter to a board coordinate for one turn.
type Placement struct {
	Letter string `json:"letter"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
}

// OccupiedCellError reports an attempt to place onto a non-empty cell.
type OccupiedCellError struct {
	X, Y int
}

func (e *OccupiedCellError) Error() string {
	return fmt.Sprintf("space is already occupied at (%d, %d)", e.X, e.Y)
}

// OutOfBoundsError reports a placement outside the grid.
type OutOfBoundsError struct {
	X, Y int
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("placement out of bounds at (%d, %d)", e.X, e.Y)
}

// Empty returns a board with all cells empty.
func Empty() *Board {
	return &Board{}
}

// Cell returns the letter at (x, y), or "" when empty.
func (b *Board) Cell(x, y int) string {
	return b.cells[y][x]
}

// Place writes a batch of placements. The whole batch is checked for
// bounds, occupied cells, and duplicate targets before any cell is
// written, so a failed batch leaves the board unchanged.
func (b *Board) Place(ps []Placement) error {
	targets := make(map[[2]int]struct{}, len(ps))
	for _, p := range ps {
		if p.X < 0 || p.X >= Dim || p.Y < 0 || p.Y >= Dim {
			return &OutOfBoundsError{X: p.X, Y: p.Y}
		}
		if b.cells[p.Y][p.X] != "" {
			return &OccupiedCellError{X: p.X, Y: p.Y}
		}
		key := [2]int{p.X, p.Y}
		if _, dup := targets[key]; dup {
			return &OccupiedCellError{X: p.X, Y: p.Y}
		}
		targets[key] = struct{}{}
	}
	for _, p := range ps {
		b.cells[p.Y][p.X] = p.Letter
	}
	return nil
}

// OccupiedCount returns the number of non-empty cells.
func (b *Board) OccupiedCount() int {
	n := 0
	for y := 0; y < Dim; y++ {
		for x := 0; x < Dim; x++ {
			if b.cells[y][x] != "" {
				n++
			}
		}
	}
	return n
}

// Copy returns a deep copy of the board.
func (b *Board) Copy() *Board {
	nb := &Board{}
	nb.cells = b.cells
	return nb
}

// Rows returns the grid as nested row-major slices, for responses.
func (b *Board) Rows() [][]string {
	rows := make([][]string, Dim)
	for y := 0; y < Dim; y++ {
		rows[y] = make([]string, Dim)
		copy(rows[y], b.cells[y][:])
	}
	return rows
}

// MarshalJSON encodes the board as a nested row-major array.
func (b *Board) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.Rows())
}

// UnmarshalJSON decodes a nested row-major array, enforcing exact
// dimensions.
func (b *Board) UnmarshalJSON(data []byte) error {
	var rows [][]string
	if err := json.Unmarshal(data, &rows); err != nil {
		return err
	}
	if len(rows) != Dim {
		return fmt.Errorf("board has %v rows, expected %v", len(rows), Dim)
	}
	for y, row := range rows {
		if len(row) != Dim {
			return fmt.Errorf("board row %v has %v cells, expected %v", y, len(row), Dim)
		}
		copy(b.cells[y][:], row)
	}
	return nil
}
