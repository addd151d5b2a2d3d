package game

import "tinytiles/internal/board"

// WordChecker decides whether the placements of a turn form legal words
// on the given board. The state machine only consumes the verdict; a
// lexicon-backed checker can be substituted without touching it.
type WordChecker interface {
	IsLegal(b *board.Board, placed []board.Placement) bool
}

type allowAll struct{}

func (allowAll) IsLegal(*board.Board, []board.Placement) bool { return true }

// AllowAllWords returns the stub checker that accepts every move.
func AllowAllWords() WordChecker {
	return allowAll{}
}
