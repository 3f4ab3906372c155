package board

import "fmt"

// InvalidFENError reports that a FEN string failed syntax or invariant
// checks at parse time.
type InvalidFENError struct {
	FEN    string
	Reason string
}

func (e *InvalidFENError) Error() string {
	return fmt.Sprintf("board: invalid FEN %q: %v", e.FEN, e.Reason)
}

// InvalidMoveError reports that a requested move is not in the
// legal-children map of the position it was applied to.
type InvalidMoveError struct {
	Move Move
}

func (e *InvalidMoveError) Error() string {
	return fmt.Sprintf("board: invalid move %v", e.Move)
}
