package engine

import "errors"

var (
	// ErrIllegalMove covers every rejected move: wrong side, off-board,
	// no-op, empty origin and destinations outside the legality mask.
	ErrIllegalMove = errors.New("illegal move")
	// ErrOutOfBounds is returned by queries given a square off the board.
	ErrOutOfBounds = errors.New("square out of bounds")
	ErrEmptySquare = errors.New("no piece on square")
	ErrInvalidFEN  = errors.New("invalid FEN")
)
