package model

import "github.com/benbeisheim/spartanchess-backend/internal/engine"

// BoardState is the client view of the board. Ranks[0] is the White back
// rank; the client flips it for display.
type BoardState struct {
	Ranks       [][]engine.Piece `json:"ranks"`
	FEN         string           `json:"fen"`
	CastleShort bool             `json:"castleShort"`
	CastleLong  bool             `json:"castleLong"`
}

func newBoardState(b *engine.Board) BoardState {
	grid := b.Grid()
	state := BoardState{FEN: b.FEN()}
	state.CastleShort, state.CastleLong = b.CastleRights()
	for r := range grid {
		row := make([]engine.Piece, 8)
		copy(row, grid[r][:])
		state.Ranks = append(state.Ranks, row)
	}
	return state
}
