package model

import "github.com/benbeisheim/spartanchess-backend/internal/engine"

// WSMove is a move request as sent by clients.
type WSMove struct {
	From engine.Coord `json:"from"`
	To   engine.Coord `json:"to"`
}

type CastleRookMove struct {
	From engine.Coord `json:"from"`
	To   engine.Coord `json:"to"`
}

type Ply struct {
	Piece          engine.Piece    `json:"piece"`
	From           engine.Coord    `json:"from"`
	To             engine.Coord    `json:"to"`
	CapturedPiece  *engine.Piece   `json:"capturedPiece"`
	CastleRookMove *CastleRookMove `json:"castleRookMove"`
	Notation       string          `json:"notation"`
}

// Move is one full move. SpartanPly is nil until the Spartans reply; WhitePly
// is nil only for a game restored with the Spartans to move.
type Move struct {
	WhitePly   *Ply `json:"whitePly"`
	SpartanPly *Ply `json:"spartanPly"`
}

type SimpleMove struct {
	From engine.Coord `json:"from"`
	To   engine.Coord `json:"to"`
}

// MatchFoundEvent is pushed to a queued player once paired.
type MatchFoundEvent struct {
	GameID string       `json:"gameId"`
	Color  engine.Color `json:"color"`
}
