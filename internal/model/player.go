package model

import (
	"github.com/benbeisheim/spartanchess-backend/internal/engine"
)

// Player is a matchmaking entrant.
type Player struct {
	ID string
}

type ClientPlayer struct {
	ID       string       `json:"name"`
	Color    engine.Color `json:"color"`
	TimeLeft int          `json:"timeLeft"`
	// Flagged is set once the player's clock has run out.
	Flagged bool `json:"flagged"`
}

// Seats holds the two players of a game. An empty ID is an open seat.
type Seats struct {
	White   ClientPlayer `json:"white"`
	Spartan ClientPlayer `json:"spartan"`
}

func (s *Seats) colorOf(playerID string) (engine.Color, bool) {
	switch {
	case playerID == "":
		return engine.White, false
	case s.White.ID == playerID:
		return engine.White, true
	case s.Spartan.ID == playerID:
		return engine.Spartan, true
	}
	return engine.White, false
}
