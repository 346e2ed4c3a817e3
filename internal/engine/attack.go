package engine

// castle describes one castling move of the standard army.
type castle struct {
	side     CastleSide
	kingTo   Coord
	rookFrom Coord
	rookTo   Coord
	// between must be empty; passage must not be attacked (king origin included).
	between []Coord
	passage []Coord
}

type CastleSide int

const (
	NoCastle CastleSide = iota
	CastleShort
	CastleLong
)

func (s CastleSide) String() string {
	switch s {
	case CastleShort:
		return "O-O"
	case CastleLong:
		return "O-O-O"
	}
	return ""
}

var (
	whiteKingHome = Coord{Rank: 0, File: 4}
	shortRookHome = Coord{Rank: 0, File: 7}
	longRookHome  = Coord{Rank: 0, File: 0}

	shortCastle = castle{
		side:     CastleShort,
		kingTo:   Coord{Rank: 0, File: 6},
		rookFrom: shortRookHome,
		rookTo:   Coord{Rank: 0, File: 5},
		between:  []Coord{{0, 5}, {0, 6}},
		passage:  []Coord{{0, 4}, {0, 5}, {0, 6}},
	}
	longCastle = castle{
		side:     CastleLong,
		kingTo:   Coord{Rank: 0, File: 2},
		rookFrom: longRookHome,
		rookTo:   Coord{Rank: 0, File: 3},
		between:  []Coord{{0, 1}, {0, 2}, {0, 3}},
		passage:  []Coord{{0, 4}, {0, 3}, {0, 2}},
	}
)

// canCastle checks everything but the rights flag.
func canCastle(g *Grid, c castle) bool {
	king, rook := g.at(whiteKingHome), g.at(c.rookFrom)
	if king.Kind != StandardKing || king.Color != White {
		return false
	}
	if rook.Kind != Rook || rook.Color != White {
		return false
	}
	for _, sq := range c.between {
		if !g.at(sq).IsEmpty() {
			return false
		}
	}
	for _, sq := range c.passage {
		if Attacked(g, sq, Spartan) {
			return false
		}
	}
	return true
}

// castleFor returns the castle a king move from→to performs, if any.
func castleFor(p Piece, from, to Coord) (castle, bool) {
	if p.Kind != StandardKing || p.Color != White || from != whiteKingHome {
		return castle{}, false
	}
	switch to {
	case shortCastle.kingTo:
		return shortCastle, true
	case longCastle.kingTo:
		return longCastle, true
	}
	return castle{}, false
}

// attackMask is the set of squares the piece on from could capture on. It
// differs from the move mask for infantry (diagonals count even when empty),
// for the Lieutenant's quiet sideways step, and for castling.
func attackMask(g *Grid, from Coord) Mask {
	var m Mask
	p := g.at(from)
	switch p.Kind {
	case Pawn, Hoplite:
		fwd := p.Color.forward()
		for _, df := range []int{-1, 1} {
			if diag := from.add(fwd, df); canLand(g, diag, p.Color) {
				m.set(diag)
			}
		}
	case Knight:
		m = knightMoves(g, from, false, false)
	case Bishop:
		m = bishopMoves(g, from, false, false)
	case Rook:
		m = rookMoves(g, from, false, false)
	case Queen:
		m = queenMoves(g, from, false, false)
	case StandardKing, SpartanKing:
		leap(g, from, allDirs, 1, &m)
	case Lieutenant:
		leap(g, from, diagonals, 2, &m)
	case General:
		m = generalMoves(g, from, false, false)
	case Captain:
		m = captainMoves(g, from, false, false)
	case Warlord:
		m = warlordMoves(g, from, false, false)
	}
	return m
}

// Attacked reports whether any piece of color by attacks sq. A square held by
// one of by's own pieces is never reported.
func Attacked(g *Grid, sq Coord, by Color) bool {
	if !sq.Valid() {
		return false
	}
	for r := range g {
		for f := range g[r] {
			p := g[r][f]
			if p.IsEmpty() || p.Color != by {
				continue
			}
			if attackMask(g, Coord{Rank: r, File: f}).Has(sq) {
				return true
			}
		}
	}
	return false
}

// KingsInCheck lists the kings of color that stand attacked.
func KingsInCheck(g *Grid, color Color) []Coord {
	var checked []Coord
	for r := range g {
		for f := range g[r] {
			p := g[r][f]
			if p.Kind.IsKing() && p.Color == color && Attacked(g, p.Coord(), color.Opponent()) {
				checked = append(checked, p.Coord())
			}
		}
	}
	return checked
}
