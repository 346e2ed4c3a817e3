package engine

import "fmt"

// Grid is the fixed arena of 64 slots, indexed grid[rank][file].
type Grid [8][8]Piece

func (g *Grid) at(c Coord) Piece {
	return g[c.Rank][c.File]
}

// Mask marks the legal destinations of one piece, indexed mask[rank][file].
type Mask [8][8]bool

func (m *Mask) set(c Coord) {
	m[c.Rank][c.File] = true
}

// Has reports whether c is marked. Off-board squares are never marked.
func (m Mask) Has(c Coord) bool {
	return c.Valid() && m[c.Rank][c.File]
}

func (m Mask) Count() int {
	n := 0
	for r := range m {
		for f := range m[r] {
			if m[r][f] {
				n++
			}
		}
	}
	return n
}

// Squares lists the marked squares in rank-major order.
func (m Mask) Squares() []Coord {
	squares := make([]Coord, 0, m.Count())
	for r := range m {
		for f := range m[r] {
			if m[r][f] {
				squares = append(squares, Coord{Rank: r, File: f})
			}
		}
	}
	return squares
}

type direction struct{ dr, df int }

var (
	orthogonals = []direction{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	diagonals   = []direction{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	allDirs     = append(append([]direction{}, orthogonals...), diagonals...)
	knightJumps = []direction{{2, 1}, {2, -1}, {-2, 1}, {-2, -1}, {1, 2}, {1, -2}, {-1, 2}, {-1, -2}}
)

// generator computes a legality mask for the piece standing on from.
type generator func(g *Grid, from Coord, castleShort, castleLong bool) Mask

// generators covers every non-Empty kind. A kind missing here has no
// movement rule and FindValidMoves rejects it instead of guessing.
var generators = map[PieceKind]generator{
	Pawn:         infantryMoves,
	Hoplite:      infantryMoves,
	Knight:       knightMoves,
	Bishop:       bishopMoves,
	Rook:         rookMoves,
	Queen:        queenMoves,
	StandardKing: kingMoves,
	SpartanKing:  kingMoves,
	Lieutenant:   lieutenantMoves,
	General:      generalMoves,
	Captain:      captainMoves,
	Warlord:      warlordMoves,
}

// FindValidMoves dispatches to the movement rule of the piece on from. Self
// check is not considered.
func FindValidMoves(g *Grid, from Coord, castleShort, castleLong bool) (Mask, error) {
	if !from.Valid() {
		return Mask{}, fmt.Errorf("%w: %v", ErrOutOfBounds, from)
	}
	p := g.at(from)
	if p.IsEmpty() {
		return Mask{}, fmt.Errorf("%w: %v", ErrEmptySquare, from)
	}
	gen, ok := generators[p.Kind]
	if !ok {
		return Mask{}, fmt.Errorf("%w: no movement rule for %v", ErrIllegalMove, p.Kind)
	}
	return gen(g, from, castleShort, castleLong), nil
}

// canLand reports whether a piece of color may finish on c: on the board and
// not occupied by a friendly piece.
func canLand(g *Grid, c Coord, color Color) bool {
	if !c.Valid() {
		return false
	}
	target := g.at(c)
	return target.IsEmpty() || target.Color != color
}

func isEnemy(g *Grid, c Coord, color Color) bool {
	if !c.Valid() {
		return false
	}
	target := g.at(c)
	return !target.IsEmpty() && target.Color != color
}

func isVacant(g *Grid, c Coord) bool {
	return c.Valid() && g.at(c).IsEmpty()
}

// slide projects rays until the first occupied square, which is included
// only when it holds an enemy.
func slide(g *Grid, from Coord, dirs []direction, m *Mask) {
	color := g.at(from).Color
	for _, d := range dirs {
		to := from.add(d.dr, d.df)
		for to.Valid() {
			target := g.at(to)
			if target.IsEmpty() {
				m.set(to)
			} else {
				if target.Color != color {
					m.set(to)
				}
				break
			}
			to = to.add(d.dr, d.df)
		}
	}
}

// leap marks each offset square (scaled by every distance in reach) that is
// on the board and not friendly. Intervening squares are ignored.
func leap(g *Grid, from Coord, dirs []direction, reach int, m *Mask) {
	color := g.at(from).Color
	for _, d := range dirs {
		for n := 1; n <= reach; n++ {
			to := from.add(d.dr*n, d.df*n)
			if canLand(g, to, color) {
				m.set(to)
			}
		}
	}
}

// infantryMoves covers Pawn and Hoplite: one square forward onto an empty
// square, one square diagonally forward onto an enemy.
func infantryMoves(g *Grid, from Coord, _, _ bool) Mask {
	var m Mask
	color := g.at(from).Color
	fwd := color.forward()
	if ahead := from.add(fwd, 0); isVacant(g, ahead) {
		m.set(ahead)
	}
	for _, df := range []int{-1, 1} {
		if diag := from.add(fwd, df); isEnemy(g, diag, color) {
			m.set(diag)
		}
	}
	return m
}

func knightMoves(g *Grid, from Coord, _, _ bool) Mask {
	var m Mask
	leap(g, from, knightJumps, 1, &m)
	return m
}

func bishopMoves(g *Grid, from Coord, _, _ bool) Mask {
	var m Mask
	slide(g, from, diagonals, &m)
	return m
}

func rookMoves(g *Grid, from Coord, _, _ bool) Mask {
	var m Mask
	slide(g, from, orthogonals, &m)
	return m
}

func queenMoves(g *Grid, from Coord, _, _ bool) Mask {
	var m Mask
	slide(g, from, allDirs, &m)
	return m
}

func kingMoves(g *Grid, from Coord, castleShort, castleLong bool) Mask {
	var m Mask
	leap(g, from, allDirs, 1, &m)
	p := g.at(from)
	if p.Kind != StandardKing || p.Color != White || from != whiteKingHome {
		return m
	}
	if castleShort && canCastle(g, shortCastle) {
		m.set(shortCastle.kingTo)
	}
	if castleLong && canCastle(g, longCastle) {
		m.set(longCastle.kingTo)
	}
	return m
}

// lieutenantMoves: jumps one or two squares diagonally, and steps one square
// sideways without capturing.
func lieutenantMoves(g *Grid, from Coord, _, _ bool) Mask {
	var m Mask
	leap(g, from, diagonals, 2, &m)
	for _, df := range []int{-1, 1} {
		if side := from.add(0, df); isVacant(g, side) {
			m.set(side)
		}
	}
	return m
}

// generalMoves: a rook that may also step one square diagonally.
func generalMoves(g *Grid, from Coord, _, _ bool) Mask {
	var m Mask
	slide(g, from, orthogonals, &m)
	leap(g, from, diagonals, 1, &m)
	return m
}

// captainMoves: jumps one or two squares orthogonally.
func captainMoves(g *Grid, from Coord, _, _ bool) Mask {
	var m Mask
	leap(g, from, orthogonals, 2, &m)
	return m
}

// warlordMoves: bishop plus knight.
func warlordMoves(g *Grid, from Coord, _, _ bool) Mask {
	var m Mask
	slide(g, from, diagonals, &m)
	leap(g, from, knightJumps, 1, &m)
	return m
}
