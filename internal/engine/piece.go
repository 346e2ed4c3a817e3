package engine

import (
	"fmt"
	"strings"
)

// Color identifies one of the two armies. White plays the standard chess set,
// Spartan plays the custom set with two kings.
type Color int

const (
	White Color = iota
	Spartan
)

func (c Color) Opponent() Color {
	if c == White {
		return Spartan
	}
	return White
}

func (c Color) String() string {
	switch c {
	case White:
		return "white"
	case Spartan:
		return "spartan"
	}
	return fmt.Sprintf("Color(%d)", int(c))
}

func (c Color) MarshalText() ([]byte, error) {
	if c != White && c != Spartan {
		return nil, fmt.Errorf("unknown color %d", int(c))
	}
	return []byte(c.String()), nil
}

func (c *Color) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "white", "w":
		*c = White
	case "spartan", "s", "black", "b":
		*c = Spartan
	default:
		return fmt.Errorf("unknown color %q", text)
	}
	return nil
}

// forward is the rank delta an infantry piece of this color advances by.
func (c Color) forward() int {
	if c == White {
		return 1
	}
	return -1
}

type PieceKind int

const (
	Empty PieceKind = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	StandardKing
	Hoplite
	Lieutenant
	General
	SpartanKing
	Captain
	Warlord

	kindCount = int(iota)
)

var kindNames = [kindCount]string{
	Empty:        "empty",
	Pawn:         "pawn",
	Knight:       "knight",
	Bishop:       "bishop",
	Rook:         "rook",
	Queen:        "queen",
	StandardKing: "king",
	Hoplite:      "hoplite",
	Lieutenant:   "lieutenant",
	General:      "general",
	SpartanKing:  "spartanKing",
	Captain:      "captain",
	Warlord:      "warlord",
}

// kindLetters are used by FEN and move notation. Standard kinds are upper
// case and Spartan kinds lower case, so a letter fixes both kind and army.
var kindLetters = [kindCount]byte{
	Pawn:         'P',
	Knight:       'N',
	Bishop:       'B',
	Rook:         'R',
	Queen:        'Q',
	StandardKing: 'K',
	Hoplite:      'h',
	Lieutenant:   'l',
	General:      'g',
	SpartanKing:  'k',
	Captain:      'c',
	Warlord:      'w',
}

func (k PieceKind) valid() bool {
	return k >= Empty && int(k) < kindCount
}

func (k PieceKind) String() string {
	if !k.valid() {
		return fmt.Sprintf("PieceKind(%d)", int(k))
	}
	return kindNames[k]
}

// Army returns the side that fields this kind. Empty reports White.
func (k PieceKind) Army() Color {
	if k >= Hoplite && int(k) < kindCount {
		return Spartan
	}
	return White
}

// IsKing reports whether the piece is a king, whose attacked square is
// reported as check.
func (k PieceKind) IsKing() bool {
	return k == StandardKing || k == SpartanKing
}

// Notation returns the piece prefix used in move notation. Infantry has none.
func (k PieceKind) Notation() string {
	if !k.valid() || k == Empty || k == Pawn || k == Hoplite {
		return ""
	}
	return strings.ToUpper(string(kindLetters[k]))
}

func (k PieceKind) MarshalText() ([]byte, error) {
	if !k.valid() {
		return nil, fmt.Errorf("unknown piece kind %d", int(k))
	}
	return []byte(kindNames[k]), nil
}

func (k *PieceKind) UnmarshalText(text []byte) error {
	for i, name := range kindNames {
		if name == string(text) {
			*k = PieceKind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown piece kind %q", text)
}

// Coord addresses a square. Rank 0 is the White back rank, file 0 is the a-file.
type Coord struct {
	Rank int `json:"rank"`
	File int `json:"file"`
}

func (c Coord) Valid() bool {
	return c.Rank >= 0 && c.Rank < 8 && c.File >= 0 && c.File < 8
}

func (c Coord) add(dr, df int) Coord {
	return Coord{Rank: c.Rank + dr, File: c.File + df}
}

// String renders the square in algebraic form, e.g. "e1" for (0,4).
func (c Coord) String() string {
	if !c.Valid() {
		return fmt.Sprintf("(%d,%d)", c.Rank, c.File)
	}
	return fmt.Sprintf("%c%d", 'a'+c.File, c.Rank+1)
}

// ParseCoord parses an algebraic square name.
func ParseCoord(s string) (Coord, error) {
	if len(s) != 2 {
		return Coord{}, fmt.Errorf("%w: square %q", ErrOutOfBounds, s)
	}
	c := Coord{Rank: int(s[1]) - '1', File: int(s[0]) - 'a'}
	if !c.Valid() {
		return Coord{}, fmt.Errorf("%w: square %q", ErrOutOfBounds, s)
	}
	return c, nil
}

// Piece is the occupant of one square. Vacant squares hold an Empty piece.
// Rank and File always mirror the piece's slot in the owning Grid.
type Piece struct {
	Kind  PieceKind `json:"kind"`
	Color Color     `json:"color"`
	Rank  int       `json:"rank"`
	File  int       `json:"file"`
}

func emptyAt(c Coord) Piece {
	return Piece{Kind: Empty, Rank: c.Rank, File: c.File}
}

func (p Piece) IsEmpty() bool {
	return p.Kind == Empty
}

func (p Piece) Coord() Coord {
	return Coord{Rank: p.Rank, File: p.File}
}

// ValidMoves returns this piece's legality mask on grid.
func (p Piece) ValidMoves(g *Grid, castleShort, castleLong bool) (Mask, error) {
	return FindValidMoves(g, p.Coord(), castleShort, castleLong)
}

// Letter returns the FEN letter for the piece, or 0 for Empty.
func (p Piece) Letter() byte {
	if p.IsEmpty() || !p.Kind.valid() {
		return 0
	}
	return kindLetters[p.Kind]
}

func (p Piece) String() string {
	if p.IsEmpty() {
		return "empty@" + p.Coord().String()
	}
	return fmt.Sprintf("%s %s@%s", p.Color, p.Kind, p.Coord())
}
