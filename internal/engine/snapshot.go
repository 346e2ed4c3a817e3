package engine

import (
	"fmt"
	"strings"
)

// Snapshot is the serializable form of a Board: all 64 squares in rank-major
// order plus the side to move and both castling rights.
type Snapshot struct {
	Squares     []Piece `json:"squares"`
	SideToMove  Color   `json:"sideToMove"`
	CastleShort bool    `json:"castleShort"`
	CastleLong  bool    `json:"castleLong"`
}

func (b *Board) Snapshot() Snapshot {
	s := Snapshot{
		Squares:     make([]Piece, 0, 64),
		SideToMove:  b.toMove,
		CastleShort: b.castleShort,
		CastleLong:  b.castleLong,
	}
	for r := range b.grid {
		s.Squares = append(s.Squares, b.grid[r][:]...)
	}
	return s
}

// Restore rebuilds a Board from a snapshot, checking that every piece sits
// on the slot it claims and belongs to the army that fields its kind.
func Restore(s Snapshot) (*Board, error) {
	if len(s.Squares) != 64 {
		return nil, fmt.Errorf("snapshot has %d squares, want 64", len(s.Squares))
	}
	if s.SideToMove != White && s.SideToMove != Spartan {
		return nil, fmt.Errorf("snapshot side to move %v", s.SideToMove)
	}
	b := &Board{toMove: s.SideToMove, castleShort: s.CastleShort, castleLong: s.CastleLong}
	for i, p := range s.Squares {
		c := Coord{Rank: i / 8, File: i % 8}
		if p.Coord() != c {
			return nil, fmt.Errorf("snapshot square %d holds a piece at %v", i, p.Coord())
		}
		if !p.Kind.valid() {
			return nil, fmt.Errorf("snapshot square %v: %v", c, p.Kind)
		}
		if p.IsEmpty() {
			p = emptyAt(c)
		} else if p.Color != p.Kind.Army() {
			return nil, fmt.Errorf("snapshot square %v: %s cannot be %s", c, p.Kind, p.Color)
		}
		b.grid[c.Rank][c.File] = p
	}
	return b, nil
}

// FEN renders the board as ranks 8 to 1, the side to move ("w" or "s") and
// White's castling rights.
func (b *Board) FEN() string {
	var sb strings.Builder
	for r := 7; r >= 0; r-- {
		run := 0
		for f := 0; f < 8; f++ {
			p := b.grid[r][f]
			if p.IsEmpty() {
				run++
				continue
			}
			if run > 0 {
				sb.WriteByte(byte('0' + run))
				run = 0
			}
			sb.WriteByte(p.Letter())
		}
		if run > 0 {
			sb.WriteByte(byte('0' + run))
		}
		if r > 0 {
			sb.WriteByte('/')
		}
	}
	side := "w"
	if b.toMove == Spartan {
		side = "s"
	}
	rights := ""
	if b.castleShort {
		rights += "K"
	}
	if b.castleLong {
		rights += "Q"
	}
	if rights == "" {
		rights = "-"
	}
	return sb.String() + " " + side + " " + rights
}

func (s Snapshot) String() string {
	b, err := Restore(s)
	if err != nil {
		return "invalid snapshot: " + err.Error()
	}
	return b.FEN()
}

// ParseFEN builds a Board from the form FEN produces. The side and castling
// fields are optional and default to "w" and "KQ".
func ParseFEN(fen string) (*Board, error) {
	fields := strings.Fields(fen)
	if len(fields) == 0 || len(fields) > 3 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFEN, fen)
	}
	rows := strings.Split(fields[0], "/")
	if len(rows) != 8 {
		return nil, fmt.Errorf("%w: %d ranks in %q", ErrInvalidFEN, len(rows), fen)
	}

	b := &Board{toMove: White, castleShort: true, castleLong: true}
	for i, row := range rows {
		r := 7 - i
		f := 0
		for _, ch := range []byte(row) {
			if ch >= '1' && ch <= '8' {
				for n := 0; n < int(ch-'0'); n++ {
					if f >= 8 {
						return nil, fmt.Errorf("%w: rank %d overflows", ErrInvalidFEN, r+1)
					}
					b.grid[r][f] = emptyAt(Coord{Rank: r, File: f})
					f++
				}
				continue
			}
			kind, ok := kindForLetter(ch)
			if !ok {
				return nil, fmt.Errorf("%w: unknown piece %q", ErrInvalidFEN, ch)
			}
			if f >= 8 {
				return nil, fmt.Errorf("%w: rank %d overflows", ErrInvalidFEN, r+1)
			}
			b.grid[r][f] = Piece{Kind: kind, Color: kind.Army(), Rank: r, File: f}
			f++
		}
		if f != 8 {
			return nil, fmt.Errorf("%w: rank %d has %d files", ErrInvalidFEN, r+1, f)
		}
	}

	if len(fields) > 1 {
		switch fields[1] {
		case "w":
			b.toMove = White
		case "s":
			b.toMove = Spartan
		default:
			return nil, fmt.Errorf("%w: side %q", ErrInvalidFEN, fields[1])
		}
	}
	if len(fields) > 2 {
		b.castleShort, b.castleLong = false, false
		if fields[2] != "-" {
			for _, ch := range fields[2] {
				switch ch {
				case 'K':
					b.castleShort = true
				case 'Q':
					b.castleLong = true
				default:
					return nil, fmt.Errorf("%w: castling %q", ErrInvalidFEN, fields[2])
				}
			}
		}
	}
	return b, nil
}

func kindForLetter(ch byte) (PieceKind, bool) {
	for k, letter := range kindLetters {
		if letter != 0 && letter == ch {
			return PieceKind(k), true
		}
	}
	return Empty, false
}
