package engine

import "fmt"

// MoveResult is what AttemptMove reports to the caller.
type MoveResult struct {
	Applied bool `json:"applied"`
	Capture bool `json:"capture"`
}

// MoveApplied is emitted after every successful mutation.
type MoveApplied struct {
	From     Coord
	To       Coord
	Piece    Piece // the mover, with its new coordinates
	Captured Piece // Empty on a quiet move
	Capture  bool
	Castle   CastleSide
	// RookFrom and RookTo are set when Castle is not NoCastle.
	RookFrom Coord
	RookTo   Coord
}

// Board owns the grid, the side to move and White's castling rights. It is
// not safe for concurrent use; sessions serialize access to it.
type Board struct {
	grid        Grid
	toMove      Color
	castleShort bool
	castleLong  bool
	listeners   []func(MoveApplied)
}

var backRanks = [2][8]PieceKind{
	{Rook, Knight, Bishop, Queen, StandardKing, Bishop, Knight, Rook},
	{Lieutenant, General, SpartanKing, Captain, Captain, SpartanKing, Warlord, Lieutenant},
}

// NewBoard returns the starting position with White to move.
func NewBoard() *Board {
	b := &Board{toMove: White, castleShort: true, castleLong: true}
	for r := 0; r < 8; r++ {
		for f := 0; f < 8; f++ {
			b.grid[r][f] = emptyAt(Coord{Rank: r, File: f})
		}
	}
	for f := 0; f < 8; f++ {
		b.grid[0][f] = Piece{Kind: backRanks[0][f], Color: White, Rank: 0, File: f}
		b.grid[1][f] = Piece{Kind: Pawn, Color: White, Rank: 1, File: f}
		b.grid[6][f] = Piece{Kind: Hoplite, Color: Spartan, Rank: 6, File: f}
		b.grid[7][f] = Piece{Kind: backRanks[1][f], Color: Spartan, Rank: 7, File: f}
	}
	return b
}

func (b *Board) SideToMove() Color {
	return b.toMove
}

// CastleRights returns White's remaining short and long castling rights.
func (b *Board) CastleRights() (short, long bool) {
	return b.castleShort, b.castleLong
}

// Grid returns a copy of the current grid.
func (b *Board) Grid() Grid {
	return b.grid
}

func (b *Board) PieceAt(c Coord) (Piece, error) {
	if !c.Valid() {
		return Piece{}, fmt.Errorf("%w: %v", ErrOutOfBounds, c)
	}
	return b.grid.at(c), nil
}

// LegalDestinations is the read-only mask query for presentation. It does not
// look at whose turn it is.
func (b *Board) LegalDestinations(c Coord) (Mask, error) {
	return FindValidMoves(&b.grid, c, b.castleShort, b.castleLong)
}

// InCheck lists the attacked kings of color.
func (b *Board) InCheck(color Color) []Coord {
	return KingsInCheck(&b.grid, color)
}

// OnMoveApplied registers fn to run after each applied move.
func (b *Board) OnMoveApplied(fn func(MoveApplied)) {
	b.listeners = append(b.listeners, fn)
}

// IsValidMove is the pure legality predicate over an arbitrary grid.
func IsValidMove(g *Grid, from, to Coord, toMove Color, castleShort, castleLong bool) bool {
	return validate(g, from, to, toMove, castleShort, castleLong) == nil
}

func validate(g *Grid, from, to Coord, toMove Color, castleShort, castleLong bool) error {
	if !from.Valid() || !to.Valid() {
		return fmt.Errorf("%w: %w: %v to %v", ErrIllegalMove, ErrOutOfBounds, from, to)
	}
	if from == to {
		return fmt.Errorf("%w: %v to itself", ErrIllegalMove, from)
	}
	p := g.at(from)
	if p.IsEmpty() {
		return fmt.Errorf("%w: %w: %v", ErrIllegalMove, ErrEmptySquare, from)
	}
	if p.Color != toMove {
		return fmt.Errorf("%w: %s to move, %v is %s", ErrIllegalMove, toMove, from, p.Color)
	}
	mask, err := FindValidMoves(g, from, castleShort, castleLong)
	if err != nil {
		return err
	}
	if !mask.Has(to) {
		return fmt.Errorf("%w: %s cannot reach %v from %v", ErrIllegalMove, p.Kind, to, from)
	}
	return nil
}

// CheckMove explains why a move would be rejected, or returns nil.
func (b *Board) CheckMove(from, to Coord) error {
	return validate(&b.grid, from, to, b.toMove, b.castleShort, b.castleLong)
}

// AttemptMove applies the move if it is legal for the side to move. Rejected
// moves leave the board untouched.
func (b *Board) AttemptMove(from, to Coord) MoveResult {
	if b.CheckMove(from, to) != nil {
		return MoveResult{}
	}
	ev := b.apply(from, to)
	b.toMove = b.toMove.Opponent()
	for _, fn := range b.listeners {
		fn(ev)
	}
	return MoveResult{Applied: true, Capture: ev.Capture}
}

func (b *Board) apply(from, to Coord) MoveApplied {
	mover := b.grid.at(from)
	captured := b.grid.at(to)
	ev := MoveApplied{From: from, To: to, Captured: captured, Capture: !captured.IsEmpty()}

	if c, ok := castleFor(mover, from, to); ok {
		b.relocate(c.rookFrom, c.rookTo)
		ev.Castle, ev.RookFrom, ev.RookTo = c.side, c.rookFrom, c.rookTo
	}
	b.relocate(from, to)
	ev.Piece = b.grid.at(to)
	b.revokeCastling(mover, from, to)
	return ev
}

// relocate performs the two slot writes of a move.
func (b *Board) relocate(from, to Coord) {
	p := b.grid.at(from)
	p.Rank, p.File = to.Rank, to.File
	b.grid[to.Rank][to.File] = p
	b.grid[from.Rank][from.File] = emptyAt(from)
}

// revokeCastling clears rights when the king moves or a home rook leaves or
// is captured on its square.
func (b *Board) revokeCastling(mover Piece, from, to Coord) {
	if mover.Kind == StandardKing && mover.Color == White {
		b.castleShort, b.castleLong = false, false
	}
	if from == shortRookHome || to == shortRookHome {
		b.castleShort = false
	}
	if from == longRookHome || to == longRookHome {
		b.castleLong = false
	}
}
