package engine

import (
	"sort"
	"testing"

	"github.com/benbeisheim/spartanchess-backend/internal/testutil"
)

func mustFEN(t *testing.T, fen string) *Board {
	t.Helper()
	b, err := ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN(%q) error: %v", fen, err)
	}
	return b
}

func sq(t *testing.T, name string) Coord {
	t.Helper()
	c, err := ParseCoord(name)
	if err != nil {
		t.Fatalf("ParseCoord(%q) error: %v", name, err)
	}
	return c
}

// names returns the marked squares of m in sorted algebraic form.
func names(m Mask) []string {
	out := []string{}
	for _, c := range m.Squares() {
		out = append(out, c.String())
	}
	sort.Strings(out)
	return out
}

func sorted(s ...string) []string {
	out := append([]string{}, s...)
	sort.Strings(out)
	return out
}

func TestEveryKindHasMovementRule(t *testing.T) {
	for k := Pawn; int(k) < kindCount; k++ {
		if _, ok := generators[k]; !ok {
			t.Errorf("no generator for %v", k)
		}
	}
	if _, ok := generators[Empty]; ok {
		t.Error("Empty must not have a generator")
	}
}

func TestFindValidMovesRejectsBadOrigins(t *testing.T) {
	b := NewBoard()

	_, err := FindValidMoves(&b.grid, Coord{Rank: 3, File: 3}, true, true)
	testutil.AssertErrorIs(t, err, ErrEmptySquare)

	_, err = FindValidMoves(&b.grid, Coord{Rank: 8, File: 0}, true, true)
	testutil.AssertErrorIs(t, err, ErrOutOfBounds)

	var g Grid
	g[3][3] = Piece{Kind: PieceKind(99), Rank: 3, File: 3}
	_, err = FindValidMoves(&g, Coord{Rank: 3, File: 3}, false, false)
	testutil.AssertErrorIs(t, err, ErrIllegalMove, "unknown kind")
}

func TestMovementRules(t *testing.T) {
	tests := []struct {
		name   string
		fen    string
		origin string
		want   []string
	}{
		{
			name:   "pawn single step only",
			fen:    "lgkcckwl/hhhhhhhh/8/8/8/8/PPPPPPPP/RNBQKBNR w KQ",
			origin: "d2",
			want:   []string{"d3"},
		},
		{
			name:   "knight clipped by edge and own pawns",
			fen:    "lgkcckwl/hhhhhhhh/8/8/8/8/PPPPPPPP/RNBQKBNR w KQ",
			origin: "b1",
			want:   []string{"a3", "c3"},
		},
		{
			name:   "pawn captures diagonally but not forward",
			fen:    "4k3/8/8/8/3h4/2hh4/3P4/4K3 w -",
			origin: "d2",
			want:   []string{"c3"},
		},
		{
			name:   "rook stops before friend and on enemy",
			fen:    "4k3/8/3P4/8/3R1h2/8/8/4K3 w -",
			origin: "d4",
			want:   []string{"d5", "d3", "d2", "d1", "c4", "b4", "a4", "e4", "f4"},
		},
		{
			name:   "bishop rays",
			fen:    "4k3/8/1h6/8/3B4/8/5P2/4K3 w -",
			origin: "d4",
			want:   []string{"c5", "b6", "e5", "f6", "g7", "h8", "c3", "b2", "a1", "e3"},
		},
		{
			name:   "queen combines rook and bishop",
			fen:    "7k/8/8/8/8/8/1P6/QK6 w -",
			origin: "a1",
			want:   []string{"a2", "a3", "a4", "a5", "a6", "a7", "a8"},
		},
		{
			name:   "hoplite advances toward rank one",
			fen:    "4k3/8/8/8/3h4/2P5/8/4K3 s -",
			origin: "d4",
			want:   []string{"d3", "c3"},
		},
		{
			name:   "hoplite blocked ahead",
			fen:    "4k3/8/8/8/3h4/3P4/8/4K3 s -",
			origin: "d4",
			want:   []string{},
		},
		{
			name:   "lieutenant diagonal jumps and sideways step",
			fen:    "4k3/8/8/8/3l4/8/8/4K3 s -",
			origin: "d4",
			want:   []string{"e5", "f6", "c5", "b6", "e3", "f2", "c3", "b2", "c4", "e4"},
		},
		{
			name:   "lieutenant jumps over a friend and never captures sideways",
			fen:    "4k3/8/8/4h3/2Pl4/8/8/4K3 s -",
			origin: "d4",
			want:   []string{"f6", "c5", "b6", "e3", "f2", "c3", "b2", "e4"},
		},
		{
			name:   "captain orthogonal jumps",
			fen:    "4k3/8/8/3h4/3c4/8/8/4K3 s -",
			origin: "d4",
			want:   []string{"d6", "d3", "d2", "c4", "b4", "e4", "f4"},
		},
		{
			name:   "general is rook plus diagonal step",
			fen:    "4k3/8/8/8/3g4/8/8/4K3 s -",
			origin: "d4",
			want: []string{
				"d5", "d6", "d7", "d8", "d3", "d2", "d1",
				"a4", "b4", "c4", "e4", "f4", "g4", "h4",
				"c5", "e5", "c3", "e3",
			},
		},
		{
			name:   "warlord is bishop plus knight",
			fen:    "4k3/8/8/8/3w4/8/8/4K3 s -",
			origin: "d4",
			want: []string{
				"e5", "f6", "g7", "h8", "c5", "b6", "a7", "e3", "f2", "g1", "c3", "b2", "a1",
				"e6", "c6", "f5", "b5", "f3", "b3", "e2", "c2",
			},
		},
		{
			name:   "spartan king steps",
			fen:    "4k3/8/8/8/3k4/8/8/4K3 s -",
			origin: "d4",
			want:   []string{"c3", "c4", "c5", "d3", "d5", "e3", "e4", "e5"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := mustFEN(t, tt.fen)
			short, long := b.CastleRights()
			mask, err := FindValidMoves(&b.grid, sq(t, tt.origin), short, long)
			testutil.AssertNoError(t, err)
			testutil.AssertEqual(t, names(mask), sorted(tt.want...))
		})
	}
}

func TestSlidingRayStopsAtFriend(t *testing.T) {
	b := mustFEN(t, "4k3/8/8/8/R2P4/8/8/4K3 w -")
	mask, err := b.LegalDestinations(sq(t, "a4"))
	testutil.AssertNoError(t, err)

	testutil.AssertTrue(t, mask.Has(sq(t, "b4")))
	testutil.AssertTrue(t, mask.Has(sq(t, "c4")))
	for _, name := range []string{"d4", "e4", "f4", "g4", "h4"} {
		testutil.AssertFalse(t, mask.Has(sq(t, name)), name)
	}
}

func TestAttacked(t *testing.T) {
	b := mustFEN(t, "4k3/8/8/8/3h4/8/8/4K3 w -")
	// hoplites attack diagonally toward rank one whether or not the square is occupied
	testutil.AssertTrue(t, Attacked(&b.grid, sq(t, "c3"), Spartan))
	testutil.AssertTrue(t, Attacked(&b.grid, sq(t, "e3"), Spartan))
	testutil.AssertFalse(t, Attacked(&b.grid, sq(t, "d3"), Spartan))

	b = mustFEN(t, "4k3/8/8/8/3l4/8/8/4K3 w -")
	testutil.AssertFalse(t, Attacked(&b.grid, sq(t, "c4"), Spartan), "sideways step is not a capture")
	testutil.AssertTrue(t, Attacked(&b.grid, sq(t, "f2"), Spartan))
}

func TestKingsInCheck(t *testing.T) {
	b := mustFEN(t, "2k2k2/8/8/8/8/8/8/K1R5 s -")
	testutil.AssertEqual(t, b.InCheck(Spartan), []Coord{{Rank: 7, File: 2}})
	testutil.AssertEqual(t, len(b.InCheck(White)), 0)
}

func TestPieceValidMoves(t *testing.T) {
	b := mustFEN(t, "lgkcckwl/8/8/8/8/8/8/R3K2R w KQ")
	king := b.grid.at(sq(t, "e1"))

	m, err := king.ValidMoves(&b.grid, true, true)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, names(m), sorted("c1", "d1", "d2", "e2", "f1", "f2", "g1"))

	m, err = king.ValidMoves(&b.grid, false, false)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, names(m), sorted("d1", "d2", "e2", "f1", "f2"))

	_, err = b.grid.at(sq(t, "e4")).ValidMoves(&b.grid, true, true)
	testutil.AssertErrorIs(t, err, ErrEmptySquare)
}
