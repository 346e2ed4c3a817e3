package model

import (
	"testing"
	"time"

	"github.com/benbeisheim/spartanchess-backend/internal/engine"
	"github.com/benbeisheim/spartanchess-backend/internal/testutil"
)

func move(t *testing.T, from, to string) WSMove {
	t.Helper()
	f, err := engine.ParseCoord(from)
	testutil.AssertNoError(t, err)
	d, err := engine.ParseCoord(to)
	testutil.AssertNoError(t, err)
	return WSMove{From: f, To: d}
}

func seatedGame(t *testing.T) *Game {
	t.Helper()
	g := NewGame("test", 10*time.Minute)
	white, err := g.AddPlayer("alice")
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, white, engine.White)
	spartan, err := g.AddPlayer("bob")
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, spartan, engine.Spartan)
	return g
}

func TestAddPlayer(t *testing.T) {
	g := seatedGame(t)

	color, err := g.AddPlayer("bob")
	testutil.AssertNoError(t, err, "rejoin")
	testutil.AssertEqual(t, color, engine.Spartan)

	_, err = g.AddPlayer("carol")
	testutil.AssertErrorIs(t, err, ErrGameFull)
	testutil.AssertTrue(t, g.IsPlayerInGame("alice"))
	testutil.AssertFalse(t, g.IsPlayerInGame("carol"))
}

func TestMakeMoveGating(t *testing.T) {
	g := seatedGame(t)
	before := g.GetState()

	_, err := g.MakeMove("carol", move(t, "e2", "e3"))
	testutil.AssertErrorIs(t, err, ErrNotInGame)

	_, err = g.MakeMove("bob", move(t, "d7", "d6"))
	testutil.AssertErrorIs(t, err, ErrNotYourTurn)

	_, err = g.MakeMove("alice", move(t, "e2", "e4"))
	testutil.AssertErrorIs(t, err, engine.ErrIllegalMove)

	after := g.GetState()
	testutil.AssertEqual(t, after.Board, before.Board)
	testutil.AssertEqual(t, after.ToMove, engine.White)
	testutil.AssertEqual(t, after.Sound, SoundIllegal)
	testutil.AssertEqual(t, len(after.MoveHistory), 0)
}

func TestMakeMoveRecordsHistory(t *testing.T) {
	g := seatedGame(t)

	plays := []struct {
		player   string
		from, to string
		want     engine.MoveResult
	}{
		{"alice", "e2", "e3", engine.MoveResult{Applied: true}},
		{"bob", "d7", "d6", engine.MoveResult{Applied: true}},
		{"alice", "e3", "e4", engine.MoveResult{Applied: true}},
		{"bob", "d6", "d5", engine.MoveResult{Applied: true}},
		{"alice", "e4", "d5", engine.MoveResult{Applied: true, Capture: true}},
	}
	for _, p := range plays {
		res, err := g.MakeMove(p.player, move(t, p.from, p.to))
		testutil.AssertNoError(t, err, "%s-%s", p.from, p.to)
		testutil.AssertEqual(t, res, p.want, "%s-%s", p.from, p.to)
	}

	state := g.GetState()
	testutil.AssertEqual(t, state.ToMove, engine.Spartan)
	testutil.AssertEqual(t, state.Sound, SoundCapture)
	testutil.AssertEqual(t, len(state.MoveHistory), 3)

	var notations []string
	for _, m := range state.MoveHistory {
		if m.WhitePly != nil {
			notations = append(notations, m.WhitePly.Notation)
		}
		if m.SpartanPly != nil {
			notations = append(notations, m.SpartanPly.Notation)
		}
	}
	testutil.AssertEqual(t, notations, []string{"e3", "d6", "e4", "d5", "exd5"})

	testutil.AssertEqual(t, state.CapturedPieces.White, []engine.Piece{
		{Kind: engine.Hoplite, Color: engine.Spartan, Rank: 4, File: 3},
	})
	testutil.AssertEqual(t, state.LastMove, &SimpleMove{From: engine.Coord{Rank: 3, File: 4}, To: engine.Coord{Rank: 4, File: 3}})
	testutil.AssertEqual(t, state.Board.FEN, "lgkcckwl/hhh1hhhh/8/3P4/8/8/PPPP1PPP/RNBQKBNR s KQ")
}

func TestRestoreGameSpartanToMove(t *testing.T) {
	board, err := engine.ParseFEN("2k2k2/8/8/8/8/8/8/K1R5 s -")
	testutil.AssertNoError(t, err)

	g, err := RestoreGame("restored", board.Snapshot(), nil, ClockTimes{White: time.Minute, Spartan: time.Minute})
	testutil.AssertNoError(t, err)
	_, err = g.AddPlayer("alice")
	testutil.AssertNoError(t, err)
	_, err = g.AddPlayer("bob")
	testutil.AssertNoError(t, err)

	state := g.GetState()
	testutil.AssertEqual(t, state.Check, []engine.Coord{{Rank: 7, File: 2}})

	res, err := g.MakeMove("bob", move(t, "c8", "d7"))
	testutil.AssertNoError(t, err)
	testutil.AssertTrue(t, res.Applied)

	state = g.GetState()
	testutil.AssertEqual(t, len(state.MoveHistory), 1)
	testutil.AssertTrue(t, state.MoveHistory[0].WhitePly == nil)
	testutil.AssertEqual(t, state.MoveHistory[0].SpartanPly.Notation, "Kd7")
}

func TestLegalMoves(t *testing.T) {
	g := seatedGame(t)
	mask, err := g.LegalMoves(engine.Coord{Rank: 0, File: 1})
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, mask.Squares(), []engine.Coord{{Rank: 2, File: 0}, {Rank: 2, File: 2}})
}

func TestRestoreGameKeepsCapturesAndClocks(t *testing.T) {
	g := seatedGame(t)
	for _, p := range []struct{ player, from, to string }{
		{"alice", "e2", "e3"},
		{"bob", "d7", "d6"},
		{"alice", "e3", "e4"},
		{"bob", "d6", "d5"},
		{"alice", "e4", "d5"},
	} {
		_, err := g.MakeMove(p.player, move(t, p.from, p.to))
		testutil.AssertNoError(t, err, "%s-%s", p.from, p.to)
	}
	before := g.GetState()
	snap, history, _ := g.Snapshot()

	clocks := ClockTimes{White: 4 * time.Minute, Spartan: 90 * time.Second}
	restored, err := RestoreGame("restored", snap, history, clocks)
	testutil.AssertNoError(t, err)

	after := restored.GetState()
	testutil.AssertEqual(t, after.CapturedPieces, before.CapturedPieces)
	testutil.AssertEqual(t, len(after.CapturedPieces.White), 1)
	testutil.AssertEqual(t, after.Board, before.Board)
	testutil.AssertEqual(t, after.Players.White.TimeLeft, 2400)
	testutil.AssertEqual(t, after.Players.Spartan.TimeLeft, 900)

	_, _, saved := restored.Snapshot()
	testutil.AssertEqual(t, saved, clocks)
}

func TestFlaggedReported(t *testing.T) {
	board := engine.NewBoard()
	g, err := RestoreGame("flag", board.Snapshot(), nil, ClockTimes{White: 0, Spartan: time.Minute})
	testutil.AssertNoError(t, err)

	state := g.GetState()
	testutil.AssertTrue(t, state.Players.White.Flagged, "white out of time")
	testutil.AssertFalse(t, state.Players.Spartan.Flagged)
}
