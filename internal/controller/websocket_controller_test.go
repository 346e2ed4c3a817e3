package controller

import (
	"context"
	"encoding/json"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/benbeisheim/spartanchess-backend/internal/engine"
	"github.com/benbeisheim/spartanchess-backend/internal/model"
	"github.com/benbeisheim/spartanchess-backend/internal/testutil"
	"github.com/benbeisheim/spartanchess-backend/internal/ws"
	"github.com/fasthttp/websocket"
	"github.com/gofiber/fiber/v2"
)

// listen serves app on a loopback port and returns its websocket base URL.
func listen(t *testing.T, app *fiber.App) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	testutil.AssertNoError(t, err)
	go app.Listener(ln)
	t.Cleanup(func() { _ = app.Shutdown() })
	return "ws://" + ln.Addr().String()
}

func dial(t *testing.T, base, path, player string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(base+path+"?playerId="+player, nil)
	testutil.AssertNoError(t, err, "dial %s as %s", path, player)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func expect(t *testing.T, conn *websocket.Conn, want ws.MessageType) ws.Message {
	t.Helper()
	testutil.AssertNoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	var msg ws.Message
	testutil.AssertNoError(t, conn.ReadJSON(&msg))
	testutil.AssertEqual(t, msg.Type, want, "payload %s", msg.Payload)
	return msg
}

func expectState(t *testing.T, conn *websocket.Conn) model.GameState {
	t.Helper()
	var state model.GameState
	testutil.AssertNoError(t, json.Unmarshal(expect(t, conn, ws.MessageTypeGameState).Payload, &state))
	return state
}

func send(t *testing.T, conn *websocket.Conn, typ ws.MessageType, payload interface{}) {
	t.Helper()
	msg, err := ws.NewMessage(typ, payload)
	testutil.AssertNoError(t, err)
	testutil.AssertNoError(t, conn.WriteJSON(msg))
}

func square(t *testing.T, s string) engine.Coord {
	t.Helper()
	c, err := engine.ParseCoord(s)
	testutil.AssertNoError(t, err)
	return c
}

func TestGameSocket(t *testing.T) {
	app, _, gs := newTestStack(t)
	base := listen(t, app)

	gameID, err := gs.CreateGame()
	testutil.AssertNoError(t, err)
	_, _ = gs.JoinGame(gameID, "alice")
	_, _ = gs.JoinGame(gameID, "bob")
	path := "/ws/game/" + gameID

	alice := dial(t, base, path, "alice")
	expectState(t, alice)
	bob := dial(t, base, path, "bob")
	expectState(t, bob)
	expectState(t, alice)

	// The mover sees the new state before its move result; both arrive on
	// the one writer in order.
	plays := []struct {
		mover, other *websocket.Conn
		from, to     string
	}{
		{alice, bob, "g1", "f3"},
		{bob, alice, "g8", "f6"},
		{alice, bob, "f3", "g1"},
		{bob, alice, "f6", "g8"},
		{alice, bob, "g1", "f3"},
		{bob, alice, "g8", "f6"},
	}
	for i, p := range plays {
		mv := model.WSMove{From: square(t, p.from), To: square(t, p.to)}
		send(t, p.mover, ws.MessageTypeMove, mv)

		state := expectState(t, p.mover)
		testutil.AssertEqual(t, state.LastMove, &model.SimpleMove{From: mv.From, To: mv.To}, "ply %d", i)

		var res engine.MoveResult
		testutil.AssertNoError(t, json.Unmarshal(expect(t, p.mover, ws.MessageTypeMoveResult).Payload, &res))
		testutil.AssertEqual(t, res, engine.MoveResult{Applied: true}, "ply %d", i)

		state = expectState(t, p.other)
		testutil.AssertEqual(t, state.LastMove, &model.SimpleMove{From: mv.From, To: mv.To}, "ply %d", i)
	}

	send(t, alice, ws.MessageTypeLegalMoves, legalMovesRequest{Square: square(t, "b1")})
	var legal legalMovesReply
	testutil.AssertNoError(t, json.Unmarshal(expect(t, alice, ws.MessageTypeLegalMoves).Payload, &legal))
	testutil.AssertEqual(t, legal.Destinations, []engine.Coord{{Rank: 2, File: 0}, {Rank: 2, File: 2}})

	send(t, alice, ws.MessageTypeGameState, nil)
	state := expectState(t, alice)
	testutil.AssertEqual(t, state.ToMove, engine.White)
	testutil.AssertEqual(t, len(state.MoveHistory), 3)

	tests := []struct {
		name    string
		conn    *websocket.Conn
		typ     ws.MessageType
		payload interface{}
		errText string
	}{
		{"unknown type", alice, "resign", nil, "unknown message type"},
		{"out of turn", bob, ws.MessageTypeMove, model.WSMove{From: square(t, "a7"), To: square(t, "a6")}, "not your turn"},
		{"illegal", alice, ws.MessageTypeMove, model.WSMove{From: square(t, "a1"), To: square(t, "a3")}, "illegal move"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			send(t, tt.conn, tt.typ, tt.payload)
			var body map[string]string
			testutil.AssertNoError(t, json.Unmarshal(expect(t, tt.conn, ws.MessageTypeError).Payload, &body))
			testutil.AssertTrue(t, strings.Contains(body["error"], tt.errText), "got %q", body["error"])
		})
	}

	dup := dial(t, base, path, "alice")
	var body map[string]string
	testutil.AssertNoError(t, json.Unmarshal(expect(t, dup, ws.MessageTypeError).Payload, &body))
	testutil.AssertEqual(t, body["error"], model.ErrAlreadyConnected.Error())
}

func TestMatchmakingSocket(t *testing.T) {
	app, gm, gs := newTestStack(t)
	base := listen(t, app)

	testutil.AssertNoError(t, gs.JoinMatchmaking("carol"))
	testutil.AssertNoError(t, gs.JoinMatchmaking("dave"))
	carol := dial(t, base, "/ws/matchmaking", "carol")
	dave := dial(t, base, "/ws/matchmaking", "dave")

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go gm.Run(ctx, 10*time.Millisecond)

	var carolMatch, daveMatch model.MatchFoundEvent
	testutil.AssertNoError(t, json.Unmarshal(expect(t, carol, ws.MessageTypeMatchFound).Payload, &carolMatch))
	testutil.AssertNoError(t, json.Unmarshal(expect(t, dave, ws.MessageTypeMatchFound).Payload, &daveMatch))
	testutil.AssertEqual(t, carolMatch.Color, engine.White)
	testutil.AssertEqual(t, daveMatch, model.MatchFoundEvent{GameID: carolMatch.GameID, Color: engine.Spartan})
}

func TestMatchmakingSocketDisconnectLeavesQueue(t *testing.T) {
	app, _, gs := newTestStack(t)
	base := listen(t, app)

	testutil.AssertNoError(t, gs.JoinMatchmaking("erin"))
	erin := dial(t, base, "/ws/matchmaking", "erin")
	erin.Close()

	deadline := time.Now().Add(3 * time.Second)
	for gs.IsQueued("erin") {
		if time.Now().After(deadline) {
			t.Fatal("erin still queued after disconnecting")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
