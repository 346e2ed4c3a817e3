package model

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/benbeisheim/spartanchess-backend/internal/engine"
	"github.com/benbeisheim/spartanchess-backend/internal/ws"
)

// Sound cues the client plays for the last event.
const (
	SoundMove    = "move"
	SoundCapture = "capture"
	SoundCheck   = "check"
	SoundIllegal = "illegal"
)

// The connections for a specific game
type GameConnections struct {
	connections map[string]*Client // playerID -> client
	mu          sync.RWMutex
}

func NewGameConnections() *GameConnections {
	return &GameConnections{
		connections: make(map[string]*Client),
	}
}

// Game is one session. Its mutex is the single point moves are serialized
// through, in the order they arrive.
type Game struct {
	ID           string
	mu           sync.Mutex
	board        *engine.Board
	state        GameState
	connections  *GameConnections
	whiteClock   *Clock
	spartanClock *Clock
}

type GameState struct {
	Sound          string         `json:"sound"`
	Board          BoardState     `json:"boardState"`
	ToMove         engine.Color   `json:"toMove"`
	MoveHistory    []Move         `json:"moveHistory"`
	CapturedPieces CapturedPieces `json:"capturedPieces"`
	// Check lists the kings of the side to move that stand attacked.
	Check    []engine.Coord `json:"check"`
	Players  Seats          `json:"players"`
	LastMove *SimpleMove    `json:"lastMove"`
}

// CapturedPieces is keyed by the capturing side.
type CapturedPieces struct {
	White   []engine.Piece `json:"white"`
	Spartan []engine.Piece `json:"spartan"`
}

// ClockTimes is the time each side has left.
type ClockTimes struct {
	White   time.Duration `json:"white"`
	Spartan time.Duration `json:"spartan"`
}

func NewGame(id string, clock time.Duration) *Game {
	return newGame(id, engine.NewBoard(), nil, ClockTimes{White: clock, Spartan: clock})
}

// RestoreGame resumes a saved position with its move history and clocks.
// Captured pieces are rebuilt from the history.
func RestoreGame(id string, snap engine.Snapshot, history []Move, clocks ClockTimes) (*Game, error) {
	board, err := engine.Restore(snap)
	if err != nil {
		return nil, fmt.Errorf("restore game %s: %w", id, err)
	}
	return newGame(id, board, history, clocks), nil
}

func newGame(id string, board *engine.Board, history []Move, clocks ClockTimes) *Game {
	if history == nil {
		history = make([]Move, 0)
	}
	g := &Game{
		ID:           id,
		board:        board,
		connections:  NewGameConnections(),
		whiteClock:   NewClock(clocks.White),
		spartanClock: NewClock(clocks.Spartan),
	}
	g.state = GameState{
		MoveHistory:    history,
		CapturedPieces: capturedFrom(history),
	}
	g.board.OnMoveApplied(g.recordMove)
	g.refresh()
	return g
}

// capturedFrom replays the captures recorded in history.
func capturedFrom(history []Move) CapturedPieces {
	captured := CapturedPieces{
		White:   make([]engine.Piece, 0),
		Spartan: make([]engine.Piece, 0),
	}
	for _, m := range history {
		for _, ply := range []*Ply{m.WhitePly, m.SpartanPly} {
			if ply == nil || ply.CapturedPiece == nil {
				continue
			}
			captured.add(ply.Piece.Color, *ply.CapturedPiece)
		}
	}
	return captured
}

func (c *CapturedPieces) add(by engine.Color, p engine.Piece) {
	if by == engine.White {
		c.White = append(c.White, p)
	} else {
		c.Spartan = append(c.Spartan, p)
	}
}

func (g *Game) AddPlayer(playerID string) (engine.Color, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if color, ok := g.state.Players.colorOf(playerID); ok {
		return color, nil
	}
	if g.state.Players.White.ID == "" {
		g.state.Players.White = ClientPlayer{ID: playerID, Color: engine.White}
		g.refresh()
		return engine.White, nil
	}
	if g.state.Players.Spartan.ID == "" {
		g.state.Players.Spartan = ClientPlayer{ID: playerID, Color: engine.Spartan}
		g.refresh()
		return engine.Spartan, nil
	}
	return engine.White, ErrGameFull
}

// GetState returns a copy of the state that later moves do not touch.
func (g *Game) GetState() GameState {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.cloneState()
}

func (g *Game) cloneState() GameState {
	state := g.state
	state.MoveHistory = append([]Move{}, g.state.MoveHistory...)
	state.CapturedPieces.White = append([]engine.Piece{}, g.state.CapturedPieces.White...)
	state.CapturedPieces.Spartan = append([]engine.Piece{}, g.state.CapturedPieces.Spartan...)
	state.Check = append([]engine.Coord{}, g.state.Check...)
	return state
}

func (g *Game) IsPlayerInGame(playerID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	_, ok := g.state.Players.colorOf(playerID)
	return ok
}

func (g *Game) canSpectate() bool {
	return g.state.Players.White.ID == "" || g.state.Players.Spartan.ID == ""
}

// LegalMoves returns the destinations of the piece on square.
func (g *Game) LegalMoves(square engine.Coord) (engine.Mask, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.board.LegalDestinations(square)
}

// Snapshot returns the position, history and clocks for archiving.
func (g *Game) Snapshot() (engine.Snapshot, []Move, ClockTimes) {
	g.mu.Lock()
	defer g.mu.Unlock()

	history := make([]Move, len(g.state.MoveHistory))
	copy(history, g.state.MoveHistory)
	clocks := ClockTimes{
		White:   g.whiteClock.GetTimeLeft(),
		Spartan: g.spartanClock.GetTimeLeft(),
	}
	return g.board.Snapshot(), history, clocks
}

// MakeMove validates the move for playerID's side and applies it. A rejected
// move leaves the position untouched and reports why.
func (g *Game) MakeMove(playerID string, move WSMove) (engine.MoveResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	color, ok := g.state.Players.colorOf(playerID)
	if !ok {
		return engine.MoveResult{}, ErrNotInGame
	}
	if color != g.board.SideToMove() {
		return engine.MoveResult{}, ErrNotYourTurn
	}
	if err := g.board.CheckMove(move.From, move.To); err != nil {
		g.state.Sound = SoundIllegal
		return engine.MoveResult{}, err
	}

	g.clockFor(color).Stop()
	res := g.board.AttemptMove(move.From, move.To)
	g.clockFor(color.Opponent()).Start()

	g.refresh()
	log.Printf("game %s: %s %v-%v applied=%t capture=%t", g.ID, color, move.From, move.To, res.Applied, res.Capture)

	g.broadcastLocked()
	return res, nil
}

// recordMove is the board's MoveApplied subscriber. It runs with g.mu held.
func (g *Game) recordMove(ev engine.MoveApplied) {
	ply := &Ply{
		Piece:    ev.Piece,
		From:     ev.From,
		To:       ev.To,
		Notation: notation(ev),
	}
	if ev.Capture {
		captured := ev.Captured
		ply.CapturedPiece = &captured
		g.state.CapturedPieces.add(ev.Piece.Color, captured)
	}
	if ev.Castle != engine.NoCastle {
		ply.CastleRookMove = &CastleRookMove{From: ev.RookFrom, To: ev.RookTo}
	}

	g.state.Sound = SoundMove
	if ev.Capture {
		g.state.Sound = SoundCapture
	}
	if len(g.board.InCheck(ev.Piece.Color.Opponent())) > 0 {
		g.state.Sound = SoundCheck
		ply.Notation += "+"
	}

	history := g.state.MoveHistory
	switch {
	case ev.Piece.Color == engine.White:
		history = append(history, Move{WhitePly: ply})
	case len(history) == 0 || history[len(history)-1].SpartanPly != nil:
		history = append(history, Move{SpartanPly: ply})
	default:
		history[len(history)-1].SpartanPly = ply
	}
	g.state.MoveHistory = history
	g.state.LastMove = &SimpleMove{From: ev.From, To: ev.To}
}

func notation(ev engine.MoveApplied) string {
	if ev.Castle != engine.NoCastle {
		return ev.Castle.String()
	}
	var sb strings.Builder
	sb.WriteString(ev.Piece.Kind.Notation())
	if ev.Capture {
		if ev.Piece.Kind == engine.Pawn || ev.Piece.Kind == engine.Hoplite {
			sb.WriteString(ev.From.String()[:1])
		}
		sb.WriteString("x")
	}
	sb.WriteString(ev.To.String())
	return sb.String()
}

func (g *Game) clockFor(color engine.Color) *Clock {
	if color == engine.White {
		return g.whiteClock
	}
	return g.spartanClock
}

// refresh recomputes the derived parts of the state. Caller holds g.mu.
func (g *Game) refresh() {
	g.state.Board = newBoardState(g.board)
	g.state.ToMove = g.board.SideToMove()
	g.state.Check = g.board.InCheck(g.state.ToMove)
	g.state.Players.White.TimeLeft = g.whiteClock.Tenths()
	g.state.Players.Spartan.TimeLeft = g.spartanClock.Tenths()
	g.state.Players.White.Flagged = g.whiteClock.Flagged()
	g.state.Players.Spartan.Flagged = g.spartanClock.Flagged()
}

// RegisterConnection attaches client to the game and pushes the current
// state to everyone connected. Seated players may always connect; others only
// while a seat is open.
func (g *Game) RegisterConnection(client *Client) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	_, inGame := g.state.Players.colorOf(client.PlayerID)
	if !inGame && !g.canSpectate() {
		return ErrNotInGame
	}

	g.connections.mu.Lock()
	if existing, ok := g.connections.connections[client.PlayerID]; ok {
		select {
		case <-existing.Done():
		default:
			g.connections.mu.Unlock()
			return ErrAlreadyConnected
		}
	}
	g.connections.connections[client.PlayerID] = client
	g.connections.mu.Unlock()
	log.Printf("game %s: registered connection for player %s", g.ID, client.PlayerID)

	g.broadcastLocked()
	return nil
}

// UnregisterConnection detaches client, unless a newer client has replaced it.
func (g *Game) UnregisterConnection(client *Client) {
	g.connections.mu.Lock()
	defer g.connections.mu.Unlock()

	if g.connections.connections[client.PlayerID] == client {
		log.Printf("game %s: unregistering connection for player %s", g.ID, client.PlayerID)
		delete(g.connections.connections, client.PlayerID)
	}
}

// broadcastLocked queues the current state on every client. Caller holds
// g.mu, so clients receive states in move order.
func (g *Game) broadcastLocked() {
	msg, err := ws.NewMessage(ws.MessageTypeGameState, g.cloneState())
	if err != nil {
		log.Printf("game %s: failed to marshal state: %v", g.ID, err)
		return
	}

	g.connections.mu.Lock()
	defer g.connections.mu.Unlock()
	for playerID, client := range g.connections.connections {
		if !client.Send(msg) {
			log.Printf("game %s: dropping connection of player %s", g.ID, playerID)
			delete(g.connections.connections, playerID)
		}
	}
}
