package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/benbeisheim/spartanchess-backend/internal/engine"
	"github.com/benbeisheim/spartanchess-backend/internal/model"
	"github.com/benbeisheim/spartanchess-backend/internal/store"
	"github.com/google/uuid"
	"github.com/inhies/go-bytesize"
)

var (
	ErrGameNotFound   = errors.New("game not found")
	ErrGameExists     = errors.New("game already exists")
	ErrArchiveMissing = errors.New("archive not configured")
)

// GameManager owns every live game, the matchmaking queue and the archive.
type GameManager struct {
	games            map[string]*model.Game
	queue            *model.Queue
	matchingChannels map[string]chan string
	matches          map[string]model.MatchFoundEvent
	archive          *store.Store
	clock            time.Duration
	mu               sync.RWMutex
}

// NewGameManager creates a manager whose games use clock per side. archive
// may be nil, in which case saving and loading are unavailable.
func NewGameManager(clock time.Duration, archive *store.Store) *GameManager {
	return &GameManager{
		games:            make(map[string]*model.Game),
		queue:            model.NewQueue(),
		matchingChannels: make(map[string]chan string),
		matches:          make(map[string]model.MatchFoundEvent),
		archive:          archive,
		clock:            clock,
	}
}

// Run pairs queued players every interval until ctx is done.
func (gm *GameManager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for gm.matchNextPair() {
			}
		}
	}
}

// matchNextPair seats the two longest-waiting players in a new game and
// notifies them. It reports whether a pair was matched.
func (gm *GameManager) matchNextPair() bool {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	player1, player2, err := gm.queue.GetNextPair()
	if err != nil {
		return false
	}

	gameID := uuid.New().String()
	game := model.NewGame(gameID, gm.clock)
	p1Color, err := game.AddPlayer(player1.ID)
	if err != nil {
		log.Printf("matchmaking: adding %s to %s: %v", player1.ID, gameID, err)
		return true
	}
	p2Color, err := game.AddPlayer(player2.ID)
	if err != nil {
		log.Printf("matchmaking: adding %s to %s: %v", player2.ID, gameID, err)
		return true
	}
	gm.games[gameID] = game
	log.Printf("matchmaking: %s (%s, waited %s) vs %s (%s, waited %s) in game %s",
		player1.ID, p1Color, time.Since(player1.JoinedAt).Round(time.Millisecond),
		player2.ID, p2Color, time.Since(player2.JoinedAt).Round(time.Millisecond), gameID)

	gm.notifyMatch(player1.ID, model.MatchFoundEvent{GameID: gameID, Color: p1Color})
	gm.notifyMatch(player2.ID, model.MatchFoundEvent{GameID: gameID, Color: p2Color})
	return true
}

// notifyMatch pushes the match to a waiting channel, if one is registered.
// Otherwise it is kept until the player polls or a listener registers. A
// match handed to a channel is forgotten. Caller holds gm.mu.
func (gm *GameManager) notifyMatch(playerID string, event model.MatchFoundEvent) {
	gm.matches[playerID] = event
	ch, ok := gm.matchingChannels[playerID]
	if !ok {
		return
	}
	select {
	case ch <- mustJSON(event):
		delete(gm.matches, playerID)
	default:
		log.Printf("matchmaking: player %s not listening", playerID)
	}
	delete(gm.matchingChannels, playerID)
	close(ch)
}

// RegisterMatchmakingChannel subscribes ch to playerID's next match. ch
// should be buffered; the manager never blocks on it and closes it after
// delivery.
func (gm *GameManager) RegisterMatchmakingChannel(playerID string, ch chan string) error {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if existingCh, exists := gm.matchingChannels[playerID]; exists {
		delete(gm.matchingChannels, playerID)
		close(existingCh)
	}
	gm.matchingChannels[playerID] = ch
	// A match made before the listener arrived is delivered straight away.
	if event, ok := gm.matches[playerID]; ok {
		gm.notifyMatch(playerID, event)
	}
	return nil
}

// UnregisterMatchmakingChannel forgets the channel without closing it; the
// creator owns it.
func (gm *GameManager) UnregisterMatchmakingChannel(playerID string) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	delete(gm.matchingChannels, playerID)
}

func mustJSON(v interface{}) string {
	bytes, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(bytes)
}

func (gm *GameManager) CreateGame(gameID string) error {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if _, exists := gm.games[gameID]; exists {
		return ErrGameExists
	}

	gm.games[gameID] = model.NewGame(gameID, gm.clock)
	return nil
}

func (gm *GameManager) GetGame(gameID string) (*model.Game, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	game, exists := gm.games[gameID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	return game, nil
}

func (gm *GameManager) AddPlayerToGame(gameID string, playerID string) (engine.Color, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return engine.White, err
	}
	return game.AddPlayer(playerID)
}

func (gm *GameManager) JoinMatchmaking(playerID string) error {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	delete(gm.matches, playerID)
	return gm.queue.AddPlayer(model.Player{ID: playerID})
}

func (gm *GameManager) LeaveMatchmaking(playerID string) bool {
	return gm.queue.RemovePlayer(playerID)
}

func (gm *GameManager) IsQueued(playerID string) bool {
	return gm.queue.Contains(playerID)
}

// MatchFor returns the most recent match found for playerID.
func (gm *GameManager) MatchFor(playerID string) (model.MatchFoundEvent, bool) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	event, ok := gm.matches[playerID]
	return event, ok
}

func (gm *GameManager) GetGameState(gameID string) (model.GameState, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return model.GameState{}, err
	}
	return game.GetState(), nil
}

// MakeMove goes through the game's own lock, so moves in different games do
// not contend.
func (gm *GameManager) MakeMove(gameID string, playerID string, move model.WSMove) (engine.MoveResult, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return engine.MoveResult{}, err
	}
	return game.MakeMove(playerID, move)
}

func (gm *GameManager) LegalMoves(gameID string, square engine.Coord) (engine.Mask, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return engine.Mask{}, err
	}
	return game.LegalMoves(square)
}

// SaveGame archives the current position of gameID.
func (gm *GameManager) SaveGame(gameID string) (bytesize.ByteSize, error) {
	if gm.archive == nil {
		return 0, ErrArchiveMissing
	}
	game, err := gm.GetGame(gameID)
	if err != nil {
		return 0, err
	}
	snap, history, clocks := game.Snapshot()
	return gm.archive.Save(store.Record{
		ID:       gameID,
		SavedAt:  time.Now().UTC(),
		Snapshot: snap,
		History:  history,
		Clocks:   clocks,
	})
}

// LoadGame resumes an archived game under a fresh ID.
func (gm *GameManager) LoadGame(archiveID string) (string, error) {
	if gm.archive == nil {
		return "", ErrArchiveMissing
	}
	rec, err := gm.archive.Load(archiveID)
	if err != nil {
		return "", err
	}
	clocks := rec.Clocks
	if clocks == (model.ClockTimes{}) {
		clocks = model.ClockTimes{White: gm.clock, Spartan: gm.clock}
	}
	gameID := uuid.New().String()
	game, err := model.RestoreGame(gameID, rec.Snapshot, rec.History, clocks)
	if err != nil {
		return "", err
	}

	gm.mu.Lock()
	gm.games[gameID] = game
	gm.mu.Unlock()
	log.Printf("archive: resumed %s as game %s", archiveID, gameID)
	return gameID, nil
}

func (gm *GameManager) ListArchive() ([]string, error) {
	if gm.archive == nil {
		return nil, ErrArchiveMissing
	}
	return gm.archive.List()
}

func (gm *GameManager) RegisterConnection(gameID string, client *model.Client) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.RegisterConnection(client)
}

func (gm *GameManager) UnregisterConnection(gameID string, client *model.Client) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return
	}
	game.UnregisterConnection(client)
}
