package service

import (
	"fmt"

	"github.com/benbeisheim/spartanchess-backend/internal/engine"
	"github.com/benbeisheim/spartanchess-backend/internal/model"
	"github.com/google/uuid"
	"github.com/inhies/go-bytesize"
)

// GameService is the facade controllers talk to.
type GameService struct {
	gameManager *GameManager
}

func NewGameService(gameManager *GameManager) *GameService {
	return &GameService{
		gameManager: gameManager,
	}
}

func (gs *GameService) JoinGame(gameID string, playerID string) (engine.Color, error) {
	return gs.gameManager.AddPlayerToGame(gameID, playerID)
}

func (gs *GameService) CreateGame() (string, error) {
	gameID := uuid.New().String()

	if err := gs.gameManager.CreateGame(gameID); err != nil {
		return "", fmt.Errorf("failed to create game: %w", err)
	}

	return gameID, nil
}

func (gs *GameService) JoinMatchmaking(playerID string) error {
	return gs.gameManager.JoinMatchmaking(playerID)
}

func (gs *GameService) LeaveMatchmaking(playerID string) bool {
	return gs.gameManager.LeaveMatchmaking(playerID)
}

func (gs *GameService) IsQueued(playerID string) bool {
	return gs.gameManager.IsQueued(playerID)
}

func (gs *GameService) MatchFor(playerID string) (model.MatchFoundEvent, bool) {
	return gs.gameManager.MatchFor(playerID)
}

func (gs *GameService) GetGameState(gameID string) (model.GameState, error) {
	return gs.gameManager.GetGameState(gameID)
}

func (gs *GameService) LegalMoves(gameID string, square engine.Coord) (engine.Mask, error) {
	return gs.gameManager.LegalMoves(gameID, square)
}

func (gs *GameService) HandleMove(gameID string, playerID string, move model.WSMove) (engine.MoveResult, error) {
	return gs.gameManager.MakeMove(gameID, playerID, move)
}

func (gs *GameService) SaveGame(gameID string) (bytesize.ByteSize, error) {
	return gs.gameManager.SaveGame(gameID)
}

func (gs *GameService) LoadGame(archiveID string) (string, error) {
	return gs.gameManager.LoadGame(archiveID)
}

func (gs *GameService) ListArchive() ([]string, error) {
	return gs.gameManager.ListArchive()
}

func (gs *GameService) RegisterConnection(gameID string, client *model.Client) error {
	return gs.gameManager.RegisterConnection(gameID, client)
}

func (gs *GameService) UnregisterConnection(gameID string, client *model.Client) {
	gs.gameManager.UnregisterConnection(gameID, client)
}

func (gs *GameService) RegisterMatchmakingChannel(playerID string, ch chan string) error {
	return gs.gameManager.RegisterMatchmakingChannel(playerID, ch)
}

func (gs *GameService) UnregisterMatchmakingChannel(playerID string) {
	gs.gameManager.UnregisterMatchmakingChannel(playerID)
}
