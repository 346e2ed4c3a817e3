package controller

import (
	"errors"
	"log"

	"github.com/benbeisheim/spartanchess-backend/internal/engine"
	"github.com/benbeisheim/spartanchess-backend/internal/model"
	"github.com/benbeisheim/spartanchess-backend/internal/service"
	"github.com/benbeisheim/spartanchess-backend/internal/store"
	"github.com/gofiber/fiber/v2"
)

type GameController struct {
	gameService *service.GameService
}

func NewGameController(gameService *service.GameService) *GameController {
	return &GameController{gameService: gameService}
}

// statusFor maps domain errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrGameNotFound), errors.Is(err, store.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, model.ErrNotInGame):
		return fiber.StatusForbidden
	case errors.Is(err, model.ErrNotYourTurn), errors.Is(err, model.ErrGameFull),
		errors.Is(err, model.ErrAlreadyQueued), errors.Is(err, model.ErrAlreadyConnected),
		errors.Is(err, service.ErrGameExists):
		return fiber.StatusConflict
	case errors.Is(err, engine.ErrIllegalMove), errors.Is(err, engine.ErrOutOfBounds),
		errors.Is(err, engine.ErrEmptySquare), errors.Is(err, store.ErrInvalidID):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, service.ErrArchiveMissing):
		return fiber.StatusServiceUnavailable
	}
	return fiber.StatusInternalServerError
}

func fail(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status == fiber.StatusInternalServerError {
		log.Printf("controller: %s %s: %v", c.Method(), c.Path(), err)
	}
	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func playerID(c *fiber.Ctx) string {
	id, _ := c.Locals("playerID").(string)
	return id
}

func (gc *GameController) CreateGame(c *fiber.Ctx) error {
	gameID, err := gc.gameService.CreateGame()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Game created",
		"game_id": gameID,
	})
}

func (gc *GameController) JoinGame(c *fiber.Ctx) error {
	color, err := gc.gameService.JoinGame(c.Params("gameId"), playerID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Game joined",
		"color":   color,
	})
}

func (gc *GameController) GetGameState(c *fiber.Ctx) error {
	gameState, err := gc.gameService.GetGameState(c.Params("gameId"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(gameState)
}

// LegalMoves answers GET /:gameId/moves/:square with the legality mask of the
// piece on square, given in algebraic form.
func (gc *GameController) LegalMoves(c *fiber.Ctx) error {
	square, err := engine.ParseCoord(c.Params("square"))
	if err != nil {
		return fail(c, err)
	}
	mask, err := gc.gameService.LegalMoves(c.Params("gameId"), square)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"square":       square,
		"mask":         mask,
		"destinations": mask.Squares(),
	})
}

func (gc *GameController) MakeMove(c *fiber.Ctx) error {
	var move model.WSMove
	if err := c.BodyParser(&move); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid move body",
		})
	}
	res, err := gc.gameService.HandleMove(c.Params("gameId"), playerID(c), move)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(res)
}

func (gc *GameController) JoinMatchmaking(c *fiber.Ctx) error {
	if err := gc.gameService.JoinMatchmaking(playerID(c)); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"status": "queued",
	})
}

func (gc *GameController) LeaveMatchmaking(c *fiber.Ctx) error {
	if !gc.gameService.LeaveMatchmaking(playerID(c)) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "not queued",
		})
	}
	return c.JSON(fiber.Map{
		"status": "left",
	})
}

func (gc *GameController) MatchmakingStatus(c *fiber.Ctx) error {
	id := playerID(c)
	event, ok := gc.gameService.MatchFor(id)
	if !ok {
		status := "idle"
		if gc.gameService.IsQueued(id) {
			status = "queued"
		}
		return c.JSON(fiber.Map{
			"status": status,
		})
	}
	return c.JSON(fiber.Map{
		"status": "matched",
		"match":  event,
	})
}

func (gc *GameController) SaveGame(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	size, err := gc.gameService.SaveGame(gameID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"archive_id": gameID,
		"size":       size.String(),
	})
}

func (gc *GameController) ListArchive(c *fiber.Ctx) error {
	ids, err := gc.gameService.ListArchive()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"archives": ids,
	})
}

func (gc *GameController) LoadGame(c *fiber.Ctx) error {
	gameID, err := gc.gameService.LoadGame(c.Params("archiveId"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Game restored",
		"game_id": gameID,
	})
}
