package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/gofiber/websocket/v2"
)

// WebSocketUpgrade rejects anything that is not a websocket handshake. When
// requireGame is set the route's :gameId must be present too. The IDs are
// copied into locals that survive the upgrade.
func WebSocketUpgrade(requireGame bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}

		gameID := utils.CopyString(c.Params("gameId"))
		if requireGame && gameID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "game ID is required",
			})
		}

		playerID := c.Locals("playerID")
		if playerID == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "player ID is required",
			})
		}

		c.Locals("wsGameID", gameID)
		c.Locals("wsPlayerID", playerID)
		return c.Next()
	}
}
