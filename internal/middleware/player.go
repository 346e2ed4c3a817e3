package middleware

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

// EnsurePlayerID resolves the caller's player ID from the X-Player-ID header
// or the playerId query parameter and stores a copy in c.Locals("playerID").
func EnsurePlayerID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Locals("playerID") != nil {
			return c.Next()
		}

		playerID := c.Get("X-Player-ID")
		if playerID == "" {
			// Browsers cannot set headers on a websocket handshake.
			playerID = c.Query("playerId")
		}

		if playerID == "" {
			log.Printf("middleware: %s %s without player id", c.Method(), c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Player ID is required. Please ensure client is properly initialized.",
			})
		}

		// Header and query values alias fasthttp's reusable request buffer.
		c.Locals("playerID", utils.CopyString(playerID))
		return c.Next()
	}
}
