package controller

import (
	"log"

	"github.com/benbeisheim/spartanchess-backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// Register mounts the REST API under /api and the sockets under /ws.
func Register(app *fiber.App, gc *GameController, wsc *WebSocketController, origins []string) {
	wsConfig := websocket.Config{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		Origins:         origins,
	}

	wsRoutes := app.Group("/ws", middleware.EnsurePlayerID())
	wsRoutes.Get("/matchmaking", middleware.WebSocketUpgrade(false), websocket.New(wsc.HandleMatchmaking, wsConfig))
	wsRoutes.Get("/game/:gameId", middleware.WebSocketUpgrade(true), websocket.New(func(c *websocket.Conn) {
		log.Printf("ws: connection established for game %s", c.Params("gameId"))
		wsc.HandleConnection(c)
	}, wsConfig))

	api := app.Group("/api", middleware.EnsurePlayerID())

	gameRoutes := api.Group("/game")
	gameRoutes.Post("/matchmaking/join", gc.JoinMatchmaking)
	gameRoutes.Post("/matchmaking/leave", gc.LeaveMatchmaking)
	gameRoutes.Get("/matchmaking/status", gc.MatchmakingStatus)
	gameRoutes.Post("/create", gc.CreateGame)
	gameRoutes.Post("/join/:gameId", gc.JoinGame)
	gameRoutes.Get("/:gameId", gc.GetGameState)
	gameRoutes.Get("/:gameId/moves/:square", gc.LegalMoves)
	gameRoutes.Post("/:gameId/move", gc.MakeMove)
	gameRoutes.Post("/:gameId/save", gc.SaveGame)

	archiveRoutes := api.Group("/archive")
	archiveRoutes.Get("/", gc.ListArchive)
	archiveRoutes.Post("/:archiveId/load", gc.LoadGame)
}
