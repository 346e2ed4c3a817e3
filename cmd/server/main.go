package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/benbeisheim/spartanchess-backend/internal/config"
	"github.com/benbeisheim/spartanchess-backend/internal/controller"
	"github.com/benbeisheim/spartanchess-backend/internal/service"
	"github.com/benbeisheim/spartanchess-backend/internal/store"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/pkg/profile"
)

func main() {
	cfg, err := config.FromOS()
	if err != nil {
		log.Fatal(err)
	}

	switch cfg.Profile {
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(cfg.ProfileDir), profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath(cfg.ProfileDir), profile.NoShutdownHook).Stop()
	}

	archive, err := openArchive(cfg)
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gameManager := service.NewGameManager(cfg.Clock, archive)
	go gameManager.Run(ctx, cfg.MatchInterval)
	gameService := service.NewGameService(gameManager)

	gameController := controller.NewGameController(gameService)
	wsController := controller.NewWebSocketController(gameService)

	app := fiber.New(fiber.Config{
		Immutable: true,
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigin,
		AllowHeaders:     "Origin, Content-Type, Accept, X-Player-ID",
		AllowMethods:     "GET, POST, OPTIONS",
		AllowCredentials: true,
	}))
	controller.Register(app, gameController, wsController, []string{cfg.AllowedOrigin})

	go func() {
		<-ctx.Done()
		log.Printf("server: shutting down")
		if err := app.Shutdown(); err != nil {
			log.Printf("server: shutdown: %v", err)
		}
	}()

	log.Printf("server: listening on %s", cfg.Addr)
	if err := app.Listen(cfg.Addr); err != nil {
		log.Printf("server: %v", err)
	}
}

func openArchive(cfg config.Config) (*store.Store, error) {
	if cfg.ArchiveDir == "" {
		log.Printf("server: archive disabled")
		return nil, nil
	}
	codec, err := store.CodecByName(cfg.ArchiveCodec)
	if err != nil {
		return nil, err
	}
	return store.New(cfg.ArchiveDir, codec)
}
