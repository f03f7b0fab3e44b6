// Command dockertagd runs the optional progress broadcast server (C12): a
// small fiber.App that streams every event published on its progress.Bus to
// websocket clients. The bus lives in this process only, and nothing here
// publishes to it; the dockertag CLI neither starts this server nor sends it
// events.
package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/tagwright/dockertag/internal/config"
	"github.com/tagwright/dockertag/internal/logging"
	"github.com/tagwright/dockertag/internal/progress"
)

func main() {
	cfg, err := config.Load(config.DefaultPath())
	if err != nil {
		panic(err)
	}
	log := logging.New(false, false, false)

	addr := cfg.Progress.ListenAddr
	if addr == "" {
		addr = ":8090"
	}

	bus := progress.New()
	app := newApp(bus, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		log.Info().Msg("shutting down progress server")
		_ = app.ShutdownWithTimeout(0)
	}()

	log.Info().Str("addr", addr).Msg("progress server listening")
	if err := app.Listen(addr); err != nil {
		log.Error().Err(err).Msg("progress server exited")
	}
}

func newApp(bus *progress.Bus, log zerolog.Logger) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	app.Use("/ws/progress", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/progress", websocket.New(func(conn *websocket.Conn) {
		events, unsubscribe := bus.Subscribe()
		defer unsubscribe()

		for event := range events {
			data, err := json.Marshal(event)
			if err != nil {
				continue
			}
			if err := conn.WriteMessage(fiber.TextMessage, data); err != nil {
				log.Debug().Err(err).Msg("progress websocket client disconnected")
				return
			}
		}
	}))

	return app
}
