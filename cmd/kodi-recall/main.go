package main

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/joho/godotenv"
	ws "github.com/saveblush/gofiber3-contrib/websocket"

	"kodi-recall/internal/config"
	admin "kodi-recall/internal/handlers/admin"
	health "kodi-recall/internal/handlers/health"
	images "kodi-recall/internal/handlers/images"
	now "kodi-recall/internal/handlers/now"
	recents "kodi-recall/internal/handlers/recents"
	"kodi-recall/internal/kodi"
	"kodi-recall/internal/logging"
	"kodi-recall/internal/middleware"
	"kodi-recall/internal/playback"
	"kodi-recall/internal/store"
	"kodi-recall/internal/tracker"
)

func main() {
	_ = godotenv.Load()
	logging.Configure(logging.Config{})
	log := logging.WithComponent("main")

	// ---- Config & Clients ----
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("configuration failed")
	}
	client := kodi.New(cfg.KodiHTTPBase(), cfg.KodiUsername, cfg.KodiPassword, cfg.KodiTimeout)
	provider := kodi.NewProvider(client)

	// ---- Durable playback list ----
	list := store.New(cfg.StorePath)
	if err := list.LoadOrInit(); err != nil {
		log.Fatal().Err(err).Str("file", cfg.StorePath).Msg("store unusable")
	}

	// ---- Tracker & host notifications ----
	trk := tracker.New(playback.NewEnricher(provider, provider), provider, list, tracker.Options{
		MaxEntries: cfg.MaxEntries,
		Timeout:    cfg.KodiTimeout,
		NotifyHost: cfg.NotifyKodi,
	})

	bcast := recents.NewBroadcaster(list)
	defer bcast.Stop()
	trk.OnChange = bcast.Push

	listener := kodi.NewListener(cfg.KodiWSURL())
	listener.Handler = trk.HandleNotification
	listener.Start(context.Background())
	defer listener.Stop()

	// Periodic progress refresh while something plays.
	go func() {
		ticker := time.NewTicker(cfg.ProgressInterval)
		defer ticker.Stop()
		for {
			<-ticker.C
			trk.Tick()
		}
	}()

	if cfg.AdminToken == "" {
		log.Warn().Msg("ADMIN_TOKEN is not set; admin endpoints are unprotected")
	}

	// ---- Fiber v3 App ----
	app := fiber.New(fiber.Config{
		EnableIPValidation: true,
		ProxyHeader:        fiber.HeaderXForwardedFor,
	})
	app.Use(recover.New())
	app.Use(logger.New())

	// ---- Health ----
	app.Get("/health", health.Health(client, listener, list, cfg.KodiTimeout))

	// ---- Recents API ----
	app.Get("/api/recents", recents.List(list))
	app.Get("/api/recents/entries", recents.Entries(list))
	app.Get("/api/recents/find", recents.Find(list))
	app.Delete("/api/recents/entry", recents.Delete(list, bcast.Push))
	app.Post("/api/switchback", now.Switchback(trk, cfg.KodiTimeout))
	app.Get("/api/now", now.Now(trk, provider, cfg.KodiTimeout))

	// ---- Art proxy ----
	app.Get("/img", images.Art(images.NewOpts(cfg)))

	// ---- Live list updates ----
	app.Get("/ws/recents", func(c fiber.Ctx) error {
		if ws.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}, recents.WS(bcast))

	// ---- Admin Routes ----
	adm := app.Group("/admin", middleware.AdminAuth(cfg.AdminToken))
	adm.Post("/reset", admin.Reset(list, bcast.Push))
	adm.Post("/reload", admin.Reload(list, bcast.Push))
	adm.Get("/version", admin.Version())

	log.Info().Str("addr", cfg.ListenAddr).Msg("listening")
	if err := app.Listen(cfg.ListenAddr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
