package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/samirrijal/safetyfan/internal/adapters/http"
	natsadapter "github.com/samirrijal/safetyfan/internal/adapters/nats"
	"github.com/samirrijal/safetyfan/internal/adapters/openmeteo"
	"github.com/samirrijal/safetyfan/internal/adapters/postgres"
	"github.com/samirrijal/safetyfan/internal/adapters/valkey"
	"github.com/samirrijal/safetyfan/internal/core/fan"
	"github.com/samirrijal/safetyfan/internal/core/met"
	"github.com/samirrijal/safetyfan/internal/core/ports"
	"github.com/samirrijal/safetyfan/internal/core/usecases"
	"github.com/samirrijal/safetyfan/internal/pkg/config"
	"github.com/samirrijal/safetyfan/internal/pkg/logging"
	"github.com/samirrijal/safetyfan/internal/pkg/schema"
	"github.com/samirrijal/safetyfan/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("safetyfan-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	policy, err := fan.PolicyByName(cfg.Fan.Resolution)
	if err != nil {
		log.Fatalf("fan resolution: %v", err)
	}

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Cache and broker are optional; keep the interfaces nil when they are down.
	var cache ports.CacheService
	vk, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable", "error", err)
	} else {
		defer vk.Close()
		cache = vk
	}

	var publisher ports.EventPublisher
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable", "error", err)
	} else {
		defer pub.Close()
		publisher = pub
	}

	// Raw NATS connection for WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	} else {
		defer natsConn.Close()
	}

	fans := usecases.NewFanService(postgres.NewFanRepo(db), cache, publisher, usecases.FanOptions{
		Model:    met.Model{RangeFactor: cfg.MET.RangeFactor, BearingFactor: cfg.MET.BearingFactor},
		Policy:   policy,
		CacheTTL: cfg.Fan.CacheTTL,
	})
	weather := usecases.NewWeatherService(
		openmeteo.New(cfg.Weather.BaseURL, cfg.Weather.TimeoutDuration()),
		cache,
		cfg.Weather.CacheTTL,
	)

	deps := &http.Dependencies{
		Fans:      fans,
		Weather:   weather,
		Validator: schema.MustFanRequest(),
		NATS:      natsConn,
		DB:        db,
		Cache:     vk,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    256 * 1024,
		AppName:      "SafetyFan API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173",
		AllowMethods:     "GET,POST,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, If-None-Match",
		ExposeHeaders:    "Location, Link, ETag, Content-Disposition",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "resolution", policy.Name())
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
