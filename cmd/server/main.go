package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"impostor/internal/app"
	"impostor/internal/config"
	"impostor/internal/content"
	"impostor/internal/store"
	"impostor/internal/telemetry"
	httpTransport "impostor/internal/transport/http"
	"impostor/internal/transport/ws"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	// Set up logger
	var logger *slog.Logger
	logOpts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Logging.Level),
	}

	if cfg.Logging.Format == "json" {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, logOpts))
	} else {
		logger = slog.New(slog.NewTextHandler(os.Stdout, logOpts))
	}

	slog.SetDefault(logger)

	logger.Info("starting impostor game server",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
		"store", cfg.Store.Driver,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry.Endpoint, cfg.Telemetry.ServiceName)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			logger.Warn("tracer shutdown failed", "error", err)
		}
	}()

	hub := ws.NewHub(logger)
	defer hub.Close()

	g, ctx := errgroup.WithContext(ctx)

	var rooms store.RoomStore
	switch cfg.Store.Driver {
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Store.RedisAddr,
			Password: cfg.Store.RedisPassword,
			DB:       cfg.Store.RedisDB,
		})
		defer rdb.Close()

		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis ping %s: %w", cfg.Store.RedisAddr, err)
		}
		rooms = store.NewRedisStore(rdb)

		relay := ws.NewRedisRelay(rdb, logger)
		hub.UseRelay(relay)
		g.Go(func() error {
			return relay.Run(ctx, hub.Deliver)
		})
	default:
		memory := store.NewMemoryStore()
		if err := memory.StartJanitor(cfg.Store.SweepSchedule, logger); err != nil {
			return fmt.Errorf("memory store janitor: %w", err)
		}
		defer memory.Stop()
		rooms = memory
	}

	gameOpts := app.OptionsFromConfig(cfg.Game)
	gameOpts.Publish = hub.Commit
	coord := app.NewCoordinator(rooms, content.Default(), logger, gameOpts)
	server := httpTransport.NewServer(cfg, coord, hub, logger)

	g.Go(func() error {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down server...")

		// Graceful shutdown with timeout
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server forced to shutdown", "error", err)
		}
		return nil
	})

	return g.Wait()
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
