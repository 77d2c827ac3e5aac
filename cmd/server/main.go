package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ttt-arcade/tictactoe-server/internal/api"
	"github.com/ttt-arcade/tictactoe-server/internal/factory"
	redisstorage "github.com/ttt-arcade/tictactoe-server/internal/storage/redis"
	"github.com/ttt-arcade/tictactoe-server/internal/ws"
)

func main() {
	cfg := &config{}
	if err := newCmd(cfg).Execute(); err != nil {
		slog.Error("fatal", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config) error {
	level := slog.LevelInfo
	if cfg.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	factoryCfg := factory.Config{
		Logger:       logger,
		StorageType:  cfg.storageType,
		ResultsURL:   cfg.resultsURL,
		QueueTimeout: cfg.queueTimeout,
		Coordinator: ws.CoordinatorConfig{
			RetireGrace:        cfg.retireGrace,
			SessionIdleTimeout: cfg.sessionIdleTimeout,
		},
	}

	if cfg.storageType == factory.StorageTypeRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.redisURL
		factoryCfg.RedisConfig = &redisCfg
	}

	app, err := factory.New(factoryCfg)
	if err != nil {
		return err
	}

	router := api.NewRouter(api.RouterConfig{
		Logger:      logger,
		Hub:         app.Hub,
		Coordinator: app.Coordinator,
	})

	serverCfg := api.DefaultServerConfig()
	serverCfg.Host = cfg.bind
	serverCfg.Port = cfg.port
	server := api.NewServer(router, serverCfg, logger)

	sweepCtx, stopSweeper := context.WithCancel(ctx)
	defer stopSweeper()
	app.Coordinator.StartSweeper(sweepCtx, ws.DefaultSweepInterval)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		logger.Info("received signal, shutting down", slog.String("signal", sig.String()))
	}

	if err := server.Shutdown(context.Background()); err != nil {
		return err
	}

	return nil
}
