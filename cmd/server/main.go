package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sjoshi/netflag/internal/config"
	"github.com/sjoshi/netflag/internal/logging"
	"github.com/sjoshi/netflag/internal/mirror"
	"github.com/sjoshi/netflag/internal/server"
	"github.com/sjoshi/netflag/internal/service"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging)

	detect := service.Config{
		Degree: cfg.Detect.Degree,
		Window: cfg.Detect.Window,
	}
	if err := detect.Validate(); err != nil {
		logger.Error("invalid detection parameters", "error", err)
		os.Exit(1)
	}

	controller := service.NewController(detect, logger)

	var mirrorStore *mirror.Store
	if cfg.Mirror.URI != "" {
		store, publisher, err := buildMirror(ctx, logger, cfg.Mirror)
		if err != nil {
			logger.Error("failed to create mirror", "error", err)
			os.Exit(1)
		}
		mirrorStore = store
		controller.WithMirror(publisher)
		defer func() {
			publisher.Close()
			if err := store.Close(context.Background()); err != nil {
				logger.Warn("closing mirror failed", "error", err)
			}
		}()
	}

	apiHandlers := server.NewAPIHandlers(logger, controller)

	router := server.NewRouter(logger, server.RouterDependencies{
		Health:           server.MirrorHealthService{Store: mirrorStore},
		API:              apiHandlers,
		AllowedOrigins:   parseAllowedOrigins(cfg.HTTP.AllowedOriginsCSV),
		AllowCredentials: true,
	})

	srv := server.New(logger, cfg.HTTP, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("server stopped unexpectedly", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

func buildMirror(ctx context.Context, logger *slog.Logger, cfg config.MirrorConfig) (*mirror.Store, *mirror.Publisher, error) {
	client, err := mirror.NewNeo4jClient(ctx, mirror.Options{
		URI:            cfg.URI,
		Database:       cfg.Database,
		Username:       cfg.Username,
		Password:       cfg.Password,
		MaxConnections: cfg.MaxConnections,
	})
	if err != nil {
		return nil, nil, err
	}

	store := mirror.NewStore(client)
	publisher := mirror.NewPublisher(store, logger, cfg.Workers, cfg.QueueDepth)
	return store, publisher, nil
}

func parseAllowedOrigins(csv string) []string {
	if csv == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	var origins []string
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin == "" {
			continue
		}
		origins = append(origins, origin)
	}
	return origins
}
