package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/sjoshi/netflag/internal/config"
	"github.com/sjoshi/netflag/internal/logging"
	"github.com/sjoshi/netflag/internal/mirror"
	"github.com/sjoshi/netflag/internal/service"
)

func main() {
	var (
		batchPath  = flag.String("batch", "./log_input/batch_log.json", "Path to the seed (batch) event log")
		streamPath = flag.String("stream", "./log_input/stream_log.json", "Path to the live (stream) event log")
		outPath    = flag.String("out", "./log_output/flagged_purchases.json", "Path to write flagged purchases")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging).With("component", "flagd")

	detect := service.Config{
		Degree: cfg.Detect.Degree,
		Window: cfg.Detect.Window,
	}

	// The batch log may open with a {"D","T"} parameter line; it wins over
	// the environment because the controller's parameters are fixed for
	// the whole run.
	if params, ok, err := service.ReadParams(*batchPath); err != nil {
		logger.Error("failed to read batch log", "error", err, "path", *batchPath)
		os.Exit(1)
	} else if ok {
		detect.Degree = params.Degree
		detect.Window = params.Window
		logger.Info("using parameters from batch log", "degree", detect.Degree, "window", detect.Window)
	}

	if err := detect.Validate(); err != nil {
		logger.Error("invalid detection parameters", "error", err)
		os.Exit(1)
	}

	controller := service.NewController(detect, logger)

	if cfg.Mirror.URI != "" {
		publisher, closeMirror, err := buildMirror(context.Background(), logger, cfg.Mirror)
		if err != nil {
			logger.Error("failed to create mirror", "error", err)
			os.Exit(1)
		}
		defer closeMirror()
		controller.WithMirror(publisher)
	}

	replayer := service.NewReplayer(controller, logger)

	start := time.Now()
	seedStats, err := replayer.ReplayFile(*batchPath)
	if err != nil {
		logger.Error("seed replay failed", "error", err)
		os.Exit(1)
	}
	logger.Info("seed segment replayed",
		"events", seedStats.Events,
		"skipped", seedStats.Skipped,
		"duration", time.Since(start).String(),
	)

	controller.GoLive()

	start = time.Now()
	liveStats, err := replayer.ReplayFile(*streamPath)
	if err != nil {
		logger.Error("stream replay failed", "error", err)
		os.Exit(1)
	}
	logger.Info("stream segment replayed",
		"events", liveStats.Events,
		"skipped", liveStats.Skipped,
		"flagged", liveStats.Flagged,
		"duration", time.Since(start).String(),
	)

	if err := writeFlagFile(*outPath, controller); err != nil {
		logger.Error("failed to write flagged purchases", "error", err)
		os.Exit(1)
	}
	logger.Info("flagged purchases written", "path", *outPath, "count", len(controller.Flags()))
}

func writeFlagFile(path string, controller *service.Controller) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory %s: %w", dir, err)
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()

	return service.WriteFlags(file, controller.Flags())
}

func buildMirror(ctx context.Context, logger *slog.Logger, cfg config.MirrorConfig) (*mirror.Publisher, func(), error) {
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

	cleanup := func() {
		publisher.Close()
		if err := store.Close(context.Background()); err != nil {
			logger.Warn("closing mirror failed", "error", err)
		}
	}
	return publisher, cleanup, nil
}
