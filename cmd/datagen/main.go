package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/sjoshi/netflag/internal/generator"
)

func main() {
	cfg := generator.DefaultConfig()
	var (
		users          = flag.Int("users", cfg.NumUsers, "number of users in the network")
		batchEvents    = flag.Int("batch-events", cfg.NumBatchEvents, "number of events in the seed segment")
		streamEvents   = flag.Int("stream-events", cfg.NumStreamEvents, "number of events in the live segment")
		befriendChance = flag.Float64("befriend-chance", cfg.BefriendChance, "probability an event is a befriend")
		unfriendChance = flag.Float64("unfriend-chance", cfg.UnfriendChance, "probability an event is an unfriend")
		anomalyChance  = flag.Float64("anomaly-chance", cfg.AnomalyChance, "probability a purchase is an injected outlier")
		degree         = flag.Int("degree", cfg.Degree, "D written to the batch log parameter line")
		window         = flag.Int("window", cfg.Window, "T written to the batch log parameter line")
		seed           = flag.Int64("seed", cfg.Seed, "random seed for deterministic generation")
		outputDir      = flag.String("output-dir", "log_input", "directory to write batch_log.json and stream_log.json")
	)
	flag.Parse()

	genCfg := generator.Config{
		NumUsers:        *users,
		NumBatchEvents:  *batchEvents,
		NumStreamEvents: *streamEvents,
		BefriendChance:  clampProbability(*befriendChance),
		UnfriendChance:  clampProbability(*unfriendChance),
		AnomalyChance:   clampProbability(*anomalyChance),
		Degree:          *degree,
		Window:          *window,
		Seed:            *seed,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	gen := generator.New(genCfg)
	dataset, err := gen.Generate(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generation failed: %v\n", err)
		os.Exit(1)
	}

	if err := generator.WriteLogs(dataset, *outputDir); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write logs: %v\n", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stdout, "Generated %d seed and %d stream events into %s\n", len(dataset.Batch), len(dataset.Stream), *outputDir)
}

func clampProbability(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}
