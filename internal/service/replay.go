package service

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/sjoshi/netflag/internal/domain"
)

// maxLineBytes bounds a single log line; event records are small but seed
// files are machine-generated and occasionally padded.
const maxLineBytes = 1 << 20

// Params is the leading configuration record a seed log may carry, in the
// form {"D": "3", "T": "50"}.
type Params struct {
	Degree int
	Window int
}

// ReadParams inspects the first line of the file at path and returns the
// embedded parameters if that line is a configuration record. The file is
// read independently of replay, because the controller must be constructed
// with its final parameters before any event is processed.
func ReadParams(path string) (Params, bool, error) {
	file, err := os.Open(path)
	if err != nil {
		return Params{}, false, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	if !scanner.Scan() {
		return Params{}, false, scanner.Err()
	}

	var raw map[string]any
	if err := json.Unmarshal(scanner.Bytes(), &raw); err != nil {
		return Params{}, false, nil
	}
	params, ok := parseParams(raw)
	return params, ok, nil
}

func parseParams(raw map[string]any) (Params, bool) {
	degree, okD := intField(raw, "D")
	window, okT := intField(raw, "T")
	if !okD || !okT || degree <= 0 || window <= 0 {
		return Params{}, false
	}
	return Params{Degree: degree, Window: window}, true
}

func intField(raw map[string]any, key string) (int, bool) {
	value, ok := raw[key]
	if !ok {
		return 0, false
	}
	switch v := value.(type) {
	case string:
		n, err := strconv.Atoi(v)
		return n, err == nil
	case float64:
		return int(v), v == float64(int(v))
	default:
		return 0, false
	}
}

// ReplayStats summarizes one replay pass.
type ReplayStats struct {
	Lines   int
	Events  int
	Skipped int
	Flagged int
}

// Replayer feeds JSON-lines event logs into a controller, one line at a
// time, in order. Malformed lines and invalid events are logged and
// skipped; nothing aborts a replay short of a read error.
type Replayer struct {
	controller *Controller
	logger     *slog.Logger
}

// NewReplayer constructs a Replayer. A nil logger falls back to
// slog.Default().
func NewReplayer(controller *Controller, logger *slog.Logger) *Replayer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Replayer{controller: controller, logger: logger}
}

// ReplayFile replays the log at path.
func (r *Replayer) ReplayFile(path string) (ReplayStats, error) {
	file, err := os.Open(path)
	if err != nil {
		return ReplayStats{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	stats, err := r.Replay(file)
	if err != nil {
		return stats, fmt.Errorf("replay %s: %w", path, err)
	}
	return stats, nil
}

// Replay consumes one event per line until EOF. Configuration records are
// ignored here: parameters are fixed at controller construction, so a
// mid-stream {"D","T"} line is counted as skipped.
func (r *Replayer) Replay(reader io.Reader) (ReplayStats, error) {
	var stats ReplayStats

	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		stats.Lines++

		var raw map[string]any
		if err := json.Unmarshal(line, &raw); err != nil {
			stats.Skipped++
			r.logger.Warn("skipping unparsable line", "line", stats.Lines, "error", err)
			continue
		}

		if _, ok := parseParams(raw); ok {
			stats.Skipped++
			continue
		}

		event, err := domain.ParseEvent(raw)
		if err != nil {
			stats.Skipped++
			r.logger.Warn("skipping invalid event", "line", stats.Lines, "error", err)
			continue
		}

		stats.Events++
		if flag := r.controller.Process(event); flag != nil {
			stats.Flagged++
		}
	}
	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("scan input: %w", err)
	}
	return stats, nil
}

// WriteFlags renders flagged purchases one JSON object per line.
func WriteFlags(w io.Writer, flags []domain.FlaggedPurchase) error {
	for _, flag := range flags {
		payload, err := json.Marshal(flag)
		if err != nil {
			return fmt.Errorf("encode flag: %w", err)
		}
		if _, err := w.Write(append(payload, '\n')); err != nil {
			return fmt.Errorf("write flag: %w", err)
		}
	}
	return nil
}
