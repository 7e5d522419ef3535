// Package service orchestrates event processing: it owns the social graph,
// all purchase histories, the global sequence counter and the flag log, and
// runs the detection pipeline for each live purchase.
package service

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/sjoshi/netflag/internal/detect"
	"github.com/sjoshi/netflag/internal/domain"
	"github.com/sjoshi/netflag/internal/graph"
)

// Phase of the run. Seeding replays historical events without flagging;
// live evaluates every purchase. The transition is one-way.
type Phase string

const (
	PhaseSeeding Phase = "seeding"
	PhaseLive    Phase = "live"
)

// Config fixes the detection parameters for a run. Immutable once the
// controller is constructed.
type Config struct {
	Degree int // D: neighborhood depth in hops
	Window int // T: number of recent network purchases compared against
}

// Validate rejects non-positive detection parameters.
func (c Config) Validate() error {
	if c.Degree <= 0 {
		return fmt.Errorf("degree must be positive, got %d", c.Degree)
	}
	if c.Window <= 0 {
		return fmt.Errorf("window must be positive, got %d", c.Window)
	}
	return nil
}

// MirrorPublisher is the optional replication sink for graph mutations and
// flag decisions. Implementations must not block the caller.
type MirrorPublisher interface {
	Befriend(userID1, userID2 string, seq uint64)
	Unfriend(userID1, userID2 string)
	Purchase(userID string, seq uint64, amount float64, timestamp string)
	Flag(flag domain.FlaggedPurchase, seq uint64)
}

// Controller is the single owner of all mutable run state. Event
// processing is serialized under one mutex, so a purchase evaluation always
// observes the graph exactly as of its own position in the event sequence.
type Controller struct {
	mu        sync.Mutex
	cfg       Config
	logger    *slog.Logger
	graph     *graph.Graph
	histories map[string][]domain.Purchase
	seq       uint64
	flags     []domain.FlaggedPurchase
	live      bool
	hooks     Hooks
	mirror    MirrorPublisher
}

// NewController constructs a seeding-phase controller. A nil logger falls
// back to slog.Default().
func NewController(cfg Config, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		cfg:       cfg,
		logger:    logger,
		graph:     graph.New(),
		histories: make(map[string][]domain.Purchase),
	}
}

// WithMirror attaches a replication sink.
func (c *Controller) WithMirror(m MirrorPublisher) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mirror = m
}

// WithHooks attaches instrumentation callbacks.
func (c *Controller) WithHooks(h Hooks) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hooks = h
}

// GoLive enables anomaly detection. Callers must replay the full seed
// segment, in order, before invoking it; there is no way back to seeding.
func (c *Controller) GoLive() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.live {
		c.live = true
		c.logger.Info("detection enabled", "events_seeded", c.seq)
	}
}

// Phase reports the current run phase.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.live {
		return PhaseLive
	}
	return PhaseSeeding
}

// Config returns the immutable detection parameters.
func (c *Controller) Config() Config {
	return c.cfg
}

// Process applies one validated event. Every event increments the global
// sequence counter exactly once, before any purchase is recorded with it.
// The returned flag is non-nil only when a live purchase was anomalous; it
// has already been appended to the flag log.
func (c *Controller) Process(ev domain.Event) *domain.FlaggedPurchase {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++

	switch ev.Type {
	case domain.EventBefriend:
		c.graph.AddEdge(ev.UserID1, ev.UserID2)
		if c.mirror != nil {
			c.mirror.Befriend(ev.UserID1, ev.UserID2, c.seq)
		}
	case domain.EventUnfriend:
		c.graph.RemoveEdge(ev.UserID1, ev.UserID2)
		if c.mirror != nil {
			c.mirror.Unfriend(ev.UserID1, ev.UserID2)
		}
	case domain.EventPurchase:
		return c.processPurchase(ev)
	}
	return nil
}

func (c *Controller) processPurchase(ev domain.Event) *domain.FlaggedPurchase {
	c.graph.AddVertex(ev.UserID)
	c.histories[ev.UserID] = append(c.histories[ev.UserID], domain.Purchase{
		Seq:    c.seq,
		Amount: ev.Amount,
	})
	if c.mirror != nil {
		c.mirror.Purchase(ev.UserID, c.seq, ev.Amount, ev.Timestamp)
	}

	if !c.live {
		return nil
	}

	findStart := time.Now()
	neighborhood := c.graph.WithinDegree(ev.UserID, c.cfg.Degree)
	findDuration := time.Since(findStart)

	histories := make([][]domain.Purchase, 0, len(neighborhood))
	for user := range neighborhood {
		if h := c.histories[user]; len(h) > 0 {
			histories = append(histories, h)
		}
	}

	mergeStart := time.Now()
	recent := detect.LatestN(histories, c.cfg.Window)
	mergeDuration := time.Since(mergeStart)

	if c.hooks.OnEvaluation != nil {
		c.hooks.OnEvaluation(Evaluation{
			UserID:           ev.UserID,
			Seq:              c.seq,
			NeighborhoodSize: len(neighborhood),
			MergedCount:      len(recent),
			FindDuration:     findDuration,
			MergeDuration:    mergeDuration,
		})
	}

	stats, anomalous := detect.Evaluate(detect.Amounts(recent), ev.Amount)
	if !anomalous {
		return nil
	}

	flag := domain.NewFlaggedPurchase(ev, stats.Mean, stats.SD)
	c.flags = append(c.flags, flag)
	if c.mirror != nil {
		c.mirror.Flag(flag, c.seq)
	}
	c.logger.Info("purchase flagged",
		"user", ev.UserID,
		"amount", ev.RawAmount,
		"mean", flag.Mean,
		"sd", flag.SD,
		"network_size", len(neighborhood),
	)
	return &flag
}

// Flags returns the flag log in detection order.
func (c *Controller) Flags() []domain.FlaggedPurchase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.FlaggedPurchase(nil), c.flags...)
}

// Sequence returns the number of events processed so far.
func (c *Controller) Sequence() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq
}

// NetworkOf returns the sorted user ids within degree hops of the given
// user. A non-positive degree falls back to the configured depth.
func (c *Controller) NetworkOf(userID string, degree int) []string {
	if degree <= 0 {
		degree = c.cfg.Degree
	}

	c.mu.Lock()
	neighborhood := c.graph.WithinDegree(userID, degree)
	c.mu.Unlock()

	users := make([]string, 0, len(neighborhood))
	for u := range neighborhood {
		users = append(users, u)
	}
	sort.Strings(users)
	return users
}
