package generator

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// Record is one wire-format log line.
type Record struct {
	EventType string `json:"event_type"`
	Timestamp string `json:"timestamp"`
	ID        string `json:"id,omitempty"`
	Amount    string `json:"amount,omitempty"`
	ID1       string `json:"id1,omitempty"`
	ID2       string `json:"id2,omitempty"`
}

// Params is the configuration line leading the batch log.
type Params struct {
	D string `json:"D"`
	T string `json:"T"`
}

// Dataset contains the generated seed and stream segments.
type Dataset struct {
	Params Params
	Batch  []Record
	Stream []Record
}

// Generator produces synthetic event logs shaped like the production feed.
type Generator struct {
	cfg   Config
	rand  *rand.Rand
	users []string
	edges map[[2]string]struct{}
	clock time.Time
}

const timestampLayout = "2006-01-02 15:04:05"

// New returns a configured Generator instance.
func New(cfg Config) *Generator {
	defaults := DefaultConfig()
	if cfg.NumUsers <= 1 {
		cfg.NumUsers = defaults.NumUsers
	}
	if cfg.NumBatchEvents <= 0 {
		cfg.NumBatchEvents = defaults.NumBatchEvents
	}
	if cfg.NumStreamEvents <= 0 {
		cfg.NumStreamEvents = defaults.NumStreamEvents
	}
	if cfg.BefriendChance <= 0 {
		cfg.BefriendChance = defaults.BefriendChance
	}
	if cfg.UnfriendChance <= 0 {
		cfg.UnfriendChance = defaults.UnfriendChance
	}
	if cfg.AnomalyChance <= 0 {
		cfg.AnomalyChance = defaults.AnomalyChance
	}
	if cfg.BaseAmount <= 0 {
		cfg.BaseAmount = defaults.BaseAmount
	}
	if cfg.AmountJitter <= 0 {
		cfg.AmountJitter = defaults.AmountJitter
	}
	if cfg.AnomalyFactor <= 1 {
		cfg.AnomalyFactor = defaults.AnomalyFactor
	}
	if cfg.Degree <= 0 {
		cfg.Degree = defaults.Degree
	}
	if cfg.Window <= 0 {
		cfg.Window = defaults.Window
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	return &Generator{
		cfg:   cfg,
		rand:  rand.New(rand.NewSource(cfg.Seed)),
		edges: make(map[[2]string]struct{}),
		clock: time.Date(2026, time.January, 2, 9, 0, 0, 0, time.UTC),
	}
}

// Generate synthesises the batch and stream segments. It respects context
// cancellation on long runs.
func (g *Generator) Generate(ctx context.Context) (Dataset, error) {
	g.users = make([]string, g.cfg.NumUsers)
	for i := range g.users {
		g.users[i] = uuid.NewString()
	}

	dataset := Dataset{
		Params: Params{
			D: fmt.Sprintf("%d", g.cfg.Degree),
			T: fmt.Sprintf("%d", g.cfg.Window),
		},
	}

	// Backbone friendships first so the network is connected enough for
	// multi-hop neighborhoods to exist.
	for i := 1; i < len(g.users); i++ {
		if err := ctx.Err(); err != nil {
			return Dataset{}, err
		}
		other := g.users[g.rand.Intn(i)]
		dataset.Batch = append(dataset.Batch, g.befriend(g.users[i], other))
	}

	for len(dataset.Batch) < g.cfg.NumBatchEvents {
		if err := ctx.Err(); err != nil {
			return Dataset{}, err
		}
		dataset.Batch = append(dataset.Batch, g.nextEvent())
	}

	for len(dataset.Stream) < g.cfg.NumStreamEvents {
		if err := ctx.Err(); err != nil {
			return Dataset{}, err
		}
		dataset.Stream = append(dataset.Stream, g.nextEvent())
	}

	return dataset, nil
}

func (g *Generator) nextEvent() Record {
	roll := g.rand.Float64()
	switch {
	case roll < g.cfg.BefriendChance:
		u, v := g.randomPair()
		return g.befriend(u, v)
	case roll < g.cfg.BefriendChance+g.cfg.UnfriendChance:
		if u, v, ok := g.randomEdge(); ok {
			return g.unfriend(u, v)
		}
		u, v := g.randomPair()
		return g.befriend(u, v)
	default:
		return g.purchase(g.users[g.rand.Intn(len(g.users))])
	}
}

func (g *Generator) befriend(u, v string) Record {
	g.edges[edgeKey(u, v)] = struct{}{}
	return Record{
		EventType: "befriend",
		Timestamp: g.nextTimestamp(),
		ID1:       u,
		ID2:       v,
	}
}

func (g *Generator) unfriend(u, v string) Record {
	delete(g.edges, edgeKey(u, v))
	return Record{
		EventType: "unfriend",
		Timestamp: g.nextTimestamp(),
		ID1:       u,
		ID2:       v,
	}
}

func (g *Generator) purchase(user string) Record {
	amount := g.cfg.BaseAmount + (g.rand.Float64()*2-1)*g.cfg.AmountJitter
	if amount < 0.01 {
		amount = 0.01
	}
	if g.rand.Float64() < g.cfg.AnomalyChance {
		amount *= g.cfg.AnomalyFactor
	}
	return Record{
		EventType: "purchase",
		Timestamp: g.nextTimestamp(),
		ID:        user,
		Amount:    fmt.Sprintf("%.2f", amount),
	}
}

func (g *Generator) randomPair() (string, string) {
	u := g.users[g.rand.Intn(len(g.users))]
	v := g.users[g.rand.Intn(len(g.users))]
	for v == u {
		v = g.users[g.rand.Intn(len(g.users))]
	}
	return u, v
}

func (g *Generator) randomEdge() (string, string, bool) {
	for key := range g.edges {
		return key[0], key[1], true
	}
	return "", "", false
}

func (g *Generator) nextTimestamp() string {
	g.clock = g.clock.Add(time.Second)
	return g.clock.Format(timestampLayout)
}

func edgeKey(u, v string) [2]string {
	if u > v {
		u, v = v, u
	}
	return [2]string{u, v}
}
