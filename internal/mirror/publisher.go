package mirror

import (
	"context"
	"log/slog"
	"sync"

	"github.com/sjoshi/netflag/internal/domain"
)

// Publisher applies mirror writes on a bounded worker pool so replication
// stays off the event-processing hot path. Writes are best effort: when the
// queue is saturated or a write fails, the miss is logged and processing
// continues. Per-user ordering is not guaranteed and not required, since
// the mirror is advisory.
type Publisher struct {
	store   *Store
	logger  *slog.Logger
	tasks   chan func(ctx context.Context) error
	wg      sync.WaitGroup
	closing sync.Once
}

// NewPublisher starts a publisher with the given concurrency and queue
// depth. Defaults apply when either is non-positive.
func NewPublisher(store *Store, logger *slog.Logger, workers, queueDepth int) *Publisher {
	if workers <= 0 {
		workers = 2
	}
	if queueDepth <= 0 {
		queueDepth = 256
	}
	if logger == nil {
		logger = slog.Default()
	}

	p := &Publisher{
		store:  store,
		logger: logger,
		tasks:  make(chan func(ctx context.Context) error, queueDepth),
	}

	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

func (p *Publisher) worker() {
	defer p.wg.Done()
	for task := range p.tasks {
		if err := task(context.Background()); err != nil {
			p.logger.Warn("mirror write failed", "error", err)
		}
	}
}

func (p *Publisher) enqueue(task func(ctx context.Context) error) {
	select {
	case p.tasks <- task:
	default:
		p.logger.Warn("mirror queue full, dropping write")
	}
}

// Befriend replicates a befriend event.
func (p *Publisher) Befriend(userID1, userID2 string, seq uint64) {
	p.enqueue(func(ctx context.Context) error {
		return p.store.RecordFriendship(ctx, userID1, userID2, seq)
	})
}

// Unfriend replicates an unfriend event.
func (p *Publisher) Unfriend(userID1, userID2 string) {
	p.enqueue(func(ctx context.Context) error {
		return p.store.RemoveFriendship(ctx, userID1, userID2)
	})
}

// Purchase replicates a purchase event.
func (p *Publisher) Purchase(userID string, seq uint64, amount float64, timestamp string) {
	p.enqueue(func(ctx context.Context) error {
		return p.store.RecordPurchase(ctx, userID, seq, amount, timestamp)
	})
}

// Flag replicates a flagged purchase decision.
func (p *Publisher) Flag(flag domain.FlaggedPurchase, seq uint64) {
	p.enqueue(func(ctx context.Context) error {
		return p.store.RecordFlag(ctx, flag, seq)
	})
}

// Close drains queued writes and stops the workers. Safe to call more than
// once.
func (p *Publisher) Close() {
	p.closing.Do(func() {
		close(p.tasks)
	})
	p.wg.Wait()
}
