package service

import "time"

// Evaluation summarizes one live purchase evaluation. It exists purely for
// instrumentation; nothing in the pipeline depends on it.
type Evaluation struct {
	UserID           string
	Seq              uint64
	NeighborhoodSize int
	MergedCount      int
	FindDuration     time.Duration
	MergeDuration    time.Duration
}

// Hooks carries optional callbacks the controller invokes after each live
// purchase evaluation. The zero value disables instrumentation. Callbacks
// run synchronously under the controller lock and should return quickly.
type Hooks struct {
	OnEvaluation func(Evaluation)
}
