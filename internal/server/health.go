package server

import (
	"context"

	"github.com/sjoshi/netflag/internal/mirror"
)

// HealthService defines behaviour for readiness probes.
type HealthService interface {
	Probe(ctx context.Context) error
}

// MirrorHealthService verifies mirror connectivity as part of health
// checks. With no mirror configured the probe always passes: the core
// pipeline has no external dependencies.
type MirrorHealthService struct {
	Store *mirror.Store
}

// Probe implements the HealthService interface.
func (s MirrorHealthService) Probe(ctx context.Context) error {
	if s.Store == nil {
		return nil
	}
	return s.Store.Probe(ctx)
}
