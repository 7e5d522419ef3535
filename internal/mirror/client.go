// Package mirror replicates social-graph mutations and flagged purchases
// into a Neo4j instance for offline investigation. The mirror is advisory:
// the in-memory graph remains the single source of truth for detection,
// and mirror failures never affect event processing.
package mirror

import (
	"context"
	"errors"
)

// Client is the minimal write contract the mirror store requires from the
// underlying graph database.
type Client interface {
	ExecuteWrite(ctx context.Context, cypher string, params map[string]any) error
	VerifyConnectivity(ctx context.Context) error
	Close(ctx context.Context) error
}

// Options configures a mirror client implementation.
type Options struct {
	URI            string
	Database       string
	Username       string
	Password       string
	MaxConnections int
}

// ErrMissingURI indicates the mirror URI is not provided.
var ErrMissingURI = errors.New("mirror URI is required")
