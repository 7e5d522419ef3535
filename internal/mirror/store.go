package mirror

import (
	"context"
	"fmt"

	"github.com/sjoshi/netflag/internal/domain"
)

// Store issues the cypher statements that keep the mirror in step with the
// in-memory social graph and flag log.
type Store struct {
	client Client
}

// NewStore instantiates a Store backed by the supplied client.
func NewStore(client Client) *Store {
	return &Store{client: client}
}

// RecordFriendship merges both user nodes and the FRIENDS_WITH edge. The
// relationship is stored once and matched undirected on read.
func (s *Store) RecordFriendship(ctx context.Context, userID1, userID2 string, seq uint64) error {
	params := map[string]any{
		"id1": userID1,
		"id2": userID2,
		"seq": seq,
	}
	if err := s.client.ExecuteWrite(ctx, befriendCypher, params); err != nil {
		return fmt.Errorf("mirror befriend %s-%s: %w", userID1, userID2, err)
	}
	return nil
}

// RemoveFriendship deletes the FRIENDS_WITH edge if present. Nodes stay.
func (s *Store) RemoveFriendship(ctx context.Context, userID1, userID2 string) error {
	params := map[string]any{
		"id1": userID1,
		"id2": userID2,
	}
	if err := s.client.ExecuteWrite(ctx, unfriendCypher, params); err != nil {
		return fmt.Errorf("mirror unfriend %s-%s: %w", userID1, userID2, err)
	}
	return nil
}

// RecordPurchase ensures the purchaser node exists and appends a purchase
// node linked to it.
func (s *Store) RecordPurchase(ctx context.Context, userID string, seq uint64, amount float64, timestamp string) error {
	params := map[string]any{
		"userId":    userID,
		"seq":       seq,
		"amount":    amount,
		"timestamp": timestamp,
	}
	if err := s.client.ExecuteWrite(ctx, purchaseCypher, params); err != nil {
		return fmt.Errorf("mirror purchase by %s: %w", userID, err)
	}
	return nil
}

// RecordFlag marks a mirrored purchase as flagged with its decision stats.
func (s *Store) RecordFlag(ctx context.Context, flag domain.FlaggedPurchase, seq uint64) error {
	params := map[string]any{
		"userId": flag.UserID,
		"seq":    seq,
		"mean":   flag.Mean,
		"sd":     flag.SD,
	}
	if err := s.client.ExecuteWrite(ctx, flagCypher, params); err != nil {
		return fmt.Errorf("mirror flag for %s: %w", flag.UserID, err)
	}
	return nil
}

// Probe verifies mirror connectivity, for health checks.
func (s *Store) Probe(ctx context.Context) error {
	return s.client.VerifyConnectivity(ctx)
}

// Close releases the underlying client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Close(ctx)
}

const befriendCypher = `
MERGE (a:User {userId: $id1})
MERGE (b:User {userId: $id2})
MERGE (a)-[f:FRIENDS_WITH]-(b)
SET f.since = $seq
`

const unfriendCypher = `
MATCH (:User {userId: $id1})-[f:FRIENDS_WITH]-(:User {userId: $id2})
DELETE f
`

const purchaseCypher = `
MERGE (u:User {userId: $userId})
CREATE (p:Purchase {seq: $seq, amount: $amount, timestamp: $timestamp})
CREATE (u)-[:MADE]->(p)
`

const flagCypher = `
MATCH (:User {userId: $userId})-[:MADE]->(p:Purchase {seq: $seq})
SET p.flagged = true,
	p.networkMean = $mean,
	p.networkSd = $sd
`
