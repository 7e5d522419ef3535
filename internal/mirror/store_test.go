package mirror

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sjoshi/netflag/internal/domain"
)

func TestStoreRecordFriendship(t *testing.T) {
	client := NewMemoryClient()
	store := NewStore(client)

	require.NoError(t, store.RecordFriendship(context.Background(), "u1", "u2", 7))

	writes := client.Writes()
	require.Len(t, writes, 1)
	assert.Contains(t, writes[0].Query, "FRIENDS_WITH")
	assert.Equal(t, "u1", writes[0].Params["id1"])
	assert.Equal(t, "u2", writes[0].Params["id2"])
	assert.Equal(t, uint64(7), writes[0].Params["seq"])
}

func TestStoreRemoveFriendshipIssuesDelete(t *testing.T) {
	client := NewMemoryClient()
	store := NewStore(client)

	require.NoError(t, store.RemoveFriendship(context.Background(), "u1", "u2"))

	writes := client.Writes()
	require.Len(t, writes, 1)
	assert.True(t, strings.Contains(writes[0].Query, "DELETE"))
}

func TestStoreWrapsClientErrors(t *testing.T) {
	sentinel := errors.New("bolt unavailable")
	store := NewStore(NewMemoryClient().WithError(sentinel))

	err := store.RecordPurchase(context.Background(), "u1", 3, 19.99, "2026-01-02 09:00:00")
	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel)
}

func TestPublisherAppliesWritesAsynchronously(t *testing.T) {
	client := NewMemoryClient()
	pub := NewPublisher(NewStore(client), slog.Default(), 2, 16)

	pub.Befriend("a", "b", 1)
	pub.Purchase("a", 2, 42.0, "2026-01-02 09:00:00")
	pub.Flag(domain.FlaggedPurchase{UserID: "a", Mean: "10.00", SD: "1.00"}, 2)
	pub.Unfriend("a", "b")
	pub.Close()

	assert.Len(t, client.Writes(), 4)
}

func TestPublisherSurvivesFailingStore(t *testing.T) {
	client := NewMemoryClient().WithError(errors.New("down"))
	pub := NewPublisher(NewStore(client), slog.Default(), 1, 4)

	pub.Befriend("a", "b", 1)
	pub.Befriend("b", "c", 2)
	pub.Close()

	assert.Empty(t, client.Writes())
}
