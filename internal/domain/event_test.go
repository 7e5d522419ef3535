package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEventPurchase(t *testing.T) {
	ev, err := ParseEvent(map[string]any{
		"event_type": "purchase",
		"timestamp":  "2017-06-13 11:33:01",
		"id":         "1",
		"amount":     "16.83",
	})
	require.NoError(t, err)

	assert.Equal(t, EventPurchase, ev.Type)
	assert.Equal(t, "1", ev.UserID)
	assert.Equal(t, 16.83, ev.Amount)
	assert.Equal(t, "16.83", ev.RawAmount)
}

func TestParseEventNumericAmount(t *testing.T) {
	ev, err := ParseEvent(map[string]any{
		"event_type": "purchase",
		"timestamp":  "2017-06-13 11:33:01",
		"id":         "1",
		"amount":     16.83,
	})
	require.NoError(t, err)
	assert.Equal(t, 16.83, ev.Amount)
	assert.Equal(t, "16.83", ev.RawAmount)
}

func TestParseEventBefriend(t *testing.T) {
	ev, err := ParseEvent(map[string]any{
		"event_type": "befriend",
		"timestamp":  "2017-06-13 11:33:01",
		"id1":        "1",
		"id2":        "2",
	})
	require.NoError(t, err)
	assert.Equal(t, "1", ev.UserID1)
	assert.Equal(t, "2", ev.UserID2)
}

func TestParseEventFailures(t *testing.T) {
	cases := map[string]map[string]any{
		"missing event_type": {
			"timestamp": "t", "id": "1", "amount": "1.00",
		},
		"unknown event_type": {
			"event_type": "teleport", "timestamp": "t", "id": "1",
		},
		"missing timestamp": {
			"event_type": "purchase", "id": "1", "amount": "1.00",
		},
		"missing purchaser id": {
			"event_type": "purchase", "timestamp": "t", "amount": "1.00",
		},
		"unparsable amount": {
			"event_type": "purchase", "timestamp": "t", "id": "1", "amount": "a lot",
		},
		"negative amount": {
			"event_type": "purchase", "timestamp": "t", "id": "1", "amount": "-5.00",
		},
		"amount wrong type": {
			"event_type": "purchase", "timestamp": "t", "id": "1", "amount": true,
		},
		"missing id2": {
			"event_type": "befriend", "timestamp": "t", "id1": "1",
		},
		"identical ids": {
			"event_type": "unfriend", "timestamp": "t", "id1": "1", "id2": "1",
		},
		"non-string id": {
			"event_type": "purchase", "timestamp": "t", "id": 7.0, "amount": "1.00",
		},
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseEvent(raw)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidEvent)
		})
	}
}

func TestParseEventIgnoresExtraFields(t *testing.T) {
	_, err := ParseEvent(map[string]any{
		"event_type": "purchase",
		"timestamp":  "2017-06-13 11:33:01",
		"id":         "1",
		"amount":     "16.83",
		"channel":    "mobile",
	})
	assert.NoError(t, err)
}
