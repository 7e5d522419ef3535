package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// Event types accepted on the wire.
const (
	EventPurchase = "purchase"
	EventBefriend = "befriend"
	EventUnfriend = "unfriend"
)

// ErrInvalidEvent marks structural or parse failures in incoming events.
// Callers are expected to skip the offending event and continue.
var ErrInvalidEvent = errors.New("invalid event")

// Event is a validated input event. Timestamp is advisory only: event
// ordering is established by the controller's sequence counter, never by
// parsing the timestamp.
type Event struct {
	Type      string
	Timestamp string

	// Purchase fields.
	UserID    string
	Amount    float64
	RawAmount string // wire representation, passed through to flag output

	// Befriend/unfriend fields.
	UserID1 string
	UserID2 string
}

// ParseEvent validates a raw string-keyed record and produces a typed
// Event. Unknown keys are ignored; any missing required field, wrong type
// or unparsable amount yields an error wrapping ErrInvalidEvent.
func ParseEvent(raw map[string]any) (Event, error) {
	eventType, err := stringField(raw, "event_type")
	if err != nil {
		return Event{}, err
	}

	timestamp, err := stringField(raw, "timestamp")
	if err != nil {
		return Event{}, err
	}

	ev := Event{Type: eventType, Timestamp: timestamp}

	switch eventType {
	case EventPurchase:
		ev.UserID, err = stringField(raw, "id")
		if err != nil {
			return Event{}, err
		}
		ev.Amount, ev.RawAmount, err = amountField(raw, "amount")
		if err != nil {
			return Event{}, err
		}
	case EventBefriend, EventUnfriend:
		ev.UserID1, err = stringField(raw, "id1")
		if err != nil {
			return Event{}, err
		}
		ev.UserID2, err = stringField(raw, "id2")
		if err != nil {
			return Event{}, err
		}
		if ev.UserID1 == ev.UserID2 {
			return Event{}, fmt.Errorf("%w: id1 and id2 must differ", ErrInvalidEvent)
		}
	default:
		return Event{}, fmt.Errorf("%w: unknown event_type %q", ErrInvalidEvent, eventType)
	}

	return ev, nil
}

func stringField(raw map[string]any, key string) (string, error) {
	value, ok := raw[key]
	if !ok {
		return "", fmt.Errorf("%w: missing field %q", ErrInvalidEvent, key)
	}
	s, ok := value.(string)
	if !ok || s == "" {
		return "", fmt.Errorf("%w: field %q must be a non-empty string", ErrInvalidEvent, key)
	}
	return s, nil
}

// amountField accepts both string-encoded and numeric amounts. The wire
// representation is preserved so flag output can echo it unchanged.
func amountField(raw map[string]any, key string) (float64, string, error) {
	value, ok := raw[key]
	if !ok {
		return 0, "", fmt.Errorf("%w: missing field %q", ErrInvalidEvent, key)
	}

	var (
		amount float64
		text   string
		err    error
	)
	switch v := value.(type) {
	case string:
		text = v
		amount, err = strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, "", fmt.Errorf("%w: unparsable amount %q", ErrInvalidEvent, v)
		}
	case float64:
		amount = v
		text = strconv.FormatFloat(v, 'f', 2, 64)
	case json.Number:
		text = v.String()
		amount, err = v.Float64()
		if err != nil {
			return 0, "", fmt.Errorf("%w: unparsable amount %q", ErrInvalidEvent, text)
		}
	default:
		return 0, "", fmt.Errorf("%w: field %q must be a number", ErrInvalidEvent, key)
	}

	if amount < 0 {
		return 0, "", fmt.Errorf("%w: amount must be non-negative", ErrInvalidEvent)
	}
	return amount, text, nil
}
