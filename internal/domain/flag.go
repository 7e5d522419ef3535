package domain

import "fmt"

// FlaggedPurchase records a purchase that exceeded its network threshold.
// It echoes the triggering event's fields verbatim and carries the mean and
// population standard deviation the decision was based on, both rendered
// with fixed two-decimal precision. Immutable once created.
type FlaggedPurchase struct {
	EventType string `json:"event_type"`
	Timestamp string `json:"timestamp"`
	UserID    string `json:"id"`
	Amount    string `json:"amount"`
	Mean      string `json:"mean"`
	SD        string `json:"sd"`
}

// NewFlaggedPurchase builds the output record for a flagged purchase event.
func NewFlaggedPurchase(ev Event, mean, sd float64) FlaggedPurchase {
	return FlaggedPurchase{
		EventType: ev.Type,
		Timestamp: ev.Timestamp,
		UserID:    ev.UserID,
		Amount:    ev.RawAmount,
		Mean:      fmt.Sprintf("%.2f", mean),
		SD:        fmt.Sprintf("%.2f", sd),
	}
}
