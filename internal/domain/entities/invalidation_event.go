package entities

import "time"

// InvalidationEvent announces that a cache key family became stale.
// Published after every successful mutation so that all instances
// drop the family and the next read refetches from the gateway.
type InvalidationEvent struct {
	ID         string    `json:"id"`
	Family     string    `json:"family"`
	Reason     string    `json:"reason"`
	OccurredAt time.Time `json:"occurred_at"`
}
