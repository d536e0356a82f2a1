// Package store persists subscriptions. A location's pending rows are the
// authoritative set of recipients still waiting to hear about it.
package store

import (
	"context"

	"findvax-notifier/internal/models"
)

// SubscriptionStore is the document store contract used by intake and the
// notification pipeline.
type SubscriptionStore interface {
	// Put writes one subscription.
	Put(ctx context.Context, sub models.Subscription) error
	// QueryPending returns every unsent subscription for locationID.
	QueryPending(ctx context.Context, locationID string) ([]models.Subscription, error)
	// DeletePending removes every unsent subscription for locationID,
	// regardless of recipient.
	DeletePending(ctx context.Context, locationID string) (int, error)
}
