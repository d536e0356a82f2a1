package notify

import (
	"context"

	"findvax-notifier/internal/common/errors"
	"findvax-notifier/internal/common/logger"
	"findvax-notifier/internal/models"
	"findvax-notifier/internal/store"

	"golang.org/x/sync/errgroup"
)

// Resolver gathers the pending subscriptions of qualifying locations into one
// group per recipient.
type Resolver struct {
	store  store.SubscriptionStore
	logger logger.Logger
}

func NewResolver(s store.SubscriptionStore, log logger.Logger) *Resolver {
	return &Resolver{store: s, logger: log}
}

// Resolve looks up every qualifying location concurrently, then merges the
// results in qualifying order. Groups are returned in first-seen recipient
// order and each group's locations keep qualifying order. Duplicate rows for
// the same recipient and location yield duplicate lines.
//
// The first lookup failure cancels the rest and is returned; no groups are
// produced in that case.
func (r *Resolver) Resolve(ctx context.Context, qualifying []models.QualifyingLocation) ([]models.PendingNotificationGroup, error) {
	if len(qualifying) == 0 {
		return nil, nil
	}

	results := make([][]models.Subscription, len(qualifying))
	g, gctx := errgroup.WithContext(ctx)
	for i, loc := range qualifying {
		i, loc := i, loc
		g.Go(func() error {
			subs, err := r.store.QueryPending(gctx, loc.UUID)
			if err != nil {
				return errors.NewSubscriptionQueryFailedError(loc.UUID, err)
			}
			results[i] = subs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	index := map[string]int{}
	var groups []models.PendingNotificationGroup
	for i, loc := range qualifying {
		line := models.LocationLine{Name: loc.Name, Link: loc.URL}
		for _, sub := range results[i] {
			pos, ok := index[sub.SMS]
			if !ok {
				pos = len(groups)
				index[sub.SMS] = pos
				groups = append(groups, models.PendingNotificationGroup{Recipient: sub.SMS, Lang: sub.Lang})
			}
			groups[pos].Locations = append(groups[pos].Locations, line)
		}
	}

	r.logger.Debug("resolved pending notifications", map[string]interface{}{
		"locations":  len(qualifying),
		"recipients": len(groups),
	})
	return groups, nil
}
