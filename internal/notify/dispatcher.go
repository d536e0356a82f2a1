package notify

import (
	"context"
	"sync/atomic"

	"findvax-notifier/internal/common/errors"
	"findvax-notifier/internal/common/logger"
	"findvax-notifier/internal/common/metrics"
	"findvax-notifier/internal/models"
	"findvax-notifier/internal/sms"
	"findvax-notifier/internal/store"

	"golang.org/x/sync/errgroup"
)

// Dispatcher sends composed messages and retires the pending subscriptions of
// the locations they covered.
type Dispatcher struct {
	gateway       sms.Gateway
	store         store.SubscriptionStore
	maxConcurrent int
	logger        logger.Logger
}

// DispatchResult counts what one dispatch did.
type DispatchResult struct {
	Sent    int
	Retired int
}

func NewDispatcher(gateway sms.Gateway, s store.SubscriptionStore, maxConcurrent int, log logger.Logger) *Dispatcher {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &Dispatcher{gateway: gateway, store: s, maxConcurrent: maxConcurrent, logger: log}
}

// Dispatch sends every message and, only if all of them were accepted,
// deletes the pending rows of every qualifying location. Deletion is by
// location, so rows of recipients added after resolution are removed too.
func (d *Dispatcher) Dispatch(ctx context.Context, msgs []models.ComposedMessage, qualifying []models.QualifyingLocation) (DispatchResult, error) {
	sent, err := d.Send(ctx, msgs)
	if err != nil {
		return DispatchResult{Sent: sent}, err
	}

	retired, err := d.Retire(ctx, qualifying)
	return DispatchResult{Sent: sent, Retired: retired}, err
}

// Send submits msgs concurrently. The first rejection cancels outstanding
// sends and is returned along with the number already accepted.
func (d *Dispatcher) Send(ctx context.Context, msgs []models.ComposedMessage) (int, error) {
	var sent atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.maxConcurrent)
	for _, msg := range msgs {
		msg := msg
		g.Go(func() error {
			if err := d.gateway.Send(gctx, msg.Recipient, msg.Body); err != nil {
				return errors.NewNotificationSendFailedError(msg.Recipient, err)
			}
			sent.Add(1)
			metrics.MessagesSent.WithLabelValues(d.gateway.Name()).Inc()
			return nil
		})
	}
	err := g.Wait()
	return int(sent.Load()), err
}

// Retire deletes the pending rows of every location concurrently.
func (d *Dispatcher) Retire(ctx context.Context, qualifying []models.QualifyingLocation) (int, error) {
	counts := make([]int, len(qualifying))

	g, gctx := errgroup.WithContext(ctx)
	for i, loc := range qualifying {
		i, loc := i, loc
		g.Go(func() error {
			n, err := d.store.DeletePending(gctx, loc.UUID)
			if err != nil {
				return errors.NewSubscriptionDeleteFailedError(loc.UUID, err)
			}
			counts[i] = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	total := 0
	for _, n := range counts {
		total += n
	}
	metrics.SubscriptionsRetired.Add(float64(total))
	return total, nil
}
