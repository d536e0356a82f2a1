package database

import (
	"context"
	"fmt"
	"time"

	"findvax-notifier/internal/common/logger"

	"github.com/codeGROOVE-dev/retry-go"
)

// Pinger is any backing service that can report liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ConnectOptions bounds startup connection attempts.
type ConnectOptions struct {
	Attempts uint
	Delay    time.Duration
	MaxDelay time.Duration
}

// DefaultConnectOptions is used by the long-running worker manager.
var DefaultConnectOptions = ConnectOptions{
	Attempts: 5,
	Delay:    time.Second,
	MaxDelay: 30 * time.Second,
}

// WaitReady pings p until it answers or the attempts run out. It is only used
// while a process starts; pipeline calls are never retried.
func WaitReady(ctx context.Context, name string, p Pinger, opts ConnectOptions, log logger.Logger) error {
	err := retry.Do(
		func() error {
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			return p.Ping(pingCtx)
		},
		retry.Attempts(opts.Attempts),
		retry.Delay(opts.Delay),
		retry.MaxDelay(opts.MaxDelay),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			log.Warn("connection attempt failed", map[string]interface{}{
				"service": name,
				"attempt": n + 1,
				"error":   err,
			})
		}),
	)
	if err != nil {
		return fmt.Errorf("%s not ready: %w", name, err)
	}

	log.Info("connected", map[string]interface{}{"service": name})
	return nil
}
