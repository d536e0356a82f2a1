package notify

import (
	"context"
	"time"

	"findvax-notifier/internal/common/errors"
	"findvax-notifier/internal/common/logger"
	"findvax-notifier/internal/common/metrics"
	"findvax-notifier/internal/snapshot"
)

// SnapshotLoader reads one region's location and availability documents.
type SnapshotLoader interface {
	Load(ctx context.Context, region string) (*snapshot.Snapshot, error)
}

// RunReport summarizes one pipeline run.
type RunReport struct {
	Region     string `json:"region"`
	Locations  int    `json:"locations"`
	Qualifying int    `json:"qualifying"`
	Recipients int    `json:"recipients"`
	Sent       int    `json:"sent"`
	Retired    int    `json:"retired"`
}

// Pipeline runs evaluate, resolve, compose and dispatch in that order over a
// single snapshot.
type Pipeline struct {
	loader        SnapshotLoader
	evaluator     *Evaluator
	resolver      *Resolver
	composer      *Composer
	dispatcher    *Dispatcher
	lock          RunLock
	defaultRegion string
	logger        logger.Logger
}

// PipelineOption customizes a Pipeline.
type PipelineOption func(*Pipeline)

// WithRunLock guards runs with lock.
func WithRunLock(lock RunLock) PipelineOption {
	return func(p *Pipeline) { p.lock = lock }
}

// WithDefaultRegion sets the region used when a trigger names none.
func WithDefaultRegion(region string) PipelineOption {
	return func(p *Pipeline) { p.defaultRegion = region }
}

func NewPipeline(loader SnapshotLoader, evaluator *Evaluator, resolver *Resolver, composer *Composer, dispatcher *Dispatcher, log logger.Logger, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		loader:        loader,
		evaluator:     evaluator,
		resolver:      resolver,
		composer:      composer,
		dispatcher:    dispatcher,
		defaultRegion: "MA",
		logger:        log,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes one notification cycle for region. Any stage error aborts the
// stages after it; subscriptions are only deleted after every send succeeded.
func (p *Pipeline) Run(ctx context.Context, region string) (*RunReport, error) {
	if region == "" {
		region = p.defaultRegion
	}
	report := &RunReport{Region: region}
	log := p.logger.WithFields(map[string]interface{}{"region": region})
	start := time.Now()

	if p.lock != nil {
		acquired, err := p.lock.Acquire(ctx, region)
		if err != nil {
			metrics.PipelineRuns.WithLabelValues("failed").Inc()
			return report, err
		}
		if !acquired {
			log.Warn("notification run already in progress, skipping", nil)
			metrics.PipelineRuns.WithLabelValues("skipped").Inc()
			return report, errors.NewRunInProgressError(region)
		}
		defer func() {
			if err := p.lock.Release(context.WithoutCancel(ctx), region); err != nil {
				log.WithError(err).Warn("failed to release run lock", nil)
			}
		}()
	}

	err := p.run(ctx, region, report)
	if err != nil {
		fields := errors.LogFields(err)
		fields["region"] = region
		fields["sent"] = report.Sent
		p.logger.Error("notification run failed", fields)
		metrics.PipelineRuns.WithLabelValues("failed").Inc()
		return report, err
	}

	log.Info("notification run complete", map[string]interface{}{
		"locations":  report.Locations,
		"qualifying": report.Qualifying,
		"recipients": report.Recipients,
		"sent":       report.Sent,
		"retired":    report.Retired,
		"durationMs": time.Since(start).Milliseconds(),
	})
	metrics.PipelineRuns.WithLabelValues("success").Inc()
	return report, nil
}

func (p *Pipeline) run(ctx context.Context, region string, report *RunReport) error {
	snap, err := p.loader.Load(ctx, region)
	if err != nil {
		return err
	}
	report.Locations = len(snap.Locations)

	qualifying := p.evaluator.Evaluate(snap.Locations, snap.Availability)
	report.Qualifying = len(qualifying)
	metrics.QualifyingLocations.WithLabelValues(region).Set(float64(len(qualifying)))
	if len(qualifying) == 0 {
		return nil
	}

	groups, err := p.resolver.Resolve(ctx, qualifying)
	if err != nil {
		return err
	}
	report.Recipients = len(groups)

	msgs := p.composer.ComposeAll(groups)

	result, err := p.dispatcher.Dispatch(ctx, msgs, qualifying)
	report.Sent = result.Sent
	report.Retired = result.Retired
	return err
}
