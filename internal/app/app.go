// Package app assembles the notifier's components from configuration. Every
// entry point builds through here so the lambdas, the worker manager and the
// CLI share one wiring.
package app

import (
	"context"
	"fmt"
	"os"

	awsclients "findvax-notifier/internal/common/aws"
	"findvax-notifier/internal/common/config"
	"findvax-notifier/internal/common/database"
	"findvax-notifier/internal/common/logger"
	"findvax-notifier/internal/notify"
	"findvax-notifier/internal/sms"
	"findvax-notifier/internal/snapshot"
	"findvax-notifier/internal/store"
	createsubscription "findvax-notifier/internal/workers/subscription/create-subscription"

	"github.com/google/uuid"
)

// App holds the wired components plus the connections they own.
type App struct {
	Config    *config.Config
	Store     store.SubscriptionStore
	Intake    *createsubscription.Handler
	Pipeline  *notify.Pipeline
	Megaphone *notify.Megaphone

	postgres *database.PostgresClient
	redis    *database.RedisClient
	logger   logger.Logger
}

// Options tweak the build for a particular entry point.
type Options struct {
	// ForceMegaphoneSend overrides megaphone.send from configuration.
	ForceMegaphoneSend bool
	// Connect tunes how long Build waits for Postgres and Redis.
	Connect database.ConnectOptions
}

// Build wires every component for cfg.
func Build(ctx context.Context, cfg *config.Config, log logger.Logger, opts Options) (*App, error) {
	if opts.Connect.Attempts == 0 {
		opts.Connect = database.DefaultConnectOptions
	}

	clients, err := awsclients.NewClients(ctx, cfg.AWS.Region)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws configuration: %w", err)
	}

	a := &App{Config: cfg, logger: log}

	if err := a.buildStore(ctx, clients, opts.Connect); err != nil {
		a.Close()
		return nil, err
	}

	gateway, err := sms.NewGateway(cfg.SMS, sms.Clients{SNS: clients.SNS, Pinpoint: clients.Pinpoint}, log)
	if err != nil {
		a.Close()
		return nil, err
	}

	loader := snapshot.NewS3Loader(clients.S3, cfg.AWS.S3.Bucket, cfg.Pipeline, log)
	resolver := notify.NewResolver(a.Store, log)
	dispatcher := notify.NewDispatcher(gateway, a.Store, cfg.SMS.MaxConcurrentSends, log)

	pipelineOpts := []notify.PipelineOption{notify.WithDefaultRegion(cfg.Pipeline.DefaultRegion)}
	if cfg.Pipeline.RunLock.Enabled {
		a.redis = database.NewRedis(cfg.Database.Redis)
		if err := database.WaitReady(ctx, "redis", a.redis, opts.Connect, log); err != nil {
			a.Close()
			return nil, err
		}
		pipelineOpts = append(pipelineOpts, notify.WithRunLock(notify.NewRedisRunLock(a.redis.Client, cfg.Pipeline.RunLockTTL(), lockOwner())))
	}

	a.Pipeline = notify.NewPipeline(
		loader,
		notify.NewEvaluator(cfg.Pipeline.UnknownSlotCount),
		resolver,
		notify.NewComposer(cfg.Templates, notify.LineWithLink, log),
		dispatcher,
		log,
		pipelineOpts...,
	)

	megaphoneGateway := sms.Gateway(sms.NewLogGateway(log))
	if cfg.Megaphone.Send || opts.ForceMegaphoneSend {
		megaphoneGateway = gateway
	}
	a.Megaphone = notify.NewMegaphone(
		loader,
		resolver,
		notify.NewComposer(cfg.Megaphone.Templates, notify.LineNameOnly, log),
		notify.NewDispatcher(megaphoneGateway, a.Store, cfg.SMS.MaxConcurrentSends, log),
		cfg.Megaphone.LocationIDs,
		cfg.Pipeline.DefaultRegion,
		log,
	)

	a.Intake = createsubscription.NewHandler(createsubscription.LoadConfig(), a.Store, log)

	log.Info("notifier wired", map[string]interface{}{
		"store":       cfg.Store.Backend,
		"smsProvider": gateway.Name(),
		"runLock":     cfg.Pipeline.RunLock.Enabled,
		"megaphone":   megaphoneGateway.Name(),
	})
	return a, nil
}

func (a *App) buildStore(ctx context.Context, clients *awsclients.Clients, connect database.ConnectOptions) error {
	cfg := a.Config
	switch cfg.Store.Backend {
	case config.StoreBackendPostgres:
		pg, err := database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		a.postgres = pg
		if err := database.WaitReady(ctx, "postgres", pg, connect, a.logger); err != nil {
			return err
		}
		if err := pg.EnsureSubscriptionTable(ctx, cfg.Store.Table); err != nil {
			return err
		}
		a.Store = store.NewPostgresStore(pg.DB, cfg.Store.Table, a.logger)
	default:
		a.Store = store.NewDynamoStore(clients.DynamoDB, cfg.AWS.DynamoDB.Table, cfg.AWS.DynamoDB.PendingIndex, a.logger)
	}
	return nil
}

// Ready pings the connections the app owns.
func (a *App) Ready(ctx context.Context) error {
	if a.postgres != nil {
		if err := a.postgres.Ping(ctx); err != nil {
			return err
		}
	}
	if a.redis != nil {
		if err := a.redis.Ping(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Close releases owned connections.
func (a *App) Close() {
	if a.postgres != nil {
		if err := a.postgres.Close(); err != nil {
			a.logger.WithError(err).Warn("failed to close postgres", nil)
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.WithError(err).Warn("failed to close redis", nil)
		}
	}
}

func lockOwner() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "notifier"
	}
	return fmt.Sprintf("%s-%s", host, uuid.NewString())
}
