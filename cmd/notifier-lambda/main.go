// cmd/notifier-lambda/main.go
package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"findvax-notifier/internal/api"
	"findvax-notifier/internal/app"
	"findvax-notifier/internal/common/config"
	"findvax-notifier/internal/common/database"
	"findvax-notifier/internal/common/logger"

	"github.com/aws/aws-lambda-go/lambda"
)

// lambdaConnect keeps cold starts short when a backing service is down.
var lambdaConnect = database.ConnectOptions{
	Attempts: 3,
	Delay:    200 * time.Millisecond,
	MaxDelay: time.Second,
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New("info", "json").Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog).WithFields(map[string]interface{}{"service": "notifier-lambda"})

	notifier, err := app.Build(context.Background(), cfg, log, app.Options{Connect: lambdaConnect})
	if err != nil {
		zapLog.Fatal("failed to wire notifier", zap.Error(err))
	}

	router := api.NewLambdaRouter(notifier.Intake, notifier.Pipeline, log)
	lambda.Start(router.Handle)
}
