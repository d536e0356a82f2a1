// cmd/megaphone-lambda/main.go
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

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New("info", "json").Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog).WithFields(map[string]interface{}{"service": "megaphone-lambda"})

	notifier, err := app.Build(context.Background(), cfg, log, app.Options{
		Connect: database.ConnectOptions{Attempts: 3, Delay: 200 * time.Millisecond, MaxDelay: time.Second},
	})
	if err != nil {
		zapLog.Fatal("failed to wire notifier", zap.Error(err))
	}

	lambda.Start(api.NewMegaphoneHandler(notifier.Megaphone, log).Handle)
}
