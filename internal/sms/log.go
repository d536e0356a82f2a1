package sms

import (
	"context"

	"findvax-notifier/internal/common/logger"
)

// LogGateway writes messages to the log instead of sending them. It backs
// dry runs.
type LogGateway struct {
	logger logger.Logger
}

func NewLogGateway(log logger.Logger) *LogGateway {
	return &LogGateway{logger: log.WithFields(map[string]interface{}{"component": "sms", "provider": "log"})}
}

func (g *LogGateway) Name() string { return "log" }

func (g *LogGateway) Send(_ context.Context, recipient, body string) error {
	masked := maskRecipient(recipient)
	g.logger.Info("dry run, message not sent", map[string]interface{}{"recipient": masked})
	g.logger.Debug("dry run message body", map[string]interface{}{"recipient": masked, "body": body})
	return nil
}

// maskRecipient keeps only the last four digits of a phone number.
func maskRecipient(recipient string) string {
	if len(recipient) <= 4 {
		return "***"
	}
	return "***" + recipient[len(recipient)-4:]
}
