// Package sms delivers composed messages through an SMS provider.
package sms

import (
	"context"
	"fmt"

	"findvax-notifier/internal/common/config"
	"findvax-notifier/internal/common/logger"
)

// Gateway sends one transactional text message to one recipient. A nil error
// means the provider accepted the message.
type Gateway interface {
	Send(ctx context.Context, recipient, body string) error
	Name() string
}

// Clients are the provider SDK clients a gateway may be built from.
type Clients struct {
	SNS      SNSAPI
	Pinpoint PinpointAPI
}

// NewGateway selects the provider named in cfg.
func NewGateway(cfg config.SMSConfig, clients Clients, log logger.Logger) (Gateway, error) {
	switch cfg.Provider {
	case config.SMSProviderPinpoint:
		return NewPinpointGateway(clients.Pinpoint, cfg.ApplicationID, cfg.OriginationNumber, log), nil
	case config.SMSProviderSNS:
		return NewSNSGateway(clients.SNS, cfg.OriginationNumber, log), nil
	case config.SMSProviderLog:
		return NewLogGateway(log), nil
	default:
		return nil, fmt.Errorf("unknown sms provider %q", cfg.Provider)
	}
}
