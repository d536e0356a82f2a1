package camunda

import (
	"context"
	"fmt"
	"time"

	"findvax-notifier/internal/common/config"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// Client wraps the Zeebe gRPC client.
type Client struct {
	client         zbc.Client
	requestTimeout time.Duration
}

// NewClient creates a client for cfg.BrokerAddress. It does not contact the
// broker; use Ping for that.
func NewClient(cfg config.CamundaConfig) (*Client, error) {
	zeebeClient, err := zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         cfg.BrokerAddress,
		UsePlaintextConnection: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Zeebe client: %w", err)
	}
	return &Client{client: zeebeClient, requestTimeout: config.GetDuration(cfg.RequestTimeout)}, nil
}

// Ping asks the gateway for its topology.
func (c *Client) Ping(ctx context.Context) error {
	if c.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.requestTimeout)
		defer cancel()
	}
	if _, err := c.client.NewTopologyCommand().Send(ctx); err != nil {
		return fmt.Errorf("zeebe topology request failed: %w", err)
	}
	return nil
}

// Zeebe returns the raw client for opening job workers.
func (c *Client) Zeebe() zbc.Client {
	return c.client
}

func (c *Client) Close() error {
	return c.client.Close()
}
