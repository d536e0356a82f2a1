// internal/common/aws/clients.go
package aws

import (
	"context"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/pinpoint"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// Clients bundles the SDK clients the notifier talks to. All of them share one
// credentials chain and region.
type Clients struct {
	S3       *s3.Client
	DynamoDB *dynamodb.Client
	SNS      *sns.Client
	Pinpoint *pinpoint.Client
}

// LoadConfig resolves the default credentials chain for region.
func LoadConfig(ctx context.Context, region string) (sdkaws.Config, error) {
	return config.LoadDefaultConfig(ctx, config.WithRegion(region))
}

// NewClients builds every client from one resolved configuration.
func NewClients(ctx context.Context, region string) (*Clients, error) {
	cfg, err := LoadConfig(ctx, region)
	if err != nil {
		return nil, err
	}
	return &Clients{
		S3:       s3.NewFromConfig(cfg),
		DynamoDB: dynamodb.NewFromConfig(cfg),
		SNS:      sns.NewFromConfig(cfg),
		Pinpoint: pinpoint.NewFromConfig(cfg),
	}, nil
}
