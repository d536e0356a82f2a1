package sms

import (
	"context"

	"findvax-notifier/internal/common/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

type SNSAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSGateway publishes directly to a phone number.
type SNSGateway struct {
	client            SNSAPI
	originationNumber string
	logger            logger.Logger
}

func NewSNSGateway(client SNSAPI, originationNumber string, log logger.Logger) *SNSGateway {
	return &SNSGateway{
		client:            client,
		originationNumber: originationNumber,
		logger:            log.WithFields(map[string]interface{}{"component": "sms", "provider": "sns"}),
	}
}

func (g *SNSGateway) Name() string { return "sns" }

func (g *SNSGateway) Send(ctx context.Context, recipient, body string) error {
	attrs := map[string]types.MessageAttributeValue{
		"AWS.SNS.SMS.SMSType": {
			DataType:    aws.String("String"),
			StringValue: aws.String("Transactional"),
		},
	}
	if g.originationNumber != "" {
		attrs["AWS.MM.SMS.OriginationNumber"] = types.MessageAttributeValue{
			DataType:    aws.String("String"),
			StringValue: aws.String(g.originationNumber),
		}
	}

	out, err := g.client.Publish(ctx, &sns.PublishInput{
		PhoneNumber:       aws.String(recipient),
		Message:           aws.String(body),
		MessageAttributes: attrs,
	})
	if err != nil {
		return err
	}

	g.logger.Debug("sms published", map[string]interface{}{"messageId": aws.ToString(out.MessageId)})
	return nil
}
