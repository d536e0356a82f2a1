package sms

import (
	"context"
	"errors"
	"fmt"

	"findvax-notifier/internal/common/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/pinpoint"
	"github.com/aws/aws-sdk-go-v2/service/pinpoint/types"
)

type PinpointAPI interface {
	SendMessages(ctx context.Context, params *pinpoint.SendMessagesInput, optFns ...func(*pinpoint.Options)) (*pinpoint.SendMessagesOutput, error)
}

// PinpointGateway sends through a Pinpoint project's SMS channel.
type PinpointGateway struct {
	client            PinpointAPI
	applicationID     string
	originationNumber string
	logger            logger.Logger
}

func NewPinpointGateway(client PinpointAPI, applicationID, originationNumber string, log logger.Logger) *PinpointGateway {
	return &PinpointGateway{
		client:            client,
		applicationID:     applicationID,
		originationNumber: originationNumber,
		logger:            log.WithFields(map[string]interface{}{"component": "sms", "provider": "pinpoint"}),
	}
}

// errNoResult means Pinpoint did not confirm acceptance for the address.
var errNoResult = errors.New("pinpoint returned no result for recipient")

func (g *PinpointGateway) Name() string { return "pinpoint" }

func (g *PinpointGateway) Send(ctx context.Context, recipient, body string) error {
	out, err := g.client.SendMessages(ctx, &pinpoint.SendMessagesInput{
		ApplicationId: aws.String(g.applicationID),
		MessageRequest: &types.MessageRequest{
			Addresses: map[string]types.AddressConfiguration{
				recipient: {ChannelType: types.ChannelTypeSms},
			},
			MessageConfiguration: &types.DirectMessageConfiguration{
				SMSMessage: &types.SMSMessage{
					Body:              aws.String(body),
					MessageType:       types.MessageTypeTransactional,
					OriginationNumber: aws.String(g.originationNumber),
				},
			},
		},
	})
	if err != nil {
		return err
	}

	if out.MessageResponse == nil {
		return errNoResult
	}
	result, ok := out.MessageResponse.Result[recipient]
	if !ok {
		return errNoResult
	}
	if result.DeliveryStatus != types.DeliveryStatusSuccessful {
		return fmt.Errorf("pinpoint delivery status %s: %s", result.DeliveryStatus, aws.ToString(result.StatusMessage))
	}

	g.logger.Debug("sms accepted", map[string]interface{}{"messageId": aws.ToString(result.MessageId)})
	return nil
}
