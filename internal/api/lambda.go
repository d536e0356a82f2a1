package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"findvax-notifier/internal/common/errors"
	"findvax-notifier/internal/common/logger"
	"findvax-notifier/internal/notify"
	createsubscription "findvax-notifier/internal/workers/subscription/create-subscription"

	"github.com/aws/aws-lambda-go/events"
)

// Intake validates and stores one subscription request body.
type Intake interface {
	HandleRequest(ctx context.Context, body string) (*createsubscription.Output, error)
}

// Runner runs one notification cycle for a region.
type Runner interface {
	Run(ctx context.Context, region string) (*notify.RunReport, error)
}

// Broadcaster sends the megaphone message for a region.
type Broadcaster interface {
	Broadcast(ctx context.Context, region string) (*notify.BroadcastReport, error)
}

// rawEvent holds the fields used to tell trigger kinds apart.
type rawEvent struct {
	HTTPMethod     string          `json:"httpMethod"`
	Body           *string         `json:"body"`
	RequestPayload json.RawMessage `json:"requestPayload"`
}

type triggerPayload struct {
	State string `json:"state"`
}

// LambdaRouter is the primary serverless entry point. API Gateway events go
// to intake, scraper completion events run the pipeline, anything else is
// rejected.
type LambdaRouter struct {
	intake Intake
	runner Runner
	logger logger.Logger
}

func NewLambdaRouter(intake Intake, runner Runner, log logger.Logger) *LambdaRouter {
	return &LambdaRouter{intake: intake, runner: runner, logger: log.WithFields(map[string]interface{}{"component": "lambda"})}
}

func (r *LambdaRouter) Handle(ctx context.Context, event json.RawMessage) (events.APIGatewayProxyResponse, error) {
	var ev rawEvent
	if err := json.Unmarshal(event, &ev); err != nil {
		return Failure(errors.NewUnknownTriggerError(err.Error()), nil, r.logger), nil
	}

	switch {
	case ev.HTTPMethod != "":
		body := ""
		if ev.Body != nil {
			body = *ev.Body
		}
		if _, err := r.intake.HandleRequest(ctx, body); err != nil {
			return Failure(err, nil, r.logger), nil
		}
		return Success(nil), nil

	case hasPayload(ev.RequestPayload):
		region := regionFromPayload(ev.RequestPayload)
		if _, err := r.runner.Run(ctx, region); err != nil {
			if errors.IsCode(err, errors.ErrCodeRunInProgress) {
				return Success(nil), nil
			}
			return Failure(err, nil, r.logger), nil
		}
		return Success(nil), nil

	default:
		return Failure(errors.NewUnknownTriggerError(""), nil, r.logger), nil
	}
}

// MegaphoneHandler is the administrative serverless entry point. Every
// response carries CORS headers.
type MegaphoneHandler struct {
	broadcaster Broadcaster
	logger      logger.Logger
}

func NewMegaphoneHandler(broadcaster Broadcaster, log logger.Logger) *MegaphoneHandler {
	return &MegaphoneHandler{broadcaster: broadcaster, logger: log.WithFields(map[string]interface{}{"component": "megaphone-lambda"})}
}

func (h *MegaphoneHandler) Handle(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if event.HTTPMethod == http.MethodOptions {
		return Success(CORSHeaders), nil
	}

	region := event.QueryStringParameters["state"]
	if _, err := h.broadcaster.Broadcast(ctx, region); err != nil {
		return Failure(err, CORSHeaders, h.logger), nil
	}
	return Success(CORSHeaders), nil
}

func hasPayload(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) && !bytes.Equal(trimmed, []byte("false"))
}

func regionFromPayload(raw json.RawMessage) string {
	var p triggerPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return ""
	}
	return p.State
}
