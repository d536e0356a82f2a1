package api

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"testing"

	"findvax-notifier/internal/common/errors"
	"findvax-notifier/internal/common/logger"
	"findvax-notifier/internal/notify"
	createsubscription "findvax-notifier/internal/workers/subscription/create-subscription"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLambdaRouter_Handle(t *testing.T) {
	tests := []struct {
		name        string
		event       string
		intakeErr   error
		runErr      error
		wantStatus  int
		wantBody    string
		wantIntake  []string
		wantRegions []string
	}{
		{
			name:       "api gateway request",
			event:      `{"httpMethod":"PUT","body":"{\"location\":\"x\"}"}`,
			wantStatus: 200,
			wantBody:   "",
			wantIntake: []string{`{"location":"x"}`},
		},
		{
			name:       "api gateway request without body",
			event:      `{"httpMethod":"PUT","body":null}`,
			intakeErr:  errors.NewRequestInvalidError("Missing request body!"),
			wantStatus: 400,
			wantBody:   `{"message":"Missing request body!"}`,
			wantIntake: []string{""},
		},
		{
			name:       "intake dependency failure",
			event:      `{"httpMethod":"PUT","body":"{}"}`,
			intakeErr:  errors.NewSubscriptionWriteFailedError(&smithy.GenericAPIError{Code: "ResourceNotFoundException", Message: "Requested resource not found"}),
			wantStatus: 500,
			wantBody:   `{"message":"Function execution error: ResourceNotFoundException: Requested resource not found"}`,
			wantIntake: []string{"{}"},
		},
		{
			name:        "scraper completion",
			event:       `{"requestPayload":{"state":"NH"},"responsePayload":{}}`,
			wantStatus:  200,
			wantRegions: []string{"NH"},
		},
		{
			name:        "scraper completion without state",
			event:       `{"requestPayload":{}}`,
			wantStatus:  200,
			wantRegions: []string{""},
		},
		{
			name:        "pipeline failure",
			event:       `{"requestPayload":{"state":"MA"}}`,
			runErr:      errors.NewSnapshotLoadFailedError("MA/locations.json", stderrors.New("boom")),
			wantStatus:  500,
			wantBody:    `{"message":"Function execution error: SNAPSHOT_LOAD_FAILED: Snapshot load failed"}`,
			wantRegions: []string{"MA"},
		},
		{
			name:        "overlapping run is not an error",
			event:       `{"requestPayload":{"state":"MA"}}`,
			runErr:      errors.NewRunInProgressError("MA"),
			wantStatus:  200,
			wantRegions: []string{"MA"},
		},
		{
			name:       "unknown trigger",
			event:      `{"source":"aws.events"}`,
			wantStatus: 500,
			wantBody:   `{"message":"Unknown trigger! I dunno how to handle this!"}`,
		},
		{
			name:       "null payload is unknown",
			event:      `{"requestPayload":null}`,
			wantStatus: 500,
			wantBody:   `{"message":"Unknown trigger! I dunno how to handle this!"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			intake := &MockIntake{HandleRequestFunc: func(context.Context, string) (*createsubscription.Output, error) {
				return &createsubscription.Output{}, tt.intakeErr
			}}
			runner := &MockRunner{RunFunc: func(_ context.Context, region string) (*notify.RunReport, error) {
				return &notify.RunReport{Region: region}, tt.runErr
			}}
			router := NewLambdaRouter(intake, runner, logger.NewTestLogger(t))

			resp, err := router.Handle(context.Background(), json.RawMessage(tt.event))
			require.NoError(t, err)

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantBody, resp.Body)
			assert.False(t, resp.IsBase64Encoded)
			assert.Empty(t, resp.Headers)
			assert.NotNil(t, resp.MultiValueHeaders)
			assert.Equal(t, tt.wantIntake, intake.bodies)
			assert.Equal(t, tt.wantRegions, runner.regions)
		})
	}
}

func TestLambdaRouter_ResponseShape(t *testing.T) {
	router := NewLambdaRouter(&MockIntake{}, &MockRunner{}, logger.NewNoOpLogger())

	resp, err := router.Handle(context.Background(), json.RawMessage(`{"httpMethod":"PUT","body":"{}"}`))
	require.NoError(t, err)

	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	var shape map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &shape))
	assert.Equal(t, float64(200), shape["statusCode"])
	assert.Equal(t, "", shape["body"])
}

func TestMegaphoneHandler_Handle(t *testing.T) {
	b := &MockBroadcaster{}
	h := NewMegaphoneHandler(b, logger.NewTestLogger(t))

	resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod:            "PUT",
		QueryStringParameters: map[string]string{"state": "MA"},
	})
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, CORSHeaders, resp.Headers)
	assert.Equal(t, []string{"MA"}, b.regions)
}

func TestMegaphoneHandler_Preflight(t *testing.T) {
	b := &MockBroadcaster{}
	h := NewMegaphoneHandler(b, logger.NewTestLogger(t))

	resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{HTTPMethod: "OPTIONS"})
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "OPTIONS,PUT", resp.Headers["Access-Control-Allow-Methods"])
	assert.Empty(t, b.regions)
}

func TestMegaphoneHandler_Failure(t *testing.T) {
	b := &MockBroadcaster{BroadcastFunc: func(context.Context, string) (*notify.BroadcastReport, error) {
		return nil, stderrors.New("socket hang up")
	}}
	h := NewMegaphoneHandler(b, logger.NewTestLogger(t))

	resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{HTTPMethod: "PUT"})
	require.NoError(t, err)
	assert.Equal(t, 500, resp.StatusCode)
	assert.Equal(t, `{"message":"Function execution error: socket hang up"}`, resp.Body)
	assert.Equal(t, "*", resp.Headers["Access-Control-Allow-Origin"])
}
