// Package api exposes intake, pipeline and broadcast over serverless events
// and plain HTTP.
package api

import (
	"encoding/json"

	"findvax-notifier/internal/common/errors"
	"findvax-notifier/internal/common/logger"

	"github.com/aws/aws-lambda-go/events"
)

// CORSHeaders are returned by the administrative entry points.
var CORSHeaders = map[string]string{
	"Access-Control-Allow-Headers": "Content-Type,X-Amz-Date,Authorization,X-Api-Key,X-Amz-Security-Token",
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Methods": "OPTIONS,PUT",
}

type messageBody struct {
	Message string `json:"message"`
}

// ErrorBody renders err as the {"message": ...} body callers see.
func ErrorBody(err error) []byte {
	body, mErr := json.Marshal(messageBody{Message: errors.ResponseMessage(err)})
	if mErr != nil {
		return []byte(`{"message":"Something went wrong! Unable to get error details."}`)
	}
	return body
}

// Success is an empty 200 proxy response.
func Success(headers map[string]string) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		IsBase64Encoded:   false,
		StatusCode:        200,
		Headers:           copyHeaders(headers),
		MultiValueHeaders: map[string][]string{},
		Body:              "",
	}
}

// Failure logs err with full detail and renders it as a proxy response.
func Failure(err error, headers map[string]string, log logger.Logger) events.APIGatewayProxyResponse {
	log.Error("request failed", errors.LogFields(err))
	return events.APIGatewayProxyResponse{
		IsBase64Encoded:   false,
		StatusCode:        errors.HTTPStatus(err),
		Headers:           copyHeaders(headers),
		MultiValueHeaders: map[string][]string{},
		Body:              string(ErrorBody(err)),
	}
}

func copyHeaders(headers map[string]string) map[string]string {
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		out[k] = v
	}
	return out
}
