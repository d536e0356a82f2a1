package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: http.StatusOK},
		{name: "validation", err: NewRequestInvalidError("Invalid location uuid!"), want: http.StatusBadRequest},
		{name: "wrapped validation", err: fmt.Errorf("intake: %w", NewRequestInvalidError("Missing request body!")), want: http.StatusBadRequest},
		{name: "dependency", err: NewSubscriptionWriteFailedError(stderrors.New("boom")), want: http.StatusInternalServerError},
		{name: "unknown trigger", err: NewUnknownTriggerError("{}"), want: http.StatusInternalServerError},
		{name: "plain error", err: stderrors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestResponseMessage(t *testing.T) {
	awsErr := &smithy.GenericAPIError{Code: "ProvisionedThroughputExceededException", Message: "slow down"}

	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "validation message is literal",
			err:  NewRequestInvalidError("Invalid US phone number!"),
			want: "Invalid US phone number!",
		},
		{
			name: "aws api error code wins",
			err:  NewSubscriptionQueryFailedError("loc-1", awsErr),
			want: "Function execution error: ProvisionedThroughputExceededException: slow down",
		},
		{
			name: "unknown trigger is literal",
			err:  NewUnknownTriggerError(""),
			want: "Unknown trigger! I dunno how to handle this!",
		},
		{
			name: "standard error code",
			err:  NewRunInProgressError("MA"),
			want: "Function execution error: RUN_IN_PROGRESS: Notification run already in progress",
		},
		{
			name: "plain error message",
			err:  stderrors.New("connection reset"),
			want: "Function execution error: connection reset",
		},
		{
			name: "nil",
			err:  nil,
			want: "Something went wrong! Unable to get error details.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResponseMessage(tt.err))
		})
	}
}

func TestDependencyErrorUnwraps(t *testing.T) {
	cause := stderrors.New("gateway down")
	err := NewNotificationSendFailedError("+11234567890", cause)

	assert.ErrorIs(t, err, cause)
	assert.True(t, IsCode(err, ErrCodeNotificationSendFailed))
	assert.False(t, IsValidation(err))
	assert.Contains(t, err.Error(), "recipient: +11234567890")
}

func TestConvertToBPMNError(t *testing.T) {
	stdErr := NewSubscriptionDeleteFailedError("loc-1", stderrors.New("denied"))

	bpmn := ConvertToBPMNError(stdErr)
	require.NotNil(t, bpmn)
	assert.Equal(t, "SUBSCRIPTION_DELETE_FAILED", bpmn.Code)

	vars := bpmn.ToErrorVariables()
	assert.Equal(t, "DATABASE", vars["errorCategory"])
	assert.Equal(t, "Subscription delete failed", vars["errorMessage"])
}

func TestLogFields(t *testing.T) {
	awsErr := &smithy.GenericAPIError{Code: "ThrottlingException", Message: "rate exceeded"}
	err := NewSnapshotLoadFailedError("MA/locations.json", awsErr).WithMetadata("region", "MA")

	fields := LogFields(err)
	assert.Equal(t, "SNAPSHOT_LOAD_FAILED", fields["errorCode"])
	assert.Equal(t, "STORAGE", fields["errorCategory"])
	assert.Equal(t, "MA", fields["region"])
	assert.Equal(t, "ThrottlingException", fields["awsErrorCode"])

	plain := LogFields(stderrors.New("boom"))
	assert.Equal(t, "INTERNAL_ERROR", plain["errorCode"])
}
