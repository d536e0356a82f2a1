package createsubscription

import (
	"context"
	stderrors "errors"
	"net/http"
	"testing"

	"findvax-notifier/internal/common/errors"
	"findvax-notifier/internal/common/logger"
	"findvax-notifier/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

const validLocation = "2f4ab6b0-6a2a-4a43-9f6c-6a1c8d5c0a11"

type MockStore struct {
	PutFunc func(ctx context.Context, sub models.Subscription) error
	puts    []models.Subscription
}

func (m *MockStore) Put(ctx context.Context, sub models.Subscription) error {
	m.puts = append(m.puts, sub)
	if m.PutFunc != nil {
		return m.PutFunc(ctx, sub)
	}
	return nil
}

func (m *MockStore) QueryPending(context.Context, string) ([]models.Subscription, error) {
	return nil, nil
}

func (m *MockStore) DeletePending(context.Context, string) (int, error) {
	return 0, nil
}

func createTestHandler(t *testing.T, s *MockStore) *Handler {
	return NewHandler(LoadConfig(), s, logger.NewTestLogger(t))
}

func assertRejected(t *testing.T, err error, message string) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
	assert.Equal(t, http.StatusBadRequest, errors.HTTPStatus(err))
	assert.Equal(t, message, errors.ResponseMessage(err))
}

// ==========================
// Request Parsing Tests
// ==========================

func TestHandler_ParseRequest(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{name: "empty body", body: "", wantMsg: MsgMissingBody},
		{name: "blank body", body: "   \n", wantMsg: MsgMissingBody},
		{name: "null body", body: "null", wantMsg: MsgMissingBody},
		{name: "not json", body: "location=abc", wantMsg: MsgInvalidBody},
		{name: "json array", body: `["a"]`, wantMsg: MsgInvalidBody},
		{name: "empty object", body: `{}`, wantMsg: "Missing or incorrect type for required field `location` in body!"},
		{name: "missing sms", body: `{"location":"x","lang":"en"}`, wantMsg: "Missing or incorrect type for required field `sms` in body!"},
		{name: "numeric sms", body: `{"location":"x","sms":1234567890,"lang":"en"}`, wantMsg: "Missing or incorrect type for required field `sms` in body!"},
		{name: "empty lang", body: `{"location":"x","sms":"1234567890","lang":""}`, wantMsg: "Missing or incorrect type for required field `lang` in body!"},
	}

	h := createTestHandler(t, &MockStore{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.ParseRequest(tt.body)
			assertRejected(t, err, tt.wantMsg)
		})
	}
}

func TestHandler_ParseRequest_Valid(t *testing.T) {
	h := createTestHandler(t, &MockStore{})

	input, err := h.ParseRequest(`{"location":"` + validLocation + `","sms":"(123) 456-7890","lang":"en","extra":true}`)
	require.NoError(t, err)
	assert.Equal(t, &Input{Location: validLocation, SMS: "(123) 456-7890", Lang: "en"}, input)
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	s := &MockStore{}
	h := createTestHandler(t, s)

	output, err := h.Execute(context.Background(), &Input{Location: validLocation, SMS: "123.456.7890", Lang: "fr"})
	require.NoError(t, err)

	require.Len(t, s.puts, 1)
	put := s.puts[0]
	assert.Equal(t, validLocation, put.Location)
	assert.Equal(t, models.Pending, put.IsSent)
	assert.Equal(t, "+11234567890", put.SMS)
	assert.Equal(t, "fr", put.Lang)
	assert.False(t, put.CreatedAt.IsZero())

	assert.Equal(t, StatusSubscribed, output.Status)
	assert.Equal(t, "+11234567890", output.Recipient)
}

func TestHandler_Execute_ValidationFailures(t *testing.T) {
	tests := []struct {
		name    string
		input   *Input
		wantMsg string
	}{
		{
			name:    "location is not a uuid",
			input:   &Input{Location: "not-a-uuid", SMS: "1234567890", Lang: "en"},
			wantMsg: MsgInvalidLocation,
		},
		{
			name:    "phone too short",
			input:   &Input{Location: validLocation, SMS: "456-7890", Lang: "en"},
			wantMsg: MsgInvalidPhone,
		},
		{
			name:    "phone with country code",
			input:   &Input{Location: validLocation, SMS: "+1 123 456 7890", Lang: "en"},
			wantMsg: MsgInvalidPhone,
		},
		{
			name:    "localized language",
			input:   &Input{Location: validLocation, SMS: "1234567890", Lang: "en-US"},
			wantMsg: MsgInvalidLang,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &MockStore{}
			h := createTestHandler(t, s)

			_, err := h.Execute(context.Background(), tt.input)
			assertRejected(t, err, tt.wantMsg)
			assert.Empty(t, s.puts)
		})
	}
}

func TestHandler_HandleRequest_RejectsBadUUIDBeforeWrite(t *testing.T) {
	s := &MockStore{}
	h := createTestHandler(t, s)

	_, err := h.HandleRequest(context.Background(), `{"location":"not-a-uuid","sms":"1234567890","lang":"en"}`)
	assertRejected(t, err, MsgInvalidLocation)
	assert.Empty(t, s.puts)
}

func TestHandler_Execute_StoreFailure(t *testing.T) {
	s := &MockStore{
		PutFunc: func(context.Context, models.Subscription) error {
			return stderrors.New("ResourceNotFoundException")
		},
	}
	h := createTestHandler(t, s)

	_, err := h.Execute(context.Background(), &Input{Location: validLocation, SMS: "1234567890", Lang: "en"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeSubscriptionWriteFailed))
	assert.Equal(t, http.StatusInternalServerError, errors.HTTPStatus(err))
	assert.Equal(t, "Function execution error: SUBSCRIPTION_WRITE_FAILED: Subscription write failed", errors.ResponseMessage(err))
}
