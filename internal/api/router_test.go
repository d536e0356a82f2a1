package api

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/iotest"

	"findvax-notifier/internal/common/errors"
	"findvax-notifier/internal/common/logger"
	createsubscription "findvax-notifier/internal/workers/subscription/create-subscription"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestRouter(t *testing.T, intake Intake, b Broadcaster, ready ReadinessCheck) http.Handler {
	return NewRouter(RouterDeps{
		Intake:      intake,
		Broadcaster: b,
		Ready:       ready,
		Logger:      logger.NewTestLogger(t),
	})
}

func TestRouter_Subscribe(t *testing.T) {
	intake := &MockIntake{}
	r := createTestRouter(t, intake, nil, nil)

	body := `{"location":"2f4ab6b0-6a2a-4a43-9f6c-6a1c8d5c0a11","sms":"1234567890","lang":"en"}`
	req := httptest.NewRequest(http.MethodPut, "/subscriptions", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Equal(t, []string{body}, intake.bodies)
}

func TestRouter_Subscribe_Rejected(t *testing.T) {
	intake := &MockIntake{HandleRequestFunc: func(context.Context, string) (*createsubscription.Output, error) {
		return nil, errors.NewRequestInvalidError("Invalid location uuid!")
	}}
	r := createTestRouter(t, intake, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/subscriptions", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"message":"Invalid location uuid!"}`, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestRouter_Subscribe_UnreadableBody(t *testing.T) {
	intake := &MockIntake{}
	r := createTestRouter(t, intake, nil, nil)

	req := httptest.NewRequest(http.MethodPut, "/subscriptions", iotest.ErrReader(stderrors.New("connection reset")))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"message":"Invalid request body!"}`, rec.Body.String())
	assert.Empty(t, intake.bodies)
}

func TestRouter_Health(t *testing.T) {
	r := createTestRouter(t, &MockIntake{}, nil, nil)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"healthy"`)
}

func TestRouter_Ready(t *testing.T) {
	tests := []struct {
		name   string
		check  ReadinessCheck
		status int
	}{
		{name: "ready", check: func(context.Context) error { return nil }, status: http.StatusOK},
		{name: "not ready", check: func(context.Context) error { return stderrors.New("redis down") }, status: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := createTestRouter(t, &MockIntake{}, nil, tt.check)

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestRouter_Metrics(t *testing.T) {
	r := createTestRouter(t, &MockIntake{}, nil, nil)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestRouter_Megaphone(t *testing.T) {
	b := &MockBroadcaster{}
	r := createTestRouter(t, &MockIntake{}, b, nil)

	req := httptest.NewRequest(http.MethodPut, "/admin/megaphone?state=MA", nil)
	req.Header.Set("Origin", "https://findvax.us")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, []string{"MA"}, b.regions)
}

func TestRouter_Megaphone_Preflight(t *testing.T) {
	b := &MockBroadcaster{}
	r := createTestRouter(t, &MockIntake{}, b, nil)

	req := httptest.NewRequest(http.MethodOptions, "/admin/megaphone", nil)
	req.Header.Set("Origin", "https://findvax.us")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Less(t, rec.Code, 300)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, b.regions)
}

func TestRouter_MegaphoneDisabled(t *testing.T) {
	r := createTestRouter(t, &MockIntake{}, nil, nil)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/admin/megaphone", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
