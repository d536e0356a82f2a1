package notify

import (
	"context"
	"errors"
	"testing"

	apperrors "findvax-notifier/internal/common/errors"
	"findvax-notifier/internal/common/logger"
	"findvax-notifier/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func messagesFixture() []models.ComposedMessage {
	return []models.ComposedMessage{
		{Recipient: "+11111111111", Body: "one"},
		{Recipient: "+12222222222", Body: "two"},
		{Recipient: "+13333333333", Body: "three"},
	}
}

func TestDispatcher_Dispatch_Success(t *testing.T) {
	s := newMockStore()
	s.add("A", "+11111111111", "en")
	s.add("A", "+12222222222", "en")
	s.add("B", "+13333333333", "en")
	gw := newMockGateway()

	d := NewDispatcher(gw, s, 2, logger.NewTestLogger(t))
	result, err := d.Dispatch(context.Background(), messagesFixture(), qualifyingFixture())
	require.NoError(t, err)

	assert.Equal(t, 3, result.Sent)
	assert.Equal(t, 3, result.Retired)
	assert.Equal(t, "two", gw.sent["+12222222222"])
	assert.ElementsMatch(t, []string{"A", "B"}, s.deleted)
	assert.Empty(t, s.pending)
}

func TestDispatcher_Dispatch_GatewayFailurePreventsDeletion(t *testing.T) {
	s := newMockStore()
	s.add("A", "+11111111111", "en")
	s.add("B", "+12222222222", "en")
	gw := newMockGateway()
	gw.failFor["+12222222222"] = true

	d := NewDispatcher(gw, s, 1, logger.NewTestLogger(t))
	_, err := d.Dispatch(context.Background(), messagesFixture(), qualifyingFixture())
	require.Error(t, err)

	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeNotificationSendFailed))
	assert.Empty(t, s.deleted)
	assert.Len(t, s.pending, 2)
}

func TestDispatcher_Dispatch_NoMessagesStillRetires(t *testing.T) {
	s := newMockStore()
	gw := newMockGateway()

	d := NewDispatcher(gw, s, 4, logger.NewTestLogger(t))
	result, err := d.Dispatch(context.Background(), nil, qualifyingFixture())
	require.NoError(t, err)

	assert.Zero(t, result.Sent)
	assert.ElementsMatch(t, []string{"A", "B"}, s.deleted)
}

func TestDispatcher_Retire_DeleteFailure(t *testing.T) {
	s := newMockStore()
	s.deleteErr = errors.New("conditional check failed")

	d := NewDispatcher(newMockGateway(), s, 1, logger.NewTestLogger(t))
	_, err := d.Retire(context.Background(), qualifyingFixture())
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeSubscriptionDeleteFailed))
}

func TestDispatcher_Send_DoesNotDelete(t *testing.T) {
	s := newMockStore()
	s.add("A", "+11111111111", "en")
	gw := newMockGateway()

	d := NewDispatcher(gw, s, 0, logger.NewTestLogger(t))
	sent, err := d.Send(context.Background(), messagesFixture()[:1])
	require.NoError(t, err)

	assert.Equal(t, 1, sent)
	assert.Empty(t, s.deleted)
	assert.Len(t, s.pending["A"], 1)
}
