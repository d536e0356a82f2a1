package store

import (
	"context"
	"errors"
	"testing"

	"findvax-notifier/internal/common/logger"
	"findvax-notifier/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresStore_Put(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := NewPostgresStore(db, "notify", logger.NewTestLogger(t))

	mock.ExpectExec(`INSERT INTO notify \(location, sms, lang, is_sent, created_at\)`).
		WithArgs("loc-a", "+11234567890", "en", models.Pending, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = s.Put(context.Background(), models.Subscription{Location: "loc-a", SMS: "+11234567890", Lang: "en"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Put_Error(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := NewPostgresStore(db, "notify", logger.NewTestLogger(t))

	mock.ExpectExec(`INSERT INTO notify`).WillReturnError(errors.New("connection refused"))

	err = s.Put(context.Background(), models.Subscription{Location: "loc-a", SMS: "+11234567890", Lang: "en"})
	assert.EqualError(t, err, "connection refused")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_QueryPending(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := NewPostgresStore(db, "notify", logger.NewTestLogger(t))

	rows := sqlmock.NewRows([]string{"location", "is_sent", "sms", "lang"}).
		AddRow("loc-a", 0, "+11111111111", "en").
		AddRow("loc-a", 0, "+12222222222", "es")
	mock.ExpectQuery(`SELECT location, is_sent, sms, lang FROM notify WHERE location = \$1 AND is_sent = \$2`).
		WithArgs("loc-a", models.Pending).
		WillReturnRows(rows)

	subs, err := s.QueryPending(context.Background(), "loc-a")
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, "+12222222222", subs[1].SMS)
	assert.Equal(t, "es", subs[1].Lang)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_DeletePending(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := NewPostgresStore(db, "notify", logger.NewTestLogger(t))

	mock.ExpectExec(`DELETE FROM notify WHERE location = \$1 AND is_sent = \$2`).
		WithArgs("loc-a", models.Pending).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := s.DeletePending(context.Background(), "loc-a")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
