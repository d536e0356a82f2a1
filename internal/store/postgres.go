package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"findvax-notifier/internal/common/logger"
	"findvax-notifier/internal/models"
)

// PostgresStore is the relational backend for deployments without DynamoDB.
// The table is created by database.PostgresClient.EnsureSubscriptionTable and
// keyed on (location, sms) like the document store, so Put overwrites.
type PostgresStore struct {
	db     *sql.DB
	table  string
	logger logger.Logger
}

func NewPostgresStore(db *sql.DB, table string, log logger.Logger) *PostgresStore {
	return &PostgresStore{
		db:     db,
		table:  table,
		logger: log.WithFields(map[string]interface{}{"component": "store", "backend": "postgres", "table": table}),
	}
}

func (s *PostgresStore) Put(ctx context.Context, sub models.Subscription) error {
	createdAt := sub.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	query := fmt.Sprintf(`INSERT INTO %s (location, sms, lang, is_sent, created_at) VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (location, sms) DO UPDATE SET lang = EXCLUDED.lang, is_sent = EXCLUDED.is_sent, created_at = EXCLUDED.created_at`, s.table)
	if _, err := s.db.ExecContext(ctx, query, sub.Location, sub.SMS, sub.Lang, sub.IsSent, createdAt); err != nil {
		return err
	}

	s.logger.Info("added notification db item", map[string]interface{}{
		"location": sub.Location,
		"lang":     sub.Lang,
	})
	return nil
}

func (s *PostgresStore) QueryPending(ctx context.Context, locationID string) ([]models.Subscription, error) {
	query := fmt.Sprintf(`SELECT location, is_sent, sms, lang FROM %s WHERE location = $1 AND is_sent = $2`, s.table)
	rows, err := s.db.QueryContext(ctx, query, locationID, models.Pending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []models.Subscription
	for rows.Next() {
		var sub models.Subscription
		if err := rows.Scan(&sub.Location, &sub.IsSent, &sub.SMS, &sub.Lang); err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

func (s *PostgresStore) DeletePending(ctx context.Context, locationID string) (int, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE location = $1 AND is_sent = $2`, s.table)
	res, err := s.db.ExecContext(ctx, query, locationID, models.Pending)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	s.logger.Info("deleted pending notification items", map[string]interface{}{
		"location": locationID,
		"count":    n,
	})
	return int(n), nil
}
