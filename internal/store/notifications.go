package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/shramba/internal/model"
)

// CreateNotification adds a notification to an account.
func CreateNotification(ctx context.Context, db *sql.DB, accountID int64, itemID *int64, kind, message string) (*model.Notification, error) {
	return createNotification(ctx, db, accountID, itemID, kind, message)
}

func createNotification(ctx context.Context, q Querier, accountID int64, itemID *int64, kind, message string) (*model.Notification, error) {
	result, err := q.ExecContext(ctx,
		`INSERT INTO notifications (account_id, item_id, kind, message) VALUES (?, ?, ?, ?)`,
		accountID, itemID, kind, message,
	)
	if err != nil {
		return nil, wrap("creating notification", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting notification id: %w", err)
	}

	n := &model.Notification{}
	err = q.QueryRowContext(ctx,
		`SELECT id, account_id, item_id, kind, message, read_at, created_at FROM notifications WHERE id = ?`, id,
	).Scan(&n.ID, &n.AccountID, &n.ItemID, &n.Kind, &n.Message, &n.ReadAt, &n.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("getting notification: %w", err)
	}
	return n, nil
}

// ListNotifications returns an account's notifications, newest first.
func ListNotifications(ctx context.Context, db *sql.DB, accountID int64, unreadOnly bool) ([]model.Notification, error) {
	query := `SELECT id, account_id, item_id, kind, message, read_at, created_at
	          FROM notifications WHERE account_id = ?`
	if unreadOnly {
		query += ` AND read_at IS NULL`
	}
	query += ` ORDER BY id DESC`

	rows, err := db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	defer rows.Close()

	var notes []model.Notification
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.AccountID, &n.ItemID, &n.Kind, &n.Message, &n.ReadAt, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning notification: %w", err)
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// MarkNotificationRead marks a notification as read. Marking twice is a no-op.
func MarkNotificationRead(ctx context.Context, db *sql.DB, accountID, id int64) error {
	result, err := db.ExecContext(ctx,
		`UPDATE notifications SET read_at = COALESCE(read_at, CURRENT_TIMESTAMP) WHERE id = ? AND account_id = ?`,
		id, accountID,
	)
	if err != nil {
		return fmt.Errorf("marking notification read: %w", err)
	}
	return requireRow(result, "notification", id)
}
