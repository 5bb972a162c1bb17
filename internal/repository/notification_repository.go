package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/sportmaps/sportmaps-server/internal/model"
)

// NotificationRepo persists rows of the 'notifications' table.  Rows are
// written by the auth event consumer and read on the dashboard.
type NotificationRepo struct{ DB *sql.DB }

func NewNotificationRepo(db *sql.DB) *NotificationRepo { return &NotificationRepo{DB: db} }

// Insert stores one notification and returns its generated id.
func (r *NotificationRepo) Insert(ctx context.Context, userID, kind, title, body string) (string, error) {
	id := uuid.NewString()
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO notifications (id, user_id, kind, title, body) VALUES (?,?,?,?,?)",
		id, userID, kind, title, body)
	if err != nil {
		return "", err
	}
	return id, nil
}

// ListForUser returns the user's most recent notifications.
func (r *NotificationRepo) ListForUser(ctx context.Context, userID string, limit int) ([]model.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,user_id,kind,title,body,is_read,created_at FROM notifications WHERE user_id=? ORDER BY created_at DESC LIMIT ?",
		userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Notification{}
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Kind, &n.Title, &n.Body, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkRead flags one notification as read for its owner.
func (r *NotificationRepo) MarkRead(ctx context.Context, userID, id string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE notifications SET is_read=1 WHERE id=? AND user_id=?", id, userID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
