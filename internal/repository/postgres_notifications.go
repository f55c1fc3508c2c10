package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"carewatch-data/internal/domain"
)

type PostgresNotificationsRepo struct {
	db *sql.DB
}

func NewPostgresNotificationsRepo(db *sql.DB) *PostgresNotificationsRepo {
	return &PostgresNotificationsRepo{db: db}
}

// 确保实现了接口
var _ NotificationsRepository = (*PostgresNotificationsRepo)(nil)

var notificationSortColumns = map[string]string{
	"created_at": "created_at",
	"title":      "title",
	"id":         "id",
}

func (r *PostgresNotificationsRepo) BulkInsert(ctx context.Context, notifications []*domain.Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	// 单条 VALUES 多行插入；created_at 由评估器生成（保留既有行为）
	values := make([]string, 0, len(notifications))
	args := make([]any, 0, len(notifications)*5)
	argN := 1
	for _, n := range notifications {
		values = append(values, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d)", argN, argN+1, argN+2, argN+3, argN+4))
		args = append(args, n.UserID, n.Title, n.Message, n.IsRead, n.CreatedAt)
		argN += 5
	}

	q := `INSERT INTO notifications (user_id, title, message, is_read, created_at) VALUES ` +
		strings.Join(values, ", ")
	if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("failed to bulk insert notifications: %w", err)
	}
	return nil
}

func (r *PostgresNotificationsRepo) ListNotifications(ctx context.Context, page, size int, search, sortBy, sortOrder string) ([]*domain.Notification, int, error) {
	where := "1=1"
	args := []any{}
	argN := 1
	if search != "" {
		where = fmt.Sprintf("user_id ILIKE $%d", argN)
		args = append(args, "%"+search+"%")
		argN++
	}

	var total int
	queryCount := `SELECT COUNT(*) FROM notifications WHERE ` + where
	if err := r.db.QueryRowContext(ctx, queryCount, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 10
	}
	offset := (page - 1) * size

	orderBy := orderClause(notificationSortColumns, sortBy, sortOrder, "created_at")
	q := fmt.Sprintf(`
		SELECT id, user_id, title, message, is_read, link_url, created_at
		FROM notifications
		WHERE %s
		ORDER BY %s
		LIMIT $%d OFFSET $%d`, where, orderBy, argN, argN+1)
	args = append(args, size, offset)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var out []*domain.Notification
	for rows.Next() {
		var n domain.Notification
		var message, linkURL sql.NullString
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &message, &n.IsRead, &linkURL, &n.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan notification: %w", err)
		}
		if message.Valid {
			n.Message = &message.String
		}
		if linkURL.Valid {
			n.LinkURL = &linkURL.String
		}
		out = append(out, &n)
	}
	return out, total, rows.Err()
}
