package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"carewatch-data/internal/domain"
)

type PostgresDevicesRepo struct {
	db *sql.DB
}

func NewPostgresDevicesRepo(db *sql.DB) *PostgresDevicesRepo {
	return &PostgresDevicesRepo{db: db}
}

// 确保实现了接口
var _ DevicesRepository = (*PostgresDevicesRepo)(nil)

// deviceSortColumns 排序字段白名单（外部输入不直接拼入 SQL）
var deviceSortColumns = map[string]string{
	"created_at":  "created_at",
	"device_name": "device_name",
	"id":          "id",
}

func (r *PostgresDevicesRepo) ListDevices(ctx context.Context, page, size int, search, sortBy, sortOrder string) ([]*domain.Device, int, error) {
	where := []string{"1=1"}
	args := []any{}
	argN := 1

	if search != "" {
		where = append(where, fmt.Sprintf("device_name ILIKE $%d", argN))
		args = append(args, "%"+search+"%")
		argN++
	}

	whereClause := strings.Join(where, " AND ")

	queryCount := `SELECT COUNT(*) FROM devices WHERE ` + whereClause
	var total int
	if err := r.db.QueryRowContext(ctx, queryCount, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count devices: %w", err)
	}

	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 10
	}
	offset := (page - 1) * size

	orderBy := orderClause(deviceSortColumns, sortBy, sortOrder, "created_at")

	q := fmt.Sprintf(`
		SELECT id, device_name, status, user_id, created_at
		FROM devices
		WHERE %s
		ORDER BY %s
		LIMIT $%d OFFSET $%d`, whereClause, orderBy, argN, argN+1)
	args = append(args, size, offset)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list devices: %w", err)
	}
	defer rows.Close()

	var out []*domain.Device
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return out, total, nil
}

func (r *PostgresDevicesRepo) GetActiveDeviceByName(ctx context.Context, deviceName string) (*domain.Device, error) {
	// 多行匹配时取最近创建的一台（确定性兜底，避免 single-row 取数歧义）
	q := `
		SELECT id, device_name, status, user_id, created_at
		FROM devices
		WHERE device_name = $1 AND status = true
		ORDER BY created_at DESC
		LIMIT 1`
	return r.getOne(ctx, q, deviceName)
}

func (r *PostgresDevicesRepo) GetDeviceByOwner(ctx context.Context, userID string) (*domain.Device, error) {
	q := `
		SELECT id, device_name, status, user_id, created_at
		FROM devices
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 1`
	return r.getOne(ctx, q, userID)
}

func (r *PostgresDevicesRepo) CreateDevice(ctx context.Context, device *domain.Device) (int64, error) {
	q := `
		INSERT INTO devices (device_name, status, user_id)
		VALUES ($1, $2, $3)
		RETURNING id`
	var id int64
	err := r.db.QueryRowContext(ctx, q, device.DeviceName, device.Status, device.UserID).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create device: %w", err)
	}
	return id, nil
}

func (r *PostgresDevicesRepo) getOne(ctx context.Context, q string, arg any) (*domain.Device, error) {
	row := r.db.QueryRowContext(ctx, q, arg)

	var d domain.Device
	var status sql.NullBool
	var userID sql.NullString
	err := row.Scan(&d.ID, &d.DeviceName, &status, &userID, &d.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get device: %w", err)
	}
	if status.Valid {
		d.Status = &status.Bool
	}
	if userID.Valid {
		d.UserID = &userID.String
	}
	return &d, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDevice(row rowScanner) (*domain.Device, error) {
	var d domain.Device
	var status sql.NullBool
	var userID sql.NullString
	if err := row.Scan(&d.ID, &d.DeviceName, &status, &userID, &d.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to scan device: %w", err)
	}
	if status.Valid {
		d.Status = &status.Bool
	}
	if userID.Valid {
		d.UserID = &userID.String
	}
	return &d, nil
}

// orderClause 组装 ORDER BY 片段；sortBy 必须命中白名单，否则回退默认列
func orderClause(allowed map[string]string, sortBy, sortOrder, def string) string {
	col, ok := allowed[sortBy]
	if !ok {
		col = def
	}
	dir := "DESC"
	if strings.EqualFold(sortOrder, "asc") {
		dir = "ASC"
	}
	return col + " " + dir
}
