package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"carewatch-data/internal/domain"
)

type PostgresReadingsRepo struct {
	db *sql.DB
}

func NewPostgresReadingsRepo(db *sql.DB) *PostgresReadingsRepo {
	return &PostgresReadingsRepo{db: db}
}

// 确保实现了接口
var _ ReadingsRepository = (*PostgresReadingsRepo)(nil)

// readingSortColumns 读数表共用的排序字段白名单
var readingSortColumns = map[string]string{
	"created_at": "created_at",
	"device_id":  "device_id",
	"id":         "id",
}

// ---- 写入 ----

func (r *PostgresReadingsRepo) InsertVitals(ctx context.Context, v *domain.VitalsReading) (int64, error) {
	q := `
		INSERT INTO heartrate (device_id, heart_rate, spo2)
		VALUES ($1, $2, $3)
		RETURNING id`
	var id int64
	if err := r.db.QueryRowContext(ctx, q, v.DeviceID, v.HeartRate, v.SpO2).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to insert vitals reading: %w", err)
	}
	return id, nil
}

func (r *PostgresReadingsRepo) InsertLocation(ctx context.Context, l *domain.LocationReading) (int64, error) {
	q := `
		INSERT INTO locationdata (device_id, latitude, longitude)
		VALUES ($1, $2, $3)
		RETURNING id`
	var id int64
	if err := r.db.QueryRowContext(ctx, q, l.DeviceID, l.Latitude, l.Longitude).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to insert location reading: %w", err)
	}
	return id, nil
}

func (r *PostgresReadingsRepo) InsertMotion(ctx context.Context, m *domain.MotionReading) (int64, error) {
	q := `
		INSERT INTO motion_data (device_id, accel_x, accel_y, accel_z, gyro_x, gyro_y, gyro_z, temperature)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	var id int64
	err := r.db.QueryRowContext(ctx, q,
		m.DeviceID, m.AccelX, m.AccelY, m.AccelZ, m.GyroX, m.GyroY, m.GyroZ, m.Temperature,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert motion reading: %w", err)
	}
	return id, nil
}

func (r *PostgresReadingsRepo) InsertFallEvent(ctx context.Context, f *domain.FallEvent) (int64, error) {
	q := `
		INSERT INTO falldetection (device_id, fall_detected)
		VALUES ($1, $2)
		RETURNING id`
	var id int64
	if err := r.db.QueryRowContext(ctx, q, f.DeviceID, f.FallDetected).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to insert fall event: %w", err)
	}
	return id, nil
}

// ---- 时间窗口查询 ----

func (r *PostgresReadingsRepo) VitalsInWindow(ctx context.Context, deviceID string, start, end time.Time) ([]*domain.VitalsReading, error) {
	q := `
		SELECT id, device_id, heart_rate, spo2, created_at
		FROM heartrate
		WHERE device_id = $1 AND created_at >= $2 AND created_at < $3`
	rows, err := r.db.QueryContext(ctx, q, deviceID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query vitals window: %w", err)
	}
	defer rows.Close()

	var out []*domain.VitalsReading
	for rows.Next() {
		v, err := scanVitals(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *PostgresReadingsRepo) LocationsInWindow(ctx context.Context, deviceID string, start, end time.Time) ([]*domain.LocationReading, error) {
	q := `
		SELECT id, device_id, latitude, longitude, created_at
		FROM locationdata
		WHERE device_id = $1 AND created_at >= $2 AND created_at < $3`
	rows, err := r.db.QueryContext(ctx, q, deviceID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query locations window: %w", err)
	}
	defer rows.Close()

	var out []*domain.LocationReading
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *PostgresReadingsRepo) MotionInWindow(ctx context.Context, deviceID string, start, end time.Time) ([]*domain.MotionReading, error) {
	q := `
		SELECT id, device_id, accel_x, accel_y, accel_z, gyro_x, gyro_y, gyro_z, temperature, created_at
		FROM motion_data
		WHERE device_id = $1 AND created_at >= $2 AND created_at < $3`
	rows, err := r.db.QueryContext(ctx, q, deviceID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query motion window: %w", err)
	}
	defer rows.Close()

	var out []*domain.MotionReading
	for rows.Next() {
		m, err := scanMotion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *PostgresReadingsRepo) FallEventsInWindow(ctx context.Context, deviceID string, start, end time.Time) ([]*domain.FallEvent, error) {
	q := `
		SELECT id, device_id, fall_detected, created_at
		FROM falldetection
		WHERE device_id = $1 AND created_at >= $2 AND created_at < $3`
	rows, err := r.db.QueryContext(ctx, q, deviceID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query fall events window: %w", err)
	}
	defer rows.Close()

	var out []*domain.FallEvent
	for rows.Next() {
		f, err := scanFallEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// ---- 分页列表 ----

// listPage 读数表通用的 count + page 查询参数组装
func (r *PostgresReadingsRepo) listPage(ctx context.Context, table, columns string, page, size int, search, sortBy, sortOrder string) (*sql.Rows, int, error) {
	where := "1=1"
	args := []any{}
	argN := 1
	if search != "" {
		where = fmt.Sprintf("device_id ILIKE $%d", argN)
		args = append(args, "%"+search+"%")
		argN++
	}

	var total int
	queryCount := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s`, table, where)
	if err := r.db.QueryRowContext(ctx, queryCount, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count %s: %w", table, err)
	}

	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 10
	}
	offset := (page - 1) * size

	orderBy := orderClause(readingSortColumns, sortBy, sortOrder, "created_at")
	q := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s
		ORDER BY %s
		LIMIT $%d OFFSET $%d`, columns, table, where, orderBy, argN, argN+1)
	args = append(args, size, offset)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list %s: %w", table, err)
	}
	return rows, total, nil
}

func (r *PostgresReadingsRepo) ListVitals(ctx context.Context, page, size int, search, sortBy, sortOrder string) ([]*domain.VitalsReading, int, error) {
	rows, total, err := r.listPage(ctx, "heartrate", "id, device_id, heart_rate, spo2, created_at", page, size, search, sortBy, sortOrder)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*domain.VitalsReading
	for rows.Next() {
		v, err := scanVitals(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, v)
	}
	return out, total, rows.Err()
}

func (r *PostgresReadingsRepo) ListLocations(ctx context.Context, page, size int, search, sortBy, sortOrder string) ([]*domain.LocationReading, int, error) {
	rows, total, err := r.listPage(ctx, "locationdata", "id, device_id, latitude, longitude, created_at", page, size, search, sortBy, sortOrder)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*domain.LocationReading
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, l)
	}
	return out, total, rows.Err()
}

func (r *PostgresReadingsRepo) ListMotion(ctx context.Context, page, size int, search, sortBy, sortOrder string) ([]*domain.MotionReading, int, error) {
	rows, total, err := r.listPage(ctx, "motion_data", "id, device_id, accel_x, accel_y, accel_z, gyro_x, gyro_y, gyro_z, temperature, created_at", page, size, search, sortBy, sortOrder)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*domain.MotionReading
	for rows.Next() {
		m, err := scanMotion(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, m)
	}
	return out, total, rows.Err()
}

func (r *PostgresReadingsRepo) ListFallEvents(ctx context.Context, page, size int, search, sortBy, sortOrder string) ([]*domain.FallEvent, int, error) {
	rows, total, err := r.listPage(ctx, "falldetection", "id, device_id, fall_detected, created_at", page, size, search, sortBy, sortOrder)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*domain.FallEvent
	for rows.Next() {
		f, err := scanFallEvent(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, f)
	}
	return out, total, rows.Err()
}

// ---- 扫描 ----

func scanVitals(row rowScanner) (*domain.VitalsReading, error) {
	var v domain.VitalsReading
	var hr sql.NullInt64
	var spo2 sql.NullFloat64
	if err := row.Scan(&v.ID, &v.DeviceID, &hr, &spo2, &v.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to scan vitals reading: %w", err)
	}
	if hr.Valid {
		n := int(hr.Int64)
		v.HeartRate = &n
	}
	if spo2.Valid {
		v.SpO2 = &spo2.Float64
	}
	return &v, nil
}

func scanLocation(row rowScanner) (*domain.LocationReading, error) {
	var l domain.LocationReading
	var deviceID sql.NullString
	var lat, lng sql.NullFloat64
	if err := row.Scan(&l.ID, &deviceID, &lat, &lng, &l.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to scan location reading: %w", err)
	}
	if deviceID.Valid {
		l.DeviceID = &deviceID.String
	}
	if lat.Valid {
		l.Latitude = &lat.Float64
	}
	if lng.Valid {
		l.Longitude = &lng.Float64
	}
	return &l, nil
}

func scanMotion(row rowScanner) (*domain.MotionReading, error) {
	var m domain.MotionReading
	var ax, ay, az, gx, gy, gz, temp sql.NullFloat64
	if err := row.Scan(&m.ID, &m.DeviceID, &ax, &ay, &az, &gx, &gy, &gz, &temp, &m.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to scan motion reading: %w", err)
	}
	m.AccelX = nullFloat(ax)
	m.AccelY = nullFloat(ay)
	m.AccelZ = nullFloat(az)
	m.GyroX = nullFloat(gx)
	m.GyroY = nullFloat(gy)
	m.GyroZ = nullFloat(gz)
	m.Temperature = nullFloat(temp)
	return &m, nil
}

func scanFallEvent(row rowScanner) (*domain.FallEvent, error) {
	var f domain.FallEvent
	var detected sql.NullBool
	if err := row.Scan(&f.ID, &f.DeviceID, &detected, &f.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to scan fall event: %w", err)
	}
	if detected.Valid {
		f.FallDetected = &detected.Bool
	}
	return &f, nil
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return &v.Float64
}
