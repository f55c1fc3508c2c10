package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"carewatch-data/internal/domain"
)

type PostgresUsersRepo struct {
	db *sql.DB
}

func NewPostgresUsersRepo(db *sql.DB) *PostgresUsersRepo {
	return &PostgresUsersRepo{db: db}
}

// 确保实现了接口
var _ UsersRepository = (*PostgresUsersRepo)(nil)

var userSortColumns = map[string]string{
	"created_at": "created_at",
	"name":       "name",
	"email":      "email",
	"id":         "id",
}

const userColumns = `id, name, email, password_hash, role, device_identifier, is_verified, verification_token, phone_number, created_at`

func (r *PostgresUsersRepo) CreateUser(ctx context.Context, u *domain.UserAccount) error {
	q := `
		INSERT INTO users (id, name, email, password_hash, role, device_identifier, is_verified, verification_token, phone_number)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.db.ExecContext(ctx, q,
		u.ID, u.Name, u.Email, u.PasswordHash, u.Role,
		u.DeviceIdentifier, u.IsVerified, u.VerificationToken, u.PhoneNumber,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *PostgresUsersRepo) GetUserByID(ctx context.Context, id string) (*domain.UserAccount, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.getOne(ctx, q, id)
}

func (r *PostgresUsersRepo) GetUserByEmail(ctx context.Context, email string) (*domain.UserAccount, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`
	return r.getOne(ctx, q, email)
}

func (r *PostgresUsersRepo) GetUserByDeviceIdentifier(ctx context.Context, deviceID string) (*domain.UserAccount, error) {
	// 一台设备至多绑定一个看护人账号；多行时取最近创建的一条
	q := `SELECT ` + userColumns + ` FROM users WHERE device_identifier = $1 ORDER BY created_at DESC LIMIT 1`
	return r.getOne(ctx, q, deviceID)
}

func (r *PostgresUsersRepo) UpdateProfile(ctx context.Context, id string, update ProfileUpdate) error {
	set := []string{}
	args := []any{}
	argN := 1

	if update.Name != nil {
		set = append(set, fmt.Sprintf("name = $%d", argN))
		args = append(args, *update.Name)
		argN++
	}
	if update.PhoneNumber != nil {
		set = append(set, fmt.Sprintf("phone_number = $%d", argN))
		args = append(args, *update.PhoneNumber)
		argN++
	}
	if update.DeviceIdentifier != nil {
		set = append(set, fmt.Sprintf("device_identifier = $%d", argN))
		args = append(args, *update.DeviceIdentifier)
		argN++
	}
	if update.PasswordHash != nil {
		set = append(set, fmt.Sprintf("password_hash = $%d", argN))
		args = append(args, *update.PasswordHash)
		argN++
	}
	if len(set) == 0 {
		return nil
	}

	q := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d`, strings.Join(set, ", "), argN)
	args = append(args, id)

	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("user not found: %s", id)
	}
	return nil
}

func (r *PostgresUsersRepo) ListUsers(ctx context.Context, page, size int, search, sortBy, sortOrder string) ([]*domain.UserAccount, int, error) {
	where := "1=1"
	args := []any{}
	argN := 1
	if search != "" {
		where = fmt.Sprintf("name ILIKE $%d", argN)
		args = append(args, "%"+search+"%")
		argN++
	}

	var total int
	queryCount := `SELECT COUNT(*) FROM users WHERE ` + where
	if err := r.db.QueryRowContext(ctx, queryCount, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 10
	}
	offset := (page - 1) * size

	orderBy := orderClause(userSortColumns, sortBy, sortOrder, "created_at")
	q := fmt.Sprintf(`
		SELECT %s
		FROM users
		WHERE %s
		ORDER BY %s
		LIMIT $%d OFFSET $%d`, userColumns, where, orderBy, argN, argN+1)
	args = append(args, size, offset)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var out []*domain.UserAccount
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, u)
	}
	return out, total, rows.Err()
}

func (r *PostgresUsersRepo) getOne(ctx context.Context, q string, arg any) (*domain.UserAccount, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, q, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return u, nil
}

func scanUser(row rowScanner) (*domain.UserAccount, error) {
	var u domain.UserAccount
	var deviceIdentifier, verificationToken, phoneNumber sql.NullString
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role,
		&deviceIdentifier, &u.IsVerified, &verificationToken, &phoneNumber, &u.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	if deviceIdentifier.Valid {
		u.DeviceIdentifier = &deviceIdentifier.String
	}
	if verificationToken.Valid {
		u.VerificationToken = &verificationToken.String
	}
	if phoneNumber.Valid {
		u.PhoneNumber = &phoneNumber.String
	}
	return &u, nil
}
