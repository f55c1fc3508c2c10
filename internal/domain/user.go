package domain

import "time"

// UserAccount 看护人账号（对应 users 表）
// DeviceIdentifier 指向该账号关注的设备（devices.device_name）；
// PhoneNumber 兼作紧急联系电话。
type UserAccount struct {
	ID                string    `db:"id"`                 // TEXT PK（UUID）
	Name              string    `db:"name"`               // TEXT, NOT NULL
	Email             string    `db:"email"`              // TEXT, UNIQUE
	PasswordHash      string    `db:"password_hash"`      // TEXT — bcrypt
	Role              string    `db:"role"`               // TEXT, 如 "user" / "admin"
	DeviceIdentifier  *string   `db:"device_identifier"`  // TEXT, nullable
	IsVerified        bool      `db:"is_verified"`        // BOOL, default false
	VerificationToken *string   `db:"verification_token"` // TEXT, nullable
	PhoneNumber       *string   `db:"phone_number"`       // TEXT, nullable
	CreatedAt         time.Time `db:"created_at"`         // TIMESTAMPTZ
}
