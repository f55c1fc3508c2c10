package repository

import (
	"context"

	"carewatch-data/internal/domain"
)

// ProfileUpdate 账号资料更新字段；nil 表示不修改
type ProfileUpdate struct {
	Name             *string
	PhoneNumber      *string
	DeviceIdentifier *string
	PasswordHash     *string
}

// UsersRepository 看护人账号 Repository 接口
// 单行查询未命中时返回 (nil, nil)。
type UsersRepository interface {
	CreateUser(ctx context.Context, u *domain.UserAccount) error
	GetUserByID(ctx context.Context, id string) (*domain.UserAccount, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.UserAccount, error)

	// GetUserByDeviceIdentifier 紧急联系人查询：设备 → 关注该设备的看护人
	GetUserByDeviceIdentifier(ctx context.Context, deviceID string) (*domain.UserAccount, error)

	UpdateProfile(ctx context.Context, id string, update ProfileUpdate) error

	// ListUsers 分页列表；search 对 name 做 ILIKE 模糊匹配
	ListUsers(ctx context.Context, page, size int, search, sortBy, sortOrder string) ([]*domain.UserAccount, int, error)
}
