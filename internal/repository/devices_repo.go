package repository

import (
	"context"

	"carewatch-data/internal/domain"
)

// DevicesRepository 设备 Repository 接口
// 单行查询未命中时返回 (nil, nil)，不视为错误（交由上层按"无数据"处理）。
type DevicesRepository interface {
	// ListDevices 分页列表；search 对 device_name 做 ILIKE 模糊匹配
	ListDevices(ctx context.Context, page, size int, search, sortBy, sortOrder string) ([]*domain.Device, int, error)

	// GetActiveDeviceByName 按名称查找激活设备（看护人 device_identifier 偏好 → 设备）
	// 多行匹配时取最近创建的一台
	GetActiveDeviceByName(ctx context.Context, deviceName string) (*domain.Device, error)

	// GetDeviceByOwner 按绑定账号查找设备（跌倒检测路径使用）
	GetDeviceByOwner(ctx context.Context, userID string) (*domain.Device, error)

	// CreateDevice 注册设备
	CreateDevice(ctx context.Context, device *domain.Device) (int64, error)
}
