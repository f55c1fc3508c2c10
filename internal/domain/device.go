package domain

import "time"

// Device 设备领域模型（对应 devices 表）
// 一台 companion/wearable 传感器单元，由唯一的 device_name 标识；
// 读数表通过 device_name 关联设备（设备上报时只知道自己的名字）。
type Device struct {
	ID         int64     `db:"id" json:"id"`                   // BIGSERIAL
	DeviceName string    `db:"device_name" json:"device_name"` // TEXT, UNIQUE
	Status     *bool     `db:"status" json:"status"`           // BOOL, nullable — true 表示设备激活
	UserID     *string   `db:"user_id" json:"user_id"`         // TEXT, nullable — 绑定的看护人账号
	CreatedAt  time.Time `db:"created_at" json:"created_at"`   // TIMESTAMPTZ
}

// Active 设备是否处于激活状态（status 为 null 视为未激活）
func (d *Device) Active() bool {
	return d.Status != nil && *d.Status
}
