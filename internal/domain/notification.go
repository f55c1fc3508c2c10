package domain

import "time"

// Notification 阈值报警通知（对应 notifications 表）
// 仅由阈值评估器创建，append-only；ingestion 路径不更新已有通知。
// 注意：user_id 保存的是上报的 device_id 原始值（设备维度的通知），
// 不解析为看护人账号 —— 与既有看板行为保持一致。
type Notification struct {
	ID        int64     `db:"id" json:"id"`                 // BIGSERIAL
	UserID    string    `db:"user_id" json:"user_id"`       // TEXT, NOT NULL
	Title     string    `db:"title" json:"title"`           // TEXT, NOT NULL
	Message   *string   `db:"message" json:"message"`       // TEXT, nullable
	IsRead    bool      `db:"is_read" json:"is_read"`       // BOOL, default false
	LinkURL   *string   `db:"link_url" json:"link_url"`     // TEXT, nullable
	CreatedAt time.Time `db:"created_at" json:"created_at"` // TIMESTAMPTZ — 评估器生成时刻
}
