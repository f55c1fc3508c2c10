package repository

import (
	"context"

	"carewatch-data/internal/domain"
)

// NotificationsRepository 通知 Repository 接口
// 通知只增不改：批量写入由 ingestion 路径调用，列表供看板查询。
type NotificationsRepository interface {
	// BulkInsert 批量写入通知；一次 ingestion 请求可能产生 0..n 条
	BulkInsert(ctx context.Context, notifications []*domain.Notification) error

	// ListNotifications 分页列表；search 对 user_id（即上报的 device_id）做 ILIKE 模糊匹配
	ListNotifications(ctx context.Context, page, size int, search, sortBy, sortOrder string) ([]*domain.Notification, int, error)
}
