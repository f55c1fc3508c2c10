package repository

import (
	"context"
	"time"

	"carewatch-data/internal/domain"
)

// ReadingsRepository 读数 Repository 接口
// 四类读数表共用一个接口：写入（ingestion 扇出）、时间窗口查询（图表）、
// 分页列表（管理页）。所有写入均为独立 INSERT，不做事务分组。
type ReadingsRepository interface {
	InsertVitals(ctx context.Context, v *domain.VitalsReading) (int64, error)
	InsertLocation(ctx context.Context, l *domain.LocationReading) (int64, error)
	InsertMotion(ctx context.Context, m *domain.MotionReading) (int64, error)
	InsertFallEvent(ctx context.Context, f *domain.FallEvent) (int64, error)

	// 时间窗口查询：created_at ∈ [start, end)，start/end 为 UTC
	VitalsInWindow(ctx context.Context, deviceID string, start, end time.Time) ([]*domain.VitalsReading, error)
	LocationsInWindow(ctx context.Context, deviceID string, start, end time.Time) ([]*domain.LocationReading, error)
	MotionInWindow(ctx context.Context, deviceID string, start, end time.Time) ([]*domain.MotionReading, error)
	FallEventsInWindow(ctx context.Context, deviceID string, start, end time.Time) ([]*domain.FallEvent, error)

	// 分页列表；search 对 device_id 做 ILIKE 模糊匹配
	ListVitals(ctx context.Context, page, size int, search, sortBy, sortOrder string) ([]*domain.VitalsReading, int, error)
	ListLocations(ctx context.Context, page, size int, search, sortBy, sortOrder string) ([]*domain.LocationReading, int, error)
	ListMotion(ctx context.Context, page, size int, search, sortBy, sortOrder string) ([]*domain.MotionReading, int, error)
	ListFallEvents(ctx context.Context, page, size int, search, sortBy, sortOrder string) ([]*domain.FallEvent, int, error)
}
