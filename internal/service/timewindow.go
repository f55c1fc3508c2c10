package service

import (
	"context"
	"fmt"
	"time"

	"carewatch-data/internal/domain"
	"carewatch-data/internal/repository"

	"go.uber.org/zap"
)

// TimeWindowService 按"本地日期 + 小时"取整点一小时窗口的读数，供图表轮询。
// 先解析看护人当前设备（账号 → device_identifier 偏好 → 激活设备），
// 解析链任何一环为空都返回空结果而不是错误。
type TimeWindowService struct {
	users    repository.UsersRepository
	devices  repository.DevicesRepository
	readings repository.ReadingsRepository
	loc      *time.Location
	now      func() time.Time
	logger   *zap.Logger
}

func NewTimeWindowService(
	users repository.UsersRepository,
	devices repository.DevicesRepository,
	readings repository.ReadingsRepository,
	loc *time.Location,
	logger *zap.Logger,
) *TimeWindowService {
	if loc == nil {
		loc = time.Local
	}
	return &TimeWindowService{
		users:    users,
		devices:  devices,
		readings: readings,
		loc:      loc,
		now:      time.Now,
		logger:   logger,
	}
}

// Window 把本地 date（YYYY-MM-DD，空串取今天）+ hour（0–23，-1 取当前小时）
// 转成 UTC 半开区间 [start, start+1h)。
// 旧实现用 HH:59:59 当上界会漏掉最后一秒且不含时区换算，此处为修正后的语义。
func (s *TimeWindowService) Window(date string, hour int) (time.Time, time.Time, error) {
	nowLocal := s.now().In(s.loc)
	if date == "" {
		date = nowLocal.Format("2006-01-02")
	}
	if hour < 0 {
		hour = nowLocal.Hour()
	}
	if hour > 23 {
		return time.Time{}, time.Time{}, fmt.Errorf("hour out of range: %d", hour)
	}

	day, err := time.ParseInLocation("2006-01-02", date, s.loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
	}

	start := time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, s.loc)
	end := start.Add(time.Hour)
	return start.UTC(), end.UTC(), nil
}

// currentDevice 解析链：账号 → device_identifier → 激活设备；未命中返回 (nil, nil)
func (s *TimeWindowService) currentDevice(ctx context.Context, userID string) (*domain.Device, error) {
	account, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		s.logger.Debug("No user account found", zap.String("user_id", userID))
		return nil, nil
	}
	if account.DeviceIdentifier == nil || *account.DeviceIdentifier == "" {
		s.logger.Debug("Device identifier is not set", zap.String("user_id", userID))
		return nil, nil
	}
	return s.devices.GetActiveDeviceByName(ctx, *account.DeviceIdentifier)
}

// VitalsForUser 当前设备在指定窗口内的心率/血氧读数；无设备时返回 (nil, nil)
func (s *TimeWindowService) VitalsForUser(ctx context.Context, userID, date string, hour int) ([]*domain.VitalsReading, error) {
	device, err := s.currentDevice(ctx, userID)
	if err != nil || device == nil {
		return nil, err
	}
	start, end, err := s.Window(date, hour)
	if err != nil {
		return nil, err
	}
	return s.readings.VitalsInWindow(ctx, device.DeviceName, start, end)
}

// LocationsForUser 当前设备在指定窗口内的位置读数
func (s *TimeWindowService) LocationsForUser(ctx context.Context, userID, date string, hour int) ([]*domain.LocationReading, error) {
	device, err := s.currentDevice(ctx, userID)
	if err != nil || device == nil {
		return nil, err
	}
	start, end, err := s.Window(date, hour)
	if err != nil {
		return nil, err
	}
	return s.readings.LocationsInWindow(ctx, device.DeviceName, start, end)
}

// MotionForUser 当前设备在指定窗口内的运动读数
func (s *TimeWindowService) MotionForUser(ctx context.Context, userID, date string, hour int) ([]*domain.MotionReading, error) {
	device, err := s.currentDevice(ctx, userID)
	if err != nil || device == nil {
		return nil, err
	}
	start, end, err := s.Window(date, hour)
	if err != nil {
		return nil, err
	}
	return s.readings.MotionInWindow(ctx, device.DeviceName, start, end)
}

// FallEventsForUser 跌倒事件走设备归属路径（devices.user_id = 账号），
// 与其余三类的偏好路径不同 —— 既有看板即如此。
func (s *TimeWindowService) FallEventsForUser(ctx context.Context, userID, date string, hour int) ([]*domain.FallEvent, error) {
	device, err := s.devices.GetDeviceByOwner(ctx, userID)
	if err != nil || device == nil {
		return nil, err
	}
	start, end, err := s.Window(date, hour)
	if err != nil {
		return nil, err
	}
	return s.readings.FallEventsInWindow(ctx, device.DeviceName, start, end)
}
