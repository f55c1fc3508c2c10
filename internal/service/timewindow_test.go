package service

import (
	"context"
	"testing"
	"time"

	"carewatch-data/internal/domain"
	"carewatch-data/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeUsersRepo struct {
	users map[string]*domain.UserAccount
}

func (f *fakeUsersRepo) CreateUser(ctx context.Context, u *domain.UserAccount) error { return nil }

func (f *fakeUsersRepo) GetUserByID(ctx context.Context, id string) (*domain.UserAccount, error) {
	return f.users[id], nil
}

func (f *fakeUsersRepo) GetUserByEmail(ctx context.Context, email string) (*domain.UserAccount, error) {
	return nil, nil
}

func (f *fakeUsersRepo) GetUserByDeviceIdentifier(ctx context.Context, deviceID string) (*domain.UserAccount, error) {
	return nil, nil
}

func (f *fakeUsersRepo) UpdateProfile(ctx context.Context, id string, update repository.ProfileUpdate) error {
	return nil
}

func (f *fakeUsersRepo) ListUsers(ctx context.Context, page, size int, search, sortBy, sortOrder string) ([]*domain.UserAccount, int, error) {
	return nil, 0, nil
}

type fakeDevicesRepo struct {
	byName  map[string]*domain.Device
	byOwner map[string]*domain.Device
}

func (f *fakeDevicesRepo) ListDevices(ctx context.Context, page, size int, search, sortBy, sortOrder string) ([]*domain.Device, int, error) {
	return nil, 0, nil
}

func (f *fakeDevicesRepo) GetActiveDeviceByName(ctx context.Context, name string) (*domain.Device, error) {
	return f.byName[name], nil
}

func (f *fakeDevicesRepo) GetDeviceByOwner(ctx context.Context, userID string) (*domain.Device, error) {
	return f.byOwner[userID], nil
}

func (f *fakeDevicesRepo) CreateDevice(ctx context.Context, d *domain.Device) (int64, error) {
	return 0, nil
}

// windowReadingsRepo 记录窗口查询参数，返回固定读数
type windowReadingsRepo struct {
	fakeReadingsRepo

	lastDeviceID string
	lastStart    time.Time
	lastEnd      time.Time
}

func (f *windowReadingsRepo) VitalsInWindow(ctx context.Context, deviceID string, start, end time.Time) ([]*domain.VitalsReading, error) {
	f.lastDeviceID = deviceID
	f.lastStart = start
	f.lastEnd = end
	return []*domain.VitalsReading{{DeviceID: deviceID, HeartRate: intPtr(70)}}, nil
}

func (f *windowReadingsRepo) FallEventsInWindow(ctx context.Context, deviceID string, start, end time.Time) ([]*domain.FallEvent, error) {
	f.lastDeviceID = deviceID
	f.lastStart = start
	f.lastEnd = end
	return []*domain.FallEvent{{DeviceID: deviceID}}, nil
}

func newWindowService(users *fakeUsersRepo, devices *fakeDevicesRepo, readings repository.ReadingsRepository, loc *time.Location) *TimeWindowService {
	svc := NewTimeWindowService(users, devices, readings, loc, zap.NewNop())
	svc.now = func() time.Time {
		return time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)
	}
	return svc
}

func TestWindow_ConvertsLocalHourToUTCHalfOpen(t *testing.T) {
	// UTC+3：本地 9 点 = UTC 6 点
	loc := time.FixedZone("EAT", 3*60*60)
	svc := newWindowService(&fakeUsersRepo{}, &fakeDevicesRepo{}, &fakeReadingsRepo{}, loc)

	start, end, err := svc.Window("2025-03-10", 9)

	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 10, 6, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 3, 10, 7, 0, 0, 0, time.UTC), end)
}

func TestWindow_DefaultsToCurrentDateAndHour(t *testing.T) {
	loc := time.FixedZone("EAT", 3*60*60)
	svc := newWindowService(&fakeUsersRepo{}, &fakeDevicesRepo{}, &fakeReadingsRepo{}, loc)

	// now = 2025-03-10 14:30 UTC = 17:30 本地
	start, end, err := svc.Window("", -1)

	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC), end)
}

func TestWindow_CrossesMidnightInUTC(t *testing.T) {
	// 本地 0 点落在 UTC 前一天 21 点
	loc := time.FixedZone("EAT", 3*60*60)
	svc := newWindowService(&fakeUsersRepo{}, &fakeDevicesRepo{}, &fakeReadingsRepo{}, loc)

	start, _, err := svc.Window("2025-03-10", 0)

	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 9, 21, 0, 0, 0, time.UTC), start)
}

func TestWindow_RejectsInvalidInput(t *testing.T) {
	svc := newWindowService(&fakeUsersRepo{}, &fakeDevicesRepo{}, &fakeReadingsRepo{}, time.UTC)

	_, _, err := svc.Window("2025-03-10", 24)
	assert.Error(t, err)

	_, _, err = svc.Window("10/03/2025", 9)
	assert.Error(t, err)
}

func TestVitalsForUser_ResolvesPreferredDevice(t *testing.T) {
	users := &fakeUsersRepo{users: map[string]*domain.UserAccount{
		"u-1": {ID: "u-1", DeviceIdentifier: strPtr("wristband-007")},
	}}
	devices := &fakeDevicesRepo{byName: map[string]*domain.Device{
		"wristband-007": {ID: 5, DeviceName: "wristband-007"},
	}}
	readings := &windowReadingsRepo{}
	svc := newWindowService(users, devices, readings, time.UTC)

	rows, err := svc.VitalsForUser(context.Background(), "u-1", "2025-03-10", 9)

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "wristband-007", readings.lastDeviceID)
	assert.Equal(t, time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC), readings.lastStart)
	assert.Equal(t, time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC), readings.lastEnd)
}

func TestVitalsForUser_UnknownUserReturnsEmpty(t *testing.T) {
	svc := newWindowService(&fakeUsersRepo{}, &fakeDevicesRepo{}, &windowReadingsRepo{}, time.UTC)

	rows, err := svc.VitalsForUser(context.Background(), "missing", "2025-03-10", 9)

	require.NoError(t, err)
	assert.Nil(t, rows)
}

func TestVitalsForUser_NoDeviceIdentifierReturnsEmpty(t *testing.T) {
	users := &fakeUsersRepo{users: map[string]*domain.UserAccount{
		"u-1": {ID: "u-1"},
	}}
	svc := newWindowService(users, &fakeDevicesRepo{}, &windowReadingsRepo{}, time.UTC)

	rows, err := svc.VitalsForUser(context.Background(), "u-1", "2025-03-10", 9)

	require.NoError(t, err)
	assert.Nil(t, rows)
}

func TestVitalsForUser_InactiveDeviceReturnsEmpty(t *testing.T) {
	users := &fakeUsersRepo{users: map[string]*domain.UserAccount{
		"u-1": {ID: "u-1", DeviceIdentifier: strPtr("wristband-007")},
	}}
	// byName 为空：仓储按激活状态过滤后无命中
	svc := newWindowService(users, &fakeDevicesRepo{}, &windowReadingsRepo{}, time.UTC)

	rows, err := svc.VitalsForUser(context.Background(), "u-1", "2025-03-10", 9)

	require.NoError(t, err)
	assert.Nil(t, rows)
}

func TestFallEventsForUser_ResolvesByOwnership(t *testing.T) {
	// 跌倒事件不走 device_identifier 偏好，而是 devices.user_id 归属
	users := &fakeUsersRepo{users: map[string]*domain.UserAccount{
		"u-1": {ID: "u-1", DeviceIdentifier: strPtr("other-device")},
	}}
	devices := &fakeDevicesRepo{byOwner: map[string]*domain.Device{
		"u-1": {ID: 9, DeviceName: "wristband-007"},
	}}
	readings := &windowReadingsRepo{}
	svc := newWindowService(users, devices, readings, time.UTC)

	rows, err := svc.FallEventsForUser(context.Background(), "u-1", "2025-03-10", 9)

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "wristband-007", readings.lastDeviceID)
}
