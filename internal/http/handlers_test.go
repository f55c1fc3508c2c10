package httpapi

import (
	"context"
	"strings"
	"sync"
	"time"

	"carewatch-data/internal/domain"
	"carewatch-data/internal/repository"
	"carewatch-data/internal/store"
)

// 共享测试夹具：内存 KV 与各 Repository 的 map 实现

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }
func strPtr(v string) *string     { return &v }

// memKV store.KV 的内存实现（handler 测试不依赖 Redis）
type memKV struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemKV() *memKV {
	return &memKV{data: map[string]string{}}
}

func (m *memKV) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return "", store.ErrMiss
	}
	return v, nil
}

func (m *memKV) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memKV) Del(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memKV) ScanKeys(ctx context.Context, pattern string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	var keys []string
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

type memUsersRepo struct {
	mu    sync.Mutex
	users map[string]*domain.UserAccount
	err   error
}

func newMemUsersRepo() *memUsersRepo {
	return &memUsersRepo{users: map[string]*domain.UserAccount{}}
}

func (r *memUsersRepo) CreateUser(ctx context.Context, u *domain.UserAccount) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = u
	return nil
}

func (r *memUsersRepo) GetUserByID(ctx context.Context, id string) (*domain.UserAccount, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.users[id], nil
}

func (r *memUsersRepo) GetUserByEmail(ctx context.Context, email string) (*domain.UserAccount, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, nil
}

func (r *memUsersRepo) GetUserByDeviceIdentifier(ctx context.Context, deviceID string) (*domain.UserAccount, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.DeviceIdentifier != nil && *u.DeviceIdentifier == deviceID {
			return u, nil
		}
	}
	return nil, nil
}

func (r *memUsersRepo) UpdateProfile(ctx context.Context, id string, update repository.ProfileUpdate) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil
	}
	if update.Name != nil {
		u.Name = *update.Name
	}
	if update.PhoneNumber != nil {
		u.PhoneNumber = update.PhoneNumber
	}
	if update.DeviceIdentifier != nil {
		u.DeviceIdentifier = update.DeviceIdentifier
	}
	if update.PasswordHash != nil {
		u.PasswordHash = *update.PasswordHash
	}
	return nil
}

func (r *memUsersRepo) ListUsers(ctx context.Context, page, size int, search, sortBy, sortOrder string) ([]*domain.UserAccount, int, error) {
	if r.err != nil {
		return nil, 0, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.UserAccount, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	return out, len(out), nil
}

type memDevicesRepo struct {
	devices []*domain.Device
	err     error
}

func (r *memDevicesRepo) ListDevices(ctx context.Context, page, size int, search, sortBy, sortOrder string) ([]*domain.Device, int, error) {
	if r.err != nil {
		return nil, 0, r.err
	}
	return r.devices, len(r.devices), nil
}

func (r *memDevicesRepo) GetActiveDeviceByName(ctx context.Context, deviceName string) (*domain.Device, error) {
	if r.err != nil {
		return nil, r.err
	}
	for _, d := range r.devices {
		if d.DeviceName == deviceName && d.Active() {
			return d, nil
		}
	}
	return nil, nil
}

func (r *memDevicesRepo) GetDeviceByOwner(ctx context.Context, userID string) (*domain.Device, error) {
	if r.err != nil {
		return nil, r.err
	}
	for _, d := range r.devices {
		if d.UserID != nil && *d.UserID == userID {
			return d, nil
		}
	}
	return nil, nil
}

func (r *memDevicesRepo) CreateDevice(ctx context.Context, device *domain.Device) (int64, error) {
	if r.err != nil {
		return 0, r.err
	}
	r.devices = append(r.devices, device)
	return int64(len(r.devices)), nil
}

type memReadingsRepo struct {
	vitals    []*domain.VitalsReading
	locations []*domain.LocationReading
	motion    []*domain.MotionReading
	falls     []*domain.FallEvent

	vitalsErr error
	listErr   error
}

func (r *memReadingsRepo) InsertVitals(ctx context.Context, v *domain.VitalsReading) (int64, error) {
	if r.vitalsErr != nil {
		return 0, r.vitalsErr
	}
	r.vitals = append(r.vitals, v)
	return int64(len(r.vitals)), nil
}

func (r *memReadingsRepo) InsertLocation(ctx context.Context, l *domain.LocationReading) (int64, error) {
	r.locations = append(r.locations, l)
	return int64(len(r.locations)), nil
}

func (r *memReadingsRepo) InsertMotion(ctx context.Context, m *domain.MotionReading) (int64, error) {
	r.motion = append(r.motion, m)
	return int64(len(r.motion)), nil
}

func (r *memReadingsRepo) InsertFallEvent(ctx context.Context, e *domain.FallEvent) (int64, error) {
	r.falls = append(r.falls, e)
	return int64(len(r.falls)), nil
}

func (r *memReadingsRepo) VitalsInWindow(ctx context.Context, deviceID string, start, end time.Time) ([]*domain.VitalsReading, error) {
	var out []*domain.VitalsReading
	for _, v := range r.vitals {
		if v.DeviceID == deviceID && !v.CreatedAt.Before(start) && v.CreatedAt.Before(end) {
			out = append(out, v)
		}
	}
	return out, nil
}

func (r *memReadingsRepo) LocationsInWindow(ctx context.Context, deviceID string, start, end time.Time) ([]*domain.LocationReading, error) {
	return r.locations, nil
}

func (r *memReadingsRepo) MotionInWindow(ctx context.Context, deviceID string, start, end time.Time) ([]*domain.MotionReading, error) {
	return r.motion, nil
}

func (r *memReadingsRepo) FallEventsInWindow(ctx context.Context, deviceID string, start, end time.Time) ([]*domain.FallEvent, error) {
	return r.falls, nil
}

func (r *memReadingsRepo) ListVitals(ctx context.Context, page, size int, search, sortBy, sortOrder string) ([]*domain.VitalsReading, int, error) {
	if r.listErr != nil {
		return nil, 0, r.listErr
	}
	return r.vitals, len(r.vitals), nil
}

func (r *memReadingsRepo) ListLocations(ctx context.Context, page, size int, search, sortBy, sortOrder string) ([]*domain.LocationReading, int, error) {
	if r.listErr != nil {
		return nil, 0, r.listErr
	}
	return r.locations, len(r.locations), nil
}

func (r *memReadingsRepo) ListMotion(ctx context.Context, page, size int, search, sortBy, sortOrder string) ([]*domain.MotionReading, int, error) {
	if r.listErr != nil {
		return nil, 0, r.listErr
	}
	return r.motion, len(r.motion), nil
}

func (r *memReadingsRepo) ListFallEvents(ctx context.Context, page, size int, search, sortBy, sortOrder string) ([]*domain.FallEvent, int, error) {
	if r.listErr != nil {
		return nil, 0, r.listErr
	}
	return r.falls, len(r.falls), nil
}

type memNotificationsRepo struct {
	inserted []*domain.Notification
}

func (r *memNotificationsRepo) BulkInsert(ctx context.Context, ns []*domain.Notification) error {
	r.inserted = append(r.inserted, ns...)
	return nil
}

func (r *memNotificationsRepo) ListNotifications(ctx context.Context, page, size int, search, sortBy, sortOrder string) ([]*domain.Notification, int, error) {
	return r.inserted, len(r.inserted), nil
}
