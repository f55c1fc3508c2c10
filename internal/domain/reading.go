package domain

import "time"

// 读数表均为 append-only：一经写入不再更新。
// device_id 保存设备上报的标识（devices.device_name），不是 devices.id。

// VitalsReading 心率/血氧读数（对应 heartrate 表）
type VitalsReading struct {
	ID        int64     `db:"id" json:"id"`                 // BIGSERIAL
	DeviceID  string    `db:"device_id" json:"device_id"`   // TEXT, NOT NULL
	HeartRate *int      `db:"heart_rate" json:"heart_rate"` // INTEGER, nullable
	SpO2      *float64  `db:"spo2" json:"spo2"`             // DOUBLE PRECISION, nullable — 血氧百分比
	CreatedAt time.Time `db:"created_at" json:"created_at"` // TIMESTAMPTZ, 服务端生成
}

// LocationReading 位置读数（对应 locationdata 表）
// 仅当经纬度至少一项为非空且非零时写入（0 被视为缺省哨兵值）。
type LocationReading struct {
	ID        int64     `db:"id" json:"id"`                 // BIGSERIAL
	DeviceID  *string   `db:"device_id" json:"device_id"`   // TEXT, nullable
	Latitude  *float64  `db:"latitude" json:"latitude"`     // DOUBLE PRECISION, nullable
	Longitude *float64  `db:"longitude" json:"longitude"`   // DOUBLE PRECISION, nullable
	CreatedAt time.Time `db:"created_at" json:"created_at"` // TIMESTAMPTZ
}

// MotionReading 运动传感读数（对应 motion_data 表）
type MotionReading struct {
	ID          int64     `db:"id" json:"id"`                   // BIGSERIAL
	DeviceID    string    `db:"device_id" json:"device_id"`     // TEXT, NOT NULL
	AccelX      *float64  `db:"accel_x" json:"accel_x"`         // DOUBLE PRECISION, nullable
	AccelY      *float64  `db:"accel_y" json:"accel_y"`         // DOUBLE PRECISION, nullable
	AccelZ      *float64  `db:"accel_z" json:"accel_z"`         // DOUBLE PRECISION, nullable
	GyroX       *float64  `db:"gyro_x" json:"gyro_x"`           // DOUBLE PRECISION, nullable
	GyroY       *float64  `db:"gyro_y" json:"gyro_y"`           // DOUBLE PRECISION, nullable
	GyroZ       *float64  `db:"gyro_z" json:"gyro_z"`           // DOUBLE PRECISION, nullable
	Temperature *float64  `db:"temperature" json:"temperature"` // DOUBLE PRECISION, nullable — 环境温度
	CreatedAt   time.Time `db:"created_at" json:"created_at"`   // TIMESTAMPTZ
}

// FallEvent 跌倒检测事件（对应 falldetection 表）
type FallEvent struct {
	ID           int64     `db:"id" json:"id"`                       // BIGSERIAL
	DeviceID     string    `db:"device_id" json:"device_id"`         // TEXT, NOT NULL
	FallDetected *bool     `db:"fall_detected" json:"fall_detected"` // BOOL, nullable
	CreatedAt    time.Time `db:"created_at" json:"created_at"`       // TIMESTAMPTZ
}
