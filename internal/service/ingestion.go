package service

import (
	"context"
	"errors"

	"carewatch-data/internal/domain"
	"carewatch-data/internal/evaluator"
	"carewatch-data/internal/repository"

	"go.uber.org/zap"
)

// ErrMissingFields 上报缺少 heart_rate 或 device_id
var ErrMissingFields = errors.New("missing heart_rate or device_id")

// SensorPayload 设备单次上报的全部字段（HTTP 与 MQTT 通道共用）
// 指针字段区分"未上报"与显式数值。
type SensorPayload struct {
	HeartRate    *int     `json:"heart_rate"`
	SpO2         *float64 `json:"spo2"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	AccelX       *float64 `json:"accel_x"`
	AccelY       *float64 `json:"accel_y"`
	AccelZ       *float64 `json:"accel_z"`
	GyroX        *float64 `json:"gyro_x"`
	GyroY        *float64 `json:"gyro_y"`
	GyroZ        *float64 `json:"gyro_z"`
	Temperature  *float64 `json:"temperature"`
	DeviceID     *string  `json:"device_id"`
	FallDetected *bool    `json:"fall_detected"`
}

// InsertResult 扇出中单张表的写入结果
type InsertResult struct {
	Table string
	Err   error
}

// AlertNotifier 报警外发通道（webhook 等），尽力而为
type AlertNotifier interface {
	Notify(ctx context.Context, n domain.Notification)
}

// IngestionService 上报处理：按固定顺序将一次上报扇出到四张读数表，
// 再做阈值评估并写入通知。各表写入相互独立，不做事务分组 ——
// 仅 vitals（主表）的写入结果决定对外的成功/失败；其余表失败只记日志。
type IngestionService struct {
	readings      repository.ReadingsRepository
	notifications repository.NotificationsRepository
	evaluator     *evaluator.ThresholdEvaluator
	notifier      AlertNotifier
	logger        *zap.Logger
}

func NewIngestionService(
	readings repository.ReadingsRepository,
	notifications repository.NotificationsRepository,
	eval *evaluator.ThresholdEvaluator,
	notifier AlertNotifier,
	logger *zap.Logger,
) *IngestionService {
	return &IngestionService{
		readings:      readings,
		notifications: notifications,
		evaluator:     eval,
		notifier:      notifier,
		logger:        logger,
	}
}

// Ingest 处理一次上报。
// 返回每张表的写入结果列表；error 为 ErrMissingFields（校验失败，零写入）
// 或主表（vitals）的写入错误。非主表错误不向上传播。
func (s *IngestionService) Ingest(ctx context.Context, p *SensorPayload) ([]InsertResult, error) {
	if p.HeartRate == nil || p.DeviceID == nil || *p.DeviceID == "" {
		return nil, ErrMissingFields
	}
	deviceID := *p.DeviceID

	var results []InsertResult

	// 1. vitals（主表）
	_, vitalsErr := s.readings.InsertVitals(ctx, &domain.VitalsReading{
		DeviceID:  deviceID,
		HeartRate: p.HeartRate,
		SpO2:      p.SpO2,
	})
	results = append(results, InsertResult{Table: "heartrate", Err: vitalsErr})
	if vitalsErr != nil {
		s.logger.Error("Failed to insert vitals reading",
			zap.String("device_id", deviceID),
			zap.Error(vitalsErr),
		)
	}

	// 2. location：经纬度至少一项非空且非零才写入。
	// 注意：恰好为 0 的坐标（赤道/本初子午线）会被当作缺省丢弃 ——
	// 已知的数值哨兵歧义，行为保留，由测试显式断言。
	if hasCoordinate(p.Latitude) || hasCoordinate(p.Longitude) {
		_, err := s.readings.InsertLocation(ctx, &domain.LocationReading{
			DeviceID:  &deviceID,
			Latitude:  p.Latitude,
			Longitude: p.Longitude,
		})
		results = append(results, InsertResult{Table: "locationdata", Err: err})
		if err != nil {
			s.logger.Error("Failed to insert location reading",
				zap.String("device_id", deviceID),
				zap.Error(err),
			)
		}
	}

	// 3. motion：无条件写入（全空字段也落一行）
	_, motionErr := s.readings.InsertMotion(ctx, &domain.MotionReading{
		DeviceID:    deviceID,
		AccelX:      p.AccelX,
		AccelY:      p.AccelY,
		AccelZ:      p.AccelZ,
		GyroX:       p.GyroX,
		GyroY:       p.GyroY,
		GyroZ:       p.GyroZ,
		Temperature: p.Temperature,
	})
	results = append(results, InsertResult{Table: "motion_data", Err: motionErr})
	if motionErr != nil {
		s.logger.Error("Failed to insert motion reading",
			zap.String("device_id", deviceID),
			zap.Error(motionErr),
		)
	}

	// 4. fall event：无条件写入
	_, fallErr := s.readings.InsertFallEvent(ctx, &domain.FallEvent{
		DeviceID:     deviceID,
		FallDetected: p.FallDetected,
	})
	results = append(results, InsertResult{Table: "falldetection", Err: fallErr})
	if fallErr != nil {
		s.logger.Error("Failed to insert fall event",
			zap.String("device_id", deviceID),
			zap.Error(fallErr),
		)
	}

	// 5. 阈值评估 + 通知批量写入
	alerts := s.evaluator.Evaluate(evaluator.VitalsSample{
		DeviceID:     deviceID,
		HeartRate:    p.HeartRate,
		SpO2:         p.SpO2,
		FallDetected: p.FallDetected != nil && *p.FallDetected,
	})
	if len(alerts) > 0 {
		drafts := make([]*domain.Notification, len(alerts))
		for i := range alerts {
			drafts[i] = &alerts[i]
		}
		if err := s.notifications.BulkInsert(ctx, drafts); err != nil {
			results = append(results, InsertResult{Table: "notifications", Err: err})
			s.logger.Error("Failed to insert notifications",
				zap.String("device_id", deviceID),
				zap.Int("count", len(alerts)),
				zap.Error(err),
			)
		} else {
			results = append(results, InsertResult{Table: "notifications"})
		}

		if s.notifier != nil {
			for _, n := range alerts {
				s.notifier.Notify(ctx, n)
			}
		}
	}

	return results, vitalsErr
}

// hasCoordinate 非空且非零
func hasCoordinate(v *float64) bool {
	return v != nil && *v != 0
}
