package evaluator

import (
	"fmt"
	"time"

	"carewatch-data/internal/domain"
)

// 阈值常量
const (
	// LowHeartRateBPM 心率低于该值触发报警
	LowHeartRateBPM = 60
	// LowSpO2Percent 血氧低于该值触发报警
	LowSpO2Percent = 90.0
)

// VitalsSample 单次上报中参与阈值评估的字段
type VitalsSample struct {
	DeviceID     string
	HeartRate    *int
	SpO2         *float64
	FallDetected bool
}

// ThresholdEvaluator 阈值评估器：对一次上报独立评估各规则，
// 产出 0..n 条通知草稿（read=false、无链接、created_at 由评估器生成）。
// 纯函数语义：不触库、不修改输入。
type ThresholdEvaluator struct {
	now func() time.Time
}

func NewThresholdEvaluator() *ThresholdEvaluator {
	return &ThresholdEvaluator{now: time.Now}
}

// NewThresholdEvaluatorAt 注入时钟（测试用）
func NewThresholdEvaluatorAt(now func() time.Time) *ThresholdEvaluator {
	return &ThresholdEvaluator{now: now}
}

// Evaluate 按固定顺序评估三条规则：低心率 → 跌倒 → 低血氧。
// 规则彼此独立，可同时命中多条。
func (e *ThresholdEvaluator) Evaluate(s VitalsSample) []domain.Notification {
	var out []domain.Notification
	now := e.now().UTC()

	if n := e.evalLowHeartRate(s, now); n != nil {
		out = append(out, *n)
	}
	if n := e.evalFallDetected(s, now); n != nil {
		out = append(out, *n)
	}
	if n := e.evalLowSpO2(s, now); n != nil {
		out = append(out, *n)
	}
	return out
}

func (e *ThresholdEvaluator) evalLowHeartRate(s VitalsSample, now time.Time) *domain.Notification {
	if s.HeartRate == nil || *s.HeartRate >= LowHeartRateBPM {
		return nil
	}
	msg := fmt.Sprintf("Heart rate is low: %d bpm", *s.HeartRate)
	return &domain.Notification{
		UserID:    s.DeviceID,
		Title:     "Low Heart Rate",
		Message:   &msg,
		IsRead:    false,
		CreatedAt: now,
	}
}

func (e *ThresholdEvaluator) evalFallDetected(s VitalsSample, now time.Time) *domain.Notification {
	if !s.FallDetected {
		return nil
	}
	msg := "Fall detected!"
	return &domain.Notification{
		UserID:    s.DeviceID,
		Title:     "Fall Detected",
		Message:   &msg,
		IsRead:    false,
		CreatedAt: now,
	}
}

func (e *ThresholdEvaluator) evalLowSpO2(s VitalsSample, now time.Time) *domain.Notification {
	if s.SpO2 == nil || *s.SpO2 >= LowSpO2Percent {
		return nil
	}
	msg := fmt.Sprintf("SpO2 level is low: %g%%", *s.SpO2)
	return &domain.Notification{
		UserID:    s.DeviceID,
		Title:     "Low SpO2 Level",
		Message:   &msg,
		IsRead:    false,
		CreatedAt: now,
	}
}
