package service

import (
	"context"
	"time"

	"carewatch-data/internal/domain"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// alertWebhookPayload 外发报警的 JSON 形状
type alertWebhookPayload struct {
	DeviceID  string    `json:"device_id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// AlertWebhook 把阈值通知转发到外部 webhook（升级通道，如短信网关）。
// 尽力而为：失败只记日志，不影响 ingestion 结果。
type AlertWebhook struct {
	client *resty.Client
	url    string
	logger *zap.Logger
}

func NewAlertWebhook(url string, logger *zap.Logger) *AlertWebhook {
	client := resty.New().
		SetTimeout(10 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetHeader("Content-Type", "application/json")

	return &AlertWebhook{
		client: client,
		url:    url,
		logger: logger,
	}
}

// 确保实现了接口
var _ AlertNotifier = (*AlertWebhook)(nil)

func (w *AlertWebhook) Notify(ctx context.Context, n domain.Notification) {
	msg := ""
	if n.Message != nil {
		msg = *n.Message
	}
	payload := alertWebhookPayload{
		DeviceID:  n.UserID,
		Title:     n.Title,
		Message:   msg,
		CreatedAt: n.CreatedAt,
	}

	resp, err := w.client.R().
		SetContext(ctx).
		SetBody(payload).
		Post(w.url)
	if err != nil {
		w.logger.Warn("Alert webhook delivery failed",
			zap.String("title", n.Title),
			zap.String("device_id", n.UserID),
			zap.Error(err),
		)
		return
	}
	if resp.IsError() {
		w.logger.Warn("Alert webhook returned error status",
			zap.String("title", n.Title),
			zap.Int("status", resp.StatusCode()),
		)
	}
}
