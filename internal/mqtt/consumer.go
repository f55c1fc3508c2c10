package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"carewatch-data/internal/config"
	"carewatch-data/internal/service"

	"go.uber.org/zap"
)

// ReadingsConsumer 订阅设备上报主题，把 MQTT 消息喂给与 HTTP 入口
// 相同的 ingestion 服务。载荷格式与 POST /api/data 一致。
type ReadingsConsumer struct {
	client    *Client
	ingestion *service.IngestionService
	cfg       *config.MQTTConfig
	logger    *zap.Logger
}

func NewReadingsConsumer(client *Client, ingestion *service.IngestionService, cfg *config.MQTTConfig, logger *zap.Logger) *ReadingsConsumer {
	return &ReadingsConsumer{
		client:    client,
		ingestion: ingestion,
		cfg:       cfg,
		logger:    logger,
	}
}

// Start 订阅配置的主题
func (c *ReadingsConsumer) Start() error {
	if err := c.client.Subscribe(c.cfg.Topic, c.cfg.QoS, c.handleMessage); err != nil {
		return fmt.Errorf("subscribe readings topic: %w", err)
	}
	c.logger.Info("MQTT readings consumer started",
		zap.String("topic", c.cfg.Topic),
		zap.Uint8("qos", c.cfg.QoS),
	)
	return nil
}

// Stop 断开 MQTT 连接
func (c *ReadingsConsumer) Stop() {
	c.client.Disconnect()
}

// handleMessage 解码一条上报并走标准 ingestion 流程。
// 校验失败的消息丢弃（MQTT 无法向设备回 400），只记日志。
func (c *ReadingsConsumer) handleMessage(topic string, payload []byte) error {
	var p service.SensorPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("decode sensor payload: %w", err)
	}

	_, err := c.ingestion.Ingest(context.Background(), &p)
	if err != nil {
		if errors.Is(err, service.ErrMissingFields) {
			c.logger.Warn("Dropping MQTT payload with missing fields", zap.String("topic", topic))
			return nil
		}
		return fmt.Errorf("ingest MQTT payload: %w", err)
	}
	return nil
}
