package httpapi

import (
	"errors"
	"net/http"

	"carewatch-data/internal/service"

	"go.uber.org/zap"
)

// IngestHandler 设备上报入口 POST /api/data
type IngestHandler struct {
	ingestion *service.IngestionService
	logger    *zap.Logger
}

func NewIngestHandler(ingestion *service.IngestionService, logger *zap.Logger) *IngestHandler {
	return &IngestHandler{ingestion: ingestion, logger: logger}
}

// PostData 处理一次上报。
// 200 {"message":"Data saved!"}；400 缺少必填字段；500 主表写入失败。
// JSON 解析失败归为 500（既有客户端依赖该状态码区分"重试"与"丢弃"）。
func (h *IngestHandler) PostData(w http.ResponseWriter, r *http.Request) {
	var payload service.SensorPayload
	if err := readBodyJSON(r, 1<<20, &payload); err != nil {
		h.logger.Error("Failed to decode sensor payload", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	_, err := h.ingestion.Ingest(r.Context(), &payload)
	if err != nil {
		if errors.Is(err, service.ErrMissingFields) {
			writeError(w, http.StatusBadRequest, "Missing heart_rate or device_id")
			return
		}
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeMessage(w, http.StatusOK, "Data saved!")
}
