package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"carewatch-data/internal/repository"

	"go.uber.org/zap"
)

// exportPageSize 导出单次取数上限（够覆盖一天的上报量）
const exportPageSize = 10000

// ExportHandler 管理端 xlsx 导出
type ExportHandler struct {
	readings repository.ReadingsRepository
	sessions *SessionStore
	logger   *zap.Logger
}

func NewExportHandler(readings repository.ReadingsRepository, sessions *SessionStore, logger *zap.Logger) *ExportHandler {
	return &ExportHandler{readings: readings, sessions: sessions, logger: logger}
}

// ExportVitals GET /api/admin/vitals/export?search=...
// 按检索条件导出生命体征读数为 Excel 附件。
func (h *ExportHandler) ExportVitals(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.sessionFromRequest(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if sess == nil {
		writeError(w, http.StatusUnauthorized, "not logged in")
		return
	}

	search := r.URL.Query().Get("search")
	rows, _, err := h.readings.ListVitals(r.Context(), 1, exportPageSize, search, "created_at", "desc")
	if err != nil {
		h.logger.Error("Failed to load vitals for export", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	content, err := GenerateVitalsExport(rows)
	if err != nil {
		h.logger.Error("Failed to generate vitals export", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	filename := fmt.Sprintf("vitals-%s.xlsx", time.Now().UTC().Format("20060102-150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(content)
}
