package httpapi

import (
	"net/http"

	"carewatch-data/internal/service"

	"go.uber.org/zap"
)

// ReadingsHandler 看板图表的整点窗口取数接口。
// 参数 date=YYYY-MM-DD（缺省今天）、hour=0..23（缺省当前小时）。
// 未登录 / 未设置关注设备 / 设备未激活一律返回空 data 而非错误，
// 前端按"无数据"渲染。
type ReadingsHandler struct {
	windows  *service.TimeWindowService
	sessions *SessionStore
	logger   *zap.Logger
}

func NewReadingsHandler(windows *service.TimeWindowService, sessions *SessionStore, logger *zap.Logger) *ReadingsHandler {
	return &ReadingsHandler{windows: windows, sessions: sessions, logger: logger}
}

// callerID 取当前登录账号 id；未登录返回空串（不报错）
func (h *ReadingsHandler) callerID(r *http.Request) (string, error) {
	sess, err := h.sessions.sessionFromRequest(r)
	if err != nil {
		return "", err
	}
	if sess == nil {
		return "", nil
	}
	return sess.UserID, nil
}

func windowParams(r *http.Request) (date string, hour int) {
	q := r.URL.Query()
	return q.Get("date"), parseInt(q.Get("hour"), -1)
}

func (h *ReadingsHandler) GetVitals(w http.ResponseWriter, r *http.Request) {
	userID, err := h.callerID(r)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"data": nil, "error": "Internal server error"})
		return
	}
	if userID == "" {
		writeJSON(w, http.StatusOK, map[string]any{"data": []any{}})
		return
	}
	date, hour := windowParams(r)
	rows, err := h.windows.VitalsForUser(r.Context(), userID, date, hour)
	if err != nil {
		h.logger.Error("Failed to fetch vitals window", zap.String("user_id", userID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]any{"data": nil, "error": "Internal server error"})
		return
	}
	out := make([]any, 0, len(rows))
	for _, v := range rows {
		out = append(out, v)
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": out})
}

func (h *ReadingsHandler) GetLocations(w http.ResponseWriter, r *http.Request) {
	userID, err := h.callerID(r)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"data": nil, "error": "Internal server error"})
		return
	}
	if userID == "" {
		writeJSON(w, http.StatusOK, map[string]any{"data": []any{}})
		return
	}
	date, hour := windowParams(r)
	rows, err := h.windows.LocationsForUser(r.Context(), userID, date, hour)
	if err != nil {
		h.logger.Error("Failed to fetch locations window", zap.String("user_id", userID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]any{"data": nil, "error": "Internal server error"})
		return
	}
	out := make([]any, 0, len(rows))
	for _, v := range rows {
		out = append(out, v)
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": out})
}

func (h *ReadingsHandler) GetMotion(w http.ResponseWriter, r *http.Request) {
	userID, err := h.callerID(r)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"data": nil, "error": "Internal server error"})
		return
	}
	if userID == "" {
		writeJSON(w, http.StatusOK, map[string]any{"data": []any{}})
		return
	}
	date, hour := windowParams(r)
	rows, err := h.windows.MotionForUser(r.Context(), userID, date, hour)
	if err != nil {
		h.logger.Error("Failed to fetch motion window", zap.String("user_id", userID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]any{"data": nil, "error": "Internal server error"})
		return
	}
	out := make([]any, 0, len(rows))
	for _, v := range rows {
		out = append(out, v)
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": out})
}

func (h *ReadingsHandler) GetFallEvents(w http.ResponseWriter, r *http.Request) {
	userID, err := h.callerID(r)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"data": nil, "error": "Internal server error"})
		return
	}
	if userID == "" {
		writeJSON(w, http.StatusOK, map[string]any{"data": []any{}})
		return
	}
	date, hour := windowParams(r)
	rows, err := h.windows.FallEventsForUser(r.Context(), userID, date, hour)
	if err != nil {
		h.logger.Error("Failed to fetch fall events window", zap.String("user_id", userID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]any{"data": nil, "error": "Internal server error"})
		return
	}
	out := make([]any, 0, len(rows))
	for _, v := range rows {
		out = append(out, v)
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": out})
}
