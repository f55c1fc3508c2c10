package httpapi

import (
	"net/http"

	"carewatch-data/internal/repository"

	"go.uber.org/zap"
)

// AdminHandler 管理端分页表格接口。
// 统一响应 {data, count}；后端查询失败按取数约定返回
// {data: null, count: null, error} 而不是抛错，前端按错误态渲染表格。
type AdminHandler struct {
	devices       repository.DevicesRepository
	users         repository.UsersRepository
	readings      repository.ReadingsRepository
	notifications repository.NotificationsRepository
	sessions      *SessionStore
	logger        *zap.Logger
}

func NewAdminHandler(
	devices repository.DevicesRepository,
	users repository.UsersRepository,
	readings repository.ReadingsRepository,
	notifications repository.NotificationsRepository,
	sessions *SessionStore,
	logger *zap.Logger,
) *AdminHandler {
	return &AdminHandler{
		devices:       devices,
		users:         users,
		readings:      readings,
		notifications: notifications,
		sessions:      sessions,
		logger:        logger,
	}
}

// requireSession 列表接口要求登录；未登录返回 false 并写 401
func (h *AdminHandler) requireSession(w http.ResponseWriter, r *http.Request) bool {
	sess, err := h.sessions.sessionFromRequest(r)
	if err != nil {
		h.logger.Error("Failed to resolve session", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return false
	}
	if sess == nil {
		writeError(w, http.StatusUnauthorized, "not logged in")
		return false
	}
	return true
}

func writePage(w http.ResponseWriter, rows any, count int) {
	writeJSON(w, http.StatusOK, map[string]any{"data": rows, "count": count})
}

func writePageError(w http.ResponseWriter, logger *zap.Logger, what string, err error) {
	logger.Error("Failed to list "+what, zap.Error(err))
	writeJSON(w, http.StatusOK, map[string]any{"data": nil, "count": nil, "error": "failed to list " + what})
}

func (h *AdminHandler) ListDevices(w http.ResponseWriter, r *http.Request) {
	if !h.requireSession(w, r) {
		return
	}
	p := readPageParams(r)
	rows, count, err := h.devices.ListDevices(r.Context(), p.Page, p.Size, p.Search, p.SortBy, p.SortOrder)
	if err != nil {
		writePageError(w, h.logger, "devices", err)
		return
	}
	writePage(w, rows, count)
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	if !h.requireSession(w, r) {
		return
	}
	p := readPageParams(r)
	rows, count, err := h.users.ListUsers(r.Context(), p.Page, p.Size, p.Search, p.SortBy, p.SortOrder)
	if err != nil {
		writePageError(w, h.logger, "users", err)
		return
	}
	// 列表响应不回传口令散列
	out := make([]accountView, 0, len(rows))
	for _, u := range rows {
		out = append(out, viewOf(u))
	}
	writePage(w, out, count)
}

func (h *AdminHandler) ListVitals(w http.ResponseWriter, r *http.Request) {
	if !h.requireSession(w, r) {
		return
	}
	p := readPageParams(r)
	rows, count, err := h.readings.ListVitals(r.Context(), p.Page, p.Size, p.Search, p.SortBy, p.SortOrder)
	if err != nil {
		writePageError(w, h.logger, "vitals readings", err)
		return
	}
	writePage(w, rows, count)
}

func (h *AdminHandler) ListLocations(w http.ResponseWriter, r *http.Request) {
	if !h.requireSession(w, r) {
		return
	}
	p := readPageParams(r)
	rows, count, err := h.readings.ListLocations(r.Context(), p.Page, p.Size, p.Search, p.SortBy, p.SortOrder)
	if err != nil {
		writePageError(w, h.logger, "location readings", err)
		return
	}
	writePage(w, rows, count)
}

func (h *AdminHandler) ListMotion(w http.ResponseWriter, r *http.Request) {
	if !h.requireSession(w, r) {
		return
	}
	p := readPageParams(r)
	rows, count, err := h.readings.ListMotion(r.Context(), p.Page, p.Size, p.Search, p.SortBy, p.SortOrder)
	if err != nil {
		writePageError(w, h.logger, "motion readings", err)
		return
	}
	writePage(w, rows, count)
}

func (h *AdminHandler) ListFallEvents(w http.ResponseWriter, r *http.Request) {
	if !h.requireSession(w, r) {
		return
	}
	p := readPageParams(r)
	rows, count, err := h.readings.ListFallEvents(r.Context(), p.Page, p.Size, p.Search, p.SortBy, p.SortOrder)
	if err != nil {
		writePageError(w, h.logger, "fall events", err)
		return
	}
	writePage(w, rows, count)
}

func (h *AdminHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	if !h.requireSession(w, r) {
		return
	}
	p := readPageParams(r)
	rows, count, err := h.notifications.ListNotifications(r.Context(), p.Page, p.Size, p.Search, p.SortBy, p.SortOrder)
	if err != nil {
		writePageError(w, h.logger, "notifications", err)
		return
	}
	writePage(w, rows, count)
}
