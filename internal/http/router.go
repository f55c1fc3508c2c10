package httpapi

import (
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Router 使用标准库 http.ServeMux（避免引入第三方路由依赖）
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

func methodOnly(method string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if req.Method != method {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h(w, req)
	}
}

// RegisterIngestRoutes 设备上报
func (r *Router) RegisterIngestRoutes(h *IngestHandler) {
	r.Handle("/api/data", methodOnly(http.MethodPost, h.PostData))
}

// RegisterEmergencyContactRoutes 紧急联系人查询（两种路径形式）
func (r *Router) RegisterEmergencyContactRoutes(h *EmergencyContactHandler) {
	r.Handle("/api/emergencycontact", methodOnly(http.MethodGet, h.GetByQuery))
	r.Handle("/api/emergencycontact/", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if strings.TrimPrefix(req.URL.Path, "/api/emergencycontact/") == "" {
			writeMessage(w, http.StatusBadRequest, "Invalid device ID")
			return
		}
		h.GetByPath(w, req)
	})
}

// RegisterAuthRoutes 注册/登录/登出/会话
func (r *Router) RegisterAuthRoutes(h *AuthHandler) {
	r.Handle("/api/auth/signup", methodOnly(http.MethodPost, h.Signup))
	r.Handle("/api/auth/login", methodOnly(http.MethodPost, h.Login))
	r.Handle("/api/auth/logout", methodOnly(http.MethodPost, h.Logout))
	r.Handle("/api/auth/session", methodOnly(http.MethodGet, h.GetSession))
}

// RegisterProfileRoutes 账号资料
func (r *Router) RegisterProfileRoutes(h *ProfileHandler) {
	r.Handle("/api/profile", methodOnly(http.MethodPut, h.Update))
}

// RegisterReadingsRoutes 看板整点窗口取数
func (r *Router) RegisterReadingsRoutes(h *ReadingsHandler) {
	r.Handle("/api/readings/vitals", methodOnly(http.MethodGet, h.GetVitals))
	r.Handle("/api/readings/locations", methodOnly(http.MethodGet, h.GetLocations))
	r.Handle("/api/readings/motion", methodOnly(http.MethodGet, h.GetMotion))
	r.Handle("/api/readings/fallevents", methodOnly(http.MethodGet, h.GetFallEvents))
}

// RegisterAdminRoutes 管理端分页表格
func (r *Router) RegisterAdminRoutes(h *AdminHandler) {
	r.Handle("/api/admin/devices", methodOnly(http.MethodGet, h.ListDevices))
	r.Handle("/api/admin/users", methodOnly(http.MethodGet, h.ListUsers))
	r.Handle("/api/admin/vitals", methodOnly(http.MethodGet, h.ListVitals))
	r.Handle("/api/admin/locations", methodOnly(http.MethodGet, h.ListLocations))
	r.Handle("/api/admin/motion", methodOnly(http.MethodGet, h.ListMotion))
	r.Handle("/api/admin/fallevents", methodOnly(http.MethodGet, h.ListFallEvents))
	r.Handle("/api/admin/notifications", methodOnly(http.MethodGet, h.ListNotifications))
}

// RegisterExportRoutes 管理端导出
func (r *Router) RegisterExportRoutes(h *ExportHandler) {
	r.Handle("/api/admin/vitals/export", methodOnly(http.MethodGet, h.ExportVitals))
}
