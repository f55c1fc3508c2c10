package httpapi

import (
	"net/http"
	"strings"

	"carewatch-data/internal/repository"

	"go.uber.org/zap"
)

// EmergencyContactHandler 紧急联系人查询 GET /api/emergencycontact
// 设备 → 关注该设备的看护人 → phone_number。
// 同时支持 ?deviceId=xxx 与 /api/emergencycontact/{deviceId} 两种形式。
type EmergencyContactHandler struct {
	users  repository.UsersRepository
	logger *zap.Logger
}

func NewEmergencyContactHandler(users repository.UsersRepository, logger *zap.Logger) *EmergencyContactHandler {
	return &EmergencyContactHandler{users: users, logger: logger}
}

// GetByQuery ?deviceId= 形式
func (h *EmergencyContactHandler) GetByQuery(w http.ResponseWriter, r *http.Request) {
	h.lookup(w, r, r.URL.Query().Get("deviceId"))
}

// GetByPath /api/emergencycontact/{deviceId} 形式
func (h *EmergencyContactHandler) GetByPath(w http.ResponseWriter, r *http.Request) {
	deviceID := strings.TrimPrefix(r.URL.Path, "/api/emergencycontact/")
	if strings.Contains(deviceID, "/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	h.lookup(w, r, deviceID)
}

func (h *EmergencyContactHandler) lookup(w http.ResponseWriter, r *http.Request, deviceID string) {
	if deviceID == "" {
		writeMessage(w, http.StatusBadRequest, "Invalid device ID")
		return
	}

	account, err := h.users.GetUserByDeviceIdentifier(r.Context(), deviceID)
	if err != nil {
		h.logger.Error("Failed to look up emergency contact",
			zap.String("device_id", deviceID),
			zap.Error(err),
		)
		writeMessage(w, http.StatusInternalServerError, "Database error")
		return
	}
	if account == nil {
		writeMessage(w, http.StatusNotFound, "No user found with this device ID")
		return
	}

	// phone_number 可能未填，按 null 返回
	var contact *string
	if account.PhoneNumber != nil && *account.PhoneNumber != "" {
		contact = account.PhoneNumber
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":           "Emergency contact retrieved successfully",
		"emergency_contact": contact,
	})
}
