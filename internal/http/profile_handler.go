package httpapi

import (
	"net/http"

	"carewatch-data/internal/repository"

	"go.uber.org/zap"
)

// ProfileHandler 账号资料更新（姓名、电话、关注设备、改密）
type ProfileHandler struct {
	users    repository.UsersRepository
	sessions *SessionStore
	logger   *zap.Logger
}

func NewProfileHandler(users repository.UsersRepository, sessions *SessionStore, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{users: users, sessions: sessions, logger: logger}
}

type profileRequest struct {
	Name             *string `json:"name"`
	PhoneNumber      *string `json:"phone_number"`
	DeviceIdentifier *string `json:"device_identifier"`
	Password         *string `json:"password"`
}

// Update PUT /api/profile。字段缺省表示不修改；
// 与其它取数路径不同，资料更新失败要向调用方报错（UI 弹 toast）。
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sess, err := h.sessions.sessionFromRequest(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if sess == nil {
		writeError(w, http.StatusUnauthorized, "not logged in")
		return
	}

	var req profileRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	update := repository.ProfileUpdate{
		Name:             req.Name,
		PhoneNumber:      req.PhoneNumber,
		DeviceIdentifier: req.DeviceIdentifier,
	}
	if req.Password != nil {
		if *req.Password == "" {
			writeError(w, http.StatusBadRequest, "password must not be empty")
			return
		}
		hash, err := hashPassword(*req.Password)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		update.PasswordHash = &hash
	}
	if update.Name == nil && update.PhoneNumber == nil && update.DeviceIdentifier == nil && update.PasswordHash == nil {
		writeError(w, http.StatusBadRequest, "nothing to update")
		return
	}

	if err := h.users.UpdateProfile(ctx, sess.UserID, update); err != nil {
		h.logger.Error("Failed to update profile", zap.String("user_id", sess.UserID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeMessage(w, http.StatusOK, "Profile saved successfully!")
}
