package httpapi

import (
	"net/http"
	"strings"

	"carewatch-data/internal/domain"
	"carewatch-data/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthHandler 注册/登录/登出/会话查询
type AuthHandler struct {
	users    repository.UsersRepository
	sessions *SessionStore
	logger   *zap.Logger
}

func NewAuthHandler(users repository.UsersRepository, sessions *SessionStore, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{users: users, sessions: sessions, logger: logger}
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone_number"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// accountView 会话/登录响应里的账号视图（不含口令散列）
type accountView struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Email            string  `json:"email"`
	Role             string  `json:"role"`
	DeviceIdentifier *string `json:"device_identifier"`
	PhoneNumber      *string `json:"phone_number"`
	IsVerified       bool    `json:"is_verified"`
}

func hashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func viewOf(u *domain.UserAccount) accountView {
	return accountView{
		ID:               u.ID,
		Name:             u.Name,
		Email:            u.Email,
		Role:             u.Role,
		DeviceIdentifier: u.DeviceIdentifier,
		PhoneNumber:      u.PhoneNumber,
		IsVerified:       u.IsVerified,
	}
}

// Signup 创建账号。email 唯一；口令以 bcrypt 散列入库。
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req signupRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "name, email, password are required")
		return
	}

	existing, err := h.users.GetUserByEmail(ctx, req.Email)
	if err != nil {
		h.logger.Error("Failed to check existing email", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if existing != nil {
		writeError(w, http.StatusConflict, "email already registered")
		return
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	account := &domain.UserAccount{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         "user",
	}
	if req.Phone != "" {
		account.PhoneNumber = &req.Phone
	}
	if err := h.users.CreateUser(ctx, account); err != nil {
		h.logger.Error("Failed to create user account", zap.String("email", req.Email), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.logger.Info("User account created", zap.String("user_id", account.ID))
	writeJSON(w, http.StatusCreated, map[string]any{"user": viewOf(account)})
}

// Login 邮箱+口令换 bearer token
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	account, err := h.users.GetUserByEmail(ctx, req.Email)
	if err != nil {
		h.logger.Error("Failed to load account for login", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	// 账号不存在与口令错误返回同一响应，避免探测注册邮箱
	if account == nil {
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)); err != nil {
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	token, err := h.sessions.Create(ctx, Session{UserID: account.ID, Role: account.Role})
	if err != nil {
		h.logger.Error("Failed to create session", zap.String("user_id", account.ID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  viewOf(account),
	})
}

// Logout 删除会话；无 token 也返回成功
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token != "" {
		if err := h.sessions.Delete(r.Context(), token); err != nil {
			h.logger.Error("Failed to delete session", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
	}
	writeMessage(w, http.StatusOK, "logged out")
}

// GetSession 当前登录账号；无有效会话返回 401
func (h *AuthHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.sessionFromRequest(r)
	if err != nil {
		h.logger.Error("Failed to resolve session", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if sess == nil {
		writeError(w, http.StatusUnauthorized, "not logged in")
		return
	}

	account, err := h.users.GetUserByID(r.Context(), sess.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if account == nil {
		// 会话指向的账号已不存在，视同未登录
		writeError(w, http.StatusUnauthorized, "not logged in")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": viewOf(account)})
}
