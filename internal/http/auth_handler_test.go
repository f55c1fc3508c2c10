package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"carewatch-data/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func newAuthRouter(users *memUsersRepo) (*Router, *SessionStore) {
	sessions := NewSessionStore(newMemKV(), time.Hour)
	r := NewRouter(zap.NewNop())
	r.RegisterAuthRoutes(NewAuthHandler(users, sessions, zap.NewNop()))
	r.RegisterProfileRoutes(NewProfileHandler(users, sessions, zap.NewNop()))
	return r, sessions
}

func seedAccount(t *testing.T, users *memUsersRepo, email, password string) *domain.UserAccount {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	u := &domain.UserAccount{
		ID:           "u-1",
		Name:         "Grace",
		Email:        email,
		PasswordHash: string(hash),
		Role:         "user",
	}
	require.NoError(t, users.CreateUser(context.Background(), u))
	return u
}

func doJSON(router *Router, method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestSignup_CreatesAccountWithHashedPassword(t *testing.T) {
	users := newMemUsersRepo()
	router, _ := newAuthRouter(users)

	rec := doJSON(router, http.MethodPost, "/api/auth/signup",
		`{"name":"Grace","email":"Grace@Example.com","password":"s3cret"}`, "")

	require.Equal(t, http.StatusCreated, rec.Code)

	stored, err := users.GetUserByEmail(context.Background(), "grace@example.com")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "user", stored.Role)
	// 口令不落明文
	assert.NotEqual(t, "s3cret", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("s3cret")))
}

func TestSignup_DuplicateEmailRejected(t *testing.T) {
	users := newMemUsersRepo()
	seedAccount(t, users, "grace@example.com", "s3cret")
	router, _ := newAuthRouter(users)

	rec := doJSON(router, http.MethodPost, "/api/auth/signup",
		`{"name":"Other","email":"grace@example.com","password":"x"}`, "")

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSignup_MissingFieldsRejected(t *testing.T) {
	router, _ := newAuthRouter(newMemUsersRepo())

	rec := doJSON(router, http.MethodPost, "/api/auth/signup", `{"email":"a@b.c"}`, "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogin_IssuesUsableToken(t *testing.T) {
	users := newMemUsersRepo()
	seedAccount(t, users, "grace@example.com", "s3cret")
	router, _ := newAuthRouter(users)

	rec := doJSON(router, http.MethodPost, "/api/auth/login",
		`{"email":"grace@example.com","password":"s3cret"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	assert.Equal(t, "u-1", resp.User.ID)

	// token 可用于会话查询
	rec = doJSON(router, http.MethodGet, "/api/auth/session", "", resp.Token)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLogin_WrongPasswordRejected(t *testing.T) {
	users := newMemUsersRepo()
	seedAccount(t, users, "grace@example.com", "s3cret")
	router, _ := newAuthRouter(users)

	rec := doJSON(router, http.MethodPost, "/api/auth/login",
		`{"email":"grace@example.com","password":"wrong"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// 未注册邮箱返回同样的 401，不暴露账号是否存在
	rec = doJSON(router, http.MethodPost, "/api/auth/login",
		`{"email":"nobody@example.com","password":"wrong"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogout_InvalidatesSession(t *testing.T) {
	users := newMemUsersRepo()
	seedAccount(t, users, "grace@example.com", "s3cret")
	router, _ := newAuthRouter(users)

	rec := doJSON(router, http.MethodPost, "/api/auth/login",
		`{"email":"grace@example.com","password":"s3cret"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	rec = doJSON(router, http.MethodPost, "/api/auth/logout", "", resp.Token)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(router, http.MethodGet, "/api/auth/session", "", resp.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetSession_NoTokenReturns401(t *testing.T) {
	router, _ := newAuthRouter(newMemUsersRepo())

	rec := doJSON(router, http.MethodGet, "/api/auth/session", "", "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProfileUpdate_ChangesFieldsAndPassword(t *testing.T) {
	users := newMemUsersRepo()
	seedAccount(t, users, "grace@example.com", "s3cret")
	router, sessions := newAuthRouter(users)

	token, err := sessions.Create(context.Background(), Session{UserID: "u-1", Role: "user"})
	require.NoError(t, err)

	rec := doJSON(router, http.MethodPut, "/api/profile",
		`{"phone_number":"+256700000001","device_identifier":"wristband-007","password":"newpass"}`, token)
	require.Equal(t, http.StatusOK, rec.Code)

	stored, err := users.GetUserByID(context.Background(), "u-1")
	require.NoError(t, err)
	require.NotNil(t, stored.PhoneNumber)
	assert.Equal(t, "+256700000001", *stored.PhoneNumber)
	require.NotNil(t, stored.DeviceIdentifier)
	assert.Equal(t, "wristband-007", *stored.DeviceIdentifier)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("newpass")))
	// 姓名未在请求里，保持不变
	assert.Equal(t, "Grace", stored.Name)
}

func TestProfileUpdate_RequiresSession(t *testing.T) {
	router, _ := newAuthRouter(newMemUsersRepo())

	rec := doJSON(router, http.MethodPut, "/api/profile", `{"name":"X"}`, "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProfileUpdate_EmptyBodyRejected(t *testing.T) {
	users := newMemUsersRepo()
	seedAccount(t, users, "grace@example.com", "s3cret")
	router, sessions := newAuthRouter(users)

	token, err := sessions.Create(context.Background(), Session{UserID: "u-1", Role: "user"})
	require.NoError(t, err)

	rec := doJSON(router, http.MethodPut, "/api/profile", `{}`, token)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
