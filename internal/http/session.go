package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"carewatch-data/internal/store"

	"github.com/google/uuid"
)

const sessionKeyPrefix = "session:"

// Session 登录态（Redis 中以 JSON 存储，键带 TTL）
type Session struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// SessionStore 基于 store.KV 的会话存储：
// 签发不透明的 uuid bearer token，登出即删键，过期交给 TTL。
type SessionStore struct {
	kv  store.KV
	ttl time.Duration
}

func NewSessionStore(kv store.KV, ttl time.Duration) *SessionStore {
	return &SessionStore{kv: kv, ttl: ttl}
}

// Create 签发新 token 并写入会话
func (s *SessionStore) Create(ctx context.Context, sess Session) (string, error) {
	token := uuid.NewString()
	raw, err := json.Marshal(sess)
	if err != nil {
		return "", fmt.Errorf("marshal session: %w", err)
	}
	if err := s.kv.Set(ctx, sessionKeyPrefix+token, string(raw), s.ttl); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return token, nil
}

// Get 按 token 取会话；未命中或已过期返回 (nil, nil)
func (s *SessionStore) Get(ctx context.Context, token string) (*Session, error) {
	raw, err := s.kv.Get(ctx, sessionKeyPrefix+token)
	if err != nil {
		if errors.Is(err, store.ErrMiss) {
			return nil, nil
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	var sess Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &sess, nil
}

// Delete 登出：删除会话键（不存在也视为成功）
func (s *SessionStore) Delete(ctx context.Context, token string) error {
	return s.kv.Del(ctx, sessionKeyPrefix+token)
}

// bearerToken 从 Authorization: Bearer <token> 头取 token，
// 没有时回退 session_token cookie（浏览器端看板用）。
func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	if c, err := r.Cookie("session_token"); err == nil {
		return c.Value
	}
	return ""
}

// sessionFromRequest 解析请求的登录态；无 token/未命中返回 (nil, nil)
func (s *SessionStore) sessionFromRequest(r *http.Request) (*Session, error) {
	token := bearerToken(r)
	if token == "" {
		return nil, nil
	}
	return s.Get(r.Context(), token)
}
