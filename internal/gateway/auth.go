package gateway

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jacl-coder/PlatformBrawl-Server/internal/auth"
	"github.com/jacl-coder/PlatformBrawl-Server/internal/logging"
)

// AuthHandler 认证处理器，只签发访客令牌
type AuthHandler struct {
	tokens *auth.TokenIssuer
	log    zerolog.Logger
	now    func() time.Time
}

// AuthResponse 认证响应
type AuthResponse struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Token     string    `json:"token,omitempty"`
	PlayerID  string    `json:"player_id,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(tokens *auth.TokenIssuer) *AuthHandler {
	return &AuthHandler{
		tokens: tokens,
		log:    logging.With("auth"),
		now:    time.Now,
	}
}

// RegisterHandlers 注册HTTP处理器
func (h *AuthHandler) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/auth/guest", h.handleGuest)
	mux.HandleFunc("/auth/refresh", h.handleRefresh)
	mux.HandleFunc("/auth/validate", h.handleValidate)
}

// handleGuest 为新访客签发令牌
func (h *AuthHandler) handleGuest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "仅支持POST方法", http.StatusMethodNotAllowed)
		return
	}

	now := h.now()
	token, playerID, err := h.tokens.IssueGuest(now)
	if err != nil {
		h.log.Error().Err(err).Msg("签发访客令牌失败")
		http.Error(w, "生成令牌失败", http.StatusInternalServerError)
		return
	}

	h.log.Info().Str("player", playerID).Msg("新访客")
	h.writeJSON(w, http.StatusOK, AuthResponse{
		Success:   true,
		Message:   "访客登录成功",
		Token:     token,
		PlayerID:  playerID,
		ExpiresAt: now.Add(h.tokens.TTL()),
	})
}

// handleRefresh 用仍然有效的令牌换一个新令牌，玩家ID不变
func (h *AuthHandler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "仅支持POST方法", http.StatusMethodNotAllowed)
		return
	}

	now := h.now()
	playerID, err := h.tokens.Verify(requestToken(r), now)
	if err != nil {
		h.writeJSON(w, http.StatusUnauthorized, AuthResponse{Success: false, Message: "无效或已过期的令牌"})
		return
	}

	token, err := h.tokens.Issue(playerID, true, now)
	if err != nil {
		h.log.Error().Err(err).Str("player", playerID).Msg("刷新令牌失败")
		http.Error(w, "生成令牌失败", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, AuthResponse{
		Success:   true,
		Message:   "令牌已刷新",
		Token:     token,
		PlayerID:  playerID,
		ExpiresAt: now.Add(h.tokens.TTL()),
	})
}

// handleValidate 处理令牌验证请求
func (h *AuthHandler) handleValidate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "仅支持GET方法", http.StatusMethodNotAllowed)
		return
	}

	token := requestToken(r)
	if token == "" {
		http.Error(w, "未提供令牌", http.StatusBadRequest)
		return
	}

	playerID, err := h.tokens.Verify(token, h.now())
	if err != nil {
		h.writeJSON(w, http.StatusUnauthorized, AuthResponse{Success: false, Message: "无效或已过期的令牌"})
		return
	}

	h.writeJSON(w, http.StatusOK, AuthResponse{
		Success:  true,
		Message:  "令牌有效",
		PlayerID: playerID,
	})
}

func (h *AuthHandler) writeJSON(w http.ResponseWriter, status int, resp AuthResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

// requestToken 从 Authorization 头或查询参数读取令牌
func requestToken(r *http.Request) string {
	if token := r.Header.Get("Authorization"); token != "" {
		return strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
	}
	return r.URL.Query().Get("token")
}
