package gateway

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jacl-coder/PixelStorm-RPG/config"
)

// BotSecretHeader 机器人前端换取令牌时携带共享密钥的请求头
const BotSecretHeader = "X-Bot-Secret"

const defaultTokenTTL = 24 * time.Hour

// ErrInvalidToken 令牌无效或已过期
var ErrInvalidToken = errors.New("无效或已过期的令牌")

// Claims JWT载荷
type Claims struct {
	PlayerID string `json:"player_id"`
	jwt.RegisteredClaims
}

// TokenIssuer 签发和校验访问令牌 (HS256)
type TokenIssuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer 创建令牌签发器
func NewTokenIssuer(cfg config.AuthConfig) *TokenIssuer {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &TokenIssuer{
		secret: []byte(cfg.JWTSecret),
		issuer: cfg.Issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue 为玩家签发令牌
func (t *TokenIssuer) Issue(playerID string) (string, time.Time, error) {
	if playerID == "" {
		return "", time.Time{}, fmt.Errorf("%w: 缺少玩家ID", ErrInvalidToken)
	}
	now := t.now()
	expiresAt := now.Add(t.ttl)
	claims := Claims{
		PlayerID: playerID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.issuer,
			Subject:   playerID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("签名令牌失败: %w", err)
	}
	return signed, expiresAt, nil
}

// ParsePlayerID 校验令牌并返回玩家ID
func (t *TokenIssuer) ParsePlayerID(token string) (string, error) {
	if token == "" {
		return "", ErrInvalidToken
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
	}
	if t.issuer != "" {
		opts = append(opts, jwt.WithIssuer(t.issuer))
	}

	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	}, opts...)
	if err != nil || !parsed.Valid || claims.PlayerID == "" {
		return "", ErrInvalidToken
	}
	return claims.PlayerID, nil
}

// AuthHandler 令牌签发接口
type AuthHandler struct {
	tokens    *TokenIssuer
	botSecret string
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(tokens *TokenIssuer, botSecret string) *AuthHandler {
	return &AuthHandler{tokens: tokens, botSecret: botSecret}
}

// RegisterHandlers 注册HTTP处理器
func (h *AuthHandler) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/auth/token", h.handleToken)
}

// TokenRequest 令牌请求
type TokenRequest struct {
	PlayerID string `json:"player_id"`
}

// TokenResponse 令牌响应数据
type TokenResponse struct {
	Token     string    `json:"token"`
	PlayerID  string    `json:"player_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// handleToken 机器人前端用共享密钥为玩家换取令牌
func (h *AuthHandler) handleToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		sendErrorResponse(w, "仅支持POST方法", "", http.StatusMethodNotAllowed)
		return
	}
	if h.botSecret == "" {
		sendErrorResponse(w, "未配置令牌签发密钥", "", http.StatusServiceUnavailable)
		return
	}
	secret := r.Header.Get(BotSecretHeader)
	if subtle.ConstantTimeCompare([]byte(secret), []byte(h.botSecret)) != 1 {
		sendErrorResponse(w, "未授权", "", http.StatusUnauthorized)
		return
	}

	var req TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PlayerID == "" {
		sendErrorResponse(w, "无效的请求格式", "", http.StatusBadRequest)
		return
	}

	token, expiresAt, err := h.tokens.Issue(req.PlayerID)
	if err != nil {
		sendErrorResponse(w, "生成令牌失败", "", http.StatusInternalServerError)
		return
	}
	sendSuccessResponse(w, "令牌已签发", TokenResponse{Token: token, PlayerID: req.PlayerID, ExpiresAt: expiresAt})
}

// bearerToken 从 Authorization 头或 token 查询参数读取令牌
func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return r.URL.Query().Get("token")
}
