package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/jacl-coder/PixelStorm-RPG/config"
	"github.com/jacl-coder/PixelStorm-RPG/internal/game"
)

const healthCheckInterval = 10 * time.Second

// Response 统一响应格式
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// Gateway REST网关：机器人前端的命令入口，并将 /game/ 转发到游戏服务器
type Gateway struct {
	config     *config.Config
	service    *game.CombatService
	tokens     *TokenIssuer
	httpServer *http.Server

	gameURL *url.URL
	mutex   sync.RWMutex
	healthy bool
}

// NewGateway 创建新的网关
func NewGateway(cfg *config.Config, service *game.CombatService, tokens *TokenIssuer) *Gateway {
	return &Gateway{
		config:  cfg,
		service: service,
		tokens:  tokens,
		gameURL: &url.URL{Scheme: "http", Host: fmt.Sprintf("localhost:%d", cfg.Server.GamePort)},
		healthy: true,
	}
}

// Run 启动网关，ctx 取消后优雅关闭
func (g *Gateway) Run(ctx context.Context) error {
	g.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", g.config.Server.GatewayPort),
		Handler:           g.Handler(ctx),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go g.healthCheck(ctx)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("API网关启动", "port", g.config.Server.GatewayPort)
		if err := g.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP服务器错误: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := g.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("网关关闭错误: %w", err)
	}
	slog.Info("API网关已停止")
	return nil
}

// Handler 创建HTTP处理器，ctx 结束时停止后台清理
func (g *Gateway) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()

	NewAuthHandler(g.tokens, g.config.Auth.BotSecret).RegisterHandlers(mux)

	api := http.NewServeMux()
	NewCharacterHandler(g.service).RegisterHandlers(api)
	NewCombatHandler(g.service).RegisterHandlers(api)
	NewStatsHandler(g.service).RegisterHandlers(api)

	// 以下路由需要令牌，缓存位于鉴权之后
	authed := g.requireAuth(NewCacheMiddleware(ctx).Middleware(api))
	mux.Handle("/characters", authed)
	mux.Handle("/characters/", authed)
	mux.Handle("/players/", authed)
	mux.Handle("/combat/", authed)
	mux.Handle("/leaderboard", authed)

	// 游戏服务器转发（WebSocket 也经由此处）
	mux.HandleFunc("/game/", g.handleGameRequest)

	// 健康检查端点
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		sendSuccessResponse(w, "OK", map[string]any{
			"active_sessions": g.service.ActiveSessions(),
			"game_server":     g.gameHealthy(),
		})
	})

	return g.applyMiddleware(ctx, mux)
}

// applyMiddleware 应用中间件（从外到内）
func (g *Gateway) applyMiddleware(ctx context.Context, handler http.Handler) http.Handler {
	rpm := g.config.Server.RequestsPerMinute
	if rpm <= 0 {
		rpm = defaultRequestsPerMinute
	}
	handler = NewRateLimiter(ctx, rpm).Middleware(handler)
	handler = NewCORSMiddleware().Middleware(handler)
	handler = NewSecurityMiddleware().Middleware(handler)
	handler = NewLoggingMiddleware().Middleware(handler)
	return handler
}

type playerIDKey struct{}

// requireAuth 校验令牌并把玩家ID放入请求上下文
func (g *Gateway) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		playerID, err := g.tokens.ParsePlayerID(bearerToken(r))
		if err != nil {
			sendErrorResponse(w, "未授权", "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), playerIDKey{}, playerID)))
	})
}

// playerIDFrom 当前请求的玩家ID
func playerIDFrom(r *http.Request) string {
	id, _ := r.Context().Value(playerIDKey{}).(string)
	return id
}

// handleGameRequest 转发到游戏服务器，去掉 /game 前缀
func (g *Gateway) handleGameRequest(w http.ResponseWriter, r *http.Request) {
	if !g.gameHealthy() {
		sendErrorResponse(w, "游戏服务不可用", game.CodeBusy, http.StatusServiceUnavailable)
		return
	}

	proxy := httputil.NewSingleHostReverseProxy(g.gameURL)
	r.URL.Path = "/" + strings.TrimPrefix(r.URL.Path, "/game/")
	r.Header.Set("X-Forwarded-Host", r.Host)
	r.Host = g.gameURL.Host
	proxy.ServeHTTP(w, r)
}

func (g *Gateway) gameHealthy() bool {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return g.healthy
}

// healthCheck 定期检查游戏服务器
func (g *Gateway) healthCheck(ctx context.Context) {
	ticker := time.NewTicker(healthCheckInterval)
	defer ticker.Stop()

	client := http.Client{Timeout: 2 * time.Second}
	healthURL := *g.gameURL
	healthURL.Path = "/health"

	for {
		select {
		case <-ticker.C:
			ok := false
			resp, err := client.Get(healthURL.String())
			if err == nil {
				ok = resp.StatusCode == http.StatusOK
				resp.Body.Close()
			}

			g.mutex.Lock()
			if ok != g.healthy {
				if ok {
					slog.Info("游戏服务器恢复健康", "url", healthURL.String())
				} else {
					slog.Warn("游戏服务器不健康", "url", healthURL.String(), "err", err)
				}
				g.healthy = ok
			}
			g.mutex.Unlock()
		case <-ctx.Done():
			return
		}
	}
}

// sendSuccessResponse 发送成功响应
func sendSuccessResponse(w http.ResponseWriter, message string, data any) {
	writeJSON(w, http.StatusOK, Response{Success: true, Message: message, Data: data})
}

// sendErrorResponse 发送错误响应
func sendErrorResponse(w http.ResponseWriter, message, code string, statusCode int) {
	writeJSON(w, statusCode, Response{Success: false, Message: message, Code: code})
}

// sendDomainError 将领域错误映射为HTTP状态和错误码
func sendDomainError(w http.ResponseWriter, err error) {
	code := game.ErrorCode(err)
	status := statusFor(code)
	message := err.Error()
	if status == http.StatusInternalServerError {
		slog.Error("请求处理失败", "err", err)
		message = "服务器内部错误"
	}
	sendErrorResponse(w, message, code, status)
}

func statusFor(code string) int {
	switch code {
	case game.CodeInvalidTarget:
		return http.StatusBadRequest
	case game.CodeInsufficientResource, game.CodeNotReady, game.CodeItemUnavailable:
		return http.StatusUnprocessableEntity
	case game.CodeSessionConflict, game.CodeAlreadyExists:
		return http.StatusConflict
	case game.CodeSessionEnded:
		return http.StatusGone
	case game.CodeNotFound:
		return http.StatusNotFound
	case game.CodeBusy:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("写入响应失败", "err", err)
	}
}
