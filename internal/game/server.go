package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jacl-coder/PixelStorm-RPG/config"
)

// TokenParser 从访问令牌中解析玩家ID
type TokenParser interface {
	ParsePlayerID(token string) (string, error)
}

// GameServer 游戏服务器：WebSocket 战斗界面
type GameServer struct {
	config     *config.Config
	service    *CombatService
	hub        *Hub
	tokens     TokenParser
	httpServer *http.Server
}

// NewGameServer 创建新的游戏服务器
func NewGameServer(cfg *config.Config, service *CombatService, hub *Hub, tokens TokenParser) *GameServer {
	return &GameServer{
		config:  cfg,
		service: service,
		hub:     hub,
		tokens:  tokens,
	}
}

// Run 启动游戏服务器，ctx 取消后优雅关闭
func (s *GameServer) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.config.Server.GamePort),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("游戏服务器启动", "port", s.config.Server.GamePort)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("游戏服务器错误: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	// 关闭所有连接
	s.hub.CloseAll()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("游戏服务器关闭错误: %w", err)
	}
	slog.Info("游戏服务器已停止")
	return nil
}

// Handler 创建HTTP处理器
func (s *GameServer) Handler() http.Handler {
	mux := http.NewServeMux()

	// WebSocket 连接端点
	mux.HandleFunc("/ws", s.handleWSConnection)

	// 健康检查端点
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"status":          "ok",
			"active_sessions": s.service.ActiveSessions(),
		})
	})

	return mux
}
