package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jacl-coder/PixelStorm-RPG/config"
	"github.com/jacl-coder/PixelStorm-RPG/internal/game"
	"github.com/jacl-coder/PixelStorm-RPG/internal/gateway"
	"github.com/jacl-coder/PixelStorm-RPG/internal/logging"
	"github.com/jacl-coder/PixelStorm-RPG/internal/models"
	"github.com/jacl-coder/PixelStorm-RPG/internal/store"
	"github.com/jacl-coder/PixelStorm-RPG/pkg/db"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "启动游戏服务器、API网关和闲置清理",
		RunE:  runServe,
	}
}

// loadConfig 加载配置并初始化日志
func loadConfig() *config.Config {
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}
	logging.Setup(cfg.Server.LogLevel, cfg.Server.Debug)
	return cfg
}

// backends 按配置选择的持久化实现
type backends struct {
	players     *store.PlayerStore
	history     store.EncounterHistory
	leaderboard store.Leaderboard
}

// openBackends 建立数据库连接并构造存储，返回的函数关闭连接
func openBackends(cfg *config.Config) (*backends, func(), error) {
	closers := []func(){}
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.UsesPostgres() {
		if err := db.InitPostgres(cfg.Database); err != nil {
			return nil, closeAll, fmt.Errorf("初始化PostgreSQL失败: %w", err)
		}
		closers = append(closers, db.Close)
	}
	if cfg.UsesRedis() {
		if err := db.InitRedis(cfg.Redis); err != nil {
			closeAll()
			return nil, func() {}, fmt.Errorf("初始化Redis失败: %w", err)
		}
		closers = append(closers, db.CloseRedis)
	}

	b := &backends{
		players: store.NewPlayerStore(newKV(cfg, db.DB)),
		history: store.NewMemoryHistory(),
	}
	if cfg.Storage.History == "postgres" {
		b.history = store.NewHistoryRepo(db.DB)
	}
	if cfg.Storage.Leaderboard {
		b.leaderboard = models.NewRedisLeaderboard(db.RedisClient)
	} else {
		b.leaderboard = store.NewMemoryLeaderboard()
	}

	slog.Info("存储已就绪",
		"backend", cfg.Storage.Backend,
		"history", cfg.Storage.History,
		"redis_leaderboard", cfg.Storage.Leaderboard,
	)
	return b, closeAll, nil
}

func newKV(cfg *config.Config, pg *sql.DB) store.KV {
	switch cfg.Storage.Backend {
	case "redis":
		return store.NewRedisKV(db.RedisClient, cfg.Storage.KeyPrefix)
	case "postgres":
		return store.NewPostgresKV(pg)
	default:
		slog.Warn("使用内存存储，重启后玩家数据将丢失")
		return store.NewMemoryKV()
	}
}

// newService 构造战斗服务
func newService(cfg *config.Config, b *backends, opts ...game.Option) *game.CombatService {
	base := []game.Option{
		game.WithHistory(b.history),
		game.WithLeaderboard(b.leaderboard),
		game.WithMaxSessions(cfg.Server.MaxSessions),
	}
	return game.NewCombatService(cfg.Combat, b.players, append(base, opts...)...)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg := loadConfig()

	b, closeBackends, err := openBackends(cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer closeBackends()

	hub := game.NewHub()
	service := newService(cfg, b, game.WithPublisher(hub))
	tokens := gateway.NewTokenIssuer(cfg.Auth)

	gameServer := game.NewGameServer(cfg, service, hub, tokens)
	gw := gateway.NewGateway(cfg, service, tokens)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return gameServer.Run(ctx) })
	g.Go(func() error { return gw.Run(ctx) })
	g.Go(func() error { return service.Run(ctx) })

	slog.Info("所有服务已启动", "game_port", cfg.Server.GamePort, "gateway_port", cfg.Server.GatewayPort)
	if err := g.Wait(); err != nil {
		slog.Error("服务异常退出", "err", err)
		return err
	}
	slog.Info("服务器已安全关闭")
	return nil
}
