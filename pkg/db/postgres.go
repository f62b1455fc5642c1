package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/jacl-coder/PixelStorm-RPG/config"
	_ "github.com/lib/pq"
)

var (
	// DB 全局数据库连接实例
	DB *sql.DB
)

// InitPostgres 初始化PostgreSQL连接
func InitPostgres(cfg config.DatabaseConfig) error {
	var err error

	DB, err = sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return fmt.Errorf("连接数据库失败: %w", err)
	}
	DB.SetMaxOpenConns(20)
	DB.SetConnMaxIdleTime(5 * time.Minute)

	// 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err = DB.PingContext(ctx); err != nil {
		return fmt.Errorf("数据库Ping失败: %w", err)
	}

	slog.Info("成功连接到PostgreSQL数据库", "host", cfg.Host, "dbname", cfg.DBName)
	return nil
}

// Close 关闭数据库连接
func Close() {
	if DB != nil {
		if err := DB.Close(); err != nil {
			slog.Warn("关闭数据库连接时发生错误", "err", err)
			return
		}
		slog.Info("数据库连接已关闭")
	}
}
