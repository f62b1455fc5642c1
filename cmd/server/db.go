package main

import (
	"context"
	"log"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jacl-coder/PixelStorm-RPG/pkg/db"
)

func newDBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "数据库管理",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "init",
			Short: "创建表结构",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withPostgres(cmd.Context(), func(ctx context.Context) error {
					if err := db.InitAllTables(ctx); err != nil {
						return err
					}
					slog.Info("✅ 数据库初始化完成", "tables", []string{"player_records", "encounter_records", "encounter_stats"})
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "reset",
			Short: "删除所有表和数据后重建",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withPostgres(cmd.Context(), func(ctx context.Context) error {
					slog.Warn("⚠️ 正在重置数据库，这将删除所有表和数据")
					if err := db.DropAllTables(ctx); err != nil {
						return err
					}
					if err := db.InitAllTables(ctx); err != nil {
						return err
					}
					slog.Info("✅ 数据库重置完成")
					return nil
				})
			},
		},
	)
	return cmd
}

// withPostgres 连接PostgreSQL执行操作后关闭
func withPostgres(ctx context.Context, fn func(context.Context) error) error {
	cfg := loadConfig()
	if err := db.InitPostgres(cfg.Database); err != nil {
		log.Fatalf("初始化PostgreSQL失败: %v", err)
	}
	defer db.Close()

	return fn(ctx)
}
