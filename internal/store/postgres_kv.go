package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PostgresKV 基于 player_records 表的键值存储
type PostgresKV struct {
	db *sql.DB
}

// NewPostgresKV 创建PostgreSQL键值存储
func NewPostgresKV(db *sql.DB) *PostgresKV {
	return &PostgresKV{db: db}
}

// Get 读取键值
func (p *PostgresKV) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := p.db.QueryRowContext(ctx, `SELECT value FROM player_records WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("查询玩家记录失败: %w", err)
	}
	return value, nil
}

// Set 插入或覆盖键值
func (p *PostgresKV) Set(ctx context.Context, key string, value []byte) error {
	query := `
		INSERT INTO player_records (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`
	if _, err := p.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("保存玩家记录失败: %w", err)
	}
	return nil
}
