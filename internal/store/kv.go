// Package store 玩家记录与战斗历史的持久化
package store

import (
	"context"
	"errors"
)

// ErrNotFound 键不存在
var ErrNotFound = errors.New("记录不存在")

// KV 玩家记录使用的键值存储，Redis 与 PostgreSQL 两种实现保存相同的 JSON 文档
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}
