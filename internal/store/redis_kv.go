package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// RedisKV 基于Redis的键值存储
type RedisKV struct {
	client *redis.Client
	prefix string
}

// NewRedisKV 创建Redis键值存储，prefix 用于隔离不同部署
func NewRedisKV(client *redis.Client, prefix string) *RedisKV {
	return &RedisKV{client: client, prefix: prefix}
}

// Get 读取键值
func (r *RedisKV) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("读取Redis键 %s 失败: %w", key, err)
	}
	return data, nil
}

// Set 写入键值，不过期
func (r *RedisKV) Set(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, r.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("写入Redis键 %s 失败: %w", key, err)
	}
	return nil
}
