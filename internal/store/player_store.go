package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jacl-coder/PixelStorm-RPG/internal/models"
)

// PlayerStore 玩家记录读写，键为 player_<id>
type PlayerStore struct {
	kv KV
}

// NewPlayerStore 创建玩家记录存储
func NewPlayerStore(kv KV) *PlayerStore {
	return &PlayerStore{kv: kv}
}

// Load 加载玩家记录并补全旧版字段。记录不存在时返回 ErrNotFound
func (s *PlayerStore) Load(ctx context.Context, playerID string) (*models.Player, error) {
	data, err := s.kv.Get(ctx, models.PlayerKey(playerID))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("加载玩家 %s 失败: %w", playerID, err)
	}

	var p models.Player
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("解析玩家 %s 记录失败: %w", playerID, err)
	}
	if p.ID == "" {
		p.ID = playerID
	}
	p.Normalize()
	return &p, nil
}

// Save 保存完整的玩家记录，后写覆盖先写
func (s *PlayerStore) Save(ctx context.Context, p *models.Player) error {
	p.UpdatedAt = time.Now()
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("序列化玩家 %s 失败: %w", p.ID, err)
	}
	if err := s.kv.Set(ctx, models.PlayerKey(p.ID), data); err != nil {
		return fmt.Errorf("保存玩家 %s 失败: %w", p.ID, err)
	}
	return nil
}
