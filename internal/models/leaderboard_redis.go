package models

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisLeaderboard Redis排行榜管理器
type RedisLeaderboard struct {
	client *redis.Client
}

// NewRedisLeaderboard 创建Redis排行榜管理器
func NewRedisLeaderboard(client *redis.Client) *RedisLeaderboard {
	return &RedisLeaderboard{client: client}
}

// 排行榜Redis键名
const (
	LeaderboardVictoriesKey = "leaderboard:victories"
	LeaderboardGoldKey      = "leaderboard:gold"

	// 玩家详细信息键前缀
	PlayerInfoPrefix = "player:info:"

	// 玩家信息缓存时间
	LeaderboardCacheTTL = 24 * time.Hour
)

// RecordVictory 记录一场胜利：胜场+1，累计金币增加
func (rl *RedisLeaderboard) RecordVictory(ctx context.Context, entry LeaderboardEntry, gold int) error {
	pipe := rl.client.TxPipeline()
	pipe.ZIncrBy(ctx, LeaderboardVictoriesKey, 1, entry.PlayerID)
	if gold > 0 {
		pipe.ZIncrBy(ctx, LeaderboardGoldKey, float64(gold), entry.PlayerID)
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("序列化排行榜条目失败: %w", err)
	}
	pipe.Set(ctx, PlayerInfoPrefix+entry.PlayerID, data, LeaderboardCacheTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("更新排行榜失败: %w", err)
	}
	return nil
}

// GetLeaderboard 获取排行榜（按分数降序）
func (rl *RedisLeaderboard) GetLeaderboard(ctx context.Context, scoreType LeaderboardType, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	members, err := rl.client.ZRevRangeWithScores(ctx, leaderboardKey(scoreType), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("读取排行榜失败: %w", err)
	}

	entries := make([]LeaderboardEntry, 0, len(members))
	for i, member := range members {
		playerID, ok := member.Member.(string)
		if !ok {
			continue
		}

		entry, err := rl.getPlayerInfo(ctx, playerID)
		if err != nil {
			// 缓存过期时只保留ID
			entry = &LeaderboardEntry{PlayerID: playerID}
		}
		entry.Score = member.Score
		entry.Rank = i + 1
		entries = append(entries, *entry)
	}

	return entries, nil
}

// GetPlayerRank 获取玩家排名，未上榜返回-1
func (rl *RedisLeaderboard) GetPlayerRank(ctx context.Context, playerID string, scoreType LeaderboardType) (int, error) {
	rank, err := rl.client.ZRevRank(ctx, leaderboardKey(scoreType), playerID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return -1, nil
		}
		return -1, err
	}

	return int(rank) + 1, nil // Redis排名从0开始
}

// leaderboardKey 获取排行榜键名
func leaderboardKey(scoreType LeaderboardType) string {
	switch scoreType {
	case LeaderboardGold:
		return LeaderboardGoldKey
	default:
		return LeaderboardVictoriesKey
	}
}

// getPlayerInfo 从Redis获取玩家信息
func (rl *RedisLeaderboard) getPlayerInfo(ctx context.Context, playerID string) (*LeaderboardEntry, error) {
	data, err := rl.client.Get(ctx, PlayerInfoPrefix+playerID).Bytes()
	if err != nil {
		return nil, err
	}

	var entry LeaderboardEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}
