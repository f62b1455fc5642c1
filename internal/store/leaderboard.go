package store

import (
	"context"
	"sort"
	"sync"

	"github.com/jacl-coder/PixelStorm-RPG/internal/models"
)

// Leaderboard 排行榜，Redis 实现为 models.RedisLeaderboard
type Leaderboard interface {
	RecordVictory(ctx context.Context, entry models.LeaderboardEntry, gold int) error
	GetLeaderboard(ctx context.Context, scoreType models.LeaderboardType, limit int) ([]models.LeaderboardEntry, error)
	GetPlayerRank(ctx context.Context, playerID string, scoreType models.LeaderboardType) (int, error)
}

// MemoryLeaderboard 进程内排行榜
type MemoryLeaderboard struct {
	mu      sync.RWMutex
	entries map[string]models.LeaderboardEntry
	scores  map[models.LeaderboardType]map[string]float64
}

// NewMemoryLeaderboard 创建内存排行榜
func NewMemoryLeaderboard() *MemoryLeaderboard {
	return &MemoryLeaderboard{
		entries: make(map[string]models.LeaderboardEntry),
		scores: map[models.LeaderboardType]map[string]float64{
			models.LeaderboardVictories: {},
			models.LeaderboardGold:      {},
		},
	}
}

// RecordVictory 胜场+1，累计金币增加
func (m *MemoryLeaderboard) RecordVictory(_ context.Context, entry models.LeaderboardEntry, gold int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[entry.PlayerID] = entry
	m.scores[models.LeaderboardVictories][entry.PlayerID]++
	if gold > 0 {
		m.scores[models.LeaderboardGold][entry.PlayerID] += float64(gold)
	}
	return nil
}

// GetLeaderboard 按分数降序返回前 limit 名
func (m *MemoryLeaderboard) GetLeaderboard(_ context.Context, scoreType models.LeaderboardType, limit int) ([]models.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	ranked := m.ranked(scoreType)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// GetPlayerRank 玩家排名，从1开始，未上榜返回 -1
func (m *MemoryLeaderboard) GetPlayerRank(_ context.Context, playerID string, scoreType models.LeaderboardType) (int, error) {
	for _, e := range m.ranked(scoreType) {
		if e.PlayerID == playerID {
			return e.Rank, nil
		}
	}
	return -1, nil
}

func (m *MemoryLeaderboard) ranked(scoreType models.LeaderboardType) []models.LeaderboardEntry {
	if scoreType != models.LeaderboardGold {
		scoreType = models.LeaderboardVictories
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	scores := m.scores[scoreType]
	out := make([]models.LeaderboardEntry, 0, len(scores))
	for id, score := range scores {
		e := m.entries[id]
		e.PlayerID = id
		e.Score = score
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].PlayerID < out[j].PlayerID
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}
