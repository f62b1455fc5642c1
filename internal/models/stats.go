// stats.go

package models

import (
	"time"
)

// EncounterOutcome 战斗结局
type EncounterOutcome string

const (
	OutcomeVictory EncounterOutcome = "victory"
	OutcomeDefeat  EncounterOutcome = "defeat"
	OutcomeFled    EncounterOutcome = "fled"
	// OutcomeExpired 闲置超时被放弃，不结算
	OutcomeExpired EncounterOutcome = "expired"
)

// EncounterRecord 战斗记录
type EncounterRecord struct {
	ID           string           `json:"id"`
	PlayerID     string           `json:"player_id"`
	ChannelID    string           `json:"channel_id"`
	MonsterID    string           `json:"monster_id"`
	Outcome      EncounterOutcome `json:"outcome"`
	Turns        int              `json:"turns"`
	XPGained     int              `json:"xp_gained"`
	GoldGained   int              `json:"gold_gained"`
	GoldLost     int              `json:"gold_lost"`
	Loot         []string         `json:"loot"`
	LevelsGained int              `json:"levels_gained"`
	StartedAt    time.Time        `json:"started_at"`
	EndedAt      time.Time        `json:"ended_at"`
}

// Duration 战斗时长
func (r EncounterRecord) Duration() time.Duration {
	return r.EndedAt.Sub(r.StartedAt)
}

// EncounterStats 玩家战绩统计
type EncounterStats struct {
	PlayerID        string `json:"player_id"`
	TotalEncounters int    `json:"total_encounters"`
	Victories       int    `json:"victories"`
	Defeats         int    `json:"defeats"`
	GoldEarned      int    `json:"gold_earned"`
}

// WinRate 胜率（百分比）
func (s EncounterStats) WinRate() float64 {
	if s.TotalEncounters == 0 {
		return 0
	}
	return float64(s.Victories) * 100 / float64(s.TotalEncounters)
}

// LeaderboardEntry 排行榜条目
type LeaderboardEntry struct {
	PlayerID string  `json:"player_id"`
	Name     string  `json:"name"`
	Level    int     `json:"level"`
	Score    float64 `json:"score"`
	Rank     int     `json:"rank"` // 排名
}

// LeaderboardType 排行榜类型
type LeaderboardType string

const (
	// LeaderboardVictories 胜场排行榜
	LeaderboardVictories LeaderboardType = "victories"
	// LeaderboardGold 累计金币排行榜
	LeaderboardGold LeaderboardType = "gold"
)

// 注意：表结构定义已移至 pkg/db/schema.go 统一管理
