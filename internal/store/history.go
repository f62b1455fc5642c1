package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/lib/pq"

	"github.com/jacl-coder/PixelStorm-RPG/internal/models"
)

// EncounterHistory 战斗记录存储
type EncounterHistory interface {
	Record(ctx context.Context, rec models.EncounterRecord) error
	Recent(ctx context.Context, playerID string, limit int) ([]models.EncounterRecord, error)
	Stats(ctx context.Context, playerID string) (models.EncounterStats, error)
}

const defaultHistoryLimit = 20

// HistoryRepo 基于 encounter_records 表的战斗记录
type HistoryRepo struct {
	db *sql.DB
}

// NewHistoryRepo 创建战斗记录仓库
func NewHistoryRepo(db *sql.DB) *HistoryRepo {
	return &HistoryRepo{db: db}
}

// Record 写入一条战斗记录
func (h *HistoryRepo) Record(ctx context.Context, rec models.EncounterRecord) error {
	query := `
		INSERT INTO encounter_records (id, player_id, channel_id, monster_id, outcome, turns,
			xp_gained, gold_gained, gold_lost, loot, levels_gained, started_at, ended_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := h.db.ExecContext(ctx, query,
		rec.ID, rec.PlayerID, rec.ChannelID, rec.MonsterID, string(rec.Outcome), rec.Turns,
		rec.XPGained, rec.GoldGained, rec.GoldLost, pq.Array(rec.Loot), rec.LevelsGained,
		rec.StartedAt, rec.EndedAt,
	)
	if err != nil {
		return fmt.Errorf("写入战斗记录失败: %w", err)
	}
	return nil
}

// Recent 按结束时间倒序查询最近的战斗
func (h *HistoryRepo) Recent(ctx context.Context, playerID string, limit int) ([]models.EncounterRecord, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	query := `
		SELECT id, player_id, channel_id, monster_id, outcome, turns,
		       xp_gained, gold_gained, gold_lost, loot, levels_gained, started_at, ended_at
		FROM encounter_records
		WHERE player_id = $1
		ORDER BY ended_at DESC
		LIMIT $2
	`
	rows, err := h.db.QueryContext(ctx, query, playerID, limit)
	if err != nil {
		return nil, fmt.Errorf("查询战斗记录失败: %w", err)
	}
	defer rows.Close()

	var records []models.EncounterRecord
	for rows.Next() {
		var rec models.EncounterRecord
		var outcome string
		if err := rows.Scan(
			&rec.ID, &rec.PlayerID, &rec.ChannelID, &rec.MonsterID, &outcome, &rec.Turns,
			&rec.XPGained, &rec.GoldGained, &rec.GoldLost, pq.Array(&rec.Loot), &rec.LevelsGained,
			&rec.StartedAt, &rec.EndedAt,
		); err != nil {
			return nil, fmt.Errorf("扫描战斗记录失败: %w", err)
		}
		rec.Outcome = models.EncounterOutcome(outcome)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("遍历战斗记录失败: %w", err)
	}
	return records, nil
}

// Stats 查询玩家战绩统计
func (h *HistoryRepo) Stats(ctx context.Context, playerID string) (models.EncounterStats, error) {
	stats := models.EncounterStats{PlayerID: playerID}
	query := `
		SELECT total_encounters, victories, defeats, gold_earned
		FROM encounter_stats
		WHERE player_id = $1
	`
	err := h.db.QueryRowContext(ctx, query, playerID).Scan(
		&stats.TotalEncounters, &stats.Victories, &stats.Defeats, &stats.GoldEarned,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return stats, nil
	}
	if err != nil {
		return stats, fmt.Errorf("查询战绩统计失败: %w", err)
	}
	return stats, nil
}

// MemoryHistory 进程内战斗记录
type MemoryHistory struct {
	mu      sync.RWMutex
	records map[string][]models.EncounterRecord
}

// NewMemoryHistory 创建内存战斗记录
func NewMemoryHistory() *MemoryHistory {
	return &MemoryHistory{records: make(map[string][]models.EncounterRecord)}
}

// Record 追加一条记录
func (m *MemoryHistory) Record(_ context.Context, rec models.EncounterRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec.Loot = slices.Clone(rec.Loot)
	m.records[rec.PlayerID] = append(m.records[rec.PlayerID], rec)
	return nil
}

// Recent 最近的记录，最新的在前
func (m *MemoryHistory) Recent(_ context.Context, playerID string, limit int) ([]models.EncounterRecord, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := m.records[playerID]
	out := make([]models.EncounterRecord, 0, min(limit, len(all)))
	for i := len(all) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, all[i])
	}
	return out, nil
}

// Stats 汇总玩家战绩
func (m *MemoryHistory) Stats(_ context.Context, playerID string) (models.EncounterStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := models.EncounterStats{PlayerID: playerID}
	for _, rec := range m.records[playerID] {
		stats.TotalEncounters++
		switch rec.Outcome {
		case models.OutcomeVictory:
			stats.Victories++
		case models.OutcomeDefeat:
			stats.Defeats++
		}
		stats.GoldEarned += rec.GoldGained
	}
	return stats, nil
}
