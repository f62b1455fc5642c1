// schema.go

package db

import (
	"context"
	"fmt"
)

// 统一的数据库表结构定义

// CreateAllTablesSQL 创建所有表的SQL语句
const CreateAllTablesSQL = `
-- 玩家记录键值表（与Redis存储同构，value为玩家JSON）
CREATE TABLE IF NOT EXISTS player_records (
    key VARCHAR(128) PRIMARY KEY,
    value JSONB NOT NULL,
    updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
);

-- 战斗记录表
CREATE TABLE IF NOT EXISTS encounter_records (
    id UUID PRIMARY KEY,
    player_id VARCHAR(64) NOT NULL,
    channel_id VARCHAR(64) NOT NULL,
    monster_id VARCHAR(50) NOT NULL,
    outcome VARCHAR(20) NOT NULL, -- victory, defeat, fled, expired
    turns INT DEFAULT 0,
    xp_gained INT DEFAULT 0,
    gold_gained INT DEFAULT 0,
    gold_lost INT DEFAULT 0,
    loot TEXT[] DEFAULT '{}',
    levels_gained INT DEFAULT 0,
    started_at TIMESTAMP WITH TIME ZONE NOT NULL,
    ended_at TIMESTAMP WITH TIME ZONE NOT NULL
);

-- 按玩家统计的战绩视图
CREATE OR REPLACE VIEW encounter_stats AS
SELECT
    player_id,
    COUNT(*) AS total_encounters,
    COUNT(*) FILTER (WHERE outcome = 'victory') AS victories,
    COUNT(*) FILTER (WHERE outcome = 'defeat') AS defeats,
    COALESCE(SUM(gold_gained), 0) AS gold_earned
FROM encounter_records
GROUP BY player_id;

-- 创建索引以提高查询性能
CREATE INDEX IF NOT EXISTS idx_encounter_records_player_id ON encounter_records(player_id, ended_at DESC);
CREATE INDEX IF NOT EXISTS idx_encounter_records_monster_id ON encounter_records(monster_id);
`

// DropAllTablesSQL 删除所有表和视图的SQL语句
const DropAllTablesSQL = `
DROP VIEW IF EXISTS encounter_stats CASCADE;
DROP TABLE IF EXISTS encounter_records CASCADE;
DROP TABLE IF EXISTS player_records CASCADE;
`

// InitAllTables 初始化所有数据库表
func InitAllTables(ctx context.Context) error {
	if DB == nil {
		return fmt.Errorf("数据库未初始化")
	}
	if _, err := DB.ExecContext(ctx, CreateAllTablesSQL); err != nil {
		return fmt.Errorf("创建数据表失败: %w", err)
	}
	return nil
}

// DropAllTables 删除所有表和数据
func DropAllTables(ctx context.Context) error {
	if DB == nil {
		return fmt.Errorf("数据库未初始化")
	}
	if _, err := DB.ExecContext(ctx, DropAllTablesSQL); err != nil {
		return fmt.Errorf("重置数据库失败: %w", err)
	}
	return nil
}
