package models

// LootEntry 掉落表条目，按概率独立判定
type LootEntry struct {
	ItemID string  `json:"item_id"`
	Chance float64 `json:"chance"`
}

// MonsterTemplate 怪物模板（只读），开战时复制为可变快照
type MonsterTemplate struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	MaxHP        int        `json:"max_hp"`
	MaxToughness int        `json:"max_toughness"`
	Weakness     DamageType `json:"weakness"`
	Attack       int        `json:"attack"`
	Defense      int        `json:"defense"`

	// 奖励
	XP            int         `json:"xp"`
	Gold          int         `json:"gold"`
	Loot          []LootEntry `json:"loot,omitempty"`
	ArtifactDrops []string    `json:"artifact_drops,omitempty"`

	Skills []string `json:"skills,omitempty"`
}

// AttackRange 敌人攻击伤害区间（闭区间）
func (m MonsterTemplate) AttackRange() (int, int) {
	low := m.Attack - 5
	if low < 0 {
		low = 0
	}
	return low, m.Attack + 10
}
