// Package gamedata 静态游戏数据表：怪物、技能、终结技、秘技、协同状态、职业与物品
package gamedata

import (
	"sort"

	"github.com/jacl-coder/PixelStorm-RPG/internal/models"
)

var monsters = map[string]models.MonsterTemplate{
	"goblin": {
		ID: "goblin", Name: "哥布林战士",
		MaxHP: 120, MaxToughness: 60, Weakness: models.DamagePhysical,
		Attack: 25, Defense: 8, XP: 35, Gold: 15,
		Loot: []models.LootEntry{
			{ItemID: "health_potion", Chance: 0.4},
			{ItemID: "iron_sword", Chance: 0.2},
		},
		Skills: []string{"slash", "war_cry"},
	},
	"orc": {
		ID: "orc", Name: "兽人狂战士",
		MaxHP: 180, MaxToughness: 80, Weakness: models.DamageIce,
		Attack: 35, Defense: 12, XP: 60, Gold: 25,
		Loot: []models.LootEntry{
			{ItemID: "health_potion", Chance: 0.3},
			{ItemID: "steel_armor", Chance: 0.15},
		},
		Skills: []string{"berserker_rage", "cleave"},
	},
	"ice_elemental": {
		ID: "ice_elemental", Name: "冰元素",
		MaxHP: 150, MaxToughness: 70, Weakness: models.DamageFire,
		Attack: 30, Defense: 15, XP: 50, Gold: 20,
		Loot: []models.LootEntry{
			{ItemID: "mana_potion", Chance: 0.5},
			{ItemID: "ice_crystal", Chance: 0.3},
		},
		Skills: []string{"frost_bolt", "ice_armor"},
	},
	"dragon": {
		ID: "dragon", Name: "远古巨龙",
		MaxHP: 400, MaxToughness: 120, Weakness: models.DamageLightning,
		Attack: 60, Defense: 25, XP: 200, Gold: 100,
		Loot: []models.LootEntry{
			{ItemID: "dragon_scale", Chance: 0.8},
			{ItemID: "legendary_weapon", Chance: 0.1},
		},
		Skills: []string{"fire_breath", "wing_attack", "roar"},
	},
	"artifact_guardian": {
		ID: "artifact_guardian", Name: "圣遗物守卫",
		MaxHP: 200, MaxToughness: 90, Weakness: models.DamageQuantum,
		Attack: 45, Defense: 20, XP: 100, Gold: 75,
		ArtifactDrops: []string{"guardians_bastion"},
		Skills:        []string{"artifact_slam", "protective_barrier"},
	},
	"kwami_phantom": {
		ID: "kwami_phantom", Name: "量子幻影",
		MaxHP: 180, MaxToughness: 70, Weakness: models.DamageImaginary,
		Attack: 50, Defense: 15, XP: 110, Gold: 80,
		ArtifactDrops: []string{"cat_noirs_folly", "plaggs_chaos"},
		Skills:        []string{"phantom_strike", "chaos_burst"},
	},
	"miraculous_sentinel": {
		ID: "miraculous_sentinel", Name: "奇迹哨兵",
		MaxHP: 220, MaxToughness: 100, Weakness: models.DamagePhysical,
		Attack: 40, Defense: 25, XP: 120, Gold: 90,
		ArtifactDrops: []string{"ladybugs_luck", "hawk_moths_dominion"},
		Skills:        []string{"sentinel_guard", "miraculous_beam"},
	},
}

// Monster 按ID查找怪物模板
func Monster(id string) (models.MonsterTemplate, bool) {
	m, ok := monsters[id]
	return m, ok
}

// MonsterIDs 返回所有怪物ID（已排序）
func MonsterIDs() []string {
	ids := make([]string, 0, len(monsters))
	for id := range monsters {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// MonstersForLevel 返回适合玩家等级的随机遭遇池
func MonstersForLevel(level int) []string {
	switch {
	case level >= 5:
		return MonsterIDs()
	case level >= 3:
		return []string{"goblin", "ice_elemental", "orc"}
	default:
		return []string{"goblin"}
	}
}
