package gamedata

import (
	"math"

	"github.com/jacl-coder/PixelStorm-RPG/internal/models"
)

// StatPointsPerLevel 每次升级获得的属性点
const StatPointsPerLevel = 2

// ArtifactSlots 圣遗物部位
var ArtifactSlots = []string{"head", "hands", "body", "feet"}

// ClassInfo 职业定义
type ClassInfo struct {
	Class     models.CharacterClass
	Name      string
	BaseStats models.Attributes
	// 初始战技
	Skills []string
}

var classes = map[models.CharacterClass]ClassInfo{
	models.ClassWarrior: {
		Class: models.ClassWarrior, Name: "战士",
		BaseStats: models.Attributes{Strength: 15, Constitution: 12, Dexterity: 8, Intelligence: 5, Wisdom: 8, Charisma: 7},
		Skills:    []string{"power_strike", "heal"},
	},
	models.ClassMage: {
		Class: models.ClassMage, Name: "法师",
		BaseStats: models.Attributes{Strength: 5, Constitution: 8, Dexterity: 7, Intelligence: 15, Wisdom: 12, Charisma: 8},
		Skills:    []string{"flame_slash", "ice_lance", "heal"},
	},
	models.ClassRogue: {
		Class: models.ClassRogue, Name: "盗贼",
		BaseStats: models.Attributes{Strength: 8, Constitution: 10, Dexterity: 15, Intelligence: 10, Wisdom: 7, Charisma: 5},
		Skills:    []string{"power_strike", "heal"},
	},
	models.ClassArcher: {
		Class: models.ClassArcher, Name: "弓箭手",
		BaseStats: models.Attributes{Strength: 10, Constitution: 9, Dexterity: 15, Intelligence: 8, Wisdom: 10, Charisma: 3},
		Skills:    []string{"power_strike", "lightning_bolt", "heal"},
	},
	models.ClassHealer: {
		Class: models.ClassHealer, Name: "治疗者",
		BaseStats: models.Attributes{Strength: 5, Constitution: 10, Dexterity: 7, Intelligence: 12, Wisdom: 15, Charisma: 6},
		Skills:    []string{"heal", "lightning_bolt"},
	},
	models.ClassChronoWeave: {
		Class: models.ClassChronoWeave, Name: "时织者",
		BaseStats: models.Attributes{Strength: 11, Constitution: 11, Dexterity: 12, Intelligence: 11, Wisdom: 12, Charisma: 8},
		Skills:    []string{"power_strike", "lightning_bolt", "heal"},
	},
}

// Class 按职业查找定义
func Class(class models.CharacterClass) (ClassInfo, bool) {
	c, ok := classes[class]
	return c, ok
}

// XPForNextLevel 升到下一级所需经验
func XPForNextLevel(level int) int {
	if level < 1 {
		level = 1
	}
	return int(100 * math.Pow(1.5, float64(level-1)))
}

var items = map[string]models.Item{
	"health_potion": {ID: "health_potion", Name: "生命药水", Heal: 60, UltimateGain: 5},
	"mana_potion":   {ID: "mana_potion", Name: "法力药水", Mana: 50, UltimateGain: 5},
}

// Item 按ID查找战斗可用物品
func Item(id string) (models.Item, bool) {
	it, ok := items[id]
	return it, ok
}
