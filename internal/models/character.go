package models

// CharacterClass 角色职业
type CharacterClass string

const (
	// ClassWarrior 战士
	ClassWarrior CharacterClass = "warrior"
	// ClassMage 法师
	ClassMage CharacterClass = "mage"
	// ClassRogue 盗贼
	ClassRogue CharacterClass = "rogue"
	// ClassArcher 弓箭手
	ClassArcher CharacterClass = "archer"
	// ClassHealer 治疗者
	ClassHealer CharacterClass = "healer"
	// ClassChronoWeave 时织者
	ClassChronoWeave CharacterClass = "chrono_weave"
)

// Attributes 角色基础属性
type Attributes struct {
	Strength     int `json:"strength"`
	Dexterity    int `json:"dexterity"`
	Constitution int `json:"constitution"`
	Intelligence int `json:"intelligence"`
	Wisdom       int `json:"wisdom"`
	Charisma     int `json:"charisma"`
}

// Path 命途，每个角色只能选择一次
type Path string

const (
	// PathNone 尚未选择
	PathNone Path = ""
	// PathDestruction 毁灭：暴击伤害提升，击破时可能追击
	PathDestruction Path = "destruction"
	// PathPreservation 存护：受到的伤害降低
	PathPreservation Path = "preservation"
	// PathAbundance 丰饶：治疗效果提升
	PathAbundance Path = "abundance"
	// PathHunt 巡猎：对半血以下敌人增伤，暴击时可能追击
	PathHunt Path = "hunt"
)

// RarityLegendary 传说品质
const RarityLegendary = "legendary"

// Artifact 圣遗物
type Artifact struct {
	Set    string `json:"set"`
	Slot   string `json:"slot"` // head, hands, body, feet
	Rarity string `json:"rarity"`
}

// 注意：职业基础属性表位于 internal/gamedata 统一管理
