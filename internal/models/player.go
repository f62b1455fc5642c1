// player.go

package models

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

const (
	// PlayerKeyPrefix 玩家记录在键值存储中的前缀
	PlayerKeyPrefix = "player_"

	// DefaultMaxUltimateEnergy 默认终结技能量上限
	DefaultMaxUltimateEnergy = 100
	// DefaultCriticalDamage 默认暴击伤害倍率
	DefaultCriticalDamage = 1.5
	// DefaultTechniquePoints 默认秘技点
	DefaultTechniquePoints = 3
	// DefaultStartingGold 新角色初始金币
	DefaultStartingGold = 100

	// CritFollowUpTrigger 暴击追击触发标记
	CritFollowUpTrigger = "crit_follow_up"
)

var (
	// ErrPathAlreadyChosen 命途已选择
	ErrPathAlreadyChosen = errors.New("已经选择过命途")
	// ErrUnknownPath 未知命途
	ErrUnknownPath = errors.New("未知的命途")
)

// Resources 玩家资源
type Resources struct {
	HP                 int `json:"hp"`
	MaxHP              int `json:"max_hp"`
	Mana               int `json:"mana"`
	MaxMana            int `json:"max_mana"`
	Stamina            int `json:"stamina"`
	MaxStamina         int `json:"max_stamina"`
	UltimateEnergy     int `json:"ultimate_energy"`
	TechniquePoints    int `json:"technique_points"`
	MaxTechniquePoints int `json:"max_technique_points"`
	Shield             int `json:"shield"`
}

// DerivedStats 派生属性
type DerivedStats struct {
	MaxUltimateEnergy int     `json:"max_ultimate_energy"`
	Attack            int     `json:"attack"`
	MagicAttack       int     `json:"magic_attack"`
	Defense           int     `json:"defense"`
	CriticalChance    float64 `json:"critical_chance"`
	CriticalDamage    float64 `json:"critical_damage"`
	DodgeChance       float64 `json:"dodge_chance"`
	DamageReduction   float64 `json:"damage_reduction"`
	HealingBonus      float64 `json:"healing_bonus"`
	FollowUpChance    float64 `json:"follow_up_chance"`
}

// Player 玩家记录，由持久化层拥有，每次战斗前后加载/保存
type Player struct {
	ID    string         `json:"id"`
	Name  string         `json:"name"`
	Class CharacterClass `json:"class"`

	Level             int        `json:"level"`
	XP                int        `json:"xp"`
	Gold              int        `json:"gold"`
	Stats             Attributes `json:"stats"`
	UnallocatedPoints int        `json:"unallocated_points"`

	Resources    Resources    `json:"resources"`
	DerivedStats DerivedStats `json:"derived_stats"`

	Inventory        map[string]int `json:"inventory"`
	Skills           []string       `json:"skills"`
	Techniques       []string       `json:"techniques"`
	ChosenPath       Path           `json:"chosen_path,omitempty"`
	FollowUpTriggers []string       `json:"follow_up_triggers,omitempty"`
	Artifacts        []Artifact     `json:"artifacts,omitempty"`
	KillCount        map[string]int `json:"kill_count"`

	InCombat  bool      `json:"in_combat"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PlayerKey 返回玩家记录的存储键
func PlayerKey(playerID string) string {
	return PlayerKeyPrefix + playerID
}

// NewPlayer 按职业基础属性创建新角色
func NewPlayer(id, name string, class CharacterClass, base Attributes, skills []string) *Player {
	now := time.Now()
	p := &Player{
		ID:        id,
		Name:      name,
		Class:     class,
		Level:     1,
		Gold:      DefaultStartingGold,
		Stats:     base,
		Inventory: map[string]int{"health_potion": 3, "mana_potion": 2},
		Skills:    slices.Clone(skills),
		// 所有角色初始掌握伏击
		Techniques: []string{"ambush"},
		KillCount:  make(map[string]int),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	p.Resources = Resources{
		MaxHP:              100 + base.Constitution*10,
		MaxMana:            50 + base.Intelligence*5,
		MaxStamina:         50 + base.Dexterity*3,
		TechniquePoints:    DefaultTechniquePoints,
		MaxTechniquePoints: DefaultTechniquePoints,
	}
	p.Resources.HP = p.Resources.MaxHP
	p.Resources.Mana = p.Resources.MaxMana
	p.Resources.Stamina = p.Resources.MaxStamina

	p.DerivedStats = baseDerivedStats(base)
	return p
}

// baseDerivedStats 根据基础属性计算派生属性
func baseDerivedStats(a Attributes) DerivedStats {
	return DerivedStats{
		MaxUltimateEnergy: DefaultMaxUltimateEnergy,
		Attack:            10 + a.Strength*2,
		MagicAttack:       10 + a.Intelligence*2,
		Defense:           5 + a.Constitution,
		CriticalChance:    0.05 + float64(a.Dexterity)*0.005,
		CriticalDamage:    DefaultCriticalDamage,
		DodgeChance:       0.05 + float64(a.Dexterity)*0.005,
	}
}

// Normalize 为旧版记录补全缺失字段，只在加载时执行一次
func (p *Player) Normalize() {
	if p.Class == "" {
		p.Class = ClassWarrior
	}
	if p.Level <= 0 {
		p.Level = 1
	}
	if p.Inventory == nil {
		p.Inventory = make(map[string]int)
	}
	if p.KillCount == nil {
		p.KillCount = make(map[string]int)
	}
	if p.Techniques == nil {
		p.Techniques = []string{"ambush"}
	}

	r := &p.Resources
	if r.MaxHP <= 0 {
		r.MaxHP = 100 + p.Stats.Constitution*10
		if r.HP <= 0 {
			r.HP = r.MaxHP
		}
	}
	if r.MaxMana <= 0 {
		r.MaxMana = 50 + p.Stats.Intelligence*5
		r.Mana = r.MaxMana
	}
	if r.MaxStamina <= 0 {
		r.MaxStamina = 50 + p.Stats.Dexterity*3
		r.Stamina = r.MaxStamina
	}
	if r.MaxTechniquePoints <= 0 {
		r.MaxTechniquePoints = DefaultTechniquePoints
		r.TechniquePoints = DefaultTechniquePoints
	}

	d := &p.DerivedStats
	if d.MaxUltimateEnergy <= 0 {
		derived := baseDerivedStats(p.Stats)
		derived.DamageReduction = d.DamageReduction
		derived.HealingBonus = d.HealingBonus
		derived.FollowUpChance = d.FollowUpChance
		*d = derived
	}
	if d.CriticalDamage <= 0 {
		d.CriticalDamage = DefaultCriticalDamage
	}

	r.HP = clamp(r.HP, 0, r.MaxHP)
	r.Mana = clamp(r.Mana, 0, r.MaxMana)
	r.UltimateEnergy = clamp(r.UltimateEnergy, 0, d.MaxUltimateEnergy)
	r.TechniquePoints = clamp(r.TechniquePoints, 0, r.MaxTechniquePoints)
	if r.Shield < 0 {
		r.Shield = 0
	}
}

// ChoosePath 选择命途并应用加成
func (p *Player) ChoosePath(path Path) error {
	if p.ChosenPath != PathNone {
		return fmt.Errorf("%w: %s", ErrPathAlreadyChosen, p.ChosenPath)
	}

	switch path {
	case PathDestruction:
		p.DerivedStats.CriticalDamage += 0.2
		p.DerivedStats.FollowUpChance = 0.30
	case PathPreservation:
		p.DerivedStats.DamageReduction += 0.15
	case PathAbundance:
		p.DerivedStats.HealingBonus += 0.25
	case PathHunt:
		if !p.HasFollowUpTrigger(CritFollowUpTrigger) {
			p.FollowUpTriggers = append(p.FollowUpTriggers, CritFollowUpTrigger)
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnknownPath, path)
	}

	p.ChosenPath = path
	return nil
}

// HasFollowUpTrigger 是否拥有指定追击触发
func (p *Player) HasFollowUpTrigger(trigger string) bool {
	return slices.Contains(p.FollowUpTriggers, trigger)
}

// HasTechnique 是否掌握指定秘技
func (p *Player) HasTechnique(id string) bool {
	return slices.Contains(p.Techniques, id)
}

// ItemCount 背包中物品数量
func (p *Player) ItemCount(itemID string) int {
	return p.Inventory[itemID]
}

// AddItem 向背包添加物品
func (p *Player) AddItem(itemID string, count int) {
	if p.Inventory == nil {
		p.Inventory = make(map[string]int)
	}
	p.Inventory[itemID] += count
}

// ConsumeItem 消耗一个物品，数量不足时返回false
func (p *Player) ConsumeItem(itemID string) bool {
	if p.Inventory[itemID] <= 0 {
		return false
	}
	p.Inventory[itemID]--
	if p.Inventory[itemID] == 0 {
		delete(p.Inventory, itemID)
	}
	return true
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
