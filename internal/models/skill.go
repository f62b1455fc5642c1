// skill.go

package models

// DamageType 伤害属性
type DamageType string

const (
	DamagePhysical  DamageType = "physical"
	DamageFire      DamageType = "fire"
	DamageIce       DamageType = "ice"
	DamageLightning DamageType = "lightning"
	DamageWater     DamageType = "water"
	DamageEarth     DamageType = "earth"
	DamageWind      DamageType = "wind"
	DamageLight     DamageType = "light"
	DamageDark      DamageType = "dark"
	DamageQuantum   DamageType = "quantum"
	DamageImaginary DamageType = "imaginary"
	DamageChaos     DamageType = "chaos"
)

// SkillKind 技能类型
type SkillKind string

const (
	// SkillDamage 伤害技能
	SkillDamage SkillKind = "damage"
	// SkillHeal 治疗技能
	SkillHeal SkillKind = "heal"
)

// Skill 战技定义，消耗技能点
type Skill struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Description     string     `json:"description"`
	Kind            SkillKind  `json:"kind"`
	Cost            int        `json:"cost"` // 技能点消耗
	Damage          int        `json:"damage,omitempty"`
	Heal            int        `json:"heal,omitempty"`
	DamageType      DamageType `json:"damage_type,omitempty"`
	ToughnessDamage int        `json:"toughness_damage,omitempty"`
	UltimateGain    int        `json:"ultimate_gain"`
}

// IsSpell 非物理属性的伤害技能视为法术
func (s Skill) IsSpell() bool {
	return s.Kind == SkillDamage && s.DamageType != DamagePhysical
}

// Ultimate 职业终结技
type Ultimate struct {
	Class           CharacterClass `json:"class"`
	Name            string         `json:"name"`
	Description     string         `json:"description"`
	Damage          int            `json:"damage,omitempty"`
	Heal            int            `json:"heal,omitempty"`
	DamageType      DamageType     `json:"damage_type,omitempty"`
	ToughnessDamage int            `json:"toughness_damage,omitempty"`
}

// TechniqueEffect 秘技效果类型
type TechniqueEffect string

const (
	// EffectSkillPoints 额外技能点
	EffectSkillPoints TechniqueEffect = "skill_points"
	// EffectEnemyDebuff 敌人减益
	EffectEnemyDebuff TechniqueEffect = "enemy_debuff"
	// EffectShield 护盾
	EffectShield TechniqueEffect = "shield"
	// EffectUltimateEnergy 终结技能量
	EffectUltimateEnergy TechniqueEffect = "ultimate_energy"
)

// Technique 秘技，在战斗开始前选择，消耗秘技点
type Technique struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Cost        int             `json:"cost"`
	Effect      TechniqueEffect `json:"effect"`
	Value       int             `json:"value,omitempty"`

	// 减益参数
	Debuff      string  `json:"debuff,omitempty"`
	DebuffValue float64 `json:"debuff_value,omitempty"`
	Duration    int     `json:"duration,omitempty"`

	// GrantsState 附带排入的协同状态
	GrantsState string `json:"grants_state,omitempty"`
}

// SynergyTrigger 协同状态的触发动作
type SynergyTrigger string

const (
	TriggerBasicAttack SynergyTrigger = "basic_attack"
	TriggerSkill       SynergyTrigger = "skill"
	TriggerSpell       SynergyTrigger = "spell"
)

// SynergyEffect 协同状态效果
type SynergyEffect string

const (
	// SynergyRiposte 普攻附加护盾值两倍的伤害
	SynergyRiposte SynergyEffect = "riposte_damage"
	// SynergyGuaranteedCrit 必定暴击
	SynergyGuaranteedCrit SynergyEffect = "guaranteed_crit"
	// SynergyFreeEnhancedSpell 法术免费且伤害提升50%
	SynergyFreeEnhancedSpell SynergyEffect = "free_enhanced_spell"
)

// SynergyState 一次性协同状态
type SynergyState struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Trigger     SynergyTrigger `json:"trigger"`
	Effect      SynergyEffect  `json:"effect"`
}

// Item 战斗中可使用的物品
type Item struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Heal         int    `json:"heal,omitempty"`
	Mana         int    `json:"mana,omitempty"`
	UltimateGain int    `json:"ultimate_gain,omitempty"`
}
