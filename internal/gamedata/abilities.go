package gamedata

import "github.com/jacl-coder/PixelStorm-RPG/internal/models"

// DefaultSkills 玩家未掌握任何可用战技时的默认技能
var DefaultSkills = []string{"power_strike", "heal"}

var skills = map[string]models.Skill{
	"power_strike": {
		ID: "power_strike", Name: "强力打击", Kind: models.SkillDamage,
		Cost: 1, Damage: 40, DamageType: models.DamagePhysical, ToughnessDamage: 15, UltimateGain: 20,
		Description: "强力的物理攻击",
	},
	"flame_slash": {
		ID: "flame_slash", Name: "烈焰斩", Kind: models.SkillDamage,
		Cost: 1, Damage: 35, DamageType: models.DamageFire, ToughnessDamage: 20, UltimateGain: 20,
		Description: "附带火焰的斩击",
	},
	"ice_lance": {
		ID: "ice_lance", Name: "冰枪术", Kind: models.SkillDamage,
		Cost: 1, Damage: 38, DamageType: models.DamageIce, ToughnessDamage: 18, UltimateGain: 20,
		Description: "锋利的冰之长枪",
	},
	"lightning_bolt": {
		ID: "lightning_bolt", Name: "闪电箭", Kind: models.SkillDamage,
		Cost: 1, Damage: 42, DamageType: models.DamageLightning, ToughnessDamage: 22, UltimateGain: 20,
		Description: "召唤雷电打击敌人",
	},
	"heal": {
		ID: "heal", Name: "治疗术", Kind: models.SkillHeal,
		Cost: 1, Heal: 50, UltimateGain: 15,
		Description: "恢复生命值",
	},
}

var ultimates = map[models.CharacterClass]models.Ultimate{
	models.ClassWarrior: {
		Class: models.ClassWarrior, Name: "剑刃风暴",
		Damage: 120, ToughnessDamage: 50, DamageType: models.DamagePhysical,
		Description: "毁灭性的连续斩击",
	},
	models.ClassMage: {
		Class: models.ClassMage, Name: "奥术毁灭",
		Damage: 100, ToughnessDamage: 60, DamageType: models.DamageQuantum,
		Description: "穿透一切抗性的奥术爆发",
	},
	models.ClassRogue: {
		Class: models.ClassRogue, Name: "暗影刺杀",
		Damage: 110, ToughnessDamage: 40, DamageType: models.DamagePhysical,
		Description: "从阴影中发动致命一击",
	},
	models.ClassArcher: {
		Class: models.ClassArcher, Name: "箭雨",
		Damage: 80, ToughnessDamage: 30, DamageType: models.DamagePhysical,
		Description: "倾泻而下的箭矢",
	},
	models.ClassHealer: {
		Class: models.ClassHealer, Name: "神圣干预",
		Heal: 150, DamageType: models.DamageQuantum,
		Description: "大幅恢复生命值",
	},
	models.ClassChronoWeave: {
		Class: models.ClassChronoWeave, Name: "时间裂隙",
		Damage: 90, ToughnessDamage: 40, DamageType: models.DamageQuantum,
		Description: "扭曲时间的打击",
	},
}

var techniques = map[string]models.Technique{
	"ambush": {
		ID: "ambush", Name: "伏击", Cost: 1,
		Effect: models.EffectSkillPoints, Value: 2,
		Description: "战斗开始时额外获得2个技能点",
	},
	"preparation": {
		ID: "preparation", Name: "战前准备", Cost: 2,
		Effect: models.EffectShield, Value: 50, GrantsState: "riposte",
		Description: "获得50点护盾，下一次普攻附加反击伤害",
	},
	"marking": {
		ID: "marking", Name: "标记弱点", Cost: 1,
		Effect: models.EffectEnemyDebuff, Debuff: "marked", DebuffValue: 0.25, Duration: 3, GrantsState: "opportunist",
		Description: "敌人3回合内受到的伤害提高25%，下一次战技必定暴击",
	},
	"focus": {
		ID: "focus", Name: "凝神", Cost: 2,
		Effect: models.EffectUltimateEnergy, Value: 30, GrantsState: "arcane_resonance",
		Description: "获得30点终结技能量，下一次法术免费且增强",
	},
}

var synergyStates = map[string]models.SynergyState{
	"riposte": {
		ID: "riposte", Name: "反击", Trigger: models.TriggerBasicAttack, Effect: models.SynergyRiposte,
		Description: "下一次普攻附加护盾值两倍的伤害",
	},
	"opportunist": {
		ID: "opportunist", Name: "乘虚而入", Trigger: models.TriggerSkill, Effect: models.SynergyGuaranteedCrit,
		Description: "下一次战技必定暴击",
	},
	"arcane_resonance": {
		ID: "arcane_resonance", Name: "奥术共鸣", Trigger: models.TriggerSpell, Effect: models.SynergyFreeEnhancedSpell,
		Description: "下一次法术不消耗技能点且伤害提高50%",
	},
}

// Skill 按ID查找战技
func Skill(id string) (models.Skill, bool) {
	s, ok := skills[id]
	return s, ok
}

// UltimateFor 返回职业终结技，未知职业使用战士终结技
func UltimateFor(class models.CharacterClass) models.Ultimate {
	if u, ok := ultimates[class]; ok {
		return u
	}
	return ultimates[models.ClassWarrior]
}

// Technique 按ID查找秘技
func Technique(id string) (models.Technique, bool) {
	t, ok := techniques[id]
	return t, ok
}

// SynergyState 按ID查找协同状态
func SynergyState(id string) (models.SynergyState, bool) {
	s, ok := synergyStates[id]
	return s, ok
}
