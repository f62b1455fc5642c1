package combat

import (
	"fmt"
	"slices"
	"strings"

	"github.com/jacl-coder/PixelStorm-RPG/internal/gamedata"
	"github.com/jacl-coder/PixelStorm-RPG/internal/models"
)

// ActionKind 玩家行动类型
type ActionKind string

const (
	ActionAttack   ActionKind = "attack"
	ActionSkill    ActionKind = "skill"
	ActionUltimate ActionKind = "ultimate"
	ActionItem     ActionKind = "item"
	ActionFlee     ActionKind = "flee"
)

// Action 玩家行动，Arg 为技能ID或物品ID
type Action struct {
	Kind ActionKind `json:"kind"`
	Arg  string     `json:"arg,omitempty"`
}

// ParseActionKind 解析行动类型，兼容常见别名
func ParseActionKind(s string) (ActionKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "attack", "basic_attack":
		return ActionAttack, nil
	case "skill":
		return ActionSkill, nil
	case "ultimate", "ult":
		return ActionUltimate, nil
	case "item", "use_item":
		return ActionItem, nil
	case "flee", "run":
		return ActionFlee, nil
	default:
		return "", fmt.Errorf("%w: 未知的行动 %q", ErrInvalidTarget, s)
	}
}

// EventKind 战斗事件类型
type EventKind string

const (
	EventCritical          EventKind = "critical"
	EventWeaknessBreak     EventKind = "weakness_break"
	EventFollowUp          EventKind = "follow_up"
	EventEnemyStunned      EventKind = "enemy_stunned"
	EventToughnessRestored EventKind = "toughness_restored"
	EventSynergyConsumed   EventKind = "synergy_consumed"
	EventEnemyAttack       EventKind = "enemy_attack"
)

// Event 一次行动中发生的事件
type Event struct {
	Kind   EventKind `json:"kind"`
	Amount int       `json:"amount,omitempty"`
	Detail string    `json:"detail,omitempty"`
}

// Result 一次行动的结果
type Result struct {
	Lines      []string    `json:"lines"`
	Events     []Event     `json:"events,omitempty"`
	TurnEnded  bool        `json:"turn_ended"`
	Ended      bool        `json:"ended"`
	Outcome    State       `json:"outcome"`
	Settlement *Settlement `json:"settlement,omitempty"`
}

// Has 结果中是否包含指定事件
func (r Result) Has(kind EventKind) bool {
	for _, e := range r.Events {
		if e.Kind == kind {
			return true
		}
	}
	return false
}

const (
	basicAttackMin       = 15
	basicAttackMax       = 28
	basicToughnessDamage = 8
	basicUltimateGain    = 10

	defaultSkillUltimateGain = 15

	brokenBonusBasic    = 1.3
	brokenBonusSkill    = 1.5
	brokenBonusUltimate = 1.8

	huntBonus          = 1.2
	enhancedSpellBonus = 1.5
)

// basicAttack 普攻：+1技能点，+10终结技能量，物理韧性伤害8，结束回合
func (s *Session) basicAttack() {
	p := s.Player
	bonus := 0
	guaranteed := false
	for _, st := range s.consumeSynergy(models.TriggerBasicAttack) {
		switch st.Effect {
		case models.SynergyRiposte:
			bonus += p.Resources.Shield * 2
			s.logf("🛡️ %s：附加 %d 点反击伤害", st.Name, p.Resources.Shield*2)
		case models.SynergyGuaranteedCrit:
			guaranteed = true
		}
	}

	dmg := roll(s.rng, basicAttackMin, basicAttackMax) + bonus
	dmg = s.rollCritical(dmg, guaranteed, "basic_attack")

	s.gainSkillPoints(1)
	s.gainUltimate(basicUltimateGain)

	wasBroken := s.Enemy.Broken
	s.applyToughness(models.DamagePhysical, basicToughnessDamage)
	dealt := s.dealDamage(s.modify(dmg, wasBroken, brokenBonusBasic))
	s.logf("⚔️ %s 发动普攻，对 %s 造成 %d 点伤害", p.Name, s.Enemy.Name, dealt)

	s.endPlayerTurn()
}

// useSkill 战技：校验技能点后扣除，治疗或造成伤害，结束回合
func (s *Session) useSkill(id string) error {
	sk, ok := s.lookupSkill(id)
	if !ok {
		return fmt.Errorf("%w: 未知的战技 %q", ErrInvalidTarget, id)
	}

	triggers := []models.SynergyTrigger{models.TriggerSkill}
	if sk.IsSpell() {
		triggers = append(triggers, models.TriggerSpell)
	}
	enhanced := hasEffect(s.peekSynergy(triggers...), models.SynergyFreeEnhancedSpell)

	cost := sk.Cost
	if enhanced {
		cost = 0
	}
	if s.SkillPoints < cost {
		return fmt.Errorf("%w: 技能点不足（需要 %d，当前 %d）", ErrInsufficientResource, cost, s.SkillPoints)
	}

	// 以下开始修改状态
	s.SkillPoints -= cost
	consumed := s.consumeSynergy(triggers...)
	p := s.Player

	gain := sk.UltimateGain
	if gain <= 0 {
		gain = defaultSkillUltimateGain
	}

	if sk.Kind == models.SkillHeal {
		healed := s.heal(scale(sk.Heal, 1+p.DerivedStats.HealingBonus))
		s.logf("💚 %s 使用「%s」，恢复 %d 点生命", p.Name, sk.Name, healed)
		s.gainUltimate(gain)
		s.endPlayerTurn()
		return nil
	}

	dmg := roll(s.rng, sk.Damage-5, sk.Damage+10)
	if enhanced {
		dmg = scale(dmg, enhancedSpellBonus)
	}
	dmg = s.rollCritical(dmg, hasEffect(consumed, models.SynergyGuaranteedCrit), sk.ID)

	wasBroken := s.Enemy.Broken
	s.applyToughness(sk.DamageType, sk.ToughnessDamage)
	dealt := s.dealDamage(s.modify(dmg, wasBroken, brokenBonusSkill))
	s.logf("✨ %s 使用「%s」，对 %s 造成 %d 点%s伤害", p.Name, sk.Name, s.Enemy.Name, dealt, sk.DamageType)

	s.gainUltimate(gain)
	s.endPlayerTurn()
	return nil
}

// useUltimate 终结技：能量满时释放，不结束回合
func (s *Session) useUltimate() error {
	p := s.Player
	limit := s.maxUltimate()
	if p.Resources.UltimateEnergy < limit {
		return fmt.Errorf("%w（%d/%d）", ErrNotReady, p.Resources.UltimateEnergy, limit)
	}

	p.Resources.UltimateEnergy = 0
	u := gamedata.UltimateFor(p.Class)

	if u.Heal > 0 {
		healed := s.heal(scale(u.Heal, 1+p.DerivedStats.HealingBonus))
		s.logf("🌟 %s 释放终结技「%s」，恢复 %d 点生命", p.Name, u.Name, healed)
		return nil
	}

	dmg := roll(s.rng, u.Damage-10, u.Damage+20)
	wasBroken := s.Enemy.Broken
	s.applyToughness(u.DamageType, u.ToughnessDamage)
	dealt := s.dealDamage(s.modify(dmg, wasBroken, brokenBonusUltimate))
	s.logf("🌟 %s 释放终结技「%s」，对 %s 造成 %d 点伤害", p.Name, u.Name, s.Enemy.Name, dealt)

	if s.Enemy.HP <= 0 {
		s.finishVictory()
	}
	return nil
}

// useItem 使用物品，默认生命药水，结束回合
func (s *Session) useItem(id string) error {
	if id == "" {
		id = "health_potion"
	}
	item, ok := gamedata.Item(id)
	if !ok {
		return fmt.Errorf("%w: 未知的物品 %q", ErrInvalidTarget, id)
	}
	p := s.Player
	if p.ItemCount(id) <= 0 {
		return fmt.Errorf("%w: %s", ErrItemUnavailable, item.Name)
	}

	p.ConsumeItem(id)
	if item.Heal > 0 {
		healed := s.heal(item.Heal)
		s.logf("🧪 %s 使用%s，恢复 %d 点生命", p.Name, item.Name, healed)
	}
	if item.Mana > 0 {
		r := &p.Resources
		before := r.Mana
		r.Mana = min(r.Mana+item.Mana, r.MaxMana)
		s.logf("🧪 %s 使用%s，恢复 %d 点法力", p.Name, item.Name, r.Mana-before)
	}
	s.gainUltimate(item.UltimateGain)

	s.endPlayerTurn()
	return nil
}

// flee 逃跑：任何时候都成功，终结技能量清零
func (s *Session) flee() {
	s.logf("🏃 %s 逃离了战斗", s.Player.Name)
	s.State = StateFled
	s.closeOut(&Settlement{Outcome: StateFled})
}

// endPlayerTurn 结束玩家回合：敌人存活则进入敌人回合
func (s *Session) endPlayerTurn() {
	s.res.TurnEnded = true
	if s.Enemy.HP <= 0 {
		s.finishVictory()
		return
	}
	s.State = StateEnemyTurn
	s.enemyTurn()
}

// rollCritical 暴击判定，暴击时检查追击
func (s *Session) rollCritical(dmg int, guaranteed bool, source string) int {
	if !guaranteed && !chance(s.rng, s.Player.DerivedStats.CriticalChance) {
		return dmg
	}
	dmg = scale(dmg, s.critDamage())
	s.emit(EventCritical, dmg, source)
	s.logf("💥 暴击！")
	s.checkFollowUp(followUpOnCrit)
	return dmg
}

// modify 应用击破增伤、命途增伤和易伤
func (s *Session) modify(dmg int, wasBroken bool, brokenBonus float64) int {
	e := s.Enemy
	if wasBroken {
		dmg = scale(dmg, brokenBonus)
	}
	if s.Player.ChosenPath == models.PathHunt && e.HP*2 <= e.MaxHP {
		dmg = scale(dmg, huntBonus)
	}
	if e.MarkedTurns > 0 && e.Marked > 0 {
		dmg = scale(dmg, 1+e.Marked)
	}
	return dmg
}

// dealDamage 扣除敌人生命，最低为0，返回实际伤害
func (s *Session) dealDamage(dmg int) int {
	if dmg < 0 {
		dmg = 0
	}
	e := s.Enemy
	before := e.HP
	e.HP = max(e.HP-dmg, 0)
	return before - e.HP
}

// lookupSkill 查找玩家可用的战技
func (s *Session) lookupSkill(id string) (models.Skill, bool) {
	if !slices.Contains(s.UsableSkills(), id) {
		return models.Skill{}, false
	}
	return gamedata.Skill(id)
}

func hasEffect(states []models.SynergyState, effect models.SynergyEffect) bool {
	for _, st := range states {
		if st.Effect == effect {
			return true
		}
	}
	return false
}
