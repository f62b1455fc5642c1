package combat

import "github.com/jacl-coder/PixelStorm-RPG/internal/models"

const (
	breakStunTurns = 1

	breakFollowUpChance = 0.30
	critFollowUpChance  = 0.25

	followUpMin         = 20
	followUpMax         = 35
	followUpBrokenBonus = 1.3
	followUpUltGain     = 5
)

type followUpTrigger int

const (
	followUpOnBreak followUpTrigger = iota
	followUpOnCrit
)

// applyToughness 对弱点属性的攻击削减韧性，削至0时击破。返回是否发生击破
func (s *Session) applyToughness(dt models.DamageType, amount int) bool {
	e := s.Enemy
	if dt != e.Weakness || amount <= 0 || e.Broken || e.Toughness <= 0 {
		return false
	}

	before := e.Toughness
	e.Toughness = max(before-amount, 0)
	s.logf("🔷 弱点命中！%s 韧性 %d → %d", e.Name, before, e.Toughness)
	if e.Toughness > 0 {
		return false
	}

	e.Broken = true
	s.BrokenTurnsRemaining = breakStunTurns
	s.emit(EventWeaknessBreak, e.MaxToughness, string(dt))
	s.logf("💢 %s 被击破！将无法行动 %d 回合", e.Name, breakStunTurns)
	s.checkFollowUp(followUpOnBreak)
	return true
}

// followUpChance 追击触发概率，0 表示不满足触发条件
func (s *Session) followUpChance(t followUpTrigger) float64 {
	p := s.Player
	switch t {
	case followUpOnBreak:
		if p.ChosenPath != models.PathDestruction {
			return 0
		}
		if c := p.DerivedStats.FollowUpChance; c > 0 {
			return c
		}
		return breakFollowUpChance
	case followUpOnCrit:
		if p.HasFollowUpTrigger(models.CritFollowUpTrigger) {
			return critFollowUpChance
		}
	}
	return 0
}

// checkFollowUp 追击判定，追击不消耗回合和资源
func (s *Session) checkFollowUp(t followUpTrigger) {
	if !chance(s.rng, s.followUpChance(t)) {
		return
	}
	dmg := roll(s.rng, followUpMin, followUpMax)
	if s.Enemy.Broken {
		dmg = scale(dmg, followUpBrokenBonus)
	}
	dealt := s.dealDamage(dmg)
	s.gainUltimate(followUpUltGain)
	s.emit(EventFollowUp, dealt, "")
	s.logf("⚡ 追击！对 %s 造成 %d 点伤害", s.Enemy.Name, dealt)
}
