package combat

import "github.com/jacl-coder/PixelStorm-RPG/internal/models"

const (
	// recoveryPenalty 敌人刚从击破中恢复时的伤害倍率
	recoveryPenalty = 0.8
	// maxDamageReduction 减伤上限
	maxDamageReduction = 0.9
)

// Enemy 战斗中的敌人，由怪物模板快照而来
type Enemy struct {
	TemplateID        string            `json:"template_id"`
	Name              string            `json:"name"`
	HP                int               `json:"hp"`
	MaxHP             int               `json:"max_hp"`
	Toughness         int               `json:"toughness"`
	MaxToughness      int               `json:"max_toughness"`
	Weakness          models.DamageType `json:"weakness"`
	AttackMin         int               `json:"attack_min"`
	AttackMax         int               `json:"attack_max"`
	Broken            bool              `json:"broken"`
	WasBrokenLastTurn bool              `json:"was_broken_last_turn"`
	Marked            float64           `json:"marked,omitempty"`
	MarkedTurns       int               `json:"marked_turns,omitempty"`
}

func newEnemy(m models.MonsterTemplate) *Enemy {
	lo, hi := m.AttackRange()
	return &Enemy{
		TemplateID:   m.ID,
		Name:         m.Name,
		HP:           m.MaxHP,
		MaxHP:        m.MaxHP,
		Toughness:    m.MaxToughness,
		MaxToughness: m.MaxToughness,
		Weakness:     m.Weakness,
		AttackMin:    lo,
		AttackMax:    hi,
	}
}

// enemyTurn 敌人回合：击破时跳过行动，否则攻击玩家
func (s *Session) enemyTurn() {
	e, p := s.Enemy, s.Player

	if e.MarkedTurns > 0 {
		e.MarkedTurns--
		if e.MarkedTurns == 0 {
			e.Marked = 0
			s.logf("🎯 %s 的标记消失了", e.Name)
		}
	}

	if e.Broken && s.BrokenTurnsRemaining > 0 {
		s.emit(EventEnemyStunned, s.BrokenTurnsRemaining, "")
		s.logf("😵 %s 处于击破状态，无法行动", e.Name)
		s.BrokenTurnsRemaining--
		if s.BrokenTurnsRemaining <= 0 {
			e.Broken = false
			e.Toughness = e.MaxToughness
			e.WasBrokenLastTurn = true
			s.emit(EventToughnessRestored, e.Toughness, "")
			s.logf("🔷 %s 的韧性恢复至 %d", e.Name, e.Toughness)
		}
		s.State = StatePlayerTurn
		return
	}

	dmg := roll(s.rng, e.AttackMin, e.AttackMax)
	if e.WasBrokenLastTurn {
		dmg = scale(dmg, recoveryPenalty)
		e.WasBrokenLastTurn = false
	}
	if r := p.DerivedStats.DamageReduction; r > 0 {
		dmg = scale(dmg, 1-min(r, maxDamageReduction))
	}

	r := &p.Resources
	if absorbed := min(r.Shield, dmg); absorbed > 0 {
		r.Shield -= absorbed
		dmg -= absorbed
		s.logf("🛡️ 护盾吸收了 %d 点伤害", absorbed)
	}
	r.HP = max(r.HP-dmg, 0)
	s.TurnCount++
	s.emit(EventEnemyAttack, dmg, "")
	s.logf("👹 %s 发动攻击，造成 %d 点伤害（剩余生命 %d/%d）", e.Name, dmg, r.HP, r.MaxHP)

	if r.HP <= 0 {
		s.finishDefeat()
		return
	}
	s.State = StatePlayerTurn
}
