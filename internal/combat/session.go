// Package combat 回合制战斗引擎：技能点、弱点击破、终结技、协同状态与追击
package combat

import (
	"fmt"
	"math/rand"
	"slices"
	"time"

	"github.com/jacl-coder/PixelStorm-RPG/internal/gamedata"
	"github.com/jacl-coder/PixelStorm-RPG/internal/models"
)

// State 会话状态
type State string

const (
	StateInitializing State = "initializing"
	StatePlayerTurn   State = "player_turn"
	StateEnemyTurn    State = "enemy_turn"
	StateVictory      State = "victory"
	StateDefeat       State = "defeat"
	StateFled         State = "fled"
)

// Terminal 是否为终止状态
func (s State) Terminal() bool {
	return s == StateVictory || s == StateDefeat || s == StateFled
}

// Outcome 终止状态对应的战斗结局
func (s State) Outcome() models.EncounterOutcome {
	switch s {
	case StateVictory:
		return models.OutcomeVictory
	case StateDefeat:
		return models.OutcomeDefeat
	case StateFled:
		return models.OutcomeFled
	default:
		return ""
	}
}

// Variant 遭遇变体
type Variant string

const (
	// VariantStandard 普通遭遇
	VariantStandard Variant = ""
	// VariantMiraculousBox 奇迹宝盒遭遇，胜利必定掉落圣遗物
	VariantMiraculousBox Variant = "miraculous_box"
)

// Options 会话参数
type Options struct {
	StartSkillPoints int
	MaxSkillPoints   int
	LogCapacity      int
}

// DefaultOptions 默认参数：初始3技能点，上限5，日志12行
func DefaultOptions() Options {
	return Options{StartSkillPoints: 3, MaxSkillPoints: 5, LogCapacity: 12}
}

// Config 创建会话所需参数
type Config struct {
	ID        string
	ChannelID string
	Player    *models.Player
	Monster   models.MonsterTemplate
	// Technique 战前选择的秘技，可为空
	Technique string
	Variant   Variant
	Options   Options
	Rand      Rand
}

// Session 一个玩家在一个频道中的战斗
type Session struct {
	ID        string
	PlayerID  string
	ChannelID string
	Variant   Variant

	Player *models.Player
	Enemy  *Enemy

	SkillPoints          int
	MaxSkillPoints       int
	State                State
	BrokenTurnsRemaining int
	Synergy              []models.SynergyState
	Log                  *Log
	TurnCount            int
	Settlement           *Settlement

	monster models.MonsterTemplate
	rng     Rand
	res     *Result
}

// NewSession 创建战斗会话：快照怪物、应用秘技、进入玩家回合
func NewSession(cfg Config) (*Session, error) {
	p := cfg.Player
	if p == nil {
		return nil, fmt.Errorf("%w: 缺少玩家记录", ErrInvalidTarget)
	}
	if cfg.Monster.ID == "" {
		return nil, fmt.Errorf("%w: 缺少怪物", ErrInvalidTarget)
	}
	if p.Resources.HP <= 0 {
		return nil, fmt.Errorf("%w: 生命值过低，无法战斗", ErrInsufficientResource)
	}

	var tech *models.Technique
	if cfg.Technique != "" {
		t, ok := gamedata.Technique(cfg.Technique)
		if !ok || !p.HasTechnique(cfg.Technique) {
			return nil, fmt.Errorf("%w: 未掌握的秘技 %q", ErrInvalidTarget, cfg.Technique)
		}
		if p.Resources.TechniquePoints < t.Cost {
			return nil, fmt.Errorf("%w: 秘技点不足（需要 %d，当前 %d）",
				ErrInsufficientResource, t.Cost, p.Resources.TechniquePoints)
		}
		tech = &t
	}

	opts := cfg.Options
	def := DefaultOptions()
	if opts.MaxSkillPoints <= 0 {
		opts.MaxSkillPoints = def.MaxSkillPoints
	}
	if opts.LogCapacity <= 0 {
		opts.LogCapacity = def.LogCapacity
	}
	opts.StartSkillPoints = min(max(opts.StartSkillPoints, 0), opts.MaxSkillPoints)

	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	s := &Session{
		ID:             cfg.ID,
		PlayerID:       p.ID,
		ChannelID:      cfg.ChannelID,
		Variant:        cfg.Variant,
		Player:         p,
		Enemy:          newEnemy(cfg.Monster),
		SkillPoints:    opts.StartSkillPoints,
		MaxSkillPoints: opts.MaxSkillPoints,
		State:          StateInitializing,
		Log:            NewLog(opts.LogCapacity),
		monster:        cfg.Monster,
		rng:            rng,
	}

	s.logf("⚔️ 遭遇 %s！（生命 %d，韧性 %d，弱点：%s）",
		s.Enemy.Name, s.Enemy.MaxHP, s.Enemy.MaxToughness, s.Enemy.Weakness)
	if tech != nil {
		s.applyTechnique(*tech)
	}

	p.InCombat = true
	s.State = StatePlayerTurn
	return s, nil
}

// applyTechnique 应用战前秘技效果
func (s *Session) applyTechnique(t models.Technique) {
	p := s.Player
	p.Resources.TechniquePoints -= t.Cost

	switch t.Effect {
	case models.EffectSkillPoints:
		s.gainSkillPoints(t.Value)
		s.logf("🎯 秘技「%s」：技能点 +%d", t.Name, t.Value)
	case models.EffectShield:
		p.Resources.Shield += t.Value
		s.logf("🛡️ 秘技「%s」：获得 %d 点护盾", t.Name, t.Value)
	case models.EffectEnemyDebuff:
		s.Enemy.Marked = t.DebuffValue
		s.Enemy.MarkedTurns = t.Duration
		s.logf("🎯 秘技「%s」：%s 受到的伤害提高 %.0f%%，持续 %d 回合",
			t.Name, s.Enemy.Name, t.DebuffValue*100, t.Duration)
	case models.EffectUltimateEnergy:
		s.gainUltimate(t.Value)
		s.logf("✨ 秘技「%s」：终结技能量 +%d", t.Name, t.Value)
	}

	if t.GrantsState != "" {
		if err := s.QueueSynergy(t.GrantsState); err != nil {
			s.logf("⚠️ 无法排入协同状态 %s", t.GrantsState)
		}
	}
}

// Apply 执行一个玩家行动。失败时会话状态不变，玩家可以改用其他行动。
// 逃跑在任何非终止状态下都可以执行
func (s *Session) Apply(a Action) (Result, error) {
	if s.State.Terminal() {
		return Result{}, ErrSessionEnded
	}
	if a.Kind != ActionFlee && s.State != StatePlayerTurn {
		return Result{}, fmt.Errorf("%w: 当前不是玩家回合", ErrSessionConflict)
	}

	s.res = &Result{}
	defer func() { s.res = nil }()

	var err error
	switch a.Kind {
	case ActionAttack:
		s.basicAttack()
	case ActionSkill:
		err = s.useSkill(a.Arg)
	case ActionUltimate:
		err = s.useUltimate()
	case ActionItem:
		err = s.useItem(a.Arg)
	case ActionFlee:
		s.flee()
	default:
		err = fmt.Errorf("%w: 未知的行动 %q", ErrInvalidTarget, a.Kind)
	}
	if err != nil {
		return Result{}, err
	}

	res := *s.res
	res.Outcome = s.State
	res.Ended = s.State.Terminal()
	if res.Ended {
		res.Settlement = s.Settlement
	}
	return res, nil
}

// UsableSkills 玩家在本场战斗中可用的战技
func (s *Session) UsableSkills() []string {
	usable := make([]string, 0, len(s.Player.Skills))
	for _, id := range s.Player.Skills {
		if _, ok := gamedata.Skill(id); ok && !slices.Contains(usable, id) {
			usable = append(usable, id)
		}
	}
	if len(usable) == 0 {
		return slices.Clone(gamedata.DefaultSkills)
	}
	return usable
}

// Monster 本场战斗的怪物模板
func (s *Session) Monster() models.MonsterTemplate {
	return s.monster
}

// logf 写入战斗日志，同时记录到本次行动结果
func (s *Session) logf(format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	s.Log.Add(line)
	if s.res != nil {
		s.res.Lines = append(s.res.Lines, line)
	}
}

// emit 记录战斗事件
func (s *Session) emit(kind EventKind, amount int, detail string) {
	if s.res != nil {
		s.res.Events = append(s.res.Events, Event{Kind: kind, Amount: amount, Detail: detail})
	}
}

// gainSkillPoints 增加技能点，不超过上限
func (s *Session) gainSkillPoints(n int) {
	s.SkillPoints = min(s.SkillPoints+n, s.MaxSkillPoints)
}

// maxUltimate 终结技能量上限
func (s *Session) maxUltimate() int {
	if m := s.Player.DerivedStats.MaxUltimateEnergy; m > 0 {
		return m
	}
	return models.DefaultMaxUltimateEnergy
}

// gainUltimate 增加终结技能量，不超过上限
func (s *Session) gainUltimate(n int) {
	r := &s.Player.Resources
	r.UltimateEnergy = min(r.UltimateEnergy+n, s.maxUltimate())
}

// heal 治疗玩家，返回实际恢复量
func (s *Session) heal(amount int) int {
	r := &s.Player.Resources
	before := r.HP
	r.HP = min(r.HP+amount, r.MaxHP)
	return r.HP - before
}

// critDamage 暴击倍率
func (s *Session) critDamage() float64 {
	if c := s.Player.DerivedStats.CriticalDamage; c > 0 {
		return c
	}
	return models.DefaultCriticalDamage
}
