package combat

import (
	"errors"
	"testing"

	"github.com/jacl-coder/PixelStorm-RPG/internal/gamedata"
	"github.com/jacl-coder/PixelStorm-RPG/internal/models"
)

func TestNewSession_EntersPlayerTurn(t *testing.T) {
	p := newWarrior(t)
	s := newSession(t, p, goblin(t), &scriptedRand{})

	if s.State != StatePlayerTurn {
		t.Fatalf("state = %s, want player_turn", s.State)
	}
	if s.SkillPoints != 3 || s.MaxSkillPoints != 5 {
		t.Fatalf("skill points = %d/%d, want 3/5", s.SkillPoints, s.MaxSkillPoints)
	}
	if s.Enemy.HP != 120 || s.Enemy.Toughness != 60 || s.Enemy.Broken {
		t.Fatalf("unexpected enemy: %+v", s.Enemy)
	}
	if !p.InCombat {
		t.Fatalf("player should be marked in combat")
	}
	if s.Log.Len() == 0 {
		t.Fatalf("encounter should be logged")
	}
}

func TestNewSession_Validation(t *testing.T) {
	p := newWarrior(t)
	p.Resources.HP = 0
	_, err := NewSession(Config{Player: p, Monster: goblin(t)})
	if !errors.Is(err, ErrInsufficientResource) {
		t.Fatalf("expected ErrInsufficientResource for 0 hp, got %v", err)
	}

	_, err = NewSession(Config{Player: newWarrior(t)})
	if !errors.Is(err, ErrInvalidTarget) {
		t.Fatalf("expected ErrInvalidTarget without monster, got %v", err)
	}
}

func TestNewSession_Technique(t *testing.T) {
	p := newWarrior(t)
	s, err := NewSession(Config{Player: p, Monster: goblin(t), Technique: "ambush", Options: DefaultOptions(), Rand: &scriptedRand{}})
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if s.SkillPoints != 5 {
		t.Fatalf("ambush should grant 2 skill points, got %d", s.SkillPoints)
	}
	if p.Resources.TechniquePoints != 2 {
		t.Fatalf("technique points = %d, want 2", p.Resources.TechniquePoints)
	}

	// 未掌握的秘技
	q := newWarrior(t)
	if _, err := NewSession(Config{Player: q, Monster: goblin(t), Technique: "preparation"}); !errors.Is(err, ErrInvalidTarget) {
		t.Fatalf("expected ErrInvalidTarget, got %v", err)
	}
	if q.InCombat {
		t.Fatalf("failed start must not mark player in combat")
	}

	// 秘技点不足
	q.Resources.TechniquePoints = 0
	if _, err := NewSession(Config{Player: q, Monster: goblin(t), Technique: "ambush"}); !errors.Is(err, ErrInsufficientResource) {
		t.Fatalf("expected ErrInsufficientResource, got %v", err)
	}
}

func TestWeaknessBreak_StunAndRestore(t *testing.T) {
	p := newWarrior(t)
	m := goblin(t)
	m.MaxHP = 1000
	s := newSession(t, p, m, &scriptedRand{})

	for i := 0; i < 7; i++ {
		res := mustApply(t, s, Action{Kind: ActionAttack})
		if res.Has(EventWeaknessBreak) {
			t.Fatalf("attack %d broke the enemy too early", i+1)
		}
	}
	if s.Enemy.Toughness != 4 {
		t.Fatalf("toughness after 7 hits = %d, want 4", s.Enemy.Toughness)
	}
	if s.TurnCount != 7 {
		t.Fatalf("turn count = %d, want 7", s.TurnCount)
	}

	res := mustApply(t, s, Action{Kind: ActionAttack})
	for _, kind := range []EventKind{EventWeaknessBreak, EventEnemyStunned, EventToughnessRestored} {
		if !res.Has(kind) {
			t.Fatalf("8th attack missing event %s: %+v", kind, res.Events)
		}
	}
	if res.Has(EventEnemyAttack) {
		t.Fatalf("broken enemy must not attack")
	}
	if s.Enemy.Toughness != 60 || s.Enemy.Broken || !s.Enemy.WasBrokenLastTurn {
		t.Fatalf("unexpected enemy after stun: %+v", s.Enemy)
	}
	if s.TurnCount != 7 {
		t.Fatalf("skipped enemy turn should not count, got %d", s.TurnCount)
	}
	if s.State != StatePlayerTurn {
		t.Fatalf("state = %s, want player_turn", s.State)
	}

	hp := p.Resources.HP
	res = mustApply(t, s, Action{Kind: ActionAttack})
	if dmg, ok := eventAmount(res, EventEnemyAttack); !ok || dmg != 16 {
		t.Fatalf("recovering enemy should hit for 16, got %d (%v)", dmg, ok)
	}
	if p.Resources.HP != hp-16 {
		t.Fatalf("hp = %d, want %d", p.Resources.HP, hp-16)
	}
	if s.Enemy.WasBrokenLastTurn {
		t.Fatalf("recovery penalty should apply once")
	}
}

func newMage(t *testing.T) *models.Player {
	t.Helper()
	info, ok := gamedata.Class(models.ClassMage)
	if !ok {
		t.Fatalf("mage class missing")
	}
	return models.NewPlayer("player-2", "梅林", models.ClassMage, info.BaseStats, info.Skills)
}

func TestWeaknessBreak_Conditions(t *testing.T) {
	tests := []struct {
		name          string
		player        func(*testing.T) *models.Player
		weakness      models.DamageType
		toughness     int
		action        Action
		wantToughness int
		wantBreak     bool
	}{
		{"fire spell on physical weakness", newMage, models.DamagePhysical, 60, Action{Kind: ActionSkill, Arg: "flame_slash"}, 60, false},
		{"ice spell on physical weakness", newMage, models.DamagePhysical, 60, Action{Kind: ActionSkill, Arg: "ice_lance"}, 60, false},
		{"physical attack on fire weakness", newWarrior, models.DamageFire, 60, Action{Kind: ActionAttack}, 60, false},
		{"physical attack on fire weakness at low toughness", newWarrior, models.DamageFire, 8, Action{Kind: ActionAttack}, 8, false},
		{"ice spell on ice weakness", newMage, models.DamageIce, 60, Action{Kind: ActionSkill, Arg: "ice_lance"}, 42, false},
		{"attack leaves one point", newWarrior, models.DamagePhysical, 9, Action{Kind: ActionAttack}, 1, false},
		{"attack reaches exactly zero", newWarrior, models.DamagePhysical, 8, Action{Kind: ActionAttack}, 60, true},
		{"overkill toughness clamps to zero", newWarrior, models.DamagePhysical, 3, Action{Kind: ActionAttack}, 60, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := goblin(t)
			m.MaxHP = 1000
			m.Weakness = tt.weakness
			s := newSession(t, tt.player(t), m, &scriptedRand{})
			s.Enemy.Toughness = tt.toughness

			res := mustApply(t, s, tt.action)
			if got := res.Has(EventWeaknessBreak); got != tt.wantBreak {
				t.Fatalf("break = %v, want %v: %+v", got, tt.wantBreak, res.Events)
			}
			// 击破后的敌人回合会恢复韧性
			if s.Enemy.Toughness != tt.wantToughness {
				t.Fatalf("toughness = %d, want %d", s.Enemy.Toughness, tt.wantToughness)
			}
			if tt.wantBreak && !res.Has(EventToughnessRestored) {
				t.Fatalf("broken enemy should recover after its stunned turn")
			}
		})
	}
}

func TestWeaknessBreak_NotRetriggeredWhileBroken(t *testing.T) {
	p := newWarrior(t)
	m := goblin(t)
	m.MaxHP = 1000
	s := newSession(t, p, m, &scriptedRand{})
	s.Enemy.Toughness = 8

	p.Resources.UltimateEnergy = 100
	res := mustApply(t, s, Action{Kind: ActionUltimate})
	if !res.Has(EventWeaknessBreak) || !s.Enemy.Broken || s.Enemy.Toughness != 0 {
		t.Fatalf("first ultimate should break: %+v", s.Enemy)
	}

	p.Resources.UltimateEnergy = 100
	res = mustApply(t, s, Action{Kind: ActionUltimate})
	if res.Has(EventWeaknessBreak) {
		t.Fatalf("already broken enemy must not break again")
	}
	if s.Enemy.Toughness != 0 || s.BrokenTurnsRemaining != breakStunTurns {
		t.Fatalf("second hit changed the break: %+v remaining %d", s.Enemy, s.BrokenTurnsRemaining)
	}

	res = mustApply(t, s, Action{Kind: ActionAttack})
	if res.Has(EventWeaknessBreak) {
		t.Fatalf("attack on a broken enemy must not break again")
	}
	if !res.Has(EventEnemyStunned) || !res.Has(EventToughnessRestored) {
		t.Fatalf("expected stun then restore: %+v", res.Events)
	}
}

func TestBrokenEnemyTakesBonusDamage(t *testing.T) {
	p := newWarrior(t)
	m := goblin(t)
	m.MaxHP = 1000
	s := newSession(t, p, m, &scriptedRand{})

	mustApply(t, s, Action{Kind: ActionAttack})
	mustApply(t, s, Action{Kind: ActionAttack})
	if s.Enemy.Toughness != 44 {
		t.Fatalf("toughness = %d, want 44", s.Enemy.Toughness)
	}

	p.Resources.UltimateEnergy = 100
	res := mustApply(t, s, Action{Kind: ActionUltimate})
	if !res.Has(EventWeaknessBreak) || !s.Enemy.Broken {
		t.Fatalf("ultimate should break the enemy: %+v", res.Events)
	}
	// 终结技本身不享受击破增伤：110
	if s.Enemy.HP != 1000-15-15-110 {
		t.Fatalf("enemy hp = %d", s.Enemy.HP)
	}

	mustApply(t, s, Action{Kind: ActionAttack})
	// 15 * 1.3 = 19
	if s.Enemy.HP != 1000-15-15-110-19 {
		t.Fatalf("broken bonus not applied, enemy hp = %d", s.Enemy.HP)
	}
}

func TestUltimate_DoesNotEndTurn(t *testing.T) {
	p := newWarrior(t)
	m := goblin(t)
	m.MaxHP = 1000
	s := newSession(t, p, m, &scriptedRand{})
	p.Resources.UltimateEnergy = 100

	res := mustApply(t, s, Action{Kind: ActionUltimate})
	if p.Resources.UltimateEnergy != 0 {
		t.Fatalf("ultimate energy = %d, want 0", p.Resources.UltimateEnergy)
	}
	if res.TurnEnded || s.State != StatePlayerTurn {
		t.Fatalf("ultimate must not end the turn (state %s)", s.State)
	}
	if res.Has(EventEnemyAttack) {
		t.Fatalf("enemy must not act after an ultimate")
	}

	res = mustApply(t, s, Action{Kind: ActionAttack})
	if !res.TurnEnded {
		t.Fatalf("attack after ultimate should end the turn")
	}
}

func TestUltimate_NotReady(t *testing.T) {
	p := newWarrior(t)
	s := newSession(t, p, goblin(t), &scriptedRand{})
	p.Resources.UltimateEnergy = 99
	lines := s.Log.Len()

	_, err := s.Apply(Action{Kind: ActionUltimate})
	if !errors.Is(err, ErrNotReady) || !errors.Is(err, ErrInsufficientResource) {
		t.Fatalf("expected ErrNotReady, got %v", err)
	}
	if p.Resources.UltimateEnergy != 99 || s.State != StatePlayerTurn || s.Log.Len() != lines {
		t.Fatalf("failed ultimate must not change the session")
	}
}

func TestSkill_InsufficientSkillPoints(t *testing.T) {
	p := newWarrior(t)
	s, err := NewSession(Config{Player: p, Monster: goblin(t), Options: Options{StartSkillPoints: 0, MaxSkillPoints: 5}, Rand: &scriptedRand{}})
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	hp, lines := s.Enemy.HP, s.Log.Len()

	_, err = s.Apply(Action{Kind: ActionSkill, Arg: "power_strike"})
	if !errors.Is(err, ErrInsufficientResource) {
		t.Fatalf("expected ErrInsufficientResource, got %v", err)
	}
	if s.SkillPoints != 0 || s.Enemy.HP != hp || s.Log.Len() != lines || s.State != StatePlayerTurn {
		t.Fatalf("failed skill must not change the session")
	}

	// 失败后可以改用普攻
	mustApply(t, s, Action{Kind: ActionAttack})
	if s.SkillPoints != 1 {
		t.Fatalf("skill points = %d, want 1", s.SkillPoints)
	}
}

func TestSkill_UnknownOrNotLearned(t *testing.T) {
	s := newSession(t, newWarrior(t), goblin(t), &scriptedRand{})
	for _, id := range []string{"meteor", "flame_slash"} {
		if _, err := s.Apply(Action{Kind: ActionSkill, Arg: id}); !errors.Is(err, ErrInvalidTarget) {
			t.Fatalf("skill %q: expected ErrInvalidTarget, got %v", id, err)
		}
	}
}

func TestSkill_DamageAndToughness(t *testing.T) {
	p := newWarrior(t)
	s := newSession(t, p, goblin(t), &scriptedRand{})

	res := mustApply(t, s, Action{Kind: ActionSkill, Arg: "power_strike"})
	if !res.TurnEnded {
		t.Fatalf("skill should end the turn")
	}
	// 40-5 = 35
	if s.Enemy.HP != 120-35 {
		t.Fatalf("enemy hp = %d, want 85", s.Enemy.HP)
	}
	if s.Enemy.Toughness != 45 {
		t.Fatalf("toughness = %d, want 45", s.Enemy.Toughness)
	}
	if s.SkillPoints != 2 {
		t.Fatalf("skill points = %d, want 2", s.SkillPoints)
	}
	// 战技 +20
	if p.Resources.UltimateEnergy != 20 {
		t.Fatalf("ultimate energy = %d, want 20", p.Resources.UltimateEnergy)
	}
}

func TestSkill_Heal(t *testing.T) {
	p := newWarrior(t)
	s := newSession(t, p, goblin(t), &scriptedRand{})
	p.Resources.HP = 100

	mustApply(t, s, Action{Kind: ActionSkill, Arg: "heal"})
	// +50 治疗，随后哥布林造成 20
	if p.Resources.HP != 130 {
		t.Fatalf("hp = %d, want 130", p.Resources.HP)
	}
}

func TestBasicAttack_SkillPointCap(t *testing.T) {
	p := newWarrior(t)
	s, err := NewSession(Config{Player: p, Monster: goblin(t), Options: Options{StartSkillPoints: 5, MaxSkillPoints: 5}, Rand: &scriptedRand{}})
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	mustApply(t, s, Action{Kind: ActionAttack})
	if s.SkillPoints != 5 {
		t.Fatalf("skill points = %d, want cap 5", s.SkillPoints)
	}
	if p.Resources.UltimateEnergy != 10 {
		t.Fatalf("ultimate energy = %d, want 10", p.Resources.UltimateEnergy)
	}
}

func TestDefeat_GoldPenalty(t *testing.T) {
	p := newWarrior(t)
	p.Resources.HP = 1
	p.Resources.MaxHP = 100
	p.Gold = 100
	p.Resources.UltimateEnergy = 40
	s := newSession(t, p, goblin(t), &scriptedRand{})

	res := mustApply(t, s, Action{Kind: ActionAttack})
	if !res.Ended || res.Outcome != StateDefeat || s.State != StateDefeat {
		t.Fatalf("expected defeat, got %s", s.State)
	}
	if p.Gold != 85 {
		t.Fatalf("gold = %d, want 85", p.Gold)
	}
	if p.Resources.HP != 25 {
		t.Fatalf("hp = %d, want 25", p.Resources.HP)
	}
	if res.Settlement == nil || res.Settlement.GoldLost != 15 {
		t.Fatalf("unexpected settlement: %+v", res.Settlement)
	}
	if p.Resources.UltimateEnergy != 0 || p.InCombat {
		t.Fatalf("defeat should reset ultimate energy and combat flag")
	}

	if _, err := s.Apply(Action{Kind: ActionAttack}); !errors.Is(err, ErrSessionEnded) {
		t.Fatalf("expected ErrSessionEnded, got %v", err)
	}
}

func TestDefeat_MinimumGoldLoss(t *testing.T) {
	p := newWarrior(t)
	p.Resources.HP = 1
	p.Gold = 5
	s := newSession(t, p, goblin(t), &scriptedRand{})
	mustApply(t, s, Action{Kind: ActionAttack})
	if p.Gold != 4 {
		t.Fatalf("gold = %d, want 4", p.Gold)
	}
}

func TestVictory_Rewards(t *testing.T) {
	p := newWarrior(t)
	m := goblin(t)
	m.MaxHP = 10
	// 暴击判定、两个掉落判定
	r := &scriptedRand{floats: []float64{0.99, 0.1, 0.5}}
	s := newSession(t, p, m, r)

	res := mustApply(t, s, Action{Kind: ActionAttack})
	if !res.Ended || s.State != StateVictory {
		t.Fatalf("expected victory, got %s", s.State)
	}
	st := res.Settlement
	if st.XPGained != 35 || st.GoldGained != 15 {
		t.Fatalf("unexpected rewards: %+v", st)
	}
	if len(st.Loot) != 1 || st.Loot[0] != "health_potion" {
		t.Fatalf("loot = %v, want [health_potion]", st.Loot)
	}
	if p.ItemCount("health_potion") != 4 {
		t.Fatalf("potions = %d, want 4", p.ItemCount("health_potion"))
	}
	if p.Gold != 115 || p.XP != 35 || p.KillCount["goblin"] != 1 {
		t.Fatalf("unexpected player after victory: gold %d xp %d kills %v", p.Gold, p.XP, p.KillCount)
	}
	if res.Has(EventEnemyAttack) {
		t.Fatalf("dead enemy must not attack")
	}
	if p.Resources.UltimateEnergy != 0 || p.InCombat {
		t.Fatalf("victory should reset ultimate energy and combat flag")
	}
}

func TestVictory_MiraculousBox(t *testing.T) {
	p := newWarrior(t)
	m := goblin(t)
	m.MaxHP = 1
	m.ArtifactDrops = []string{"勇士之心", "染血的骑士道"}
	r := &scriptedRand{ints: []int{0, 1, 2}}
	s, err := NewSession(Config{Player: p, Monster: m, Variant: VariantMiraculousBox, Rand: r})
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}

	res := mustApply(t, s, Action{Kind: ActionAttack})
	art := res.Settlement.Artifact
	if art == nil {
		t.Fatalf("miraculous box must drop an artifact")
	}
	if art.Set != "染血的骑士道" || art.Slot != "body" || art.Rarity != models.RarityLegendary {
		t.Fatalf("unexpected artifact: %+v", art)
	}
	if len(p.Artifacts) != 1 {
		t.Fatalf("artifact not added to player")
	}
}

func TestItem(t *testing.T) {
	p := newWarrior(t)
	s := newSession(t, p, goblin(t), &scriptedRand{})
	p.Resources.HP = 100

	mustApply(t, s, Action{Kind: ActionItem})
	// +60，随后受到 20
	if p.Resources.HP != 140 {
		t.Fatalf("hp = %d, want 140", p.Resources.HP)
	}
	if p.ItemCount("health_potion") != 2 || p.Resources.UltimateEnergy != 5 {
		t.Fatalf("potions %d, ultimate %d", p.ItemCount("health_potion"), p.Resources.UltimateEnergy)
	}

	if _, err := s.Apply(Action{Kind: ActionItem, Arg: "elixir"}); !errors.Is(err, ErrInvalidTarget) {
		t.Fatalf("expected ErrInvalidTarget, got %v", err)
	}

	delete(p.Inventory, "health_potion")
	_, err := s.Apply(Action{Kind: ActionItem, Arg: "health_potion"})
	if !errors.Is(err, ErrItemUnavailable) || !errors.Is(err, ErrInsufficientResource) {
		t.Fatalf("expected ErrItemUnavailable, got %v", err)
	}
}

func TestFlee(t *testing.T) {
	p := newWarrior(t)
	s := newSession(t, p, goblin(t), &scriptedRand{})
	p.Resources.UltimateEnergy = 70
	gold := p.Gold

	res := mustApply(t, s, Action{Kind: ActionFlee})
	if s.State != StateFled || !res.Ended || res.Settlement.Outcome != StateFled {
		t.Fatalf("expected fled, got %s", s.State)
	}
	if p.Resources.UltimateEnergy != 0 || p.InCombat || p.Gold != gold {
		t.Fatalf("unexpected player after flee: %+v", p.Resources)
	}
}

func TestFlee_FromAnyState(t *testing.T) {
	for _, state := range []State{StateInitializing, StatePlayerTurn, StateEnemyTurn} {
		t.Run(string(state), func(t *testing.T) {
			p := newWarrior(t)
			s := newSession(t, p, goblin(t), &scriptedRand{})
			p.Resources.HP = 1
			p.Resources.UltimateEnergy = 40
			s.State = state

			res, err := s.Apply(Action{Kind: ActionFlee})
			if err != nil {
				t.Fatalf("flee from %s: %v", state, err)
			}
			if s.State != StateFled || !res.Ended || res.Outcome != StateFled {
				t.Fatalf("state = %s, ended = %v", s.State, res.Ended)
			}
			if p.Resources.UltimateEnergy != 0 || p.Resources.HP != 1 {
				t.Fatalf("unexpected resources after flee: %+v", p.Resources)
			}
		})
	}
}

func TestApply_OutsidePlayerTurn(t *testing.T) {
	s := newSession(t, newWarrior(t), goblin(t), &scriptedRand{})
	s.State = StateEnemyTurn
	hp := s.Enemy.HP

	if _, err := s.Apply(Action{Kind: ActionAttack}); !errors.Is(err, ErrSessionConflict) {
		t.Fatalf("expected ErrSessionConflict, got %v", err)
	}
	if s.Enemy.HP != hp || s.State != StateEnemyTurn {
		t.Fatalf("rejected action changed the session")
	}

	s.State = StateFled
	if _, err := s.Apply(Action{Kind: ActionFlee}); !errors.Is(err, ErrSessionEnded) {
		t.Fatalf("expected ErrSessionEnded, got %v", err)
	}
}

func TestApply_UnknownAction(t *testing.T) {
	s := newSession(t, newWarrior(t), goblin(t), &scriptedRand{})
	if _, err := s.Apply(Action{Kind: "dance"}); !errors.Is(err, ErrInvalidTarget) {
		t.Fatalf("expected ErrInvalidTarget, got %v", err)
	}
}

func TestParseActionKind(t *testing.T) {
	tests := map[string]ActionKind{
		"attack":       ActionAttack,
		"basic_attack": ActionAttack,
		" Skill ":      ActionSkill,
		"ult":          ActionUltimate,
		"use_item":     ActionItem,
		"run":          ActionFlee,
	}
	for in, want := range tests {
		got, err := ParseActionKind(in)
		if err != nil || got != want {
			t.Errorf("ParseActionKind(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseActionKind("dance"); !errors.Is(err, ErrInvalidTarget) {
		t.Fatalf("expected ErrInvalidTarget, got %v", err)
	}
}

func TestLogCapacity(t *testing.T) {
	p := newWarrior(t)
	m := goblin(t)
	m.MaxHP = 1000
	s, err := NewSession(Config{Player: p, Monster: m, Options: Options{StartSkillPoints: 3, MaxSkillPoints: 5, LogCapacity: 3}, Rand: &scriptedRand{}})
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	for i := 0; i < 4; i++ {
		mustApply(t, s, Action{Kind: ActionAttack})
	}
	if s.Log.Len() != 3 {
		t.Fatalf("log length = %d, want 3", s.Log.Len())
	}
	if got := s.Snapshot().Log; len(got) != 3 {
		t.Fatalf("snapshot log length = %d", len(got))
	}
}

func TestSnapshot_LastLogLines(t *testing.T) {
	p := newWarrior(t)
	m := goblin(t)
	m.MaxHP = 1000
	s := newSession(t, p, m, &scriptedRand{})
	for i := 0; i < 5; i++ {
		mustApply(t, s, Action{Kind: ActionAttack})
	}
	if s.Log.Len() <= SnapshotLogLines {
		t.Fatalf("log should exceed %d lines, got %d", SnapshotLogLines, s.Log.Len())
	}

	got := s.Snapshot().Log
	all := s.Log.Lines()
	if len(got) != SnapshotLogLines {
		t.Fatalf("snapshot log length = %d, want %d", len(got), SnapshotLogLines)
	}
	if got[len(got)-1] != all[len(all)-1] || got[0] != all[len(all)-SnapshotLogLines] {
		t.Fatalf("snapshot should carry the newest lines: %v", got)
	}
}

func TestSnapshot(t *testing.T) {
	p := newWarrior(t)
	s := newSession(t, p, goblin(t), &scriptedRand{})
	p.Resources.UltimateEnergy = 100

	snap := s.Snapshot()
	if snap.State != StatePlayerTurn || snap.Enemy.TemplateID != "goblin" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if !snap.Player.UltimateReady || snap.Player.HealthPotions != 3 {
		t.Fatalf("unexpected player view: %+v", snap.Player)
	}
	snap.Enemy.HP = 0
	if s.Enemy.HP == 0 {
		t.Fatalf("snapshot must not alias session state")
	}
}
