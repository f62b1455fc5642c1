package combat

import (
	"github.com/jacl-coder/PixelStorm-RPG/internal/gamedata"
	"github.com/jacl-coder/PixelStorm-RPG/internal/models"
)

const (
	// defeatGoldPenalty 战败损失的金币百分比
	defeatGoldPenalty = 15
	levelScaling      = 0.1
)

// Settlement 战斗结算
type Settlement struct {
	Outcome      State            `json:"outcome"`
	XPGained     int              `json:"xp_gained,omitempty"`
	GoldGained   int              `json:"gold_gained,omitempty"`
	GoldLost     int              `json:"gold_lost,omitempty"`
	Loot         []string         `json:"loot,omitempty"`
	Artifact     *models.Artifact `json:"artifact,omitempty"`
	LevelsGained int              `json:"levels_gained,omitempty"`
	NewLevel     int              `json:"new_level,omitempty"`
}

// LevelMultiplier 按玩家等级缩放奖励
func LevelMultiplier(level int) float64 {
	if level < 1 {
		level = 1
	}
	return 1 + float64(level-1)*levelScaling
}

// RollLoot 每个掉落条目独立判定
func RollLoot(r Rand, table []models.LootEntry) []string {
	var drops []string
	for _, entry := range table {
		if r.Float64() < entry.Chance {
			drops = append(drops, entry.ItemID)
		}
	}
	return drops
}

// ApplyLevelUps 连续升级直到经验不足，返回提升的等级数
func ApplyLevelUps(p *models.Player) int {
	gained := 0
	for need := gamedata.XPForNextLevel(p.Level); p.XP >= need; need = gamedata.XPForNextLevel(p.Level) {
		p.XP -= need
		p.Level++
		p.UnallocatedPoints += gamedata.StatPointsPerLevel

		r := &p.Resources
		r.MaxHP += 20 + p.Stats.Constitution*2
		r.MaxMana += 10 + p.Stats.Intelligence*2
		r.HP = r.MaxHP
		r.Mana = r.MaxMana
		gained++
	}
	return gained
}

// finishVictory 胜利结算：经验、金币、掉落、升级
func (s *Session) finishVictory() {
	p, m := s.Player, s.monster
	s.State = StateVictory

	mult := LevelMultiplier(p.Level)
	st := &Settlement{
		Outcome:    StateVictory,
		XPGained:   scale(m.XP, mult),
		GoldGained: scale(m.Gold, mult),
	}
	p.XP += st.XPGained
	p.Gold += st.GoldGained
	s.logf("🏆 击败了 %s！获得 %d 经验、%d 金币", s.Enemy.Name, st.XPGained, st.GoldGained)

	st.Loot = RollLoot(s.rng, m.Loot)
	for _, id := range st.Loot {
		p.AddItem(id, 1)
		name := id
		if it, ok := gamedata.Item(id); ok {
			name = it.Name
		}
		s.logf("🎁 获得 %s", name)
	}

	if s.Variant == VariantMiraculousBox && len(m.ArtifactDrops) > 0 {
		art := models.Artifact{
			Set:    m.ArtifactDrops[s.rng.Intn(len(m.ArtifactDrops))],
			Slot:   gamedata.ArtifactSlots[s.rng.Intn(len(gamedata.ArtifactSlots))],
			Rarity: models.RarityLegendary,
		}
		p.Artifacts = append(p.Artifacts, art)
		st.Artifact = &art
		s.logf("📦 奇迹宝盒：获得传说圣遗物 %s（%s）", art.Set, art.Slot)
	}

	if p.KillCount == nil {
		p.KillCount = make(map[string]int)
	}
	p.KillCount[m.ID]++

	st.LevelsGained = ApplyLevelUps(p)
	st.NewLevel = p.Level
	if st.LevelsGained > 0 {
		s.logf("⬆️ 升级！当前等级 %d", p.Level)
	}

	s.closeOut(st)
}

// finishDefeat 战败：损失15%金币（至少1），生命恢复至上限的四分之一
func (s *Session) finishDefeat() {
	p := s.Player
	s.State = StateDefeat

	before := p.Gold
	lost := max(before*defeatGoldPenalty/100, 1)
	p.Gold = max(before-lost, 0)
	p.Resources.HP = max(p.Resources.MaxHP/4, 1)

	st := &Settlement{Outcome: StateDefeat, GoldLost: before - p.Gold, NewLevel: p.Level}
	s.logf("💀 %s 被击败了，损失 %d 金币", p.Name, st.GoldLost)
	s.closeOut(st)
}

// closeOut 所有结局共有的收尾
func (s *Session) closeOut(st *Settlement) {
	r := &s.Player.Resources
	r.UltimateEnergy = 0
	r.Shield = 0
	s.Player.InCombat = false
	s.Settlement = st
}
