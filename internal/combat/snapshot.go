package combat

import "github.com/jacl-coder/PixelStorm-RPG/internal/models"

// SnapshotLogLines 快照携带的最近日志行数
const SnapshotLogLines = 8

// PlayerView 渲染用的玩家状态
type PlayerView struct {
	ID                string                `json:"id"`
	Name              string                `json:"name"`
	Class             models.CharacterClass `json:"class"`
	Level             int                   `json:"level"`
	HP                int                   `json:"hp"`
	MaxHP             int                   `json:"max_hp"`
	Mana              int                   `json:"mana"`
	MaxMana           int                   `json:"max_mana"`
	Shield            int                   `json:"shield"`
	UltimateEnergy    int                   `json:"ultimate_energy"`
	MaxUltimateEnergy int                   `json:"max_ultimate_energy"`
	UltimateReady     bool                  `json:"ultimate_ready"`
	HealthPotions     int                   `json:"health_potions"`
	Skills            []string              `json:"skills"`
}

// Snapshot 会话的只读视图，用于渲染和推送
type Snapshot struct {
	SessionID            string      `json:"session_id"`
	PlayerID             string      `json:"player_id"`
	ChannelID            string      `json:"channel_id"`
	State                State       `json:"state"`
	Enemy                Enemy       `json:"enemy"`
	BrokenTurnsRemaining int         `json:"broken_turns_remaining"`
	Player               PlayerView  `json:"player"`
	SkillPoints          int         `json:"skill_points"`
	MaxSkillPoints       int         `json:"max_skill_points"`
	TurnCount            int         `json:"turn_count"`
	Synergy              []string    `json:"synergy"`
	Log                  []string    `json:"log"`
	Settlement           *Settlement `json:"settlement,omitempty"`
}

// Snapshot 生成当前状态快照
func (s *Session) Snapshot() Snapshot {
	p := s.Player
	maxUlt := s.maxUltimate()
	return Snapshot{
		SessionID:            s.ID,
		PlayerID:             s.PlayerID,
		ChannelID:            s.ChannelID,
		State:                s.State,
		Enemy:                *s.Enemy,
		BrokenTurnsRemaining: s.BrokenTurnsRemaining,
		Player: PlayerView{
			ID:                p.ID,
			Name:              p.Name,
			Class:             p.Class,
			Level:             p.Level,
			HP:                p.Resources.HP,
			MaxHP:             p.Resources.MaxHP,
			Mana:              p.Resources.Mana,
			MaxMana:           p.Resources.MaxMana,
			Shield:            p.Resources.Shield,
			UltimateEnergy:    p.Resources.UltimateEnergy,
			MaxUltimateEnergy: maxUlt,
			UltimateReady:     p.Resources.UltimateEnergy >= maxUlt,
			HealthPotions:     p.ItemCount("health_potion"),
			Skills:            s.UsableSkills(),
		},
		SkillPoints:    s.SkillPoints,
		MaxSkillPoints: s.MaxSkillPoints,
		TurnCount:      s.TurnCount,
		Synergy:        s.SynergyIDs(),
		Log:            s.Log.Last(SnapshotLogLines),
		Settlement:     s.Settlement,
	}
}
