package combat

import (
	"testing"

	"github.com/jacl-coder/PixelStorm-RPG/internal/gamedata"
	"github.com/jacl-coder/PixelStorm-RPG/internal/models"
)

// scriptedRand 按脚本返回随机数；脚本耗尽后 Intn 返回 0，Float64 返回 0.99
type scriptedRand struct {
	ints   []int
	floats []float64
}

func (r *scriptedRand) Intn(n int) int {
	if len(r.ints) == 0 {
		return 0
	}
	v := r.ints[0]
	r.ints = r.ints[1:]
	return v % n
}

func (r *scriptedRand) Float64() float64 {
	if len(r.floats) == 0 {
		return 0.99
	}
	v := r.floats[0]
	r.floats = r.floats[1:]
	return v
}

func newWarrior(t *testing.T) *models.Player {
	t.Helper()
	info, ok := gamedata.Class(models.ClassWarrior)
	if !ok {
		t.Fatalf("warrior class missing")
	}
	return models.NewPlayer("player-1", "亚瑟", models.ClassWarrior, info.BaseStats, info.Skills)
}

func goblin(t *testing.T) models.MonsterTemplate {
	t.Helper()
	m, ok := gamedata.Monster("goblin")
	if !ok {
		t.Fatalf("goblin missing")
	}
	return m
}

func newSession(t *testing.T, p *models.Player, m models.MonsterTemplate, r Rand) *Session {
	t.Helper()
	s, err := NewSession(Config{
		ID:        "session-1",
		ChannelID: "channel-1",
		Player:    p,
		Monster:   m,
		Options:   DefaultOptions(),
		Rand:      r,
	})
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return s
}

func mustApply(t *testing.T, s *Session, a Action) Result {
	t.Helper()
	res, err := s.Apply(a)
	if err != nil {
		t.Fatalf("Apply(%+v): %v", a, err)
	}
	return res
}

func eventAmount(res Result, kind EventKind) (int, bool) {
	for _, e := range res.Events {
		if e.Kind == kind {
			return e.Amount, true
		}
	}
	return 0, false
}
