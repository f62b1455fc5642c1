package combat

import (
	"fmt"
	"slices"

	"github.com/jacl-coder/PixelStorm-RPG/internal/gamedata"
	"github.com/jacl-coder/PixelStorm-RPG/internal/models"
)

// QueueSynergy 排入一个协同状态，在匹配的行动中被消耗
func (s *Session) QueueSynergy(id string) error {
	st, ok := gamedata.SynergyState(id)
	if !ok {
		return fmt.Errorf("%w: 未知的协同状态 %q", ErrInvalidTarget, id)
	}
	s.Synergy = append(s.Synergy, st)
	s.logf("🔗 协同状态「%s」已就绪：%s", st.Name, st.Description)
	return nil
}

// selectSynergy 按排队顺序选出匹配的状态，每种效果至多一个
func (s *Session) selectSynergy(triggers []models.SynergyTrigger) []int {
	var picked []int
	seen := make(map[models.SynergyEffect]bool)
	for i, st := range s.Synergy {
		if !slices.Contains(triggers, st.Trigger) || seen[st.Effect] {
			continue
		}
		seen[st.Effect] = true
		picked = append(picked, i)
	}
	return picked
}

// peekSynergy 查看将被消耗的状态，不修改队列
func (s *Session) peekSynergy(triggers ...models.SynergyTrigger) []models.SynergyState {
	var out []models.SynergyState
	for _, i := range s.selectSynergy(triggers) {
		out = append(out, s.Synergy[i])
	}
	return out
}

// consumeSynergy 消耗匹配的状态
func (s *Session) consumeSynergy(triggers ...models.SynergyTrigger) []models.SynergyState {
	picked := s.selectSynergy(triggers)
	if len(picked) == 0 {
		return nil
	}

	consumed := make([]models.SynergyState, 0, len(picked))
	remaining := s.Synergy[:0:0]
	for i, st := range s.Synergy {
		if slices.Contains(picked, i) {
			consumed = append(consumed, st)
			continue
		}
		remaining = append(remaining, st)
	}
	s.Synergy = remaining

	for _, st := range consumed {
		s.emit(EventSynergyConsumed, 0, st.ID)
		s.logf("🔗 触发协同「%s」", st.Name)
	}
	return consumed
}

// SynergyIDs 当前排队中的协同状态
func (s *Session) SynergyIDs() []string {
	ids := make([]string, 0, len(s.Synergy))
	for _, st := range s.Synergy {
		ids = append(ids, st.ID)
	}
	return ids
}
