package game

import (
	"fmt"
	"sync"
	"time"

	"github.com/jacl-coder/PixelStorm-RPG/internal/combat"
)

// sessionEntry 频道中的一场战斗。mu 串行化该会话上的所有操作
type sessionEntry struct {
	mu         sync.Mutex
	playerID   string
	channelID  string
	session    *combat.Session
	startedAt  time.Time
	lastActive time.Time
}

// sessionRegistry 频道到会话的映射，同时保证每个玩家最多一场战斗
type sessionRegistry struct {
	mu        sync.RWMutex
	byChannel map[string]*sessionEntry
	byPlayer  map[string]string
	limit     int
}

func newSessionRegistry(limit int) *sessionRegistry {
	return &sessionRegistry{
		byChannel: make(map[string]*sessionEntry),
		byPlayer:  make(map[string]string),
		limit:     limit,
	}
}

// reserve 原子地占用频道和玩家。返回的条目已加锁，调用方填入会话后解锁
func (r *sessionRegistry) reserve(channelID, playerID string, now time.Time) (*sessionEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, busy := r.byChannel[channelID]; busy {
		return nil, fmt.Errorf("%w: 该频道已有进行中的战斗", combat.ErrSessionConflict)
	}
	if ch, busy := r.byPlayer[playerID]; busy {
		return nil, fmt.Errorf("%w: 你已经在频道 %s 中战斗", combat.ErrSessionConflict, ch)
	}
	if r.limit > 0 && len(r.byChannel) >= r.limit {
		return nil, ErrTooManySessions
	}

	e := &sessionEntry{playerID: playerID, channelID: channelID, startedAt: now, lastActive: now}
	e.mu.Lock()
	r.byChannel[channelID] = e
	r.byPlayer[playerID] = channelID
	return e, nil
}

// get 按频道查找
func (r *sessionRegistry) get(channelID string) (*sessionEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byChannel[channelID]
	return e, ok
}

// remove 移除条目，频道已被新会话占用时不做任何事
func (r *sessionRegistry) remove(e *sessionEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.byChannel[e.channelID]; ok && cur == e {
		delete(r.byChannel, e.channelID)
	}
	if ch, ok := r.byPlayer[e.playerID]; ok && ch == e.channelID {
		delete(r.byPlayer, e.playerID)
	}
}

// activeChannel 玩家当前战斗所在频道
func (r *sessionRegistry) activeChannel(playerID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ch, ok := r.byPlayer[playerID]
	return ch, ok
}

// entries 当前所有条目的副本
func (r *sessionRegistry) entries() []*sessionEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*sessionEntry, 0, len(r.byChannel))
	for _, e := range r.byChannel {
		out = append(out, e)
	}
	return out
}

func (r *sessionRegistry) count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byChannel)
}
