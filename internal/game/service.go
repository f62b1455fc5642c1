package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jacl-coder/PixelStorm-RPG/config"
	"github.com/jacl-coder/PixelStorm-RPG/internal/combat"
	"github.com/jacl-coder/PixelStorm-RPG/internal/gamedata"
	"github.com/jacl-coder/PixelStorm-RPG/internal/models"
	"github.com/jacl-coder/PixelStorm-RPG/internal/store"
)

const defaultSweepInterval = 30 * time.Second

// PlayerRepository 玩家记录的读写
type PlayerRepository interface {
	Load(ctx context.Context, playerID string) (*models.Player, error)
	Save(ctx context.Context, p *models.Player) error
}

// Publisher 向频道推送战斗快照。频道无人订阅时返回 ErrNoViewers
type Publisher interface {
	Publish(ctx context.Context, channelID string, snap combat.Snapshot) error
}

// StartRequest 开始战斗请求
type StartRequest struct {
	PlayerID  string         `json:"player_id"`
	ChannelID string         `json:"channel_id"`
	MonsterID string         `json:"monster_id,omitempty"`
	Technique string         `json:"technique,omitempty"`
	Variant   combat.Variant `json:"variant,omitempty"`
}

// ActionOutcome 行动结果及行动后的快照
type ActionOutcome struct {
	Result   combat.Result   `json:"result"`
	Snapshot combat.Snapshot `json:"snapshot"`
}

// CombatService 战斗命令入口：开始战斗、提交行动、闲置清理
type CombatService struct {
	cfg         config.CombatConfig
	players     PlayerRepository
	history     store.EncounterHistory
	leaderboard store.Leaderboard
	publisher   Publisher
	registry    *sessionRegistry

	rngMu   sync.Mutex
	rng     *rand.Rand
	newRand func() combat.Rand
	now     func() time.Time
}

// Option 服务选项
type Option func(*CombatService)

// WithPublisher 设置快照推送
func WithPublisher(p Publisher) Option {
	return func(s *CombatService) { s.publisher = p }
}

// WithHistory 设置战斗记录存储
func WithHistory(h store.EncounterHistory) Option {
	return func(s *CombatService) { s.history = h }
}

// WithLeaderboard 设置排行榜
func WithLeaderboard(l store.Leaderboard) Option {
	return func(s *CombatService) { s.leaderboard = l }
}

// WithRand 设置每场战斗的随机源
func WithRand(newRand func() combat.Rand) Option {
	return func(s *CombatService) { s.newRand = newRand }
}

// WithClock 设置时钟
func WithClock(now func() time.Time) Option {
	return func(s *CombatService) { s.now = now }
}

// WithMaxSessions 限制同时进行的战斗数，0 表示不限
func WithMaxSessions(n int) Option {
	return func(s *CombatService) { s.registry.limit = n }
}

// NewCombatService 创建战斗服务
func NewCombatService(cfg config.CombatConfig, players PlayerRepository, opts ...Option) *CombatService {
	s := &CombatService{
		cfg:      cfg,
		players:  players,
		registry: newSessionRegistry(0),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.newRand == nil {
		s.newRand = func() combat.Rand {
			return rand.New(rand.NewSource(s.seed()))
		}
	}
	return s
}

func (s *CombatService) seed() int64 {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return s.rng.Int63()
}

func (s *CombatService) pick(n int) int {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return s.rng.Intn(n)
}

func (s *CombatService) options() combat.Options {
	return combat.Options{
		StartSkillPoints: s.cfg.StartSkillPoints,
		MaxSkillPoints:   s.cfg.MaxSkillPoints,
		LogCapacity:      s.cfg.LogCapacity,
	}
}

// StartEncounter 在频道中开始一场战斗
func (s *CombatService) StartEncounter(ctx context.Context, req StartRequest) (combat.Snapshot, error) {
	if req.PlayerID == "" || req.ChannelID == "" {
		return combat.Snapshot{}, fmt.Errorf("%w: 缺少玩家或频道", combat.ErrInvalidTarget)
	}

	e, err := s.registry.reserve(req.ChannelID, req.PlayerID, s.now())
	if err != nil {
		return combat.Snapshot{}, err
	}
	defer e.mu.Unlock()

	sess, err := s.openSession(ctx, req)
	if err != nil {
		s.registry.remove(e)
		return combat.Snapshot{}, err
	}
	e.session = sess

	slog.Info("战斗开始",
		"session_id", sess.ID,
		"player_id", req.PlayerID,
		"channel_id", req.ChannelID,
		"monster_id", sess.Enemy.TemplateID,
	)

	snap := sess.Snapshot()
	s.publish(ctx, snap)
	return snap, nil
}

// openSession 加载玩家、选择怪物并创建会话，成功后立即保存玩家记录
func (s *CombatService) openSession(ctx context.Context, req StartRequest) (*combat.Session, error) {
	p, err := s.loadPlayer(ctx, req.PlayerID)
	if err != nil {
		return nil, err
	}
	if p.InCombat {
		// 注册表才是权威，残留标记通常来自进程重启
		slog.Warn("玩家记录带有残留的战斗标记", "player_id", p.ID)
	}

	monsterID := req.MonsterID
	if monsterID == "" {
		pool := gamedata.MonstersForLevel(p.Level)
		monsterID = pool[s.pick(len(pool))]
	}
	m, ok := gamedata.Monster(monsterID)
	if !ok {
		return nil, fmt.Errorf("%w: 未知的怪物 %q", combat.ErrInvalidTarget, monsterID)
	}

	sess, err := combat.NewSession(combat.Config{
		ID:        uuid.NewString(),
		ChannelID: req.ChannelID,
		Player:    p,
		Monster:   m,
		Technique: req.Technique,
		Variant:   req.Variant,
		Options:   s.options(),
		Rand:      s.newRand(),
	})
	if err != nil {
		return nil, err
	}

	if err := s.players.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("保存玩家记录失败: %w", err)
	}
	return sess, nil
}

// SubmitAction 提交玩家行动。只有战斗所有者可以行动
func (s *CombatService) SubmitAction(ctx context.Context, playerID, channelID string, a combat.Action) (ActionOutcome, error) {
	e, ok := s.registry.get(channelID)
	if !ok {
		return ActionOutcome{}, ErrNoSession
	}
	return s.act(ctx, e, playerID, a)
}

// act 在会话锁内执行行动。等待锁期间会话可能已被闲置清理放弃
func (s *CombatService) act(ctx context.Context, e *sessionEntry, playerID string, a combat.Action) (ActionOutcome, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	sess := e.session
	if sess == nil {
		return ActionOutcome{}, ErrNoSession
	}
	if sess.PlayerID != playerID {
		return ActionOutcome{}, fmt.Errorf("%w: 这不是你的战斗", combat.ErrSessionConflict)
	}

	res, err := sess.Apply(a)
	if err != nil {
		return ActionOutcome{}, err
	}
	e.lastActive = s.now()

	if res.Ended {
		s.finish(ctx, e)
	}

	snap := sess.Snapshot()
	s.publish(ctx, snap)
	return ActionOutcome{Result: res, Snapshot: snap}, nil
}

// finish 会话结束：保存玩家、写入战斗记录、更新排行榜、释放频道
func (s *CombatService) finish(ctx context.Context, e *sessionEntry) {
	sess := e.session
	p := sess.Player
	st := sess.Settlement
	defer s.registry.remove(e)

	logger := slog.With("session_id", sess.ID, "player_id", p.ID, "channel_id", sess.ChannelID)

	if err := s.players.Save(ctx, p); err != nil {
		logger.Error("保存战斗结果失败", "err", err)
	}

	rec := models.EncounterRecord{
		ID:        uuid.NewString(),
		PlayerID:  p.ID,
		ChannelID: sess.ChannelID,
		MonsterID: sess.Enemy.TemplateID,
		Outcome:   sess.State.Outcome(),
		Turns:     sess.TurnCount,
		StartedAt: e.startedAt,
		EndedAt:   s.now(),
	}
	if st != nil {
		rec.XPGained = st.XPGained
		rec.GoldGained = st.GoldGained
		rec.GoldLost = st.GoldLost
		rec.Loot = st.Loot
		rec.LevelsGained = st.LevelsGained
	}
	s.record(ctx, rec)

	if rec.Outcome == models.OutcomeVictory && s.leaderboard != nil {
		entry := models.LeaderboardEntry{PlayerID: p.ID, Name: p.Name, Level: p.Level}
		if err := s.leaderboard.RecordVictory(ctx, entry, rec.GoldGained); err != nil {
			logger.Warn("更新排行榜失败", "err", err)
		}
	}

	logger.Info("战斗结束", "outcome", rec.Outcome, "turns", rec.Turns, "duration", rec.Duration())
}

func (s *CombatService) record(ctx context.Context, rec models.EncounterRecord) {
	if s.history == nil {
		return
	}
	if err := s.history.Record(ctx, rec); err != nil {
		slog.Warn("写入战斗记录失败", "player_id", rec.PlayerID, "outcome", rec.Outcome, "err", err)
	}
}

// publish 推送快照，没有订阅者时静默忽略
func (s *CombatService) publish(ctx context.Context, snap combat.Snapshot) {
	if s.publisher == nil {
		return
	}
	err := s.publisher.Publish(ctx, snap.ChannelID, snap)
	switch {
	case err == nil:
	case errors.Is(err, ErrNoViewers):
		slog.Debug("频道无订阅者，跳过推送", "channel_id", snap.ChannelID)
	default:
		slog.Warn("推送战斗快照失败", "channel_id", snap.ChannelID, "err", err)
	}
}

// IsSessionActive 频道中是否有进行中的战斗
func (s *CombatService) IsSessionActive(channelID string) bool {
	_, err := s.Snapshot(channelID)
	return err == nil
}

// ActiveSessions 进行中的战斗数
func (s *CombatService) ActiveSessions() int {
	return s.registry.count()
}

// Snapshot 频道当前战斗的快照
func (s *CombatService) Snapshot(channelID string) (combat.Snapshot, error) {
	e, ok := s.registry.get(channelID)
	if !ok {
		return combat.Snapshot{}, ErrNoSession
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil || e.session.State.Terminal() {
		return combat.Snapshot{}, ErrNoSession
	}
	return e.session.Snapshot(), nil
}

// SweepIdle 放弃闲置超时的战斗，不做结算，返回清理数量
func (s *CombatService) SweepIdle(ctx context.Context, now time.Time) int {
	if s.cfg.IdleTimeout <= 0 {
		return 0
	}

	swept := 0
	for _, e := range s.registry.entries() {
		// 正在处理行动的会话不算闲置
		if !e.mu.TryLock() {
			continue
		}
		if e.session != nil && !e.session.State.Terminal() && now.Sub(e.lastActive) > s.cfg.IdleTimeout {
			s.expire(ctx, e, now)
			swept++
		}
		e.mu.Unlock()
	}
	return swept
}

// expire 释放频道并清除玩家的战斗标记。内存中的战斗进度被丢弃
func (s *CombatService) expire(ctx context.Context, e *sessionEntry, now time.Time) {
	s.registry.remove(e)
	sess := e.session
	logger := slog.With("session_id", sess.ID, "player_id", e.playerID, "channel_id", e.channelID)

	p, err := s.players.Load(ctx, e.playerID)
	if err != nil {
		logger.Error("加载闲置战斗的玩家失败", "err", err)
	} else {
		p.InCombat = false
		if err := s.players.Save(ctx, p); err != nil {
			logger.Error("清除战斗标记失败", "err", err)
		}
	}

	s.record(ctx, models.EncounterRecord{
		ID:        uuid.NewString(),
		PlayerID:  e.playerID,
		ChannelID: e.channelID,
		MonsterID: sess.Enemy.TemplateID,
		Outcome:   models.OutcomeExpired,
		Turns:     sess.TurnCount,
		StartedAt: e.startedAt,
		EndedAt:   now,
	})
	e.session = nil
	logger.Info("战斗闲置超时，已放弃", "idle", now.Sub(e.lastActive))
}

// Run 周期性清理闲置战斗，直到 ctx 取消
func (s *CombatService) Run(ctx context.Context) error {
	interval := s.cfg.SweepInterval
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := s.SweepIdle(ctx, s.now()); n > 0 {
				slog.Info("清理闲置战斗", "count", n, "active", s.registry.count())
			}
		case <-ctx.Done():
			return nil
		}
	}
}

// CreateCharacter 创建角色
func (s *CombatService) CreateCharacter(ctx context.Context, playerID, name string, class models.CharacterClass) (*models.Player, error) {
	if playerID == "" || name == "" {
		return nil, fmt.Errorf("%w: 玩家ID和名字不能为空", combat.ErrInvalidTarget)
	}
	info, ok := gamedata.Class(class)
	if !ok {
		return nil, fmt.Errorf("%w: 未知的职业 %q", combat.ErrInvalidTarget, class)
	}

	_, err := s.players.Load(ctx, playerID)
	switch {
	case err == nil:
		return nil, ErrCharacterExists
	case !errors.Is(err, store.ErrNotFound):
		return nil, err
	}

	p := models.NewPlayer(playerID, name, class, info.BaseStats, info.Skills)
	if err := s.players.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("保存新角色失败: %w", err)
	}
	slog.Info("创建角色", "player_id", playerID, "class", class)
	return p, nil
}

// ChoosePath 选择命途，战斗中不可选择
func (s *CombatService) ChoosePath(ctx context.Context, playerID string, path models.Path) (*models.Player, error) {
	if _, busy := s.registry.activeChannel(playerID); busy {
		return nil, fmt.Errorf("%w: 战斗中无法选择命途", combat.ErrSessionConflict)
	}
	p, err := s.loadPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if err := p.ChoosePath(path); err != nil {
		return nil, err
	}
	if err := s.players.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("保存命途失败: %w", err)
	}
	return p, nil
}

// Profile 玩家资料
func (s *CombatService) Profile(ctx context.Context, playerID string) (*models.Player, error) {
	return s.loadPlayer(ctx, playerID)
}

// History 玩家最近的战斗和战绩统计
func (s *CombatService) History(ctx context.Context, playerID string, limit int) ([]models.EncounterRecord, models.EncounterStats, error) {
	if s.history == nil {
		return nil, models.EncounterStats{PlayerID: playerID}, nil
	}
	records, err := s.history.Recent(ctx, playerID, limit)
	if err != nil {
		return nil, models.EncounterStats{}, err
	}
	stats, err := s.history.Stats(ctx, playerID)
	if err != nil {
		return nil, models.EncounterStats{}, err
	}
	return records, stats, nil
}

// Leaderboard 排行榜，未启用时返回空
func (s *CombatService) Leaderboard(ctx context.Context, scoreType models.LeaderboardType, limit int) ([]models.LeaderboardEntry, error) {
	if s.leaderboard == nil {
		return []models.LeaderboardEntry{}, nil
	}
	return s.leaderboard.GetLeaderboard(ctx, scoreType, limit)
}

func (s *CombatService) loadPlayer(ctx context.Context, playerID string) (*models.Player, error) {
	p, err := s.players.Load(ctx, playerID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNoCharacter
	}
	return p, err
}
