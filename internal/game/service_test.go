package game

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jacl-coder/PixelStorm-RPG/config"
	"github.com/jacl-coder/PixelStorm-RPG/internal/combat"
	"github.com/jacl-coder/PixelStorm-RPG/internal/models"
	"github.com/jacl-coder/PixelStorm-RPG/internal/store"
)

// fixedRand 伤害总取下限，概率判定总是失败
type fixedRand struct{}

func (fixedRand) Intn(int) int      { return 0 }
func (fixedRand) Float64() float64 { return 0.99 }

// recordingPublisher 记录推送的快照
type recordingPublisher struct {
	mu    sync.Mutex
	snaps []combat.Snapshot
	err   error
}

func (p *recordingPublisher) Publish(_ context.Context, _ string, snap combat.Snapshot) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snaps = append(p.snaps, snap)
	return p.err
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.snaps)
}

type fixture struct {
	svc         *CombatService
	players     *store.PlayerStore
	history     *store.MemoryHistory
	leaderboard *store.MemoryLeaderboard
	publisher   *recordingPublisher
	now         time.Time
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		players:     store.NewPlayerStore(store.NewMemoryKV()),
		history:     store.NewMemoryHistory(),
		leaderboard: store.NewMemoryLeaderboard(),
		publisher:   &recordingPublisher{},
		now:         time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC),
	}
	cfg := config.CombatConfig{
		StartSkillPoints: 3,
		MaxSkillPoints:   5,
		LogCapacity:      12,
		IdleTimeout:      5 * time.Minute,
		SweepInterval:    time.Minute,
	}
	base := []Option{
		WithHistory(f.history),
		WithLeaderboard(f.leaderboard),
		WithPublisher(f.publisher),
		WithRand(func() combat.Rand { return fixedRand{} }),
		WithClock(func() time.Time { return f.now }),
	}
	f.svc = NewCombatService(cfg, f.players, append(base, opts...)...)
	return f
}

func (f *fixture) character(t *testing.T, playerID string) *models.Player {
	t.Helper()
	p, err := f.svc.CreateCharacter(context.Background(), playerID, "玩家"+playerID, models.ClassWarrior)
	if err != nil {
		t.Fatalf("CreateCharacter: %v", err)
	}
	return p
}

func (f *fixture) load(t *testing.T, playerID string) *models.Player {
	t.Helper()
	p, err := f.players.Load(context.Background(), playerID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return p
}

func TestStartEncounter_RequiresCharacter(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.StartEncounter(context.Background(), StartRequest{PlayerID: "p1", ChannelID: "c1"})
	if !errors.Is(err, ErrNoCharacter) || !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNoCharacter, got %v", err)
	}
	if f.svc.IsSessionActive("c1") || f.svc.ActiveSessions() != 0 {
		t.Fatalf("failed start must release the channel")
	}
}

func TestStartEncounter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.character(t, "p1")
	f.character(t, "p2")

	snap, err := f.svc.StartEncounter(ctx, StartRequest{PlayerID: "p1", ChannelID: "c1"})
	if err != nil {
		t.Fatalf("StartEncounter: %v", err)
	}
	if snap.State != combat.StatePlayerTurn || snap.Enemy.TemplateID != "goblin" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if !f.svc.IsSessionActive("c1") {
		t.Fatalf("session should be active")
	}
	if !f.load(t, "p1").InCombat {
		t.Fatalf("player record should be saved with the combat flag")
	}
	if f.publisher.count() != 1 {
		t.Fatalf("start should publish one snapshot, got %d", f.publisher.count())
	}

	// 同一频道
	if _, err := f.svc.StartEncounter(ctx, StartRequest{PlayerID: "p2", ChannelID: "c1"}); !errors.Is(err, combat.ErrSessionConflict) {
		t.Fatalf("expected conflict for busy channel, got %v", err)
	}
	// 同一玩家
	if _, err := f.svc.StartEncounter(ctx, StartRequest{PlayerID: "p1", ChannelID: "c2"}); !errors.Is(err, combat.ErrSessionConflict) {
		t.Fatalf("expected conflict for busy player, got %v", err)
	}
	if _, err := f.svc.StartEncounter(ctx, StartRequest{PlayerID: "p2", ChannelID: "c2", MonsterID: "slime"}); !errors.Is(err, combat.ErrInvalidTarget) {
		t.Fatalf("expected ErrInvalidTarget, got %v", err)
	}
	if _, err := f.svc.StartEncounter(ctx, StartRequest{PlayerID: "p2", ChannelID: "c2", MonsterID: "orc"}); err != nil {
		t.Fatalf("second channel should be free after failed start: %v", err)
	}
}

func TestStartEncounter_StaleCombatFlag(t *testing.T) {
	f := newFixture(t)
	p := f.character(t, "p1")
	p.InCombat = true
	if err := f.players.Save(context.Background(), p); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := f.svc.StartEncounter(context.Background(), StartRequest{PlayerID: "p1", ChannelID: "c1"}); err != nil {
		t.Fatalf("stale flag must not block a new encounter: %v", err)
	}
}

func TestStartEncounter_Concurrent(t *testing.T) {
	f := newFixture(t)
	const n = 8
	for i := 0; i < n; i++ {
		f.character(t, string(rune('a'+i)))
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if _, err := f.svc.StartEncounter(context.Background(), StartRequest{PlayerID: id, ChannelID: "arena"}); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}(string(rune('a' + i)))
	}
	wg.Wait()
	if wins != 1 {
		t.Fatalf("exactly one encounter should start, got %d", wins)
	}
}

func TestStartEncounter_MaxSessions(t *testing.T) {
	f := newFixture(t, WithMaxSessions(1))
	f.character(t, "p1")
	f.character(t, "p2")
	ctx := context.Background()
	if _, err := f.svc.StartEncounter(ctx, StartRequest{PlayerID: "p1", ChannelID: "c1"}); err != nil {
		t.Fatalf("StartEncounter: %v", err)
	}
	if _, err := f.svc.StartEncounter(ctx, StartRequest{PlayerID: "p2", ChannelID: "c2"}); !errors.Is(err, ErrTooManySessions) {
		t.Fatalf("expected ErrTooManySessions, got %v", err)
	}
}

func TestSubmitAction_Ownership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.character(t, "p1")

	if _, err := f.svc.SubmitAction(ctx, "p1", "c1", combat.Action{Kind: combat.ActionAttack}); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
	if _, err := f.svc.StartEncounter(ctx, StartRequest{PlayerID: "p1", ChannelID: "c1"}); err != nil {
		t.Fatalf("StartEncounter: %v", err)
	}
	if _, err := f.svc.SubmitAction(ctx, "intruder", "c1", combat.Action{Kind: combat.ActionAttack}); !errors.Is(err, combat.ErrSessionConflict) {
		t.Fatalf("expected ErrSessionConflict, got %v", err)
	}

	out, err := f.svc.SubmitAction(ctx, "p1", "c1", combat.Action{Kind: combat.ActionAttack})
	if err != nil {
		t.Fatalf("SubmitAction: %v", err)
	}
	if !out.Result.TurnEnded || out.Snapshot.Enemy.HP != 105 {
		t.Fatalf("unexpected outcome: %+v", out.Result)
	}
}

func TestSubmitAction_RejectedActionKeepsSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.character(t, "p1")
	if _, err := f.svc.StartEncounter(ctx, StartRequest{PlayerID: "p1", ChannelID: "c1"}); err != nil {
		t.Fatalf("StartEncounter: %v", err)
	}
	published := f.publisher.count()

	_, err := f.svc.SubmitAction(ctx, "p1", "c1", combat.Action{Kind: combat.ActionUltimate})
	if !errors.Is(err, combat.ErrNotReady) || ErrorCode(err) != CodeNotReady {
		t.Fatalf("expected ErrNotReady, got %v", err)
	}
	if f.publisher.count() != published {
		t.Fatalf("rejected action must not publish")
	}
	if !f.svc.IsSessionActive("c1") {
		t.Fatalf("session must survive a rejected action")
	}
}

func TestFlee_ReleasesChannel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.character(t, "p1")
	if _, err := f.svc.StartEncounter(ctx, StartRequest{PlayerID: "p1", ChannelID: "c1"}); err != nil {
		t.Fatalf("StartEncounter: %v", err)
	}

	out, err := f.svc.SubmitAction(ctx, "p1", "c1", combat.Action{Kind: combat.ActionFlee})
	if err != nil {
		t.Fatalf("SubmitAction: %v", err)
	}
	if !out.Result.Ended || out.Snapshot.State != combat.StateFled {
		t.Fatalf("expected fled outcome, got %+v", out.Result)
	}
	if f.svc.IsSessionActive("c1") || f.svc.ActiveSessions() != 0 {
		t.Fatalf("channel should be free after flee")
	}
	if f.load(t, "p1").InCombat {
		t.Fatalf("combat flag should be cleared")
	}

	records, stats, err := f.svc.History(ctx, "p1", 10)
	if err != nil || len(records) != 1 || records[0].Outcome != models.OutcomeFled || stats.TotalEncounters != 1 {
		t.Fatalf("unexpected history: %+v %+v %v", records, stats, err)
	}

	// 可以立即开始新战斗
	if _, err := f.svc.StartEncounter(ctx, StartRequest{PlayerID: "p1", ChannelID: "c1"}); err != nil {
		t.Fatalf("restart after flee: %v", err)
	}
}

func TestVictory_PersistsRewards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.character(t, "p1")
	if _, err := f.svc.StartEncounter(ctx, StartRequest{PlayerID: "p1", ChannelID: "c1", MonsterID: "goblin"}); err != nil {
		t.Fatalf("StartEncounter: %v", err)
	}

	// 每次普攻 15 点，第 8 次击杀 120 点生命的哥布林
	var out ActionOutcome
	for i := 0; i < 8; i++ {
		var err error
		out, err = f.svc.SubmitAction(ctx, "p1", "c1", combat.Action{Kind: combat.ActionAttack})
		if err != nil {
			t.Fatalf("attack %d: %v", i+1, err)
		}
	}
	if out.Snapshot.State != combat.StateVictory || out.Result.Settlement == nil {
		t.Fatalf("expected victory, got %s", out.Snapshot.State)
	}

	p := f.load(t, "p1")
	if p.XP != 35 || p.Gold != models.DefaultStartingGold+15 || p.KillCount["goblin"] != 1 || p.InCombat {
		t.Fatalf("rewards not persisted: xp %d gold %d kills %v", p.XP, p.Gold, p.KillCount)
	}

	board, _ := f.svc.Leaderboard(ctx, models.LeaderboardVictories, 10)
	if len(board) != 1 || board[0].PlayerID != "p1" || board[0].Score != 1 {
		t.Fatalf("leaderboard = %+v", board)
	}
	records, _, _ := f.svc.History(ctx, "p1", 10)
	if len(records) != 1 || records[0].Outcome != models.OutcomeVictory || records[0].Turns != 7 {
		t.Fatalf("history = %+v", records)
	}

	if _, err := f.svc.SubmitAction(ctx, "p1", "c1", combat.Action{Kind: combat.ActionAttack}); !errors.Is(err, ErrNoSession) {
		t.Fatalf("ended session should be gone, got %v", err)
	}
}

func TestPublish_NoViewersSwallowed(t *testing.T) {
	f := newFixture(t)
	f.publisher.err = ErrNoViewers
	f.character(t, "p1")
	if _, err := f.svc.StartEncounter(context.Background(), StartRequest{PlayerID: "p1", ChannelID: "c1"}); err != nil {
		t.Fatalf("publishing to nobody must not fail the command: %v", err)
	}
}

func TestSweepIdle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.character(t, "p1")
	f.character(t, "p2")
	if _, err := f.svc.StartEncounter(ctx, StartRequest{PlayerID: "p1", ChannelID: "c1"}); err != nil {
		t.Fatalf("StartEncounter: %v", err)
	}
	if _, err := f.svc.SubmitAction(ctx, "p1", "c1", combat.Action{Kind: combat.ActionAttack}); err != nil {
		t.Fatalf("SubmitAction: %v", err)
	}

	f.now = f.now.Add(4 * time.Minute)
	if _, err := f.svc.StartEncounter(ctx, StartRequest{PlayerID: "p2", ChannelID: "c2"}); err != nil {
		t.Fatalf("StartEncounter: %v", err)
	}

	if n := f.svc.SweepIdle(ctx, f.now); n != 0 {
		t.Fatalf("nothing should be idle yet, swept %d", n)
	}

	f.now = f.now.Add(2 * time.Minute)
	if n := f.svc.SweepIdle(ctx, f.now); n != 1 {
		t.Fatalf("swept %d, want 1", n)
	}
	if f.svc.IsSessionActive("c1") || !f.svc.IsSessionActive("c2") {
		t.Fatalf("only c1 should expire")
	}

	p := f.load(t, "p1")
	if p.InCombat {
		t.Fatalf("expired session should clear the combat flag")
	}
	if p.Resources.HP != p.Resources.MaxHP {
		t.Fatalf("expiry must not persist mid-combat damage, hp %d", p.Resources.HP)
	}
	records, _, _ := f.svc.History(ctx, "p1", 10)
	if len(records) != 1 || records[0].Outcome != models.OutcomeExpired {
		t.Fatalf("history = %+v", records)
	}
}

func TestSweepIdle_PendingActionSeesNoSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.character(t, "p1")
	if _, err := f.svc.StartEncounter(ctx, StartRequest{PlayerID: "p1", ChannelID: "c1"}); err != nil {
		t.Fatalf("StartEncounter: %v", err)
	}

	// 行动已取到会话条目，但在加锁前被闲置清理抢先
	e, ok := f.svc.registry.get("c1")
	if !ok {
		t.Fatalf("entry missing")
	}
	f.now = f.now.Add(10 * time.Minute)
	if n := f.svc.SweepIdle(ctx, f.now); n != 1 {
		t.Fatalf("swept %d, want 1", n)
	}

	if _, err := f.svc.act(ctx, e, "p1", combat.Action{Kind: combat.ActionFlee}); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
	if p := f.load(t, "p1"); p.InCombat {
		t.Fatalf("abandoned session must not be saved again")
	}
	records, _, _ := f.svc.History(ctx, "p1", 10)
	if len(records) != 1 || records[0].Outcome != models.OutcomeExpired {
		t.Fatalf("history = %+v", records)
	}
}

func TestSubmitAction_ConflictMessage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.character(t, "p1")
	f.character(t, "p2")
	if _, err := f.svc.StartEncounter(ctx, StartRequest{PlayerID: "p1", ChannelID: "c1"}); err != nil {
		t.Fatalf("StartEncounter: %v", err)
	}

	_, err := f.svc.StartEncounter(ctx, StartRequest{PlayerID: "p2", ChannelID: "c1"})
	if !errors.Is(err, combat.ErrSessionConflict) || !strings.Contains(err.Error(), "该频道已有进行中的战斗") {
		t.Fatalf("busy channel error = %v", err)
	}
	if strings.Contains(err.Error(), "这不是你的战斗") {
		t.Fatalf("busy channel should not blame ownership: %v", err)
	}

	_, err = f.svc.SubmitAction(ctx, "p2", "c1", combat.Action{Kind: combat.ActionAttack})
	if !errors.Is(err, combat.ErrSessionConflict) || !strings.Contains(err.Error(), "这不是你的战斗") {
		t.Fatalf("intruder error = %v", err)
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.svc.Run(ctx) }()
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not stop")
	}
}

func TestCharacterLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.CreateCharacter(ctx, "p1", "亚瑟", "bard"); !errors.Is(err, combat.ErrInvalidTarget) {
		t.Fatalf("expected ErrInvalidTarget, got %v", err)
	}
	f.character(t, "p1")
	if _, err := f.svc.CreateCharacter(ctx, "p1", "亚瑟", models.ClassMage); !errors.Is(err, ErrCharacterExists) {
		t.Fatalf("expected ErrCharacterExists, got %v", err)
	}

	if _, err := f.svc.StartEncounter(ctx, StartRequest{PlayerID: "p1", ChannelID: "c1"}); err != nil {
		t.Fatalf("StartEncounter: %v", err)
	}
	if _, err := f.svc.ChoosePath(ctx, "p1", models.PathHunt); !errors.Is(err, combat.ErrSessionConflict) {
		t.Fatalf("path choice during combat should conflict, got %v", err)
	}
	if _, err := f.svc.SubmitAction(ctx, "p1", "c1", combat.Action{Kind: combat.ActionFlee}); err != nil {
		t.Fatalf("flee: %v", err)
	}

	p, err := f.svc.ChoosePath(ctx, "p1", models.PathHunt)
	if err != nil || p.ChosenPath != models.PathHunt {
		t.Fatalf("ChoosePath: %+v %v", p, err)
	}
	if _, err := f.svc.ChoosePath(ctx, "p1", models.PathDestruction); !errors.Is(err, models.ErrPathAlreadyChosen) {
		t.Fatalf("expected ErrPathAlreadyChosen, got %v", err)
	}
	profile, err := f.svc.Profile(ctx, "p1")
	if err != nil || profile.ChosenPath != models.PathHunt {
		t.Fatalf("Profile: %+v %v", profile, err)
	}
}

func TestErrorCode(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{combat.ErrNotReady, CodeNotReady},
		{combat.ErrItemUnavailable, CodeItemUnavailable},
		{combat.ErrInsufficientResource, CodeInsufficientResource},
		{ErrNoSession, CodeSessionConflict},
		{ErrNoCharacter, CodeNotFound},
		{combat.ErrSessionEnded, CodeSessionEnded},
		{ErrTooManySessions, CodeBusy},
		{errors.New("boom"), CodeInternal},
	}
	for _, tt := range tests {
		if got := ErrorCode(tt.err); got != tt.want {
			t.Errorf("ErrorCode(%v) = %s, want %s", tt.err, got, tt.want)
		}
	}
}
