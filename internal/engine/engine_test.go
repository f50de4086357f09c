package engine

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/quester/internal/action"
	"github.com/roach88/quester/internal/attr"
	"github.com/roach88/quester/internal/host"
	"github.com/roach88/quester/internal/lifecycle"
	"github.com/roach88/quester/internal/objective"
	"github.com/roach88/quester/internal/quest"
	"github.com/roach88/quester/internal/testutil"
)

type memRepo struct {
	mu    sync.Mutex
	logs  map[string]*quest.PlayerLog
	attrs map[string]map[string]attr.Value
	saves map[string]int
}

func newMemRepo() *memRepo {
	return &memRepo{
		logs:  make(map[string]*quest.PlayerLog),
		attrs: make(map[string]map[string]attr.Value),
		saves: make(map[string]int),
	}
}

func (r *memRepo) Load(_ context.Context, uid string) (*quest.PlayerLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.logs[uid]; ok {
		return l.Clone(), nil
	}
	return nil, nil
}

func (r *memRepo) Save(_ context.Context, uid string, log *quest.PlayerLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs[uid] = log.Clone()
	r.saves[uid]++
	return nil
}

func (r *memRepo) SaveAttributes(_ context.Context, uid string, vals map[string]attr.Value) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attrs[uid] = vals
	return nil
}

func (r *memRepo) LoadAttributes(_ context.Context, uid string) (map[string]attr.Value, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.attrs[uid], nil
}

// recorder keeps every log record at or above its level.
type recorder struct {
	mu      sync.Mutex
	records []slog.Record
}

func (r *recorder) Enabled(context.Context, slog.Level) bool { return true }

func (r *recorder) Handle(_ context.Context, rec slog.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
	return nil
}

func (r *recorder) WithAttrs([]slog.Attr) slog.Handler { return r }
func (r *recorder) WithGroup(string) slog.Handler      { return r }

func (r *recorder) count(msg string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, rec := range r.records {
		if rec.Message == msg {
			n++
		}
	}
	return n
}

type fixture struct {
	world    *testutil.World
	player   *testutil.Player
	notifier *testutil.Notifier
	repo     *memRepo
	logs     *recorder
	mgr      *lifecycle.Manager
	driver   *Driver
}

func newFixture(t *testing.T, defs []quest.Definition, opts ...Option) *fixture {
	t.Helper()

	actions := action.NewRegistry()
	action.RegisterBuiltins(actions)
	objective.RegisterActions(actions)
	objectives := objective.NewRegistry()
	objective.RegisterBuiltins(objectives)

	f := &fixture{
		world:    testutil.NewWorld(),
		notifier: &testutil.Notifier{},
		repo:     newMemRepo(),
		logs:     &recorder{},
	}
	f.player = f.world.AddPlayer("p1")
	logger := slog.New(f.logs)

	env := &action.Env{
		Registry: actions,
		World:    f.world,
		Notifier: f.notifier,
		Rand:     rand.New(rand.NewPCG(3, 4)),
		Logger:   logger,
	}
	f.mgr = lifecycle.New(quest.NewRegistry(defs...), objectives, env,
		lifecycle.WithRepository(f.repo),
		lifecycle.WithIDGenerator(&testutil.SequentialIDs{}),
		lifecycle.WithLogger(logger),
	)
	f.driver = New(f.mgr, append([]Option{WithLogger(logger)}, opts...)...)
	return f
}

func (f *fixture) accept(t *testing.T, questID string) {
	t.Helper()
	require.NoError(t, f.mgr.Accept(context.Background(), f.player, questID, 0))
}

func (f *fixture) isActive(t *testing.T, questID string) bool {
	t.Helper()
	log, err := f.mgr.Log(context.Background(), f.player.UID())
	require.NoError(t, err)
	return log.IsActive(questID)
}

func walkQuest() quest.Definition {
	return quest.Definition{
		ID: "trek",
		Objectives: []objective.Descriptor{
			{Type: "walkdistance", ID: "walk", Args: []string{"trek", "0", "20"}, OnComplete: "notify 'Far enough'"},
		},
	}
}

func TestTick_TickerFiresOnce(t *testing.T) {
	f := newFixture(t, []quest.Definition{walkQuest()})
	f.accept(t, "trek")
	ctx := context.Background()

	for range 6 {
		f.player.MoveBy(5, 0)
		f.driver.Tick(ctx)
	}

	assert.Equal(t, []string{"Far enough"}, f.notifier.Texts("p1"))
	assert.True(t, Fired(f.player, "trek", 0))
	assert.Equal(t, int64(6), f.driver.Clock().Current())
}

func TestTick_AutoComplete(t *testing.T) {
	def := walkQuest()
	def.AutoComplete = true
	def.ItemRewards = []quest.Reward{{Code: "game:boots", Amount: 1}}
	f := newFixture(t, []quest.Definition{def})
	f.accept(t, "trek")
	ctx := context.Background()

	f.player.MoveBy(5, 0)
	f.driver.Tick(ctx)
	assert.True(t, f.isActive(t, "trek"))

	for range 4 {
		f.player.MoveBy(5, 0)
		f.driver.Tick(ctx)
	}

	assert.False(t, f.isActive(t, "trek"))
	assert.Equal(t, 1, f.player.Inv.Count("game:boots"))
	assert.True(t, f.repo.logs["p1"].IsCompleted("trek"))
}

func TestTick_AutoCompleteAfterCompletionAction(t *testing.T) {
	def := walkQuest()
	def.AutoComplete = true
	def.Objectives[0].OnComplete = "completequest"
	f := newFixture(t, []quest.Definition{def})
	f.accept(t, "trek")
	ctx := context.Background()

	for range 5 {
		f.player.MoveBy(5, 0)
		f.driver.Tick(ctx)
	}

	assert.False(t, f.isActive(t, "trek"))
	assert.True(t, f.repo.logs["p1"].IsCompleted("trek"))
	assert.Zero(t, f.logs.count("auto-complete failed"))
}

func TestTick_PassiveSweepThrottled(t *testing.T) {
	def := quest.Definition{
		ID: "gather",
		Objectives: []objective.Descriptor{
			{Type: "hasitem", Args: []string{"game:flint", "2"}, OnComplete: "notify 'Got flint'"},
		},
	}
	f := newFixture(t, []quest.Definition{def}, WithSweepEveryTicks(3))
	f.accept(t, "gather")
	f.player.Inv.Give(host.ItemStack{Code: "game:flint", Quantity: 2})
	ctx := context.Background()

	f.driver.Tick(ctx)
	f.driver.Tick(ctx)
	assert.Empty(t, f.notifier.Texts("p1"))

	f.driver.Tick(ctx)
	assert.Equal(t, []string{"Got flint"}, f.notifier.Texts("p1"))

	for range 6 {
		f.driver.Tick(ctx)
	}
	assert.Len(t, f.notifier.Texts("p1"), 1)
}

func TestTick_OrphanRemovedAndPersisted(t *testing.T) {
	f := newFixture(t, []quest.Definition{walkQuest()}, WithOrphanLogEveryTicks(5))
	ctx := context.Background()
	stored := quest.NewPlayerLog("p1")
	stored.AddActive(quest.ActiveQuest{InstanceID: "aq-x", QuestID: "deleted"})
	stored.AddActive(quest.ActiveQuest{InstanceID: "aq-y", QuestID: "trek"})
	f.repo.logs["p1"] = stored

	f.driver.Tick(ctx)

	assert.False(t, f.isActive(t, "deleted"))
	assert.True(t, f.isActive(t, "trek"))
	persisted := f.repo.logs["p1"]
	assert.False(t, persisted.IsActive("deleted"))
	assert.True(t, persisted.IsActive("trek"))
	assert.Equal(t, 1, f.logs.count("active quest has no definition, removing record"))
}

func TestTick_OrphanWarningThrottled(t *testing.T) {
	f := newFixture(t, nil, WithOrphanLogEveryTicks(5))
	ctx := context.Background()
	const msg = "active quest has no definition, removing record"

	reappear := func() {
		log, err := f.mgr.Log(ctx, "p1")
		require.NoError(t, err)
		log.AddActive(quest.ActiveQuest{QuestID: "ghost"})
	}

	for range 4 {
		reappear()
		f.driver.Tick(ctx)
	}
	assert.Equal(t, 1, f.logs.count(msg))

	reappear()
	f.driver.Tick(ctx)
	assert.Equal(t, 1, f.logs.count(msg), "tick 5 is still inside the interval")

	reappear()
	f.driver.Tick(ctx)
	assert.Equal(t, 2, f.logs.count(msg))
	assert.False(t, f.isActive(t, "ghost"))
}

func TestTick_GateHoldsTicker(t *testing.T) {
	def := quest.Definition{
		ID: "trek",
		Objectives: []objective.Descriptor{
			{Type: "timeofday", Args: []string{"night", "walk"}},
			{Type: "walkdistance", ID: "walk", Args: []string{"trek", "0", "100"}},
		},
	}
	f := newFixture(t, []quest.Definition{def})
	f.world.Hour = 12
	f.accept(t, "trek")
	ctx := context.Background()
	have := attr.For("walkdist", "trek").InSlot(0).With("have")

	f.player.MoveBy(5, 0)
	f.driver.Tick(ctx)
	assert.Zero(t, attr.GetFloat(f.player.Attrs, have))

	f.world.Hour = 22
	f.player.MoveBy(5, 0)
	f.driver.Tick(ctx)
	assert.InDelta(t, 5, attr.GetFloat(f.player.Attrs, have), 1e-9, "movement while gated is not banked")

	f.player.MoveBy(5, 0)
	f.driver.Tick(ctx)
	assert.InDelta(t, 10, attr.GetFloat(f.player.Attrs, have), 1e-9)
}

func killQuest() quest.Definition {
	return quest.Definition{
		ID: "wolves",
		Objectives: []objective.Descriptor{
			{Type: "timeofday", Args: []string{"night", "kills"}},
			{
				Type:       "killnear",
				ID:         "kills",
				Args:       []string{"wolves", "kills", "0,0,0", "50", "game:wolf-*", "2"},
				OnComplete: "notify 'Pack thinned'",
			},
		},
	}
}

func TestOnEntityDeath_CountsAndFires(t *testing.T) {
	f := newFixture(t, []quest.Definition{killQuest()})
	f.world.Hour = 23
	f.accept(t, "wolves")
	ctx := context.Background()
	wolf := f.world.AddEntity("game:wolf-male", host.Vec3{X: 3})
	far := f.world.AddEntity("game:wolf-female", host.Vec3{X: 300})
	bear := f.world.AddEntity("game:bear", host.Vec3{X: 1})

	f.driver.OnEntityDeath(ctx, f.player, wolf)
	f.driver.OnEntityDeath(ctx, f.player, far)
	f.driver.OnEntityDeath(ctx, f.player, bear)
	assert.Empty(t, f.notifier.Texts("p1"))

	f.driver.OnEntityDeath(ctx, f.player, wolf)
	f.driver.OnEntityDeath(ctx, f.player, wolf)

	assert.Equal(t, []string{"Pack thinned"}, f.notifier.Texts("p1"))
}

func TestOnEntityDeath_GatedByDaylight(t *testing.T) {
	f := newFixture(t, []quest.Definition{killQuest()})
	f.world.Hour = 12
	f.accept(t, "wolves")
	wolf := f.world.AddEntity("game:wolf-male", host.Vec3{})

	f.driver.OnEntityDeath(context.Background(), f.player, wolf)

	have := attr.For("killnear", "wolves").Obj("kills").With("have")
	assert.Zero(t, attr.GetInt(f.player.Attrs, have))
}

func TestOnBlockBroken(t *testing.T) {
	def := quest.Definition{
		ID: "quarry",
		Objectives: []objective.Descriptor{
			{Type: "blockbreak", Args: []string{"quarry", "rock", "game:rock-*", "2"}, OnComplete: "notify 'Quarry done'"},
		},
	}
	f := newFixture(t, []quest.Definition{def})
	f.accept(t, "quarry")
	ctx := context.Background()

	f.driver.OnBlockPlaced(ctx, f.player, host.BlockPos{}, "game:rock-granite")
	f.driver.OnBlockBroken(ctx, f.player, host.BlockPos{}, "game:rock-granite")
	f.driver.OnBlockBroken(ctx, f.player, host.BlockPos{X: 1}, "game:soil")
	assert.Empty(t, f.notifier.Texts("p1"))

	f.driver.OnBlockBroken(ctx, f.player, host.BlockPos{X: 2}, "game:rock-basalt")
	assert.Equal(t, []string{"Quarry done"}, f.notifier.Texts("p1"))
}

func TestOnEntityInteract(t *testing.T) {
	def := quest.Definition{
		ID: "greet",
		Objectives: []objective.Descriptor{
			{Type: "interactwithentity", Args: []string{"greet", "villagers", "villager-*", "2"}, OnComplete: "notify 'Everyone greeted'"},
		},
	}
	f := newFixture(t, []quest.Definition{def})
	f.accept(t, "greet")
	ctx := context.Background()
	a := f.world.AddEntity("villager-farmer", host.Vec3{})
	b := f.world.AddEntity("villager-smith", host.Vec3{})

	f.driver.OnEntityInteract(ctx, f.player, a)
	f.driver.OnEntityInteract(ctx, f.player, a)
	assert.Empty(t, f.notifier.Texts("p1"))

	f.driver.OnEntityInteract(ctx, f.player, b)
	assert.Equal(t, []string{"Everyone greeted"}, f.notifier.Texts("p1"))
}

func TestOnPlayerJoin_MigratesLegacyKeys(t *testing.T) {
	f := newFixture(t, nil, WithLegacyNamespaces([]string{"vsquest"}))
	f.player.Attrs.Set("vsquest:walkdistance:trek:slot0:have", attr.FloatValue(12))

	require.NoError(t, f.driver.OnPlayerJoin(context.Background(), f.player))

	have := attr.For("walkdist", "trek").InSlot(0).With("have")
	assert.InDelta(t, 12, attr.GetFloat(f.player.Attrs, have), 1e-9)
	_, legacy := f.player.Attrs.Get("vsquest:walkdistance:trek:slot0:have")
	assert.False(t, legacy)
	assert.Equal(t, []string{"p1"}, f.mgr.CachedPlayers())
}

func TestOnPlayerDisconnect_SavesAndEvicts(t *testing.T) {
	f := newFixture(t, []quest.Definition{walkQuest()})
	f.accept(t, "trek")

	require.NoError(t, f.driver.OnPlayerDisconnect(context.Background(), f.player))

	assert.Empty(t, f.mgr.CachedPlayers())
	assert.True(t, f.repo.logs["p1"].IsActive("trek"))
	assert.Contains(t, f.repo.attrs["p1"], lifecycle.AcceptedKey("trek").String())
}

func TestOnWorldSave(t *testing.T) {
	f := newFixture(t, []quest.Definition{walkQuest()})
	f.accept(t, "trek")
	before := f.repo.saves["p1"]

	require.NoError(t, f.driver.OnWorldSave(context.Background()))

	assert.Greater(t, f.repo.saves["p1"], before)
	assert.NotEmpty(t, f.repo.attrs["p1"])
}

func TestRun_ProcessesQueuedEvents(t *testing.T) {
	def := quest.Definition{
		ID: "quarry",
		Objectives: []objective.Descriptor{
			{Type: "blockbreak", Args: []string{"quarry", "rock", "game:rock-*", "1"}, OnComplete: "notify 'Quarry done'"},
		},
	}
	f := newFixture(t, []quest.Definition{def}, WithTickInterval(time.Hour))
	f.accept(t, "quarry")

	require.True(t, f.driver.Enqueue(Event{Kind: EventBlockBreak, Player: f.player, Code: "game:rock-granite"}))
	require.True(t, f.driver.Enqueue(Event{Kind: EventEntityDeath}))
	require.True(t, f.driver.Enqueue(Event{Kind: EventWorldSave}))
	f.driver.Stop()

	done := make(chan error, 1)
	go func() { done <- f.driver.Run(context.Background()) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("run loop did not stop")
	}

	assert.Equal(t, []string{"Quarry done"}, f.notifier.Texts("p1"))
	assert.Equal(t, 1, f.logs.count("event without player dropped"))
	assert.False(t, f.driver.Enqueue(Event{Kind: EventWorldSave}))
}

func TestRun_StopsOnCancel(t *testing.T) {
	f := newFixture(t, nil, WithTickInterval(time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- f.driver.Run(ctx) }()

	require.Eventually(t, func() bool {
		return f.driver.Clock().Current() >= 3
	}, 2*time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("run loop ignored cancellation")
	}
}
