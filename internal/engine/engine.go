package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/roach88/quester/internal/host"
	"github.com/roach88/quester/internal/lifecycle"
	"github.com/roach88/quester/internal/objective"
	"github.com/roach88/quester/internal/quest"
)

const (
	DefaultTickInterval        = time.Second
	DefaultSweepEveryTicks     = 1
	DefaultOrphanLogEveryTicks = 60
)

// Driver is the tick driver and event dispatcher.
//
// Thread-safety model:
//   - Enqueue: safe from any goroutine
//   - Run: exactly one goroutine
//   - Tick and the On* hooks: the Run goroutine, or the host simulation
//     thread when Run is not used
type Driver struct {
	mgr     *lifecycle.Manager
	world   host.World
	trigger *Trigger
	clock   *Clock
	queue   *eventQueue
	logger  *slog.Logger

	tickInterval     time.Duration
	sweepEvery       int64
	orphanLogEvery   int64
	legacyNamespaces []string

	// tick of the last orphan warning per quest id
	orphanLogged map[string]int64
}

// Option configures a Driver.
type Option func(*Driver)

// WithTickInterval sets the wall time between ticks in Run.
func WithTickInterval(d time.Duration) Option {
	return func(dr *Driver) {
		dr.tickInterval = d
	}
}

// WithSweepEveryTicks sets how often passive objectives are re-checked.
func WithSweepEveryTicks(n int) Option {
	return func(dr *Driver) {
		dr.sweepEvery = int64(n)
	}
}

// WithOrphanLogEveryTicks sets the minimum number of ticks between two
// warnings about the same orphaned quest id.
func WithOrphanLogEveryTicks(n int) Option {
	return func(dr *Driver) {
		dr.orphanLogEvery = int64(n)
	}
}

// WithLegacyNamespaces names the attribute namespaces migrated on join.
func WithLegacyNamespaces(ns []string) Option {
	return func(dr *Driver) {
		dr.legacyNamespaces = ns
	}
}

// WithLogger sets the driver logger.
func WithLogger(l *slog.Logger) Option {
	return func(dr *Driver) {
		dr.logger = l
	}
}

// WithClock resumes from a given logical clock.
func WithClock(c *Clock) Option {
	return func(dr *Driver) {
		dr.clock = c
	}
}

// New builds a Driver over a lifecycle manager. The manager's action
// environment supplies the world and the action registry.
func New(mgr *lifecycle.Manager, opts ...Option) *Driver {
	d := &Driver{
		mgr:            mgr,
		world:          mgr.Env().World,
		clock:          NewClock(),
		queue:          newEventQueue(),
		tickInterval:   DefaultTickInterval,
		sweepEvery:     DefaultSweepEveryTicks,
		orphanLogEvery: DefaultOrphanLogEveryTicks,
		orphanLogged:   make(map[string]int64),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	if d.sweepEvery <= 0 {
		d.sweepEvery = DefaultSweepEveryTicks
	}
	if d.orphanLogEvery <= 0 {
		d.orphanLogEvery = DefaultOrphanLogEveryTicks
	}
	d.trigger = NewTrigger(mgr.Env(), d.logger)
	return d
}

// Trigger returns the completion trigger the driver fires through.
func (d *Driver) Trigger() *Trigger {
	return d.trigger
}

// Clock returns the logical tick clock.
func (d *Driver) Clock() *Clock {
	return d.clock
}

// Enqueue submits a host event to the Run loop. It returns false once the
// driver has stopped.
func (d *Driver) Enqueue(ev Event) bool {
	return d.queue.Enqueue(ev)
}

// Run processes queued events and ticks every TickInterval until ctx is
// cancelled or Stop is called. Queued events are drained before a tick.
// Failures inside an event are logged and processing continues.
func (d *Driver) Run(ctx context.Context) error {
	d.logger.Info("driver starting", "tick_interval", d.tickInterval)

	ticker := time.NewTicker(d.tickInterval)
	defer ticker.Stop()

	for {
		if ev, ok := d.queue.TryDequeue(); ok {
			d.process(ctx, ev)
			continue
		}

		select {
		case <-ctx.Done():
			d.logger.Info("driver stopping: context cancelled")
			d.queue.Close()
			return ctx.Err()

		case <-ticker.C:
			d.Tick(ctx)

		case <-d.queue.Wait():
			if d.queue.Drained() {
				d.logger.Info("driver stopping: queue closed")
				return nil
			}
		}
	}
}

// Stop closes the event queue; Run returns once it is drained.
func (d *Driver) Stop() {
	d.queue.Close()
}

func (d *Driver) process(ctx context.Context, ev Event) {
	if ev.Player == nil && ev.Kind != EventWorldSave {
		d.logger.Warn("event without player dropped", "event", ev.Kind)
		return
	}
	var err error
	switch ev.Kind {
	case EventEntityDeath:
		d.OnEntityDeath(ctx, ev.Player, ev.Entity)
	case EventBlockBreak:
		d.OnBlockBroken(ctx, ev.Player, ev.Pos, ev.Code)
	case EventBlockPlace:
		d.OnBlockPlaced(ctx, ev.Player, ev.Pos, ev.Code)
	case EventBlockInteract:
		d.OnBlockInteract(ctx, ev.Player, ev.Pos, ev.Code)
	case EventEntityInteract:
		d.OnEntityInteract(ctx, ev.Player, ev.Entity)
	case EventPlayerJoin:
		err = d.OnPlayerJoin(ctx, ev.Player)
	case EventPlayerDisconnect:
		err = d.OnPlayerDisconnect(ctx, ev.Player)
	case EventWorldSave:
		err = d.OnWorldSave(ctx)
	default:
		d.logger.Warn("unknown event kind", "event", ev.Kind)
	}
	if err != nil {
		d.logger.Error("event failed", "event", ev.Kind, "error", err)
	}
}

// Tick advances the logical clock and evaluates every connected player.
func (d *Driver) Tick(ctx context.Context) {
	if d.world == nil {
		return
	}
	tick := d.clock.Next()
	sweep := tick%d.sweepEvery == 0
	for _, p := range d.world.Players() {
		d.tickPlayer(ctx, p, tick, sweep)
	}
}

func (d *Driver) tickPlayer(ctx context.Context, p host.Player, tick int64, sweep bool) {
	active, err := d.mgr.ActiveQuests(ctx, p.UID())
	if err != nil {
		d.logger.Error("loading quest log failed", "player", p.UID(), "error", err)
		return
	}
	objectives := d.mgr.Objectives()
	for _, aq := range active {
		def, ok := d.mgr.Quests().Get(aq.QuestID)
		if !ok {
			d.dropOrphan(ctx, p.UID(), aq, tick)
			continue
		}
		d.visit(ctx, p, aq, def, func(c *objective.Context, o objective.Objective) bool {
			if t, ok := o.(objective.Ticker); ok {
				t.Tick(c, p, c.Objective.Args)
				return true
			}
			return sweep && objectives.IsPassive(c.Objective.Type)
		}, func(c *objective.Context, o objective.Objective) {
			if ps, ok := o.(objective.Pauser); ok {
				ps.Pause(c, p, c.Objective.Args)
			}
		})
		if sweep && def.AutoComplete && d.stillActive(ctx, p.UID(), aq.QuestID) {
			d.autoComplete(ctx, p, aq.QuestID)
		}
	}
}

func (d *Driver) autoComplete(ctx context.Context, p host.Player, questID string) {
	if !d.mgr.IsCompletable(p, questID) {
		return
	}
	if err := d.mgr.Complete(ctx, p, questID); err != nil {
		d.logger.Error("auto-complete failed", "player", p.UID(), "quest", questID, "error", err)
	}
}

// dropOrphan removes an active record whose definition is gone. The record
// is removed every time; the warning is throttled per quest id.
func (d *Driver) dropOrphan(ctx context.Context, uid string, aq quest.ActiveQuest, tick int64) {
	removed, err := d.mgr.DropActive(ctx, uid, aq.QuestID)
	last, seen := d.orphanLogged[aq.QuestID]
	if !seen || tick-last >= d.orphanLogEvery {
		d.orphanLogged[aq.QuestID] = tick
		d.logger.Warn("active quest has no definition, removing record",
			"player", uid,
			"quest", aq.QuestID,
			"instance", aq.InstanceID,
			"removed", removed)
	}
	if err != nil {
		d.logger.Error("saving after orphan removal failed", "player", uid, "quest", aq.QuestID, "error", err)
	}
}

// visitFunc is called for each open objective of an active quest. It
// returns whether the objective should be checked for completion.
type visitFunc func(c *objective.Context, o objective.Objective) bool

// visit walks the objectives of one active quest in definition order,
// skipping unknown types, and fires the completion trigger for those fn
// selects. Objectives whose gate is closed go to gated instead, when set.
func (d *Driver) visit(ctx context.Context, p host.Player, aq quest.ActiveQuest, def *quest.Definition, fn visitFunc, gated func(c *objective.Context, o objective.Objective)) {
	objectives := d.mgr.Objectives()
	base := objective.NewContext(objectives, d.world, def.ID, def.Objectives, 0)
	base.Logger = d.logger
	closed := d.closedGates(base, p, def)

	for i, desc := range def.Objectives {
		if !d.stillActive(ctx, p.UID(), aq.QuestID) {
			return
		}
		if _, gate := objectives.IsGate(desc); gate {
			continue
		}
		o, ok := objectives.Lookup(desc.Type)
		if !ok {
			d.logger.Debug("unknown objective type skipped",
				"quest", def.ID,
				"objective", desc.Type,
				"index", i)
			continue
		}
		c := base.At(i)
		if desc.ID != "" && closed[desc.ID] {
			if gated != nil {
				gated(c, o)
			}
			continue
		}
		if !fn(c, o) {
			continue
		}
		d.trigger.TryFireOnComplete(ctx, p, aq, desc, i, o.IsCompletable(c, p, desc.Args))
	}
}

// stillActive guards against completion actions that finish or reset the
// quest part way through a visit.
func (d *Driver) stillActive(ctx context.Context, uid, questID string) bool {
	log, err := d.mgr.Log(ctx, uid)
	return err == nil && log.IsActive(questID)
}

// closedGates returns the ids of objectives held back by an unsatisfied
// gate.
func (d *Driver) closedGates(base *objective.Context, p host.Player, def *quest.Definition) map[string]bool {
	var closed map[string]bool
	objectives := d.mgr.Objectives()
	for i, desc := range def.Objectives {
		target, ok := objectives.IsGate(desc)
		if !ok {
			continue
		}
		if objectives.IsCompletable(base.At(i), p) {
			continue
		}
		if closed == nil {
			closed = make(map[string]bool)
		}
		closed[target] = true
	}
	return closed
}
