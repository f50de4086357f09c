package harness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"strings"

	"github.com/roach88/quester/internal/action"
	"github.com/roach88/quester/internal/app"
	"github.com/roach88/quester/internal/attr"
	"github.com/roach88/quester/internal/config"
	"github.com/roach88/quester/internal/host"
	"github.com/roach88/quester/internal/quest"
	"github.com/roach88/quester/internal/store"
	"github.com/roach88/quester/internal/testutil"
)

// RewardSeed seeds the reward rng of every run.
const RewardSeed = 1

// Result is the outcome of a scenario run.
type Result struct {
	Pass   bool     `json:"pass"`
	Trace  []string `json:"trace"`
	Errors []string `json:"errors,omitempty"`
}

func (r *Result) addError(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	r.Pass = false
}

// harness holds one run's world.
type harness struct {
	app    *app.App
	world  *testutil.World
	player *testutil.Player
	clock  *testutil.ManualClock
	notes  *testutil.Notifier
	result *Result
}

// traceNotifier records notifications into the trace as they happen.
type traceNotifier struct {
	*testutil.Notifier
	h *harness
}

func (n traceNotifier) Notify(p host.Player, text string) {
	n.Notifier.Notify(p, text)
	n.h.trace("  notify %s: %s", p.UID(), text)
}

// Run executes the scenario in a fresh world and in-memory store. Step and
// assertion failures are reported in the result; the error is reserved for
// scenarios that cannot run at all.
func Run(s *Scenario) (*Result, error) {
	ctx := context.Background()

	defs, err := compileQuests(s)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := &harness{
		world:  testutil.NewWorld(),
		clock:  testutil.NewManualClock(),
		notes:  &testutil.Notifier{},
		result: &Result{Pass: true, Trace: []string{}},
	}
	h.player = h.world.AddPlayer(s.PlayerUID())
	if err := h.setupPlayer(s.Player); err != nil {
		return nil, err
	}

	cfg := config.Default()
	cfg.RewardSeed = RewardSeed
	a, err := app.New(cfg,
		app.Host{
			World:     h.world,
			Notifier:  traceNotifier{Notifier: h.notes, h: h},
			Localizer: &testutil.Localizer{},
			Journal:   &testutil.Journal{},
		},
		app.WithStore(st),
		app.WithQuests(defs),
		app.WithClock(h.clock.Now),
		app.WithIDGenerator(&testutil.SequentialIDs{}),
		app.WithRand(rand.New(rand.NewPCG(RewardSeed, RewardSeed))),
		app.WithLogger(slog.New(slog.DiscardHandler)),
	)
	if err != nil {
		return nil, err
	}
	a.Env.Observer = h.observe
	h.app = a

	for i, step := range s.Steps {
		h.trace("#%d %s", i+1, describe(step))
		err := h.runStep(ctx, step)
		if err != nil {
			h.trace("  error: %v", err)
		}
		switch {
		case step.Error == "" && err != nil:
			h.result.addError("step %d (%s): unexpected error: %v", i+1, step.Kind(), err)
		case step.Error != "" && err == nil:
			h.result.addError("step %d (%s): expected error containing %q", i+1, step.Kind(), step.Error)
		case step.Error != "" && !strings.Contains(err.Error(), step.Error):
			h.result.addError("step %d (%s): error %q does not contain %q", i+1, step.Kind(), err, step.Error)
		}
	}

	for _, msg := range h.evaluate(ctx, s.Assertions) {
		h.result.addError("%s", msg)
	}
	if err := a.Close(ctx); err != nil {
		h.result.addError("close: %v", err)
	}
	return h.result, nil
}

func compileQuests(s *Scenario) ([]quest.Definition, error) {
	sources := make([]string, 0, len(s.Quests)+1)
	for _, path := range s.Quests {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read quest file: %w", err)
		}
		sources = append(sources, string(data))
	}
	if s.Source != "" {
		sources = append(sources, s.Source)
	}

	defs := []quest.Definition{}
	seen := make(map[string]bool)
	for _, src := range sources {
		compiled, errs := quest.CompileString(src)
		if len(errs) > 0 {
			return nil, fmt.Errorf("compile quests: %w", errors.Join(errs...))
		}
		for _, def := range compiled {
			if seen[def.ID] {
				return nil, fmt.Errorf("compile quests: duplicate quest id %q", def.ID)
			}
			seen[def.ID] = true
			defs = append(defs, def)
		}
	}
	return defs, nil
}

func (h *harness) setupPlayer(ps PlayerSetup) error {
	for _, it := range ps.Inventory {
		if left := h.player.Inv.Give(host.ItemStack{Code: it.Code, Quantity: it.Amount}); left > 0 {
			return fmt.Errorf("player inventory: %d of %s did not fit", left, it.Code)
		}
	}
	for k, v := range ps.Attrs {
		h.player.Attrs.Set(k, attr.StringValue(v))
	}
	return nil
}

func (h *harness) runStep(ctx context.Context, st Step) error {
	mgr := h.app.Manager
	drv := h.app.Driver
	p := h.player

	switch st.Kind() {
	case "accept":
		var giver int64
		if st.Giver != "" {
			giver = h.world.AddEntity(st.Giver, p.Pos).ID()
		}
		return mgr.Accept(ctx, p, st.Accept, giver)
	case "complete":
		return mgr.Complete(ctx, p, st.Complete)
	case "abandon":
		return mgr.Abandon(ctx, p, st.Abandon)
	case "tick":
		for range st.Tick {
			h.clock.Advance(h.app.Config.TickInterval)
			drv.Tick(ctx)
		}
	case "move":
		p.MoveBy(st.Move[0], st.Move[1])
	case "kill":
		drv.OnEntityDeath(ctx, p, h.world.AddEntity(st.Kill, p.Pos))
	case "interact":
		drv.OnEntityInteract(ctx, p, h.world.AddEntity(st.Interact, p.Pos))
	case "give":
		if left := p.Inv.Give(host.ItemStack{Code: st.Give.Code, Quantity: st.Give.Amount}); left > 0 {
			return fmt.Errorf("inventory full: %d of %s left over", left, st.Give.Code)
		}
	case "storm":
		h.world.Storm = *st.Storm
	case "hour":
		h.world.Hour = *st.Hour
	}
	return nil
}

func (h *harness) observe(out action.Outcome) {
	status := "ok"
	switch {
	case out.Skipped:
		status = "skipped"
	case out.Err != nil:
		status = "error: " + out.Err.Error()
	}
	h.trace("  action [%s] %s: %s", out.QuestID, out.Command, status)
}

func (h *harness) trace(format string, args ...any) {
	h.result.Trace = append(h.result.Trace, fmt.Sprintf(format, args...))
}

func describe(st Step) string {
	switch kind := st.Kind(); kind {
	case "accept":
		if st.Giver != "" {
			return fmt.Sprintf("accept %s from %s", st.Accept, st.Giver)
		}
		return "accept " + st.Accept
	case "complete":
		return "complete " + st.Complete
	case "abandon":
		return "abandon " + st.Abandon
	case "tick":
		return fmt.Sprintf("tick %d", st.Tick)
	case "move":
		return fmt.Sprintf("move %g,%g", st.Move[0], st.Move[1])
	case "kill":
		return "kill " + st.Kill
	case "interact":
		return "interact " + st.Interact
	case "give":
		return fmt.Sprintf("give %d %s", st.Give.Amount, st.Give.Code)
	case "storm":
		return fmt.Sprintf("storm %t", *st.Storm)
	case "hour":
		return fmt.Sprintf("hour %g", *st.Hour)
	default:
		return kind
	}
}
