// Package app wires the quest engine together: registries, definitions,
// persistence, lifecycle manager and tick driver. It owns their startup and
// teardown.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/roach88/quester/internal/action"
	"github.com/roach88/quester/internal/config"
	"github.com/roach88/quester/internal/engine"
	"github.com/roach88/quester/internal/host"
	"github.com/roach88/quester/internal/lifecycle"
	"github.com/roach88/quester/internal/objective"
	"github.com/roach88/quester/internal/quest"
	"github.com/roach88/quester/internal/store"
)

var (
	_ lifecycle.Repository          = (*store.Store)(nil)
	_ lifecycle.AttributeRepository = (*store.Store)(nil)
)

// Host bundles the collaborators the embedding game provides. Only World is
// required.
type Host struct {
	World     host.World
	Notifier  host.Notifier
	Localizer host.Localizer
	Journal   host.Journal
}

// App is a fully wired engine.
type App struct {
	Config     config.Config
	Actions    *action.Registry
	Objectives *objective.Registry
	Quests     *quest.Registry
	Env        *action.Env
	Manager    *lifecycle.Manager
	Driver     *engine.Driver
	Store      *store.Store

	logger    *slog.Logger
	ownsStore bool
}

type options struct {
	logger *slog.Logger
	store  *store.Store
	quests []quest.Definition
	now    func() time.Time
	ids    quest.IDGenerator
	rand   *rand.Rand
}

// Option configures New.
type Option func(*options)

// WithLogger sets the logger shared by every component.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithStore uses an already open store. The caller keeps ownership.
func WithStore(s *store.Store) Option {
	return func(o *options) {
		o.store = s
	}
}

// WithQuests uses the given definitions instead of loading QuestsDir.
func WithQuests(defs []quest.Definition) Option {
	return func(o *options) {
		o.quests = defs
	}
}

// WithClock replaces the wall clock used for acceptance and completion times.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithIDGenerator replaces the generator for active quest instance ids.
func WithIDGenerator(ids quest.IDGenerator) Option {
	return func(o *options) {
		o.ids = ids
	}
}

// WithRand overrides the random source built from Config.RewardSeed.
func WithRand(r *rand.Rand) Option {
	return func(o *options) {
		o.rand = r
	}
}

// New builds an App. Quest compile errors abort construction; validation
// issues are logged as warnings and remain available through Validate.
func New(cfg config.Config, h Host, opts ...Option) (*App, error) {
	if h.World == nil {
		return nil, errors.New("app: host world is required")
	}
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	a := &App{
		Config: cfg,
		Quests: quest.NewRegistry(),
		logger: o.logger,
	}
	a.Actions, a.Objectives = NewRegistries()

	defs := o.quests
	if defs == nil {
		loaded, err := LoadQuests(cfg.QuestsDir)
		if err != nil {
			return nil, err
		}
		defs = loaded
	}
	a.Quests.Replace(defs)

	a.Store = o.store
	if a.Store == nil {
		s, err := store.Open(cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		a.Store = s
		a.ownsStore = true
	}

	r := o.rand
	if r == nil {
		seed := cfg.RewardSeed
		if seed == 0 {
			seed = uint64(time.Now().UnixNano())
		}
		r = rand.New(rand.NewPCG(seed, seed>>1|1))
	}

	a.Env = &action.Env{
		Registry:     a.Actions,
		World:        h.World,
		Notifier:     h.Notifier,
		Localizer:    h.Localizer,
		Journal:      h.Journal,
		Rand:         r,
		Logger:       o.logger,
		MaxDepth:     cfg.MaxActionDepth,
		NotifyErrors: cfg.NotifyErrors,
	}

	mopts := []lifecycle.Option{
		lifecycle.WithRepository(a.Store),
		lifecycle.WithLogger(o.logger),
	}
	if o.now != nil {
		mopts = append(mopts, lifecycle.WithClock(o.now))
	}
	if o.ids != nil {
		mopts = append(mopts, lifecycle.WithIDGenerator(o.ids))
	}
	a.Manager = lifecycle.New(a.Quests, a.Objectives, a.Env, mopts...)

	a.Driver = engine.New(a.Manager,
		engine.WithLogger(o.logger),
		engine.WithTickInterval(cfg.TickInterval),
		engine.WithSweepEveryTicks(cfg.SweepEveryTicks),
		engine.WithOrphanLogEveryTicks(cfg.OrphanLogEveryTicks),
		engine.WithLegacyNamespaces(cfg.LegacyNamespaces),
	)

	for _, issue := range a.Validate() {
		o.logger.Warn("quest definition issue", "issue", issue.String())
	}
	o.logger.Info("quest engine ready",
		"quests", a.Quests.Len(),
		"actions", len(a.Actions.IDs()),
		"objectives", len(a.Objectives.IDs()))
	return a, nil
}

// NewRegistries returns action and objective registries holding every
// built-in.
func NewRegistries() (*action.Registry, *objective.Registry) {
	actions := action.NewRegistry()
	action.RegisterBuiltins(actions)
	objective.RegisterActions(actions)
	objectives := objective.NewRegistry()
	objective.RegisterBuiltins(objectives)
	return actions, objectives
}

// LoadQuests compiles every quest under dir. All compile errors are
// returned together.
func LoadQuests(dir string) ([]quest.Definition, error) {
	res, errs := quest.LoadDir(dir)
	if len(errs) > 0 {
		return nil, fmt.Errorf("load quests from %s: %w", dir, errors.Join(errs...))
	}
	return res.Quests, nil
}

// Validate checks every loaded definition against the registries.
func (a *App) Validate() []quest.ValidationIssue {
	var issues []quest.ValidationIssue
	for _, def := range a.Quests.All() {
		issues = append(issues, quest.Validate(def, a.Objectives, a.Actions, a.Quests)...)
	}
	return issues
}

// Reload recompiles QuestsDir and swaps the definitions in. On error the
// current definitions stay in place.
func (a *App) Reload() ([]quest.ValidationIssue, error) {
	defs, err := LoadQuests(a.Config.QuestsDir)
	if err != nil {
		return nil, err
	}
	a.Quests.Replace(defs)
	a.logger.Info("quests reloaded", "quests", len(defs))
	return a.Validate(), nil
}

// Run runs the driver loop until ctx is cancelled or Stop is called.
func (a *App) Run(ctx context.Context) error {
	return a.Driver.Run(ctx)
}

// Stop ends Run.
func (a *App) Stop() {
	a.Driver.Stop()
}

// Close saves every connected player and cached log, then closes the store
// when the App opened it.
func (a *App) Close(ctx context.Context) error {
	err := a.Driver.OnWorldSave(ctx)
	if a.ownsStore {
		err = errors.Join(err, a.Store.Close())
	}
	return err
}
