package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/roach88/quester/internal/action"
	"github.com/roach88/quester/internal/attr"
	"github.com/roach88/quester/internal/host"
	"github.com/roach88/quester/internal/objective"
	"github.com/roach88/quester/internal/quest"
)

// Player-facing texts. They go through the localizer, so hosts may map them
// to language keys.
const (
	NotCompletableNotice = "You have not finished this quest yet."
	RewardFailedNotice   = "A quest reward could not be delivered."
)

// Repository persists player quest logs.
type Repository interface {
	Load(ctx context.Context, uid string) (*quest.PlayerLog, error)
	Save(ctx context.Context, uid string, log *quest.PlayerLog) error
}

// AttributeRepository is implemented by repositories that also keep a copy
// of player attribute trees.
type AttributeRepository interface {
	SaveAttributes(ctx context.Context, uid string, vals map[string]attr.Value) error
	LoadAttributes(ctx context.Context, uid string) (map[string]attr.Value, error)
}

// Manager runs accept, complete, abandon and reset for every player.
type Manager struct {
	quests     *quest.Registry
	objectives *objective.Registry
	env        *action.Env
	repo       Repository
	ids        quest.IDGenerator
	now        func() time.Time
	logger     *slog.Logger

	logs map[string]*quest.PlayerLog
}

// Option configures a Manager.
type Option func(*Manager)

// WithRepository persists logs through repo. Without one logs live only in
// memory.
func WithRepository(repo Repository) Option {
	return func(m *Manager) {
		m.repo = repo
	}
}

// WithIDGenerator sets the active-quest instance id source.
func WithIDGenerator(ids quest.IDGenerator) Option {
	return func(m *Manager) {
		m.ids = ids
	}
}

// WithClock sets the wall clock used for acceptance and completion stamps.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// WithLogger sets the manager logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = l
	}
}

// New builds a Manager. env is the action environment quest actions run in;
// when env.Quests is unset it is pointed at the new Manager.
func New(quests *quest.Registry, objectives *objective.Registry, env *action.Env, opts ...Option) *Manager {
	m := &Manager{
		quests:     quests,
		objectives: objectives,
		env:        env,
		ids:        quest.UUIDv7Generator{},
		now:        time.Now,
		logs:       make(map[string]*quest.PlayerLog),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = env.Logger
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	if env.Quests == nil {
		env.Quests = m
	}
	return m
}

// Quests returns the definition registry.
func (m *Manager) Quests() *quest.Registry {
	return m.quests
}

// Objectives returns the objective registry.
func (m *Manager) Objectives() *objective.Registry {
	return m.objectives
}

// Env returns the action environment.
func (m *Manager) Env() *action.Env {
	return m.env
}

// Log returns the cached quest log of a player, loading it on first use.
func (m *Manager) Log(ctx context.Context, uid string) (*quest.PlayerLog, error) {
	if log, ok := m.logs[uid]; ok {
		return log, nil
	}
	log := quest.NewPlayerLog(uid)
	if m.repo != nil {
		loaded, err := m.repo.Load(ctx, uid)
		if err != nil {
			return nil, fmt.Errorf("load quest log for %s: %w", uid, err)
		}
		if loaded != nil {
			log = loaded
		}
	}
	if log.Completed == nil {
		log.Completed = make(map[string]time.Time)
	}
	m.logs[uid] = log
	return log, nil
}

// Accept starts questID for p. Accepting an active quest is a no-op that
// returns ErrAlreadyActive. Accept actions run with per-action isolation; the
// quest stays active whatever they do.
func (m *Manager) Accept(ctx context.Context, p host.Player, questID string, giverID int64) error {
	log, err := m.Log(ctx, p.UID())
	if err != nil {
		return err
	}
	if log.IsActive(questID) {
		m.logger.Debug("accept ignored, quest already active",
			"player", p.UID(),
			"quest", questID)
		return ErrAlreadyActive
	}
	def, ok := m.quests.Get(questID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownQuest, questID)
	}
	if err := m.checkEligible(log, def); err != nil {
		return err
	}

	now := m.now()
	s := p.Attributes()
	attr.ClearQuest(s, questID)

	log.AddActive(quest.ActiveQuest{
		InstanceID: m.ids.Generate(),
		QuestID:    questID,
		GiverID:    giverID,
		AcceptedAt: now,
	})
	m.startTrackers(p, def)
	m.stampAccepted(p, questID, giverID, now)

	m.logger.Info("quest accepted",
		"player", p.UID(),
		"quest", questID,
		"giver", giverID)

	m.env.Registry.RunAll(ctx, m.env, action.Message{QuestID: questID, GiverID: giverID}, p, def.AcceptActions)

	return m.Save(ctx, p.UID())
}

func (m *Manager) checkEligible(log *quest.PlayerLog, def *quest.Definition) error {
	if def.Predecessor != "" && !log.IsCompleted(def.Predecessor) {
		return fmt.Errorf("%w: %s requires %s", ErrPredecessorMissing, def.ID, def.Predecessor)
	}
	at, done := log.CompletedAt(def.ID)
	if !done {
		return nil
	}
	if !def.Repeatable() {
		return fmt.Errorf("%w: %s", ErrAlreadyCompleted, def.ID)
	}
	ready := at.Add(time.Duration(def.CooldownDays * float64(24*time.Hour)))
	if m.now().Before(ready) {
		return fmt.Errorf("%w: %s until %s", ErrOnCooldown, def.ID, ready.Format(time.RFC3339))
	}
	return nil
}

func (m *Manager) startTrackers(p host.Player, def *quest.Definition) {
	base := objective.NewContext(m.objectives, m.env.World, def.ID, def.Objectives, 0)
	base.Logger = m.logger
	for i, d := range def.Objectives {
		o, ok := m.objectives.Lookup(d.Type)
		if !ok {
			continue
		}
		if st, ok := o.(objective.Starter); ok {
			st.Start(base.At(i), p, d.Args)
		}
	}
}

// AcceptedKey is the player attribute holding the unix time questID was last
// accepted. The quest giver entity keeps the same stamp under
// AcceptedKey(questID).With(playerUID).
func AcceptedKey(questID string) attr.Key {
	return attr.For("lastaccepted", questID)
}

func (m *Manager) stampAccepted(p host.Player, questID string, giverID int64, now time.Time) {
	attr.SetInt(p.Attributes(), AcceptedKey(questID), int(now.Unix()))
	if giverID == 0 || m.env.World == nil {
		return
	}
	if giver, ok := m.env.World.Entity(giverID); ok {
		attr.SetInt(giver.Attributes(), AcceptedKey(questID).With(p.UID()), int(now.Unix()))
	}
}

// IsCompletable reports whether every objective of an active quest is met.
// Gates that restrict another objective do not count toward the aggregate.
func (m *Manager) IsCompletable(p host.Player, questID string) bool {
	def, ok := m.quests.Get(questID)
	if !ok {
		return false
	}
	return m.completable(p, def)
}

func (m *Manager) completable(p host.Player, def *quest.Definition) bool {
	base := objective.NewContext(m.objectives, m.env.World, def.ID, def.Objectives, 0)
	base.Logger = m.logger
	for i, d := range def.Objectives {
		if _, gate := m.objectives.IsGate(d); gate {
			continue
		}
		if !m.objectives.IsCompletable(base.At(i), p) {
			return false
		}
	}
	return true
}

// Complete finishes an active quest: rewards, completion actions, completed
// set, save. A quest whose objectives are not met is left active, the player
// is told so and ErrNotCompletable is returned.
func (m *Manager) Complete(ctx context.Context, p host.Player, questID string) error {
	log, err := m.Log(ctx, p.UID())
	if err != nil {
		return err
	}
	aq, ok := log.ActiveQuest(questID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotActive, questID)
	}
	def, ok := m.quests.Get(questID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownQuest, questID)
	}
	if !m.completable(p, def) {
		m.env.Notify(p, m.env.Text(NotCompletableNotice))
		return fmt.Errorf("%w: %s", ErrNotCompletable, questID)
	}

	log.RemoveActive(questID)

	for _, r := range def.ItemRewards {
		m.deliver(p, aq, r)
	}
	for _, r := range SampleRewards(def.RandomRewards, m.env.Float64) {
		m.deliver(p, aq, r)
	}

	m.env.Registry.RunAll(ctx, m.env, action.Message{QuestID: questID, GiverID: aq.GiverID}, p, def.CompleteActions)

	log.MarkCompleted(questID, m.now())
	m.logger.Info("quest completed",
		"player", p.UID(),
		"quest", questID,
		"instance", aq.InstanceID)

	return m.Save(ctx, p.UID())
}

func (m *Manager) deliver(p host.Player, aq quest.ActiveQuest, r quest.Reward) {
	amount := r.Amount
	if amount <= 0 {
		amount = 1
	}
	err := action.Deliver(m.env, p, aq.GiverID, host.ItemStack{Code: r.Code, Quantity: amount})
	if err == nil {
		return
	}
	m.logger.Error("reward delivery failed",
		"player", p.UID(),
		"quest", aq.QuestID,
		"item", r.Code,
		"amount", amount,
		"error", err)
	m.env.Notify(p, m.env.Text(RewardFailedNotice))
}

// Abandon drops an active quest and its tracker state.
func (m *Manager) Abandon(ctx context.Context, p host.Player, questID string) error {
	log, err := m.Log(ctx, p.UID())
	if err != nil {
		return err
	}
	if !log.RemoveActive(questID) {
		return fmt.Errorf("%w: %s", ErrNotActive, questID)
	}
	attr.ClearQuest(p.Attributes(), questID)
	m.logger.Info("quest abandoned", "player", p.UID(), "quest", questID)
	return m.Save(ctx, p.UID())
}

// Reset forgets everything about questID for p: active record, completion
// and tracker state. Unknown quest ids are accepted so orphaned state can be
// cleaned up.
func (m *Manager) Reset(ctx context.Context, p host.Player, questID string) error {
	log, err := m.Log(ctx, p.UID())
	if err != nil {
		return err
	}
	wasActive := log.RemoveActive(questID)
	wasCompleted := log.ClearCompleted(questID)
	cleared := attr.ClearQuest(p.Attributes(), questID)
	m.logger.Info("quest reset",
		"player", p.UID(),
		"quest", questID,
		"was_active", wasActive,
		"was_completed", wasCompleted,
		"keys_cleared", cleared)
	return m.Save(ctx, p.UID())
}

// DropActive removes an active record without touching attributes. It is the
// self-healing path for records whose definition disappeared.
func (m *Manager) DropActive(ctx context.Context, uid, questID string) (bool, error) {
	log, err := m.Log(ctx, uid)
	if err != nil {
		return false, err
	}
	if !log.RemoveActive(questID) {
		return false, nil
	}
	return true, m.Save(ctx, uid)
}

// ObjectiveProgress is the state of one objective of an active quest.
type ObjectiveProgress struct {
	Index    int    `json:"index"`
	ID       string `json:"id,omitempty"`
	Type     string `json:"type"`
	Have     int    `json:"have"`
	Need     int    `json:"need"`
	Complete bool   `json:"complete"`
	Gate     bool   `json:"gate,omitempty"`
}

// Progress evaluates every objective of questID for p.
func (m *Manager) Progress(p host.Player, questID string) ([]ObjectiveProgress, error) {
	def, ok := m.quests.Get(questID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownQuest, questID)
	}
	base := objective.NewContext(m.objectives, m.env.World, def.ID, def.Objectives, 0)
	base.Logger = m.logger
	out := make([]ObjectiveProgress, 0, len(def.Objectives))
	for i, d := range def.Objectives {
		c := base.At(i)
		have, need := m.objectives.Progress(c, p)
		_, gate := m.objectives.IsGate(d)
		out = append(out, ObjectiveProgress{
			Index:    i,
			ID:       d.ID,
			Type:     d.Type,
			Have:     have,
			Need:     need,
			Complete: m.objectives.IsCompletable(c, p),
			Gate:     gate,
		})
	}
	return out, nil
}

// ActiveQuests returns the player's active records in acceptance order.
func (m *Manager) ActiveQuests(ctx context.Context, uid string) ([]quest.ActiveQuest, error) {
	log, err := m.Log(ctx, uid)
	if err != nil {
		return nil, err
	}
	return slices.Clone(log.Active), nil
}

// Completed returns the player's completed quest ids sorted.
func (m *Manager) Completed(ctx context.Context, uid string) ([]string, error) {
	log, err := m.Log(ctx, uid)
	if err != nil {
		return nil, err
	}
	return log.CompletedIDs(), nil
}

// Save persists the cached log of uid.
func (m *Manager) Save(ctx context.Context, uid string) error {
	log, ok := m.logs[uid]
	if !ok || m.repo == nil {
		return nil
	}
	if err := m.repo.Save(ctx, uid, log); err != nil {
		m.logger.Error("saving quest log failed", "player", uid, "error", err)
		return fmt.Errorf("save quest log for %s: %w", uid, err)
	}
	return nil
}

// SavePlayer persists the quest log and, when the repository supports it, a
// snapshot of the player's attribute tree.
func (m *Manager) SavePlayer(ctx context.Context, p host.Player) error {
	err := m.Save(ctx, p.UID())
	ar, ok := m.repo.(AttributeRepository)
	if !ok {
		return err
	}
	s := p.Attributes()
	vals := make(map[string]attr.Value)
	for _, k := range s.Keys() {
		if v, found := s.Get(k); found {
			vals[k] = v
		}
	}
	if aerr := ar.SaveAttributes(ctx, p.UID(), vals); aerr != nil {
		m.logger.Error("saving attributes failed", "player", p.UID(), "error", aerr)
		err = errors.Join(err, fmt.Errorf("save attributes for %s: %w", p.UID(), aerr))
	}
	return err
}

// SaveAll persists every cached log.
func (m *Manager) SaveAll(ctx context.Context) error {
	uids := make([]string, 0, len(m.logs))
	for uid := range m.logs {
		uids = append(uids, uid)
	}
	slices.Sort(uids)
	var errs []error
	for _, uid := range uids {
		if err := m.Save(ctx, uid); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Evict drops the cached log of uid. Unsaved changes are lost.
func (m *Manager) Evict(uid string) {
	delete(m.logs, uid)
}

// CachedPlayers returns the uids with a cached log, sorted.
func (m *Manager) CachedPlayers() []string {
	uids := make([]string, 0, len(m.logs))
	for uid := range m.logs {
		uids = append(uids, uid)
	}
	slices.Sort(uids)
	return uids
}

// AcceptQuest implements action.QuestController. An already active quest is
// not an error.
func (m *Manager) AcceptQuest(ctx context.Context, p host.Player, questID string, giverID int64) error {
	err := m.Accept(ctx, p, questID, giverID)
	if errors.Is(err, ErrAlreadyActive) {
		return nil
	}
	return err
}

// CompleteQuest implements action.QuestController.
func (m *Manager) CompleteQuest(ctx context.Context, p host.Player, questID string, _ int64) error {
	return m.Complete(ctx, p, questID)
}

// ResetQuest implements action.QuestController.
func (m *Manager) ResetQuest(ctx context.Context, p host.Player, questID string) error {
	return m.Reset(ctx, p, questID)
}

var _ action.QuestController = (*Manager)(nil)
