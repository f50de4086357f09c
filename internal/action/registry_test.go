package action

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/quester/internal/host"
	"github.com/roach88/quester/internal/testutil"
)

type fixture struct {
	world    *testutil.World
	player   *testutil.Player
	notifier *testutil.Notifier
	env      *Env
	outcomes []Outcome
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		world:    testutil.NewWorld(),
		notifier: &testutil.Notifier{},
	}
	f.player = f.world.AddPlayer("p1")
	reg := NewRegistry()
	RegisterBuiltins(reg)
	f.env = &Env{
		Registry:     reg,
		World:        f.world,
		Notifier:     f.notifier,
		Localizer:    &testutil.Localizer{},
		Journal:      &testutil.Journal{},
		Logger:       slog.New(slog.DiscardHandler),
		NotifyErrors: true,
		Observer:     func(o Outcome) { f.outcomes = append(f.outcomes, o) },
	}
	return f
}

func (f *fixture) run(s string) []error {
	return f.env.Registry.Run(context.Background(), f.env, Message{QuestID: "q1"}, f.player, s)
}

func TestRegistry_RegisterRejectsDuplicates(t *testing.T) {
	reg := NewRegistry()
	noop := Func(func(context.Context, *Env, Message, host.Player, []string) error { return nil })

	require.NoError(t, reg.Register("Greet", noop))
	err := reg.Register("greet", noop)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")

	assert.Error(t, reg.Register("  ", noop))
	assert.Error(t, reg.Register("nil", nil))

	_, ok := reg.Lookup("GREET")
	assert.True(t, ok)
	assert.Equal(t, []string{"greet"}, reg.IDs())
}

func TestRegistry_RunIsolatesFailures(t *testing.T) {
	f := newFixture(t)

	errs := f.run("addplayerattribute a 1; takeitem; addplayerattribute b 2")

	require.Len(t, errs, 1)
	assert.True(t, HasCode(errs[0], ErrCodeInvalidArgs))

	v, ok := f.player.Attrs.Get("a")
	require.True(t, ok)
	assert.Equal(t, "1", v.String())
	v, ok = f.player.Attrs.Get("b")
	require.True(t, ok)
	assert.Equal(t, "2", v.String())

	assert.Equal(t, []string{ErrorNotice}, f.notifier.Texts("p1"))
}

func TestRegistry_UnknownActionIsSkipped(t *testing.T) {
	f := newFixture(t)

	errs := f.run("frobnicate x; setplayerbool done true")

	assert.Empty(t, errs)
	require.Len(t, f.outcomes, 2)
	assert.True(t, f.outcomes[0].Skipped)
	assert.Equal(t, "frobnicate", f.outcomes[0].Command.ID)
	assert.False(t, f.outcomes[1].Skipped)
	assert.Empty(t, f.notifier.Sent)
}

func TestRegistry_RecoversPanics(t *testing.T) {
	f := newFixture(t)
	f.env.Registry.MustRegister("boom", Func(func(context.Context, *Env, Message, host.Player, []string) error {
		panic("kaboom")
	}))

	errs := f.run("boom; setplayerbool after true")

	require.Len(t, errs, 1)
	assert.True(t, HasCode(errs[0], ErrCodeHandlerPanic))
	assert.Contains(t, errs[0].Error(), "kaboom")
	_, ok := f.player.Attrs.Get("after")
	assert.True(t, ok)
}

func TestRegistry_NoNotificationWhenDisabled(t *testing.T) {
	f := newFixture(t)
	f.env.NotifyErrors = false

	errs := f.run("giveitem")

	require.Len(t, errs, 1)
	assert.Empty(t, f.notifier.Sent)
}

func TestRegistry_DepthLimit(t *testing.T) {
	f := newFixture(t)
	f.env.MaxDepth = 3
	f.env.Registry.MustRegister("loop", Func(func(ctx context.Context, env *Env, msg Message, p host.Player, _ []string) error {
		env.Dispatch(ctx, msg, p, "loop")
		return nil
	}))

	errs := f.run("loop")
	assert.Empty(t, errs)

	var depthErrs int
	for _, o := range f.outcomes {
		if HasCode(o.Err, ErrCodeDepthExceeded) {
			depthErrs++
		}
	}
	assert.Equal(t, 1, depthErrs)
	assert.Len(t, f.outcomes, 4)
}

func TestRegistry_RunAll(t *testing.T) {
	f := newFixture(t)

	errs := f.env.Registry.RunAll(context.Background(), f.env, Message{}, f.player,
		[]string{"addplayerint n 2", "", "addplayerint n 3"})

	assert.Empty(t, errs)
	v, _ := f.player.Attrs.Get("n")
	n, _ := v.AsInt()
	assert.Equal(t, int64(5), n)
}

func TestError_Format(t *testing.T) {
	cause := errors.New("disk full")
	err := &Error{Code: ErrCodeDeliveryFailed, Action: "giveitem", Message: "spawn failed", Err: cause}

	assert.Equal(t, "DELIVERY_FAILED: spawn failed (action=giveitem): disk full", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.False(t, HasCode(cause, ErrCodeDeliveryFailed))
}
