package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/quester/internal/app"
	"github.com/roach88/quester/internal/host"
	"github.com/roach88/quester/internal/lifecycle"
)

// PlayerView is the output of `player show`.
type PlayerView struct {
	UID       string          `json:"uid"`
	Active    []ActiveView    `json:"active"`
	Completed []CompletedView `json:"completed"`
}

// ActiveView is one active quest in player show output.
type ActiveView struct {
	Quest      string                        `json:"quest"`
	Instance   string                        `json:"instance"`
	AcceptedAt time.Time                     `json:"accepted_at"`
	Objectives []lifecycle.ObjectiveProgress `json:"objectives,omitempty"`
	Orphaned   bool                          `json:"orphaned,omitempty"`
}

// CompletedView is one completed quest in player show output.
type CompletedView struct {
	Quest string    `json:"quest"`
	At    time.Time `json:"at"`
}

// OperationResult is the output of accept, complete and reset.
type OperationResult struct {
	UID       string           `json:"uid"`
	Quest     string           `json:"quest"`
	Operation string           `json:"operation"`
	Messages  []string         `json:"messages,omitempty"`
	Pending   []host.ItemStack `json:"pending_items,omitempty"`
}

// NewPlayerCommand creates the player command group.
func NewPlayerCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "player",
		Short: "Inspect and edit stored player quest logs",
		Long: `Inspect and edit the quest log of a player who is not connected.

The player is rebuilt from the stored attribute snapshot. Items granted
while offline cannot be placed in an inventory; they are reported as
pending items and must be handed out by the game.`,
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show <uid>",
		Short: "Show active quests with objective progress and completed quests",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlayerShow(rootOpts, args[0], cmd)
		},
	})
	for _, op := range []string{"accept", "complete", "reset"} {
		cmd.AddCommand(&cobra.Command{
			Use:   op + " <uid> <quest>",
			Short: strings.ToUpper(op[:1]) + op[1:] + " a quest for a stored player",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runPlayerOp(rootOpts, op, args[0], args[1], cmd)
			},
		})
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "delete <uid>",
		Short: "Remove a stored player's quest log and attributes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			s, _, err := rootOpts.openStore(f)
			if err != nil {
				return err
			}
			defer s.Close()
			if err := s.DeletePlayer(cmdContext(cmd), args[0]); err != nil {
				return f.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
			}
			return f.Success(map[string]string{"uid": args[0]}, fmt.Sprintf("✓ deleted %s\n", args[0]))
		},
	})
	return cmd
}

// offlineSession is an App bound to one stored player.
type offlineSession struct {
	app    *app.App
	msgs   *app.MessageLog
	player *app.OfflinePlayer
}

func (o *RootOptions) openPlayer(ctx context.Context, f *OutputFormatter, uid string) (*offlineSession, error) {
	cfg, err := o.loadConfig(f)
	if err != nil {
		return nil, err
	}
	world := app.NewOfflineWorld()
	msgs := &app.MessageLog{}
	a, err := app.New(cfg, app.Host{World: world, Notifier: msgs},
		app.WithLogger(o.logger(f.GetErrWriter(), cfg)))
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeCompile, err.Error(), nil)
	}
	p, err := a.AttachOffline(ctx, world, uid)
	if err != nil {
		_ = a.Close(ctx)
		return nil, f.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}
	return &offlineSession{app: a, msgs: msgs, player: p}, nil
}

func runPlayerShow(opts *RootOptions, uid string, cmd *cobra.Command) error {
	ctx := cmdContext(cmd)
	f := opts.formatter(cmd)
	s, err := opts.openPlayer(ctx, f, uid)
	if err != nil {
		return err
	}
	defer s.app.Close(ctx)

	log, err := s.app.Manager.Log(ctx, uid)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}
	view := PlayerView{UID: uid, Active: []ActiveView{}, Completed: []CompletedView{}}
	for _, aq := range log.Active {
		av := ActiveView{Quest: aq.QuestID, Instance: aq.InstanceID, AcceptedAt: aq.AcceptedAt}
		progress, err := s.app.Manager.Progress(s.player, aq.QuestID)
		if errors.Is(err, lifecycle.ErrUnknownQuest) {
			av.Orphaned = true
		} else if err != nil {
			return f.Fail(ExitFailure, ErrCodeGeneric, err.Error(), nil)
		}
		av.Objectives = progress
		view.Active = append(view.Active, av)
	}
	for _, id := range log.CompletedIDs() {
		at, _ := log.CompletedAt(id)
		view.Completed = append(view.Completed, CompletedView{Quest: id, At: at})
	}
	return f.Success(view, renderPlayer(view))
}

func renderPlayer(v PlayerView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Player %s\n", v.UID)
	if len(v.Active) == 0 {
		b.WriteString("  no active quests\n")
	}
	for _, a := range v.Active {
		fmt.Fprintf(&b, "  active %s (accepted %s)", a.Quest, a.AcceptedAt.UTC().Format(time.RFC3339))
		if a.Orphaned {
			b.WriteString(" [no definition]")
		}
		b.WriteByte('\n')
		for _, o := range a.Objectives {
			mark := " "
			if o.Complete {
				mark = "x"
			}
			name := o.Type
			if o.ID != "" {
				name += " " + o.ID
			}
			fmt.Fprintf(&b, "    [%s] %s %d/%d\n", mark, name, o.Have, o.Need)
		}
	}
	for _, c := range v.Completed {
		fmt.Fprintf(&b, "  completed %s (%s)\n", c.Quest, c.At.UTC().Format(time.RFC3339))
	}
	return b.String()
}

func runPlayerOp(opts *RootOptions, op, uid, questID string, cmd *cobra.Command) error {
	ctx := cmdContext(cmd)
	f := opts.formatter(cmd)
	s, err := opts.openPlayer(ctx, f, uid)
	if err != nil {
		return err
	}

	mgr := s.app.Manager
	var opErr error
	switch op {
	case "accept":
		opErr = mgr.Accept(ctx, s.player, questID, 0)
	case "complete":
		opErr = mgr.Complete(ctx, s.player, questID)
	case "reset":
		opErr = mgr.Reset(ctx, s.player, questID)
	}

	if cerr := s.app.Close(ctx); cerr != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, cerr.Error(), nil)
	}

	result := OperationResult{
		UID:       uid,
		Quest:     questID,
		Operation: op,
		Messages:  s.msgs.Lines,
		Pending:   s.player.Pending(),
	}
	if opErr != nil {
		return f.Fail(ExitFailure, ErrCodeRefused, opErr.Error(), result)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "✓ %s %s for %s\n", op, questID, uid)
	for _, m := range result.Messages {
		fmt.Fprintf(&b, "  message %s\n", m)
	}
	for _, it := range result.Pending {
		fmt.Fprintf(&b, "  pending %d %s\n", it.Quantity, it.Code)
	}
	return f.Success(result, b.String())
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
