package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/quester/internal/app"
)

// QuestSummary is one row of `list quests`.
type QuestSummary struct {
	ID           string `json:"id"`
	Title        string `json:"title,omitempty"`
	Objectives   int    `json:"objectives"`
	Predecessor  string `json:"predecessor,omitempty"`
	Repeatable   bool   `json:"repeatable"`
	AutoComplete bool   `json:"auto_complete"`
	Completions  *int   `json:"completions,omitempty"`
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	var stats bool
	cmd := &cobra.Command{
		Use:   "list actions|objectives|quests",
		Short: "List registered actions, objective types or loaded quests",
		Long: `List the built-in action ids, the built-in objective types, or the
quests compiled from the configured quests_dir. With --stats each quest
also shows how many stored players completed it.`,
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"actions", "objectives", "quests"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(rootOpts, args[0], stats, cmd)
		},
	}
	cmd.Flags().BoolVar(&stats, "stats", false, "include completion counts from the database (quests only)")
	return cmd
}

func runList(opts *RootOptions, what string, stats bool, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	actions, objectives := app.NewRegistries()

	switch what {
	case "actions":
		ids := actions.IDs()
		return f.Success(ids, lines(ids))
	case "objectives":
		ids := objectives.IDs()
		return f.Success(ids, lines(ids))
	}

	cfg, err := opts.loadConfig(f)
	if err != nil {
		return err
	}
	defs, err := app.LoadQuests(cfg.QuestsDir)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeCompile, err.Error(), nil)
	}

	var counts map[string]int
	if stats {
		s, _, err := opts.openStore(f)
		if err != nil {
			return err
		}
		counts, err = s.CompletionCounts(cmdContext(cmd))
		s.Close()
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
		}
	}

	rows := make([]QuestSummary, 0, len(defs))
	var b strings.Builder
	for _, d := range defs {
		row := QuestSummary{
			ID:           d.ID,
			Title:        d.Title,
			Objectives:   len(d.Objectives),
			Predecessor:  d.Predecessor,
			Repeatable:   d.Repeatable(),
			AutoComplete: d.AutoComplete,
		}
		fmt.Fprintf(&b, "%s\t%d objective(s)", d.ID, len(d.Objectives))
		if stats {
			n := counts[d.ID]
			row.Completions = &n
			fmt.Fprintf(&b, "\t%d completion(s)", n)
		}
		if d.Title != "" {
			fmt.Fprintf(&b, "\t%s", d.Title)
		}
		b.WriteByte('\n')
		rows = append(rows, row)
	}
	return f.Success(rows, b.String())
}

func lines(items []string) string {
	if len(items) == 0 {
		return ""
	}
	return strings.Join(items, "\n") + "\n"
}
