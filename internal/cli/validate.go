package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/quester/internal/app"
	"github.com/roach88/quester/internal/quest"
)

// ValidationResult is the outcome of validate.
type ValidationResult struct {
	Valid   bool                    `json:"valid"`
	Quests  int                     `json:"quests"`
	Files   int                     `json:"files"`
	Compile []string                `json:"compile_errors,omitempty"`
	Issues  []quest.ValidationIssue `json:"issues,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [quests-dir]",
		Short: "Compile and check quest definitions",
		Long: `Compile every quest in a CUE directory and check it against the
built-in objective types and actions.

Without an argument the configured quests_dir is used.

Exit codes:
  0 - All quests valid
  1 - Compile errors or validation issues
  2 - Command error (directory missing, bad config)`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}
}

func runValidate(opts *RootOptions, args []string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	cfg, err := opts.loadConfig(f)
	if err != nil {
		return err
	}
	dir := cfg.QuestsDir
	if len(args) == 1 {
		dir = args[0]
	}

	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		return f.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("quests directory not found: %s", dir), nil)
	}

	res, errs := quest.LoadDir(dir)
	if res == nil {
		return f.Fail(ExitCommandError, ErrCodeCompile, errors.Join(errs...).Error(), nil)
	}
	f.VerboseLog("Found %d CUE file(s) in %s", res.FileCount, dir)

	result := ValidationResult{Quests: len(res.Quests), Files: res.FileCount}
	for _, e := range errs {
		result.Compile = append(result.Compile, e.Error())
	}

	actions, objectives := app.NewRegistries()
	reg := quest.NewRegistry(res.Quests...)
	for _, def := range reg.All() {
		f.VerboseLog("Validating quest: %s", def.ID)
		result.Issues = append(result.Issues, quest.Validate(def, objectives, actions, reg)...)
	}
	result.Valid = len(result.Compile) == 0 && len(result.Issues) == 0

	if result.Valid {
		return f.Success(result, fmt.Sprintf("✓ %d quest(s) valid\n", result.Quests))
	}

	code := ErrCodeIssue
	if len(result.Compile) > 0 {
		code = ErrCodeCompile
	}
	problems := len(result.Compile) + len(result.Issues)
	if f.Format != "json" {
		var b strings.Builder
		b.WriteString("✗ Validation failed\n\n")
		for _, e := range result.Compile {
			fmt.Fprintf(&b, "  %s: %s\n", ErrCodeCompile, e)
		}
		for _, issue := range result.Issues {
			fmt.Fprintf(&b, "  %s: %s\n", ErrCodeIssue, issue)
		}
		fmt.Fprint(f.Writer, b.String())
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d problem(s)", problems))
	}
	return f.Fail(ExitFailure, code, fmt.Sprintf("validation failed with %d problem(s)", problems), result)
}
