package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/quester/internal/attr"
	"github.com/roach88/quester/internal/config"
	"github.com/roach88/quester/internal/store"
)

// MigrateResult is the output of migrate.
type MigrateResult struct {
	Database    string `json:"database"`
	FromVersion int    `json:"from_version"`
	ToVersion   int    `json:"to_version"`
	Players     int    `json:"players"`
	KeysMoved   int    `json:"keys_moved"`
}

// ArchiveResult is the output of export and import.
type ArchiveResult struct {
	Database string `json:"database"`
	Archive  string `json:"archive"`
	Players  int    `json:"players"`
}

func (o *RootOptions) openStore(f *OutputFormatter) (*store.Store, config.Config, error) {
	cfg, err := o.loadConfig(f)
	if err != nil {
		return nil, cfg, err
	}
	f.VerboseLog("Opening database %s", cfg.Database)
	s, err := store.Open(cfg.Database)
	if err != nil {
		return nil, cfg, f.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}
	return s, cfg, nil
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export <archive>",
		Short: "Write every stored player to a compressed archive",
		Long: `Write the quest log and attribute snapshot of every stored player to a
zstd-compressed JSON lines archive.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			s, cfg, err := rootOpts.openStore(f)
			if err != nil {
				return err
			}
			defer s.Close()

			n, err := s.WriteArchive(cmdContext(cmd), args[0])
			if err != nil {
				return f.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
			}
			res := ArchiveResult{Database: cfg.Database, Archive: args[0], Players: n}
			return f.Success(res, fmt.Sprintf("✓ exported %d player(s) to %s\n", n, args[0]))
		},
	}
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <archive>",
		Short: "Load players from an archive, replacing stored copies",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			s, cfg, err := rootOpts.openStore(f)
			if err != nil {
				return err
			}
			defer s.Close()

			n, err := s.ReadArchive(cmdContext(cmd), args[0])
			if err != nil {
				return f.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
			}
			res := ArchiveResult{Database: cfg.Database, Archive: args[0], Players: n}
			return f.Success(res, fmt.Sprintf("✓ imported %d player(s) from %s\n", n, args[0]))
		},
	}
}

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Upgrade the database schema and stored attribute keys",
		Long: `Bring the database schema up to date and move attribute keys stored
under legacy_namespaces into the current namespace for every stored player.
Players migrate on join as well; this command handles players who have not
joined since the upgrade.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(rootOpts, cmd)
		},
	}
}

func runMigrate(opts *RootOptions, cmd *cobra.Command) error {
	ctx := cmdContext(cmd)
	f := opts.formatter(cmd)
	s, cfg, err := opts.openStore(f)
	if err != nil {
		return err
	}
	defer s.Close()

	from, to, err := s.Migrate(ctx)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}
	res := MigrateResult{Database: cfg.Database, FromVersion: from, ToVersion: to}

	uids, err := s.Players(ctx)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}
	for _, uid := range uids {
		vals, err := s.LoadAttributes(ctx, uid)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
		}
		tree := attr.NewTree()
		tree.Restore(vals)
		moved := attr.Migrate(tree, cfg.LegacyNamespaces)
		if len(tree.Dirty()) == 0 {
			continue
		}
		if err := s.SaveAttributes(ctx, uid, tree.Snapshot()); err != nil {
			return f.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
		}
		if moved > 0 {
			f.VerboseLog("Migrated %d key(s) for %s", moved, uid)
			res.Players++
			res.KeysMoved += moved
		}
	}

	return f.Success(res, fmt.Sprintf("✓ schema version %d, moved %d key(s) for %d player(s)\n",
		res.ToVersion, res.KeysMoved, res.Players))
}
