package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/storesync/internal/config"
	"github.com/roach88/storesync/internal/pagination"
	"github.com/roach88/storesync/internal/stores"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	Database   string // overrides the configured database when set
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the storesync CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "storesync",
		Short: "storesync - local cache reconciliation for store data",
		Long:  "Replay scenarios into, inspect and reset the local store cache.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "storesync.yaml", "configuration file")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "cache database (overrides config)")

	cmd.AddCommand(NewReplayCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewInspectCommand(opts))
	cmd.AddCommand(NewResetCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

// loadConfig resolves the configuration file and applies flag overrides.
// An empty path means built-in defaults.
func (o *RootOptions) loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error
	if o.ConfigPath == "" {
		cfg, err = config.Default()
	} else {
		cfg, err = config.Load(o.ConfigPath)
	}
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "load config", err)
	}
	if o.Database != "" {
		cfg.Database = o.Database
	}
	if o.Verbose {
		cfg.Log.Level = "debug"
	}
	return cfg, nil
}

// logger builds the diagnostic logger. Diagnostics go to w so JSON output
// on stdout stays parseable.
func (o *RootOptions) logger(cfg *config.Config, w io.Writer) *slog.Logger {
	return cfg.NewLogger(w)
}

// storeOptions maps configuration onto store options.
func storeOptions(cfg *config.Config, logger *slog.Logger) []stores.Option {
	return []stores.Option{
		stores.WithLogger(logger),
		stores.WithWindow(pagination.NewWindow(cfg.Sync.FirstPage)),
		stores.WithFullSyncPageSize(cfg.Sync.FullPageSize),
	}
}
