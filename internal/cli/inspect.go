package cli

import (
	"context"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/storesync/internal/storage"
)

// KindCount is the number of cached rows of one kind.
type KindCount struct {
	Kind  string `json:"kind"`
	Count int    `json:"count"`
}

// InspectResult summarizes a cache database.
type InspectResult struct {
	Database string      `json:"database"`
	Kinds    []KindCount `json:"kinds"`
	Total    int         `json:"total"`
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "Count cached objects by kind",
		Long: `Report how many objects of each kind the cache database holds.

Exit codes:
  0 - Success
  2 - Command error (database cannot be opened, etc.)

Examples:
  storesync inspect
  storesync inspect --db ./cache.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd.Context(), rootOpts, cmd)
		},
	}
}

func runInspect(ctx context.Context, opts *RootOptions, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	cfg, err := opts.loadConfig()
	if err != nil {
		_ = formatter.Error(ErrCodeConfig, err.Error(), nil)
		return err
	}

	p, err := storage.Open(cfg.Database, storage.WithLogger(opts.logger(cfg, formatter.GetErrWriter())))
	if err != nil {
		_ = formatter.Error(ErrCodeDatabase, "failed to open database", err.Error())
		return WrapExitError(ExitCommandError, "open database", err)
	}
	defer p.Close()

	counts, err := p.CountByKind(ctx)
	if err != nil {
		_ = formatter.Error(ErrCodeDatabase, "failed to count objects", err.Error())
		return WrapExitError(ExitCommandError, "count objects", err)
	}

	result := InspectResult{Database: cfg.Database, Kinds: []KindCount{}}
	for kind, n := range counts {
		result.Kinds = append(result.Kinds, KindCount{Kind: string(kind), Count: n})
		result.Total += n
	}
	slices.SortFunc(result.Kinds, func(a, b KindCount) int {
		switch {
		case a.Kind < b.Kind:
			return -1
		case a.Kind > b.Kind:
			return 1
		}
		return 0
	})

	return formatter.Success(result, func(w io.Writer) {
		fmt.Fprintf(w, "%s\n", result.Database)
		for _, k := range result.Kinds {
			fmt.Fprintf(w, "  %-22s %d\n", k.Kind, k.Count)
		}
		fmt.Fprintf(w, "  %-22s %d\n", "total", result.Total)
	})
}
