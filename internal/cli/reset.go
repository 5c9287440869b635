package cli

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/storesync/internal/dispatch"
	"github.com/roach88/storesync/internal/storage"
	"github.com/roach88/storesync/internal/stores"
)

// resetGroup names one store's reset: the kinds it clears and the action
// that clears them.
type resetGroup struct {
	kinds  []storage.Kind
	action func(done dispatch.Completion[int]) dispatch.Action
}

var resetGroups = map[string]resetGroup{
	"orders": {
		kinds:  []storage.Kind{storage.KindOrder},
		action: func(c dispatch.Completion[int]) dispatch.Action { return stores.ResetStoredOrders{OnComplete: c} },
	},
	"products": {
		kinds:  []storage.Kind{storage.KindProduct},
		action: func(c dispatch.Completion[int]) dispatch.Action { return stores.ResetStoredProducts{OnComplete: c} },
	},
	"refunds": {
		kinds:  []storage.Kind{storage.KindRefund},
		action: func(c dispatch.Completion[int]) dispatch.Action { return stores.ResetStoredRefunds{OnComplete: c} },
	},
	"product_tags": {
		kinds:  []storage.Kind{storage.KindProductTag},
		action: func(c dispatch.Completion[int]) dispatch.Action { return stores.ResetStoredProductTags{OnComplete: c} },
	},
	"stats": {
		kinds:  []storage.Kind{storage.KindOrderStats, storage.KindVisitStats},
		action: func(c dispatch.Completion[int]) dispatch.Action { return stores.ResetStoredStats{OnComplete: c} },
	},
}

// ResetGroups lists the group names reset accepts, sorted.
func ResetGroups() []string {
	names := make([]string, 0, len(resetGroups))
	for name := range resetGroups {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ResetOptions holds flags for the reset command.
type ResetOptions struct {
	*RootOptions
	DryRun bool
}

// GroupReset is the outcome of resetting one group.
type GroupReset struct {
	Group   string `json:"group"`
	Deleted int    `json:"deleted"`
}

// ResetResult holds the reset result.
type ResetResult struct {
	DryRun bool         `json:"dry_run"`
	Groups []GroupReset `json:"groups"`
}

// NewResetCommand creates the reset command.
func NewResetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ResetOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "reset [group...]",
		Short: "Delete cached store data",
		Long: fmt.Sprintf(`Delete every cached object of the named groups through their stores.
With no group, or "all", every group is reset. Groups: %s.

--dry-run reports what would be deleted and leaves the cache untouched.

Exit codes:
  0 - Success
  2 - Command error (unknown group, database cannot be opened, etc.)

Examples:
  storesync reset orders products
  storesync reset --dry-run
  storesync reset all --db ./cache.db`, strings.Join(ResetGroups(), ", ")),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReset(cmd.Context(), opts, cmd, args)
		},
	}

	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "report counts without deleting")

	return cmd
}

func selectGroups(args []string) ([]string, error) {
	if len(args) == 0 || slices.Contains(args, "all") {
		return ResetGroups(), nil
	}
	var out []string
	for _, g := range args {
		if _, ok := resetGroups[g]; !ok {
			return nil, fmt.Errorf("unknown group %q: must be one of %s", g, strings.Join(ResetGroups(), ", "))
		}
		if !slices.Contains(out, g) {
			out = append(out, g)
		}
	}
	return out, nil
}

func runReset(ctx context.Context, opts *ResetOptions, cmd *cobra.Command, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	groups, err := selectGroups(args)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "select groups", err)
	}

	cfg, err := opts.loadConfig()
	if err != nil {
		_ = formatter.Error(ErrCodeConfig, err.Error(), nil)
		return err
	}
	logger := opts.logger(cfg, formatter.GetErrWriter())

	p, err := storage.Open(cfg.Database, storage.WithLogger(logger))
	if err != nil {
		_ = formatter.Error(ErrCodeDatabase, "failed to open database", err.Error())
		return WrapExitError(ExitCommandError, "open database", err)
	}
	defer p.Close()

	result := ResetResult{DryRun: opts.DryRun, Groups: make([]GroupReset, 0, len(groups))}
	if opts.DryRun {
		counts, err := p.CountByKind(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "count objects", err)
		}
		for _, g := range groups {
			gr := GroupReset{Group: g}
			for _, k := range resetGroups[g].kinds {
				gr.Deleted += counts[k]
			}
			result.Groups = append(result.Groups, gr)
		}
	} else {
		d := dispatch.New(dispatch.WithLogger(logger))
		// Reset actions never reach the remote.
		set, err := stores.Open(d, p, nil, storeOptions(cfg, logger)...)
		if err != nil {
			return WrapExitError(ExitCommandError, "open stores", err)
		}
		defer set.Close()

		for _, g := range groups {
			n, err := await(ctx, d, resetGroups[g].action)
			if err != nil {
				_ = formatter.Error(ErrCodeDatabase, fmt.Sprintf("reset %s failed", g), err.Error())
				return WrapExitError(ExitCommandError, "reset "+g, err)
			}
			formatter.VerboseLog("reset %s: %d deleted", g, n)
			result.Groups = append(result.Groups, GroupReset{Group: g, Deleted: n})
		}
	}

	return formatter.Success(result, func(w io.Writer) {
		verb := "deleted"
		if result.DryRun {
			verb = "would delete"
		}
		for _, gr := range result.Groups {
			fmt.Fprintf(w, "%s: %s %d\n", gr.Group, verb, gr.Deleted)
		}
	})
}

// await dispatches the action built by newAction and waits for its
// completion.
func await[T any](ctx context.Context, d *dispatch.Dispatcher, newAction func(dispatch.Completion[T]) dispatch.Action) (T, error) {
	done := make(chan dispatch.Result[T], 1)
	if err := d.Dispatch(newAction(func(r dispatch.Result[T]) { done <- r })); err != nil {
		var zero T
		return zero, err
	}
	select {
	case r := <-done:
		return r.Value, r.Err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
