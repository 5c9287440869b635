package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/storesync/internal/config"
	"github.com/roach88/storesync/internal/harness"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Persist bool // run against the configured database instead of memory
	Dump    bool // print the canonical dump
}

// ReplayResult holds the result of one scenario replay.
type ReplayResult struct {
	Scenario string              `json:"scenario"`
	Pass     bool                `json:"pass"`
	Steps    []harness.StepTrace `json:"steps"`
	Errors   []string            `json:"errors,omitempty"`
	Objects  int                 `json:"objects"`
	Links    int                 `json:"links"`
	Dump     json.RawMessage     `json:"dump,omitempty"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay <scenario>",
		Short: "Replay a scenario through the stores",
		Long: `Replay one scenario file: seed the fake remote, dispatch each step's
action through the stores and check the step outcomes and cache assertions.

By default the scenario runs against an in-memory cache. --persist commits
it to the configured database instead.

Exit codes:
  0 - Every step and assertion held
  1 - The scenario failed
  2 - Command error (unreadable scenario or config, etc.)

Examples:
  storesync replay ./scenarios/order_lifecycle.yaml
  storesync replay ./scenarios/order_lifecycle.yaml --dump
  storesync replay ./scenarios/order_lifecycle.yaml --persist --db ./cache.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd.Context(), opts, cmd, args[0])
		},
	}

	cmd.Flags().BoolVar(&opts.Persist, "persist", false, "commit to the configured database")
	cmd.Flags().BoolVar(&opts.Dump, "dump", false, "print the canonical cache dump")

	return cmd
}

func runReplay(ctx context.Context, opts *ReplayOptions, cmd *cobra.Command, path string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	cfg, err := opts.loadConfig()
	if err != nil {
		_ = formatter.Error(ErrCodeConfig, err.Error(), nil)
		return err
	}

	s, err := harness.LoadScenario(path)
	if err != nil {
		_ = formatter.Error(ErrCodeScenario, "failed to load scenario", err.Error())
		return WrapExitError(ExitCommandError, "load scenario", err)
	}
	formatter.VerboseLog("replaying %s (%d steps)", s.Name, len(s.Steps))

	r, err := harness.Run(ctx, s, harnessOptions(cfg, opts.RootOptions, formatter.GetErrWriter(), opts.Persist)...)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, "scenario did not run", err.Error())
		return WrapExitError(ExitCommandError, "run scenario", err)
	}

	dump, err := harness.NewDump(s.Name, r)
	if err != nil {
		return WrapExitError(ExitCommandError, "build dump", err)
	}
	result := ReplayResult{
		Scenario: s.Name,
		Pass:     r.Pass,
		Steps:    r.Steps,
		Errors:   r.Errors,
		Objects:  len(dump.Objects),
		Links:    len(dump.Links),
	}
	var dumped []byte
	if opts.Dump {
		if dumped, err = dump.Marshal(); err != nil {
			return WrapExitError(ExitCommandError, "marshal dump", err)
		}
		result.Dump = dumped
	}

	if err := formatter.Success(result, func(w io.Writer) {
		if dumped != nil {
			fmt.Fprintf(w, "%s\n", dumped)
			return
		}
		writeReplayText(w, result)
	}); err != nil {
		return err
	}
	if !r.Pass {
		return NewExitError(ExitFailure, fmt.Sprintf("scenario %s failed", s.Name))
	}
	return nil
}

func writeReplayText(w io.Writer, r ReplayResult) {
	for _, st := range r.Steps {
		fmt.Fprintf(w, "  [%d] %s: %s\n", st.Index, st.Action, st.Outcome)
	}
	for _, e := range r.Errors {
		fmt.Fprintf(w, "  ✗ %s\n", e)
	}
	mark := "✓"
	if !r.Pass {
		mark = "✗"
	}
	fmt.Fprintf(w, "%s %s (%d objects, %d links)\n", mark, r.Scenario, r.Objects, r.Links)
}

// harnessOptions maps configuration onto harness options. Diagnostics are
// logged to logw.
func harnessOptions(cfg *config.Config, root *RootOptions, logw io.Writer, persist bool) []harness.Option {
	logger := root.logger(cfg, logw)
	hopts := []harness.Option{
		harness.WithLogger(logger),
		harness.WithDefaultPageSize(cfg.Sync.PageSize),
		harness.WithStoreOptions(storeOptions(cfg, logger)...),
	}
	if persist {
		hopts = append(hopts, harness.WithDatabase(cfg.Database))
	}
	if !cfg.Dispatch.Strict {
		hopts = append(hopts, harness.WithLenientDispatch())
	}
	return hopts
}
