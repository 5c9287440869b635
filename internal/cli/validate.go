package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/storesync/internal/config"
	"github.com/roach88/storesync/internal/harness"
)

// ValidationError is one invalid file.
type ValidationError struct {
	File    string `json:"file"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid   bool              `json:"valid"`
	Checked int               `json:"checked"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [scenario|dir...]",
		Short: "Validate the config and scenario files without running them",
		Long: `Check the configuration file against its schema and decode each
scenario file, reporting every problem found. Directories are searched for
.yaml and .yml scenarios. A missing configuration file is not an error.

Exit codes:
  0 - Everything is valid
  1 - One or more files are invalid
  2 - Command error

Examples:
  storesync validate
  storesync validate ./scenarios
  storesync validate -c ./storesync.yaml ./scenarios/order_lifecycle.yaml`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}
}

func runValidate(opts *RootOptions, paths []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
	result := ValidationResult{}

	if opts.ConfigPath != "" {
		result.Checked++
		formatter.VerboseLog("validating config %s", opts.ConfigPath)
		if _, err := config.Load(opts.ConfigPath); err != nil {
			result.Errors = append(result.Errors, ValidationError{
				File: opts.ConfigPath, Code: ErrCodeConfig, Message: err.Error(),
			})
		}
	}

	for _, path := range paths {
		files := []string{path}
		if info, err := os.Stat(path); err != nil {
			result.Errors = append(result.Errors, ValidationError{File: path, Code: ErrCodeScenario, Message: err.Error()})
			continue
		} else if info.IsDir() {
			if files, err = findScenarioFiles(path, ""); err != nil {
				return WrapExitError(ExitCommandError, "failed to find scenarios", err)
			}
		}
		for _, file := range files {
			result.Checked++
			formatter.VerboseLog("validating scenario %s", file)
			if _, err := harness.LoadScenario(file); err != nil {
				result.Errors = append(result.Errors, ValidationError{File: file, Code: ErrCodeScenario, Message: err.Error()})
			}
		}
	}

	result.Valid = len(result.Errors) == 0
	if err := formatter.Success(result, func(w io.Writer) {
		for _, e := range result.Errors {
			fmt.Fprintf(w, "✗ %s [%s]: %s\n", e.File, e.Code, e.Message)
		}
		if result.Valid {
			fmt.Fprintf(w, "✓ %d file(s) valid\n", result.Checked)
		}
	}); err != nil {
		return err
	}
	if !result.Valid {
		return NewExitError(ExitFailure, fmt.Sprintf("%d invalid file(s)", len(result.Errors)))
	}
	return nil
}
