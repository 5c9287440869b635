package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

const (
	lifecycleScenario = "../harness/testdata/scenarios/order_lifecycle.yaml"
	harnessScenarios  = "../harness/testdata/scenarios"
	harnessGolden     = "../harness/testdata/golden"
)

// execute runs cmd with args and returns what it wrote to stdout and
// stderr.
func execute(cmd *cobra.Command, args ...string) (string, string, error) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

// persistLifecycle commits the order lifecycle scenario to a fresh
// database and returns its path.
func persistLifecycle(t *testing.T) string {
	t.Helper()
	db := filepath.Join(t.TempDir(), "cache.db")
	_, _, err := execute(NewReplayCommand(&RootOptions{Format: "text", Database: db}), lifecycleScenario, "--persist")
	require.NoError(t, err)
	return db
}

const failingScenario = `
name: wrong_count
remote:
  orders:
    - {site_id: 1, order_id: 1, status: pending}
steps:
  - action: synchronize_orders
    args: {page: 1}
assertions:
  - {type: count, kind: order, count: 5}
`
