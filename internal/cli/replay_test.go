package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplayMissingArgument(t *testing.T) {
	_, _, err := execute(NewReplayCommand(&RootOptions{Format: "text"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestReplayPassingScenario(t *testing.T) {
	out, _, err := execute(NewReplayCommand(&RootOptions{Format: "text"}), lifecycleScenario)
	require.NoError(t, err)

	assert.Contains(t, out, "[0] synchronize_orders: ok")
	assert.Contains(t, out, "[1] update_order_status: transport")
	assert.Contains(t, out, "[3] retrieve_order: not_found")
	assert.Contains(t, out, "✓ order_lifecycle (4 objects, 1 links)")
}

func TestReplayJSON(t *testing.T) {
	out, _, err := execute(NewReplayCommand(&RootOptions{Format: "json"}), lifecycleScenario)
	require.NoError(t, err)

	var resp struct {
		Status string       `json:"status"`
		Data   ReplayResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Pass)
	assert.Equal(t, "order_lifecycle", resp.Data.Scenario)
	assert.Len(t, resp.Data.Steps, 5)
	assert.Equal(t, 4, resp.Data.Objects)
	assert.Empty(t, resp.Data.Dump)
}

func TestReplayDumpMatchesGolden(t *testing.T) {
	out, _, err := execute(NewReplayCommand(&RootOptions{Format: "text"}), lifecycleScenario, "--dump")
	require.NoError(t, err)

	want, err := os.ReadFile(filepath.Join(harnessGolden, "order_lifecycle.golden"))
	require.NoError(t, err)
	assert.Equal(t, string(want)+"\n", out)
}

func TestReplayFailingScenario(t *testing.T) {
	path := writeFile(t, t.TempDir(), "wrong_count.yaml", failingScenario)

	out, _, err := execute(NewReplayCommand(&RootOptions{Format: "text"}), path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ wrong_count")
	assert.Contains(t, out, "found 1, want 5")
}

func TestReplayInvalidScenario(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.yaml", "name: bad\nsteps:\n  - action: ship_everything\n")

	out, _, err := execute(NewReplayCommand(&RootOptions{Format: "text"}), path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E002]")
}

func TestReplayNonExistentScenario(t *testing.T) {
	_, _, err := execute(NewReplayCommand(&RootOptions{Format: "text"}), filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestReplayPersist(t *testing.T) {
	db := filepath.Join(t.TempDir(), "cache.db")
	opts := &RootOptions{Format: "text", Database: db}

	_, _, err := execute(NewReplayCommand(opts), lifecycleScenario, "--persist")
	require.NoError(t, err)

	info, err := os.Stat(db)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestReplayVerboseLogsToStderr(t *testing.T) {
	out, errOut, err := execute(NewReplayCommand(&RootOptions{Format: "json", Verbose: true}), lifecycleScenario)
	require.NoError(t, err)

	assert.Contains(t, errOut, "replaying order_lifecycle (5 steps)")
	assert.True(t, strings.HasPrefix(out, "{"), "stdout stays JSON: %q", out)
}

func TestReplayHelpText(t *testing.T) {
	cmd := NewReplayCommand(&RootOptions{Format: "text"})

	assert.Contains(t, cmd.Long, "Exit codes:")
	assert.Contains(t, cmd.Long, "--persist")
}
