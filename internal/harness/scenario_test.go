package harness

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScenario_Defaults(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: minimal
steps:
  - action: count_orders
`))
	require.NoError(t, err)
	assert.Equal(t, int64(1), s.Site)
	require.Len(t, s.Steps, 1)
	assert.Nil(t, s.Steps[0].Expect)
}

func TestParseScenario_Rejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"missing name", "steps:\n  - action: count_orders\n", "name is required"},
		{"no steps", "name: x\n", "steps list is required"},
		{"unknown action", "name: x\nsteps:\n  - action: launch_rockets\n", `unknown action "launch_rockets"`},
		{"expect without action", "name: x\nsteps:\n  - expect: {outcome: ok}\n", "expect needs an action"},
		{"fail without op", "name: x\nsteps:\n  - action: count_orders\n    fail: {kind: transport}\n", "op is required"},
		{"unknown fail kind", "name: x\nsteps:\n  - action: count_orders\n    fail: {op: LoadOrders, kind: meteor}\n", `unknown kind "meteor"`},
		{"unknown field", "name: x\nstep:\n  - action: count_orders\n", "parse scenario"},
		{"assertion without kind", "name: x\nsteps:\n  - action: count_orders\nassertions:\n  - type: count\n", "kind is required"},
		{"present without key", "name: x\nsteps:\n  - action: count_orders\nassertions:\n  - {type: present, kind: order}\n", "key is required"},
		{"unknown assertion", "name: x\nsteps:\n  - action: count_orders\nassertions:\n  - {type: trace, kind: order}\n", `unknown assertion type "trace"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read scenario")
}

func TestLoadScenario_Fixtures(t *testing.T) {
	paths, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			s, err := LoadScenario(path)
			require.NoError(t, err)
			assert.NotEmpty(t, s.Description)
		})
	}
}

func TestLoadScenario_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: f\nsite: 4\nsteps:\n  - action: reset_orders\n"), 0o644))

	s, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, int64(4), s.Site)
}

func TestActionNames(t *testing.T) {
	names := ActionNames()
	sort.Strings(names)
	assert.Contains(t, names, "synchronize_orders")
	assert.Contains(t, names, "retrieve_stats")
	assert.Len(t, names, len(actions))
}
