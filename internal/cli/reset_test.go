package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/storesync/internal/storage"
)

func countKinds(t *testing.T, db string) map[storage.Kind]int {
	t.Helper()
	p, err := storage.Open(db)
	require.NoError(t, err)
	defer p.Close()
	counts, err := p.CountByKind(context.Background())
	require.NoError(t, err)
	return counts
}

func TestResetDryRunLeavesCache(t *testing.T) {
	db := persistLifecycle(t)

	out, _, err := execute(NewResetCommand(&RootOptions{Format: "text", Database: db}), "orders", "--dry-run")
	require.NoError(t, err)
	assert.Equal(t, "orders: would delete 2\n", out)
	assert.Equal(t, 2, countKinds(t, db)[storage.KindOrder])
}

func TestResetOrders(t *testing.T) {
	db := persistLifecycle(t)

	out, _, err := execute(NewResetCommand(&RootOptions{Format: "text", Database: db}), "orders")
	require.NoError(t, err)
	assert.Equal(t, "orders: deleted 2\n", out)

	counts := countKinds(t, db)
	assert.Zero(t, counts[storage.KindOrder])
	assert.Zero(t, counts[storage.KindOrderItem])
	assert.Zero(t, counts[storage.KindSearchResults])
}

func TestResetAllGroups(t *testing.T) {
	db := persistLifecycle(t)

	out, _, err := execute(NewResetCommand(&RootOptions{Format: "text", Database: db}))
	require.NoError(t, err)
	for _, g := range ResetGroups() {
		assert.Contains(t, out, g+": deleted")
	}
	assert.Contains(t, out, "orders: deleted 2")
}

func TestResetUnknownGroup(t *testing.T) {
	out, _, err := execute(NewResetCommand(&RootOptions{Format: "text"}), "customers")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, `unknown group "customers"`)
}

func TestSelectGroups(t *testing.T) {
	all, err := selectGroups(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"orders", "product_tags", "products", "refunds", "stats"}, all)

	all, err = selectGroups([]string{"orders", "all"})
	require.NoError(t, err)
	assert.Equal(t, ResetGroups(), all)

	some, err := selectGroups([]string{"refunds", "orders", "refunds"})
	require.NoError(t, err)
	assert.Equal(t, []string{"refunds", "orders"}, some)
}
