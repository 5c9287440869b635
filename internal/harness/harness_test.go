package harness

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/storesync/internal/model"
	"github.com/roach88/storesync/internal/storage"
	"github.com/roach88/storesync/internal/testutil"
)

func runScenario(t *testing.T, doc string, opts ...Option) *Result {
	t.Helper()
	s, err := ParseScenario([]byte(doc))
	require.NoError(t, err)
	r, err := Run(context.Background(), s, opts...)
	require.NoError(t, err)
	return r
}

func TestRun_OrderLifecycleGolden(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/order_lifecycle.yaml")
	require.NoError(t, err)

	r, err := Run(context.Background(), s)
	require.NoError(t, err)
	require.True(t, r.Pass, "errors: %v", r.Errors)

	AssertGolden(t, s.Name, r)
}

func TestRun_CatalogRefresh(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/catalog_refresh.yaml")
	require.NoError(t, err)

	r, err := Run(context.Background(), s)
	require.NoError(t, err)
	assert.True(t, r.Pass, "errors: %v", r.Errors)
	require.Len(t, r.Steps, 6)
	assert.Empty(t, r.Steps[1].Action)
	assert.Empty(t, r.Steps[1].Outcome)
}

func TestRun_Deterministic(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/order_lifecycle.yaml")
	require.NoError(t, err)

	var dumps []*Dump
	for i := 0; i < 2; i++ {
		r, err := Run(context.Background(), s)
		require.NoError(t, err)
		d, err := NewDump(s.Name, r)
		require.NoError(t, err)
		dumps = append(dumps, d)
	}

	first, err := dumps[0].Marshal()
	require.NoError(t, err)
	second, err := dumps[1].Marshal()
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
	assert.Equal(t, dumps[0].Fingerprint, dumps[1].Fingerprint)
	assert.NotEmpty(t, dumps[0].Fingerprint)
}

func TestRun_UnexpectedOutcomeFails(t *testing.T) {
	r := runScenario(t, `
name: missing
steps:
  - action: retrieve_order
    args: {order_id: 5}
`)
	assert.False(t, r.Pass)
	require.Len(t, r.Errors, 1)
	assert.Contains(t, r.Errors[0], "outcome not_found, want ok")
	assert.Equal(t, OutcomeNotFound, r.Steps[0].Outcome)
	assert.NotEmpty(t, r.Steps[0].Error)
}

func TestRun_ResultMismatchFails(t *testing.T) {
	r := runScenario(t, `
name: count
remote:
  orders:
    - {site_id: 1, order_id: 1, status: pending}
steps:
  - action: synchronize_orders
    args: {page: 1, page_size: 10}
  - action: count_orders
    expect: {result: 5}
`)
	assert.False(t, r.Pass)
	require.Len(t, r.Errors, 1)
	assert.Contains(t, r.Errors[0], "result does not match")
	assert.Equal(t, 1, r.Steps[1].Value)
}

func TestRun_ValidationAndNoRoute(t *testing.T) {
	r := runScenario(t, `
name: outcomes
remote:
  orders:
    - {site_id: 1, order_id: 4, status: pending}
steps:
  - action: synchronize_orders
    args: {page: 1, page_size: 500}
    expect: {outcome: validation}
  - action: synchronize_orders
    args: {page: 1, page_size: 10}
  - action: retrieve_order
    args: {order_id: 4}
    fail: {op: LoadOrder, kind: no_route}
    expect: {outcome: no_route}
assertions:
  - type: present
    kind: order
    key: "4"
`)
	assert.True(t, r.Pass, "errors: %v", r.Errors)
}

func TestRun_StoresUseDeterministicClock(t *testing.T) {
	r := runScenario(t, `
name: refunds
remote:
  orders:
    - {site_id: 1, order_id: 8, status: processing}
steps:
  - action: create_refund
    args: {order_id: 8, amount: 5, reason: damaged}
  - action: create_refund
    args: {order_id: 8, amount: "2.50"}
  - action: create_refund
    args: {order_id: 8, amount: 0}
    expect: {outcome: validation}
assertions:
  - type: count
    kind: refund
    count: 2
`)
	require.True(t, r.Pass, "errors: %v", r.Errors)

	first, ok := r.Steps[0].Value.(model.Refund)
	require.True(t, ok)
	second, ok := r.Steps[1].Value.(model.Refund)
	require.True(t, ok)
	assert.Equal(t, testutil.Epoch, first.DateCreated)
	assert.Equal(t, testutil.Epoch.Add(time.Second), second.DateCreated)
	assert.Equal(t, "damaged", first.Reason)
}

func TestRun_WithDatabasePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	r := runScenario(t, `
name: persisted
remote:
  shipping_classes:
    - {site_id: 1, id: 3, name: Freight}
steps:
  - action: synchronize_shipping_classes
    args: {page: 1, page_size: 10}
`, WithDatabase(path))
	require.True(t, r.Pass, "errors: %v", r.Errors)

	p, err := storage.Open(path)
	require.NoError(t, err)
	defer p.Close()
	counts, err := p.CountByKind(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, counts[storage.KindShippingClass])
}

func TestRun_DefaultPageSize(t *testing.T) {
	doc := `
name: paging
remote:
  orders:
    - {site_id: 1, order_id: 1, status: pending}
steps:
  - action: synchronize_orders
    args: {page: 1}
`
	r := runScenario(t, doc)
	assert.False(t, r.Pass)
	assert.Equal(t, OutcomeValidation, r.Steps[0].Outcome)

	r = runScenario(t, doc, WithDefaultPageSize(10))
	assert.True(t, r.Pass, "errors: %v", r.Errors)
}

func TestEncodeArgs(t *testing.T) {
	data, err := encodeArgs(map[string]any{
		"order_id": 3,
		"filter":   map[string]any{"product_type": "simple"},
	}, 2, 0)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"order_id": 3, "orderid": 3, "site": 2,
		"filter": {"product_type": "simple", "producttype": "simple"}
	}`, string(data))
}
