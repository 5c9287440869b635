package stores

import (
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/roach88/storesync/internal/dispatch"
	"github.com/roach88/storesync/internal/model"
	"github.com/roach88/storesync/internal/remote/fake"
	"github.com/roach88/storesync/internal/storage"
)

const site int64 = 1

type env struct {
	p   *storage.Provider
	svc *fake.Service
	d   *dispatch.Dispatcher
	set *Set
}

func newEnv(t *testing.T, opts ...Option) *env {
	t.Helper()
	p, err := storage.Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)

	e := &env{p: p, svc: fake.New(), d: dispatch.New(dispatch.WithStrictRegistration())}
	e.set, err = Open(e.d, e.p, e.svc, opts...)
	require.NoError(t, err)

	t.Cleanup(func() {
		e.set.Close()
		e.set.Wait()
		p.Close()
	})
	return e
}

// completion returns a completion that forwards into a buffered channel.
func completion[T any]() (dispatch.Completion[T], chan dispatch.Result[T]) {
	ch := make(chan dispatch.Result[T], 1)
	return func(r dispatch.Result[T]) { ch <- r }, ch
}

func await[T any](t *testing.T, ch <-chan dispatch.Result[T]) dispatch.Result[T] {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for completion")
		return dispatch.Result[T]{}
	}
}

// run dispatches the action built by mk and waits for its result.
func run[T any](t *testing.T, e *env, mk func(done dispatch.Completion[T]) dispatch.Action) dispatch.Result[T] {
	t.Helper()
	done, ch := completion[T]()
	require.NoError(t, e.d.Dispatch(mk(done)))
	return await(t, ch)
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func order(id int64, status model.OrderStatus) model.Order {
	return model.Order{
		SiteID:   site,
		OrderID:  id,
		Number:   "#" + strconv.FormatInt(id, 10),
		Status:   status,
		Currency: "USD",
		Total:    dec("30.00"),
		Items: []model.OrderItem{
			{ItemID: id*10 + 1, Name: "Poster", Quantity: dec("1"), Total: dec("30.00")},
		},
	}
}

func product(id int64, typ string) model.Product {
	return model.Product{
		SiteID:      site,
		ProductID:   id,
		Name:        "Product " + strconv.FormatInt(id, 10),
		ProductType: typ,
		Status:      model.ProductStatusPublished,
		StockStatus: "instock",
		Price:       dec("9.99"),
	}
}

// syncOrders caches every remote order of the site.
func syncOrders(t *testing.T, e *env) {
	t.Helper()
	r := run(t, e, func(done dispatch.Completion[bool]) dispatch.Action {
		return SynchronizeOrders{Site: site, Page: 1, PageSize: 100, OnComplete: done}
	})
	require.NoError(t, r.Err)
}

func cachedOrders(t *testing.T, e *env) map[int64]string {
	t.Helper()
	out := map[int64]string{}
	require.NoError(t, e.p.View().Read(func(c *storage.Context) error {
		orders, err := storage.FetchAll[*storage.Order](c, storage.Query{SiteID: site})
		for _, o := range orders {
			out[o.OrderID] = o.Status
		}
		return err
	}))
	return out
}

func cachedProductIDs(t *testing.T, e *env) []int64 {
	t.Helper()
	var ids []int64
	require.NoError(t, e.p.View().Read(func(c *storage.Context) error {
		products, err := storage.FetchAll[*storage.Product](c, storage.Query{SiteID: site})
		for _, p := range products {
			ids = append(ids, p.ProductID)
		}
		return err
	}))
	return ids
}

func countRows(t *testing.T, e *env, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, e.p.DB().QueryRow(query, args...).Scan(&n))
	return n
}
