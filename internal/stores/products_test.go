package stores

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/storesync/internal/dispatch"
	"github.com/roach88/storesync/internal/model"
	"github.com/roach88/storesync/internal/remote"
	"github.com/roach88/storesync/internal/storage"
	"github.com/roach88/storesync/internal/upsert"
)

func syncProducts(t *testing.T, e *env, a SynchronizeProducts) dispatch.Result[bool] {
	t.Helper()
	return run(t, e, func(done dispatch.Completion[bool]) dispatch.Action {
		a.Site, a.OnComplete = site, done
		if a.Page == 0 {
			a.Page = 1
		}
		if a.PageSize == 0 {
			a.PageSize = 25
		}
		return a
	})
}

func TestSynchronizeProducts_RejectedTypeFilterDegrades(t *testing.T) {
	e := newEnv(t)
	e.svc.PutProduct(product(1, "simple"))
	e.svc.PutProduct(product(2, "variable"))
	require.NoError(t, syncProducts(t, e, SynchronizeProducts{}).Err)

	e.svc.Fail("LoadProducts", remote.InvalidParameter("Invalid parameter(s): type"))

	r := syncProducts(t, e, SynchronizeProducts{ProductType: "simple"})
	require.NoError(t, r.Err)
	assert.False(t, r.Value)
	assert.Equal(t, []int64{1, 2}, cachedProductIDs(t, e))

	r = syncProducts(t, e, SynchronizeProducts{})
	require.Error(t, r.Err)
	assert.True(t, remote.IsInvalidParameter(r.Err))
}

func TestSynchronizeProducts_FilterScopesFirstPage(t *testing.T) {
	e := newEnv(t)
	e.svc.PutProduct(product(1, "simple"))
	e.svc.PutProduct(product(2, "variable"))
	e.svc.PutProduct(product(3, "simple"))
	require.NoError(t, syncProducts(t, e, SynchronizeProducts{}).Err)

	e.svc.RemoveProduct(site, 3)
	e.svc.RemoveProduct(site, 2)

	require.NoError(t, syncProducts(t, e, SynchronizeProducts{ProductType: "simple"}).Err)
	assert.Equal(t, []int64{1, 2}, cachedProductIDs(t, e))
}

func TestSynchronizeProducts_ExcludedProductsSurvive(t *testing.T) {
	e := newEnv(t)
	e.svc.PutProduct(product(1, "simple"))
	e.svc.PutProduct(product(2, "simple"))
	require.NoError(t, syncProducts(t, e, SynchronizeProducts{}).Err)

	require.NoError(t, syncProducts(t, e, SynchronizeProducts{ExcludedIDs: []int64{2}}).Err)
	assert.Equal(t, []int64{1, 2}, cachedProductIDs(t, e))
}

func TestSynchronizeProducts_PlaceholdersNotCached(t *testing.T) {
	e := newEnv(t)
	e.svc.PutProduct(product(1, "simple"))
	importing := product(2, "simple")
	importing.Status = model.ProductStatusImporting
	e.svc.PutProduct(importing)

	require.NoError(t, syncProducts(t, e, SynchronizeProducts{}).Err)
	assert.Equal(t, []int64{1}, cachedProductIDs(t, e))
}

func TestSynchronizeProducts_ReimportedProductKeepsCachedRow(t *testing.T) {
	e := newEnv(t)
	e.svc.PutProduct(product(1, "simple"))
	e.svc.PutProduct(product(2, "simple"))
	require.NoError(t, syncProducts(t, e, SynchronizeProducts{}).Err)

	importing := product(2, "simple")
	importing.Status = model.ProductStatusImporting
	importing.Name = "Half imported"
	e.svc.PutProduct(importing)
	require.NoError(t, syncProducts(t, e, SynchronizeProducts{}).Err)

	assert.Equal(t, []int64{1, 2}, cachedProductIDs(t, e))
	require.NoError(t, e.p.View().Read(func(c *storage.Context) error {
		p, ok, err := storage.Find[*storage.Product](c, upsert.ProductKey(site, 2))
		if err != nil || !ok {
			return err
		}
		assert.Equal(t, string(model.ProductStatusPublished), p.Status)
		assert.Equal(t, "Product 2", p.Name)
		return nil
	}))
}

func TestRetrieveProduct_NotFoundDeletes(t *testing.T) {
	e := newEnv(t)
	e.svc.PutProduct(product(1, "simple"))
	e.svc.PutProduct(product(2, "simple"))
	require.NoError(t, syncProducts(t, e, SynchronizeProducts{}).Err)
	e.svc.RemoveProduct(site, 2)

	r := run(t, e, func(done dispatch.Completion[model.Product]) dispatch.Action {
		return RetrieveProduct{Site: site, ProductID: 2, OnComplete: done}
	})
	require.Error(t, r.Err)
	assert.Equal(t, []int64{1}, cachedProductIDs(t, e))
}

func TestRetrieveProducts_Additive(t *testing.T) {
	e := newEnv(t)
	e.svc.PutProduct(product(1, "simple"))
	e.svc.PutProduct(product(2, "simple"))
	e.svc.PutProduct(product(3, "simple"))
	require.NoError(t, syncProducts(t, e, SynchronizeProducts{}).Err)

	r := run(t, e, func(done dispatch.Completion[[]model.Product]) dispatch.Action {
		return RetrieveProducts{Site: site, IDs: []int64{2}, OnComplete: done}
	})
	require.NoError(t, r.Err)
	require.Len(t, r.Value, 1)
	assert.Equal(t, []int64{1, 2, 3}, cachedProductIDs(t, e))
}

func TestSearchProducts_FilterKeysSeparateSets(t *testing.T) {
	e := newEnv(t)
	e.svc.PutProduct(product(1, "simple"))
	e.svc.PutProduct(product(2, "variable"))

	search := func(f remote.ProductFilter) []model.Product {
		r := run(t, e, func(done dispatch.Completion[[]model.Product]) dispatch.Action {
			return SearchProducts{Site: site, Keyword: "product", Filter: f, Page: 1, PageSize: 25, OnComplete: done}
		})
		require.NoError(t, r.Err)
		return r.Value
	}

	assert.Len(t, search(remote.ProductFilter{}), 2)
	assert.Len(t, search(remote.ProductFilter{ProductType: "simple"}), 1)
	assert.Len(t, search(remote.ProductFilter{}), 2)

	assert.Equal(t, 2, countRows(t, e, `SELECT COUNT(*) FROM objects WHERE kind = ?`, string(storage.KindSearchResults)))
	assert.Equal(t, 3, countRows(t, e, `SELECT COUNT(*) FROM links WHERE relation = ?`, string(storage.RelationSearchMembers)))
}

func TestUpdateAndDeleteProduct(t *testing.T) {
	e := newEnv(t)
	e.svc.PutProduct(product(1, "simple"))
	require.NoError(t, syncProducts(t, e, SynchronizeProducts{}).Err)

	edited := product(1, "simple")
	edited.Name = "Renamed"
	r := run(t, e, func(done dispatch.Completion[model.Product]) dispatch.Action {
		return UpdateProduct{Product: edited, OnComplete: done}
	})
	require.NoError(t, r.Err)
	assert.Equal(t, "Renamed", r.Value.Name)

	r = run(t, e, func(done dispatch.Completion[model.Product]) dispatch.Action {
		return DeleteProduct{Site: site, ProductID: 1, OnComplete: done}
	})
	require.NoError(t, r.Err)
	assert.Empty(t, cachedProductIDs(t, e))
}

func TestFilterString_Stable(t *testing.T) {
	a := filterString(remote.ProductFilter{ProductType: "simple", ExcludedIDs: []int64{3, 1}})
	b := filterString(remote.ProductFilter{ExcludedIDs: []int64{1, 3}, ProductType: "simple"})
	assert.Equal(t, a, b)
	assert.Equal(t, "exclude=1&exclude=3&type=simple", a)
	assert.Empty(t, filterString(remote.ProductFilter{}))
}
