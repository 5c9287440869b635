package stores

import (
	"context"
	"fmt"
	"net/url"
	"slices"
	"strconv"

	"github.com/roach88/storesync/internal/dispatch"
	"github.com/roach88/storesync/internal/model"
	"github.com/roach88/storesync/internal/pagination"
	"github.com/roach88/storesync/internal/remote"
	"github.com/roach88/storesync/internal/searchset"
	"github.com/roach88/storesync/internal/storage"
	"github.com/roach88/storesync/internal/upsert"
)

type productsAction struct{}

func (productsAction) ActionType() dispatch.ActionType { return ProductsActions }

// SynchronizeProducts fetches one page of products matching the filters.
// Completes with whether another page may follow.
type SynchronizeProducts struct {
	productsAction
	Site          int64 `validate:"gt=0"`
	Page          int   `validate:"gte=0"`
	PageSize      int   `validate:"gt=0,lte=100"`
	StockStatus   string
	ProductStatus model.ProductStatus
	ProductType   string
	ExcludedIDs   []int64 `validate:"dive,gt=0"`
	OnComplete    dispatch.Completion[bool]
}

func (a SynchronizeProducts) filter() remote.ProductFilter {
	return remote.ProductFilter{
		StockStatus:   a.StockStatus,
		ProductStatus: a.ProductStatus,
		ProductType:   a.ProductType,
		ExcludedIDs:   a.ExcludedIDs,
	}
}

// RetrieveProduct fetches a single product.
type RetrieveProduct struct {
	productsAction
	Site       int64 `validate:"gt=0"`
	ProductID  int64 `validate:"gt=0"`
	OnComplete dispatch.Completion[model.Product]
}

// RetrieveProducts fetches products by ID. Cached products missing from
// the response are kept.
type RetrieveProducts struct {
	productsAction
	Site       int64   `validate:"gt=0"`
	IDs        []int64 `validate:"min=1,dive,gt=0"`
	OnComplete dispatch.Completion[[]model.Product]
}

// SearchProducts runs a keyword search and records its results.
type SearchProducts struct {
	productsAction
	Site       int64  `validate:"gt=0"`
	Keyword    string `validate:"required"`
	Filter     remote.ProductFilter
	Page       int `validate:"gte=0"`
	PageSize   int `validate:"gt=0,lte=100"`
	OnComplete dispatch.Completion[[]model.Product]
}

// UpdateProduct sends an edited product.
type UpdateProduct struct {
	productsAction
	Product    model.Product
	OnComplete dispatch.Completion[model.Product]
}

// DeleteProduct deletes a product remotely and from the cache.
type DeleteProduct struct {
	productsAction
	Site       int64 `validate:"gt=0"`
	ProductID  int64 `validate:"gt=0"`
	OnComplete dispatch.Completion[model.Product]
}

// ResetStoredProducts deletes every cached product and product search.
type ResetStoredProducts struct {
	productsAction
	OnComplete dispatch.Completion[int]
}

// ProductStore processes ProductsActions.
type ProductStore struct {
	*Base
	remote remote.ProductsRemote
}

// NewProductStore creates the product store and registers it with d.
func NewProductStore(d *dispatch.Dispatcher, p *storage.Provider, r remote.ProductsRemote, opts ...Option) (*ProductStore, error) {
	s := &ProductStore{Base: newBase(d, p, string(ProductsActions), opts...), remote: r}
	if err := s.register(s, ProductsActions); err != nil {
		return nil, err
	}
	return s, nil
}

// OnAction implements dispatch.Processor.
func (s *ProductStore) OnAction(a dispatch.Action) {
	switch a := a.(type) {
	case SynchronizeProducts:
		submit(s.Base, "SynchronizeProducts", scope(a.Site, filterString(a.filter()), a.Page), a, a.OnComplete,
			func(ctx context.Context) (bool, error) { return s.synchronize(ctx, a) })
	case RetrieveProduct:
		submit(s.Base, "RetrieveProduct", scope(a.Site, a.ProductID), a, a.OnComplete,
			func(ctx context.Context) (model.Product, error) { return s.retrieve(ctx, a) })
	case RetrieveProducts:
		submit(s.Base, "RetrieveProducts", scope(a.Site, a.IDs), a, a.OnComplete,
			func(ctx context.Context) ([]model.Product, error) { return s.retrieveByID(ctx, a) })
	case SearchProducts:
		submit(s.Base, "SearchProducts", scope(a.Site, a.Keyword, filterString(a.Filter), a.Page), a, a.OnComplete,
			func(ctx context.Context) ([]model.Product, error) { return s.search(ctx, a) })
	case UpdateProduct:
		submit(s.Base, "UpdateProduct", scope(a.Product.SiteID, a.Product.ProductID), a, a.OnComplete,
			func(ctx context.Context) (model.Product, error) { return s.update(ctx, a) })
	case DeleteProduct:
		submit(s.Base, "DeleteProduct", scope(a.Site, a.ProductID), a, a.OnComplete,
			func(ctx context.Context) (model.Product, error) { return s.delete(ctx, a) })
	case ResetStoredProducts:
		submit(s.Base, "ResetStoredProducts", "", a, a.OnComplete,
			func(ctx context.Context) (int, error) { return s.reset(ctx) })
	default:
		s.logger.Warn("unhandled action", "action", fmt.Sprintf("%T", a))
	}
}

// filterString encodes f as a stable query string, used to key searches.
func filterString(f remote.ProductFilter) string {
	v := url.Values{}
	if f.StockStatus != "" {
		v.Set("stock_status", f.StockStatus)
	}
	if f.ProductStatus != "" {
		v.Set("status", string(f.ProductStatus))
	}
	if f.ProductType != "" {
		v.Set("type", f.ProductType)
	}
	ids := slices.Sorted(slices.Values(f.ExcludedIDs))
	for _, id := range ids {
		v.Add("exclude", strconv.FormatInt(id, 10))
	}
	return v.Encode()
}

// productInFilter selects the cached products a filtered list covers.
// Excluded products are outside the list and are never reconciled by it.
func productInFilter(f remote.ProductFilter) func(storage.Entity) bool {
	if f.IsZero() {
		return nil
	}
	return storage.Matching(func(p *storage.Product) bool {
		switch {
		case f.StockStatus != "" && p.StockStatus != f.StockStatus:
			return false
		case f.ProductStatus != "" && p.Status != string(f.ProductStatus):
			return false
		case f.ProductType != "" && p.ProductType != f.ProductType:
			return false
		}
		return !slices.Contains(f.ExcludedIDs, p.ProductID)
	})
}

// pageKeys lists the keys of every product on a page. Placeholders are
// never written but still count as present, so a cached row that is
// being re-imported keeps its last known state.
func pageKeys(products []model.Product) []storage.Key {
	keys := make([]storage.Key, len(products))
	for i, p := range products {
		keys[i] = upsert.ProductKey(p.SiteID, p.ProductID)
	}
	return keys
}

func (s *ProductStore) synchronize(ctx context.Context, a SynchronizeProducts) (bool, error) {
	filter := a.filter()
	products, err := s.remote.LoadProducts(ctx, a.Site, a.Page, a.PageSize, filter)
	if err != nil {
		// Sites running an older API reject the type filter. The list is
		// treated as exhausted and the cache is left alone.
		if filter.ProductType != "" && remote.IsInvalidParameter(err) {
			s.logger.Warn("product type filter rejected, sync skipped",
				"site", a.Site, "type", filter.ProductType, "error", err)
			return false, nil
		}
		return false, err
	}

	var deleted int
	err = s.write(ctx, func(c *storage.Context) error {
		q := storage.Query{SiteID: a.Site, Where: productInFilter(filter)}
		var err error
		deleted, err = pagination.ReconcileSyncPage[*storage.Product](c, s.window, a.Page, q, pageKeys(products))
		if err != nil {
			return err
		}
		_, err = upsert.Products(c, products)
		return err
	})
	if err != nil {
		return false, fmt.Errorf("synchronize products: %w", err)
	}

	s.logger.Info("products synced", "site", a.Site, "page", a.Page, "count", len(products), "deleted", deleted)
	return s.window.HasNextPage(len(products), a.PageSize), nil
}

func (s *ProductStore) retrieve(ctx context.Context, a RetrieveProduct) (model.Product, error) {
	p, err := s.remote.LoadProduct(ctx, a.Site, a.ProductID)
	if err != nil {
		werr := s.apply(func(c *storage.Context) error {
			_, err2 := pagination.DeleteOnNotFound[*storage.Product](c, upsert.ProductKey(a.Site, a.ProductID), err)
			return err2
		})
		if werr != nil {
			s.logger.Error("delete missing product failed", "site", a.Site, "product", a.ProductID, "error", werr)
		}
		return model.Product{}, err
	}
	return s.merge(ctx, p)
}

// merge upserts p and returns its stored form. Placeholders are returned
// as received and not cached.
func (s *ProductStore) merge(ctx context.Context, p model.Product) (model.Product, error) {
	out := p
	err := s.write(ctx, func(c *storage.Context) error {
		local, err := upsert.Product(c, p)
		if err != nil || local == nil {
			return err
		}
		out, err = upsert.ReadProduct(c, local)
		return err
	})
	if err != nil {
		return model.Product{}, fmt.Errorf("store product %d: %w", p.ProductID, err)
	}
	return out, nil
}

func (s *ProductStore) retrieveByID(ctx context.Context, a RetrieveProducts) ([]model.Product, error) {
	products, err := s.remote.LoadProductsByID(ctx, a.Site, a.IDs)
	if err != nil {
		return nil, err
	}
	var out []model.Product
	err = s.write(ctx, func(c *storage.Context) error {
		locals, err := upsert.Products(c, products)
		if err != nil {
			return err
		}
		out, err = upsert.ReadProducts(c, locals)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("retrieve products: %w", err)
	}
	return out, nil
}

func (s *ProductStore) search(ctx context.Context, a SearchProducts) ([]model.Product, error) {
	products, err := s.remote.SearchProducts(ctx, a.Site, a.Keyword, a.Page, a.PageSize, a.Filter)
	if err != nil {
		return nil, err
	}

	var out []model.Product
	err = s.write(ctx, func(c *storage.Context) error {
		locals, err := upsert.Products(c, products)
		if err != nil {
			return err
		}
		members := make([]storage.Entity, len(locals))
		for i, p := range locals {
			members[i] = p
		}
		key := searchset.Key{
			SiteID:  a.Site,
			Target:  storage.KindProduct,
			Keyword: a.Keyword,
			Filter:  filterString(a.Filter),
		}
		if _, err := searchset.Record(c, key, members, searchset.ModeForPage(s.window.IsFirstPage(a.Page))); err != nil {
			return err
		}
		out, err = upsert.ReadProducts(c, locals)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	return out, nil
}

func (s *ProductStore) update(ctx context.Context, a UpdateProduct) (model.Product, error) {
	if a.Product.SiteID <= 0 || a.Product.ProductID <= 0 {
		return model.Product{}, &ValidationError{Op: "UpdateProduct", Err: fmt.Errorf("product needs site and product IDs")}
	}
	updated, err := s.remote.UpdateProduct(ctx, a.Product)
	if err != nil {
		return model.Product{}, err
	}
	return s.merge(ctx, updated)
}

func (s *ProductStore) delete(ctx context.Context, a DeleteProduct) (model.Product, error) {
	deleted, err := s.remote.DeleteProduct(ctx, a.Site, a.ProductID)
	if err != nil && !remote.IsResourceNotFound(err) {
		return model.Product{}, err
	}
	werr := s.apply(func(c *storage.Context) error {
		_, err := deleteKey[*storage.Product](c, upsert.ProductKey(a.Site, a.ProductID))
		return err
	})
	if werr != nil {
		return model.Product{}, fmt.Errorf("delete product %d: %w", a.ProductID, werr)
	}
	return deleted, err
}

func (s *ProductStore) reset(ctx context.Context) (int, error) {
	var n int
	err := s.write(ctx, func(c *storage.Context) error {
		var err error
		if n, err = deleteAll[*storage.Product](c, storage.Query{AnySite: true}); err != nil {
			return err
		}
		_, err = deleteSearches(c, storage.KindProduct)
		return err
	})
	return n, err
}
