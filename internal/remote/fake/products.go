package fake

import (
	"context"
	"slices"

	"github.com/roach88/storesync/internal/model"
	"github.com/roach88/storesync/internal/remote"
)

// PutProduct stores a product as the remote truth.
func (s *Service) PutProduct(p model.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bucket(s.products, p.SiteID)[p.ProductID] = p
}

// RemoveProduct deletes a product from the remote truth.
func (s *Service) RemoveProduct(siteID, productID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.products[siteID], productID)
}

func productMatches(p model.Product, f remote.ProductFilter) bool {
	if f.StockStatus != "" && p.StockStatus != f.StockStatus {
		return false
	}
	if f.ProductStatus != "" && p.Status != f.ProductStatus {
		return false
	}
	if f.ProductType != "" && p.ProductType != f.ProductType {
		return false
	}
	return !slices.Contains(f.ExcludedIDs, p.ProductID)
}

func (s *Service) LoadProducts(ctx context.Context, siteID int64, page, pageSize int, filter remote.ProductFilter) ([]model.Product, error) {
	if err := s.enter(ctx, "LoadProducts"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []model.Product
	for _, p := range sortedValues(s.products[siteID]) {
		if productMatches(p, filter) {
			matched = append(matched, p)
		}
	}
	return paginate(matched, page, pageSize), nil
}

func (s *Service) LoadProduct(ctx context.Context, siteID, productID int64) (model.Product, error) {
	if err := s.enter(ctx, "LoadProduct"); err != nil {
		return model.Product{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[siteID][productID]
	if !ok {
		return model.Product{}, notFound("product", productID)
	}
	return p, nil
}

func (s *Service) LoadProductsByID(ctx context.Context, siteID int64, ids []int64) ([]model.Product, error) {
	if err := s.enter(ctx, "LoadProductsByID"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.Product
	for _, id := range ids {
		if p, ok := s.products[siteID][id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Service) SearchProducts(ctx context.Context, siteID int64, keyword string, page, pageSize int, filter remote.ProductFilter) ([]model.Product, error) {
	if err := s.enter(ctx, "SearchProducts"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []model.Product
	for _, p := range sortedValues(s.products[siteID]) {
		if !productMatches(p, filter) {
			continue
		}
		if containsFold(p.Name, keyword) || containsFold(p.SKU, keyword) {
			matched = append(matched, p)
		}
	}
	return paginate(matched, page, pageSize), nil
}

func (s *Service) UpdateProduct(ctx context.Context, product model.Product) (model.Product, error) {
	if err := s.enter(ctx, "UpdateProduct"); err != nil {
		return model.Product{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[product.SiteID][product.ProductID]; !ok {
		return model.Product{}, notFound("product", product.ProductID)
	}
	s.products[product.SiteID][product.ProductID] = product
	return product, nil
}

func (s *Service) DeleteProduct(ctx context.Context, siteID, productID int64) (model.Product, error) {
	if err := s.enter(ctx, "DeleteProduct"); err != nil {
		return model.Product{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[siteID][productID]
	if !ok {
		return model.Product{}, notFound("product", productID)
	}
	delete(s.products[siteID], productID)
	return p, nil
}
