package fake

import (
	"context"
	"slices"

	"github.com/roach88/storesync/internal/model"
)

// PutOrder stores an order as the remote truth.
func (s *Service) PutOrder(o model.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bucket(s.orders, o.SiteID)[o.OrderID] = o
}

// RemoveOrder deletes an order from the remote truth.
func (s *Service) RemoveOrder(siteID, orderID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.orders[siteID], orderID)
}

// Order returns the remote truth for an order.
func (s *Service) Order(siteID, orderID int64) (model.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[siteID][orderID]
	return o, ok
}

func (s *Service) LoadOrders(ctx context.Context, siteID int64, statuses []string, page, pageSize int) ([]model.Order, error) {
	if err := s.enter(ctx, "LoadOrders"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []model.Order
	for _, o := range sortedValues(s.orders[siteID]) {
		if len(statuses) == 0 || slices.Contains(statuses, string(o.Status)) {
			matched = append(matched, o)
		}
	}
	return paginate(matched, page, pageSize), nil
}

func (s *Service) LoadOrder(ctx context.Context, siteID, orderID int64) (model.Order, error) {
	if err := s.enter(ctx, "LoadOrder"); err != nil {
		return model.Order{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[siteID][orderID]
	if !ok {
		return model.Order{}, notFound("order", orderID)
	}
	return o, nil
}

func (s *Service) SearchOrders(ctx context.Context, siteID int64, keyword string, page, pageSize int) ([]model.Order, error) {
	if err := s.enter(ctx, "SearchOrders"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []model.Order
	for _, o := range sortedValues(s.orders[siteID]) {
		if orderMatches(o, keyword) {
			matched = append(matched, o)
		}
	}
	return paginate(matched, page, pageSize), nil
}

func orderMatches(o model.Order, keyword string) bool {
	if containsFold(o.Number, keyword) || containsFold(o.CustomerNote, keyword) {
		return true
	}
	if o.Billing != nil && (containsFold(o.Billing.FirstName, keyword) ||
		containsFold(o.Billing.LastName, keyword) || containsFold(o.Billing.Email, keyword)) {
		return true
	}
	for _, it := range o.Items {
		if containsFold(it.Name, keyword) {
			return true
		}
	}
	return false
}

func (s *Service) UpdateOrderStatus(ctx context.Context, siteID, orderID int64, status model.OrderStatus) (model.Order, error) {
	if err := s.enter(ctx, "UpdateOrderStatus"); err != nil {
		return model.Order{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[siteID][orderID]
	if !ok {
		return model.Order{}, notFound("order", orderID)
	}
	o.Status = status
	s.orders[siteID][orderID] = o
	return o, nil
}

func (s *Service) UpdateOrder(ctx context.Context, order model.Order) (model.Order, error) {
	if err := s.enter(ctx, "UpdateOrder"); err != nil {
		return model.Order{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[order.SiteID][order.OrderID]; !ok {
		return model.Order{}, notFound("order", order.OrderID)
	}
	s.orders[order.SiteID][order.OrderID] = order
	return order, nil
}
