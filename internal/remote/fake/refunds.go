package fake

import (
	"context"
	"time"

	"github.com/roach88/storesync/internal/model"
)

// PutRefund stores a refund as the remote truth.
func (s *Service) PutRefund(r model.Refund) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bucket(s.refunds, r.SiteID)[r.RefundID] = r
}

// RemoveRefund deletes a refund from the remote truth.
func (s *Service) RemoveRefund(siteID, refundID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.refunds[siteID], refundID)
}

func (s *Service) LoadRefunds(ctx context.Context, siteID, orderID int64, page, pageSize int) ([]model.Refund, error) {
	if err := s.enter(ctx, "LoadRefunds"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []model.Refund
	for _, r := range sortedValues(s.refunds[siteID]) {
		if r.OrderID == orderID {
			matched = append(matched, r)
		}
	}
	return paginate(matched, page, pageSize), nil
}

func (s *Service) LoadRefund(ctx context.Context, siteID, orderID, refundID int64) (model.Refund, error) {
	if err := s.enter(ctx, "LoadRefund"); err != nil {
		return model.Refund{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.refunds[siteID][refundID]
	if !ok || r.OrderID != orderID {
		return model.Refund{}, notFound("refund", refundID)
	}
	return r, nil
}

func (s *Service) CreateRefund(ctx context.Context, refund model.Refund) (model.Refund, error) {
	if err := s.enter(ctx, "CreateRefund"); err != nil {
		return model.Refund{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[refund.SiteID][refund.OrderID]; !ok {
		return model.Refund{}, notFound("order", refund.OrderID)
	}
	refund.RefundID = s.newID()
	if refund.DateCreated.IsZero() {
		refund.DateCreated = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	bucket(s.refunds, refund.SiteID)[refund.RefundID] = refund
	return refund, nil
}
