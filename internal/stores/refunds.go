package stores

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/roach88/storesync/internal/dispatch"
	"github.com/roach88/storesync/internal/model"
	"github.com/roach88/storesync/internal/pagination"
	"github.com/roach88/storesync/internal/remote"
	"github.com/roach88/storesync/internal/storage"
	"github.com/roach88/storesync/internal/upsert"
)

type refundsAction struct{}

func (refundsAction) ActionType() dispatch.ActionType { return RefundsActions }

// SynchronizeRefunds fetches one page of an order's refunds. The first
// page only replaces refunds of that order.
type SynchronizeRefunds struct {
	refundsAction
	Site       int64 `validate:"gt=0"`
	OrderID    int64 `validate:"gt=0"`
	Page       int   `validate:"gte=0"`
	PageSize   int   `validate:"gt=0,lte=100"`
	OnComplete dispatch.Completion[bool]
}

// RetrieveRefund fetches a single refund.
type RetrieveRefund struct {
	refundsAction
	Site       int64 `validate:"gt=0"`
	OrderID    int64 `validate:"gt=0"`
	RefundID   int64 `validate:"gt=0"`
	OnComplete dispatch.Completion[model.Refund]
}

// CreateRefund issues a refund against an order. The amount must cover the
// refunded items including tax.
type CreateRefund struct {
	refundsAction
	Site            int64           `validate:"gt=0"`
	OrderID         int64           `validate:"gt=0"`
	Amount          decimal.Decimal `validate:"gt=0"`
	Reason          string
	AutomatedRefund bool
	Items           []model.RefundItem
	OnComplete      dispatch.Completion[model.Refund]
}

func validateCreateRefund(sl validator.StructLevel) {
	a := sl.Current().Interface().(CreateRefund)
	items := model.Refund{Items: a.Items}.ItemsTotal()
	if a.Amount.LessThan(items) {
		sl.ReportError(a.Amount, "Amount", "Amount", "covers_items", items.String())
	}
}

// ResetStoredRefunds deletes every cached refund.
type ResetStoredRefunds struct {
	refundsAction
	OnComplete dispatch.Completion[int]
}

// RefundStore processes RefundsActions.
type RefundStore struct {
	*Base
	remote remote.RefundsRemote
}

// NewRefundStore creates the refund store and registers it with d.
func NewRefundStore(d *dispatch.Dispatcher, p *storage.Provider, r remote.RefundsRemote, opts ...Option) (*RefundStore, error) {
	s := &RefundStore{Base: newBase(d, p, string(RefundsActions), opts...), remote: r}
	if err := s.register(s, RefundsActions); err != nil {
		return nil, err
	}
	return s, nil
}

// OnAction implements dispatch.Processor.
func (s *RefundStore) OnAction(a dispatch.Action) {
	switch a := a.(type) {
	case SynchronizeRefunds:
		submit(s.Base, "SynchronizeRefunds", scope(a.Site, a.OrderID, a.Page), a, a.OnComplete,
			func(ctx context.Context) (bool, error) { return s.synchronize(ctx, a) })
	case RetrieveRefund:
		submit(s.Base, "RetrieveRefund", scope(a.Site, a.RefundID), a, a.OnComplete,
			func(ctx context.Context) (model.Refund, error) { return s.retrieve(ctx, a) })
	case CreateRefund:
		submit(s.Base, "CreateRefund", scope(a.Site, a.OrderID), a, a.OnComplete,
			func(ctx context.Context) (model.Refund, error) { return s.create(ctx, a) })
	case ResetStoredRefunds:
		submit(s.Base, "ResetStoredRefunds", "", a, a.OnComplete,
			func(ctx context.Context) (int, error) { return s.reset(ctx) })
	default:
		s.logger.Warn("unhandled action", "action", fmt.Sprintf("%T", a))
	}
}

func refundKey(r model.Refund) storage.Key { return upsert.RefundKey(r.SiteID, r.RefundID) }

func (s *RefundStore) synchronize(ctx context.Context, a SynchronizeRefunds) (bool, error) {
	refunds, err := s.remote.LoadRefunds(ctx, a.Site, a.OrderID, a.Page, a.PageSize)
	if err != nil {
		return false, err
	}

	err = s.write(ctx, func(c *storage.Context) error {
		q := storage.Query{
			SiteID: a.Site,
			Where:  storage.Matching(func(r *storage.Refund) bool { return r.OrderID == a.OrderID }),
		}
		if _, err := pagination.ReconcileSyncPage[*storage.Refund](c, s.window, a.Page, q,
			pagination.Keys(refunds, refundKey)); err != nil {
			return err
		}
		for _, r := range refunds {
			if _, err := upsert.Refund(c, r); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("synchronize refunds: %w", err)
	}

	s.logger.Info("refunds synced", "site", a.Site, "order", a.OrderID, "page", a.Page, "count", len(refunds))
	return s.window.HasNextPage(len(refunds), a.PageSize), nil
}

func (s *RefundStore) retrieve(ctx context.Context, a RetrieveRefund) (model.Refund, error) {
	r, err := s.remote.LoadRefund(ctx, a.Site, a.OrderID, a.RefundID)
	if err != nil {
		werr := s.apply(func(c *storage.Context) error {
			_, err2 := pagination.DeleteOnNotFound[*storage.Refund](c, upsert.RefundKey(a.Site, a.RefundID), err)
			return err2
		})
		if werr != nil {
			s.logger.Error("delete missing refund failed", "site", a.Site, "refund", a.RefundID, "error", werr)
		}
		return model.Refund{}, err
	}
	return s.merge(ctx, r)
}

func (s *RefundStore) merge(ctx context.Context, r model.Refund) (model.Refund, error) {
	var out model.Refund
	err := s.write(ctx, func(c *storage.Context) error {
		local, err := upsert.Refund(c, r)
		if err != nil {
			return err
		}
		out, err = upsert.ReadRefund(c, local)
		return err
	})
	if err != nil {
		return model.Refund{}, fmt.Errorf("store refund %d: %w", r.RefundID, err)
	}
	return out, nil
}

func (s *RefundStore) create(ctx context.Context, a CreateRefund) (model.Refund, error) {
	created, err := s.remote.CreateRefund(ctx, model.Refund{
		SiteID:          a.Site,
		OrderID:         a.OrderID,
		DateCreated:     s.now().UTC(),
		Amount:          a.Amount,
		Reason:          a.Reason,
		CreateAutomated: a.AutomatedRefund,
		Items:           a.Items,
	})
	if err != nil {
		return model.Refund{}, err
	}
	s.logger.Info("refund created", "site", a.Site, "order", a.OrderID, "refund", created.RefundID, "amount", created.Amount.String())
	return s.merge(ctx, created)
}

func (s *RefundStore) reset(ctx context.Context) (int, error) {
	var n int
	err := s.write(ctx, func(c *storage.Context) error {
		var err error
		n, err = deleteAll[*storage.Refund](c, storage.Query{AnySite: true})
		return err
	})
	return n, err
}
