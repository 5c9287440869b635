package stores

import (
	"context"
	"fmt"
	"slices"

	"github.com/roach88/storesync/internal/dispatch"
	"github.com/roach88/storesync/internal/model"
	"github.com/roach88/storesync/internal/pagination"
	"github.com/roach88/storesync/internal/remote"
	"github.com/roach88/storesync/internal/searchset"
	"github.com/roach88/storesync/internal/storage"
	"github.com/roach88/storesync/internal/upsert"
)

type ordersAction struct{}

func (ordersAction) ActionType() dispatch.ActionType { return OrdersActions }

// SynchronizeOrders fetches one page of orders, optionally filtered by
// status. Completes with whether another page may follow.
type SynchronizeOrders struct {
	ordersAction
	Site       int64               `validate:"gt=0"`
	Statuses   []model.OrderStatus `validate:"dive,required"`
	Page       int                 `validate:"gte=0"`
	PageSize   int                 `validate:"gt=0,lte=100"`
	OnComplete dispatch.Completion[bool]
}

// RetrieveOrder fetches a single order.
type RetrieveOrder struct {
	ordersAction
	Site       int64 `validate:"gt=0"`
	OrderID    int64 `validate:"gt=0"`
	OnComplete dispatch.Completion[model.Order]
}

// SearchOrders runs a keyword search and records its results.
type SearchOrders struct {
	ordersAction
	Site       int64  `validate:"gt=0"`
	Keyword    string `validate:"required"`
	Page       int    `validate:"gte=0"`
	PageSize   int    `validate:"gt=0,lte=100"`
	OnComplete dispatch.Completion[[]model.Order]
}

// UpdateOrderStatus changes an order's status. The cached order shows the
// new status while the request is in flight and reverts when it fails.
type UpdateOrderStatus struct {
	ordersAction
	Site       int64             `validate:"gt=0"`
	OrderID    int64             `validate:"gt=0"`
	Status     model.OrderStatus `validate:"required"`
	OnComplete dispatch.Completion[model.Order]
}

// UpdateOrder sends an edited order.
type UpdateOrder struct {
	ordersAction
	Site       int64 `validate:"gt=0"`
	Order      model.Order
	OnComplete dispatch.Completion[model.Order]
}

// CountOrders counts cached orders of a site, optionally with one status.
type CountOrders struct {
	ordersAction
	Site       int64 `validate:"gt=0"`
	Status     model.OrderStatus
	OnComplete dispatch.Completion[int]
}

// ResetStoredOrders deletes every cached order and order search.
type ResetStoredOrders struct {
	ordersAction
	OnComplete dispatch.Completion[int]
}

// OrderStore processes OrdersActions.
type OrderStore struct {
	*Base
	remote remote.OrdersRemote
}

// NewOrderStore creates the order store and registers it with d.
func NewOrderStore(d *dispatch.Dispatcher, p *storage.Provider, r remote.OrdersRemote, opts ...Option) (*OrderStore, error) {
	s := &OrderStore{Base: newBase(d, p, string(OrdersActions), opts...), remote: r}
	if err := s.register(s, OrdersActions); err != nil {
		return nil, err
	}
	return s, nil
}

// OnAction implements dispatch.Processor.
func (s *OrderStore) OnAction(a dispatch.Action) {
	switch a := a.(type) {
	case SynchronizeOrders:
		submit(s.Base, "SynchronizeOrders", scope(a.Site, a.Statuses, a.Page), a, a.OnComplete,
			func(ctx context.Context) (bool, error) { return s.synchronize(ctx, a) })
	case RetrieveOrder:
		submit(s.Base, "RetrieveOrder", scope(a.Site, a.OrderID), a, a.OnComplete,
			func(ctx context.Context) (model.Order, error) { return s.retrieve(ctx, a) })
	case SearchOrders:
		submit(s.Base, "SearchOrders", scope(a.Site, a.Keyword, a.Page), a, a.OnComplete,
			func(ctx context.Context) ([]model.Order, error) { return s.search(ctx, a) })
	case UpdateOrderStatus:
		submit(s.Base, "UpdateOrderStatus", scope(a.Site, a.OrderID), a, a.OnComplete,
			func(ctx context.Context) (model.Order, error) { return s.updateStatus(ctx, a) })
	case UpdateOrder:
		submit(s.Base, "UpdateOrder", scope(a.Site, a.Order.OrderID), a, a.OnComplete,
			func(ctx context.Context) (model.Order, error) { return s.update(ctx, a) })
	case CountOrders:
		submit(s.Base, "CountOrders", scope(a.Site, a.Status), a, a.OnComplete,
			func(context.Context) (int, error) { return s.count(a) })
	case ResetStoredOrders:
		submit(s.Base, "ResetStoredOrders", "", a, a.OnComplete,
			func(ctx context.Context) (int, error) { return s.reset(ctx) })
	default:
		s.logger.Warn("unhandled action", "action", fmt.Sprintf("%T", a))
	}
}

func orderStatusIn(statuses []string) func(storage.Entity) bool {
	if len(statuses) == 0 {
		return nil
	}
	return storage.Matching(func(o *storage.Order) bool {
		return slices.Contains(statuses, o.Status)
	})
}

func orderKey(o model.Order) storage.Key { return upsert.OrderKey(o.SiteID, o.OrderID) }

func (s *OrderStore) synchronize(ctx context.Context, a SynchronizeOrders) (bool, error) {
	statuses := make([]string, len(a.Statuses))
	for i, st := range a.Statuses {
		statuses[i] = string(st)
	}

	orders, err := s.remote.LoadOrders(ctx, a.Site, statuses, a.Page, a.PageSize)
	if err != nil {
		return false, err
	}

	var deleted int
	err = s.write(ctx, func(c *storage.Context) error {
		q := storage.Query{SiteID: a.Site, Where: orderStatusIn(statuses)}
		var err error
		deleted, err = pagination.ReconcileSyncPage[*storage.Order](c, s.window, a.Page, q,
			pagination.Keys(orders, orderKey))
		if err != nil {
			return err
		}
		_, err = upsert.Orders(c, orders)
		return err
	})
	if err != nil {
		return false, fmt.Errorf("synchronize orders: %w", err)
	}

	s.logger.Info("orders synced", "site", a.Site, "page", a.Page, "count", len(orders), "deleted", deleted)
	return s.window.HasNextPage(len(orders), a.PageSize), nil
}

func (s *OrderStore) retrieve(ctx context.Context, a RetrieveOrder) (model.Order, error) {
	o, err := s.remote.LoadOrder(ctx, a.Site, a.OrderID)
	if err != nil {
		werr := s.apply(func(c *storage.Context) error {
			deleted, err2 := pagination.DeleteOnNotFound[*storage.Order](c, upsert.OrderKey(a.Site, a.OrderID), err)
			if deleted {
				s.logger.Info("order gone remotely, deleted", "site", a.Site, "order", a.OrderID)
			}
			return err2
		})
		if werr != nil {
			s.logger.Error("delete missing order failed", "site", a.Site, "order", a.OrderID, "error", werr)
		}
		return model.Order{}, err
	}
	return s.merge(ctx, o)
}

// merge upserts o and returns its stored form.
func (s *OrderStore) merge(ctx context.Context, o model.Order) (model.Order, error) {
	var out model.Order
	err := s.write(ctx, func(c *storage.Context) error {
		local, err := upsert.Order(c, o)
		if err != nil {
			return err
		}
		out, err = upsert.ReadOrder(c, local)
		return err
	})
	if err != nil {
		return model.Order{}, fmt.Errorf("store order %d: %w", o.OrderID, err)
	}
	return out, nil
}

func (s *OrderStore) search(ctx context.Context, a SearchOrders) ([]model.Order, error) {
	orders, err := s.remote.SearchOrders(ctx, a.Site, a.Keyword, a.Page, a.PageSize)
	if err != nil {
		return nil, err
	}

	var out []model.Order
	err = s.write(ctx, func(c *storage.Context) error {
		locals, err := upsert.Orders(c, orders)
		if err != nil {
			return err
		}
		members := make([]storage.Entity, len(locals))
		for i, o := range locals {
			members[i] = o
		}
		key := searchset.Key{SiteID: a.Site, Target: storage.KindOrder, Keyword: a.Keyword}
		mode := searchset.ModeForPage(s.window.IsFirstPage(a.Page))
		if _, err := searchset.Record(c, key, members, mode); err != nil {
			return err
		}
		out, err = upsert.ReadOrders(c, locals)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("search orders: %w", err)
	}
	return out, nil
}

func (s *OrderStore) updateStatus(ctx context.Context, a UpdateOrderStatus) (model.Order, error) {
	key := upsert.OrderKey(a.Site, a.OrderID)

	var (
		snapshot model.Order
		cached   bool
	)
	err := s.apply(func(c *storage.Context) error {
		local, ok, err := storage.Find[*storage.Order](c, key)
		if err != nil || !ok {
			return err
		}
		if snapshot, err = upsert.ReadOrder(c, local); err != nil {
			return err
		}
		cached = true
		optimistic := snapshot
		optimistic.Status = a.Status
		_, err = upsert.Order(c, optimistic)
		return err
	})
	if err != nil {
		return model.Order{}, fmt.Errorf("update order status: %w", err)
	}

	updated, err := s.remote.UpdateOrderStatus(ctx, a.Site, a.OrderID, a.Status)
	if err != nil {
		if cached {
			if _, rerr := s.merge(ctx, snapshot); rerr != nil {
				s.logger.Error("revert order status failed", "site", a.Site, "order", a.OrderID, "error", rerr)
			} else {
				s.logger.Info("order status reverted", "site", a.Site, "order", a.OrderID, "status", snapshot.Status)
			}
		}
		return model.Order{}, err
	}
	return s.merge(ctx, updated)
}

func (s *OrderStore) update(ctx context.Context, a UpdateOrder) (model.Order, error) {
	order := a.Order
	order.SiteID = a.Site
	updated, err := s.remote.UpdateOrder(ctx, order)
	if err != nil {
		return model.Order{}, err
	}
	return s.merge(ctx, updated)
}

func (s *OrderStore) count(a CountOrders) (int, error) {
	q := storage.Query{SiteID: a.Site}
	if a.Status != "" {
		q.Where = orderStatusIn([]string{string(a.Status)})
	}
	return storage.Count[*storage.Order](s.provider.View(), q)
}

func (s *OrderStore) reset(ctx context.Context) (int, error) {
	var n int
	err := s.write(ctx, func(c *storage.Context) error {
		var err error
		if n, err = deleteAll[*storage.Order](c, storage.Query{AnySite: true}); err != nil {
			return err
		}
		_, err = deleteSearches(c, storage.KindOrder)
		return err
	})
	return n, err
}
