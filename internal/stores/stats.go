package stores

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/storesync/internal/dispatch"
	"github.com/roach88/storesync/internal/model"
	"github.com/roach88/storesync/internal/remote"
	"github.com/roach88/storesync/internal/storage"
	"github.com/roach88/storesync/internal/upsert"
)

type statsAction struct{}

func (statsAction) ActionType() dispatch.ActionType { return StatsActions }

// RetrieveStats fetches the order and visit reports of one period.
type RetrieveStats struct {
	statsAction
	Site        int64             `validate:"gt=0"`
	Granularity model.Granularity `validate:"oneof=hour day week month year"`
	Date        string            `validate:"required"`
	From        string            `validate:"required"`
	To          string            `validate:"required"`
	Quantity    int               `validate:"gte=0"`
	OnComplete  dispatch.Completion[StatsReport]
}

// ResetStoredStats deletes every cached report.
type ResetStoredStats struct {
	statsAction
	OnComplete dispatch.Completion[int]
}

// StatsReport pairs the two reports of one period.
type StatsReport struct {
	Orders model.OrderStats
	Visits model.VisitStats
}

// StatsStore processes StatsActions.
type StatsStore struct {
	*Base
	remote remote.StatsRemote
}

// NewStatsStore creates the stats store and registers it with d.
func NewStatsStore(d *dispatch.Dispatcher, p *storage.Provider, r remote.StatsRemote, opts ...Option) (*StatsStore, error) {
	s := &StatsStore{Base: newBase(d, p, string(StatsActions), opts...), remote: r}
	if err := s.register(s, StatsActions); err != nil {
		return nil, err
	}
	return s, nil
}

// OnAction implements dispatch.Processor.
func (s *StatsStore) OnAction(a dispatch.Action) {
	switch a := a.(type) {
	case RetrieveStats:
		submit(s.Base, "RetrieveStats", scope(a.Site, a.Granularity, a.Date), a, a.OnComplete,
			func(ctx context.Context) (StatsReport, error) { return s.retrieve(ctx, a) })
	case ResetStoredStats:
		submit(s.Base, "ResetStoredStats", "", a, a.OnComplete,
			func(ctx context.Context) (int, error) { return s.reset(ctx) })
	default:
		s.logger.Warn("unhandled action", "action", fmt.Sprintf("%T", a))
	}
}

func (s *StatsStore) retrieve(ctx context.Context, a RetrieveStats) (StatsReport, error) {
	var (
		orders model.OrderStats
		visits model.VisitStats
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		orders, err = s.remote.LoadOrderStats(gctx, a.Site, a.Granularity, a.From, a.To)
		return err
	})
	g.Go(func() error {
		var err error
		visits, err = s.remote.LoadVisitStats(gctx, a.Site, a.Granularity, a.Date, a.Quantity)
		return err
	})
	if err := g.Wait(); err != nil {
		return StatsReport{}, err
	}

	// Both reports are stored under the requested period.
	if orders.Totals.OrdersCount == 0 && orders.Totals.NetRevenue.IsZero() && len(orders.Intervals) > 0 {
		orders.Totals = orders.SumIntervals()
	}
	orders.SiteID, orders.Granularity, orders.Date = a.Site, a.Granularity, a.Date
	visits.SiteID, visits.Granularity, visits.Date = a.Site, a.Granularity, a.Date

	var out StatsReport
	err := s.write(ctx, func(c *storage.Context) error {
		lo, err := upsert.OrderStats(c, orders)
		if err != nil {
			return err
		}
		lv, err := upsert.VisitStats(c, visits)
		if err != nil {
			return err
		}
		if out.Orders, err = upsert.ReadOrderStats(c, lo); err != nil {
			return err
		}
		out.Visits, err = upsert.ReadVisitStats(c, lv)
		return err
	})
	if err != nil {
		return StatsReport{}, fmt.Errorf("store stats: %w", err)
	}
	s.logger.Info("stats retrieved", "site", a.Site, "granularity", string(a.Granularity), "date", a.Date,
		"orders", out.Orders.Totals.OrdersCount, "visitors", out.Visits.TotalVisitors())
	return out, nil
}

func (s *StatsStore) reset(ctx context.Context) (int, error) {
	var n int
	err := s.write(ctx, func(c *storage.Context) error {
		orders, err := deleteAll[*storage.OrderStats](c, storage.Query{AnySite: true})
		if err != nil {
			return err
		}
		visits, err := deleteAll[*storage.VisitStats](c, storage.Query{AnySite: true})
		n = orders + visits
		return err
	})
	return n, err
}
