package stores

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/storesync/internal/dispatch"
	"github.com/roach88/storesync/internal/model"
	"github.com/roach88/storesync/internal/pagination"
	"github.com/roach88/storesync/internal/remote"
	"github.com/roach88/storesync/internal/storage"
	"github.com/roach88/storesync/internal/upsert"
)

type trackingAction struct{}

func (trackingAction) ActionType() dispatch.ActionType { return ShipmentTrackingActions }

// SynchronizeShipmentTracking replaces the cached tracking of one order.
type SynchronizeShipmentTracking struct {
	trackingAction
	Site       int64 `validate:"gt=0"`
	OrderID    int64 `validate:"gt=0"`
	OnComplete dispatch.Completion[[]model.ShipmentTracking]
}

// AddTracking attaches a tracking record to an order.
type AddTracking struct {
	trackingAction
	Site           int64  `validate:"gt=0"`
	OrderID        int64  `validate:"gt=0"`
	TrackingNumber string `validate:"required"`
	Provider       string `validate:"required"`
	TrackingURL    string `validate:"omitempty,url"`
	DateShipped    *time.Time
	OnComplete     dispatch.Completion[model.ShipmentTracking]
}

// DeleteTracking removes a tracking record from an order.
type DeleteTracking struct {
	trackingAction
	Site       int64  `validate:"gt=0"`
	OrderID    int64  `validate:"gt=0"`
	TrackingID string `validate:"required"`
	OnComplete dispatch.Completion[bool]
}

// ShipmentTrackingStore processes ShipmentTrackingActions.
type ShipmentTrackingStore struct {
	*Base
	remote remote.TrackingRemote
}

// NewShipmentTrackingStore creates the tracking store and registers it
// with d.
func NewShipmentTrackingStore(d *dispatch.Dispatcher, p *storage.Provider, r remote.TrackingRemote, opts ...Option) (*ShipmentTrackingStore, error) {
	s := &ShipmentTrackingStore{Base: newBase(d, p, string(ShipmentTrackingActions), opts...), remote: r}
	if err := s.register(s, ShipmentTrackingActions); err != nil {
		return nil, err
	}
	return s, nil
}

// OnAction implements dispatch.Processor.
func (s *ShipmentTrackingStore) OnAction(a dispatch.Action) {
	switch a := a.(type) {
	case SynchronizeShipmentTracking:
		submit(s.Base, "SynchronizeShipmentTracking", scope(a.Site, a.OrderID), a, a.OnComplete,
			func(ctx context.Context) ([]model.ShipmentTracking, error) { return s.synchronize(ctx, a) })
	case AddTracking:
		submit(s.Base, "AddTracking", scope(a.Site, a.OrderID), a, a.OnComplete,
			func(ctx context.Context) (model.ShipmentTracking, error) { return s.add(ctx, a) })
	case DeleteTracking:
		submit(s.Base, "DeleteTracking", scope(a.Site, a.OrderID, a.TrackingID), a, a.OnComplete,
			func(ctx context.Context) (bool, error) { return s.delete(ctx, a) })
	default:
		s.logger.Warn("unhandled action", "action", fmt.Sprintf("%T", a))
	}
}

func trackingKey(t model.ShipmentTracking) storage.Key {
	return upsert.TrackingKey(t.SiteID, t.OrderID, t.TrackingID)
}

func (s *ShipmentTrackingStore) synchronize(ctx context.Context, a SynchronizeShipmentTracking) ([]model.ShipmentTracking, error) {
	records, err := s.remote.LoadShipmentTrackings(ctx, a.Site, a.OrderID)
	if err != nil {
		return nil, err
	}
	out := make([]model.ShipmentTracking, 0, len(records))
	err = s.write(ctx, func(c *storage.Context) error {
		q := storage.Query{
			SiteID: a.Site,
			Where: storage.Matching(func(t *storage.ShipmentTracking) bool {
				return t.OrderID == a.OrderID
			}),
		}
		if _, err := pagination.ReconcileSyncPage[*storage.ShipmentTracking](c, s.window, s.window.FirstPage,
			q, pagination.Keys(records, trackingKey)); err != nil {
			return err
		}
		for _, t := range records {
			local, err := upsert.ShipmentTracking(c, t)
			if err != nil {
				return err
			}
			out = append(out, upsert.ReadShipmentTracking(local))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("synchronize tracking: %w", err)
	}
	return out, nil
}

func (s *ShipmentTrackingStore) add(ctx context.Context, a AddTracking) (model.ShipmentTracking, error) {
	created, err := s.remote.AddShipmentTracking(ctx, model.ShipmentTracking{
		SiteID:           a.Site,
		OrderID:          a.OrderID,
		TrackingNumber:   a.TrackingNumber,
		TrackingProvider: a.Provider,
		TrackingURL:      a.TrackingURL,
		DateShipped:      a.DateShipped,
	})
	if err != nil {
		return model.ShipmentTracking{}, err
	}
	var out model.ShipmentTracking
	err = s.write(ctx, func(c *storage.Context) error {
		local, err := upsert.ShipmentTracking(c, created)
		if err != nil {
			return err
		}
		out = upsert.ReadShipmentTracking(local)
		return nil
	})
	if err != nil {
		return model.ShipmentTracking{}, fmt.Errorf("add tracking: %w", err)
	}
	return out, nil
}

func (s *ShipmentTrackingStore) delete(ctx context.Context, a DeleteTracking) (bool, error) {
	if err := s.remote.DeleteShipmentTracking(ctx, a.Site, a.OrderID, a.TrackingID); err != nil {
		return false, err
	}
	var deleted bool
	err := s.write(ctx, func(c *storage.Context) error {
		var err error
		deleted, err = deleteKey[*storage.ShipmentTracking](c, upsert.TrackingKey(a.Site, a.OrderID, a.TrackingID))
		return err
	})
	if err != nil {
		return false, fmt.Errorf("delete tracking %s: %w", a.TrackingID, err)
	}
	return deleted, nil
}
