package stores

import (
	"github.com/roach88/storesync/internal/dispatch"
	"github.com/roach88/storesync/internal/remote"
	"github.com/roach88/storesync/internal/storage"
)

// Set is every store wired to one dispatcher, provider and remote service.
type Set struct {
	Orders            *OrderStore
	Products          *ProductStore
	Refunds           *RefundStore
	ProductTags       *ProductTagStore
	ProductAttributes *ProductAttributeStore
	ShippingClasses   *ShippingClassStore
	ShipmentTracking  *ShipmentTrackingStore
	Settings          *SettingStore
	Stats             *StatsStore
}

// Open creates every store and registers them with d. On error the stores
// created so far are closed.
func Open(d *dispatch.Dispatcher, p *storage.Provider, svc remote.Service, opts ...Option) (*Set, error) {
	set := &Set{}
	var err error
	steps := []func() error{
		func() error { set.Orders, err = NewOrderStore(d, p, svc, opts...); return err },
		func() error { set.Products, err = NewProductStore(d, p, svc, opts...); return err },
		func() error { set.Refunds, err = NewRefundStore(d, p, svc, opts...); return err },
		func() error { set.ProductTags, err = NewProductTagStore(d, p, svc, opts...); return err },
		func() error { set.ProductAttributes, err = NewProductAttributeStore(d, p, svc, opts...); return err },
		func() error { set.ShippingClasses, err = NewShippingClassStore(d, p, svc, opts...); return err },
		func() error { set.ShipmentTracking, err = NewShipmentTrackingStore(d, p, svc, opts...); return err },
		func() error { set.Settings, err = NewSettingStore(d, p, svc, opts...); return err },
		func() error { set.Stats, err = NewStatsStore(d, p, svc, opts...); return err },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			set.Close()
			return nil, err
		}
	}
	return set, nil
}

func (s *Set) bases() []*Base {
	var out []*Base
	add := func(b *Base) {
		if b != nil {
			out = append(out, b)
		}
	}
	if s.Orders != nil {
		add(s.Orders.Base)
	}
	if s.Products != nil {
		add(s.Products.Base)
	}
	if s.Refunds != nil {
		add(s.Refunds.Base)
	}
	if s.ProductTags != nil {
		add(s.ProductTags.Base)
	}
	if s.ProductAttributes != nil {
		add(s.ProductAttributes.Base)
	}
	if s.ShippingClasses != nil {
		add(s.ShippingClasses.Base)
	}
	if s.ShipmentTracking != nil {
		add(s.ShipmentTracking.Base)
	}
	if s.Settings != nil {
		add(s.Settings.Base)
	}
	if s.Stats != nil {
		add(s.Stats.Base)
	}
	return out
}

// Wait blocks until every store is idle.
func (s *Set) Wait() {
	for _, b := range s.bases() {
		b.Wait()
	}
}

// Close closes every store.
func (s *Set) Close() {
	for _, b := range s.bases() {
		b.Close()
	}
}
