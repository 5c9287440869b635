package upsert

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/storesync/internal/canon"
	"github.com/roach88/storesync/internal/model"
	"github.com/roach88/storesync/internal/storage"
)

func TestOrder_IdempotentWithSingleNotification(t *testing.T) {
	p := openProvider(t)

	var notifications atomic.Int32
	defer p.View().Subscribe(func(storage.ChangeSet) { notifications.Add(1) })()

	in := order963(model.OrderStatusCompleted, item(1, "Mug", "1"), item(2, "Shirt", "2"))
	first := save(t, p, func(c *storage.Context) error { _, err := Order(c, in); return err })
	second := save(t, p, func(c *storage.Context) error { _, err := Order(c, in); return err })

	assert.Len(t, first.Inserted, 4)
	assert.True(t, second.Empty())
	assert.Equal(t, int32(1), notifications.Load())
	assert.Equal(t, 1, count[*storage.Order](t, p))
	assert.Equal(t, 2, count[*storage.OrderItem](t, p))
	assert.Equal(t, 1, count[*storage.OrderTaxLine](t, p))
}

func TestOrder_IdentityStable(t *testing.T) {
	p := openProvider(t)

	save(t, p, func(c *storage.Context) error {
		_, err := Order(c, order963(model.OrderStatusCompleted, item(1, "Mug", "1")))
		return err
	})
	held, ok, err := storage.Load[*storage.Order](p.View(), OrderKey(1, 963))
	require.NoError(t, err)
	require.True(t, ok)

	var first, second *storage.Order
	save(t, p, func(c *storage.Context) error {
		var err error
		first, err = Order(c, order963(model.OrderStatusProcessing, item(1, "Mug", "1")))
		return err
	})
	save(t, p, func(c *storage.Context) error {
		var err error
		second, err = Order(c, order963(model.OrderStatusOnHold, item(1, "Mug", "1")))
		return err
	})

	assert.Same(t, first, second)
	assert.Equal(t, 1, count[*storage.Order](t, p))

	again, _, err := storage.Load[*storage.Order](p.View(), OrderKey(1, 963))
	require.NoError(t, err)
	assert.Same(t, held, again)
	require.NoError(t, p.View().Read(func(*storage.Context) error {
		assert.Equal(t, string(model.OrderStatusOnHold), held.Status)
		assert.Equal(t, int64(3), held.Generation())
		return nil
	}))
}

func TestOrder_ReconcilesSubCollection(t *testing.T) {
	p := openProvider(t)

	save(t, p, func(c *storage.Context) error {
		_, err := Order(c, order963(model.OrderStatusCompleted, item(1, "A", "1"), item(2, "B", "1")))
		return err
	})
	itemB, ok, err := storage.Load[*storage.OrderItem](p.View(), storage.IDKey(1, 963, 2))
	require.NoError(t, err)
	require.True(t, ok)
	idB := itemB.ObjectID()

	cs := save(t, p, func(c *storage.Context) error {
		_, err := Order(c, order963(model.OrderStatusCompleted, item(2, "B-changed", "3"), item(3, "C", "1")))
		return err
	})

	assert.Len(t, cs.Deleted, 1)
	assert.Len(t, cs.Inserted, 1)
	require.Len(t, cs.Updated, 1)
	assert.Equal(t, idB, cs.Updated[0].ID)

	var items []*storage.OrderItem
	require.NoError(t, p.View().Read(func(c *storage.Context) error {
		o, _, err := storage.Find[*storage.Order](c, OrderKey(1, 963))
		if err != nil {
			return err
		}
		items, err = storage.Children[*storage.OrderItem](c, o)
		return err
	}))
	require.Len(t, items, 2)
	assert.Equal(t, idB, items[0].ObjectID())
	assert.Equal(t, "B-changed", items[0].Name)
	assert.Equal(t, "3", items[0].Quantity.String())
	assert.Equal(t, "C", items[1].Name)
}

func TestOrder_DuplicateIncomingKeysCollapse(t *testing.T) {
	p := openProvider(t)

	save(t, p, func(c *storage.Context) error {
		_, err := Order(c, order963(model.OrderStatusCompleted, item(1, "first", "1"), item(1, "last", "1")))
		return err
	})

	assert.Equal(t, 1, count[*storage.OrderItem](t, p))
	it, _, err := storage.Load[*storage.OrderItem](p.View(), storage.IDKey(1, 963, 1))
	require.NoError(t, err)
	assert.Equal(t, "last", it.Name)
}

func TestOrder_ScopesKeepSitesApart(t *testing.T) {
	p := openProvider(t)

	a := order963(model.OrderStatusCompleted, item(1, "A", "1"))
	b := order963(model.OrderStatusPending, item(1, "B", "1"))
	b.SiteID = 2
	save(t, p, func(c *storage.Context) error {
		if _, err := Order(c, a); err != nil {
			return err
		}
		_, err := Order(c, b)
		return err
	})

	assert.Equal(t, 2, count[*storage.Order](t, p))
	assert.Equal(t, 2, count[*storage.OrderItem](t, p))
}

func TestReadOrder_RoundTrip(t *testing.T) {
	p := openProvider(t)
	in := order963(model.OrderStatusCompleted, item(1, "Mug", "1"), item(2, "Shirt", "2"))
	in.Items[0].Attributes = []model.OrderItemAttribute{{MetaID: 9, Name: "Color", Value: "Blue"}}
	in.Coupons = []model.OrderCouponLine{{CouponID: 4, Code: "SPRING", Discount: dec("2.00")}}
	in.ShippingLines = []model.OrderShippingLine{{ShippingID: 5, MethodID: "flat_rate", Total: dec("4.00")}}
	in.Fees = []model.OrderFeeLine{{FeeID: 6, Name: "Gift wrap", Total: dec("1.00")}}
	in.Refunds = []model.OrderRefundSummary{{RefundID: 7, Reason: "damaged", Total: dec("-5.00")}}

	save(t, p, func(c *storage.Context) error { _, err := Order(c, in); return err })

	var out model.Order
	require.NoError(t, p.View().Read(func(c *storage.Context) error {
		o, _, err := storage.Find[*storage.Order](c, OrderKey(1, 963))
		if err != nil {
			return err
		}
		out, err = ReadOrder(c, o)
		return err
	}))

	want, err := canon.Marshal(in)
	require.NoError(t, err)
	got, err := canon.Marshal(out)
	require.NoError(t, err)
	assert.JSONEq(t, string(want), string(got))
}

func TestOrder_ParentOrderIDIsNotOwnership(t *testing.T) {
	p := openProvider(t)
	in := order963(model.OrderStatusCompleted, item(1, "Mug", "1"))
	in.ParentID = 900

	save(t, p, func(c *storage.Context) error { _, err := Order(c, in); return err })

	var out model.Order
	require.NoError(t, p.View().Read(func(c *storage.Context) error {
		o, ok, err := storage.Find[*storage.Order](c, OrderKey(1, 963))
		if err != nil || !ok {
			return err
		}
		assert.Equal(t, int64(900), o.ParentOrderID)
		assert.Empty(t, o.ParentID(), "orders are top-level objects")
		out, err = ReadOrder(c, o)
		return err
	}))
	assert.Equal(t, int64(900), out.ParentID)
}
