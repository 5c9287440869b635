package upsert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/storesync/internal/model"
	"github.com/roach88/storesync/internal/storage"
)

func TestRefund_ItemsReconciled(t *testing.T) {
	p := openProvider(t)
	r := model.Refund{
		SiteID:   1,
		OrderID:  963,
		RefundID: 70,
		Amount:   dec("10.00"),
		Items: []model.RefundItem{
			{ItemID: 1, Name: "Mug", Quantity: dec("-1"), Total: dec("-5.00")},
			{ItemID: 2, Name: "Shirt", Quantity: dec("-1"), Total: dec("-5.00")},
		},
	}
	save(t, p, func(c *storage.Context) error { _, err := Refund(c, r); return err })

	r.Items = r.Items[1:]
	cs := save(t, p, func(c *storage.Context) error { _, err := Refund(c, r); return err })

	assert.Len(t, cs.Deleted, 1)
	assert.Equal(t, 1, count[*storage.RefundItem](t, p))

	var out model.Refund
	require.NoError(t, p.View().Read(func(c *storage.Context) error {
		local, _, err := storage.Find[*storage.Refund](c, RefundKey(1, 70))
		if err != nil {
			return err
		}
		out, err = ReadRefund(c, local)
		return err
	}))
	assert.Equal(t, int64(963), out.OrderID)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "Shirt", out.Items[0].Name)
}

func TestOrderStats_IntervalsReconciled(t *testing.T) {
	p := openProvider(t)
	st := model.OrderStats{
		SiteID:      1,
		Granularity: model.GranularityDay,
		Date:        "2024-03-01",
		Intervals: []model.OrderStatsInterval{
			{Interval: "2024-03-01 00", Subtotals: model.StatsTotals{OrdersCount: 2, NetRevenue: dec("20.00")}},
			{Interval: "2024-03-01 01", Subtotals: model.StatsTotals{OrdersCount: 1, NetRevenue: dec("10.00")}},
		},
	}
	st.Totals = st.SumIntervals()

	save(t, p, func(c *storage.Context) error { _, err := OrderStats(c, st); return err })
	again := save(t, p, func(c *storage.Context) error { _, err := OrderStats(c, st); return err })
	assert.True(t, again.Empty())

	var out model.OrderStats
	require.NoError(t, p.View().Read(func(c *storage.Context) error {
		local, _, err := storage.Find[*storage.OrderStats](c, StatsKey(1, model.GranularityDay, "2024-03-01"))
		if err != nil {
			return err
		}
		out, err = ReadOrderStats(c, local)
		return err
	}))
	assert.Equal(t, int64(3), out.Totals.OrdersCount)
	assert.Equal(t, "10", out.Totals.AverageOrderValue.String())
	assert.Len(t, out.Intervals, 2)
}

func TestVisitStats_ItemsReplaced(t *testing.T) {
	p := openProvider(t)
	st := model.VisitStats{
		SiteID:      1,
		Granularity: model.GranularityDay,
		Date:        "2024-03-01",
		Items:       []model.VisitStatsItem{{Period: "2024-02-29", Visitors: 3}, {Period: "2024-03-01", Visitors: 5}},
	}
	save(t, p, func(c *storage.Context) error { _, err := VisitStats(c, st); return err })

	st.Items = []model.VisitStatsItem{{Period: "2024-03-01", Visitors: 6}}
	save(t, p, func(c *storage.Context) error { _, err := VisitStats(c, st); return err })

	assert.Equal(t, 1, count[*storage.VisitStatsItem](t, p))
}

func TestSiteSetting_KeyedByGroup(t *testing.T) {
	p := openProvider(t)
	save(t, p, func(c *storage.Context) error {
		for _, s := range []model.SiteSetting{
			{SiteID: 1, SettingID: "woocommerce_currency", Group: model.SettingGroupGeneral, Value: "USD"},
			{SiteID: 1, SettingID: "woocommerce_weight_unit", Group: model.SettingGroupProduct, Value: "kg"},
		} {
			if _, err := SiteSetting(c, s); err != nil {
				return err
			}
		}
		return nil
	})

	got, ok, err := storage.Load[*storage.SiteSetting](p.View(),
		SettingKey(1, model.SettingGroupProduct, "woocommerce_weight_unit"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "kg", ReadSiteSetting(got).Value)
}
