package upsert

import (
	"fmt"

	"github.com/roach88/storesync/internal/model"
	"github.com/roach88/storesync/internal/storage"
)

// ShipmentTracking merges a tracking record of an order.
func ShipmentTracking(c *storage.Context, t model.ShipmentTracking) (*storage.ShipmentTracking, error) {
	local, err := findOrInsert[*storage.ShipmentTracking](c, TrackingKey(t.SiteID, t.OrderID, t.TrackingID), nil)
	if err != nil {
		return nil, fmt.Errorf("upsert tracking %s: %w", t.TrackingID, err)
	}
	local.SiteID = t.SiteID
	local.OrderID = t.OrderID
	local.TrackingID = t.TrackingID
	local.TrackingNumber = t.TrackingNumber
	local.TrackingProvider = t.TrackingProvider
	local.TrackingURL = t.TrackingURL
	local.DateShipped = t.DateShipped
	return local, nil
}

// ReadShipmentTracking maps a local tracking record back to a remote record.
func ReadShipmentTracking(t *storage.ShipmentTracking) model.ShipmentTracking {
	return model.ShipmentTracking{
		SiteID:           t.SiteID,
		OrderID:          t.OrderID,
		TrackingID:       t.TrackingID,
		TrackingNumber:   t.TrackingNumber,
		TrackingProvider: t.TrackingProvider,
		TrackingURL:      t.TrackingURL,
		DateShipped:      t.DateShipped,
	}
}

// SiteSetting merges one site setting.
func SiteSetting(c *storage.Context, s model.SiteSetting) (*storage.SiteSetting, error) {
	local, err := findOrInsert[*storage.SiteSetting](c, SettingKey(s.SiteID, s.Group, s.SettingID), nil)
	if err != nil {
		return nil, fmt.Errorf("upsert setting %s: %w", s.SettingID, err)
	}
	local.SiteID = s.SiteID
	local.SettingID = s.SettingID
	local.Group = string(s.Group)
	local.Label = s.Label
	local.Description = s.Description
	local.Value = s.Value
	return local, nil
}

// ReadSiteSetting maps a local setting back to a remote record.
func ReadSiteSetting(s *storage.SiteSetting) model.SiteSetting {
	return model.SiteSetting{
		SiteID:      s.SiteID,
		SettingID:   s.SettingID,
		Group:       model.SettingGroup(s.Group),
		Label:       s.Label,
		Description: s.Description,
		Value:       s.Value,
	}
}

// OrderStats merges an order stats report and its intervals.
func OrderStats(c *storage.Context, s model.OrderStats) (*storage.OrderStats, error) {
	key := StatsKey(s.SiteID, s.Granularity, s.Date)
	local, err := findOrInsert[*storage.OrderStats](c, key, nil)
	if err != nil {
		return nil, fmt.Errorf("upsert order stats %s: %w", key, err)
	}
	local.SiteID = s.SiteID
	local.Granularity = string(s.Granularity)
	local.Date = s.Date
	local.Totals = storage.StatsTotals(s.Totals)

	err = reconcileChildren(c, local, s.Intervals,
		func(iv model.OrderStatsInterval) storage.Key {
			return storage.StringKey(s.SiteID, string(s.Granularity), s.Date, iv.Interval)
		},
		noErr(func(l *storage.OrderStatsInterval, iv model.OrderStatsInterval) {
			l.Interval = iv.Interval
			l.DateStart = iv.DateStart
			l.DateEnd = iv.DateEnd
			l.Subtotals = storage.StatsTotals(iv.Subtotals)
		}))
	if err != nil {
		return nil, fmt.Errorf("upsert order stats %s intervals: %w", key, err)
	}
	return local, nil
}

// ReadOrderStats maps a local order stats report back to a remote record.
func ReadOrderStats(c *storage.Context, s *storage.OrderStats) (model.OrderStats, error) {
	out := model.OrderStats{
		SiteID:      s.SiteID,
		Granularity: model.Granularity(s.Granularity),
		Date:        s.Date,
		Totals:      model.StatsTotals(s.Totals),
	}
	intervals, err := storage.Children[*storage.OrderStatsInterval](c, s)
	if err != nil {
		return out, err
	}
	for _, iv := range intervals {
		out.Intervals = append(out.Intervals, model.OrderStatsInterval{
			Interval:  iv.Interval,
			DateStart: iv.DateStart,
			DateEnd:   iv.DateEnd,
			Subtotals: model.StatsTotals(iv.Subtotals),
		})
	}
	return out, nil
}

// VisitStats merges a visitor stats report and its periods.
func VisitStats(c *storage.Context, s model.VisitStats) (*storage.VisitStats, error) {
	key := StatsKey(s.SiteID, s.Granularity, s.Date)
	local, err := findOrInsert[*storage.VisitStats](c, key, nil)
	if err != nil {
		return nil, fmt.Errorf("upsert visit stats %s: %w", key, err)
	}
	local.SiteID = s.SiteID
	local.Granularity = string(s.Granularity)
	local.Date = s.Date

	err = reconcileChildren(c, local, s.Items,
		func(it model.VisitStatsItem) storage.Key {
			return storage.StringKey(s.SiteID, string(s.Granularity), s.Date, it.Period)
		},
		noErr(func(l *storage.VisitStatsItem, it model.VisitStatsItem) {
			l.Period = it.Period
			l.Visitors = it.Visitors
			l.Views = it.Views
		}))
	if err != nil {
		return nil, fmt.Errorf("upsert visit stats %s items: %w", key, err)
	}
	return local, nil
}

// ReadVisitStats maps a local visitor stats report back to a remote record.
func ReadVisitStats(c *storage.Context, s *storage.VisitStats) (model.VisitStats, error) {
	out := model.VisitStats{
		SiteID:      s.SiteID,
		Granularity: model.Granularity(s.Granularity),
		Date:        s.Date,
	}
	items, err := storage.Children[*storage.VisitStatsItem](c, s)
	if err != nil {
		return out, err
	}
	for _, it := range items {
		out.Items = append(out.Items, model.VisitStatsItem{
			Period:   it.Period,
			Visitors: it.Visitors,
			Views:    it.Views,
		})
	}
	return out, nil
}
