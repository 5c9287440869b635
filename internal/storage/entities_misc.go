package storage

import (
	"time"

	"github.com/shopspring/decimal"
)

// ShipmentTracking is a cached tracking record of an order.
type ShipmentTracking struct {
	Meta `json:"-"`

	SiteID           int64      `json:"site_id"`
	OrderID          int64      `json:"order_id"`
	TrackingID       string     `json:"tracking_id"`
	TrackingNumber   string     `json:"tracking_number"`
	TrackingProvider string     `json:"tracking_provider"`
	TrackingURL      string     `json:"tracking_url"`
	DateShipped      *time.Time `json:"date_shipped"`
}

func (*ShipmentTracking) Kind() Kind { return KindShipmentTracking }

// SiteSetting is a cached site setting.
type SiteSetting struct {
	Meta `json:"-"`

	SiteID      int64  `json:"site_id"`
	SettingID   string `json:"setting_id"`
	Group       string `json:"group"`
	Label       string `json:"label"`
	Description string `json:"description"`
	Value       string `json:"value"`
}

func (*SiteSetting) Kind() Kind { return KindSiteSetting }

// StatsTotals is the persisted aggregate block of a stats report.
type StatsTotals struct {
	OrdersCount       int64           `json:"orders_count"`
	ItemsSold         int64           `json:"items_sold"`
	GrossRevenue      decimal.Decimal `json:"gross_revenue"`
	NetRevenue        decimal.Decimal `json:"net_revenue"`
	AverageOrderValue decimal.Decimal `json:"avg_order_value"`
}

// OrderStats is a cached order stats report. Intervals are owned rows.
type OrderStats struct {
	Meta `json:"-"`

	SiteID      int64       `json:"site_id"`
	Granularity string      `json:"granularity"`
	Date        string      `json:"date"`
	Totals      StatsTotals `json:"totals"`
}

func (*OrderStats) Kind() Kind { return KindOrderStats }

// OrderStatsInterval is an owned bucket of an OrderStats report.
type OrderStatsInterval struct {
	Meta `json:"-"`

	Interval  string      `json:"interval"`
	DateStart string      `json:"date_start"`
	DateEnd   string      `json:"date_end"`
	Subtotals StatsTotals `json:"subtotals"`
}

func (*OrderStatsInterval) Kind() Kind { return KindOrderStatsInterval }

// VisitStats is a cached visitor stats report. Items are owned rows.
type VisitStats struct {
	Meta `json:"-"`

	SiteID      int64  `json:"site_id"`
	Granularity string `json:"granularity"`
	Date        string `json:"date"`
}

func (*VisitStats) Kind() Kind { return KindVisitStats }

// VisitStatsItem is an owned period of a VisitStats report.
type VisitStatsItem struct {
	Meta `json:"-"`

	Period   string `json:"period"`
	Visitors int64  `json:"visitors"`
	Views    int64  `json:"views"`
}

func (*VisitStatsItem) Kind() Kind { return KindVisitStatsItem }

// SearchResultSet is a derived result set: the entities matched by one
// keyword search. Members are links (RelationSearchMembers).
type SearchResultSet struct {
	Meta `json:"-"`

	SiteID  int64  `json:"site_id"`
	Target  Kind   `json:"target"`
	Keyword string `json:"keyword"`
	Filter  string `json:"filter"`
}

func (*SearchResultSet) Kind() Kind { return KindSearchResults }
