package model

import (
	"github.com/shopspring/decimal"
)

// Granularity is the interval size of a stats report.
type Granularity string

// Supported report granularities.
const (
	GranularityHour  Granularity = "hour"
	GranularityDay   Granularity = "day"
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
	GranularityYear  Granularity = "year"
)

// StatsTotals is the aggregate block shared by a report and its intervals.
type StatsTotals struct {
	OrdersCount       int64           `json:"orders_count"`
	ItemsSold         int64           `json:"num_items_sold"`
	GrossRevenue      decimal.Decimal `json:"total_sales"`
	NetRevenue        decimal.Decimal `json:"net_revenue"`
	AverageOrderValue decimal.Decimal `json:"avg_order_value"`
}

// OrderStats is an order stats report for one site, granularity and
// range key.
type OrderStats struct {
	SiteID      int64                `json:"site_id"`
	Granularity Granularity          `json:"granularity"`
	Date        string               `json:"date"`
	Totals      StatsTotals          `json:"totals"`
	Intervals   []OrderStatsInterval `json:"intervals"`
}

// OrderStatsInterval is one bucket of an order stats report.
type OrderStatsInterval struct {
	Interval  string      `json:"interval"`
	DateStart string      `json:"date_start"`
	DateEnd   string      `json:"date_end"`
	Subtotals StatsTotals `json:"subtotals"`
}

// SumIntervals recomputes totals from the report's intervals. Average order
// value is derived from the summed revenue and order count.
func (s OrderStats) SumIntervals() StatsTotals {
	var out StatsTotals
	for _, iv := range s.Intervals {
		out.OrdersCount += iv.Subtotals.OrdersCount
		out.ItemsSold += iv.Subtotals.ItemsSold
		out.GrossRevenue = out.GrossRevenue.Add(iv.Subtotals.GrossRevenue)
		out.NetRevenue = out.NetRevenue.Add(iv.Subtotals.NetRevenue)
	}
	if out.OrdersCount > 0 {
		out.AverageOrderValue = out.NetRevenue.Div(decimal.NewFromInt(out.OrdersCount)).Round(2)
	}
	return out
}

// VisitStats is a visitor stats report.
type VisitStats struct {
	SiteID      int64            `json:"site_id"`
	Granularity Granularity      `json:"granularity"`
	Date        string           `json:"date"`
	Items       []VisitStatsItem `json:"items"`
}

// VisitStatsItem is one period of a visitor stats report.
type VisitStatsItem struct {
	Period   string `json:"period"`
	Visitors int64  `json:"visitors"`
	Views    int64  `json:"views"`
}

// TotalVisitors sums visitors over every period.
func (v VisitStats) TotalVisitors() int64 {
	var n int64
	for _, it := range v.Items {
		n += it.Visitors
	}
	return n
}
