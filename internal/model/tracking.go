package model

import "time"

// ShipmentTracking is a tracking record attached to an order.
type ShipmentTracking struct {
	SiteID           int64      `json:"site_id"`
	OrderID          int64      `json:"order_id"`
	TrackingID       string     `json:"tracking_id"`
	TrackingNumber   string     `json:"tracking_number"`
	TrackingProvider string     `json:"tracking_provider"`
	TrackingURL      string     `json:"tracking_link"`
	DateShipped      *time.Time `json:"date_shipped"`
}
