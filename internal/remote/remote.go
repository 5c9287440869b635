package remote

import (
	"context"

	"github.com/roach88/storesync/internal/model"
)

// ProductFilter narrows a product list request. Zero values disable a
// filter.
type ProductFilter struct {
	StockStatus   string
	ProductStatus model.ProductStatus
	ProductType   string
	ExcludedIDs   []int64
}

// IsZero reports whether no filter is set.
func (f ProductFilter) IsZero() bool {
	return f.StockStatus == "" && f.ProductStatus == "" && f.ProductType == "" && len(f.ExcludedIDs) == 0
}

// OrdersRemote serves orders.
type OrdersRemote interface {
	LoadOrders(ctx context.Context, siteID int64, statuses []string, page, pageSize int) ([]model.Order, error)
	LoadOrder(ctx context.Context, siteID, orderID int64) (model.Order, error)
	SearchOrders(ctx context.Context, siteID int64, keyword string, page, pageSize int) ([]model.Order, error)
	UpdateOrderStatus(ctx context.Context, siteID, orderID int64, status model.OrderStatus) (model.Order, error)
	UpdateOrder(ctx context.Context, order model.Order) (model.Order, error)
}

// ProductsRemote serves products.
type ProductsRemote interface {
	LoadProducts(ctx context.Context, siteID int64, page, pageSize int, filter ProductFilter) ([]model.Product, error)
	LoadProduct(ctx context.Context, siteID, productID int64) (model.Product, error)
	LoadProductsByID(ctx context.Context, siteID int64, ids []int64) ([]model.Product, error)
	SearchProducts(ctx context.Context, siteID int64, keyword string, page, pageSize int, filter ProductFilter) ([]model.Product, error)
	UpdateProduct(ctx context.Context, product model.Product) (model.Product, error)
	DeleteProduct(ctx context.Context, siteID, productID int64) (model.Product, error)
}

// RefundsRemote serves refunds of orders.
type RefundsRemote interface {
	LoadRefunds(ctx context.Context, siteID, orderID int64, page, pageSize int) ([]model.Refund, error)
	LoadRefund(ctx context.Context, siteID, orderID, refundID int64) (model.Refund, error)
	CreateRefund(ctx context.Context, refund model.Refund) (model.Refund, error)
}

// ProductTagsRemote serves product tags.
type ProductTagsRemote interface {
	LoadProductTags(ctx context.Context, siteID int64, page, pageSize int) ([]model.ProductTag, error)
	AddProductTags(ctx context.Context, siteID int64, names []string) ([]model.ProductTag, error)
	DeleteProductTags(ctx context.Context, siteID int64, ids []int64) ([]model.ProductTag, error)
}

// ProductAttributesRemote serves site-wide attribute definitions.
type ProductAttributesRemote interface {
	LoadProductAttributes(ctx context.Context, siteID int64) ([]model.StoreAttribute, error)
	AddProductAttribute(ctx context.Context, siteID int64, name string) (model.StoreAttribute, error)
	UpdateProductAttribute(ctx context.Context, attr model.StoreAttribute) (model.StoreAttribute, error)
	DeleteProductAttribute(ctx context.Context, siteID, attributeID int64) (model.StoreAttribute, error)
}

// ShippingClassesRemote serves shipping classes.
type ShippingClassesRemote interface {
	LoadShippingClasses(ctx context.Context, siteID int64, page, pageSize int) ([]model.ShippingClass, error)
	LoadShippingClass(ctx context.Context, siteID, classID int64) (model.ShippingClass, error)
}

// TrackingRemote serves shipment tracking of orders.
type TrackingRemote interface {
	LoadShipmentTrackings(ctx context.Context, siteID, orderID int64) ([]model.ShipmentTracking, error)
	AddShipmentTracking(ctx context.Context, tracking model.ShipmentTracking) (model.ShipmentTracking, error)
	DeleteShipmentTracking(ctx context.Context, siteID, orderID int64, trackingID string) error
}

// SettingsRemote serves site settings.
type SettingsRemote interface {
	LoadSettings(ctx context.Context, siteID int64, group model.SettingGroup) ([]model.SiteSetting, error)
}

// StatsRemote serves stats reports.
type StatsRemote interface {
	LoadOrderStats(ctx context.Context, siteID int64, granularity model.Granularity, from, to string) (model.OrderStats, error)
	LoadVisitStats(ctx context.Context, siteID int64, granularity model.Granularity, date string, quantity int) (model.VisitStats, error)
}

// Service bundles every collaborator. Implementations may serve a subset
// by embedding nil interfaces; stores only call the ones they own.
type Service interface {
	OrdersRemote
	ProductsRemote
	RefundsRemote
	ProductTagsRemote
	ProductAttributesRemote
	ShippingClassesRemote
	TrackingRemote
	SettingsRemote
	StatsRemote
}
