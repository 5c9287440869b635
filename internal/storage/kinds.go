package storage

// Entity kinds.
const (
	KindOrder              Kind = "order"
	KindOrderItem          Kind = "order_item"
	KindOrderTaxLine       Kind = "order_tax_line"
	KindOrderCouponLine    Kind = "order_coupon_line"
	KindOrderShippingLine  Kind = "order_shipping_line"
	KindOrderFeeLine       Kind = "order_fee_line"
	KindOrderRefund        Kind = "order_refund"
	KindProduct            Kind = "product"
	KindProductImage       Kind = "product_image"
	KindProductAttribute   Kind = "product_attribute"
	KindProductTag         Kind = "product_tag"
	KindStoreAttribute     Kind = "store_attribute"
	KindShippingClass      Kind = "shipping_class"
	KindRefund             Kind = "refund"
	KindRefundItem         Kind = "refund_item"
	KindShipmentTracking   Kind = "shipment_tracking"
	KindSiteSetting        Kind = "site_setting"
	KindOrderStats         Kind = "order_stats"
	KindOrderStatsInterval Kind = "order_stats_interval"
	KindVisitStats         Kind = "visit_stats"
	KindVisitStatsItem     Kind = "visit_stats_item"
	KindSearchResults      Kind = "search_results"
)

// Relation names a many-to-many link family.
type Relation string

// Link relations.
const (
	RelationProductTags   Relation = "product.tags"
	RelationSearchMembers Relation = "search.members"
)

var registry = map[Kind]func() Entity{
	KindOrder:              func() Entity { return new(Order) },
	KindOrderItem:          func() Entity { return new(OrderItem) },
	KindOrderTaxLine:       func() Entity { return new(OrderTaxLine) },
	KindOrderCouponLine:    func() Entity { return new(OrderCouponLine) },
	KindOrderShippingLine:  func() Entity { return new(OrderShippingLine) },
	KindOrderFeeLine:       func() Entity { return new(OrderFeeLine) },
	KindOrderRefund:        func() Entity { return new(OrderRefund) },
	KindProduct:            func() Entity { return new(Product) },
	KindProductImage:       func() Entity { return new(ProductImage) },
	KindProductAttribute:   func() Entity { return new(ProductAttribute) },
	KindProductTag:         func() Entity { return new(ProductTag) },
	KindStoreAttribute:     func() Entity { return new(StoreAttribute) },
	KindShippingClass:      func() Entity { return new(ShippingClass) },
	KindRefund:             func() Entity { return new(Refund) },
	KindRefundItem:         func() Entity { return new(RefundItem) },
	KindShipmentTracking:   func() Entity { return new(ShipmentTracking) },
	KindSiteSetting:        func() Entity { return new(SiteSetting) },
	KindOrderStats:         func() Entity { return new(OrderStats) },
	KindOrderStatsInterval: func() Entity { return new(OrderStatsInterval) },
	KindVisitStats:         func() Entity { return new(VisitStats) },
	KindVisitStatsItem:     func() Entity { return new(VisitStatsItem) },
	KindSearchResults:      func() Entity { return new(SearchResultSet) },
}

// Kinds returns every registered kind.
func Kinds() []Kind {
	kinds := make([]Kind, 0, len(registry))
	for k := range registry {
		kinds = append(kinds, k)
	}
	return kinds
}
