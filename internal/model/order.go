package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the remote order status slug.
type OrderStatus string

// Known order statuses. Custom statuses registered by plugins pass through
// unchanged.
const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusOnHold     OrderStatus = "on-hold"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusRefunded   OrderStatus = "refunded"
	OrderStatusFailed     OrderStatus = "failed"
)

// Address is a billing or shipping address.
type Address struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Company   string `json:"company"`
	Address1  string `json:"address_1"`
	Address2  string `json:"address_2"`
	City      string `json:"city"`
	State     string `json:"state"`
	Postcode  string `json:"postcode"`
	Country   string `json:"country"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
}

// Order is a remote order with its owned line collections.
type Order struct {
	SiteID             int64           `json:"site_id"`
	OrderID            int64           `json:"order_id"`
	ParentID           int64           `json:"parent_id"`
	CustomerID         int64           `json:"customer_id"`
	Number             string          `json:"number"`
	Status             OrderStatus     `json:"status"`
	Currency           string          `json:"currency"`
	CustomerNote       string          `json:"customer_note"`
	DateCreated        time.Time       `json:"date_created"`
	DateModified       time.Time       `json:"date_modified"`
	DatePaid           *time.Time      `json:"date_paid"`
	Discount           decimal.Decimal `json:"discount_total"`
	ShippingTotal      decimal.Decimal `json:"shipping_total"`
	TotalTax           decimal.Decimal `json:"total_tax"`
	Total              decimal.Decimal `json:"total"`
	PaymentMethodID    string          `json:"payment_method"`
	PaymentMethodTitle string          `json:"payment_method_title"`
	Billing            *Address        `json:"billing"`
	Shipping           *Address        `json:"shipping"`

	Items         []OrderItem          `json:"line_items"`
	TaxLines      []OrderTaxLine       `json:"tax_lines"`
	Coupons       []OrderCouponLine    `json:"coupon_lines"`
	ShippingLines []OrderShippingLine  `json:"shipping_lines"`
	Fees          []OrderFeeLine       `json:"fee_lines"`
	Refunds       []OrderRefundSummary `json:"refunds"`
}

// OrderItem is one line item of an order.
type OrderItem struct {
	ItemID      int64                `json:"id"`
	Name        string               `json:"name"`
	ProductID   int64                `json:"product_id"`
	VariationID int64                `json:"variation_id"`
	Quantity    decimal.Decimal      `json:"quantity"`
	Price       decimal.Decimal      `json:"price"`
	SKU         string               `json:"sku"`
	Subtotal    decimal.Decimal      `json:"subtotal"`
	SubtotalTax decimal.Decimal      `json:"subtotal_tax"`
	Total       decimal.Decimal      `json:"total"`
	TotalTax    decimal.Decimal      `json:"total_tax"`
	Attributes  []OrderItemAttribute `json:"attributes"`
}

// OrderItemAttribute is a variation attribute printed on a line item.
type OrderItemAttribute struct {
	MetaID int64  `json:"meta_id"`
	Name   string `json:"name"`
	Value  string `json:"value"`
}

// OrderTaxLine is a tax line of an order.
type OrderTaxLine struct {
	TaxID            int64           `json:"id"`
	RateCode         string          `json:"rate_code"`
	RateID           int64           `json:"rate_id"`
	Label            string          `json:"label"`
	IsCompound       bool            `json:"compound"`
	TotalTax         decimal.Decimal `json:"tax_total"`
	TotalShippingTax decimal.Decimal `json:"shipping_tax_total"`
	RatePercent      decimal.Decimal `json:"rate_percent"`
}

// OrderCouponLine is a coupon applied to an order.
type OrderCouponLine struct {
	CouponID    int64           `json:"id"`
	Code        string          `json:"code"`
	Discount    decimal.Decimal `json:"discount"`
	DiscountTax decimal.Decimal `json:"discount_tax"`
}

// OrderShippingLine is a shipping method charged on an order.
type OrderShippingLine struct {
	ShippingID  int64           `json:"id"`
	MethodTitle string          `json:"method_title"`
	MethodID    string          `json:"method_id"`
	Total       decimal.Decimal `json:"total"`
	TotalTax    decimal.Decimal `json:"total_tax"`
}

// OrderFeeLine is a fee charged on an order.
type OrderFeeLine struct {
	FeeID     int64           `json:"id"`
	Name      string          `json:"name"`
	TaxStatus string          `json:"tax_status"`
	Total     decimal.Decimal `json:"total"`
	TotalTax  decimal.Decimal `json:"total_tax"`
}

// OrderRefundSummary is the condensed refund reference embedded in orders.
type OrderRefundSummary struct {
	RefundID int64           `json:"id"`
	Reason   string          `json:"reason"`
	Total    decimal.Decimal `json:"total"`
}

// ItemCount returns the total quantity across line items.
func (o Order) ItemCount() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range o.Items {
		sum = sum.Add(it.Quantity)
	}
	return sum
}

// RefundedTotal returns the sum of the order's refunds as a positive amount.
func (o Order) RefundedTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, r := range o.Refunds {
		sum = sum.Add(r.Total.Abs())
	}
	return sum
}
