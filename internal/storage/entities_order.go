package storage

import (
	"time"

	"github.com/shopspring/decimal"
)

// Address is a persisted billing or shipping address.
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

// Order is a cached order. Its line collections are owned rows.
type Order struct {
	Meta `json:"-"`

	SiteID             int64           `json:"site_id"`
	OrderID            int64           `json:"order_id"`
	ParentOrderID      int64           `json:"parent_id"`
	CustomerID         int64           `json:"customer_id"`
	Number             string          `json:"number"`
	Status             string          `json:"status"`
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
}

func (*Order) Kind() Kind { return KindOrder }

// OrderItemAttribute is a variation attribute stored with its line item.
type OrderItemAttribute struct {
	MetaID int64  `json:"meta_id"`
	Name   string `json:"name"`
	Value  string `json:"value"`
}

// OrderItem is an owned line item of an Order.
type OrderItem struct {
	Meta `json:"-"`

	ItemID      int64                `json:"item_id"`
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

func (*OrderItem) Kind() Kind { return KindOrderItem }

// OrderTaxLine is an owned tax line of an Order.
type OrderTaxLine struct {
	Meta `json:"-"`

	TaxID            int64           `json:"tax_id"`
	RateCode         string          `json:"rate_code"`
	RateID           int64           `json:"rate_id"`
	Label            string          `json:"label"`
	IsCompound       bool            `json:"compound"`
	TotalTax         decimal.Decimal `json:"tax_total"`
	TotalShippingTax decimal.Decimal `json:"shipping_tax_total"`
	RatePercent      decimal.Decimal `json:"rate_percent"`
}

func (*OrderTaxLine) Kind() Kind { return KindOrderTaxLine }

// OrderCouponLine is an owned coupon line of an Order.
type OrderCouponLine struct {
	Meta `json:"-"`

	CouponID    int64           `json:"coupon_id"`
	Code        string          `json:"code"`
	Discount    decimal.Decimal `json:"discount"`
	DiscountTax decimal.Decimal `json:"discount_tax"`
}

func (*OrderCouponLine) Kind() Kind { return KindOrderCouponLine }

// OrderShippingLine is an owned shipping line of an Order.
type OrderShippingLine struct {
	Meta `json:"-"`

	ShippingID  int64           `json:"shipping_id"`
	MethodTitle string          `json:"method_title"`
	MethodID    string          `json:"method_id"`
	Total       decimal.Decimal `json:"total"`
	TotalTax    decimal.Decimal `json:"total_tax"`
}

func (*OrderShippingLine) Kind() Kind { return KindOrderShippingLine }

// OrderFeeLine is an owned fee line of an Order.
type OrderFeeLine struct {
	Meta `json:"-"`

	FeeID     int64           `json:"fee_id"`
	Name      string          `json:"name"`
	TaxStatus string          `json:"tax_status"`
	Total     decimal.Decimal `json:"total"`
	TotalTax  decimal.Decimal `json:"total_tax"`
}

func (*OrderFeeLine) Kind() Kind { return KindOrderFeeLine }

// OrderRefund is the owned condensed refund reference of an Order.
type OrderRefund struct {
	Meta `json:"-"`

	RefundID int64           `json:"refund_id"`
	Reason   string          `json:"reason"`
	Total    decimal.Decimal `json:"total"`
}

func (*OrderRefund) Kind() Kind { return KindOrderRefund }
