package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Refund is a refund issued against an order.
type Refund struct {
	SiteID           int64           `json:"site_id"`
	OrderID          int64           `json:"order_id"`
	RefundID         int64           `json:"refund_id"`
	DateCreated      time.Time       `json:"date_created"`
	Amount           decimal.Decimal `json:"amount"`
	Reason           string          `json:"reason"`
	RefundedByUserID int64           `json:"refunded_by"`
	IsAutomated      bool            `json:"refunded_payment"`
	CreateAutomated  bool            `json:"api_refund"`
	Items            []RefundItem    `json:"line_items"`
}

// RefundItem is one refunded line item.
type RefundItem struct {
	ItemID      int64           `json:"id"`
	Name        string          `json:"name"`
	ProductID   int64           `json:"product_id"`
	VariationID int64           `json:"variation_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	SKU         string          `json:"sku"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Total       decimal.Decimal `json:"total"`
	TotalTax    decimal.Decimal `json:"total_tax"`
}

// ItemsTotal returns the sum of the refunded items including tax, as a
// positive amount.
func (r Refund) ItemsTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range r.Items {
		sum = sum.Add(it.Total.Abs()).Add(it.TotalTax.Abs())
	}
	return sum
}
