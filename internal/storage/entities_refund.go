package storage

import (
	"time"

	"github.com/shopspring/decimal"
)

// Refund is a cached refund. Its items are owned rows.
type Refund struct {
	Meta `json:"-"`

	SiteID           int64           `json:"site_id"`
	OrderID          int64           `json:"order_id"`
	RefundID         int64           `json:"refund_id"`
	DateCreated      time.Time       `json:"date_created"`
	Amount           decimal.Decimal `json:"amount"`
	Reason           string          `json:"reason"`
	RefundedByUserID int64           `json:"refunded_by"`
	IsAutomated      bool            `json:"is_automated"`
	CreateAutomated  bool            `json:"create_automated"`
}

func (*Refund) Kind() Kind { return KindRefund }

// RefundItem is an owned item of a Refund.
type RefundItem struct {
	Meta `json:"-"`

	ItemID      int64           `json:"item_id"`
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

func (*RefundItem) Kind() Kind { return KindRefundItem }
