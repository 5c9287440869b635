package upsert

import (
	"fmt"

	"github.com/roach88/storesync/internal/model"
	"github.com/roach88/storesync/internal/storage"
)

// Order merges o and its line collections into c.
func Order(c *storage.Context, o model.Order) (*storage.Order, error) {
	local, err := findOrInsert[*storage.Order](c, OrderKey(o.SiteID, o.OrderID), nil)
	if err != nil {
		return nil, fmt.Errorf("upsert order %d: %w", o.OrderID, err)
	}

	local.SiteID = o.SiteID
	local.OrderID = o.OrderID
	local.ParentOrderID = o.ParentID
	local.CustomerID = o.CustomerID
	local.Number = o.Number
	local.Status = string(o.Status)
	local.Currency = o.Currency
	local.CustomerNote = o.CustomerNote
	local.DateCreated = o.DateCreated
	local.DateModified = o.DateModified
	local.DatePaid = o.DatePaid
	local.Discount = o.Discount
	local.ShippingTotal = o.ShippingTotal
	local.TotalTax = o.TotalTax
	local.Total = o.Total
	local.PaymentMethodID = o.PaymentMethodID
	local.PaymentMethodTitle = o.PaymentMethodTitle
	local.Billing = toLocalAddress(o.Billing)
	local.Shipping = toLocalAddress(o.Shipping)

	site, id := o.SiteID, o.OrderID
	steps := []func() error{
		func() error {
			return reconcileChildren(c, local, o.Items,
				func(r model.OrderItem) storage.Key { return storage.IDKey(site, id, r.ItemID) },
				noErr(applyOrderItem))
		},
		func() error {
			return reconcileChildren(c, local, o.TaxLines,
				func(r model.OrderTaxLine) storage.Key { return storage.IDKey(site, id, r.TaxID) },
				noErr(applyOrderTaxLine))
		},
		func() error {
			return reconcileChildren(c, local, o.Coupons,
				func(r model.OrderCouponLine) storage.Key { return storage.IDKey(site, id, r.CouponID) },
				noErr(applyOrderCouponLine))
		},
		func() error {
			return reconcileChildren(c, local, o.ShippingLines,
				func(r model.OrderShippingLine) storage.Key { return storage.IDKey(site, id, r.ShippingID) },
				noErr(applyOrderShippingLine))
		},
		func() error {
			return reconcileChildren(c, local, o.Fees,
				func(r model.OrderFeeLine) storage.Key { return storage.IDKey(site, id, r.FeeID) },
				noErr(applyOrderFeeLine))
		},
		func() error {
			return reconcileChildren(c, local, o.Refunds,
				func(r model.OrderRefundSummary) storage.Key { return storage.IDKey(site, id, r.RefundID) },
				noErr(applyOrderRefund))
		},
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, fmt.Errorf("upsert order %d: %w", o.OrderID, err)
		}
	}
	return local, nil
}

// Orders merges every order of a page.
func Orders(c *storage.Context, orders []model.Order) ([]*storage.Order, error) {
	out := make([]*storage.Order, 0, len(orders))
	for _, o := range orders {
		local, err := Order(c, o)
		if err != nil {
			return nil, err
		}
		out = append(out, local)
	}
	return out, nil
}

func toLocalAddress(a *model.Address) *storage.Address {
	if a == nil {
		return nil
	}
	out := storage.Address(*a)
	return &out
}

func applyOrderItem(l *storage.OrderItem, r model.OrderItem) {
	l.ItemID = r.ItemID
	l.Name = r.Name
	l.ProductID = r.ProductID
	l.VariationID = r.VariationID
	l.Quantity = r.Quantity
	l.Price = r.Price
	l.SKU = r.SKU
	l.Subtotal = r.Subtotal
	l.SubtotalTax = r.SubtotalTax
	l.Total = r.Total
	l.TotalTax = r.TotalTax
	l.Attributes = nil
	for _, a := range r.Attributes {
		l.Attributes = append(l.Attributes, storage.OrderItemAttribute(a))
	}
}

func applyOrderTaxLine(l *storage.OrderTaxLine, r model.OrderTaxLine) {
	l.TaxID = r.TaxID
	l.RateCode = r.RateCode
	l.RateID = r.RateID
	l.Label = r.Label
	l.IsCompound = r.IsCompound
	l.TotalTax = r.TotalTax
	l.TotalShippingTax = r.TotalShippingTax
	l.RatePercent = r.RatePercent
}

func applyOrderCouponLine(l *storage.OrderCouponLine, r model.OrderCouponLine) {
	l.CouponID = r.CouponID
	l.Code = r.Code
	l.Discount = r.Discount
	l.DiscountTax = r.DiscountTax
}

func applyOrderShippingLine(l *storage.OrderShippingLine, r model.OrderShippingLine) {
	l.ShippingID = r.ShippingID
	l.MethodTitle = r.MethodTitle
	l.MethodID = r.MethodID
	l.Total = r.Total
	l.TotalTax = r.TotalTax
}

func applyOrderFeeLine(l *storage.OrderFeeLine, r model.OrderFeeLine) {
	l.FeeID = r.FeeID
	l.Name = r.Name
	l.TaxStatus = r.TaxStatus
	l.Total = r.Total
	l.TotalTax = r.TotalTax
}

func applyOrderRefund(l *storage.OrderRefund, r model.OrderRefundSummary) {
	l.RefundID = r.RefundID
	l.Reason = r.Reason
	l.Total = r.Total
}

// ReadOrder maps a local order and its line collections back to a remote
// record.
func ReadOrder(c *storage.Context, o *storage.Order) (model.Order, error) {
	out := model.Order{
		SiteID:             o.SiteID,
		OrderID:            o.OrderID,
		ParentID:           o.ParentOrderID,
		CustomerID:         o.CustomerID,
		Number:             o.Number,
		Status:             model.OrderStatus(o.Status),
		Currency:           o.Currency,
		CustomerNote:       o.CustomerNote,
		DateCreated:        o.DateCreated,
		DateModified:       o.DateModified,
		DatePaid:           o.DatePaid,
		Discount:           o.Discount,
		ShippingTotal:      o.ShippingTotal,
		TotalTax:           o.TotalTax,
		Total:              o.Total,
		PaymentMethodID:    o.PaymentMethodID,
		PaymentMethodTitle: o.PaymentMethodTitle,
		Billing:            toModelAddress(o.Billing),
		Shipping:           toModelAddress(o.Shipping),
	}

	items, err := storage.Children[*storage.OrderItem](c, o)
	if err != nil {
		return out, err
	}
	for _, it := range items {
		item := model.OrderItem{
			ItemID:      it.ItemID,
			Name:        it.Name,
			ProductID:   it.ProductID,
			VariationID: it.VariationID,
			Quantity:    it.Quantity,
			Price:       it.Price,
			SKU:         it.SKU,
			Subtotal:    it.Subtotal,
			SubtotalTax: it.SubtotalTax,
			Total:       it.Total,
			TotalTax:    it.TotalTax,
		}
		for _, a := range it.Attributes {
			item.Attributes = append(item.Attributes, model.OrderItemAttribute(a))
		}
		out.Items = append(out.Items, item)
	}

	taxes, err := storage.Children[*storage.OrderTaxLine](c, o)
	if err != nil {
		return out, err
	}
	for _, t := range taxes {
		out.TaxLines = append(out.TaxLines, model.OrderTaxLine{
			TaxID:            t.TaxID,
			RateCode:         t.RateCode,
			RateID:           t.RateID,
			Label:            t.Label,
			IsCompound:       t.IsCompound,
			TotalTax:         t.TotalTax,
			TotalShippingTax: t.TotalShippingTax,
			RatePercent:      t.RatePercent,
		})
	}

	coupons, err := storage.Children[*storage.OrderCouponLine](c, o)
	if err != nil {
		return out, err
	}
	for _, cl := range coupons {
		out.Coupons = append(out.Coupons, model.OrderCouponLine{
			CouponID:    cl.CouponID,
			Code:        cl.Code,
			Discount:    cl.Discount,
			DiscountTax: cl.DiscountTax,
		})
	}

	shipping, err := storage.Children[*storage.OrderShippingLine](c, o)
	if err != nil {
		return out, err
	}
	for _, s := range shipping {
		out.ShippingLines = append(out.ShippingLines, model.OrderShippingLine{
			ShippingID:  s.ShippingID,
			MethodTitle: s.MethodTitle,
			MethodID:    s.MethodID,
			Total:       s.Total,
			TotalTax:    s.TotalTax,
		})
	}

	fees, err := storage.Children[*storage.OrderFeeLine](c, o)
	if err != nil {
		return out, err
	}
	for _, f := range fees {
		out.Fees = append(out.Fees, model.OrderFeeLine{
			FeeID:     f.FeeID,
			Name:      f.Name,
			TaxStatus: f.TaxStatus,
			Total:     f.Total,
			TotalTax:  f.TotalTax,
		})
	}

	refunds, err := storage.Children[*storage.OrderRefund](c, o)
	if err != nil {
		return out, err
	}
	for _, r := range refunds {
		out.Refunds = append(out.Refunds, model.OrderRefundSummary{
			RefundID: r.RefundID,
			Reason:   r.Reason,
			Total:    r.Total,
		})
	}
	return out, nil
}

// ReadOrders maps a list of local orders.
func ReadOrders(c *storage.Context, orders []*storage.Order) ([]model.Order, error) {
	out := make([]model.Order, 0, len(orders))
	for _, o := range orders {
		ro, err := ReadOrder(c, o)
		if err != nil {
			return nil, err
		}
		out = append(out, ro)
	}
	return out, nil
}

func toModelAddress(a *storage.Address) *model.Address {
	if a == nil {
		return nil
	}
	out := model.Address(*a)
	return &out
}

