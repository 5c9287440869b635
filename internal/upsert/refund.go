package upsert

import (
	"fmt"

	"github.com/roach88/storesync/internal/model"
	"github.com/roach88/storesync/internal/storage"
)

// Refund merges r and its items into c.
func Refund(c *storage.Context, r model.Refund) (*storage.Refund, error) {
	local, err := findOrInsert[*storage.Refund](c, RefundKey(r.SiteID, r.RefundID), nil)
	if err != nil {
		return nil, fmt.Errorf("upsert refund %d: %w", r.RefundID, err)
	}

	local.SiteID = r.SiteID
	local.OrderID = r.OrderID
	local.RefundID = r.RefundID
	local.DateCreated = r.DateCreated
	local.Amount = r.Amount
	local.Reason = r.Reason
	local.RefundedByUserID = r.RefundedByUserID
	local.IsAutomated = r.IsAutomated
	local.CreateAutomated = r.CreateAutomated

	site, id := r.SiteID, r.RefundID
	err = reconcileChildren(c, local, r.Items,
		func(it model.RefundItem) storage.Key { return storage.IDKey(site, id, it.ItemID) },
		noErr(func(l *storage.RefundItem, it model.RefundItem) {
			l.ItemID = it.ItemID
			l.Name = it.Name
			l.ProductID = it.ProductID
			l.VariationID = it.VariationID
			l.Quantity = it.Quantity
			l.Price = it.Price
			l.SKU = it.SKU
			l.Subtotal = it.Subtotal
			l.Total = it.Total
			l.TotalTax = it.TotalTax
		}))
	if err != nil {
		return nil, fmt.Errorf("upsert refund %d items: %w", id, err)
	}
	return local, nil
}

// ReadRefund maps a local refund and its items back to a remote record.
func ReadRefund(c *storage.Context, r *storage.Refund) (model.Refund, error) {
	out := model.Refund{
		SiteID:           r.SiteID,
		OrderID:          r.OrderID,
		RefundID:         r.RefundID,
		DateCreated:      r.DateCreated,
		Amount:           r.Amount,
		Reason:           r.Reason,
		RefundedByUserID: r.RefundedByUserID,
		IsAutomated:      r.IsAutomated,
		CreateAutomated:  r.CreateAutomated,
	}
	items, err := storage.Children[*storage.RefundItem](c, r)
	if err != nil {
		return out, err
	}
	for _, it := range items {
		out.Items = append(out.Items, model.RefundItem{
			ItemID:      it.ItemID,
			Name:        it.Name,
			ProductID:   it.ProductID,
			VariationID: it.VariationID,
			Quantity:    it.Quantity,
			Price:       it.Price,
			SKU:         it.SKU,
			Subtotal:    it.Subtotal,
			Total:       it.Total,
			TotalTax:    it.TotalTax,
		})
	}
	return out, nil
}
