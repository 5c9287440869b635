package upsert

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/roach88/storesync/internal/model"
	"github.com/roach88/storesync/internal/storage"
)

func openProvider(t *testing.T) *storage.Provider {
	t.Helper()
	p, err := storage.Open(filepath.Join(t.TempDir(), "cache.db"),
		storage.WithIDGenerator(storage.NewSequentialGenerator("obj")))
	require.NoError(t, err)
	t.Cleanup(func() { p.Close() })
	return p
}

func save(t *testing.T, p *storage.Provider, fn func(c *storage.Context) error) storage.ChangeSet {
	t.Helper()
	var cs storage.ChangeSet
	err := p.Writer().Perform(func(c *storage.Context) error {
		if err := fn(c); err != nil {
			return err
		}
		var err error
		cs, err = c.Save()
		return err
	})
	require.NoError(t, err)
	return cs
}

func count[T storage.Entity](t *testing.T, p *storage.Provider) int {
	t.Helper()
	n, err := storage.Count[T](p.View(), storage.Query{AnySite: true})
	require.NoError(t, err)
	return n
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func item(id int64, name, qty string) model.OrderItem {
	return model.OrderItem{ItemID: id, Name: name, Quantity: dec(qty), Total: dec("5.00")}
}

func order963(status model.OrderStatus, items ...model.OrderItem) model.Order {
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	return model.Order{
		SiteID:      1,
		OrderID:     963,
		Number:      "963",
		Status:      status,
		Currency:    "USD",
		DateCreated: created,
		Total:       dec("25.00"),
		Billing:     &model.Address{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"},
		Items:       items,
		TaxLines:    []model.OrderTaxLine{{TaxID: 1, RateCode: "US-CA", TotalTax: dec("1.50")}},
	}
}
