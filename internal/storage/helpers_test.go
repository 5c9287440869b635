package storage

import (
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// openTestProvider opens a provider on a temporary database with
// sequential object IDs.
func openTestProvider(t *testing.T) *Provider {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cache.db")
	p, err := Open(path, WithIDGenerator(NewSequentialGenerator("obj")))
	require.NoError(t, err)
	t.Cleanup(func() { p.Close() })
	return p
}

// write runs fn on the writer and saves, returning the change set.
func write(t *testing.T, c *Context, fn func(c *Context) error) ChangeSet {
	t.Helper()
	var cs ChangeSet
	err := c.Perform(func(c *Context) error {
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

func putOrder(c *Context, site, id int64, status string, items ...int64) error {
	o, ok, err := Find[*Order](c, IDKey(site, id))
	if err != nil {
		return err
	}
	if !ok {
		o, err = Insert[*Order](c, IDKey(site, id), nil)
		if err != nil {
			return err
		}
	}
	o.SiteID = site
	o.OrderID = id
	o.Status = status
	o.Total = decimal.RequireFromString("10.00")
	for _, itemID := range items {
		item, err := Insert[*OrderItem](c, IDKey(site, id, itemID), o)
		if err != nil {
			return err
		}
		item.ItemID = itemID
		item.Quantity = decimal.NewFromInt(1)
	}
	return nil
}

func countRows(t *testing.T, p *Provider, table string) int {
	t.Helper()
	var n int
	require.NoError(t, p.DB().QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}
