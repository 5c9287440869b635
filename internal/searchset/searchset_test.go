package searchset

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/storesync/internal/model"
	"github.com/roach88/storesync/internal/storage"
	"github.com/roach88/storesync/internal/upsert"
)

func openProvider(t *testing.T) *storage.Provider {
	t.Helper()
	p, err := storage.Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { p.Close() })
	return p
}

func countRows(t *testing.T, p *storage.Provider, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, p.DB().QueryRow(query, args...).Scan(&n))
	return n
}

// recordOrders upserts the orders and records them as the results of key.
func recordOrders(c *storage.Context, key Key, mode Mode, ids ...int64) error {
	members := make([]storage.Entity, 0, len(ids))
	for _, id := range ids {
		o, err := upsert.Order(c, model.Order{SiteID: key.SiteID, OrderID: id, Number: "n"})
		if err != nil {
			return err
		}
		members = append(members, o)
	}
	if _, err := Record(c, key, members, mode); err != nil {
		return err
	}
	_, err := c.Save()
	return err
}

func resultIDs(t *testing.T, p *storage.Provider, key Key) []int64 {
	t.Helper()
	var ids []int64
	require.NoError(t, p.View().Read(func(c *storage.Context) error {
		orders, err := Results[*storage.Order](c, key)
		for _, o := range orders {
			ids = append(ids, o.OrderID)
		}
		return err
	}))
	return ids
}

func TestNormalizeKeyword(t *testing.T) {
	assert.Equal(t, "caf\u00e9", NormalizeKeyword("  cafe\u0301 "))
	assert.Equal(t,
		Key{SiteID: 1, Target: storage.KindOrder, Keyword: "caf\u00e9"}.StorageKey(),
		Key{SiteID: 1, Target: storage.KindOrder, Keyword: "cafe\u0301\t"}.StorageKey())
}

func TestStorageKey_FilterSeparated(t *testing.T) {
	a := Key{SiteID: 1, Target: storage.KindProduct, Keyword: "b/c", Filter: "a"}
	b := Key{SiteID: 1, Target: storage.KindProduct, Keyword: "c", Filter: "a/b"}
	assert.NotEqual(t, a.StorageKey(), b.StorageKey())
}

func TestRecord_RepeatedSearchDoesNotDuplicate(t *testing.T) {
	p := openProvider(t)
	key := Key{SiteID: 1, Target: storage.KindOrder, Keyword: "gift"}

	var changes []storage.ChangeSet
	p.View().Subscribe(func(cs storage.ChangeSet) { changes = append(changes, cs) })

	for range 2 {
		require.NoError(t, p.Writer().Perform(func(c *storage.Context) error {
			return recordOrders(c, key, Replace, 1, 2)
		}))
	}

	assert.Equal(t, 1, countRows(t, p, `SELECT COUNT(*) FROM objects WHERE kind = ?`, string(storage.KindSearchResults)))
	assert.Equal(t, 2, countRows(t, p, `SELECT COUNT(*) FROM links WHERE relation = ?`, string(storage.RelationSearchMembers)))
	assert.Len(t, changes, 1)
	assert.Equal(t, []int64{1, 2}, resultIDs(t, p, key))
}

func TestRecord_ReplaceAndAppend(t *testing.T) {
	p := openProvider(t)
	key := Key{SiteID: 1, Target: storage.KindOrder, Keyword: "gift"}

	steps := []struct {
		mode Mode
		ids  []int64
		want []int64
	}{
		{Replace, []int64{1, 2}, []int64{1, 2}},
		{Append, []int64{2, 3}, []int64{1, 2, 3}},
		{Replace, []int64{3, 4}, []int64{3, 4}},
	}
	for _, s := range steps {
		require.NoError(t, p.Writer().Perform(func(c *storage.Context) error {
			return recordOrders(c, key, s.mode, s.ids...)
		}))
		assert.Equal(t, s.want, resultIDs(t, p, key), "after %s %v", s.mode, s.ids)
	}
}

func TestRecord_SeparateKeys(t *testing.T) {
	p := openProvider(t)
	gift := Key{SiteID: 1, Target: storage.KindOrder, Keyword: "gift"}
	rush := Key{SiteID: 1, Target: storage.KindOrder, Keyword: "rush"}

	require.NoError(t, p.Writer().Perform(func(c *storage.Context) error {
		return recordOrders(c, gift, Replace, 1)
	}))
	require.NoError(t, p.Writer().Perform(func(c *storage.Context) error {
		return recordOrders(c, rush, Replace, 1, 2)
	}))

	assert.Equal(t, []int64{1}, resultIDs(t, p, gift))
	assert.Equal(t, []int64{1, 2}, resultIDs(t, p, rush))
	assert.Nil(t, resultIDs(t, p, Key{SiteID: 1, Target: storage.KindOrder, Keyword: "none"}))
}

func TestRecord_RejectsWrongMemberKind(t *testing.T) {
	p := openProvider(t)
	key := Key{SiteID: 1, Target: storage.KindProduct, Keyword: "gift"}

	err := p.Writer().Perform(func(c *storage.Context) error {
		return recordOrders(c, key, Replace, 1)
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "want product")
}

func TestModeForPage(t *testing.T) {
	assert.Equal(t, Replace, ModeForPage(true))
	assert.Equal(t, Append, ModeForPage(false))
}
