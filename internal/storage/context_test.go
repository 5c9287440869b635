package storage

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsert_SaveAndLoad(t *testing.T) {
	p := openTestProvider(t)

	cs := write(t, p.Writer(), func(c *Context) error {
		return putOrder(c, 1, 963, "processing", 1, 2)
	})
	assert.Len(t, cs.Inserted, 3)
	assert.Empty(t, cs.Updated)
	assert.Empty(t, cs.Deleted)
	assert.Equal(t, int64(1), cs.Seq)

	o, ok, err := Load[*Order](p.View(), IDKey(1, 963))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, ObjectID("obj-000001"), o.ObjectID())
	assert.Equal(t, "processing", o.Status)

	var items []*OrderItem
	require.NoError(t, p.View().Read(func(c *Context) error {
		var err error
		items, err = Children[*OrderItem](c, o)
		return err
	}))
	require.Len(t, items, 2)
	assert.Equal(t, int64(1), items[0].ItemID)
	assert.Equal(t, o.ObjectID(), items[0].ParentID())
}

func TestInsert_DuplicateKey(t *testing.T) {
	p := openTestProvider(t)
	write(t, p.Writer(), func(c *Context) error { return putOrder(c, 1, 1, "pending") })

	err := p.Writer().Perform(func(c *Context) error {
		_, err := Insert[*Order](c, IDKey(1, 1), nil)
		return err
	})
	assert.True(t, IsDuplicateKey(err))
}

func TestView_RejectsWrites(t *testing.T) {
	p := openTestProvider(t)

	err := p.View().Read(func(c *Context) error {
		_, err := Insert[*Order](c, IDKey(1, 1), nil)
		return err
	})
	assert.ErrorIs(t, err, ErrReadOnlyContext)

	err = p.View().Read(func(c *Context) error {
		_, err := c.Save()
		return err
	})
	assert.ErrorIs(t, err, ErrReadOnlyContext)
}

func TestSave_UnchangedContentPublishesOnce(t *testing.T) {
	p := openTestProvider(t)

	var mu sync.Mutex
	var notified []ChangeSet
	cancel := p.View().Subscribe(func(cs ChangeSet) {
		mu.Lock()
		defer mu.Unlock()
		notified = append(notified, cs)
	})
	defer cancel()

	write(t, p.Writer(), func(c *Context) error { return putOrder(c, 1, 963, "processing") })
	second := write(t, p.Writer(), func(c *Context) error { return putOrder(c, 1, 963, "processing") })

	assert.True(t, second.Empty())
	assert.Equal(t, 1, countRows(t, p, "objects"))

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, notified, 1)
}

func TestSubscribe_ObserverQueuesWriterWork(t *testing.T) {
	p := openTestProvider(t)

	var once sync.Once
	queued := make(chan error, 1)
	cancel := p.View().Subscribe(func(ChangeSet) {
		once.Do(func() {
			queued <- p.Writer().PerformAsync(func(c *Context) error {
				if err := putOrder(c, 1, 964, "pending"); err != nil {
					return err
				}
				_, err := c.Save()
				return err
			})
		})
	})
	defer cancel()

	write(t, p.Writer(), func(c *Context) error { return putOrder(c, 1, 963, "processing") })
	require.NoError(t, <-queued)
	require.Eventually(t, func() bool {
		var n int
		return p.DB().QueryRow("SELECT COUNT(*) FROM objects").Scan(&n) == nil && n == 2
	}, 5*time.Second, 5*time.Millisecond)
}

func TestSave_SameContentFromFreshContextIsNoChange(t *testing.T) {
	p := openTestProvider(t)
	write(t, p.Writer(), func(c *Context) error { return putOrder(c, 1, 963, "processing") })

	other := p.NewDerivedContext("other")
	defer other.Close()
	cs := write(t, other, func(c *Context) error { return putOrder(c, 1, 963, "processing") })

	assert.True(t, cs.Empty())
}

func TestView_IdentityStableAcrossSaves(t *testing.T) {
	p := openTestProvider(t)
	write(t, p.Writer(), func(c *Context) error { return putOrder(c, 1, 963, "processing") })

	before, ok, err := Load[*Order](p.View(), IDKey(1, 963))
	require.NoError(t, err)
	require.True(t, ok)

	cs := write(t, p.Writer(), func(c *Context) error { return putOrder(c, 1, 963, "completed") })
	require.Len(t, cs.Updated, 1)
	assert.Equal(t, int64(2), cs.Updated[0].Generation)

	after, ok, err := Load[*Order](p.View(), IDKey(1, 963))
	require.NoError(t, err)
	require.True(t, ok)

	assert.Same(t, before, after)
	require.NoError(t, p.View().Read(func(*Context) error {
		assert.Equal(t, "completed", after.Status)
		assert.Equal(t, int64(2), after.Generation())
		return nil
	}))
}

func TestDelete_CascadesOwnedRows(t *testing.T) {
	p := openTestProvider(t)
	write(t, p.Writer(), func(c *Context) error { return putOrder(c, 1, 963, "processing", 1, 2) })

	item, ok, err := Load[*OrderItem](p.View(), IDKey(1, 963, 1))
	require.NoError(t, err)
	require.True(t, ok)

	cs := write(t, p.Writer(), func(c *Context) error {
		o, ok, err := Find[*Order](c, IDKey(1, 963))
		if err != nil || !ok {
			return errors.Join(err, errors.New("order missing"))
		}
		return c.Delete(o)
	})

	assert.Len(t, cs.Deleted, 3)
	assert.Equal(t, 0, countRows(t, p, "objects"))
	assert.True(t, item.IsDeleted())

	n, err := Count[*OrderItem](p.View(), Query{SiteID: 1})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDelete_UnsavedObjectIsForgotten(t *testing.T) {
	p := openTestProvider(t)

	cs := write(t, p.Writer(), func(c *Context) error {
		if err := putOrder(c, 1, 5, "pending", 1); err != nil {
			return err
		}
		o, _, err := Find[*Order](c, IDKey(1, 5))
		if err != nil {
			return err
		}
		return c.Delete(o)
	})

	assert.True(t, cs.Empty())
	assert.Equal(t, 0, countRows(t, p, "objects"))
}

func TestFetchAll_MergesUnsavedState(t *testing.T) {
	p := openTestProvider(t)
	write(t, p.Writer(), func(c *Context) error {
		for _, id := range []int64{3, 1, 2} {
			if err := putOrder(c, 1, id, "pending"); err != nil {
				return err
			}
		}
		return putOrder(c, 2, 10, "pending")
	})

	var ids []int64
	err := p.Writer().Perform(func(c *Context) error {
		two, _, err := Find[*Order](c, IDKey(1, 2))
		if err != nil {
			return err
		}
		if err := c.Delete(two); err != nil {
			return err
		}
		if err := putOrder(c, 1, 11, "pending"); err != nil {
			return err
		}
		orders, err := FetchAll[*Order](c, Query{SiteID: 1})
		for _, o := range orders {
			ids = append(ids, o.OrderID)
		}
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3, 11}, ids)
}

func TestPerform_DiscardsChangesOnError(t *testing.T) {
	p := openTestProvider(t)
	boom := errors.New("boom")

	err := p.Writer().Perform(func(c *Context) error {
		if err := putOrder(c, 1, 1, "pending"); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	cs := write(t, p.Writer(), func(*Context) error { return nil })
	assert.True(t, cs.Empty())
	assert.Equal(t, 0, countRows(t, p, "objects"))
}

func TestPerform_ClosedContext(t *testing.T) {
	p := openTestProvider(t)
	c := p.NewDerivedContext("short-lived")
	c.Close()

	err := c.Perform(func(*Context) error { return nil })
	assert.ErrorIs(t, err, ErrContextClosed)
}

func TestPerform_FIFO(t *testing.T) {
	p := openTestProvider(t)
	c := p.NewDerivedContext("fifo")
	defer c.Close()

	var order []int
	for i := 0; i < 10; i++ {
		require.NoError(t, c.PerformAsync(func(*Context) error {
			order = append(order, i)
			return nil
		}))
	}
	require.NoError(t, c.Perform(func(*Context) error { return nil }))
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, order)
}

func TestDerived_ConcurrentInsertOfSameKey(t *testing.T) {
	p := openTestProvider(t)
	a := p.NewDerivedContext("a")
	defer a.Close()
	b := p.NewDerivedContext("b")
	defer b.Close()

	// Both contexts stage the key before either commits.
	require.NoError(t, a.Perform(func(c *Context) error { return putOrder(c, 1, 7, "pending") }))
	require.NoError(t, b.Perform(func(c *Context) error { return putOrder(c, 1, 7, "completed") }))

	first := write(t, a, func(*Context) error { return nil })
	second := write(t, b, func(*Context) error { return nil })

	assert.Len(t, first.Inserted, 1)
	require.Len(t, second.Updated, 1)
	assert.Equal(t, first.Inserted[0].ID, second.Updated[0].ID)
	assert.Equal(t, 1, countRows(t, p, "objects"))

	o, ok, err := Load[*Order](p.View(), IDKey(1, 7))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "completed", o.Status)
}

func TestDerived_MergesCommittedChanges(t *testing.T) {
	p := openTestProvider(t)
	write(t, p.Writer(), func(c *Context) error { return putOrder(c, 1, 9, "pending") })

	reader := p.NewDerivedContext("reader")
	defer reader.Close()

	var held *Order
	require.NoError(t, reader.Perform(func(c *Context) error {
		var err error
		held, _, err = Find[*Order](c, IDKey(1, 9))
		return err
	}))

	write(t, p.Writer(), func(c *Context) error { return putOrder(c, 1, 9, "completed") })

	// The merge was queued on reader before this call.
	require.NoError(t, reader.Perform(func(c *Context) error {
		o, _, err := Find[*Order](c, IDKey(1, 9))
		if err != nil {
			return err
		}
		assert.Same(t, held, o)
		assert.Equal(t, "completed", o.Status)
		return nil
	}))
}
