package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func putProductWithTags(c *Context, site, productID int64, tagIDs ...int64) error {
	prod, ok, err := Find[*Product](c, IDKey(site, productID))
	if err != nil {
		return err
	}
	if !ok {
		if prod, err = Insert[*Product](c, IDKey(site, productID), nil); err != nil {
			return err
		}
	}
	prod.SiteID, prod.ProductID = site, productID

	var tags []Entity
	for _, id := range tagIDs {
		tag, ok, err := Find[*ProductTag](c, IDKey(site, id))
		if err != nil {
			return err
		}
		if !ok {
			if tag, err = Insert[*ProductTag](c, IDKey(site, id), nil); err != nil {
				return err
			}
			tag.SiteID, tag.TagID = site, id
		}
		tags = append(tags, tag)
	}
	return c.SetMembers(prod, RelationProductTags, tags)
}

func TestLinks_UniquePerOwnerAndMember(t *testing.T) {
	p := openTestProvider(t)

	write(t, p.Writer(), func(c *Context) error {
		if err := putProductWithTags(c, 1, 100, 1, 2); err != nil {
			return err
		}
		prod, _, err := Find[*Product](c, IDKey(1, 100))
		if err != nil {
			return err
		}
		tag, _, err := Find[*ProductTag](c, IDKey(1, 1))
		if err != nil {
			return err
		}
		return c.Link(prod, RelationProductTags, tag)
	})
	assert.Equal(t, 2, countRows(t, p, "links"))

	cs := write(t, p.Writer(), func(c *Context) error { return putProductWithTags(c, 1, 100, 2, 1) })
	assert.True(t, cs.Empty())
	assert.Equal(t, 2, countRows(t, p, "links"))
}

func TestLinks_MembershipChangeUpdatesOwner(t *testing.T) {
	p := openTestProvider(t)
	write(t, p.Writer(), func(c *Context) error { return putProductWithTags(c, 1, 100, 1, 2) })

	prod, ok, err := Load[*Product](p.View(), IDKey(1, 100))
	require.NoError(t, err)
	require.True(t, ok)

	tags, err := LoadLinked[*ProductTag](p.View(), prod, RelationProductTags)
	require.NoError(t, err)
	require.Len(t, tags, 2)

	cs := write(t, p.Writer(), func(c *Context) error { return putProductWithTags(c, 1, 100, 2) })
	require.Len(t, cs.Updated, 1)
	assert.Equal(t, KindProduct, cs.Updated[0].Kind)
	assert.Equal(t, int64(2), cs.Updated[0].Generation)

	tags, err = LoadLinked[*ProductTag](p.View(), prod, RelationProductTags)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, int64(2), tags[0].TagID)
}

func TestLinks_RemovedWithMember(t *testing.T) {
	p := openTestProvider(t)
	write(t, p.Writer(), func(c *Context) error { return putProductWithTags(c, 1, 100, 1, 2) })

	write(t, p.Writer(), func(c *Context) error {
		tag, _, err := Find[*ProductTag](c, IDKey(1, 1))
		if err != nil {
			return err
		}
		return c.Delete(tag)
	})

	assert.Equal(t, 1, countRows(t, p, "links"))

	prod, _, err := Load[*Product](p.View(), IDKey(1, 100))
	require.NoError(t, err)
	tags, err := LoadLinked[*ProductTag](p.View(), prod, RelationProductTags)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, int64(2), tags[0].TagID)
}
