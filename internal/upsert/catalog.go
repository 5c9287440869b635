package upsert

import (
	"fmt"

	"github.com/roach88/storesync/internal/model"
	"github.com/roach88/storesync/internal/storage"
)

// ProductTag merges a site-wide tag.
func ProductTag(c *storage.Context, t model.ProductTag) (*storage.ProductTag, error) {
	local, err := findOrInsert[*storage.ProductTag](c, ProductTagKey(t.SiteID, t.TagID), nil)
	if err != nil {
		return nil, fmt.Errorf("upsert product tag %d: %w", t.TagID, err)
	}
	local.SiteID = t.SiteID
	local.TagID = t.TagID
	local.Name = t.Name
	local.Slug = t.Slug
	return local, nil
}

// ReadProductTag maps a local tag back to a remote record.
func ReadProductTag(t *storage.ProductTag) model.ProductTag {
	return model.ProductTag{SiteID: t.SiteID, TagID: t.TagID, Name: t.Name, Slug: t.Slug}
}

// StoreAttribute merges a site-wide attribute definition.
func StoreAttribute(c *storage.Context, a model.StoreAttribute) (*storage.StoreAttribute, error) {
	local, err := findOrInsert[*storage.StoreAttribute](c, StoreAttributeKey(a.SiteID, a.AttributeID), nil)
	if err != nil {
		return nil, fmt.Errorf("upsert attribute %d: %w", a.AttributeID, err)
	}
	local.SiteID = a.SiteID
	local.AttributeID = a.AttributeID
	local.Name = a.Name
	local.Slug = a.Slug
	local.Type = a.Type
	local.OrderBy = a.OrderBy
	local.HasArchives = a.HasArchives
	return local, nil
}

// ReadStoreAttribute maps a local attribute definition back to a remote
// record.
func ReadStoreAttribute(a *storage.StoreAttribute) model.StoreAttribute {
	return model.StoreAttribute{
		SiteID:      a.SiteID,
		AttributeID: a.AttributeID,
		Name:        a.Name,
		Slug:        a.Slug,
		Type:        a.Type,
		OrderBy:     a.OrderBy,
		HasArchives: a.HasArchives,
	}
}

// ShippingClass merges a shipping class.
func ShippingClass(c *storage.Context, sc model.ShippingClass) (*storage.ShippingClass, error) {
	local, err := findOrInsert[*storage.ShippingClass](c, ShippingClassKey(sc.SiteID, sc.ShippingClassID), nil)
	if err != nil {
		return nil, fmt.Errorf("upsert shipping class %d: %w", sc.ShippingClassID, err)
	}
	local.SiteID = sc.SiteID
	local.ShippingClassID = sc.ShippingClassID
	local.Name = sc.Name
	local.Slug = sc.Slug
	local.Description = sc.Description
	local.Count = sc.Count
	return local, nil
}

// ReadShippingClass maps a local shipping class back to a remote record.
func ReadShippingClass(sc *storage.ShippingClass) model.ShippingClass {
	return model.ShippingClass{
		SiteID:          sc.SiteID,
		ShippingClassID: sc.ShippingClassID,
		Name:            sc.Name,
		Slug:            sc.Slug,
		Description:     sc.Description,
		Count:           sc.Count,
	}
}
