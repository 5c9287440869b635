package upsert

import (
	"fmt"
	"slices"

	"github.com/roach88/storesync/internal/model"
	"github.com/roach88/storesync/internal/storage"
)

// Product merges p into c. Placeholder products are skipped and yield a
// nil entity.
func Product(c *storage.Context, p model.Product) (*storage.Product, error) {
	if p.IsPlaceholder() {
		return nil, nil
	}

	local, err := findOrInsert[*storage.Product](c, ProductKey(p.SiteID, p.ProductID), nil)
	if err != nil {
		return nil, fmt.Errorf("upsert product %d: %w", p.ProductID, err)
	}

	local.SiteID = p.SiteID
	local.ProductID = p.ProductID
	local.Name = p.Name
	local.Slug = p.Slug
	local.Permalink = p.Permalink
	local.ProductType = p.ProductType
	local.Status = string(p.Status)
	local.Featured = p.Featured
	local.Description = p.Description
	local.ShortDescription = p.ShortDescription
	local.SKU = p.SKU
	local.Price = p.Price
	local.RegularPrice = p.RegularPrice
	local.SalePrice = p.SalePrice
	local.OnSale = p.OnSale
	local.ManageStock = p.ManageStock
	local.StockQuantity = p.StockQuantity
	local.StockStatus = p.StockStatus
	local.Weight = p.Weight
	local.Dimensions = storage.Dimensions(p.Dimensions)
	local.ShippingClass = p.ShippingClass
	local.ShippingClassID = p.ShippingClassID
	local.TotalSales = p.TotalSales
	local.DateCreated = p.DateCreated
	local.DateModified = p.DateModified
	local.Variations = slices.Clone(p.Variations)

	site, id := p.SiteID, p.ProductID
	err = reconcileChildren(c, local, p.Images,
		func(r model.ProductImage) storage.Key { return storage.IDKey(site, id, r.ImageID) },
		noErr(applyProductImage))
	if err != nil {
		return nil, fmt.Errorf("upsert product %d images: %w", id, err)
	}

	err = reconcileChildren(c, local, p.Attributes,
		func(r model.ProductAttr) storage.Key { return productAttributeKey(site, id, r) },
		noErr(applyProductAttribute))
	if err != nil {
		return nil, fmt.Errorf("upsert product %d attributes: %w", id, err)
	}

	local.ShippingClassRef = ""
	if p.ShippingClassID != 0 {
		class, ok, err := storage.Find[*storage.ShippingClass](c, ShippingClassKey(site, p.ShippingClassID))
		if err != nil {
			return nil, fmt.Errorf("upsert product %d shipping class: %w", id, err)
		}
		if ok {
			local.ShippingClassRef = class.ObjectID()
		}
	}

	tags := make([]storage.Entity, 0, len(p.Tags))
	for _, t := range p.Tags {
		t.SiteID = site
		tag, err := ProductTag(c, t)
		if err != nil {
			return nil, fmt.Errorf("upsert product %d tags: %w", id, err)
		}
		tags = append(tags, tag)
	}
	if err := c.SetMembers(local, storage.RelationProductTags, tags); err != nil {
		return nil, fmt.Errorf("upsert product %d tags: %w", id, err)
	}

	return local, nil
}

// Products merges every product of a page, skipping placeholders.
func Products(c *storage.Context, products []model.Product) ([]*storage.Product, error) {
	out := make([]*storage.Product, 0, len(products))
	for _, p := range products {
		local, err := Product(c, p)
		if err != nil {
			return nil, err
		}
		if local != nil {
			out = append(out, local)
		}
	}
	return out, nil
}

func applyProductImage(l *storage.ProductImage, r model.ProductImage) {
	l.ImageID = r.ImageID
	l.DateCreated = r.DateCreated
	l.DateModified = r.DateModified
	l.Src = r.Src
	l.Name = r.Name
	l.Alt = r.Alt
}

func applyProductAttribute(l *storage.ProductAttribute, r model.ProductAttr) {
	l.AttributeID = r.AttributeID
	l.Name = r.Name
	l.Position = r.Position
	l.Visible = r.Visible
	l.Variation = r.Variation
	l.Options = slices.Clone(r.Options)
}

// ReadProduct maps a local product with its images, attributes and tags
// back to a remote record.
func ReadProduct(c *storage.Context, p *storage.Product) (model.Product, error) {
	out := model.Product{
		SiteID:           p.SiteID,
		ProductID:        p.ProductID,
		Name:             p.Name,
		Slug:             p.Slug,
		Permalink:        p.Permalink,
		ProductType:      p.ProductType,
		Status:           model.ProductStatus(p.Status),
		Featured:         p.Featured,
		Description:      p.Description,
		ShortDescription: p.ShortDescription,
		SKU:              p.SKU,
		Price:            p.Price,
		RegularPrice:     p.RegularPrice,
		SalePrice:        p.SalePrice,
		OnSale:           p.OnSale,
		ManageStock:      p.ManageStock,
		StockQuantity:    p.StockQuantity,
		StockStatus:      p.StockStatus,
		Weight:           p.Weight,
		Dimensions:       model.Dimensions(p.Dimensions),
		ShippingClass:    p.ShippingClass,
		ShippingClassID:  p.ShippingClassID,
		TotalSales:       p.TotalSales,
		DateCreated:      p.DateCreated,
		DateModified:     p.DateModified,
		Variations:       slices.Clone(p.Variations),
	}

	images, err := storage.Children[*storage.ProductImage](c, p)
	if err != nil {
		return out, err
	}
	for _, img := range images {
		out.Images = append(out.Images, model.ProductImage{
			ImageID:      img.ImageID,
			DateCreated:  img.DateCreated,
			DateModified: img.DateModified,
			Src:          img.Src,
			Name:         img.Name,
			Alt:          img.Alt,
		})
	}

	attrs, err := storage.Children[*storage.ProductAttribute](c, p)
	if err != nil {
		return out, err
	}
	slices.SortStableFunc(attrs, func(a, b *storage.ProductAttribute) int {
		return int(a.Position - b.Position)
	})
	for _, a := range attrs {
		out.Attributes = append(out.Attributes, model.ProductAttr{
			AttributeID: a.AttributeID,
			Name:        a.Name,
			Position:    a.Position,
			Visible:     a.Visible,
			Variation:   a.Variation,
			Options:     slices.Clone(a.Options),
		})
	}

	tags, err := storage.Linked[*storage.ProductTag](c, p, storage.RelationProductTags)
	if err != nil {
		return out, err
	}
	for _, t := range tags {
		out.Tags = append(out.Tags, ReadProductTag(t))
	}
	return out, nil
}

// ReadProducts maps a list of local products.
func ReadProducts(c *storage.Context, products []*storage.Product) ([]model.Product, error) {
	out := make([]model.Product, 0, len(products))
	for _, p := range products {
		rp, err := ReadProduct(c, p)
		if err != nil {
			return nil, err
		}
		out = append(out, rp)
	}
	return out, nil
}
