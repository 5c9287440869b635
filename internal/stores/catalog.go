package stores

import (
	"context"
	"fmt"

	"github.com/roach88/storesync/internal/dispatch"
	"github.com/roach88/storesync/internal/model"
	"github.com/roach88/storesync/internal/pagination"
	"github.com/roach88/storesync/internal/remote"
	"github.com/roach88/storesync/internal/storage"
	"github.com/roach88/storesync/internal/upsert"
)

type productTagsAction struct{}

func (productTagsAction) ActionType() dispatch.ActionType { return ProductTagsActions }

// SynchronizeAllProductTags walks every page of a site's tags, then
// deletes cached tags that no page returned. Completes with the number of
// tags seen.
type SynchronizeAllProductTags struct {
	productTagsAction
	Site       int64 `validate:"gt=0"`
	OnComplete dispatch.Completion[int]
}

// AddProductTags creates tags by name. Existing names are returned as is.
type AddProductTags struct {
	productTagsAction
	Site       int64    `validate:"gt=0"`
	Names      []string `validate:"min=1,dive,required"`
	OnComplete dispatch.Completion[[]model.ProductTag]
}

// DeleteProductTags deletes tags by ID.
type DeleteProductTags struct {
	productTagsAction
	Site       int64   `validate:"gt=0"`
	IDs        []int64 `validate:"min=1,dive,gt=0"`
	OnComplete dispatch.Completion[[]model.ProductTag]
}

// ResetStoredProductTags deletes every cached tag.
type ResetStoredProductTags struct {
	productTagsAction
	OnComplete dispatch.Completion[int]
}

// ProductTagStore processes ProductTagsActions.
type ProductTagStore struct {
	*Base
	remote remote.ProductTagsRemote
}

// NewProductTagStore creates the tag store and registers it with d.
func NewProductTagStore(d *dispatch.Dispatcher, p *storage.Provider, r remote.ProductTagsRemote, opts ...Option) (*ProductTagStore, error) {
	s := &ProductTagStore{Base: newBase(d, p, string(ProductTagsActions), opts...), remote: r}
	if err := s.register(s, ProductTagsActions); err != nil {
		return nil, err
	}
	return s, nil
}

// OnAction implements dispatch.Processor.
func (s *ProductTagStore) OnAction(a dispatch.Action) {
	switch a := a.(type) {
	case SynchronizeAllProductTags:
		submit(s.Base, "SynchronizeAllProductTags", scope(a.Site), a, a.OnComplete,
			func(ctx context.Context) (int, error) { return s.synchronizeAll(ctx, a) })
	case AddProductTags:
		submit(s.Base, "AddProductTags", scope(a.Site), a, a.OnComplete,
			func(ctx context.Context) ([]model.ProductTag, error) { return s.add(ctx, a) })
	case DeleteProductTags:
		submit(s.Base, "DeleteProductTags", scope(a.Site), a, a.OnComplete,
			func(ctx context.Context) ([]model.ProductTag, error) { return s.delete(ctx, a) })
	case ResetStoredProductTags:
		submit(s.Base, "ResetStoredProductTags", "", a, a.OnComplete,
			func(ctx context.Context) (int, error) { return s.reset(ctx) })
	default:
		s.logger.Warn("unhandled action", "action", fmt.Sprintf("%T", a))
	}
}

func tagKey(t model.ProductTag) storage.Key { return upsert.ProductTagKey(t.SiteID, t.TagID) }

func (s *ProductTagStore) synchronizeAll(ctx context.Context, a SynchronizeAllProductTags) (int, error) {
	var all []model.ProductTag
	for page := s.window.FirstPage; ; page++ {
		tags, err := s.remote.LoadProductTags(ctx, a.Site, page, s.fullPageSize)
		if err != nil {
			return 0, err
		}
		all = append(all, tags...)
		if !s.window.HasNextPage(len(tags), s.fullPageSize) {
			break
		}
	}

	var deleted int
	err := s.write(ctx, func(c *storage.Context) error {
		var err error
		deleted, err = pagination.ReconcileSyncPage[*storage.ProductTag](c, s.window, s.window.FirstPage,
			storage.Query{SiteID: a.Site}, pagination.Keys(all, tagKey))
		if err != nil {
			return err
		}
		for _, t := range all {
			if _, err := upsert.ProductTag(c, t); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("synchronize product tags: %w", err)
	}
	s.logger.Info("product tags synced", "site", a.Site, "count", len(all), "deleted", deleted)
	return len(all), nil
}

func (s *ProductTagStore) add(ctx context.Context, a AddProductTags) ([]model.ProductTag, error) {
	tags, err := s.remote.AddProductTags(ctx, a.Site, a.Names)
	if err != nil {
		return nil, err
	}
	out := make([]model.ProductTag, 0, len(tags))
	err = s.write(ctx, func(c *storage.Context) error {
		for _, t := range tags {
			local, err := upsert.ProductTag(c, t)
			if err != nil {
				return err
			}
			out = append(out, upsert.ReadProductTag(local))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("add product tags: %w", err)
	}
	return out, nil
}

func (s *ProductTagStore) delete(ctx context.Context, a DeleteProductTags) ([]model.ProductTag, error) {
	deleted, err := s.remote.DeleteProductTags(ctx, a.Site, a.IDs)
	if err != nil {
		return nil, err
	}
	err = s.write(ctx, func(c *storage.Context) error {
		for _, t := range deleted {
			if _, err := deleteKey[*storage.ProductTag](c, tagKey(t)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("delete product tags: %w", err)
	}
	return deleted, nil
}

func (s *ProductTagStore) reset(ctx context.Context) (int, error) {
	var n int
	err := s.write(ctx, func(c *storage.Context) error {
		var err error
		n, err = deleteAll[*storage.ProductTag](c, storage.Query{AnySite: true})
		return err
	})
	return n, err
}

type productAttributesAction struct{}

func (productAttributesAction) ActionType() dispatch.ActionType { return ProductAttributesActions }

// SynchronizeProductAttributes replaces a site's attribute definitions.
type SynchronizeProductAttributes struct {
	productAttributesAction
	Site       int64 `validate:"gt=0"`
	OnComplete dispatch.Completion[[]model.StoreAttribute]
}

// AddProductAttribute creates an attribute definition.
type AddProductAttribute struct {
	productAttributesAction
	Site       int64  `validate:"gt=0"`
	Name       string `validate:"required"`
	OnComplete dispatch.Completion[model.StoreAttribute]
}

// UpdateProductAttribute renames an attribute definition.
type UpdateProductAttribute struct {
	productAttributesAction
	Site        int64  `validate:"gt=0"`
	AttributeID int64  `validate:"gt=0"`
	Name        string `validate:"required"`
	OnComplete  dispatch.Completion[model.StoreAttribute]
}

// DeleteProductAttribute deletes an attribute definition.
type DeleteProductAttribute struct {
	productAttributesAction
	Site        int64 `validate:"gt=0"`
	AttributeID int64 `validate:"gt=0"`
	OnComplete  dispatch.Completion[model.StoreAttribute]
}

// ProductAttributeStore processes ProductAttributesActions.
type ProductAttributeStore struct {
	*Base
	remote remote.ProductAttributesRemote
}

// NewProductAttributeStore creates the attribute store and registers it
// with d.
func NewProductAttributeStore(d *dispatch.Dispatcher, p *storage.Provider, r remote.ProductAttributesRemote, opts ...Option) (*ProductAttributeStore, error) {
	s := &ProductAttributeStore{Base: newBase(d, p, string(ProductAttributesActions), opts...), remote: r}
	if err := s.register(s, ProductAttributesActions); err != nil {
		return nil, err
	}
	return s, nil
}

// OnAction implements dispatch.Processor.
func (s *ProductAttributeStore) OnAction(a dispatch.Action) {
	switch a := a.(type) {
	case SynchronizeProductAttributes:
		submit(s.Base, "SynchronizeProductAttributes", scope(a.Site), a, a.OnComplete,
			func(ctx context.Context) ([]model.StoreAttribute, error) { return s.synchronize(ctx, a) })
	case AddProductAttribute:
		submit(s.Base, "AddProductAttribute", scope(a.Site, a.Name), a, a.OnComplete,
			func(ctx context.Context) (model.StoreAttribute, error) {
				attr, err := s.remote.AddProductAttribute(ctx, a.Site, a.Name)
				if err != nil {
					return model.StoreAttribute{}, err
				}
				return s.merge(ctx, attr)
			})
	case UpdateProductAttribute:
		submit(s.Base, "UpdateProductAttribute", scope(a.Site, a.AttributeID), a, a.OnComplete,
			func(ctx context.Context) (model.StoreAttribute, error) { return s.update(ctx, a) })
	case DeleteProductAttribute:
		submit(s.Base, "DeleteProductAttribute", scope(a.Site, a.AttributeID), a, a.OnComplete,
			func(ctx context.Context) (model.StoreAttribute, error) { return s.delete(ctx, a) })
	default:
		s.logger.Warn("unhandled action", "action", fmt.Sprintf("%T", a))
	}
}

func attributeKey(a model.StoreAttribute) storage.Key {
	return upsert.StoreAttributeKey(a.SiteID, a.AttributeID)
}

func (s *ProductAttributeStore) synchronize(ctx context.Context, a SynchronizeProductAttributes) ([]model.StoreAttribute, error) {
	attrs, err := s.remote.LoadProductAttributes(ctx, a.Site)
	if err != nil {
		return nil, err
	}
	out := make([]model.StoreAttribute, 0, len(attrs))
	err = s.write(ctx, func(c *storage.Context) error {
		if _, err := pagination.ReconcileSyncPage[*storage.StoreAttribute](c, s.window, s.window.FirstPage,
			storage.Query{SiteID: a.Site}, pagination.Keys(attrs, attributeKey)); err != nil {
			return err
		}
		for _, attr := range attrs {
			local, err := upsert.StoreAttribute(c, attr)
			if err != nil {
				return err
			}
			out = append(out, upsert.ReadStoreAttribute(local))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("synchronize product attributes: %w", err)
	}
	return out, nil
}

func (s *ProductAttributeStore) merge(ctx context.Context, attr model.StoreAttribute) (model.StoreAttribute, error) {
	var out model.StoreAttribute
	err := s.write(ctx, func(c *storage.Context) error {
		local, err := upsert.StoreAttribute(c, attr)
		if err != nil {
			return err
		}
		out = upsert.ReadStoreAttribute(local)
		return nil
	})
	if err != nil {
		return model.StoreAttribute{}, fmt.Errorf("store attribute %d: %w", attr.AttributeID, err)
	}
	return out, nil
}

func (s *ProductAttributeStore) update(ctx context.Context, a UpdateProductAttribute) (model.StoreAttribute, error) {
	attr := model.StoreAttribute{SiteID: a.Site, AttributeID: a.AttributeID}
	err := s.provider.View().Read(func(c *storage.Context) error {
		cached, ok, err := storage.Find[*storage.StoreAttribute](c, attributeKey(attr))
		if ok {
			attr = upsert.ReadStoreAttribute(cached)
		}
		return err
	})
	if err != nil {
		return model.StoreAttribute{}, err
	}
	attr.Name = a.Name
	updated, err := s.remote.UpdateProductAttribute(ctx, attr)
	if err != nil {
		return model.StoreAttribute{}, err
	}
	return s.merge(ctx, updated)
}

func (s *ProductAttributeStore) delete(ctx context.Context, a DeleteProductAttribute) (model.StoreAttribute, error) {
	deleted, err := s.remote.DeleteProductAttribute(ctx, a.Site, a.AttributeID)
	if err != nil {
		return model.StoreAttribute{}, err
	}
	err = s.write(ctx, func(c *storage.Context) error {
		_, err := deleteKey[*storage.StoreAttribute](c, upsert.StoreAttributeKey(a.Site, a.AttributeID))
		return err
	})
	if err != nil {
		return model.StoreAttribute{}, fmt.Errorf("delete attribute %d: %w", a.AttributeID, err)
	}
	return deleted, nil
}

type shippingClassesAction struct{}

func (shippingClassesAction) ActionType() dispatch.ActionType { return ShippingClassesActions }

// SynchronizeShippingClasses fetches one page of shipping classes.
type SynchronizeShippingClasses struct {
	shippingClassesAction
	Site       int64 `validate:"gt=0"`
	Page       int   `validate:"gte=0"`
	PageSize   int   `validate:"gt=0,lte=100"`
	OnComplete dispatch.Completion[bool]
}

// RetrieveShippingClass fetches a single shipping class.
type RetrieveShippingClass struct {
	shippingClassesAction
	Site       int64 `validate:"gt=0"`
	ClassID    int64 `validate:"gt=0"`
	OnComplete dispatch.Completion[model.ShippingClass]
}

// ShippingClassStore processes ShippingClassesActions.
type ShippingClassStore struct {
	*Base
	remote remote.ShippingClassesRemote
}

// NewShippingClassStore creates the shipping class store and registers it
// with d.
func NewShippingClassStore(d *dispatch.Dispatcher, p *storage.Provider, r remote.ShippingClassesRemote, opts ...Option) (*ShippingClassStore, error) {
	s := &ShippingClassStore{Base: newBase(d, p, string(ShippingClassesActions), opts...), remote: r}
	if err := s.register(s, ShippingClassesActions); err != nil {
		return nil, err
	}
	return s, nil
}

// OnAction implements dispatch.Processor.
func (s *ShippingClassStore) OnAction(a dispatch.Action) {
	switch a := a.(type) {
	case SynchronizeShippingClasses:
		submit(s.Base, "SynchronizeShippingClasses", scope(a.Site, a.Page), a, a.OnComplete,
			func(ctx context.Context) (bool, error) { return s.synchronize(ctx, a) })
	case RetrieveShippingClass:
		submit(s.Base, "RetrieveShippingClass", scope(a.Site, a.ClassID), a, a.OnComplete,
			func(ctx context.Context) (model.ShippingClass, error) { return s.retrieve(ctx, a) })
	default:
		s.logger.Warn("unhandled action", "action", fmt.Sprintf("%T", a))
	}
}

func classKey(sc model.ShippingClass) storage.Key {
	return upsert.ShippingClassKey(sc.SiteID, sc.ShippingClassID)
}

func (s *ShippingClassStore) synchronize(ctx context.Context, a SynchronizeShippingClasses) (bool, error) {
	classes, err := s.remote.LoadShippingClasses(ctx, a.Site, a.Page, a.PageSize)
	if err != nil {
		return false, err
	}
	err = s.write(ctx, func(c *storage.Context) error {
		if _, err := pagination.ReconcileSyncPage[*storage.ShippingClass](c, s.window, a.Page,
			storage.Query{SiteID: a.Site}, pagination.Keys(classes, classKey)); err != nil {
			return err
		}
		for _, sc := range classes {
			if _, err := upsert.ShippingClass(c, sc); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("synchronize shipping classes: %w", err)
	}
	return s.window.HasNextPage(len(classes), a.PageSize), nil
}

func (s *ShippingClassStore) retrieve(ctx context.Context, a RetrieveShippingClass) (model.ShippingClass, error) {
	key := upsert.ShippingClassKey(a.Site, a.ClassID)
	sc, err := s.remote.LoadShippingClass(ctx, a.Site, a.ClassID)
	if err != nil {
		werr := s.apply(func(c *storage.Context) error {
			_, err2 := pagination.DeleteOnNotFound[*storage.ShippingClass](c, key, err)
			return err2
		})
		if werr != nil {
			s.logger.Error("delete missing shipping class failed", "site", a.Site, "class", a.ClassID, "error", werr)
		}
		return model.ShippingClass{}, err
	}

	var out model.ShippingClass
	err = s.write(ctx, func(c *storage.Context) error {
		local, err := upsert.ShippingClass(c, sc)
		if err != nil {
			return err
		}
		out = upsert.ReadShippingClass(local)
		return nil
	})
	if err != nil {
		return model.ShippingClass{}, fmt.Errorf("store shipping class %d: %w", a.ClassID, err)
	}
	return out, nil
}
