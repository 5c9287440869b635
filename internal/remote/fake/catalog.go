package fake

import (
	"context"
	"strings"

	"github.com/roach88/storesync/internal/model"
)

// PutProductTag stores a tag as the remote truth.
func (s *Service) PutProductTag(t model.ProductTag) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bucket(s.tags, t.SiteID)[t.TagID] = t
}

// RemoveProductTag deletes a tag from the remote truth.
func (s *Service) RemoveProductTag(siteID, tagID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tags[siteID], tagID)
}

func (s *Service) LoadProductTags(ctx context.Context, siteID int64, page, pageSize int) ([]model.ProductTag, error) {
	if err := s.enter(ctx, "LoadProductTags"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return paginate(sortedValues(s.tags[siteID]), page, pageSize), nil
}

func (s *Service) AddProductTags(ctx context.Context, siteID int64, names []string) ([]model.ProductTag, error) {
	if err := s.enter(ctx, "AddProductTags"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tags := bucket(s.tags, siteID)
	var out []model.ProductTag
	for _, name := range names {
		var found *model.ProductTag
		for _, t := range tags {
			if strings.EqualFold(t.Name, name) {
				found = &t
				break
			}
		}
		if found != nil {
			out = append(out, *found)
			continue
		}
		t := model.ProductTag{SiteID: siteID, TagID: s.newID(), Name: name, Slug: slugify(name)}
		tags[t.TagID] = t
		out = append(out, t)
	}
	return out, nil
}

func (s *Service) DeleteProductTags(ctx context.Context, siteID int64, ids []int64) ([]model.ProductTag, error) {
	if err := s.enter(ctx, "DeleteProductTags"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.ProductTag
	for _, id := range ids {
		if t, ok := s.tags[siteID][id]; ok {
			delete(s.tags[siteID], id)
			out = append(out, t)
		}
	}
	return out, nil
}

// PutProductAttribute stores an attribute definition as the remote truth.
func (s *Service) PutProductAttribute(a model.StoreAttribute) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bucket(s.attributes, a.SiteID)[a.AttributeID] = a
}

func (s *Service) LoadProductAttributes(ctx context.Context, siteID int64) ([]model.StoreAttribute, error) {
	if err := s.enter(ctx, "LoadProductAttributes"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedValues(s.attributes[siteID]), nil
}

func (s *Service) AddProductAttribute(ctx context.Context, siteID int64, name string) (model.StoreAttribute, error) {
	if err := s.enter(ctx, "AddProductAttribute"); err != nil {
		return model.StoreAttribute{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	a := model.StoreAttribute{
		SiteID:      siteID,
		AttributeID: s.newID(),
		Name:        name,
		Slug:        "pa_" + slugify(name),
		Type:        "select",
		OrderBy:     "menu_order",
	}
	bucket(s.attributes, siteID)[a.AttributeID] = a
	return a, nil
}

func (s *Service) UpdateProductAttribute(ctx context.Context, attr model.StoreAttribute) (model.StoreAttribute, error) {
	if err := s.enter(ctx, "UpdateProductAttribute"); err != nil {
		return model.StoreAttribute{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.attributes[attr.SiteID][attr.AttributeID]; !ok {
		return model.StoreAttribute{}, notFound("attribute", attr.AttributeID)
	}
	s.attributes[attr.SiteID][attr.AttributeID] = attr
	return attr, nil
}

func (s *Service) DeleteProductAttribute(ctx context.Context, siteID, attributeID int64) (model.StoreAttribute, error) {
	if err := s.enter(ctx, "DeleteProductAttribute"); err != nil {
		return model.StoreAttribute{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.attributes[siteID][attributeID]
	if !ok {
		return model.StoreAttribute{}, notFound("attribute", attributeID)
	}
	delete(s.attributes[siteID], attributeID)
	return a, nil
}

// PutShippingClass stores a shipping class as the remote truth.
func (s *Service) PutShippingClass(c model.ShippingClass) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bucket(s.classes, c.SiteID)[c.ShippingClassID] = c
}

// RemoveShippingClass deletes a shipping class from the remote truth.
func (s *Service) RemoveShippingClass(siteID, classID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.classes[siteID], classID)
}

func (s *Service) LoadShippingClasses(ctx context.Context, siteID int64, page, pageSize int) ([]model.ShippingClass, error) {
	if err := s.enter(ctx, "LoadShippingClasses"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return paginate(sortedValues(s.classes[siteID]), page, pageSize), nil
}

func (s *Service) LoadShippingClass(ctx context.Context, siteID, classID int64) (model.ShippingClass, error) {
	if err := s.enter(ctx, "LoadShippingClass"); err != nil {
		return model.ShippingClass{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.classes[siteID][classID]
	if !ok {
		return model.ShippingClass{}, notFound("shipping class", classID)
	}
	return c, nil
}

func slugify(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), "-"))
}
