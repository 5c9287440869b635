package storage

// ProductTag is a cached site-wide product tag.
type ProductTag struct {
	Meta `json:"-"`

	SiteID int64  `json:"site_id"`
	TagID  int64  `json:"tag_id"`
	Name   string `json:"name"`
	Slug   string `json:"slug"`
}

func (*ProductTag) Kind() Kind { return KindProductTag }

// StoreAttribute is a cached site-wide attribute definition.
type StoreAttribute struct {
	Meta `json:"-"`

	SiteID      int64  `json:"site_id"`
	AttributeID int64  `json:"attribute_id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Type        string `json:"type"`
	OrderBy     string `json:"order_by"`
	HasArchives bool   `json:"has_archives"`
}

func (*StoreAttribute) Kind() Kind { return KindStoreAttribute }

// ShippingClass is a cached shipping class.
type ShippingClass struct {
	Meta `json:"-"`

	SiteID          int64  `json:"site_id"`
	ShippingClassID int64  `json:"shipping_class_id"`
	Name            string `json:"name"`
	Slug            string `json:"slug"`
	Description     string `json:"description"`
	Count           int64  `json:"count"`
}

func (*ShippingClass) Kind() Kind { return KindShippingClass }
