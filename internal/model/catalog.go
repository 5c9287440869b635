package model

// ProductTag is a site-wide product tag.
type ProductTag struct {
	SiteID int64  `json:"site_id"`
	TagID  int64  `json:"id"`
	Name   string `json:"name"`
	Slug   string `json:"slug"`
}

// StoreAttribute is a site-wide (global) product attribute definition.
type StoreAttribute struct {
	SiteID      int64  `json:"site_id"`
	AttributeID int64  `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Type        string `json:"type"`
	OrderBy     string `json:"order_by"`
	HasArchives bool   `json:"has_archives"`
}

// ShippingClass is a product shipping class.
type ShippingClass struct {
	SiteID          int64  `json:"site_id"`
	ShippingClassID int64  `json:"id"`
	Name            string `json:"name"`
	Slug            string `json:"slug"`
	Description     string `json:"description"`
	Count           int64  `json:"count"`
}
