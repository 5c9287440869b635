package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductStatus is the remote publishing status of a product.
type ProductStatus string

// Known product statuses.
const (
	ProductStatusPublished ProductStatus = "publish"
	ProductStatusDraft     ProductStatus = "draft"
	ProductStatusPending   ProductStatus = "pending"
	ProductStatusPrivate   ProductStatus = "private"

	// ProductStatusImporting marks a placeholder created by an import that
	// has not finished. Such products are never cached.
	ProductStatusImporting ProductStatus = "importing"
)

// Product is a remote catalog product.
type Product struct {
	SiteID           int64           `json:"site_id"`
	ProductID        int64           `json:"product_id"`
	Name             string          `json:"name"`
	Slug             string          `json:"slug"`
	Permalink        string          `json:"permalink"`
	ProductType      string          `json:"type"`
	Status           ProductStatus   `json:"status"`
	Featured         bool            `json:"featured"`
	Description      string          `json:"description"`
	ShortDescription string          `json:"short_description"`
	SKU              string          `json:"sku"`
	Price            decimal.Decimal `json:"price"`
	RegularPrice     decimal.Decimal `json:"regular_price"`
	SalePrice        decimal.Decimal `json:"sale_price"`
	OnSale           bool            `json:"on_sale"`
	ManageStock      bool            `json:"manage_stock"`
	StockQuantity    *int64          `json:"stock_quantity"`
	StockStatus      string          `json:"stock_status"`
	Weight           string          `json:"weight"`
	Dimensions       Dimensions      `json:"dimensions"`
	ShippingClass    string          `json:"shipping_class"`
	ShippingClassID  int64           `json:"shipping_class_id"`
	TotalSales       int64           `json:"total_sales"`
	DateCreated      time.Time       `json:"date_created"`
	DateModified     time.Time       `json:"date_modified"`
	Variations       []int64         `json:"variations"`
	Images           []ProductImage  `json:"images"`
	Attributes       []ProductAttr   `json:"attributes"`
	Tags             []ProductTag    `json:"tags"`
}

// IsPlaceholder reports whether the product is a transient placeholder
// that must not be cached.
func (p Product) IsPlaceholder() bool {
	return p.Status == ProductStatusImporting
}

// Dimensions holds the shipping dimensions of a product.
type Dimensions struct {
	Length string `json:"length"`
	Width  string `json:"width"`
	Height string `json:"height"`
}

// ProductImage is an image attached to a product.
type ProductImage struct {
	ImageID      int64     `json:"id"`
	DateCreated  time.Time `json:"date_created"`
	DateModified time.Time `json:"date_modified"`
	Src          string    `json:"src"`
	Name         string    `json:"name"`
	Alt          string    `json:"alt"`
}

// ProductAttr is an attribute assigned to one product. Local attributes
// have AttributeID 0 and are identified by name.
type ProductAttr struct {
	AttributeID int64    `json:"id"`
	Name        string   `json:"name"`
	Position    int64    `json:"position"`
	Visible     bool     `json:"visible"`
	Variation   bool     `json:"variation"`
	Options     []string `json:"options"`
}
