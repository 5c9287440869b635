package storage

import (
	"time"

	"github.com/shopspring/decimal"
)

// Dimensions are a product's shipping dimensions.
type Dimensions struct {
	Length string `json:"length"`
	Width  string `json:"width"`
	Height string `json:"height"`
}

// Product is a cached product. Images and attributes are owned rows; tags
// are links (RelationProductTags); the shipping class is a reference.
type Product struct {
	Meta `json:"-"`

	SiteID           int64           `json:"site_id"`
	ProductID        int64           `json:"product_id"`
	Name             string          `json:"name"`
	Slug             string          `json:"slug"`
	Permalink        string          `json:"permalink"`
	ProductType      string          `json:"type"`
	Status           string          `json:"status"`
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

	// ShippingClassRef is the object ID of the cached shipping class, empty
	// when the class was not cached at upsert time.
	ShippingClassRef ObjectID `json:"shipping_class_ref"`
}

func (*Product) Kind() Kind { return KindProduct }

// ProductImage is an owned image of a Product.
type ProductImage struct {
	Meta `json:"-"`

	ImageID      int64     `json:"image_id"`
	DateCreated  time.Time `json:"date_created"`
	DateModified time.Time `json:"date_modified"`
	Src          string    `json:"src"`
	Name         string    `json:"name"`
	Alt          string    `json:"alt"`
}

func (*ProductImage) Kind() Kind { return KindProductImage }

// ProductAttribute is an owned attribute of a Product.
type ProductAttribute struct {
	Meta `json:"-"`

	AttributeID int64    `json:"attribute_id"`
	Name        string   `json:"name"`
	Position    int64    `json:"position"`
	Visible     bool     `json:"visible"`
	Variation   bool     `json:"variation"`
	Options     []string `json:"options"`
}

func (*ProductAttribute) Kind() Kind { return KindProductAttribute }
