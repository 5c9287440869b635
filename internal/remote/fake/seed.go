package fake

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/storesync/internal/model"
)

// Seed is the remote truth loaded from a fixture. Field names follow the
// remote records' JSON names.
type Seed struct {
	Orders          []model.Order            `json:"orders"`
	Products        []model.Product          `json:"products"`
	Refunds         []model.Refund           `json:"refunds"`
	ProductTags     []model.ProductTag       `json:"product_tags"`
	Attributes      []model.StoreAttribute   `json:"attributes"`
	ShippingClasses []model.ShippingClass    `json:"shipping_classes"`
	Tracking        []model.ShipmentTracking `json:"tracking"`
	Settings        []model.SiteSetting      `json:"settings"`
	OrderStats      []model.OrderStats       `json:"order_stats"`
	VisitStats      []model.VisitStats       `json:"visit_stats"`
}

// DecodeSeed converts a YAML document into a Seed. YAML is first decoded
// generically and re-encoded as JSON so the records' JSON tags apply.
func DecodeSeed(node *yaml.Node) (Seed, error) {
	var seed Seed
	if node == nil || node.Kind == 0 {
		return seed, nil
	}
	var generic any
	if err := node.Decode(&generic); err != nil {
		return seed, fmt.Errorf("decode seed: %w", err)
	}
	data, err := json.Marshal(generic)
	if err != nil {
		return seed, fmt.Errorf("convert seed: %w", err)
	}
	if err := json.Unmarshal(data, &seed); err != nil {
		return seed, fmt.Errorf("convert seed: %w", err)
	}
	return seed, nil
}

// LoadSeedFile reads a YAML seed file.
func LoadSeedFile(path string) (Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, fmt.Errorf("read seed %s: %w", path, err)
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Seed{}, fmt.Errorf("parse seed %s: %w", path, err)
	}
	if len(doc.Content) == 0 {
		return Seed{}, nil
	}
	return DecodeSeed(doc.Content[0])
}

// Apply stores every record of seed as remote truth.
func (s *Service) Apply(seed Seed) {
	for _, o := range seed.Orders {
		s.PutOrder(o)
	}
	for _, p := range seed.Products {
		s.PutProduct(p)
	}
	for _, r := range seed.Refunds {
		s.PutRefund(r)
	}
	for _, t := range seed.ProductTags {
		s.PutProductTag(t)
	}
	for _, a := range seed.Attributes {
		s.PutProductAttribute(a)
	}
	for _, c := range seed.ShippingClasses {
		s.PutShippingClass(c)
	}
	for _, t := range seed.Tracking {
		s.PutShipmentTracking(t)
	}
	bySite := make(map[int64][]model.SiteSetting)
	for _, st := range seed.Settings {
		bySite[st.SiteID] = append(bySite[st.SiteID], st)
	}
	for site, settings := range bySite {
		s.PutSettings(site, settings)
	}
	for _, st := range seed.OrderStats {
		s.PutOrderStats(st)
	}
	for _, st := range seed.VisitStats {
		s.PutVisitStats(st)
	}
}
