package upsert

import (
	"strconv"

	"github.com/roach88/storesync/internal/model"
	"github.com/roach88/storesync/internal/storage"
)

// OrderKey is the scope key of an order.
func OrderKey(siteID, orderID int64) storage.Key { return storage.IDKey(siteID, orderID) }

// ProductKey is the scope key of a product.
func ProductKey(siteID, productID int64) storage.Key { return storage.IDKey(siteID, productID) }

// ProductTagKey is the scope key of a product tag.
func ProductTagKey(siteID, tagID int64) storage.Key { return storage.IDKey(siteID, tagID) }

// StoreAttributeKey is the scope key of an attribute definition.
func StoreAttributeKey(siteID, attributeID int64) storage.Key {
	return storage.IDKey(siteID, attributeID)
}

// ShippingClassKey is the scope key of a shipping class.
func ShippingClassKey(siteID, classID int64) storage.Key { return storage.IDKey(siteID, classID) }

// RefundKey is the scope key of a refund. Refund IDs are unique per site.
func RefundKey(siteID, refundID int64) storage.Key { return storage.IDKey(siteID, refundID) }

// TrackingKey is the scope key of a shipment tracking record.
func TrackingKey(siteID, orderID int64, trackingID string) storage.Key {
	return storage.StringKey(siteID, strconv.FormatInt(orderID, 10), trackingID)
}

// SettingKey is the scope key of a site setting.
func SettingKey(siteID int64, group model.SettingGroup, settingID string) storage.Key {
	return storage.StringKey(siteID, string(group), settingID)
}

// StatsKey is the scope key of an order or visit stats report.
func StatsKey(siteID int64, granularity model.Granularity, date string) storage.Key {
	return storage.StringKey(siteID, string(granularity), date)
}

func productAttributeKey(siteID, productID int64, a model.ProductAttr) storage.Key {
	if a.AttributeID != 0 {
		return storage.IDKey(siteID, productID, a.AttributeID)
	}
	// Local attributes have no ID and are identified by name.
	return storage.StringKey(siteID, strconv.FormatInt(productID, 10), "local", a.Name)
}
