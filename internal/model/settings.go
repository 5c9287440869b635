package model

// SettingGroup names a remote settings group.
type SettingGroup string

// Settings groups synchronized by the settings store.
const (
	SettingGroupGeneral SettingGroup = "general"
	SettingGroupProduct SettingGroup = "products"
)

// SiteSetting is one remote site setting.
type SiteSetting struct {
	SiteID      int64        `json:"site_id"`
	SettingID   string       `json:"id"`
	Group       SettingGroup `json:"group_id"`
	Label       string       `json:"label"`
	Description string       `json:"description"`
	Value       string       `json:"value"`
}
