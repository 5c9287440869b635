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

type settingsAction struct{}

func (settingsAction) ActionType() dispatch.ActionType { return SettingsActions }

// SynchronizeGeneralSettings replaces the cached general settings of a
// site.
type SynchronizeGeneralSettings struct {
	settingsAction
	Site       int64 `validate:"gt=0"`
	OnComplete dispatch.Completion[[]model.SiteSetting]
}

// SynchronizeProductSettings replaces the cached product settings of a
// site.
type SynchronizeProductSettings struct {
	settingsAction
	Site       int64 `validate:"gt=0"`
	OnComplete dispatch.Completion[[]model.SiteSetting]
}

// SettingStore processes SettingsActions.
type SettingStore struct {
	*Base
	remote remote.SettingsRemote
}

// NewSettingStore creates the settings store and registers it with d.
func NewSettingStore(d *dispatch.Dispatcher, p *storage.Provider, r remote.SettingsRemote, opts ...Option) (*SettingStore, error) {
	s := &SettingStore{Base: newBase(d, p, string(SettingsActions), opts...), remote: r}
	if err := s.register(s, SettingsActions); err != nil {
		return nil, err
	}
	return s, nil
}

// OnAction implements dispatch.Processor.
func (s *SettingStore) OnAction(a dispatch.Action) {
	switch a := a.(type) {
	case SynchronizeGeneralSettings:
		submit(s.Base, "SynchronizeSettings", scope(a.Site, model.SettingGroupGeneral), a, a.OnComplete,
			func(ctx context.Context) ([]model.SiteSetting, error) {
				return s.synchronize(ctx, a.Site, model.SettingGroupGeneral)
			})
	case SynchronizeProductSettings:
		submit(s.Base, "SynchronizeSettings", scope(a.Site, model.SettingGroupProduct), a, a.OnComplete,
			func(ctx context.Context) ([]model.SiteSetting, error) {
				return s.synchronize(ctx, a.Site, model.SettingGroupProduct)
			})
	default:
		s.logger.Warn("unhandled action", "action", fmt.Sprintf("%T", a))
	}
}

func (s *SettingStore) synchronize(ctx context.Context, site int64, group model.SettingGroup) ([]model.SiteSetting, error) {
	settings, err := s.remote.LoadSettings(ctx, site, group)
	if err != nil {
		return nil, err
	}

	out := make([]model.SiteSetting, 0, len(settings))
	err = s.write(ctx, func(c *storage.Context) error {
		q := storage.Query{
			SiteID: site,
			Where: storage.Matching(func(st *storage.SiteSetting) bool {
				return st.Group == string(group)
			}),
		}
		keys := pagination.Keys(settings, func(st model.SiteSetting) storage.Key {
			return upsert.SettingKey(site, group, st.SettingID)
		})
		if _, err := pagination.ReconcileSyncPage[*storage.SiteSetting](c, s.window, s.window.FirstPage, q, keys); err != nil {
			return err
		}
		for _, st := range settings {
			st.SiteID = site
			st.Group = group
			local, err := upsert.SiteSetting(c, st)
			if err != nil {
				return err
			}
			out = append(out, upsert.ReadSiteSetting(local))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("synchronize %s settings: %w", group, err)
	}
	s.logger.Info("settings synced", "site", site, "group", string(group), "count", len(out))
	return out, nil
}
