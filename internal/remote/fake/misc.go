package fake

import (
	"context"
	"fmt"

	"github.com/roach88/storesync/internal/model"
)

// PutShipmentTracking stores a tracking record as the remote truth.
func (s *Service) PutShipmentTracking(t model.ShipmentTracking) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bucket(s.tracking, t.SiteID)[trackingKey(t.OrderID, t.TrackingID)] = t
}

func trackingKey(orderID int64, trackingID string) string {
	return fmt.Sprintf("%d/%s", orderID, trackingID)
}

func (s *Service) LoadShipmentTrackings(ctx context.Context, siteID, orderID int64) ([]model.ShipmentTracking, error) {
	if err := s.enter(ctx, "LoadShipmentTrackings"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.ShipmentTracking
	for _, t := range sortedValues(s.tracking[siteID]) {
		if t.OrderID == orderID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *Service) AddShipmentTracking(ctx context.Context, tracking model.ShipmentTracking) (model.ShipmentTracking, error) {
	if err := s.enter(ctx, "AddShipmentTracking"); err != nil {
		return model.ShipmentTracking{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if tracking.TrackingID == "" {
		tracking.TrackingID = fmt.Sprintf("trk-%d", s.newID())
	}
	bucket(s.tracking, tracking.SiteID)[trackingKey(tracking.OrderID, tracking.TrackingID)] = tracking
	return tracking, nil
}

func (s *Service) DeleteShipmentTracking(ctx context.Context, siteID, orderID int64, trackingID string) error {
	if err := s.enter(ctx, "DeleteShipmentTracking"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	key := trackingKey(orderID, trackingID)
	if _, ok := s.tracking[siteID][key]; !ok {
		return notFound("tracking", trackingID)
	}
	delete(s.tracking[siteID], key)
	return nil
}

// PutSettings replaces the remote settings of a site.
func (s *Service) PutSettings(siteID int64, settings []model.SiteSetting) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings[siteID] = append([]model.SiteSetting(nil), settings...)
}

func (s *Service) LoadSettings(ctx context.Context, siteID int64, group model.SettingGroup) ([]model.SiteSetting, error) {
	if err := s.enter(ctx, "LoadSettings"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.SiteSetting
	for _, st := range s.settings[siteID] {
		if st.Group == group {
			out = append(out, st)
		}
	}
	return out, nil
}

// PutOrderStats stores the order stats report of a site.
func (s *Service) PutOrderStats(st model.OrderStats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orderStats[st.SiteID] = st
}

// PutVisitStats stores the visit stats report of a site.
func (s *Service) PutVisitStats(st model.VisitStats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visitStats[st.SiteID] = st
}

func (s *Service) LoadOrderStats(ctx context.Context, siteID int64, granularity model.Granularity, from, to string) (model.OrderStats, error) {
	if err := s.enter(ctx, "LoadOrderStats"); err != nil {
		return model.OrderStats{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.orderStats[siteID]
	if !ok {
		return model.OrderStats{}, notFound("stats", siteID)
	}
	st.Granularity = granularity
	if st.Date == "" {
		st.Date = from
	}
	return st, nil
}

func (s *Service) LoadVisitStats(ctx context.Context, siteID int64, granularity model.Granularity, date string, quantity int) (model.VisitStats, error) {
	if err := s.enter(ctx, "LoadVisitStats"); err != nil {
		return model.VisitStats{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.visitStats[siteID]
	if !ok {
		return model.VisitStats{}, notFound("stats", siteID)
	}
	st.Granularity = granularity
	st.Date = date
	if quantity > 0 && len(st.Items) > quantity {
		st.Items = st.Items[len(st.Items)-quantity:]
	}
	return st, nil
}
