package notify

import (
	"context"

	"findvax-notifier/internal/common/logger"
	"findvax-notifier/internal/models"
)

// LocationLoader reads one region's location document.
type LocationLoader interface {
	LoadLocations(ctx context.Context, region string) ([]models.Location, error)
}

// BroadcastReport summarizes one megaphone broadcast.
type BroadcastReport struct {
	Region     string `json:"region"`
	Locations  int    `json:"locations"`
	Recipients int    `json:"recipients"`
	Sent       int    `json:"sent"`
}

// Megaphone texts everyone still waiting on a fixed set of locations. It
// leaves their subscriptions in place.
type Megaphone struct {
	loader        LocationLoader
	resolver      *Resolver
	composer      *Composer
	dispatcher    *Dispatcher
	locationIDs   []string
	defaultRegion string
	logger        logger.Logger
}

func NewMegaphone(loader LocationLoader, resolver *Resolver, composer *Composer, dispatcher *Dispatcher, locationIDs []string, defaultRegion string, log logger.Logger) *Megaphone {
	return &Megaphone{
		loader:        loader,
		resolver:      resolver,
		composer:      composer,
		dispatcher:    dispatcher,
		locationIDs:   locationIDs,
		defaultRegion: defaultRegion,
		logger:        log,
	}
}

func (m *Megaphone) Broadcast(ctx context.Context, region string) (*BroadcastReport, error) {
	if region == "" {
		region = m.defaultRegion
	}
	report := &BroadcastReport{Region: region}

	locations, err := m.loader.LoadLocations(ctx, region)
	if err != nil {
		return report, err
	}

	targets := m.targets(locations)
	report.Locations = len(targets)
	if len(targets) == 0 {
		m.logger.Info("no megaphone locations found in snapshot", map[string]interface{}{"region": region})
		return report, nil
	}

	groups, err := m.resolver.Resolve(ctx, targets)
	if err != nil {
		return report, err
	}
	report.Recipients = len(groups)

	sent, err := m.dispatcher.Send(ctx, m.composer.ComposeAll(groups))
	report.Sent = sent
	if err != nil {
		return report, err
	}

	m.logger.Info("megaphone broadcast complete", map[string]interface{}{
		"region":     region,
		"locations":  report.Locations,
		"recipients": report.Recipients,
		"sent":       report.Sent,
	})
	return report, nil
}

func (m *Megaphone) targets(locations []models.Location) []models.QualifyingLocation {
	wanted := make(map[string]bool, len(m.locationIDs))
	for _, id := range m.locationIDs {
		wanted[id] = true
	}

	var out []models.QualifyingLocation
	for _, loc := range locations {
		if !wanted[loc.UUID] {
			continue
		}
		delete(wanted, loc.UUID)
		out = append(out, models.QualifyingLocation{UUID: loc.UUID, Name: loc.Name, URL: loc.LinkURL})
	}
	return out
}
