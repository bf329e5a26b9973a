package database

import (
	"context"

	"github.com/dancescene/discovery/internal/domain/entities"
	"github.com/dancescene/discovery/internal/domain/repositories"
	"github.com/dancescene/discovery/internal/infrastructure/clients/postgres"
	apperrors "github.com/dancescene/discovery/pkg/errors"
)

// VenueProximityAdapter resolves the set of venues within a radius of a
// geographic center, with the great-circle distance to each.
type VenueProximityAdapter struct {
	client *postgres.Client
}

// NewVenueProximityAdapter creates a new venue proximity adapter
func NewVenueProximityAdapter(client *postgres.Client) repositories.VenueProximityRepository {
	return &VenueProximityAdapter{client: client}
}

const proximityQuery = `
	SELECT id, distance_km FROM (
		SELECT id,
			(6371 * acos(cos(radians($1)) * cos(radians(latitude)) *
			cos(radians(longitude) - radians($2)) +
			sin(radians($1)) * sin(radians(latitude)))) AS distance_km
		FROM venues
	) v
	WHERE distance_km <= $3
	ORDER BY distance_km`

// ResolveProximity returns all venues within radiusKm of (lat, lon). An
// empty set is a valid result, not an error.
func (a *VenueProximityAdapter) ResolveProximity(ctx context.Context, lat, lon, radiusKm float64) (*entities.ProximitySet, error) {
	rows, err := a.client.DB().QueryContext(ctx, proximityQuery, lat, lon, radiusKm)
	if err != nil {
		return nil, apperrors.NewStoreError("failed to resolve venue proximity", err)
	}
	defer rows.Close()

	set := &entities.ProximitySet{
		VenueIDs:   []string{},
		DistanceKm: map[string]float64{},
	}
	for rows.Next() {
		var id string
		var distance float64
		if err := rows.Scan(&id, &distance); err != nil {
			return nil, apperrors.NewStoreError("failed to scan venue distance", err)
		}
		set.VenueIDs = append(set.VenueIDs, id)
		set.DistanceKm[id] = distance
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStoreError("error iterating venue distances", err)
	}

	return set, nil
}
