package ports

import (
	"context"

	"go.trai.ch/shelf/internal/core/domain"
)

// Geocoder resolves free-form addresses to coordinates.
//
//go:generate mockgen -source=geocoder.go -destination=mocks/mock_geocoder.go -package=mocks
type Geocoder interface {
	// Geocode returns candidate places for the query, best match first.
	Geocode(ctx context.Context, query string) ([]domain.Place, error)
}
