package geo

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Geocoder is the provider surface GeoService depends on.
type Geocoder interface {
	Forward(ctx context.Context, query string, limit int) ([]Feature, error)
	Reverse(ctx context.Context, lat, lng float64) ([]Feature, error)
}

// Suggestion is a ranked place returned for a free-text search.
type Suggestion struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Zoom      float64 `json:"zoom"`
}

// GeoService resolves free text to places and coordinates to labels.
type GeoService struct {
	geocoder Geocoder
	log      *zap.Logger
}

// NewGeoService wires the service over a geocoding provider.
func NewGeoService(geocoder Geocoder, log *zap.Logger) *GeoService {
	return &GeoService{geocoder: geocoder, log: log}
}

// Search returns ranked place suggestions for a query. Provider errors are
// logged and surface as an empty list.
func (s *GeoService) Search(ctx context.Context, query string, limit int) []Suggestion {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	if limit <= 0 || limit > 10 {
		limit = 5
	}

	features, err := s.geocoder.Forward(ctx, query, limit)
	if err != nil {
		s.log.Warn("forward geocoding failed", zap.String("query", query), zap.Error(err))
		return nil
	}

	suggestions := make([]Suggestion, 0, len(features))
	for _, f := range features {
		if len(f.Center) < 2 {
			continue
		}
		suggestions = append(suggestions, Suggestion{
			Name:      f.PlaceName,
			Longitude: f.Center[0],
			Latitude:  f.Center[1],
			Zoom:      zoomFor(f.PlaceType),
		})
	}
	return suggestions
}

// ReverseLabel resolves coordinates to a human-readable label, preferring
// street plus house number, then postcode plus locality, then the raw place
// name. Any provider error or empty result yields the caller's fallback.
func (s *GeoService) ReverseLabel(ctx context.Context, lat, lng float64, fallback string) string {
	features, err := s.geocoder.Reverse(ctx, lat, lng)
	if err != nil {
		s.log.Warn("reverse geocoding failed",
			zap.Float64("lat", lat), zap.Float64("lng", lng), zap.Error(err))
		return fallback
	}
	if len(features) == 0 {
		return fallback
	}

	if label := streetLabel(features); label != "" {
		return label
	}
	if label := postcodeLabel(features); label != "" {
		return label
	}
	for _, f := range features {
		if f.PlaceName != "" {
			return f.PlaceName
		}
	}
	return fallback
}

// streetLabel builds "Street 12" from the first address feature carrying a
// house number.
func streetLabel(features []Feature) string {
	for _, f := range features {
		if !hasPlaceType(f, "address") || f.Text == "" {
			continue
		}
		if f.Address != "" {
			return fmt.Sprintf("%s %s", f.Text, f.Address)
		}
		return f.Text
	}
	return ""
}

// postcodeLabel builds "28001 Madrid" from a postcode feature and its
// enclosing locality.
func postcodeLabel(features []Feature) string {
	for _, f := range features {
		if !hasPlaceType(f, "postcode") || f.Text == "" {
			continue
		}
		for _, c := range f.Context {
			if strings.HasPrefix(c.ID, "place.") && c.Text != "" {
				return fmt.Sprintf("%s %s", f.Text, c.Text)
			}
		}
		return f.Text
	}
	return ""
}

func hasPlaceType(f Feature, placeType string) bool {
	for _, t := range f.PlaceType {
		if t == placeType {
			return true
		}
	}
	return false
}

// zoomFor maps a feature's most specific type to a sensible map zoom.
func zoomFor(placeTypes []string) float64 {
	for _, t := range placeTypes {
		switch t {
		case "address", "poi":
			return 16
		case "postcode", "neighborhood", "locality":
			return 14
		case "place":
			return 12
		case "region":
			return 8
		case "country":
			return 5
		}
	}
	return 12
}
