package services

import (
	"context"
	"fmt"
	"log"

	"googlemaps.github.io/maps"

	appConfig "github.com/lokaclean/lokaclean-api/config"
)

// Geocoder resolves a display address from booking coordinates. Used
// best-effort at booking time; failures are logged and never block the
// booking.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, lat, lng float64) (string, error)
}

var geocoderInstance Geocoder

// InitGeocoder initializes the Google Maps geocoder, or nil when no API
// key is configured (callers must handle a nil geocoder).
func InitGeocoder() (Geocoder, error) {
	cfg := appConfig.GetConfig()
	if cfg.GoogleMapsAPIKey == "" {
		log.Println("Google Maps API key not configured, address resolution disabled")
		geocoderInstance = nil
		return nil, nil
	}

	client, err := maps.NewClient(maps.WithAPIKey(cfg.GoogleMapsAPIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	geocoderInstance = &GoogleGeocoder{client: client}
	return geocoderInstance, nil
}

// GetGeocoder returns the initialized geocoder instance (may be nil)
func GetGeocoder() Geocoder {
	return geocoderInstance
}

// SetGeocoder sets the geocoder instance (primarily for testing)
func SetGeocoder(g Geocoder) {
	geocoderInstance = g
}

// GoogleGeocoder resolves addresses through the Google Maps Geocoding API.
type GoogleGeocoder struct {
	client *maps.Client
}

// ReverseGeocode returns the formatted address of the first geocoding
// result for the coordinates.
func (g *GoogleGeocoder) ReverseGeocode(ctx context.Context, lat, lng float64) (string, error) {
	results, err := g.client.ReverseGeocode(ctx, &maps.GeocodingRequest{
		LatLng: &maps.LatLng{Lat: lat, Lng: lng},
	})
	if err != nil {
		return "", fmt.Errorf("reverse geocode failed: %w", err)
	}
	if len(results) == 0 {
		return "", nil
	}
	return results[0].FormattedAddress, nil
}
