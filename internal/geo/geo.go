// Package geo resolves postal addresses to coordinates.
package geo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/openweathermap-client/internal/weather"
)

// Resolver turns an address into a coordinate.
type Resolver interface {
	Resolve(ctx context.Context, address Address) (weather.Coordinate, error)
}

// Address is a free-form postal address. Empty parts are skipped.
type Address struct {
	Street     string
	City       string
	State      string
	PostalCode string
	Country    string
}

// ParseAddress splits "street, city, state, postal code, country" on commas.
// Missing trailing parts stay empty.
func ParseAddress(s string) Address {
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	get := func(i int) string {
		if i < len(parts) {
			return parts[i]
		}
		return ""
	}
	return Address{
		Street:     get(0),
		City:       get(1),
		State:      get(2),
		PostalCode: get(3),
		Country:    get(4),
	}
}

func (a Address) String() string {
	var parts []string
	for _, p := range []string{a.Street, a.City, a.State, a.PostalCode, a.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// GoogleResolver geocodes through the Google Geocoding API.
type GoogleResolver struct{}

var keyOnce sync.Once

// NewGoogleResolver sets the process-wide geocoder key. Only the first key
// set takes effect.
func NewGoogleResolver(apiKey string) (*GoogleResolver, error) {
	if apiKey == "" {
		return nil, errors.New("geocoder api key is not configured")
	}
	keyOnce.Do(func() {
		geocoder.ApiKey = apiKey
	})
	return &GoogleResolver{}, nil
}

// Resolve blocks on the geocoding call; ctx is only checked before it starts.
func (GoogleResolver) Resolve(ctx context.Context, address Address) (weather.Coordinate, error) {
	if err := ctx.Err(); err != nil {
		return weather.Coordinate{}, err
	}

	loc, err := geocoder.Geocoding(geocoder.Address{
		Street:     address.Street,
		City:       address.City,
		State:      address.State,
		PostalCode: address.PostalCode,
		Country:    address.Country,
	})
	if err != nil {
		return weather.Coordinate{}, fmt.Errorf("geocode %q: %w", address, err)
	}

	return weather.Coordinate{Latitude: loc.Latitude, Longitude: loc.Longitude}, nil
}
