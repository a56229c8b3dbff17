package places

import (
	"context"
	"fmt"
	"math"

	"github.com/EasterCompany/dex-meetup-service/types"
	"google.golang.org/api/option"
	placesapi "google.golang.org/api/places/v1"
)

const fieldMask = "places.id,places.displayName,places.rating,places.userRatingCount,places.shortFormattedAddress,places.location"

const earthRadiusMeters = 6371000.0

// GoogleBackend searches with the Places API (New).
type GoogleBackend struct {
	svc *placesapi.Service
}

func NewGoogleBackend(ctx context.Context, apiKey string, opts ...option.ClientOption) (*GoogleBackend, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("places: missing maps API key")
	}
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := placesapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create places service: %w", err)
	}
	return &GoogleBackend{svc: svc}, nil
}

func circle(center LatLng, radius float64) *placesapi.GoogleMapsPlacesV1Circle {
	return &placesapi.GoogleMapsPlacesV1Circle{
		Center: &placesapi.GoogleTypeLatLng{Latitude: center.Lat, Longitude: center.Lng},
		Radius: radius,
	}
}

func (g *GoogleBackend) Nearby(ctx context.Context, center LatLng, radius float64, placeType string) ([]types.Place, error) {
	req := &placesapi.GoogleMapsPlacesV1SearchNearbyRequest{
		LocationRestriction: &placesapi.GoogleMapsPlacesV1SearchNearbyRequestLocationRestriction{
			Circle: circle(center, radius),
		},
		MaxResultCount: 20,
	}
	if placeType != "" {
		req.IncludedTypes = []string{placeType}
	}

	call := g.svc.Places.SearchNearby(req).Context(ctx)
	call.Header().Set("X-Goog-FieldMask", fieldMask)
	resp, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("nearby search: %w", err)
	}
	return convert(resp.Places), nil
}

func (g *GoogleBackend) Keyword(ctx context.Context, center LatLng, radius float64, keyword string) ([]types.Place, error) {
	req := &placesapi.GoogleMapsPlacesV1SearchTextRequest{
		TextQuery: keyword,
		LocationBias: &placesapi.GoogleMapsPlacesV1SearchTextRequestLocationBias{
			Circle: circle(center, radius),
		},
	}

	call := g.svc.Places.SearchText(req).Context(ctx)
	call.Header().Set("X-Goog-FieldMask", fieldMask)
	resp, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("keyword search: %w", err)
	}
	// Text search only biases towards the circle.
	return convert(withinRadius(resp.Places, center, radius)), nil
}

func convert(in []*placesapi.GoogleMapsPlacesV1Place) []types.Place {
	out := make([]types.Place, 0, len(in))
	for _, p := range in {
		if p == nil {
			continue
		}
		place := types.Place{ID: p.Id, Vicinity: p.ShortFormattedAddress}
		if p.DisplayName != nil {
			place.Name = p.DisplayName.Text
		}
		if p.Rating > 0 {
			rating := p.Rating
			place.Rating = &rating
		}
		if p.UserRatingCount > 0 {
			total := p.UserRatingCount
			place.RatingsTotal = &total
		}
		out = append(out, place)
	}
	return out
}

// withinRadius keeps places whose location lies inside the circle. Places
// without a location are dropped.
func withinRadius(in []*placesapi.GoogleMapsPlacesV1Place, center LatLng, radius float64) []*placesapi.GoogleMapsPlacesV1Place {
	out := make([]*placesapi.GoogleMapsPlacesV1Place, 0, len(in))
	for _, p := range in {
		if p == nil || p.Location == nil {
			continue
		}
		if Distance(center, LatLng{Lat: p.Location.Latitude, Lng: p.Location.Longitude}) <= radius {
			out = append(out, p)
		}
	}
	return out
}

// Distance is the haversine great-circle distance between a and b in meters.
func Distance(a, b LatLng) float64 {
	lat1, lat2 := a.Lat*math.Pi/180, b.Lat*math.Pi/180
	dLat := lat2 - lat1
	dLng := (b.Lng - a.Lng) * math.Pi / 180
	h := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(h)))
}
