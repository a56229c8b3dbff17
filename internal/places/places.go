package places

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"sort"

	"github.com/EasterCompany/dex-meetup-service/types"
)

const (
	SearchRadiusMeters = 2000
	MaxResults         = 12
)

// Filter names accepted by Search.
const (
	FilterAll     = "all"
	FilterCafe    = "cafe"
	FilterLibrary = "library"
	FilterPark    = "park"
	FilterStudy   = "study"
)

// studyKeyword is the free-text query used for the "study" filter.
const studyKeyword = "study space"

var ErrUnknownFilter = errors.New("unknown place filter")

// LatLng is a WGS84 coordinate.
type LatLng struct {
	Lat float64
	Lng float64
}

// Backend performs the two kinds of radius-bounded searches.
type Backend interface {
	Nearby(ctx context.Context, center LatLng, radius float64, placeType string) ([]types.Place, error)
	Keyword(ctx context.Context, center LatLng, radius float64, keyword string) ([]types.Place, error)
}

// Service applies filter semantics, the keyword fallback pass and ranking
// on top of a Backend.
type Service struct {
	backend Backend
}

func NewService(backend Backend) *Service {
	return &Service{backend: backend}
}

// Search returns up to MaxResults places near center for filter, best rated
// first. A typed search that finds nothing is retried once as a keyword
// search using the filter name.
func (s *Service) Search(ctx context.Context, filter string, center LatLng) ([]types.Place, error) {
	if filter == "" {
		filter = FilterAll
	}

	var (
		results []types.Place
		err     error
	)
	switch filter {
	case FilterAll:
		results, err = s.backend.Nearby(ctx, center, SearchRadiusMeters, "")
	case FilterStudy:
		results, err = s.backend.Keyword(ctx, center, SearchRadiusMeters, studyKeyword)
	case FilterCafe, FilterLibrary, FilterPark:
		results, err = s.backend.Nearby(ctx, center, SearchRadiusMeters, filter)
		if err != nil || len(results) == 0 {
			if err != nil {
				log.Printf("Places: typed search for %s failed, retrying as keyword: %v", filter, err)
			}
			results, err = s.backend.Keyword(ctx, center, SearchRadiusMeters, filter)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFilter, filter)
	}
	if err != nil {
		return nil, err
	}

	return Rank(results, MaxResults), nil
}

// Rank sorts by rating then rating count (both descending, missing values
// count as zero), fills in map links and truncates to limit.
func Rank(results []types.Place, limit int) []types.Place {
	ranked := make([]types.Place, len(results))
	copy(ranked, results)

	sort.SliceStable(ranked, func(i, j int) bool {
		ri, rj := deref(ranked[i].Rating), deref(ranked[j].Rating)
		if ri != rj {
			return ri > rj
		}
		return derefInt(ranked[i].RatingsTotal) > derefInt(ranked[j].RatingsTotal)
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	for i := range ranked {
		if ranked[i].Name == "" {
			ranked[i].Name = "(unknown)"
		}
		ranked[i].MapsURL = MapsLink(ranked[i])
	}
	return ranked
}

// MapsLink builds a Google Maps search URL for p.
func MapsLink(p types.Place) string {
	return fmt.Sprintf("https://www.google.com/maps/search/?api=1&query=%s&query_place_id=%s",
		url.QueryEscape(p.Name), url.QueryEscape(p.ID))
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

func derefInt(n *int64) int64 {
	if n == nil {
		return 0
	}
	return *n
}
