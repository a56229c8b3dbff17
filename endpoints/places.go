package endpoints

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/EasterCompany/dex-meetup-service/internal/places"
	"github.com/EasterCompany/dex-meetup-service/types"
	"github.com/EasterCompany/dex-meetup-service/utils"
)

// PlacesHandler serves GET /api/places?filter=&lat=&lng=. A nil service
// means no maps key is configured.
func PlacesHandler(svc *places.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			utils.WriteError(w, http.StatusServiceUnavailable, "Places search is not configured")
			return
		}

		q := r.URL.Query()
		lat, errLat := strconv.ParseFloat(q.Get("lat"), 64)
		lng, errLng := strconv.ParseFloat(q.Get("lng"), 64)
		if errLat != nil || errLng != nil || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
			utils.WriteError(w, http.StatusBadRequest, "lat and lng are required")
			return
		}
		filter := q.Get("filter")
		if filter == "" {
			filter = places.FilterAll
		}

		results, err := svc.Search(r.Context(), filter, places.LatLng{Lat: lat, Lng: lng})
		if err != nil {
			if errors.Is(err, places.ErrUnknownFilter) {
				utils.WriteError(w, http.StatusBadRequest, err.Error())
				return
			}
			log.Printf("Places: search %s failed: %v", filter, err)
			utils.WriteError(w, http.StatusBadGateway, "Places search failed")
			return
		}
		if results == nil {
			results = []types.Place{}
		}
		utils.WriteJSON(w, http.StatusOK, results)
	}
}

// ClientConfigHandler exposes the public maps key to client scripts.
func ClientConfigHandler(mapsKey string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		utils.WriteJSON(w, http.StatusOK, types.ClientConfig{MapsAPIKey: mapsKey})
	}
}
