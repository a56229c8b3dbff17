package types

// Place is a nearby hangout spot.
type Place struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Rating       *float64 `json:"rating,omitempty"`
	RatingsTotal *int64   `json:"ratingsTotal,omitempty"`
	Vicinity     string   `json:"vicinity,omitempty"`
	MapsURL      string   `json:"mapsUrl"`
}

// ClientConfig carries public values injected into client-loaded scripts.
type ClientConfig struct {
	MapsAPIKey string `json:"mapsApiKey"`
}
