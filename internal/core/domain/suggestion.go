package domain

// Suggestion is one geocoder candidate for a free-text place search.
type Suggestion struct {
	PlaceID     string   `json:"place_id"`
	Name        string   `json:"name"`
	DisplayName string   `json:"display_name"`
	Lat         string   `json:"lat"`
	Lon         string   `json:"lon"`
	Class       string   `json:"class"`
	Type        string   `json:"type"`
	AddressType string   `json:"addresstype"`
	Importance  float64  `json:"importance"`
	BoundingBox []string `json:"boundingbox"`
}
