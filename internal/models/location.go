package models

// Location is a configured observation point. Geohash is the 6-character key
// the bureau API uses for all per-location endpoints.
type Location struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Geohash   string  `json:"geohash"`
}
