package bom

// DefaultBaseURL is the bureau's public API root for per-location resources.
const DefaultBaseURL = "https://api.weather.bom.gov.au/v1/locations/"

// DefaultUserAgent is sent on every request. The bureau rejects some default
// library agents.
const DefaultUserAgent = "bom-bridge/1.0 (https://github.com/ozsensors/bom-bridge)"

// Endpoint identifies one of the five bureau resources the collector tracks.
// It doubles as the cache key for last-known-good payloads, so it is a closed
// enum rather than a free-form string.
type Endpoint int

const (
	Locations Endpoint = iota
	Observations
	DailyForecasts
	HourlyForecasts
	Warnings

	// NumEndpoints sizes per-endpoint arrays.
	NumEndpoints
)

// String returns the cache-key name used in logs and metric labels.
func (e Endpoint) String() string {
	switch e {
	case Locations:
		return "locations"
	case Observations:
		return "observations"
	case DailyForecasts:
		return "daily_forecasts"
	case HourlyForecasts:
		return "hourly_forecasts"
	case Warnings:
		return "warnings"
	default:
		return "unknown"
	}
}

// Path returns the URL path for this endpoint relative to the base URL.
// All five resources are rooted at the location geohash.
func (e Endpoint) Path(geohash string) string {
	switch e {
	case Observations:
		return geohash + "/observations"
	case DailyForecasts:
		return geohash + "/forecasts/daily"
	case HourlyForecasts:
		return geohash + "/forecasts/hourly"
	case Warnings:
		return geohash + "/warnings"
	default:
		return geohash
	}
}
