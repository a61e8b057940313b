package collector

import (
	"fmt"

	"github.com/ozsensors/bom-bridge/internal/models"
)

// mdiIcons maps bureau icon descriptors to home-automation icon identifiers.
var mdiIcons = map[string]string{
	"sunny":         "mdi:weather-sunny",
	"clear":         "mdi:weather-night",
	"mostly_sunny":  "mdi:weather-partly-cloudy",
	"partly_cloudy": "mdi:weather-partly-cloudy",
	"cloudy":        "mdi:weather-cloudy",
	"hazy":          "mdi:weather-hazy",
	"light_rain":    "mdi:weather-partly-rainy",
	"windy":         "mdi:weather-windy",
	"fog":           "mdi:weather-fog",
	"shower":        "mdi:weather-rainy",
	"rain":          "mdi:weather-pouring",
	"dusty":         "mdi:weather-hazy",
	"frost":         "mdi:snowflake-melt",
	"snow":          "mdi:weather-snowy",
	"storm":         "mdi:weather-lightning-rainy",
	"light_shower":  "mdi:weather-light-showers",
	"heavy_shower":  "mdi:weather-pouring",
	"cyclone":       "mdi:weather-hurricane",
}

const (
	dailyRainJoiner  = "–"    // en dash, no spaces: "2–8"
	hourlyRainJoiner = " to " // "2 to 8"
)

// flattenKeys lifts each listed nested object into the parent under
// "<parent>_<child>" keys and removes the original. Keys holding null or
// non-object values are left untouched.
func flattenKeys(m map[string]interface{}, keys ...string) {
	for _, key := range keys {
		nested, ok := m[key].(map[string]interface{})
		if !ok {
			continue
		}
		delete(m, key)
		for inner, v := range nested {
			m[key+"_"+inner] = v
		}
	}
}

// formatObservations normalizes a raw observations payload in place: wind and
// gust objects are flattened (or marked unavailable when the station reports
// none), and dew point and delta-T are derived from temperature and humidity.
func formatObservations(p models.Payload) {
	d := p.Data()
	if d == nil {
		return
	}

	if d["wind"] != nil {
		flattenKeys(d, "wind")
	} else {
		d["wind_direction"] = "unavailable"
		d["wind_speed_kilometre"] = "unavailable"
		d["wind_speed_knot"] = "unavailable"
	}
	if d["gust"] != nil {
		flattenKeys(d, "gust")
	} else {
		d["gust_speed_kilometre"] = "unavailable"
		d["gust_speed_knot"] = "unavailable"
	}

	temp, okTemp := models.Number(d, "temp")
	humidity, okHumidity := models.Number(d, "humidity")
	if okTemp && okHumidity {
		if dp, ok := dewPoint(temp, humidity); ok {
			d["dew_point"] = dp
		} else {
			d["dew_point"] = nil
		}
	} else {
		d["dew_point"] = nil
	}

	if dp, okDew := models.Number(d, "dew_point"); okTemp && okDew {
		d["delta_t"] = round1(temp - dp)
	} else {
		d["delta_t"] = nil
	}
}

// formatDailyForecasts normalizes a raw daily forecast payload in place.
// Every day entry gets rain/uv/astronomical flattening, the icon lookup and
// the rain range. Day 0 additionally gets the "now" block extracted to
// top-level fields and the day/night icon override.
func formatDailyForecasts(p models.Payload) {
	for i, raw := range p.DataList() {
		d, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}

		if rain, ok := d["rain"].(map[string]interface{}); ok {
			flattenKeys(rain, "amount")
		}
		flattenKeys(d, "rain", "uv", "astronomical")

		if i == 0 {
			isNight := false
			if now, ok := d["now"].(map[string]interface{}); ok {
				delete(d, "now")
				d["now_label"] = now["now_label"]
				d["temp_now"] = now["temp_now"]
				d["later_label"] = now["later_label"]
				d["temp_later"] = now["temp_later"]
				isNight, _ = now["is_night"].(bool)
			}
			overrideIcon(d, isNight)
		}

		d["mdi_icon"] = lookupIcon(d)
		deriveRainRange(d, dailyRainJoiner)
	}
}

// formatHourlyForecasts normalizes a raw hourly forecast payload in place.
// Same treatment as daily entries except wind is flattened instead of
// uv/astronomical, and the rain range joins with " to ".
func formatHourlyForecasts(p models.Payload) {
	for _, raw := range p.DataList() {
		d, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}

		isNight, _ := d["is_night"].(bool)
		overrideIcon(d, isNight)
		d["mdi_icon"] = lookupIcon(d)

		if rain, ok := d["rain"].(map[string]interface{}); ok {
			flattenKeys(rain, "amount")
		}
		flattenKeys(d, "rain", "wind")

		deriveRainRange(d, hourlyRainJoiner)
	}
}

// overrideIcon rewrites the icon descriptor for day/night mismatches: the
// bureau reports "sunny"/"mostly_sunny" at night and "clear" during the day.
func overrideIcon(d map[string]interface{}, isNight bool) {
	desc, _ := d["icon_descriptor"].(string)
	if isNight && (desc == "sunny" || desc == "mostly_sunny") {
		d["icon_descriptor"] = "clear"
	} else if !isNight && desc == "clear" {
		d["icon_descriptor"] = "sunny"
	}
}

// lookupIcon maps the (possibly overridden) icon descriptor to an icon
// identifier, or nil for unknown descriptors.
func lookupIcon(d map[string]interface{}) interface{} {
	desc, _ := d["icon_descriptor"].(string)
	if icon, ok := mdiIcons[desc]; ok {
		return icon
	}
	return nil
}

// deriveRainRange fills rain_amount_range from rain_amount_min/max. A null
// max collapses the range to the min value itself (and overwrites max to
// match); otherwise the range is "<min><joiner><max>".
func deriveRainRange(d map[string]interface{}, joiner string) {
	min := d["rain_amount_min"]
	if max, ok := d["rain_amount_max"]; !ok || max == nil {
		d["rain_amount_max"] = min
		d["rain_amount_range"] = min
	} else {
		d["rain_amount_range"] = fmt.Sprintf("%v%s%v", min, joiner, max)
	}
}
