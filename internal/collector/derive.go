package collector

import "math"

// Magnus-Tetens coefficients for dew point estimation over water.
const (
	magnusA = 17.27
	magnusB = 237.7
)

// dewPoint estimates the dew point in Celsius from dry-bulb temperature and
// relative humidity using the Magnus-Tetens approximation, rounded to one
// decimal. ok is false when the inputs put the formula outside its domain
// (humidity <= 0, or a degenerate denominator).
func dewPoint(temp, humidity float64) (float64, bool) {
	if humidity <= 0 {
		return 0, false
	}
	gamma := magnusA*temp/(magnusB+temp) + math.Log(humidity/100.0)
	dp := magnusB * gamma / (magnusA - gamma)
	if math.IsNaN(dp) || math.IsInf(dp, 0) {
		return 0, false
	}
	return round1(dp), true
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
