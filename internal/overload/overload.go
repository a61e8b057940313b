// Package overload reads the read-surface traffic window to decide whether
// the service is shedding load. A burst of rate-limit denials within the
// window flips the health endpoint to overloaded.
package overload

import (
	"time"

	"github.com/ozsensors/bom-bridge/internal/traffic"
)

// RecordDenial records a rate-limit denial (429). Call from middleware when returning 429.
func RecordDenial() {
	traffic.RecordDenied()
}

// RequestCount returns the number of outcomes (success + error + denied) within the given window.
func RequestCount(window time.Duration) int {
	return traffic.RequestCount(window)
}

// DenialCount returns the number of denials within the given window.
func DenialCount(window time.Duration) int {
	return traffic.DenialCount(window)
}

// Reset clears all recorded data. For tests only.
func Reset() {
	traffic.Reset()
}
