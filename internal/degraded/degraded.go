// Package degraded tracks the health of the bureau fetch path. The collector
// records one outcome per endpoint fetch (after retries), and the health
// endpoint reads the error rate over a sliding window to decide whether the
// service should report itself degraded.
package degraded

import (
	"time"

	"github.com/ozsensors/bom-bridge/internal/traffic"
)

// RecordSuccess records a successful bureau fetch.
func RecordSuccess() {
	traffic.RecordSuccess()
}

// RecordError records a bureau fetch that exhausted all retries.
func RecordError() {
	traffic.RecordError()
}

// ErrorRate returns (errorCount, totalCount) within the window. totalCount = successes + errors.
func ErrorRate(window time.Duration) (errors, total int) {
	return traffic.ErrorRate(window)
}

// Reset clears all recorded data. For tests only.
func Reset() {
	traffic.Reset()
}
