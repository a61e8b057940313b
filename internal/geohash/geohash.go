// Package geohash implements the standard interleaved-bit geohash codec used
// by the bureau API to address locations.
package geohash

import (
	"fmt"
	"strings"
)

const base32 = "0123456789bcdefghjkmnpqrstuvwxyz"

// Encode returns the geohash of the given coordinates at the given precision
// (characters of output). Bits alternate longitude-first, 5 bits per output
// character.
func Encode(latitude, longitude float64, precision int) string {
	latLo, latHi := -90.0, 90.0
	lonLo, lonHi := -180.0, 180.0

	var sb strings.Builder
	sb.Grow(precision)

	bit := 0
	ch := 0
	even := true
	for sb.Len() < precision {
		if even {
			mid := (lonLo + lonHi) / 2
			if longitude > mid {
				ch |= 1 << (4 - bit)
				lonLo = mid
			} else {
				lonHi = mid
			}
		} else {
			mid := (latLo + latHi) / 2
			if latitude > mid {
				ch |= 1 << (4 - bit)
				latLo = mid
			} else {
				latHi = mid
			}
		}
		even = !even
		if bit < 4 {
			bit++
		} else {
			sb.WriteByte(base32[ch])
			bit = 0
			ch = 0
		}
	}
	return sb.String()
}

// Decode returns the center point of the bounding box the geohash describes.
func Decode(geohash string) (latitude, longitude float64, err error) {
	latLo, latHi := -90.0, 90.0
	lonLo, lonHi := -180.0, 180.0

	even := true
	for i := 0; i < len(geohash); i++ {
		idx := strings.IndexByte(base32, geohash[i])
		if idx < 0 {
			return 0, 0, fmt.Errorf("geohash: invalid character %q at position %d", geohash[i], i)
		}
		for mask := 16; mask >= 1; mask >>= 1 {
			if even {
				mid := (lonLo + lonHi) / 2
				if idx&mask != 0 {
					lonLo = mid
				} else {
					lonHi = mid
				}
			} else {
				mid := (latLo + latHi) / 2
				if idx&mask != 0 {
					latLo = mid
				} else {
					latHi = mid
				}
			}
			even = !even
		}
	}
	return (latLo + latHi) / 2, (lonLo + lonHi) / 2, nil
}
