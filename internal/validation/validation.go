package validation

import (
	"errors"
	"strings"
	"unicode"
)

// ErrNameEmpty is returned when a location name is empty or whitespace-only after trim.
var ErrNameEmpty = errors.New("location name is required")

// ErrNameTooLong is returned when a location name exceeds the maximum length.
var ErrNameTooLong = errors.New("location name too long")

// ErrNameInvalidChars is returned when a location name contains disallowed characters.
var ErrNameInvalidChars = errors.New("location name contains invalid characters")

// ErrLatitudeOutOfRange is returned when latitude is outside [-90, 90].
var ErrLatitudeOutOfRange = errors.New("latitude must be between -90 and 90")

// ErrLongitudeOutOfRange is returned when longitude is outside [-180, 180].
var ErrLongitudeOutOfRange = errors.New("longitude must be between -180 and 180")

// ErrGeohashLength is returned when a geohash is shorter than 6 characters.
var ErrGeohashLength = errors.New("geohash must be at least 6 characters")

// ErrGeohashInvalidChars is returned when a geohash contains characters outside
// the base-32 alphabet.
var ErrGeohashInvalidChars = errors.New("geohash contains invalid characters")

// geohashAlphabet is the base-32 character set used by the bureau's location
// identifiers. It excludes a, i, l and o.
const geohashAlphabet = "0123456789bcdefghjkmnpqrstuvwxyz"

const maxNameLen = 100

// ValidateName trims a configured location name and restricts it to letters
// (Unicode), digits, space, comma, hyphen and apostrophe. Returns the trimmed
// string or an error suitable for rejecting the config entry.
func ValidateName(input string) (string, error) {
	s := strings.TrimSpace(input)
	r := []rune(s)
	if len(r) == 0 {
		return "", ErrNameEmpty
	}
	if len(r) > maxNameLen {
		return "", ErrNameTooLong
	}
	for _, c := range r {
		if !isAllowedNameRune(c) {
			return "", ErrNameInvalidChars
		}
	}
	return s, nil
}

// isAllowedNameRune returns true for letters (Unicode), digits, space, comma,
// hyphen and apostrophe. Apostrophe covers names like O'Connor.
func isAllowedNameRune(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsNumber(r) {
		return true
	}
	switch r {
	case ' ', ',', '-', '\'':
		return true
	}
	return false
}

// ValidateCoordinates checks that a latitude/longitude pair lies within the
// valid WGS 84 ranges.
func ValidateCoordinates(latitude, longitude float64) error {
	if latitude < -90 || latitude > 90 {
		return ErrLatitudeOutOfRange
	}
	if longitude < -180 || longitude > 180 {
		return ErrLongitudeOutOfRange
	}
	return nil
}

// ValidateGeohash checks a request or config geohash: lowercase base-32, at
// least 6 characters. Longer hashes are accepted; callers truncate to 6 for
// the bureau endpoints that require it.
func ValidateGeohash(gh string) error {
	if len(gh) < 6 {
		return ErrGeohashLength
	}
	for _, c := range gh {
		if !strings.ContainsRune(geohashAlphabet, c) {
			return ErrGeohashInvalidChars
		}
	}
	return nil
}
