package validation

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateName_EmptyAndWhitespace(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"spaces", "   "},
		{"tab", "\t"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ValidateName(tc.input)
			if !errors.Is(err, ErrNameEmpty) {
				t.Errorf("error = %v, want ErrNameEmpty", err)
			}
		})
	}
}

func TestValidateName_TooLong(t *testing.T) {
	_, err := ValidateName(strings.Repeat("a", 101))
	if !errors.Is(err, ErrNameTooLong) {
		t.Errorf("error = %v, want ErrNameTooLong", err)
	}
}

func TestValidateName_InvalidChars(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"slash", "syd/ney"},
		{"hash", "syd#ney"},
		{"control", "syd\x00ney"},
		{"percent", "syd%ney"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ValidateName(tc.input)
			if !errors.Is(err, ErrNameInvalidChars) {
				t.Errorf("error = %v, want ErrNameInvalidChars", err)
			}
		})
	}
}

func TestValidateName_Valid(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple", "Sydney", "Sydney"},
		{"with space", "Alice Springs", "Alice Springs"},
		{"hyphen", "Wagga-Wagga", "Wagga-Wagga"},
		{"apostrophe", "O'Connor", "O'Connor"},
		{"trimmed", "  Perth  ", "Perth"},
		{"comma qualifier", "Richmond, NSW", "Richmond, NSW"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ValidateName(tc.input)
			if err != nil {
				t.Fatalf("ValidateName() err = %v", err)
			}
			if got != tc.want {
				t.Errorf("normalized = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestValidateCoordinates(t *testing.T) {
	tests := []struct {
		name    string
		lat     float64
		lon     float64
		wantErr error
	}{
		{"sydney", -33.8688, 151.2093, nil},
		{"equator meridian", 0, 0, nil},
		{"lat boundary", 90, 0, nil},
		{"lon boundary", 0, -180, nil},
		{"lat too high", 90.01, 0, ErrLatitudeOutOfRange},
		{"lat too low", -91, 0, ErrLatitudeOutOfRange},
		{"lon too high", 0, 180.5, ErrLongitudeOutOfRange},
		{"lon too low", 0, -181, ErrLongitudeOutOfRange},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateCoordinates(tc.lat, tc.lon)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("ValidateCoordinates(%v, %v) = %v, want %v", tc.lat, tc.lon, err, tc.wantErr)
			}
		})
	}
}

func TestValidateGeohash(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"sydney", "r3gx2f", nil},
		{"seven chars", "r7hgdpm", nil},
		{"too short", "r3gx2", ErrGeohashLength},
		{"empty", "", ErrGeohashLength},
		{"excluded a", "r3gxa2", ErrGeohashInvalidChars},
		{"excluded i", "r3gxi2", ErrGeohashInvalidChars},
		{"excluded l", "r3gxl2", ErrGeohashInvalidChars},
		{"excluded o", "r3gxo2", ErrGeohashInvalidChars},
		{"uppercase", "R3GX2F", ErrGeohashInvalidChars},
		{"punctuation", "r3gx.f", ErrGeohashInvalidChars},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateGeohash(tc.input)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("ValidateGeohash(%q) = %v, want %v", tc.input, err, tc.wantErr)
			}
		})
	}
}
