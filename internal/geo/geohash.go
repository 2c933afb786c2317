package geo

import "strings"

// DisplayPrecision is the geohash precision used for public report display.
// Six characters is roughly ±0.61 km, enough for map clustering without
// pinpointing the reporter's exact position.
const DisplayPrecision = 6

// base32 is the geohash base32 alphabet (excludes 'a', 'i', 'l', 'o').
const base32 = "0123456789bcdefghjkmnpqrstuvwxyz"

// validGeohashChars is a lookup of valid geohash base32 characters.
var validGeohashChars = func() map[rune]bool {
	m := make(map[rune]bool, len(base32))
	for _, c := range base32 {
		m[c] = true
	}
	return m
}()

// Encode encodes a coordinate into a geohash string of the given precision
// using the standard interleaved bisection algorithm. A precision below 1
// falls back to DisplayPrecision. The coordinate is assumed valid; callers
// holding raw floats should run Coordinate.Validate first.
func Encode(c Coordinate, precision int) string {
	if precision < 1 {
		precision = DisplayPrecision
	}

	latRange := [2]float64{-90.0, 90.0}
	lngRange := [2]float64{-180.0, 180.0}

	var hash strings.Builder
	hash.Grow(precision)

	bits := 0
	var ch uint

	even := true
	for hash.Len() < precision {
		if even {
			mid := (lngRange[0] + lngRange[1]) / 2
			if c.Lng > mid {
				ch |= 1 << (4 - bits)
				lngRange[0] = mid
			} else {
				lngRange[1] = mid
			}
		} else {
			mid := (latRange[0] + latRange[1]) / 2
			if c.Lat > mid {
				ch |= 1 << (4 - bits)
				latRange[0] = mid
			} else {
				latRange[1] = mid
			}
		}

		even = !even
		bits++

		if bits == 5 {
			hash.WriteByte(base32[ch])
			bits = 0
			ch = 0
		}
	}

	return hash.String()
}

// Truncate lowers a geohash to the given precision for coarse display.
// Returns an empty string for empty input, invalid characters, or a
// precision below 1. Input shorter than the precision is returned
// normalized to lowercase.
func Truncate(input string, precision int) string {
	if input == "" || precision < 1 {
		return ""
	}

	lower := strings.ToLower(input)
	for _, c := range lower {
		if !validGeohashChars[c] {
			return ""
		}
	}

	if len(lower) <= precision {
		return lower
	}
	return lower[:precision]
}
