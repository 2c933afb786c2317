// Package geo provides geolocation utilities for report positions:
// great-circle distance for relevance scoring and geohash encoding for
// coarse public display.
package geo

import (
	"errors"
	"math"
)

// ErrInvalidCoordinate is returned when a latitude or longitude is outside
// the valid degree range. This is a caller error and is never retried.
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// earthRadiusKm is the mean Earth radius used by the haversine formula.
const earthRadiusKm = 6371.0088

// Coordinate is a (latitude, longitude) pair in degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Validate checks that the coordinate is within valid degree ranges:
// latitude in [-90, 90] and longitude in [-180, 180].
// NaN and infinite values are rejected.
func (c Coordinate) Validate() error {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lng) || math.IsInf(c.Lat, 0) || math.IsInf(c.Lng, 0) {
		return ErrInvalidCoordinate
	}
	if c.Lat < -90 || c.Lat > 90 {
		return ErrInvalidCoordinate
	}
	if c.Lng < -180 || c.Lng > 180 {
		return ErrInvalidCoordinate
	}
	return nil
}

// Distance returns the great-circle distance between two coordinates in
// kilometers using the haversine formula. Accuracy is well under a meter at
// the city scale (< 200 km) the feed operates on.
//
// Returns ErrInvalidCoordinate if either coordinate is out of range.
// Distance is symmetric and Distance(a, a) == 0.
func Distance(a, b Coordinate) (float64, error) {
	if err := a.Validate(); err != nil {
		return 0, err
	}
	if err := b.Validate(); err != nil {
		return 0, err
	}

	lat1 := radians(a.Lat)
	lat2 := radians(b.Lat)
	dLat := radians(b.Lat - a.Lat)
	dLng := radians(b.Lng - a.Lng)

	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)

	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLng*sinLng

	// Guard against floating point drift pushing h past 1 for antipodal points.
	if h > 1 {
		h = 1
	}

	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h)), nil
}

// radians converts degrees to radians.
func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
