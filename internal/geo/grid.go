package geo

import (
	"errors"
	"math"
	"strconv"
)

// RegionKey is a coarse fixed-grid partition key used only for
// subscription and broadcast scoping. It is never persisted.
type RegionKey string

// regionPrecision is the number of decimal places kept per coordinate,
// giving ~1.1 km grid cells at the equator.
const regionPrecision = 2

const EarthRadiusMeters = 6371000.0

var ErrInvalidCoordinate = errors.New("geo: coordinate out of range")

// RegionOf maps a coordinate pair to its grid cell, e.g. (40.7128, -74.0060)
// -> "40.71_-74.01". Deterministic and total over the valid domain.
func RegionOf(lat, lng float64) (RegionKey, error) {
	if err := ValidateCoordinates(lat, lng); err != nil {
		return "", err
	}
	key := strconv.FormatFloat(lat, 'f', regionPrecision, 64) +
		"_" +
		strconv.FormatFloat(lng, 'f', regionPrecision, 64)
	return RegionKey(key), nil
}

func ValidateCoordinates(lat, lng float64) error {
	if math.IsNaN(lat) || math.IsNaN(lng) {
		return ErrInvalidCoordinate
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return ErrInvalidCoordinate
	}
	return nil
}

// DistanceMeters returns the haversine great-circle distance between two
// coordinate pairs.
func DistanceMeters(lat1, lng1, lat2, lng2 float64) float64 {
	const degToRad = math.Pi / 180

	phi1 := lat1 * degToRad
	phi2 := lat2 * degToRad
	dPhi := (lat2 - lat1) * degToRad
	dLambda := (lng2 - lng1) * degToRad

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters * c
}
