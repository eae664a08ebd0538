// Package geo computes great-circle distances between WGS84 coordinates.
package geo

import (
	"math"

	"github.com/Cheertaboi/flash-coupon-service/internal/models"
)

// EarthRadiusMeters is the mean Earth radius used by the haversine formula.
const EarthRadiusMeters = 6371000.0

// Distance returns the haversine distance in meters between a and b.
// Range checking is the caller's job, see Validate.
func Distance(a, b models.Location) float64 {
	lat1 := toRadians(a.Lat)
	lat2 := toRadians(b.Lat)
	dLat := toRadians(b.Lat - a.Lat)
	dLng := toRadians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	// rounding can push h just past 1 for antipodal points
	h = math.Min(1, math.Max(0, h))

	return EarthRadiusMeters * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// Validate returns an *models.InvalidLocationError when l is out of range.
func Validate(l models.Location) error {
	if !l.Valid() {
		return &models.InvalidLocationError{Lat: l.Lat, Lng: l.Lng}
	}
	return nil
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
