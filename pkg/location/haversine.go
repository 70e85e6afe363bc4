package location

import "math"

// EarthRadiusKm is the Earth mean radius in kilometers for Haversine.
const EarthRadiusKm = 6371.0

// GeoPoint is a latitude/longitude pair in decimal degrees.
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Valid reports whether both coordinates are finite and within range.
func (p GeoPoint) Valid() bool {
	if math.IsNaN(p.Latitude) || math.IsNaN(p.Longitude) ||
		math.IsInf(p.Latitude, 0) || math.IsInf(p.Longitude, 0) {
		return false
	}
	return p.Latitude >= -90 && p.Latitude <= 90 &&
		p.Longitude >= -180 && p.Longitude <= 180
}

// IsZero reports whether p is (0,0), which clients send when no fix is available.
func (p GeoPoint) IsZero() bool {
	return p.Latitude == 0 && p.Longitude == 0
}

func rad(d float64) float64 { return d * math.Pi / 180 }

// HaversineKm returns the great-circle distance in km between a and b.
// Input is not range checked.
func HaversineKm(a, b GeoPoint) float64 {
	φ1, φ2 := rad(a.Latitude), rad(b.Latitude)
	Δφ := φ2 - φ1
	Δλ := rad(b.Longitude) - rad(a.Longitude)
	h := math.Sin(Δφ/2)*math.Sin(Δφ/2) +
		math.Cos(φ1)*math.Cos(φ2)*math.Sin(Δλ/2)*math.Sin(Δλ/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusKm * c
}
