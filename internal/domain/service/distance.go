package service

import (
	"math"

	"baddelli/internal/domain/entity"
)

const earthRadiusKm = 6371.0

// DistanceKm is the great-circle distance between two points.
func DistanceKm(a, b entity.GeoPoint) float64 {
	dLat := deg2rad(b.Lat - a.Lat)
	dLng := deg2rad(b.Lng - a.Lng)
	h := math.Pow(math.Sin(dLat/2), 2) +
		math.Cos(deg2rad(a.Lat))*math.Cos(deg2rad(b.Lat))*math.Pow(math.Sin(dLng/2), 2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// RoundedDistanceKm rounds to one decimal place for display.
func RoundedDistanceKm(a, b entity.GeoPoint) float64 {
	return math.Round(DistanceKm(a, b)*10) / 10
}

func deg2rad(deg float64) float64 {
	return deg * math.Pi / 180
}
