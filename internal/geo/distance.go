package geo

import (
	"math"

	"github.com/langchou/haulguard/internal/models"
)

const earthRadiusMeters = 6371000

// DistanceMeters 计算两点间大圆距离 (haversine, 米)
func DistanceMeters(p1, p2 models.GeoPoint) float64 {
	dLat := toRad(p2.Latitude - p1.Latitude)
	dLon := toRad(p2.Longitude - p1.Longitude)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(p1.Latitude))*math.Cos(toRad(p2.Latitude))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusMeters * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// WithinRadius 判断点是否落在圆形围栏内 (边界算作在内)
func WithinRadius(p, center models.GeoPoint, radiusMeters float64) bool {
	return DistanceMeters(p, center) <= radiusMeters
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
