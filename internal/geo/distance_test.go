package geo

import (
	"math"
	"testing"

	"github.com/langchou/haulguard/internal/models"
)

func TestDistanceMeters_SamePoint(t *testing.T) {
	p := models.GeoPoint{Latitude: 22.5726, Longitude: 88.3639}
	if d := DistanceMeters(p, p); d != 0 {
		t.Errorf("expected 0, got %f", d)
	}
}

func TestDistanceMeters_KnownDistance(t *testing.T) {
	// 贾姆谢德布尔 -> 加尔各答，约 225 km
	jamshedpur := models.GeoPoint{Latitude: 22.8046, Longitude: 86.2029}
	kolkata := models.GeoPoint{Latitude: 22.5726, Longitude: 88.3639}

	d := DistanceMeters(jamshedpur, kolkata)
	if d < 215000 || d > 235000 {
		t.Errorf("expected ~225km, got %f m", d)
	}
}

func TestDistanceMeters_Symmetric(t *testing.T) {
	a := models.GeoPoint{Latitude: 22.3460, Longitude: 87.2320}
	b := models.GeoPoint{Latitude: 22.4327, Longitude: 87.8672}

	d1 := DistanceMeters(a, b)
	d2 := DistanceMeters(b, a)
	if math.Abs(d1-d2) > 1e-9 {
		t.Errorf("distance not symmetric: %f vs %f", d1, d2)
	}
}

func TestWithinRadius_Boundary(t *testing.T) {
	center := models.GeoPoint{Latitude: 22.4327, Longitude: 87.8672}
	// 纬度方向偏移约 111m/0.001°
	near := models.GeoPoint{Latitude: 22.4327 + 0.0005, Longitude: 87.8672}
	far := models.GeoPoint{Latitude: 22.4327 + 0.01, Longitude: 87.8672}

	if !WithinRadius(near, center, 100) {
		t.Error("expected ~55m offset inside 100m radius")
	}
	if WithinRadius(far, center, 100) {
		t.Error("expected ~1.1km offset outside 100m radius")
	}
	if !WithinRadius(center, center, 0) {
		t.Error("edge: distance 0 must satisfy radius 0")
	}
}
