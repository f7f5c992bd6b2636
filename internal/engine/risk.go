package engine

import (
	"math"

	"github.com/langchou/haulguard/internal/models"
)

// 风险启发式参数
const (
	riskBaseScore      = 0.2
	riskNoTelemetry    = 0.1
	riskNightBoost     = 0.4
	riskHotspotBoost   = 0.3
	riskScoreCap       = 0.95
	hotspotBoxDegrees  = 0.15
	nightWindowStartHr = 2
	nightWindowEndHr   = 4
)

// 走廊高危热点 (加尔各答走廊历史盗损点位)
var corridorHotspots = []models.GeoPoint{
	{Latitude: 22.3460, Longitude: 87.2320}, // Kharagpur
	{Latitude: 22.4327, Longitude: 87.8672}, // Kolaghat
}

// PredictRisk 固定启发式风险评分 (非围栏距离，热点用经纬度包围盒判定)
func (e *Engine) PredictRisk(truckID string) *models.RiskAssessment {
	machine, ok := e.states.Get(truckID)
	var last *models.Telemetry
	if ok {
		last = machine.LastTelemetry()
	}

	if last == nil {
		return &models.RiskAssessment{
			TruckID:   truckID,
			RiskScore: riskNoTelemetry,
			Message:   "No telemetry data received yet",
			Factors:   []string{},
		}
	}

	score := riskBaseScore
	factors := []string{}

	hour := last.Timestamp.Hour()
	if hour >= nightWindowStartHr && hour <= nightWindowEndHr {
		score += riskNightBoost
		factors = append(factors, "Night movement (2-4 AM)")
	}

	for _, hotspot := range corridorHotspots {
		if math.Abs(last.Location.Latitude-hotspot.Latitude) <= hotspotBoxDegrees &&
			math.Abs(last.Location.Longitude-hotspot.Longitude) <= hotspotBoxDegrees {
			score += riskHotspotBoost
			factors = append(factors, "Known pilferage corridor hotspot")
			break
		}
	}

	if score > riskScoreCap {
		score = riskScoreCap
	}

	return &models.RiskAssessment{
		TruckID:   truckID,
		RiskScore: score,
		Message:   "Heuristic risk score based on last known telemetry",
		Factors:   factors,
	}
}
