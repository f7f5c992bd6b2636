package detector

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/langchou/haulguard/internal/geo"
	"github.com/langchou/haulguard/internal/models"
	"github.com/langchou/haulguard/internal/state"
)

// 检测阈值默认值
const (
	DefaultStopSpeedKmh         = 5.0   // 低于此速度视为停车
	DefaultUnauthorizedGraceMin = 5.0   // 非授权停车的宽限期 (等红灯/堵车)
	DefaultSafeZoneRadiusM      = 500.0 // 目的地安全区半径，区内掉重视为正常卸货
)

// Thresholds 异常检测阈值
type Thresholds struct {
	StopSpeedKmh         float64
	UnauthorizedGraceMin float64
	SafeZoneRadiusM      float64
}

// DefaultThresholds 默认阈值
func DefaultThresholds() Thresholds {
	return Thresholds{
		StopSpeedKmh:         DefaultStopSpeedKmh,
		UnauthorizedGraceMin: DefaultUnauthorizedGraceMin,
		SafeZoneRadiusM:      DefaultSafeZoneRadiusM,
	}
}

// AnomalyDetector 异常检测器：载重检查 + 停车行为分析
type AnomalyDetector struct {
	logger     *zap.Logger
	thresholds Thresholds
}

// NewAnomalyDetector 创建异常检测器
func NewAnomalyDetector(logger *zap.Logger, thresholds Thresholds) *AnomalyDetector {
	return &AnomalyDetector{
		logger:     logger,
		thresholds: thresholds,
	}
}

// Analyze 分析一条遥测，返回触发的告警
// 对 trip/sample 是纯函数，读写 machine 中的追踪状态
func (d *AnomalyDetector) Analyze(trip *models.TripConfig, sample *models.Telemetry, machine *state.Machine) []models.Alert {
	var alerts []models.Alert
	alerts = append(alerts, d.analyzeWeight(trip, sample)...)
	alerts = append(alerts, d.analyzeStops(trip, sample, machine)...)
	return alerts
}

// analyzeWeight 载重检查 (无状态，条件持续满足则每条遥测都会告警)
func (d *AnomalyDetector) analyzeWeight(trip *models.TripConfig, sample *models.Telemetry) []models.Alert {
	minAllowed := trip.TotalExpectedWeight - trip.WeightToleranceKg
	if sample.WeightKg >= minAllowed {
		return nil
	}

	// 目的地安全区内的掉重视为正常卸货
	distToDest := geo.DistanceMeters(sample.Location, trip.DestinationLocation)
	if distToDest <= d.thresholds.SafeZoneRadiusM {
		return nil
	}

	dropPercent := (trip.TotalExpectedWeight - sample.WeightKg) / trip.TotalExpectedWeight * 100
	d.logger.Warn("Weight mismatch detected",
		zap.String("truck_id", sample.TruckID),
		zap.Float64("weight_kg", sample.WeightKg),
		zap.Float64("expected_kg", trip.TotalExpectedWeight),
		zap.Float64("dist_to_dest_m", distToDest))

	return []models.Alert{{
		AlertID:     uuid.NewString(),
		TripID:      trip.TripID,
		TruckID:     sample.TruckID,
		Timestamp:   sample.Timestamp,
		Type:        models.AlertTypeWeightMismatch,
		Severity:    models.SeverityCritical,
		Description: fmt.Sprintf("CRITICAL – Weight drop %.0f%% outside geofence.", dropPercent),
		Location:    sample.Location,
		AgentName:   "Weight Guard",
		WhyFlagged:  fmt.Sprintf("Current weight (%.0fkg) dropped significantly below expected (%.0fkg).", sample.WeightKg, trip.TotalExpectedWeight),
		SOPRule:     "SOP-102 (Theft Prevention)",
		ActionTaken: "Security team alerted; driver called",
		Status:      models.AlertStatusOpen,
	}}
}

// analyzeStops 停车行为分析 (状态机驱动)
func (d *AnomalyDetector) analyzeStops(trip *models.TripConfig, sample *models.Telemetry, machine *state.Machine) []models.Alert {
	stopped := sample.SpeedKmh < d.thresholds.StopSpeedKmh

	if !stopped {
		// 行驶中：结束本次停车并清除状态，不告警
		if machine.IsStopped() {
			if err := machine.Resume(); err != nil {
				d.logger.Error("Failed to resume tracking state", zap.Error(err), zap.String("truck_id", sample.TruckID))
			}
		}
		return nil
	}

	if !machine.IsStopped() {
		// 行驶 -> 停车，转换本身不告警
		if err := machine.Halt(sample.Timestamp); err != nil {
			d.logger.Error("Failed to halt tracking state", zap.Error(err), zap.String("truck_id", sample.TruckID))
		}
		return nil
	}

	// 持续停车
	stopStart, ok := machine.StopStartTime()
	if !ok {
		return nil
	}
	stopDuration := sample.Timestamp.Sub(stopStart).Minutes()

	if authStop := findAuthorizedStop(sample.Location, trip.AuthorizedStops); authStop != nil {
		return d.checkOverstay(trip, sample, machine, authStop, stopDuration)
	}
	return d.checkUnauthorizedStop(trip, sample, stopDuration)
}

// checkOverstay 授权停靠点超时检查，每次停车只告警一次
func (d *AnomalyDetector) checkOverstay(trip *models.TripConfig, sample *models.Telemetry, machine *state.Machine, stop *models.AuthorizedStop, stopDuration float64) []models.Alert {
	if stopDuration <= stop.MaxDurationMinutes {
		return nil
	}
	if machine.OverstayAlerted() {
		return nil
	}
	machine.MarkOverstayAlerted()

	d.logger.Warn("Overstay at authorized stop",
		zap.String("truck_id", sample.TruckID),
		zap.String("stop", stop.Name),
		zap.Float64("duration_min", stopDuration))

	return []models.Alert{{
		AlertID:     uuid.NewString(),
		TripID:      trip.TripID,
		TruckID:     sample.TruckID,
		Timestamp:   sample.Timestamp,
		Type:        models.AlertTypeSuspiciousStop,
		Severity:    models.SeverityMedium,
		Description: fmt.Sprintf("Overstay at authorized stop '%s'. Duration: %.1f min", stop.Name, stopDuration),
		Location:    sample.Location,
		AgentName:   "Stop Analyzer",
		WhyFlagged:  fmt.Sprintf("Stop duration (%.0fm) > Max authorized (%.0fm)", stopDuration, stop.MaxDurationMinutes),
		SOPRule:     "SOP-005 (Rest Management)",
		ActionTaken: "Notify Fleet Manager",
		Status:      models.AlertStatusOpen,
	}}
}

// checkUnauthorizedStop 非授权停车检查，超过宽限期后每条遥测都会告警
func (d *AnomalyDetector) checkUnauthorizedStop(trip *models.TripConfig, sample *models.Telemetry, stopDuration float64) []models.Alert {
	if stopDuration <= d.thresholds.UnauthorizedGraceMin {
		return nil
	}

	d.logger.Warn("Unauthorized stop",
		zap.String("truck_id", sample.TruckID),
		zap.Float64("duration_min", stopDuration))

	return []models.Alert{{
		AlertID:     uuid.NewString(),
		TripID:      trip.TripID,
		TruckID:     sample.TruckID,
		Timestamp:   sample.Timestamp,
		Type:        models.AlertTypeSuspiciousStop,
		Severity:    models.SeverityHigh,
		Description: fmt.Sprintf("HIGH – Suspicious stop %.0f min at non-whitelisted location.", stopDuration),
		Location:    sample.Location,
		AgentName:   "Stop Analyzer",
		WhyFlagged:  "Vehicle stopped > 5 mins outside geo-fenced authorized zones.",
		SOPRule:     "SOP-089 (Unauthorized Stoppage)",
		ActionTaken: "Security notified / driver called",
		Status:      models.AlertStatusOpen,
	}}
}

// findAuthorizedStop 返回第一个覆盖当前位置的授权停靠点
func findAuthorizedStop(location models.GeoPoint, stops models.AuthorizedStops) *models.AuthorizedStop {
	for i := range stops {
		if geo.WithinRadius(location, stops[i].Location, stops[i].RadiusMeters) {
			return &stops[i]
		}
	}
	return nil
}
