package models

import "time"

// AlertType 告警类型
type AlertType string

const (
	AlertTypeWeightMismatch AlertType = "WEIGHT_MISMATCH"
	AlertTypeSuspiciousStop AlertType = "SUSPICIOUS_STOP"
	AlertTypeRouteDeviation AlertType = "ROUTE_DEVIATION"
)

// 告警严重级别
const (
	SeverityLow      = "LOW"
	SeverityMedium   = "MEDIUM"
	SeverityHigh     = "HIGH"
	SeverityCritical = "CRITICAL"
)

// AlertStatus 告警处理状态
type AlertStatus string

const (
	AlertStatusOpen     AlertStatus = "OPEN"
	AlertStatusResolved AlertStatus = "RESOLVED"
)

// Alert 告警记录 (只追加，不删除不合并)
type Alert struct {
	AlertID     string      `json:"alert_id" db:"alert_id"`
	TripID      string      `json:"trip_id" db:"trip_id"`
	TruckID     string      `json:"truck_id" db:"truck_id"`
	Timestamp   time.Time   `json:"timestamp" db:"timestamp"`
	Type        AlertType   `json:"type" db:"type"`
	Severity    string      `json:"severity" db:"severity"`
	Description string      `json:"description" db:"description"`
	Location    GeoPoint    `json:"location"`
	AgentName   string      `json:"agent_name" db:"agent_name"`
	WhyFlagged  string      `json:"why_flagged" db:"why_flagged"`
	SOPRule     string      `json:"sop_rule,omitempty" db:"sop_rule"`
	ActionTaken string      `json:"action_taken,omitempty" db:"action_taken"`
	Status      AlertStatus `json:"status" db:"status"`
}
