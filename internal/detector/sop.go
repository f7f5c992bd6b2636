package detector

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/langchou/haulguard/internal/models"
)

// SOPEngine 标准作业流程 (SOP) 引擎：对原始告警做二级升级
// 无状态，Evaluate 是输入的纯函数
type SOPEngine struct{}

// NewSOPEngine 创建 SOP 引擎
func NewSOPEngine() *SOPEngine {
	return &SOPEngine{}
}

// Evaluate 按 SOP 规则评估原始告警，返回升级告警
func (e *SOPEngine) Evaluate(trip *models.TripConfig, sample *models.Telemetry, incoming []models.Alert) []models.Alert {
	var actions []models.Alert

	for i := range incoming {
		alert := &incoming[i]

		// SOP 规则 1: 安全区外掉重立刻触发安防流程
		if alert.Type == models.AlertTypeWeightMismatch {
			actions = append(actions, e.triggerSecurityProtocol(alert))
		}

		// SOP 规则 2: 高危停车触发自动呼叫司机
		if alert.Type == models.AlertTypeSuspiciousStop && alert.Severity == models.SeverityHigh {
			actions = append(actions, e.triggerDriverContact(alert))
		}
	}

	return actions
}

// triggerSecurityProtocol 升级为安防流程告警
// 沿用 ROUTE_DEVIATION 类型作为升级通道标记，保持与既有看板的兼容
func (e *SOPEngine) triggerSecurityProtocol(trigger *models.Alert) models.Alert {
	return models.Alert{
		AlertID:     uuid.NewString(),
		TripID:      trigger.TripID,
		TruckID:     trigger.TruckID,
		Timestamp:   trigger.Timestamp,
		Type:        models.AlertTypeRouteDeviation,
		Severity:    models.SeverityCritical,
		Description: fmt.Sprintf("SOP ENFORCEMENT: Security Team Notified. Drone Dispatch Initiated. (Triggered by: %s)", trigger.Description),
		Location:    trigger.Location,
		AgentName:   "SOP Engine",
		WhyFlagged:  fmt.Sprintf("SOP escalation of %s alert", trigger.Type),
		SOPRule:     trigger.SOPRule,
		Status:      models.AlertStatusOpen,
	}
}

// triggerDriverContact 升级为司机联络告警
func (e *SOPEngine) triggerDriverContact(trigger *models.Alert) models.Alert {
	return models.Alert{
		AlertID:     uuid.NewString(),
		TripID:      trigger.TripID,
		TruckID:     trigger.TruckID,
		Timestamp:   trigger.Timestamp,
		Type:        models.AlertTypeSuspiciousStop,
		Severity:    models.SeverityMedium,
		Description: fmt.Sprintf("SOP ENFORCEMENT: Automated Driver Call Initiated. (Triggered by: %s)", trigger.Description),
		Location:    trigger.Location,
		AgentName:   "SOP Engine",
		WhyFlagged:  fmt.Sprintf("SOP escalation of %s alert", trigger.Type),
		SOPRule:     trigger.SOPRule,
		Status:      models.AlertStatusOpen,
	}
}
