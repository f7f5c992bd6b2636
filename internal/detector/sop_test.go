package detector

import (
	"strings"
	"testing"
	"time"

	"github.com/langchou/haulguard/internal/models"
)

func rawAlert(alertType models.AlertType, severity string) models.Alert {
	return models.Alert{
		AlertID:     "raw-1",
		TripID:      "TRIP-TEST-001",
		TruckID:     "KA-01-AB-1234",
		Timestamp:   time.Date(2025, 11, 3, 10, 0, 0, 0, time.UTC),
		Type:        alertType,
		Severity:    severity,
		Description: "trigger description",
		Location:    kharagpur,
		AgentName:   "Weight Guard",
		SOPRule:     "SOP-102 (Theft Prevention)",
		Status:      models.AlertStatusOpen,
	}
}

func TestEvaluate_WeightMismatchTriggersSecurityProtocol(t *testing.T) {
	e := NewSOPEngine()
	trigger := rawAlert(models.AlertTypeWeightMismatch, models.SeverityCritical)

	actions := e.Evaluate(testTrip(), sampleAt(kharagpur, 20000, 45, trigger.Timestamp), []models.Alert{trigger})
	if len(actions) != 1 {
		t.Fatalf("expected 1 escalation, got %d", len(actions))
	}

	a := actions[0]
	if a.Type != models.AlertTypeRouteDeviation || a.Severity != models.SeverityCritical {
		t.Errorf("unexpected escalation %s/%s", a.Type, a.Severity)
	}
	if !strings.Contains(a.Description, "Security Team Notified. Drone Dispatch Initiated") {
		t.Errorf("unexpected description %q", a.Description)
	}
	if !strings.Contains(a.Description, trigger.Description) {
		t.Error("escalation must reference the trigger description")
	}
	if a.TripID != trigger.TripID || a.TruckID != trigger.TruckID || !a.Timestamp.Equal(trigger.Timestamp) || a.Location != trigger.Location {
		t.Error("escalation must carry trigger trip/truck/timestamp/location")
	}
	if a.AlertID == trigger.AlertID || a.AlertID == "" {
		t.Error("escalation must get a fresh alert id")
	}
}

func TestEvaluate_HighSuspiciousStopTriggersDriverCall(t *testing.T) {
	e := NewSOPEngine()
	trigger := rawAlert(models.AlertTypeSuspiciousStop, models.SeverityHigh)

	actions := e.Evaluate(testTrip(), sampleAt(kharagpur, 25000, 0, trigger.Timestamp), []models.Alert{trigger})
	if len(actions) != 1 {
		t.Fatalf("expected 1 escalation, got %d", len(actions))
	}

	a := actions[0]
	if a.Type != models.AlertTypeSuspiciousStop || a.Severity != models.SeverityMedium {
		t.Errorf("unexpected escalation %s/%s", a.Type, a.Severity)
	}
	if !strings.Contains(a.Description, "Automated Driver Call Initiated") {
		t.Errorf("unexpected description %q", a.Description)
	}
}

func TestEvaluate_NoEscalationForOtherAlerts(t *testing.T) {
	e := NewSOPEngine()
	trip := testTrip()
	sample := sampleAt(kharagpur, 25000, 0, time.Now())

	// 中危停车告警 (授权点超时) 不升级
	medium := rawAlert(models.AlertTypeSuspiciousStop, models.SeverityMedium)
	if actions := e.Evaluate(trip, sample, []models.Alert{medium}); len(actions) != 0 {
		t.Errorf("medium suspicious stop must not escalate, got %d", len(actions))
	}

	deviation := rawAlert(models.AlertTypeRouteDeviation, models.SeverityHigh)
	if actions := e.Evaluate(trip, sample, []models.Alert{deviation}); len(actions) != 0 {
		t.Errorf("route deviation must not escalate, got %d", len(actions))
	}

	if actions := e.Evaluate(trip, sample, nil); len(actions) != 0 {
		t.Errorf("no raw alerts must yield no escalations, got %d", len(actions))
	}
}

func TestEvaluate_MultipleTriggers(t *testing.T) {
	e := NewSOPEngine()
	raw := []models.Alert{
		rawAlert(models.AlertTypeWeightMismatch, models.SeverityCritical),
		rawAlert(models.AlertTypeSuspiciousStop, models.SeverityHigh),
	}

	actions := e.Evaluate(testTrip(), sampleAt(kharagpur, 20000, 0, time.Now()), raw)
	if len(actions) != 2 {
		t.Fatalf("expected 2 escalations, got %d", len(actions))
	}
	if actions[0].Type != models.AlertTypeRouteDeviation || actions[1].Type != models.AlertTypeSuspiciousStop {
		t.Error("escalations must follow raw alert order")
	}
}
