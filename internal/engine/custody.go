package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/langchou/haulguard/internal/models"
)

// AddCustodyEvent 追加货物交接审计记录
// 车辆有遥测在案时，同时追加一条 LOW 级验证告警
func (e *Engine) AddCustodyEvent(ctx context.Context, truckID, stopName, photoURL, signature, notes string) (*models.CustodyEvent, error) {
	event := &models.CustodyEvent{
		EventID:   uuid.NewString(),
		TruckID:   truckID,
		StopName:  stopName,
		PhotoURL:  photoURL,
		Signature: signature,
		Notes:     notes,
		CreatedAt: time.Now(),
	}

	e.mu.Lock()
	e.custody = append(e.custody, *event)
	trip, hasTrip := e.trips[truckID]
	e.mu.Unlock()

	if err := e.store.SaveCustodyEvent(ctx, event); err != nil {
		e.persistFailures.Add(1)
		e.logger.Error("Failed to persist custody event", zap.Error(err), zap.String("truck_id", truckID))
	}

	var last *models.Telemetry
	if machine, ok := e.states.Get(truckID); ok {
		last = machine.LastTelemetry()
	}

	if last != nil {
		tripID := ""
		if hasTrip {
			tripID = trip.TripID
		}
		e.appendAlerts(ctx, []models.Alert{{
			AlertID:     uuid.NewString(),
			TripID:      tripID,
			TruckID:     truckID,
			Timestamp:   event.CreatedAt,
			Type:        models.AlertTypeSuspiciousStop,
			Severity:    models.SeverityLow,
			Description: fmt.Sprintf("Custody verified at stop '%s'.", stopName),
			Location:    last.Location,
			AgentName:   "CCTV Guard",
			WhyFlagged:  "Handover verification recorded at authorized stop",
			SOPRule:     "SOP-110",
			ActionTaken: "Custody chain updated",
			Status:      models.AlertStatusOpen,
		}})
	}

	e.logger.Info("Custody event recorded",
		zap.String("truck_id", truckID),
		zap.String("stop", stopName))
	return event, nil
}

// GetCustodyEvents 返回车辆的交接记录
func (e *Engine) GetCustodyEvents(truckID string) []models.CustodyEvent {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var out []models.CustodyEvent
	for i := range e.custody {
		if e.custody[i].TruckID == truckID {
			out = append(out, e.custody[i])
		}
	}
	return out
}
