package repository

import (
	"context"
	"fmt"

	"github.com/langchou/haulguard/internal/models"
)

// AlertRepository 告警仓库
type AlertRepository struct {
	db *DB
}

// NewAlertRepository 创建告警仓库
func NewAlertRepository(db *DB) *AlertRepository {
	return &AlertRepository{db: db}
}

// Create 追加告警记录
func (r *AlertRepository) Create(ctx context.Context, a *models.Alert) error {
	query := `
		INSERT INTO alerts (alert_id, trip_id, truck_id, timestamp, type, severity, description,
			latitude, longitude, agent_name, why_flagged, sop_rule, action_taken, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := r.db.Pool.Exec(ctx, query,
		a.AlertID,
		a.TripID,
		a.TruckID,
		a.Timestamp,
		a.Type,
		a.Severity,
		a.Description,
		a.Location.Latitude,
		a.Location.Longitude,
		a.AgentName,
		a.WhyFlagged,
		a.SOPRule,
		a.ActionTaken,
		a.Status,
	)
	if err != nil {
		return fmt.Errorf("insert alert: %w", err)
	}
	return nil
}

// List 获取所有告警 (时间升序)
func (r *AlertRepository) List(ctx context.Context) ([]*models.Alert, error) {
	query := `
		SELECT alert_id, trip_id, truck_id, timestamp, type, severity, description,
			latitude, longitude, agent_name, why_flagged,
			COALESCE(sop_rule, ''), COALESCE(action_taken, ''), status
		FROM alerts ORDER BY timestamp ASC
	`
	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	defer rows.Close()

	var alerts []*models.Alert
	for rows.Next() {
		a := &models.Alert{}
		err := rows.Scan(
			&a.AlertID,
			&a.TripID,
			&a.TruckID,
			&a.Timestamp,
			&a.Type,
			&a.Severity,
			&a.Description,
			&a.Location.Latitude,
			&a.Location.Longitude,
			&a.AgentName,
			&a.WhyFlagged,
			&a.SOPRule,
			&a.ActionTaken,
			&a.Status,
		)
		if err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		alerts = append(alerts, a)
	}
	return alerts, nil
}

// UpdateStatus 更新告警处理状态
func (r *AlertRepository) UpdateStatus(ctx context.Context, alertID string, status models.AlertStatus) error {
	query := `UPDATE alerts SET status = $1 WHERE alert_id = $2`
	_, err := r.db.Pool.Exec(ctx, query, status, alertID)
	if err != nil {
		return fmt.Errorf("update alert status: %w", err)
	}
	return nil
}
