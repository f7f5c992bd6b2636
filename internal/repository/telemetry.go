package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/langchou/haulguard/internal/models"
)

// TelemetryRepository 遥测数据仓库
type TelemetryRepository struct {
	db *DB
}

// NewTelemetryRepository 创建遥测仓库
func NewTelemetryRepository(db *DB) *TelemetryRepository {
	return &TelemetryRepository{db: db}
}

// Create 创建遥测记录
func (r *TelemetryRepository) Create(ctx context.Context, t *models.Telemetry) error {
	query := `
		INSERT INTO telemetry (truck_id, timestamp, latitude, longitude, weight_kg, speed_kmh, ignition_on, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	err := r.db.Pool.QueryRow(ctx, query,
		t.TruckID,
		t.Timestamp,
		t.Location.Latitude,
		t.Location.Longitude,
		t.WeightKg,
		t.SpeedKmh,
		t.IgnitionOn,
		t.Status,
	).Scan(&t.ID)

	if err != nil {
		return fmt.Errorf("insert telemetry: %w", err)
	}
	return nil
}

// GetLatestByTruckID 获取车辆最新遥测，无记录返回 nil
func (r *TelemetryRepository) GetLatestByTruckID(ctx context.Context, truckID string) (*models.Telemetry, error) {
	query := `
		SELECT id, truck_id, timestamp, latitude, longitude, weight_kg, speed_kmh, ignition_on, status
		FROM telemetry WHERE truck_id = $1 ORDER BY timestamp DESC LIMIT 1
	`
	t := &models.Telemetry{}
	err := r.db.Pool.QueryRow(ctx, query, truckID).Scan(
		&t.ID,
		&t.TruckID,
		&t.Timestamp,
		&t.Location.Latitude,
		&t.Location.Longitude,
		&t.WeightKg,
		&t.SpeedKmh,
		&t.IgnitionOn,
		&t.Status,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get latest telemetry: %w", err)
	}
	return t, nil
}

// ListByTruckID 获取车辆遥测历史 (时间升序)
func (r *TelemetryRepository) ListByTruckID(ctx context.Context, truckID string, limit int) ([]*models.Telemetry, error) {
	query := `
		SELECT id, truck_id, timestamp, latitude, longitude, weight_kg, speed_kmh, ignition_on, status
		FROM telemetry WHERE truck_id = $1 ORDER BY timestamp DESC LIMIT $2
	`
	rows, err := r.db.Pool.Query(ctx, query, truckID, limit)
	if err != nil {
		return nil, fmt.Errorf("list telemetry: %w", err)
	}
	defer rows.Close()

	var samples []*models.Telemetry
	for rows.Next() {
		t := &models.Telemetry{}
		err := rows.Scan(
			&t.ID,
			&t.TruckID,
			&t.Timestamp,
			&t.Location.Latitude,
			&t.Location.Longitude,
			&t.WeightKg,
			&t.SpeedKmh,
			&t.IgnitionOn,
			&t.Status,
		)
		if err != nil {
			return nil, fmt.Errorf("scan telemetry: %w", err)
		}
		samples = append(samples, t)
	}

	// 反转为时间升序
	for i, j := 0, len(samples)-1; i < j; i, j = i+1, j-1 {
		samples[i], samples[j] = samples[j], samples[i]
	}
	return samples, nil
}
