package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/langchou/haulguard/internal/models"
)

// TripRepository 运单数据仓库
type TripRepository struct {
	db *DB
}

// NewTripRepository 创建运单仓库
func NewTripRepository(db *DB) *TripRepository {
	return &TripRepository{db: db}
}

// Upsert 创建或覆盖运单 (每辆车一个有效运单)
func (r *TripRepository) Upsert(ctx context.Context, trip *models.TripConfig) error {
	stopsJSON, err := json.Marshal(trip.AuthorizedStops)
	if err != nil {
		return fmt.Errorf("marshal authorized stops: %w", err)
	}
	if trip.AuthorizedStops == nil {
		stopsJSON = []byte("[]")
	}

	query := `
		INSERT INTO trips (truck_id, trip_id, start_lat, start_lng, dest_lat, dest_lng, authorized_stops, total_expected_weight_kg, weight_tolerance_kg, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (truck_id) DO UPDATE SET
			trip_id = EXCLUDED.trip_id,
			start_lat = EXCLUDED.start_lat,
			start_lng = EXCLUDED.start_lng,
			dest_lat = EXCLUDED.dest_lat,
			dest_lng = EXCLUDED.dest_lng,
			authorized_stops = EXCLUDED.authorized_stops,
			total_expected_weight_kg = EXCLUDED.total_expected_weight_kg,
			weight_tolerance_kg = EXCLUDED.weight_tolerance_kg,
			updated_at = EXCLUDED.updated_at
	`
	now := time.Now()
	_, err = r.db.Pool.Exec(ctx, query,
		trip.TruckID,
		trip.TripID,
		trip.StartLocation.Latitude,
		trip.StartLocation.Longitude,
		trip.DestinationLocation.Latitude,
		trip.DestinationLocation.Longitude,
		stopsJSON,
		trip.TotalExpectedWeight,
		trip.WeightToleranceKg,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("upsert trip: %w", err)
	}
	return nil
}

// List 获取所有运单
func (r *TripRepository) List(ctx context.Context) ([]*models.TripConfig, error) {
	query := `
		SELECT truck_id, trip_id, start_lat, start_lng, dest_lat, dest_lng, authorized_stops, total_expected_weight_kg, weight_tolerance_kg
		FROM trips ORDER BY created_at
	`
	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list trips: %w", err)
	}
	defer rows.Close()

	var trips []*models.TripConfig
	for rows.Next() {
		trip := &models.TripConfig{}
		var stopsJSON []byte
		err := rows.Scan(
			&trip.TruckID,
			&trip.TripID,
			&trip.StartLocation.Latitude,
			&trip.StartLocation.Longitude,
			&trip.DestinationLocation.Latitude,
			&trip.DestinationLocation.Longitude,
			&stopsJSON,
			&trip.TotalExpectedWeight,
			&trip.WeightToleranceKg,
		)
		if err != nil {
			return nil, fmt.Errorf("scan trip: %w", err)
		}
		if err := json.Unmarshal(stopsJSON, &trip.AuthorizedStops); err != nil {
			return nil, fmt.Errorf("unmarshal authorized stops: %w", err)
		}
		trips = append(trips, trip)
	}

	return trips, nil
}
