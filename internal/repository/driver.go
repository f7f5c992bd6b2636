package repository

import (
	"context"
	"fmt"

	"github.com/langchou/haulguard/internal/models"
)

// DriverRepository 司机信息仓库
type DriverRepository struct {
	db *DB
}

// NewDriverRepository 创建司机仓库
func NewDriverRepository(db *DB) *DriverRepository {
	return &DriverRepository{db: db}
}

// Upsert 创建或更新司机记录
func (r *DriverRepository) Upsert(ctx context.Context, d *models.Driver) error {
	query := `
		INSERT INTO drivers (truck_id, driver_name, phone, company)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (truck_id) DO UPDATE SET
			driver_name = EXCLUDED.driver_name,
			phone = EXCLUDED.phone,
			company = EXCLUDED.company
	`
	_, err := r.db.Pool.Exec(ctx, query, d.TruckID, d.DriverName, d.Phone, d.Company)
	if err != nil {
		return fmt.Errorf("upsert driver: %w", err)
	}
	return nil
}

// List 获取所有司机记录
func (r *DriverRepository) List(ctx context.Context) ([]*models.Driver, error) {
	query := `SELECT truck_id, driver_name, phone, company FROM drivers`
	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list drivers: %w", err)
	}
	defer rows.Close()

	var drivers []*models.Driver
	for rows.Next() {
		d := &models.Driver{}
		if err := rows.Scan(&d.TruckID, &d.DriverName, &d.Phone, &d.Company); err != nil {
			return nil, fmt.Errorf("scan driver: %w", err)
		}
		drivers = append(drivers, d)
	}
	return drivers, nil
}
