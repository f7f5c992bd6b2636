package repository

import (
	"context"
	"fmt"

	"github.com/langchou/haulguard/internal/models"
)

// CustodyRepository 货物交接记录仓库
type CustodyRepository struct {
	db *DB
}

// NewCustodyRepository 创建交接记录仓库
func NewCustodyRepository(db *DB) *CustodyRepository {
	return &CustodyRepository{db: db}
}

// Create 追加交接记录
func (r *CustodyRepository) Create(ctx context.Context, e *models.CustodyEvent) error {
	query := `
		INSERT INTO custody_events (event_id, truck_id, stop_name, photo_url, signature, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Pool.Exec(ctx, query,
		e.EventID,
		e.TruckID,
		e.StopName,
		e.PhotoURL,
		e.Signature,
		e.Notes,
		e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert custody event: %w", err)
	}
	return nil
}
