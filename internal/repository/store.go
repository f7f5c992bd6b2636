package repository

import (
	"context"

	"github.com/langchou/haulguard/internal/models"
)

// Store 聚合各仓库，为决策引擎提供统一持久化入口
type Store struct {
	trips     *TripRepository
	telemetry *TelemetryRepository
	alerts    *AlertRepository
	drivers   *DriverRepository
	custody   *CustodyRepository
}

// NewStore 创建持久化入口
func NewStore(db *DB) *Store {
	return &Store{
		trips:     NewTripRepository(db),
		telemetry: NewTelemetryRepository(db),
		alerts:    NewAlertRepository(db),
		drivers:   NewDriverRepository(db),
		custody:   NewCustodyRepository(db),
	}
}

// LoadTrips 读取所有运单
func (s *Store) LoadTrips(ctx context.Context) ([]*models.TripConfig, error) {
	return s.trips.List(ctx)
}

// LoadLatestTelemetry 读取车辆最新遥测
func (s *Store) LoadLatestTelemetry(ctx context.Context, truckID string) (*models.Telemetry, error) {
	return s.telemetry.GetLatestByTruckID(ctx, truckID)
}

// LoadDrivers 读取所有司机记录
func (s *Store) LoadDrivers(ctx context.Context) ([]*models.Driver, error) {
	return s.drivers.List(ctx)
}

// LoadAlerts 读取所有告警
func (s *Store) LoadAlerts(ctx context.Context) ([]*models.Alert, error) {
	return s.alerts.List(ctx)
}

// SaveTrip 写入运单
func (s *Store) SaveTrip(ctx context.Context, trip *models.TripConfig) error {
	return s.trips.Upsert(ctx, trip)
}

// SaveTelemetry 写入遥测
func (s *Store) SaveTelemetry(ctx context.Context, t *models.Telemetry) error {
	return s.telemetry.Create(ctx, t)
}

// SaveAlert 写入告警
func (s *Store) SaveAlert(ctx context.Context, alert *models.Alert) error {
	return s.alerts.Create(ctx, alert)
}

// SaveDriver 写入司机记录
func (s *Store) SaveDriver(ctx context.Context, driver *models.Driver) error {
	return s.drivers.Upsert(ctx, driver)
}

// SaveCustodyEvent 写入交接记录
func (s *Store) SaveCustodyEvent(ctx context.Context, event *models.CustodyEvent) error {
	return s.custody.Create(ctx, event)
}

// UpdateAlertStatus 更新告警状态
func (s *Store) UpdateAlertStatus(ctx context.Context, alertID string, status models.AlertStatus) error {
	return s.alerts.UpdateStatus(ctx, alertID, status)
}
