package engine

import (
	"context"

	"github.com/langchou/haulguard/internal/models"
)

// Store 持久化协作方，引擎启动时读取一次，之后每次变更写穿
// 写入失败不回滚内存状态，只记录并上报
type Store interface {
	LoadTrips(ctx context.Context) ([]*models.TripConfig, error)
	LoadLatestTelemetry(ctx context.Context, truckID string) (*models.Telemetry, error)
	LoadDrivers(ctx context.Context) ([]*models.Driver, error)
	LoadAlerts(ctx context.Context) ([]*models.Alert, error)

	SaveTrip(ctx context.Context, trip *models.TripConfig) error
	SaveTelemetry(ctx context.Context, t *models.Telemetry) error
	SaveAlert(ctx context.Context, alert *models.Alert) error
	SaveDriver(ctx context.Context, driver *models.Driver) error
	SaveCustodyEvent(ctx context.Context, event *models.CustodyEvent) error
	UpdateAlertStatus(ctx context.Context, alertID string, status models.AlertStatus) error
}
