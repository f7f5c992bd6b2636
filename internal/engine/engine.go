package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/langchou/haulguard/internal/detector"
	"github.com/langchou/haulguard/internal/models"
	"github.com/langchou/haulguard/internal/state"
	"github.com/langchou/haulguard/pkg/ws"
)

// 哨兵错误
var (
	ErrAlertNotFound = errors.New("alert not found")
	ErrTruckNotFound = errors.New("truck not found")
)

// Engine 情报引擎：编排异常检测与 SOP 升级，持有全部运行时状态
type Engine struct {
	logger  *zap.Logger
	store   Store
	wsHub   *ws.Hub
	anomaly *detector.AnomalyDetector
	sop     *detector.SOPEngine
	states  *state.Manager

	mu         sync.RWMutex
	trips      map[string]*models.TripConfig // 以 truck_id 为键
	drivers    map[string]*models.Driver
	alerts     []models.Alert
	alertIndex map[string]int // alert_id -> alerts 下标
	custody    []models.CustodyEvent

	truckMu sync.Mutex
	locks   map[string]*sync.Mutex // 每辆车一把处理锁

	persistFailures atomic.Int64
}

// New 创建引擎并从持久层恢复状态
func New(ctx context.Context, logger *zap.Logger, store Store, wsHub *ws.Hub, thresholds detector.Thresholds) (*Engine, error) {
	e := &Engine{
		logger:     logger,
		store:      store,
		wsHub:      wsHub,
		anomaly:    detector.NewAnomalyDetector(logger, thresholds),
		sop:        detector.NewSOPEngine(),
		trips:      make(map[string]*models.TripConfig),
		drivers:    make(map[string]*models.Driver),
		alertIndex: make(map[string]int),
		locks:      make(map[string]*sync.Mutex),
	}
	e.states = state.NewManager(e.onMotionChange)

	if err := e.restore(ctx); err != nil {
		return nil, fmt.Errorf("restore engine state: %w", err)
	}

	return e, nil
}

// restore 启动时从持久层加载运单、司机、告警和每辆车的最新遥测
func (e *Engine) restore(ctx context.Context) error {
	trips, err := e.store.LoadTrips(ctx)
	if err != nil {
		return fmt.Errorf("load trips: %w", err)
	}
	for _, trip := range trips {
		e.trips[trip.TruckID] = trip
		machine := e.states.GetOrCreate(trip.TruckID)

		last, err := e.store.LoadLatestTelemetry(ctx, trip.TruckID)
		if err != nil {
			e.logger.Warn("Failed to load latest telemetry", zap.Error(err), zap.String("truck_id", trip.TruckID))
			continue
		}
		if last != nil {
			machine.SetLastTelemetry(last)
		}
	}

	drivers, err := e.store.LoadDrivers(ctx)
	if err != nil {
		return fmt.Errorf("load drivers: %w", err)
	}
	for _, d := range drivers {
		e.drivers[d.TruckID] = d
	}

	alerts, err := e.store.LoadAlerts(ctx)
	if err != nil {
		return fmt.Errorf("load alerts: %w", err)
	}
	for _, a := range alerts {
		e.alertIndex[a.AlertID] = len(e.alerts)
		e.alerts = append(e.alerts, *a)
	}

	e.logger.Info("Engine state restored",
		zap.Int("trips", len(trips)),
		zap.Int("drivers", len(drivers)),
		zap.Int("alerts", len(alerts)))
	return nil
}

// onMotionChange 状态机回调，记录运动状态变化
func (e *Engine) onMotionChange(truckID, from, to string) {
	e.logger.Info("Truck motion state changed",
		zap.String("truck_id", truckID),
		zap.String("from", from),
		zap.String("to", to))
}

// truckLock 获取车辆处理锁 (惰性创建)
func (e *Engine) truckLock(truckID string) *sync.Mutex {
	e.truckMu.Lock()
	defer e.truckMu.Unlock()

	l, ok := e.locks[truckID]
	if !ok {
		l = &sync.Mutex{}
		e.locks[truckID] = l
	}
	return l
}

// RegisterTrip 注册或覆盖运单，重置该车的追踪状态
func (e *Engine) RegisterTrip(ctx context.Context, trip *models.TripConfig) error {
	l := e.truckLock(trip.TruckID)
	l.Lock()
	defer l.Unlock()

	e.mu.Lock()
	e.trips[trip.TruckID] = trip
	e.mu.Unlock()

	// 覆盖注册会丢弃进行中的停车状态
	e.states.Reset(trip.TruckID)

	if err := e.store.SaveTrip(ctx, trip); err != nil {
		e.persistFailures.Add(1)
		e.logger.Error("Failed to persist trip", zap.Error(err), zap.String("trip_id", trip.TripID))
	}

	e.logger.Info("Trip registered",
		zap.String("trip_id", trip.TripID),
		zap.String("truck_id", trip.TruckID),
		zap.Float64("expected_weight_kg", trip.TotalExpectedWeight))
	return nil
}

// ProcessTelemetry 处理一条遥测：异常检测 -> SOP 升级 -> 落库 -> 广播
// 未注册车辆静默返回空，离线车辆只缓存不检测
func (e *Engine) ProcessTelemetry(ctx context.Context, sample *models.Telemetry) []models.Alert {
	e.mu.RLock()
	trip, ok := e.trips[sample.TruckID]
	e.mu.RUnlock()
	if !ok {
		return nil
	}

	l := e.truckLock(sample.TruckID)
	l.Lock()
	defer l.Unlock()

	return e.processLocked(ctx, trip, sample)
}

// processLocked 持有车辆锁时的处理主流程
func (e *Engine) processLocked(ctx context.Context, trip *models.TripConfig, sample *models.Telemetry) []models.Alert {
	machine := e.states.GetOrCreate(sample.TruckID)

	if machine.EdgeOffline() {
		machine.BufferTelemetry(*sample)
		e.logger.Debug("Telemetry buffered (edge offline)",
			zap.String("truck_id", sample.TruckID),
			zap.Int("buffer_size", machine.Snapshot().EdgeBufferSize))
		return nil
	}

	if last := machine.LastTelemetry(); last != nil && sample.Timestamp.Before(last.Timestamp) {
		e.logger.Warn("Out-of-order telemetry sample",
			zap.String("truck_id", sample.TruckID),
			zap.Time("sample_ts", sample.Timestamp),
			zap.Time("last_ts", last.Timestamp))
	}

	rawAlerts := e.anomaly.Analyze(trip, sample, machine)
	sopActions := e.sop.Evaluate(trip, sample, rawAlerts)
	allAlerts := append(rawAlerts, sopActions...)

	e.appendAlerts(ctx, allAlerts)

	if err := e.store.SaveTelemetry(ctx, sample); err != nil {
		e.persistFailures.Add(1)
		e.logger.Error("Failed to persist telemetry", zap.Error(err), zap.String("truck_id", sample.TruckID))
	}

	machine.SetLastTelemetry(sample)

	e.broadcast(sample.TruckID, machine, allAlerts)
	return allAlerts
}

// appendAlerts 追加告警到日志并写穿持久层
func (e *Engine) appendAlerts(ctx context.Context, alerts []models.Alert) {
	if len(alerts) == 0 {
		return
	}

	e.mu.Lock()
	for i := range alerts {
		e.alertIndex[alerts[i].AlertID] = len(e.alerts)
		e.alerts = append(e.alerts, alerts[i])
	}
	e.mu.Unlock()

	for i := range alerts {
		if err := e.store.SaveAlert(ctx, &alerts[i]); err != nil {
			e.persistFailures.Add(1)
			e.logger.Error("Failed to persist alert", zap.Error(err), zap.String("alert_id", alerts[i].AlertID))
		}
	}
}

// broadcast 推送新告警和车辆状态到 WebSocket 客户端
func (e *Engine) broadcast(truckID string, machine *state.Machine, alerts []models.Alert) {
	if e.wsHub == nil {
		return
	}
	for i := range alerts {
		e.wsHub.BroadcastAlert(&alerts[i])
	}
	e.wsHub.BroadcastTruckState(truckID, machine.Snapshot())
}

// GetAlerts 返回告警日志，truckID 为空则返回全部
func (e *Engine) GetAlerts(truckID string) []models.Alert {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if truckID == "" {
		out := make([]models.Alert, len(e.alerts))
		copy(out, e.alerts)
		return out
	}

	var out []models.Alert
	for i := range e.alerts {
		if e.alerts[i].TruckID == truckID {
			out = append(out, e.alerts[i])
		}
	}
	return out
}

// ResolveAlert 将告警置为 RESOLVED
func (e *Engine) ResolveAlert(ctx context.Context, alertID string) (*models.Alert, error) {
	return e.setAlertStatus(ctx, alertID, models.AlertStatusResolved)
}

// UnresolveAlert 将告警恢复为 OPEN
func (e *Engine) UnresolveAlert(ctx context.Context, alertID string) (*models.Alert, error) {
	return e.setAlertStatus(ctx, alertID, models.AlertStatusOpen)
}

func (e *Engine) setAlertStatus(ctx context.Context, alertID string, status models.AlertStatus) (*models.Alert, error) {
	e.mu.Lock()
	idx, ok := e.alertIndex[alertID]
	if !ok {
		e.mu.Unlock()
		return nil, ErrAlertNotFound
	}
	e.alerts[idx].Status = status
	updated := e.alerts[idx]
	e.mu.Unlock()

	if err := e.store.UpdateAlertStatus(ctx, alertID, status); err != nil {
		e.persistFailures.Add(1)
		e.logger.Error("Failed to persist alert status", zap.Error(err), zap.String("alert_id", alertID))
	}

	return &updated, nil
}

// GetDriverInfo 查询司机信息，未登记返回兜底记录
func (e *Engine) GetDriverInfo(truckID string) *models.Driver {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if d, ok := e.drivers[truckID]; ok {
		copied := *d
		return &copied
	}
	return models.UnknownDriver(truckID)
}

// SetDriverInfo 登记或更新司机信息
func (e *Engine) SetDriverInfo(ctx context.Context, driver *models.Driver) error {
	e.mu.Lock()
	e.drivers[driver.TruckID] = driver
	e.mu.Unlock()

	if err := e.store.SaveDriver(ctx, driver); err != nil {
		e.persistFailures.Add(1)
		e.logger.Error("Failed to persist driver", zap.Error(err), zap.String("truck_id", driver.TruckID))
	}
	return nil
}

// ActiveTrucks 返回有运单的车辆列表
func (e *Engine) ActiveTrucks() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	trucks := make([]string, 0, len(e.trips))
	for truckID := range e.trips {
		trucks = append(trucks, truckID)
	}
	return trucks
}

// GetTrackingState 获取车辆追踪状态快照
func (e *Engine) GetTrackingState(truckID string) (*state.TrackingState, error) {
	e.mu.RLock()
	_, registered := e.trips[truckID]
	e.mu.RUnlock()
	if !registered {
		return nil, ErrTruckNotFound
	}

	machine := e.states.GetOrCreate(truckID)
	return machine.Snapshot(), nil
}

// TrackingSnapshots 获取所有车辆的追踪状态快照
func (e *Engine) TrackingSnapshots() map[string]*state.TrackingState {
	return e.states.GetAllStates()
}

// PersistFailures 累计持久化失败次数 (可上报监控)
func (e *Engine) PersistFailures() int64 {
	return e.persistFailures.Load()
}
