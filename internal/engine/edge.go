package engine

import (
	"context"

	"go.uber.org/zap"
)

// SetEdgeMode 设置边缘离线模式；开启后遥测只缓存不检测
func (e *Engine) SetEdgeMode(truckID string, offline bool) error {
	e.mu.RLock()
	_, registered := e.trips[truckID]
	e.mu.RUnlock()
	if !registered {
		return ErrTruckNotFound
	}

	machine := e.states.GetOrCreate(truckID)
	machine.SetEdgeOffline(offline)

	e.logger.Info("Edge mode changed",
		zap.String("truck_id", truckID),
		zap.Bool("offline", offline))
	return nil
}

// SyncEdgeBuffer 按原始到达顺序回放缓存的遥测并清空缓冲区
// 返回回放的条数。回放前必须先清除离线标记，否则样本会被再次缓存
// 整个回放持有车辆锁，防止实时遥测穿插破坏停车状态
func (e *Engine) SyncEdgeBuffer(ctx context.Context, truckID string) (int, error) {
	e.mu.RLock()
	trip, registered := e.trips[truckID]
	e.mu.RUnlock()
	if !registered {
		return 0, ErrTruckNotFound
	}

	l := e.truckLock(truckID)
	l.Lock()
	defer l.Unlock()

	machine := e.states.GetOrCreate(truckID)

	// Drain 同时清除离线标记和缓冲区
	buffered := machine.DrainEdgeBuffer()
	for i := range buffered {
		sample := buffered[i]
		e.processLocked(ctx, trip, &sample)
	}

	e.logger.Info("Edge buffer synced",
		zap.String("truck_id", truckID),
		zap.Int("replayed", len(buffered)))
	return len(buffered), nil
}
