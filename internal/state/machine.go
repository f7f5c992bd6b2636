package state

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/looplab/fsm"

	"github.com/langchou/haulguard/internal/models"
)

// 车辆运动状态常量
const (
	StateMoving  = "moving"
	StateStopped = "stopped"
)

// 事件常量
const (
	EventHalt   = "halt"
	EventResume = "resume"
)

// TrackingState 单车追踪状态，生命周期与运单注册绑定
type TrackingState struct {
	TruckID         string            `json:"truck_id"`
	LastTelemetry   *models.Telemetry `json:"last_telemetry"`
	IsStopped       bool              `json:"is_stopped"`
	StopStartTime   *time.Time        `json:"stop_start_time"`
	AlertedOverstay bool              `json:"alerted_overstay"`
	EdgeOffline     bool              `json:"edge_offline"`
	EdgeBufferSize  int               `json:"edge_buffer_size"`
}

// Machine 单车停车状态机
type Machine struct {
	mu            sync.RWMutex
	truckID       string
	fsm           *fsm.FSM
	state         *TrackingState
	edgeBuffer    []models.Telemetry
	onStateChange func(truckID, from, to string)
}

// NewMachine 创建状态机，初始为行驶状态
func NewMachine(truckID string, onStateChange func(truckID, from, to string)) *Machine {
	m := &Machine{
		truckID:       truckID,
		onStateChange: onStateChange,
		state: &TrackingState{
			TruckID: truckID,
		},
	}

	m.fsm = fsm.NewFSM(
		StateMoving,
		fsm.Events{
			{Name: EventHalt, Src: []string{StateMoving}, Dst: StateStopped},
			{Name: EventResume, Src: []string{StateStopped}, Dst: StateMoving},
		},
		fsm.Callbacks{
			"after_event": func(ctx context.Context, e *fsm.Event) {
				if m.onStateChange != nil && e.Src != e.Dst {
					m.onStateChange(m.truckID, e.Src, e.Dst)
				}
			},
		},
	)

	return m
}

// CurrentState 获取当前运动状态
func (m *Machine) CurrentState() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.fsm.Current()
}

// IsStopped 是否处于停车状态
func (m *Machine) IsStopped() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.IsStopped
}

// Halt 行驶 -> 停车，记录停车开始时间
func (m *Machine) Halt(ts time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.fsm.Event(context.Background(), EventHalt); err != nil {
		return fmt.Errorf("trigger event %s: %w", EventHalt, err)
	}

	t := ts
	m.state.IsStopped = true
	m.state.StopStartTime = &t
	m.state.AlertedOverstay = false
	return nil
}

// Resume 停车 -> 行驶，清除本次停车的全部状态
func (m *Machine) Resume() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.fsm.Event(context.Background(), EventResume); err != nil {
		return fmt.Errorf("trigger event %s: %w", EventResume, err)
	}

	m.state.IsStopped = false
	m.state.StopStartTime = nil
	m.state.AlertedOverstay = false
	return nil
}

// StopStartTime 获取当前停车开始时间
func (m *Machine) StopStartTime() (time.Time, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.state.StopStartTime == nil {
		return time.Time{}, false
	}
	return *m.state.StopStartTime, true
}

// OverstayAlerted 本次停车是否已发过超时告警
func (m *Machine) OverstayAlerted() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.AlertedOverstay
}

// MarkOverstayAlerted 标记本次停车已发超时告警 (每次停车只告警一次)
func (m *Machine) MarkOverstayAlerted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.AlertedOverstay = true
}

// SetLastTelemetry 更新最近一条遥测
func (m *Machine) SetLastTelemetry(t *models.Telemetry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.LastTelemetry = t
}

// LastTelemetry 获取最近一条遥测
func (m *Machine) LastTelemetry() *models.Telemetry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.LastTelemetry
}

// SetEdgeOffline 设置离线模式，开启时惰性初始化缓冲区
func (m *Machine) SetEdgeOffline(offline bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.EdgeOffline = offline
	if offline && m.edgeBuffer == nil {
		m.edgeBuffer = make([]models.Telemetry, 0)
	}
}

// EdgeOffline 是否处于离线模式
func (m *Machine) EdgeOffline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.EdgeOffline
}

// BufferTelemetry 离线期间缓存遥测
func (m *Machine) BufferTelemetry(t models.Telemetry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.edgeBuffer = append(m.edgeBuffer, t)
	m.state.EdgeBufferSize = len(m.edgeBuffer)
}

// DrainEdgeBuffer 取出全部缓存并清空，同时清除离线标记
// 返回顺序与缓存顺序一致
func (m *Machine) DrainEdgeBuffer() []models.Telemetry {
	m.mu.Lock()
	defer m.mu.Unlock()

	buffered := m.edgeBuffer
	m.edgeBuffer = nil
	m.state.EdgeBufferSize = 0
	m.state.EdgeOffline = false
	return buffered
}

// Snapshot 获取状态副本
func (m *Machine) Snapshot() *TrackingState {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stateCopy := *m.state
	stateCopy.EdgeBufferSize = len(m.edgeBuffer)
	return &stateCopy
}

// Manager 状态机管理器，以 truck_id 为键
type Manager struct {
	mu       sync.RWMutex
	machines map[string]*Machine
	onChange func(truckID, from, to string)
}

// NewManager 创建管理器
func NewManager(onChange func(truckID, from, to string)) *Manager {
	return &Manager{
		machines: make(map[string]*Machine),
		onChange: onChange,
	}
}

// GetOrCreate 获取或创建状态机
func (m *Manager) GetOrCreate(truckID string) *Machine {
	m.mu.Lock()
	defer m.mu.Unlock()

	if machine, ok := m.machines[truckID]; ok {
		return machine
	}

	machine := NewMachine(truckID, m.onChange)
	m.machines[truckID] = machine
	return machine
}

// Get 获取状态机
func (m *Manager) Get(truckID string) (*Machine, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	machine, ok := m.machines[truckID]
	return machine, ok
}

// Reset 重建状态机 (重新注册运单时丢弃进行中的停车状态)
func (m *Manager) Reset(truckID string) *Machine {
	m.mu.Lock()
	defer m.mu.Unlock()

	machine := NewMachine(truckID, m.onChange)
	m.machines[truckID] = machine
	return machine
}

// GetAllStates 获取所有车辆状态快照
func (m *Manager) GetAllStates() map[string]*TrackingState {
	m.mu.RLock()
	defer m.mu.RUnlock()

	states := make(map[string]*TrackingState)
	for truckID, machine := range m.machines {
		states[truckID] = machine.Snapshot()
	}
	return states
}
