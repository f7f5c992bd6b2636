package state

import (
	"testing"
	"time"

	"github.com/langchou/haulguard/internal/models"
)

func TestMachine_HaltResume(t *testing.T) {
	var transitions []string
	m := NewMachine("KA-01-AB-1234", func(truckID, from, to string) {
		transitions = append(transitions, from+"->"+to)
	})

	if m.CurrentState() != StateMoving {
		t.Fatalf("expected initial state moving, got %s", m.CurrentState())
	}

	ts := time.Date(2025, 11, 3, 10, 0, 0, 0, time.UTC)
	if err := m.Halt(ts); err != nil {
		t.Fatalf("halt: %v", err)
	}
	if !m.IsStopped() {
		t.Error("expected stopped after halt")
	}
	start, ok := m.StopStartTime()
	if !ok || !start.Equal(ts) {
		t.Errorf("expected stop start %v, got %v (ok=%v)", ts, start, ok)
	}

	// 重复 halt 是非法转换
	if err := m.Halt(ts.Add(time.Minute)); err == nil {
		t.Error("expected error on halt while stopped")
	}

	m.MarkOverstayAlerted()
	if !m.OverstayAlerted() {
		t.Error("expected overstay alerted flag set")
	}

	if err := m.Resume(); err != nil {
		t.Fatalf("resume: %v", err)
	}
	if m.IsStopped() {
		t.Error("expected moving after resume")
	}
	if m.OverstayAlerted() {
		t.Error("resume must clear overstay flag")
	}
	if _, ok := m.StopStartTime(); ok {
		t.Error("resume must clear stop start time")
	}

	if len(transitions) != 2 || transitions[0] != "moving->stopped" || transitions[1] != "stopped->moving" {
		t.Errorf("unexpected transitions: %v", transitions)
	}
}

func TestMachine_EdgeBuffer(t *testing.T) {
	m := NewMachine("KA-01-AB-1234", nil)

	if m.EdgeOffline() {
		t.Fatal("expected online initially")
	}

	m.SetEdgeOffline(true)
	m.BufferTelemetry(telemetrySample("KA-01-AB-1234", 40, time.Now()))
	m.BufferTelemetry(telemetrySample("KA-01-AB-1234", 42, time.Now()))

	snap := m.Snapshot()
	if !snap.EdgeOffline || snap.EdgeBufferSize != 2 {
		t.Errorf("expected offline with 2 buffered, got %+v", snap)
	}

	buffered := m.DrainEdgeBuffer()
	if len(buffered) != 2 {
		t.Fatalf("expected 2 drained, got %d", len(buffered))
	}
	if buffered[0].SpeedKmh != 40 || buffered[1].SpeedKmh != 42 {
		t.Error("drain must preserve arrival order")
	}
	if m.EdgeOffline() {
		t.Error("drain must clear offline flag")
	}
	if m.Snapshot().EdgeBufferSize != 0 {
		t.Error("drain must empty the buffer")
	}
}

func telemetrySample(truckID string, speed float64, ts time.Time) models.Telemetry {
	return models.Telemetry{
		TruckID:   truckID,
		Timestamp: ts,
		Location:  models.GeoPoint{Latitude: 22.3460, Longitude: 87.2320},
		WeightKg:  25000,
		SpeedKmh:  speed,
	}
}

func TestManager_Reset(t *testing.T) {
	mgr := NewManager(nil)

	m1 := mgr.GetOrCreate("KA-01-AB-1234")
	if err := m1.Halt(time.Now()); err != nil {
		t.Fatalf("halt: %v", err)
	}

	// 重新注册运单后，进行中的停车状态被丢弃
	m2 := mgr.Reset("KA-01-AB-1234")
	if m2 == m1 {
		t.Fatal("reset must build a fresh machine")
	}
	if m2.IsStopped() {
		t.Error("fresh machine must start moving")
	}

	got, ok := mgr.Get("KA-01-AB-1234")
	if !ok || got != m2 {
		t.Error("manager must hold the fresh machine")
	}
}
