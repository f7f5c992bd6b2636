package engine

// FleetSummary 车队概览
type FleetSummary struct {
	ActiveVehicles int               `json:"active_vehicles"`
	UnderAlert     int               `json:"under_alert"`
	Offline        int               `json:"offline"`
	DataSources    map[string]string `json:"data_sources"`
}

// GetFleetSummary 汇总车队状态：有告警在案的车辆计为 under_alert，
// 处于边缘离线模式的车辆计为 offline
func (e *Engine) GetFleetSummary() *FleetSummary {
	e.mu.RLock()
	trucks := make([]string, 0, len(e.trips))
	for truckID := range e.trips {
		trucks = append(trucks, truckID)
	}

	alerted := make(map[string]bool)
	for i := range e.alerts {
		alerted[e.alerts[i].TruckID] = true
	}
	e.mu.RUnlock()

	summary := &FleetSummary{
		ActiveVehicles: len(trucks),
		DataSources: map[string]string{
			"gps":          "ONLINE",
			"load_cells":   "ONLINE",
			"camera_feeds": "STANDBY",
		},
	}

	for _, truckID := range trucks {
		if alerted[truckID] {
			summary.UnderAlert++
		}
		if machine, ok := e.states.Get(truckID); ok && machine.EdgeOffline() {
			summary.Offline++
		}
	}

	return summary
}
