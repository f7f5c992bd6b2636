package models

import "time"

// Telemetry 一条遥测数据：位置、载重、速度、点火状态
type Telemetry struct {
	ID         int64        `json:"id,omitempty" db:"id"`
	TruckID    string       `json:"truck_id" db:"truck_id"`
	Timestamp  time.Time    `json:"timestamp" db:"timestamp"`
	Location   GeoPoint     `json:"location"`
	WeightKg   float64      `json:"weight_kg" db:"weight_kg"`
	SpeedKmh   float64      `json:"speed_kmh" db:"speed_kmh"`
	IgnitionOn bool         `json:"ignition_on" db:"ignition_on"`
	Status     *TruckStatus `json:"status,omitempty" db:"status"`
}
