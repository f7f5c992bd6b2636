package models

// GeoPoint 地理坐标点 (WGS84)
type GeoPoint struct {
	Latitude  float64 `json:"latitude" db:"latitude"`
	Longitude float64 `json:"longitude" db:"longitude"`
}

// TruckStatus 车辆运动状态
type TruckStatus string

const (
	TruckStatusMoving  TruckStatus = "MOVING"
	TruckStatusStopped TruckStatus = "STOPPED"
	TruckStatusIdle    TruckStatus = "IDLE"
)
