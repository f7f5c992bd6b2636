package models

// AuthorizedStop 授权停靠点：圆形地理围栏 + 允许停留时长
type AuthorizedStop struct {
	Location           GeoPoint `json:"location"`
	RadiusMeters       float64  `json:"radius_meters"`
	MaxDurationMinutes float64  `json:"max_duration_minutes"`
	Name               string   `json:"name"`
}

// AuthorizedStops 授权停靠点列表 (数据库中存 JSONB)
type AuthorizedStops []AuthorizedStop

// TripConfig 运单配置：起终点、预期载重、授权停靠白名单
// 每辆车同一时间只有一个有效运单 (以 truck_id 为键)
type TripConfig struct {
	TripID              string          `json:"trip_id" db:"trip_id"`
	TruckID             string          `json:"truck_id" db:"truck_id"`
	StartLocation       GeoPoint        `json:"start_location"`
	DestinationLocation GeoPoint        `json:"destination_location"`
	AuthorizedStops     AuthorizedStops `json:"authorized_stops"`
	TotalExpectedWeight float64         `json:"total_expected_weight_kg" db:"total_expected_weight_kg"`
	WeightToleranceKg   float64         `json:"weight_tolerance_kg" db:"weight_tolerance_kg"`
}

// DefaultWeightToleranceKg 载重传感器噪声容差默认值
const DefaultWeightToleranceKg = 10.0
