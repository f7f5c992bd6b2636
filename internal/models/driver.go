package models

// Driver 司机信息 (以 truck_id 为键的通讯录)
type Driver struct {
	TruckID    string `json:"truck_id" db:"truck_id"`
	DriverName string `json:"driver_name" db:"driver_name"`
	Phone      string `json:"phone" db:"phone"`
	Company    string `json:"company" db:"company"`
}

// UnknownDriver 未登记车辆的兜底司机记录
func UnknownDriver(truckID string) *Driver {
	return &Driver{
		TruckID:    truckID,
		DriverName: "Unknown",
		Phone:      "N/A",
		Company:    "N/A",
	}
}
