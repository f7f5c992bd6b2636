package models

import "time"

// CustodyEvent 货物交接审计记录 (独立于告警日志)
type CustodyEvent struct {
	EventID   string    `json:"event_id" db:"event_id"`
	TruckID   string    `json:"truck_id" db:"truck_id"`
	StopName  string    `json:"stop_name" db:"stop_name"`
	PhotoURL  string    `json:"photo_url,omitempty" db:"photo_url"`
	Signature string    `json:"signature,omitempty" db:"signature"`
	Notes     string    `json:"notes,omitempty" db:"notes"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
