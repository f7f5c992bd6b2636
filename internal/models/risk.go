package models

// RiskAssessment 风险评估结果 (固定启发式，非机器学习)
type RiskAssessment struct {
	TruckID   string   `json:"truck_id"`
	RiskScore float64  `json:"risk_score"`
	Message   string   `json:"message"`
	Factors   []string `json:"factors"`
}
