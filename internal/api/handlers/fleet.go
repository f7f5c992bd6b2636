package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/langchou/haulguard/internal/engine"
	"github.com/langchou/haulguard/internal/models"
)

// ListTrucks 获取已注册运单的车辆列表
func (h *Handler) ListTrucks(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": h.engine.ActiveTrucks()})
}

// GetFleetSummary 获取车队汇总
func (h *Handler) GetFleetSummary(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": h.engine.GetFleetSummary()})
}

// GetTruckStatus 获取车辆实时跟踪状态
func (h *Handler) GetTruckStatus(c *gin.Context) {
	truckID := c.Param("truck_id")

	state, err := h.engine.GetTrackingState(truckID)
	if err != nil {
		if errors.Is(err, engine.ErrTruckNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Truck not found"})
			return
		}
		h.logger.Error("Failed to get truck status", zap.Error(err), zap.String("truck_id", truckID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get truck status"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": state})
}

// PredictRisk 获取路线前瞻风险评估
func (h *Handler) PredictRisk(c *gin.Context) {
	truckID := c.Param("truck_id")
	c.JSON(http.StatusOK, gin.H{"data": h.engine.PredictRisk(truckID)})
}

// GetDriver 获取车辆司机信息，未登记返回兜底记录
func (h *Handler) GetDriver(c *gin.Context) {
	truckID := c.Param("truck_id")
	c.JSON(http.StatusOK, gin.H{"data": h.engine.GetDriverInfo(truckID)})
}

// SetDriver 登记或更新司机信息
func (h *Handler) SetDriver(c *gin.Context) {
	var driver models.Driver
	if err := c.ShouldBindJSON(&driver); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid driver payload"})
		return
	}

	if driver.TruckID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "truck_id is required"})
		return
	}

	if err := h.engine.SetDriverInfo(c.Request.Context(), &driver); err != nil {
		h.logger.Error("Failed to set driver", zap.Error(err), zap.String("truck_id", driver.TruckID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to set driver"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": driver})
}
