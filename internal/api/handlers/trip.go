package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/langchou/haulguard/internal/models"
)

// RegisterTrip 注册运单，覆盖同车辆旧运单并重置跟踪状态
func (h *Handler) RegisterTrip(c *gin.Context) {
	var trip models.TripConfig
	if err := c.ShouldBindJSON(&trip); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid trip payload"})
		return
	}

	if trip.TruckID == "" || trip.TripID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "truck_id and trip_id are required"})
		return
	}
	if trip.WeightToleranceKg <= 0 {
		trip.WeightToleranceKg = models.DefaultWeightToleranceKg
	}

	if err := h.engine.RegisterTrip(c.Request.Context(), &trip); err != nil {
		h.logger.Error("Failed to register trip", zap.Error(err), zap.String("truck_id", trip.TruckID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register trip"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Trip registered. Tracking started.",
		"data":    trip,
	})
}

// IngestTelemetry 接收一条遥测并返回本条触发的告警
func (h *Handler) IngestTelemetry(c *gin.Context) {
	var sample models.Telemetry
	if err := c.ShouldBindJSON(&sample); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid telemetry payload"})
		return
	}

	if sample.TruckID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "truck_id is required"})
		return
	}

	alerts := h.engine.ProcessTelemetry(c.Request.Context(), &sample)
	if alerts == nil {
		alerts = []models.Alert{}
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Telemetry processed",
		"new_alerts": alerts,
	})
}
