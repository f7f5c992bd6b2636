package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/langchou/haulguard/internal/engine"
)

type edgeModeRequest struct {
	Offline *bool `json:"offline" binding:"required"`
}

// SetEdgeMode 切换车辆边缘离线模式
func (h *Handler) SetEdgeMode(c *gin.Context) {
	truckID := c.Param("truck_id")

	var req edgeModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "offline is required"})
		return
	}

	if err := h.engine.SetEdgeMode(truckID, *req.Offline); err != nil {
		if errors.Is(err, engine.ErrTruckNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Truck not found"})
			return
		}
		h.logger.Error("Failed to set edge mode", zap.Error(err), zap.String("truck_id", truckID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to set edge mode"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Edge mode updated",
		"truck_id": truckID,
		"offline":  *req.Offline,
	})
}

// SyncEdgeBuffer 回放车辆离线期间缓存的遥测
func (h *Handler) SyncEdgeBuffer(c *gin.Context) {
	truckID := c.Param("truck_id")

	replayed, err := h.engine.SyncEdgeBuffer(c.Request.Context(), truckID)
	if err != nil {
		if errors.Is(err, engine.ErrTruckNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Truck not found"})
			return
		}
		h.logger.Error("Failed to sync edge buffer", zap.Error(err), zap.String("truck_id", truckID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sync edge buffer"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Edge buffer replayed",
		"truck_id": truckID,
		"replayed": replayed,
	})
}
