package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type custodyRequest struct {
	TruckID   string `json:"truck_id" binding:"required"`
	StopName  string `json:"stop_name" binding:"required"`
	PhotoURL  string `json:"photo_url"`
	Signature string `json:"signature"`
	Notes     string `json:"notes"`
}

// AddCustodyEvent 登记货物交接事件
func (h *Handler) AddCustodyEvent(c *gin.Context) {
	var req custodyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "truck_id and stop_name are required"})
		return
	}

	event, err := h.engine.AddCustodyEvent(c.Request.Context(), req.TruckID, req.StopName, req.PhotoURL, req.Signature, req.Notes)
	if err != nil {
		h.logger.Error("Failed to add custody event", zap.Error(err), zap.String("truck_id", req.TruckID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add custody event"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": event})
}

// ListCustodyEvents 获取车辆交接记录
func (h *Handler) ListCustodyEvents(c *gin.Context) {
	truckID := c.Param("truck_id")
	c.JSON(http.StatusOK, gin.H{"data": h.engine.GetCustodyEvents(truckID)})
}
