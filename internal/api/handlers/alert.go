package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/langchou/haulguard/internal/engine"
	"github.com/langchou/haulguard/internal/models"
)

// ListAlerts 获取告警列表，可按 truck_id 过滤
func (h *Handler) ListAlerts(c *gin.Context) {
	truckID := c.Query("truck_id")

	alerts := h.engine.GetAlerts(truckID)
	if alerts == nil {
		alerts = []models.Alert{}
	}

	c.JSON(http.StatusOK, gin.H{"data": alerts})
}

type alertStatusRequest struct {
	AlertID string `json:"alert_id" binding:"required"`
}

// ResolveAlert 标记告警为已处理
func (h *Handler) ResolveAlert(c *gin.Context) {
	var req alertStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "alert_id is required"})
		return
	}

	alert, err := h.engine.ResolveAlert(c.Request.Context(), req.AlertID)
	if err != nil {
		if errors.Is(err, engine.ErrAlertNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Alert not found"})
			return
		}
		h.logger.Error("Failed to resolve alert", zap.Error(err), zap.String("alert_id", req.AlertID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve alert"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": alert})
}

// UnresolveAlert 重新打开已处理的告警
func (h *Handler) UnresolveAlert(c *gin.Context) {
	var req alertStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "alert_id is required"})
		return
	}

	alert, err := h.engine.UnresolveAlert(c.Request.Context(), req.AlertID)
	if err != nil {
		if errors.Is(err, engine.ErrAlertNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Alert not found"})
			return
		}
		h.logger.Error("Failed to unresolve alert", zap.Error(err), zap.String("alert_id", req.AlertID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unresolve alert"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": alert})
}
