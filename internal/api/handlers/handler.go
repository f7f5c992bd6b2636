package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/langchou/haulguard/internal/engine"
	"github.com/langchou/haulguard/pkg/ws"
)

// Handler HTTP 处理器
type Handler struct {
	logger   *zap.Logger
	engine   *engine.Engine
	wsHub    *ws.Hub
	upgrader websocket.Upgrader
}

// NewHandler 创建处理器
func NewHandler(logger *zap.Logger, eng *engine.Engine, wsHub *ws.Hub) *Handler {
	return &Handler{
		logger: logger,
		engine: eng,
		wsHub:  wsHub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // 开发环境允许所有来源
			},
		},
	}
}

// RegisterRoutes 注册路由
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	// API 路由
	api := r.Group("/api/v1")
	{
		// 运单与遥测
		api.POST("/trips", h.RegisterTrip)
		api.POST("/telemetry", h.IngestTelemetry)

		// 告警
		api.GET("/alerts", h.ListAlerts)
		api.POST("/alerts/resolve", h.ResolveAlert)
		api.POST("/alerts/unresolve", h.UnresolveAlert)

		// 车队
		api.GET("/trucks", h.ListTrucks)
		api.GET("/fleet/summary", h.GetFleetSummary)
		api.GET("/status/:truck_id", h.GetTruckStatus)
		api.GET("/risk/:truck_id", h.PredictRisk)

		// 司机
		api.GET("/driver/:truck_id", h.GetDriver)
		api.POST("/driver", h.SetDriver)

		// 边缘模式
		api.POST("/edge/:truck_id", h.SetEdgeMode)
		api.POST("/edge/:truck_id/sync", h.SyncEdgeBuffer)

		// 货物交接
		api.POST("/custody", h.AddCustodyEvent)
		api.GET("/custody/:truck_id", h.ListCustodyEvents)
	}

	// WebSocket
	r.GET("/ws", h.HandleWebSocket)

	// 健康检查
	r.GET("/health", h.HealthCheck)
}

// HandleWebSocket WebSocket 处理
func (h *Handler) HandleWebSocket(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade websocket", zap.Error(err))
		return
	}

	client := ws.NewClient(h.wsHub, conn)
	client.Register()

	// 启动读写协程
	go client.ReadPump()
	go client.WritePump()
}

// HealthCheck 健康检查
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":          "ok",
		"ws_clients":      h.wsHub.ClientCount(),
		"persist_failures": h.engine.PersistFailures(),
	})
}
