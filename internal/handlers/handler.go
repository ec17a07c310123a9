package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"thermostat_gateway/internal/logger"
	"thermostat_gateway/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires the HTTP layer to services and logging.
type Handler struct {
	services   *service.Service
	log        *logger.Logger
	localToken string
}

// NewHandler constructs the HTTP handler. localToken guards the API group
// when non-empty; an empty token leaves the local surface open.
func NewHandler(services *service.Service, log *logger.Logger, localToken string) *Handler {
	return &Handler{services: services, log: log, localToken: localToken}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", h.health)

	// Snapshot push channel — same port
	router.GET("/ws", h.wsConnect)

	api := router.Group("/api/v1", h.tokenMiddleware)
	{
		api.GET("/devices", h.listDevices)
		api.GET("/devices/:id", h.getDevice)
		api.POST("/devices/:id/temperature", h.setTemperature)
		api.POST("/devices/:id/temperature/range", h.setTemperatureRange)
		api.POST("/devices/:id/mode", h.setMode)
		api.POST("/devices/:id/fan", h.setFan)
		api.POST("/devices/:id/away", h.setAway)
		api.POST("/refresh", h.refresh)
		api.GET("/events", h.listEvents)
	}

	return router
}

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
