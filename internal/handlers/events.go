package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"thermostat_gateway/internal/service"
)

// parseTimeParam reads an RFC3339 query parameter; absent means zero.
func parseTimeParam(c *gin.Context, name string) (time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return time.Time{}, true
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// @Summary      List gateway events
// @Tags         events
// @Produce      json
// @Param        from  query  string  false  "RFC3339 lower bound"
// @Param        to    query  string  false  "RFC3339 upper bound"
// @Param        type  query  string  false  "Event type filter"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Router       /api/v1/events [get]
// @Security     BearerAuth
func (h *Handler) listEvents(c *gin.Context) {
	from, ok := parseTimeParam(c, "from")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'from': expected RFC3339"})
		return
	}
	to, ok := parseTimeParam(c, "to")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'to': expected RFC3339"})
		return
	}

	events, err := h.services.EventLog.List(service.LogFilter{
		From: from,
		To:   to,
		Type: c.Query("type"),
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}
