package handlers

import (
	"net/http"

	"slotbook/utils"

	"github.com/gin-gonic/gin"
)

// Health reports the last probe of the backend and Redis.
func Health(c *gin.Context) {
	status := utils.GetHealthStatus()
	healthy := status.Backend && !status.CheckedAt.IsZero()
	for _, ok := range status.Redis {
		healthy = healthy && ok
	}
	code, label := http.StatusOK, "ok"
	if !healthy {
		code, label = http.StatusServiceUnavailable, "degraded"
	}
	c.JSON(code, gin.H{"status": label, "message": "Hi, I'm slotbook", "checks": status})
}
