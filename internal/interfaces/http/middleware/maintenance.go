// internal/interfaces/http/middleware/maintenance.go
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/your-org/storefront-backend/internal/domain/settings"
)

// Maintenance blocks storefront traffic while maintenance mode is on.
// It reads the in-memory settings snapshot, never the database, so it
// adds no query per request. Admin routes and health checks stay open.
func Maintenance(settingsSvc *settings.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !settingsSvc.MaintenanceMode() {
			c.Next()
			return
		}

		path := c.Request.URL.Path
		if strings.Contains(path, "/admin") || path == "/health" || path == "/ready" {
			c.Next()
			return
		}

		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error":   gin.H{"message": "The store is temporarily down for maintenance"},
		})
		c.Abort()
	}
}
