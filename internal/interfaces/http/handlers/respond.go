// internal/interfaces/http/handlers/respond.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/your-org/storefront-backend/internal/pkg/errs"
)

// respondError maps application errors to the JSON error envelope.
// Unexpected errors are logged with context and reduced to a generic
// message so internals never leak to clients.
func respondError(c *gin.Context, err error) {
	if stockErr, ok := errs.AsInsufficientStock(err); ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"message":    stockErr.Error(),
				"violations": stockErr.Violations,
			},
		})
		return
	}

	if appErr, ok := errs.AsError(err); ok {
		status := appErr.HTTPStatus()
		if status == http.StatusInternalServerError {
			logError(c, err)
			c.JSON(status, gin.H{
				"success": false,
				"error":   gin.H{"message": "Internal server error"},
			})
			return
		}
		c.JSON(status, gin.H{
			"success": false,
			"error":   gin.H{"message": appErr.Message},
		})
		return
	}

	logError(c, err)
	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"error":   gin.H{"message": "Internal server error"},
	})
}

// respondBindError reports malformed request bodies
func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error": gin.H{
			"message": "Invalid request data",
			"details": err.Error(),
		},
	})
}

// respondOK wraps successful payloads in the standard envelope
func respondOK(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, gin.H{
		"success": true,
		"message": message,
		"data":    data,
	})
}

func logError(c *gin.Context, err error) {
	logrus.WithFields(logrus.Fields{
		"request_id": c.GetString("request_id"),
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
	}).WithError(err).Error("request failed")
}
