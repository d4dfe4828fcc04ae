package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/example/dlp-inspect/internal/inspector"
	"github.com/example/dlp-inspect/internal/repository"
)

// mapError translates domain failures into HTTP status codes. Remote
// inspection errors keep their classification in the response body;
// everything unexpected collapses to a generic 500.
func mapError(c *gin.Context, err error) {
	var remote *inspector.RemoteCallError
	switch {
	case errors.As(err, &remote):
		switch remote.Kind {
		case inspector.RemoteInvalid:
			c.JSON(http.StatusBadRequest, gin.H{"error": remote.Error()})
		case inspector.RemoteQuota:
			c.JSON(http.StatusTooManyRequests, gin.H{"error": remote.Error()})
		case inspector.RemoteUnavailable:
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": remote.Error()})
		default:
			c.JSON(http.StatusBadGateway, gin.H{"error": remote.Error()})
		}
	case errors.Is(err, repository.ErrLogNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "result not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
