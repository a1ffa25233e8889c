package handler

import (
	"net/http"

	apperrors "github.com/Matrix-F25/matrix-events-sub000/pkg/app_errors"
	"github.com/Matrix-F25/matrix-events-sub000/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func BindJson(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return err
	}
	return nil
}

func BindQuery(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindQuery(obj); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return err
	}
	return nil
}

// handleError maps the service sentinels onto HTTP statuses. Precondition
// failures map to 409 so callers can tell them apart from bad requests.
func handleError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch err {
	case apperrors.ErrEventNotFound, apperrors.ErrProfileNotFound,
		apperrors.ErrNotificationNotFound, apperrors.ErrPosterNotFound,
		apperrors.ErrDocumentNotFound:
		log.Warn("not found")
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case apperrors.ErrWrongState, apperrors.ErrAlreadyMember, apperrors.ErrNotMember,
		apperrors.ErrWaitlistFull, apperrors.ErrCapacityFull:
		log.Warn("precondition failed")
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case apperrors.ErrInvalidInput, apperrors.ErrMissingID:
		log.Warn("invalid input")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Error("unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": apperrors.ErrInternalServerError.Error()})
	}
}
