package api

import (
	"net/http"

	"befit/fitness-app/internal/apperrors"
	"befit/fitness-app/internal/logger"

	"github.com/gin-gonic/gin"
)

// respondError maps a service error to an HTTP status. Validation is 400, not
// found is 404, everything else is a 500 with the detail logged, not returned.
func respondError(c *gin.Context, err error, fallback string) {
	switch apperrors.KindOf(err) {
	case apperrors.KindValidation:
		abortWithError(c, http.StatusBadRequest, apperrors.Message(err))
	case apperrors.KindNotFound:
		abortWithError(c, http.StatusNotFound, apperrors.Message(err))
	default:
		logger.Error(fallback, "path", c.FullPath(), "error", err)
		abortWithError(c, http.StatusInternalServerError, fallback)
	}
}
