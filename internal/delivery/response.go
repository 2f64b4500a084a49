package delivery

import (
	"context"
	"errors"
	"net/http"

	"storefront/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type Response struct {
	Status  string      `json:"Status"`
	Message string      `json:"Message"`
	Data    interface{} `json:"Data,omitempty"`
}

func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Response{
		Status:  "Success",
		Message: message,
		Data:    data,
	})
}

func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, Response{
		Status:  "Fail",
		Message: message,
	})
}

func abortWithError(c *gin.Context, statusCode int, message string) {
	c.AbortWithStatusJSON(statusCode, Response{
		Status:  "Fail",
		Message: message,
	})
}

func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrInvalidStatusTransition),
		errors.Is(err, domain.ErrInsufficientStock):
		return http.StatusConflict
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrEmptyCart):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrAdminKeyMissing):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the mapped status. Client errors carry the error text;
// server errors only carry the prefix.
func respondError(c *gin.Context, log *logrus.Logger, prefix string, err error) {
	statusCode := mapErrorToStatus(err)
	if statusCode >= http.StatusInternalServerError {
		log.Errorf("%s: %v", prefix, err)
		ErrorResponse(c, statusCode, prefix)
		return
	}
	log.Warnf("%s: %v", prefix, err)
	ErrorResponse(c, statusCode, prefix+": "+err.Error())
}

func parseIDParam(c *gin.Context, log *logrus.Logger, name, entity string) (uuid.UUID, bool) {
	idStr := c.Param(name)
	id, err := uuid.Parse(idStr)
	if err != nil {
		log.Warnf("Invalid %s ID parameter: %s", entity, idStr)
		ErrorResponse(c, http.StatusBadRequest, "Invalid "+entity+" ID format")
		return uuid.Nil, false
	}
	return id, true
}
