package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"ewm/api/apperr"
	"ewm/api/models"
)

// apiError is the body of every 4xx/5xx answer.
type apiError struct {
	Status    string `json:"status"`
	Reason    string `json:"reason"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

var reasons = map[apperr.Kind]string{
	apperr.KindNotFound:   "The required object was not found.",
	apperr.KindValidation: "Incorrectly made request.",
	apperr.KindForbidden:  "For the requested operation the conditions are not met.",
	apperr.KindConflict:   "Integrity constraint has been violated.",
	apperr.KindInternal:   "Internal server error.",
}

func statusOf(kind apperr.Kind) int {
	switch kind {
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, log *zap.Logger, err error) {
	kind := apperr.KindOf(err)
	msg := err.Error()
	if kind == apperr.KindInternal {
		log.Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		msg = "Unexpected error"
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(statusOf(kind), apiError{
		Status:    kind.String(),
		Reason:    reasons[kind],
		Message:   msg,
		Timestamp: models.FormatDateTime(time.Now().UTC()),
	})
}

// bindJSON decodes and validates the body, answering 400 on failure.
func bindJSON(c *gin.Context, log *zap.Logger, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			respondError(c, log, apperr.Validation("%s", verrs.Error()))
		} else {
			respondError(c, log, apperr.Validation("Invalid request body: %v", err))
		}
		return false
	}
	return true
}
