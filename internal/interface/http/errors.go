package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-slot-booking/internal/domain"
	"github.com/oksasatya/go-slot-booking/pkg/response"
	"github.com/oksasatya/go-slot-booking/pkg/validation"
)

func statusFor(kind domain.Kind) int {
	switch kind {
	case domain.KindValidation, domain.KindInvalidTimeFormat:
		return http.StatusBadRequest
	case domain.KindNotFound, domain.KindSlotNotFound:
		return http.StatusNotFound
	case domain.KindSlotAlreadyBooked, domain.KindDuplicateBooking, domain.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes a domain error. Internal errors are logged in full but
// surface only a generic message.
func respondError(c *gin.Context, logger *logrus.Logger, err error) {
	kind := domain.KindOf(err)
	status := statusFor(kind)
	if status == http.StatusInternalServerError {
		logger.WithError(err).WithFields(logrus.Fields{
			"request_id": c.GetString("request_id"),
			"path":       c.FullPath(),
		}).Error("request failed")
		response.Error[any](c, status, "internal error", response.ErrorBody{Code: kind.String()})
		return
	}

	msg := err.Error()
	var de *domain.Error
	if errors.As(err, &de) {
		msg = de.Message
	}
	response.Error[any](c, status, msg, response.ErrorBody{Code: kind.String()})
}

func respondBindError(c *gin.Context, err error) {
	response.Error[any](c, http.StatusBadRequest, "invalid payload", response.ErrorBody{
		Code:    domain.KindValidation.String(),
		Details: validation.ToDetails(err),
	})
}

func loggerOrStd(logger *logrus.Logger) *logrus.Logger {
	if logger == nil {
		return logrus.StandardLogger()
	}
	return logger
}
