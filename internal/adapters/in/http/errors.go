package http

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/fxavier/mozdelivery-api-sub003/internal/core/application/dccsecurity"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/application/usecases/commands"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/dcc"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/order"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/ports"
	"github.com/fxavier/mozdelivery-api-sub003/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Error is the body of every non-2xx response.
type Error struct {
	Code              int    `json:"code"`
	Message           string `json:"message"`
	RemainingAttempts *int   `json:"remainingAttempts,omitempty"`
}

// statusFor maps use case errors to HTTP statuses. Anything it does not
// recognise is an internal error.
func statusFor(err error) int {
	switch {
	case errors.Is(err, dccsecurity.ErrCourierLockedOut),
		errors.Is(err, dcc.ErrMaxAttemptsExceeded):
		return http.StatusLocked
	case errors.Is(err, dccsecurity.ErrRateLimitExceeded):
		return http.StatusTooManyRequests
	case errors.Is(err, dcc.ErrCodeExpired):
		return http.StatusGone
	case errors.Is(err, dcc.ErrInvalidCode):
		return http.StatusUnprocessableEntity
	case errors.Is(err, dcc.ErrCodeAlreadyUsed),
		errors.Is(err, order.ErrInvalidStatusTransition),
		errors.Is(err, commands.ErrDeliveryConfirmationRequired),
		errors.Is(err, commands.ErrOrderNotOutForDelivery),
		errors.Is(err, ports.ErrConcurrentModification):
		return http.StatusConflict
	case errors.Is(err, errs.ErrObjectNotFound),
		errors.Is(err, dccsecurity.ErrLockoutNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(c echo.Context, err error) error {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return c.JSON(httpErr.Code, Error{Code: httpErr.Code, Message: http.StatusText(httpErr.Code)})
	}

	status := statusFor(err)
	body := Error{Code: status, Message: err.Error()}

	if status == http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("method", c.Request().Method),
			zap.String("path", c.Path()),
			zap.Error(err))
		body.Message = "internal error"
	}

	var invalid *dcc.InvalidCodeError
	if errors.As(err, &invalid) {
		remaining := invalid.RemainingAttempts
		body.RemainingAttempts = &remaining
	}
	var locked *dccsecurity.LockoutError
	if errors.As(err, &locked) {
		c.Response().Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(locked.Remaining.Seconds()))))
	}

	return c.JSON(status, body)
}

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, Error{Code: http.StatusBadRequest, Message: message})
}
