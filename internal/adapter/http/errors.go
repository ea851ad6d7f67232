package http

import (
	"errors"
	"net/http"

	"loan-pipeline/internal/domain/loan"
	"loan-pipeline/internal/infrastructure/metrics"

	"github.com/labstack/echo/v4"
)

// statusFor maps domain errors to HTTP codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, loan.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, loan.ErrExhausted), errors.Is(err, loan.ErrVersionConflict), errors.Is(err, loan.ErrAlreadyGranted):
		return http.StatusConflict
	case errors.Is(err, loan.ErrIllegalTransition), errors.Is(err, loan.ErrGateBlocked):
		return http.StatusUnprocessableEntity
	case errors.Is(err, loan.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, loan.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c echo.Context, err error) error {
	code := statusFor(err)
	body := ErrorResponse{Error: err.Error(), Kind: metrics.ErrorKind(err)}
	if code == http.StatusInternalServerError {
		c.Logger().Error(err)
		body.Error = "internal error"
	}

	var te *loan.TransitionError
	if errors.As(err, &te) {
		body.From, body.To = te.From, te.To
		body.Gate, body.Reason = te.Gate, te.Reason
		if errors.Is(te.Kind, loan.ErrVersionConflict) {
			expected := te.Expected
			body.ExpectedVersion = &expected
			if te.Actual >= 0 {
				actual := te.Actual
				body.CurrentVersion = &actual
			}
		}
	}
	return c.JSON(code, body)
}

func validationFailed(c echo.Context, err error) error {
	return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
		Error:   "validation failed",
		Kind:    "invalid_input",
		Details: ToFieldErrors(err),
	})
}
