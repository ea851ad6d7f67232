package http

import (
	"net/http"

	"loan-pipeline/internal/adapter/middleware"
	domain "loan-pipeline/internal/domain/loan"
	"loan-pipeline/internal/usecase/loan"
	"loan-pipeline/internal/usecase/transition"

	"github.com/labstack/echo/v4"
)

type TransitionHandler struct{ svc *transition.Service }

func NewTransitionHandler(svc *transition.Service) *TransitionHandler {
	return &TransitionHandler{svc: svc}
}

// transitionReq: omit expected_version to let the server re-read and retry on
// concurrent writes.
type transitionReq struct {
	ToStatus        string `json:"to_status"        validate:"required,status"`
	ExpectedVersion *int64 `json:"expected_version" validate:"omitempty,gte=0"`
}

func (h *TransitionHandler) RequestTransition(c echo.Context) error {
	loanID := c.Param("loan_id")
	if loanID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing loan_id path param"})
	}
	actor := middleware.ActorFrom(c)
	if actor == "" {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "missing " + middleware.HeaderActorID})
	}

	var req transitionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, err)
	}

	l, err := h.svc.Request(c.Request().Context(), transition.RequestInput{
		LoanID:          loanID,
		To:              domain.Status(req.ToStatus),
		Actor:           actor,
		ExpectedVersion: req.ExpectedVersion,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, loan.ToDTO(l))
}
