package http

import (
	"net/http"

	"loan-pipeline/internal/adapter/middleware"
	domainLoan "loan-pipeline/internal/domain/loan"
	"loan-pipeline/internal/usecase/approval"

	"github.com/labstack/echo/v4"
)

type ApprovalHandler struct{ uc *approval.Usecase }

func NewApprovalHandler(uc *approval.Usecase) *ApprovalHandler { return &ApprovalHandler{uc: uc} }

type grantGateReq struct {
	Gate string `json:"gate" validate:"required,opgate"`
	Note string `json:"note" validate:"max=2000"`
}

func (h *ApprovalHandler) GrantGate(c echo.Context) error {
	// Validate path param
	loanID := c.Param("loan_id")
	if loanID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing loan_id path param"})
	}
	actor := middleware.ActorFrom(c)
	if actor == "" {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "missing " + middleware.HeaderActorID})
	}
	// Bind + validate body payload JSON
	var req grantGateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, err)
	}

	dto, err := h.uc.Grant(c.Request().Context(), approval.GrantInput{
		LoanID: loanID,
		Gate:   domainLoan.GateFlag(req.Gate),
		Actor:  actor,
		Note:   req.Note,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *ApprovalHandler) ListGates(c echo.Context) error {
	out, err := h.uc.ListByLoan(c.Request().Context(), c.Param("loan_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"approvals": out})
}
