package http

import (
	"encoding/json"
	"net/http"
	"strings"

	domain "loan-pipeline/internal/domain/loan"
	"loan-pipeline/internal/usecase/loan"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type LoanHandler struct{ uc *loan.Usecase }

func NewLoanHandler(uc *loan.Usecase) *LoanHandler { return &LoanHandler{uc: uc} }

type createLoanReq struct {
	BorrowerID      string      `json:"borrower_id"      validate:"required,max=64"`
	LoanAmount      json.Number `json:"loan_amount"      validate:"required,money"`
	PropertyType    string      `json:"property_type"    validate:"max=64"`
	TransactionType string      `json:"transaction_type" validate:"max=64"`
}

func (h *LoanHandler) CreateLoan(c echo.Context) error {
	var req createLoanReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, err)
	}
	amount, err := decimal.NewFromString(req.LoanAmount.String())
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid loan_amount"})
	}
	dto, err := h.uc.Create(c.Request().Context(), loan.CreateLoanInput{
		BorrowerID:      req.BorrowerID,
		LoanAmount:      amount,
		PropertyType:    req.PropertyType,
		TransactionType: req.TransactionType,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *LoanHandler) GetLoan(c echo.Context) error {
	loanID := c.Param("loan_id")
	if loanID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing loan_id path param"})
	}
	dto, err := h.uc.Get(c.Request().Context(), loanID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

// ListLoans supports ?status= and a free-text ?search=.
func (h *LoanHandler) ListLoans(c echo.Context) error {
	f := domain.ListFilter{
		Status: domain.Status(strings.TrimSpace(c.QueryParam("status"))),
		Search: strings.TrimSpace(c.QueryParam("search")),
	}
	out, err := h.uc.List(c.Request().Context(), f)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"loans": out, "count": len(out)})
}

func (h *LoanHandler) StatusOptions(c echo.Context) error {
	return c.JSON(http.StatusOK, h.uc.StatusOptions())
}
