package http

import (
	"net/http"

	domainLoan "loan-pipeline/internal/domain/loan"
	"loan-pipeline/internal/usecase/payment"

	"github.com/labstack/echo/v4"
)

type PaymentHandler struct{ listener *payment.Listener }

func NewPaymentHandler(l *payment.Listener) *PaymentHandler { return &PaymentHandler{listener: l} }

type paymentConfirmedReq struct {
	LoanID  string `json:"loan_id"  validate:"required,hex32"`
	FeeKind string `json:"fee_kind" validate:"required,feekind"`
	EventID string `json:"event_id" validate:"max=64"`
}

// PaymentWebhook accepts processor confirmations. Redelivery of an already
// applied confirmation answers 200 with applied=false.
func (h *PaymentHandler) PaymentWebhook(c echo.Context) error {
	var req paymentConfirmedReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, err)
	}
	kind, _ := domainLoan.ParseFeeKind(req.FeeKind)

	res, err := h.listener.OnPaymentConfirmed(c.Request().Context(), req.LoanID, kind)
	if err != nil {
		return respondError(c, err)
	}
	c.Logger().Infof("payment webhook: event=%s loan=%s gate=%s applied=%t", req.EventID, req.LoanID, res.Gate, res.Applied)
	return c.JSON(http.StatusOK, res)
}
