package http

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"loan-pipeline/internal/adapter/repository/mysql"
	"loan-pipeline/internal/testutil/dbtest"
	"loan-pipeline/internal/testutil/eventsmock"
	"loan-pipeline/internal/usecase/approval"
	"loan-pipeline/internal/usecase/loan"
	"loan-pipeline/internal/usecase/payment"
	"loan-pipeline/internal/usecase/stats"
	"loan-pipeline/internal/usecase/transition"
	"loan-pipeline/pkg/retry"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// ---- helpers ----

func containsFieldMsg(list []FieldError, field, substr string) bool {
	for _, e := range list {
		if e.Field == field && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

func newEchoWithValidator() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func mustJSON(v any) *bytes.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

// newCtx builds an echo context for a JSON request; params alternate name, value.
func newCtx(e *echo.Echo, method, target string, body any, headers map[string]string, params ...string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, nil)
	if body != nil {
		req = httptest.NewRequest(method, target, mustJSON(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	var names, values []string
	for i := 0; i+1 < len(params); i += 2 {
		names = append(names, params[i])
		values = append(values, params[i+1])
	}
	if len(names) > 0 {
		c.SetParamNames(names...)
		c.SetParamValues(values...)
	}
	return c, rec
}

func decodeError(rec *httptest.ResponseRecorder) ErrorResponse {
	var out ErrorResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return out
}

// stack wires every handler to one sqlite database.
type stack struct {
	db          *gorm.DB
	pub         *eventsmock.Publisher
	loans       *LoanHandler
	transitions *TransitionHandler
	approvals   *ApprovalHandler
	stats       *StatsHandler
	payments    *PaymentHandler
}

func newStack(t *testing.T) *stack {
	t.Helper()
	db := dbtest.Open(t)
	pub := &eventsmock.Publisher{}
	loanRepo := mysql.NewLoanRepository(db)
	u := mysql.NewGormUoW(db)
	policy := retry.Policy{Attempts: 3, BaseDelay: time.Millisecond}
	return &stack{
		db:          db,
		pub:         pub,
		loans:       NewLoanHandler(loan.NewUsecase(loanRepo)),
		transitions: NewTransitionHandler(transition.NewService(u, pub, transition.WithRetryPolicy(policy))),
		approvals:   NewApprovalHandler(approval.NewUsecase(loanRepo, mysql.NewApprovalRepository(db), u, pub, approval.WithRetryPolicy(policy))),
		stats:       NewStatsHandler(stats.NewAggregator(loanRepo)),
		payments:    NewPaymentHandler(payment.NewListener(u, pub, payment.WithRetryPolicy(policy))),
	}
}
