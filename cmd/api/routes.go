package main

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	httpadp "loan-pipeline/internal/adapter/http"
	"loan-pipeline/internal/adapter/middleware"
)

type routes struct {
	loans       *httpadp.LoanHandler
	transitions *httpadp.TransitionHandler
	approvals   *httpadp.ApprovalHandler
	stats       *httpadp.StatsHandler
	payments    *httpadp.PaymentHandler
}

// registerRoutes mounts the API. Operator routes need an actor header; mutating
// operator calls are idempotent when rdb is set.
func registerRoutes(e *echo.Echo, r routes, rdb *redis.Client, ttl time.Duration) {
	mws := []echo.MiddlewareFunc{middleware.RequireActor()}
	if rdb != nil {
		mws = append(mws, middleware.Idempotency(rdb, ttl))
	}
	loans := e.Group("/loans", mws...)
	loans.GET("", r.loans.ListLoans)
	loans.POST("", r.loans.CreateLoan)
	loans.GET("/:loan_id", r.loans.GetLoan)
	loans.POST("/:loan_id/transitions", r.transitions.RequestTransition)
	loans.POST("/:loan_id/gates", r.approvals.GrantGate)
	loans.GET("/:loan_id/gates", r.approvals.ListGates)

	p := e.Group("/pipeline")
	p.GET("/statuses", r.loans.StatusOptions)
	p.GET("/stats", r.stats.PipelineStats)
	p.GET("/history/monthly", r.stats.MonthlyHistory)
	p.GET("/history/daily", r.stats.DailyHistory)
	p.GET("/closings", r.stats.RecentClosings)

	e.POST("/webhooks/payments", r.payments.PaymentWebhook)
}
