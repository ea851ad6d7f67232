package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"loan-pipeline/internal/adapter/events"
	httpadp "loan-pipeline/internal/adapter/http"
	"loan-pipeline/internal/adapter/middleware"
	"loan-pipeline/internal/adapter/repository/mysql"
	"loan-pipeline/internal/config"
	"loan-pipeline/internal/infrastructure/cache"
	"loan-pipeline/internal/infrastructure/db"
	"loan-pipeline/internal/infrastructure/metrics"
	ucApproval "loan-pipeline/internal/usecase/approval"
	ucLoan "loan-pipeline/internal/usecase/loan"
	"loan-pipeline/internal/usecase/payment"
	"loan-pipeline/internal/usecase/stats"
	"loan-pipeline/internal/usecase/transition"
)

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

func loadConfig(path string) (*config.Config, error) {
	var cfg *config.Config
	if path != "" {
		c, err := config.LoadFile(path)
		if err != nil {
			return nil, err
		}
		cfg = c
	} else {
		cfg = config.Load()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func openDB(cfg *config.Config) (*gorm.DB, error) {
	opt := db.Options{Debug: cfg.DBDebug}
	var (
		gdb *gorm.DB
		err error
	)
	switch cfg.DBDriver {
	case "sqlite":
		gdb, err = db.OpenSQLite(cfg.SQLitePath, opt)
	default:
		gdb, err = db.OpenMySQL(cfg.MySQLDSN(), opt)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.DBDriver, err)
	}
	if err := db.Migrate(gdb); err != nil {
		closeDB(gdb)
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return gdb, nil
}

func closeDB(gdb *gorm.DB) {
	if sqlDB, err := gdb.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	gdb, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer closeDB(gdb)

	checks := []httpadp.Check{{Name: "db", Fn: func(ctx context.Context) error {
		sqlDB, err := gdb.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}}}

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb, err = cache.Open(ctx, cache.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
		if err != nil {
			return err
		}
		defer rdb.Close()
		checks = append(checks, httpadp.Check{Name: "redis", Fn: func(ctx context.Context) error { return rdb.Ping(ctx).Err() }})
	} else {
		logger.Warn("REDIS_ADDR empty; idempotency keys disabled")
	}

	var (
		pub events.Publisher = &events.NoopPublisher{}
		sub events.Subscriber
	)
	if cfg.NATSURL != "" {
		np, err := events.NewNATSPublisher(cfg.NATSURL)
		if err != nil {
			return err
		}
		defer np.Close()
		ns, err := events.NewNATSSubscriber(cfg.NATSURL)
		if err != nil {
			return err
		}
		defer ns.Close()
		pub, sub = np, ns
	}

	m := metrics.New()
	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	policy := cfg.RetryPolicy()
	loanRepo := mysql.NewLoanRepository(gdb)
	u := mysql.NewGormUoW(gdb)

	svc := transition.NewService(u, pub,
		transition.WithTopic(cfg.TransitionSubject),
		transition.WithMetrics(m),
		transition.WithRetryPolicy(policy),
		transition.WithLogger(logger),
	)
	approvals := ucApproval.NewUsecase(loanRepo, mysql.NewApprovalRepository(gdb), u, pub,
		ucApproval.WithGateTopic(cfg.GateSubject),
		ucApproval.WithMetrics(m),
		ucApproval.WithRetryPolicy(policy),
		ucApproval.WithLogger(logger),
	)
	listener := payment.NewListener(u, pub,
		payment.WithGateTopic(cfg.GateSubject),
		payment.WithMetrics(m),
		payment.WithRetryPolicy(policy),
		payment.WithLogger(logger),
	)

	if sub != nil {
		go func() {
			if err := listener.StartSubscriber(ctx, sub, cfg.PaymentSubject); err != nil {
				logger.Error("payment subscriber stopped", "err", err)
			}
		}()
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(echomw.Logger(), echomw.Recover(), middleware.RequestMetrics(m))

	h := httpadp.NewHandler(checks...)
	e.GET("/health", h.Health)
	if cfg.MetricsEnabled {
		e.GET("/metrics", echo.WrapHandler(m.Handler()))
	}

	registerRoutes(e, routes{
		loans:       httpadp.NewLoanHandler(ucLoan.NewUsecase(loanRepo)),
		transitions: httpadp.NewTransitionHandler(svc),
		approvals:   httpadp.NewApprovalHandler(approvals),
		stats:       httpadp.NewStatsHandler(stats.NewAggregator(loanRepo, stats.WithLocation(loc))),
		payments:    httpadp.NewPaymentHandler(listener),
	}, rdb, cfg.IdempTTL())

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.AppPort
		logger.Info("listening", "addr", addr, "db", cfg.DBDriver, "nats", cfg.NATSURL != "")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
