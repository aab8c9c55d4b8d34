package server

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dukerupert/stripe-mirror/internal/handler"
	"github.com/dukerupert/stripe-mirror/internal/middleware"
	"github.com/dukerupert/stripe-mirror/internal/store"
)

type Config struct {
	TokenHash      string
	RateLimit      int
	TrustedProxies []string
}

type Server struct {
	db          *sql.DB
	reportH     *handler.ReportHandler
	rateLimiter *middleware.RateLimiter
	ipResolver  *middleware.IPResolver
	cfg         Config
	logger      *slog.Logger
}

func New(db *sql.DB, cfg Config, logger *slog.Logger) (*Server, error) {
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 60
	}
	ipResolver, err := middleware.NewIPResolver(cfg.TrustedProxies)
	if err != nil {
		return nil, fmt.Errorf("configure client ip: %w", err)
	}
	reportH := handler.NewReportHandler(
		db,
		store.NewSubscriptionStore(db),
		store.NewAccountStore(db),
		logger.With("component", "reports"),
	)
	return &Server{
		db:          db,
		reportH:     reportH,
		rateLimiter: middleware.NewRateLimiter(cfg.RateLimit, time.Minute),
		ipResolver:  ipResolver,
		cfg:         cfg,
		logger:      logger,
	}, nil
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthCheck)
	mux.Handle("GET /metrics", promhttp.Handler())

	protect := func(h http.HandlerFunc) http.Handler {
		return middleware.RateLimit(s.rateLimiter, s.ipResolver)(middleware.RequireToken(s.cfg.TokenHash)(h))
	}
	mux.Handle("GET /accounts", protect(s.reportH.Accounts))
	mux.Handle("GET /reports/subscriptions", protect(s.reportH.Subscriptions))
	mux.Handle("GET /reports/subscriptions/churn", protect(s.reportH.Churn))
	mux.Handle("GET /reports/subscriptions/counts", protect(s.reportH.SubscriptionCounts))
	mux.Handle("GET /reports/subscriptions/plans", protect(s.reportH.PlanSummary))
	mux.Handle("GET /reports/transfers/totals", protect(s.reportH.TransferTotals))
	mux.Handle("GET /reports/charges/totals", protect(s.reportH.ChargeTotals))

	return middleware.RequestLogger(s.logger)(middleware.Metrics(mux))
}

func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := s.db.PingContext(r.Context()); err != nil {
		s.logger.Error("health check", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"status":"unavailable"}`))
		return
	}
	w.Write([]byte(`{"status":"ok"}`))
}
