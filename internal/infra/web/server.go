package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"course-platform/internal/config"
	"course-platform/internal/infra/metrics"
	red "course-platform/internal/infra/redis"
	"course-platform/internal/usecase"
)

type Server struct {
	checkoutUC usecase.CheckoutUseCase
	notifyUC   usecase.NotifyUseCase
	courseUC   usecase.CourseUseCase
	accessUC   usecase.AccessGrantUseCase
	reportUC   usecase.ReportUseCase

	limiter       *red.RateLimiter
	checkoutLimit int

	apiKey string
	auth   *AuthManager
	log    *zerolog.Logger

	server *http.Server
}

func NewServer(
	cfg *config.Config,
	checkoutUC usecase.CheckoutUseCase,
	notifyUC usecase.NotifyUseCase,
	courseUC usecase.CourseUseCase,
	accessUC usecase.AccessGrantUseCase,
	reportUC usecase.ReportUseCase,
	limiter *red.RateLimiter,
	logger *zerolog.Logger,
) *Server {
	s := &Server{
		checkoutUC:    checkoutUC,
		notifyUC:      notifyUC,
		courseUC:      courseUC,
		accessUC:      accessUC,
		reportUC:      reportUC,
		limiter:       limiter,
		checkoutLimit: cfg.Payment.CheckoutRateLimit,
		apiKey:        cfg.Admin.APIKey,
		auth:          NewAuthManager(cfg.Admin.JWTSecret, !cfg.Runtime.Dev, cfg.Admin.SessionTTL),
		log:           logger,
	}
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	metrics.MustRegister()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	// Public payment surface
	r.Post("/payments/checkout", s.checkoutHandler())
	r.Post("/payments/notify", s.notifyHandler())
	r.Get("/payments/return", s.returnHandler())
	r.Get("/payments/cancel", s.cancelHandler())

	// Public catalog reads
	r.Get("/api/v1/courses", coursesListHandler(s.courseUC))
	r.Get("/api/v1/courses/{id}", courseGetHandler(s.courseUC))

	// Admin
	r.Post("/api/v1/login", s.loginHandler())
	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Post("/api/v1/courses", coursesCreateHandler(s.courseUC))
		r.Get("/api/v1/payments", paymentsListHandler(s.reportUC))
		r.Get("/api/v1/stats", statsHandler(s.reportUC))
		r.Get("/api/v1/users/{id}/purchases", userPurchasesHandler(s.accessUC))
	})

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}

func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("HTTP server listening")
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
