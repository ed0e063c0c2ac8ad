package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"erm/internal/domain/activity"
	"erm/internal/domain/attendance"
	"erm/internal/domain/auth"
	"erm/internal/domain/core"
	"erm/internal/domain/performance"
	"erm/internal/domain/reports"
	"erm/internal/platform/config"
	"erm/internal/platform/db"
	"erm/internal/platform/email"
	"erm/internal/platform/jobs"
	"erm/internal/platform/metrics"
	"erm/internal/transport/http/api"
	activityhandler "erm/internal/transport/http/handlers/activity"
	attendancehandler "erm/internal/transport/http/handlers/attendance"
	authhandler "erm/internal/transport/http/handlers/auth"
	corehandler "erm/internal/transport/http/handlers/core"
	performancehandler "erm/internal/transport/http/handlers/performance"
	reportshandler "erm/internal/transport/http/handlers/reports"
	usershandler "erm/internal/transport/http/handlers/users"
	"erm/internal/transport/http/middleware"
)

type App struct {
	Cfg    config.Config
	Pool   *pgxpool.Pool
	Router chi.Router

	httpServer *http.Server
	cancelJobs context.CancelFunc
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
			pool.Close()
			return nil, err
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			pool.Close()
			return nil, err
		}
	}

	collector := metrics.New()
	mailer := email.New(cfg)

	activitySvc := activity.New(pool)
	authStore := auth.NewStore(pool)
	coreStore := core.NewStore(pool)
	attendanceSvc := attendance.NewService(attendance.NewStore(pool), cfg.LateThresholdHour)
	performanceSvc := performance.NewService(performance.NewStore(pool))
	reportsSvc := reports.NewService(reports.NewStore(pool), attendanceSvc, performanceSvc, activitySvc, slog.Default())

	jobsCtx, cancelJobs := context.WithCancel(context.Background())
	jobSvc := jobs.New(pool)
	jobSvc.Start(jobsCtx, cfg.ReportInterval, reportsSvc.GenerateRecurring)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.Logger(collector))
	router.Use(middleware.Recover)
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
	router.Use(middleware.Auth(cfg.JWTSecret))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, map[string]string{"status": "ok"}, middleware.GetRequestID(r.Context()))
	})
	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		reqID := middleware.GetRequestID(r.Context())
		pingCtx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(pingCtx); err != nil {
			api.Fail(w, http.StatusServiceUnavailable, "not_ready", "database unreachable", reqID)
			return
		}
		api.Success(w, map[string]string{"status": "ready"}, reqID)
	})
	if cfg.MetricsEnabled {
		router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, collector.Snapshot(), middleware.GetRequestID(r.Context()))
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		authhandler.NewHandler(authStore, coreStore, activitySvc, mailer, cfg).RegisterRoutes(r)
		corehandler.NewHandler(coreStore, activitySvc, cfg).RegisterRoutes(r)
		attendancehandler.NewHandler(attendanceSvc, coreStore, activitySvc).RegisterRoutes(r)
		performancehandler.NewHandler(performanceSvc, coreStore, activitySvc).RegisterRoutes(r)
		reportshandler.NewHandler(reportsSvc).RegisterRoutes(r)
		activityhandler.NewHandler(activitySvc).RegisterRoutes(r)
		usershandler.NewHandler(authStore, activitySvc).RegisterRoutes(r)
	})

	if cfg.FrontendDir != "" {
		registerSPA(router, cfg.FrontendDir)
	}

	return &App{
		Cfg:    cfg,
		Pool:   pool,
		Router: router,
		httpServer: &http.Server{
			Addr:              cfg.Addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		cancelJobs: cancelJobs,
	}, nil
}

// registerSPA serves the built frontend, falling back to index.html so
// client-side routes survive a refresh.
func registerSPA(router chi.Router, dir string) {
	fileServer := http.FileServer(http.Dir(dir))
	index := filepath.Join(dir, "index.html")

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			api.Fail(w, http.StatusNotFound, "not_found", "route not found", middleware.GetRequestID(r.Context()))
			return
		}
		path := filepath.Join(dir, filepath.Clean("/"+r.URL.Path))
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			fileServer.ServeHTTP(w, r)
			return
		}
		http.ServeFile(w, r, index)
	})
}

func (a *App) Run() error {
	slog.Info("server listening", "addr", a.Cfg.Addr, "env", a.Cfg.Environment)
	if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (a *App) Shutdown(ctx context.Context) error {
	a.cancelJobs()
	err := a.httpServer.Shutdown(ctx)
	a.Pool.Close()
	return err
}
