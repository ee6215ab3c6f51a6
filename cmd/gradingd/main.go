package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	api "github.com/mind-engage/mindengage-autograde/internal/api/http"
	auth "github.com/mind-engage/mindengage-autograde/internal/auth/middleware"
	"github.com/mind-engage/mindengage-autograde/internal/autograding"
	"github.com/mind-engage/mindengage-autograde/internal/config"
	"github.com/mind-engage/mindengage-autograde/internal/db"
	"github.com/mind-engage/mindengage-autograde/internal/grading"
	"github.com/mind-engage/mindengage-autograde/internal/lemma"
	"github.com/mind-engage/mindengage-autograde/internal/logging"
	"github.com/mind-engage/mindengage-autograde/internal/metrics"
	"github.com/mind-engage/mindengage-autograde/internal/question"
	syncx "github.com/mind-engage/mindengage-autograde/internal/sync"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- DB ---
	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	dbh, err := db.Open(openCtx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	cancel()
	if err != nil {
		logger.Fatal("db open failed", zap.Error(err))
	}
	defer dbh.Close()

	// --- Grading ---
	lz, err := buildLemmatizer(cfg, logger)
	if err != nil {
		logger.Fatal("lemmatizer", zap.Error(err))
	}
	questions := question.NewSQLStore(dbh)
	events := syncx.NewEventRepo(dbh).WithSite(cfg.SiteID)
	grader := grading.NewAutoGrader(
		grading.WithLemmatizer(lz),
		grading.WithLogger(logger.Named("grading")),
	)
	svcOpts := []autograding.Option{
		autograding.WithEvents(events),
		autograding.WithLogger(logger.Named("autograding")),
	}
	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
		m.Registry().MustRegister(collectors.NewDBStatsCollector(dbh, string(cfg.DBDriver)))
		svcOpts = append(svcOpts, autograding.WithObserver(m))
	}
	svc := autograding.NewService(questions, autograding.NewSQLStore(dbh), grader, svcOpts...)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, logging.RequestLogger(logger.Named("http")), middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	if m != nil {
		r.Use(m.Middleware)
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins(),
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	deps := api.Deps{
		Auth:       auth.NewAuthService(cfg.AuthHMACSecret),
		Questions:  questions,
		Service:    svc,
		Lemmatizer: lz,
		Events:     events,
		Feed:       events,
		Log:        logger.Named("api"),
	}
	if cfg.EnableLocalAuth {
		deps.Users = auth.NewUsers(dbh, cfg.AdminUser, cfg.AdminPassHash)
	}
	api.Mount(r, deps)

	if m != nil {
		r.Handle("/metrics", m.Handler())
	}
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := dbh.PingContext(r.Context()); err != nil {
			http.Error(w, "db unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("shutdown", zap.Error(err))
		}
	}()

	logger.Info("listening",
		zap.String("addr", cfg.HTTPAddr),
		zap.String("mode", string(cfg.Mode)),
		zap.String("db", cfg.DBDriver))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("serve", zap.Error(err))
	}
}

// buildLemmatizer layers the optional remote service (cached) over the
// dictionary, which is the embedded one merged with LEMMA_DICT_PATH.
func buildLemmatizer(cfg config.Config, logger *zap.Logger) (grading.Lemmatizer, error) {
	dict := lemma.DefaultDictionary()
	if cfg.LemmaDictPath != "" {
		extra, err := lemma.LoadDictionary(cfg.LemmaDictPath)
		if err != nil {
			return nil, err
		}
		dict = dict.Merge(extra)
	}
	if cfg.LemmaServiceURL == "" {
		return lemma.NewCache(dict, cfg.LemmaCacheSize), nil
	}
	remote := lemma.NewRemote(lemma.RemoteConfig{
		BaseURL: cfg.LemmaServiceURL,
		Timeout: cfg.LemmaTimeout,
		Logger:  logger.Named("lemma"),
	})
	return lemma.Chain{lemma.NewCache(remote, cfg.LemmaCacheSize), dict}, nil
}
