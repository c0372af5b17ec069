package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	appai "github.com/bryanwahyu/genefit/internal/application/ai"
	"github.com/bryanwahyu/genefit/internal/application/interpret"
	appsession "github.com/bryanwahyu/genefit/internal/application/session"
	"github.com/bryanwahyu/genefit/internal/application/uploads"
	"github.com/bryanwahyu/genefit/internal/config"
	"github.com/bryanwahyu/genefit/internal/domain/analyst"
	domsession "github.com/bryanwahyu/genefit/internal/domain/session"
	"github.com/bryanwahyu/genefit/internal/domain/species"
	"github.com/bryanwahyu/genefit/internal/infra/ai/openai"
	mysqlp "github.com/bryanwahyu/genefit/internal/infra/db/mysql"
	pgp "github.com/bryanwahyu/genefit/internal/infra/db/postgres"
	"github.com/bryanwahyu/genefit/internal/infra/httpserver"
	"github.com/bryanwahyu/genefit/internal/infra/identity"
	"github.com/bryanwahyu/genefit/internal/infra/imaging"
	"github.com/bryanwahyu/genefit/internal/infra/kv"
	minioStore "github.com/bryanwahyu/genefit/internal/infra/storage"
	"github.com/bryanwahyu/genefit/internal/middleware"
)

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.Log.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func newLogger(development bool) (*zap.Logger, error) {
	if development {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ready := middleware.Readiness{
		Backends: map[string]string{"sessions": cfg.Session.Backend, "reports": "disabled"},
		Checkers: map[string]middleware.HealthChecker{},
		Started:  time.Now(),
	}

	// species catalog
	catalog, err := species.Load(cfg.Catalog.Path)
	if err != nil {
		return fmt.Errorf("catalog: %w", err)
	}
	interpreter, err := interpret.New(catalog)
	if err != nil {
		return fmt.Errorf("catalog: %w", err)
	}
	logger.Info("catalog loaded", zap.Int("version", catalog.Version), zap.Int("species", len(catalog.Species)))

	// analysis log database (optional)
	var (
		db      *sql.DB
		records analyst.Repository
	)
	switch cfg.Database.Driver {
	case "mysql":
		if db, err = mysqlp.Connect(ctx, cfg.MySQLDSN()); err != nil {
			return fmt.Errorf("mysql connect: %w", err)
		}
		if err := mysqlp.EnsureSchema(ctx, db); err != nil {
			return fmt.Errorf("mysql schema: %w", err)
		}
		records = mysqlp.NewAnalysisRepository(db)
	case "postgres":
		if db, err = pgp.Connect(ctx, cfg.PostgresDSN()); err != nil {
			return fmt.Errorf("postgres connect: %w", err)
		}
		if err := pgp.EnsureSchema(ctx, db); err != nil {
			return fmt.Errorf("postgres schema: %w", err)
		}
		records = pgp.NewAnalysisRepository(db)
	}
	if db != nil {
		defer db.Close()
		ready.Backends["records"] = cfg.Database.Driver
		ready.Checkers["records"] = &middleware.DatabaseHealthChecker{DB: db}
	}

	// session storage
	var storage domsession.Storage
	switch cfg.Session.Backend {
	case "redis":
		rdb := kv.NewRedis(cfg.Redis.Addrs, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.Cluster, cfg.Redis.Prefix)
		defer rdb.Close()
		if err := rdb.Ping(ctx); err != nil {
			return fmt.Errorf("redis ping: %w", err)
		}
		ready.Checkers["sessions"] = middleware.CheckerFunc(rdb.Ping)
		storage = rdb
	case "mysql":
		storage = mysqlp.NewSessionRepository(db)
	case "postgres":
		storage = pgp.NewSessionRepository(db)
	default:
		storage = kv.NewMemory()
	}
	sessions := appsession.NewManager(storage,
		identity.NewGoogle(cfg.Auth.GoogleClientID, cfg.Auth.VerifyCredentials, logger.Named("identity")),
		logger.Named("session"))

	// uploads
	normalizer := imaging.NewNormalizer()
	normalizer.MaxDimension = cfg.Uploads.MaxDimension
	normalizer.Quality = cfg.Uploads.JPEGQuality
	up := uploads.NewService(normalizer, logger.Named("uploads"))
	up.MaxFiles = cfg.Uploads.MaxFiles
	up.MaxFileBytes = cfg.MaxFileBytes()

	// analysis
	if cfg.AI.APIKey == "" {
		logger.Warn("no completion API key configured; analysis requests will be rejected upstream")
	}
	client := openai.NewClient(cfg.AI.APIKey, cfg.AI.BaseURL, cfg.AI.Model)
	analysis := appai.NewService(client, interpreter)
	analysis.Logger = logger.Named("analysis")
	if records != nil {
		analysis.Records = records
	}

	// report archive (optional)
	if cfg.Minio.Enabled {
		store, err := minioStore.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			return fmt.Errorf("minio init: %w", err)
		}
		store.PresignExpiry = cfg.Minio.PresignExpiry
		analysis.Reports = store
		ready.Backends["reports"] = "minio"
		ready.Checkers["reports"] = middleware.CheckerFunc(store.Ping)
	}

	mux := chi.NewRouter()
	mux.Mount("/", httpserver.NewRouter(up, analysis, sessions, httpserver.Options{
		Logger:         logger.Named("http"),
		CORSOrigins:    cfg.Server.CORSOrigins,
		SecureCookies:  cfg.Server.SecureCookies,
		Limiter:        middleware.NewRateLimiter(ctx, cfg.Server.RateLimit.Capacity, cfg.Server.RateLimit.RefillRate),
		Readiness:      ready,
		GoogleClientID: cfg.Auth.GoogleClientID,
	}))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
	return nil
}
