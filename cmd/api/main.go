package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/school-records-api/internal/repository"
	"github.com/noah-isme/school-records-api/internal/routes"
	"github.com/noah-isme/school-records-api/internal/service"
	"github.com/noah-isme/school-records-api/pkg/cache"
	"github.com/noah-isme/school-records-api/pkg/config"
	"github.com/noah-isme/school-records-api/pkg/database"
	"github.com/noah-isme/school-records-api/pkg/export"
	"github.com/noah-isme/school-records-api/pkg/logger"
	"github.com/noah-isme/school-records-api/pkg/sessioncookie"
)

// @title School Records API
// @version 1.0.0
// @description Role-based student roster, attendance, grades and behaviour records
// @BasePath /api
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if err := run(cfg, logr); err != nil {
		logr.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config, logr *zap.Logger) error {
	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := migrateUp(db); err != nil {
			return err
		}
		logr.Info("database migrations applied")
	}

	var redisClient *redis.Client
	if cfg.Session.Store == config.SessionStoreRedis || cfg.Stats.CacheEnabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer redisClient.Close()
	}

	sessions, err := sessionStore(cfg.Session.Store, db, redisClient)
	if err != nil {
		return err
	}

	cookies, err := sessioncookie.New(sessioncookie.Options{
		Name:     cfg.Session.CookieName,
		HashKey:  []byte(cfg.Session.CookieHashKey),
		BlockKey: []byte(cfg.Session.CookieBlockKey),
		Secure:   cfg.Env == config.EnvProduction,
		MaxAge:   cfg.Session.TTL,
	})
	if err != nil {
		return fmt.Errorf("init session cookie: %w", err)
	}

	validate := validator.New()
	metrics := service.NewMetricsService()

	userRepo := repository.NewUserRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	gradeRepo := repository.NewGradeRepository(db)
	behaviorRepo := repository.NewBehaviorRepository(db)

	var statsCache *service.CacheService
	if redisClient != nil {
		statsCache = service.NewCacheService(repository.NewCacheRepository(redisClient), metrics, cfg.Stats.CacheTTL, logr, cfg.Stats.CacheEnabled)
	}

	authService := service.NewAuthService(userRepo, sessions, validate, logr, metrics, service.AuthConfig{SessionTTL: cfg.Session.TTL})
	statsService := service.NewStatsService(studentRepo, attendanceRepo, statsCache, service.StatsConfig{Location: location, CacheTTL: cfg.Stats.CacheTTL, Metrics: metrics}, logr)
	studentService := service.NewStudentService(studentRepo, attendanceRepo, gradeRepo, behaviorRepo, statsService, validate, logr)

	router := routes.SetupRoutes(routes.Dependencies{
		Config:     cfg,
		Logger:     logr,
		Metrics:    metrics,
		DB:         db,
		Auth:       authService,
		Cookies:    cookies,
		Students:   studentService,
		Attendance: service.NewAttendanceService(studentRepo, attendanceRepo, statsService, validate, logr),
		Grades:     service.NewGradeService(studentRepo, gradeRepo, validate, logr),
		Behavior:   service.NewBehaviorService(studentRepo, behaviorRepo, validate, logr),
		Stats:      statsService,
		Export:     service.NewExportService(studentService, export.NewCSVExporter(), export.NewPDFExporter(), logr),
		Audit:      userRepo,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sweeper := service.NewSessionSweeper(authService, cfg.Session.SweepInterval, logr)
	sweeper.Start(ctx)
	defer sweeper.Stop()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "session_store", cfg.Session.Store)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logr.Info("shutting down", zap.Duration("timeout", cfg.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}

func migrateUp(db *sqlx.DB) error {
	migrator, err := database.NewMigrator(db.DB)
	if err != nil {
		return err
	}
	defer migrator.Close()
	return migrator.Up()
}

func sessionStore(kind string, db *sqlx.DB, client *redis.Client) (service.SessionStore, error) {
	switch kind {
	case config.SessionStorePostgres, "":
		return repository.NewSessionRepository(db), nil
	case config.SessionStoreRedis:
		return repository.NewRedisSessionRepository(client), nil
	case config.SessionStoreMemory:
		return repository.NewMemorySessionRepository(), nil
	default:
		return nil, fmt.Errorf("unknown session store %q", kind)
	}
}
