// Package server wires the DailyDiet API together: storage backend, token
// sessions, photo presigning, login rate limiting and the HTTP server, and
// runs it until a shutdown signal arrives.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/dailydiet/internal/dbx"
	"github.com/dmitrijs2005/dailydiet/internal/logging"
	"github.com/dmitrijs2005/dailydiet/internal/server/config"
	"github.com/dmitrijs2005/dailydiet/internal/server/metrics"
	"github.com/dmitrijs2005/dailydiet/internal/server/photos"
	"github.com/dmitrijs2005/dailydiet/internal/server/ratelimit"
	"github.com/dmitrijs2005/dailydiet/internal/server/repositories/memory"
	"github.com/dmitrijs2005/dailydiet/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/dailydiet/internal/server/rest"
	"github.com/dmitrijs2005/dailydiet/internal/server/services"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"
)

const pingTimeout = 3 * time.Second

var openDB = sql.Open

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	redis   *redis.Client
	metrics *metrics.Metrics
	health  *rest.Health
	server  *rest.Server
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)
	app := &App{
		config:  c,
		logger:  logger,
		metrics: metrics.New(),
		health:  rest.NewHealth(false),
	}

	store, repos, err := app.initStorage(ctx)
	if err != nil {
		return nil, err
	}

	presigner, err := photos.NewS3Presigner(ctx, photos.Options{
		Region:       c.S3Region,
		AccessKey:    c.S3RootUser,
		SecretKey:    c.S3RootPassword,
		Bucket:       c.S3Bucket,
		BaseEndpoint: c.S3BaseEndpoint,
		URLTTL:       c.PhotoURLValidityDuration,
	})
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("photo storage init error: %w", err)
	}

	sessions := services.NewSessionService(store, repos, c, logger, services.WithMetrics(app.metrics))
	users := services.NewUserService(store, repos, sessions, logger)
	meals := services.NewMealService(store, repos, presigner, logger)

	h := rest.NewHandlers(sessions, users, meals, app.buildLimiter(ctx), logger)
	app.server = rest.NewServer(c.HTTPAddr, logger, h, rest.Options{
		Metrics:     app.metrics,
		Health:      app.health,
		CORSOrigins: c.CORSOrigins,
	})

	return app, nil
}

// initStorage picks PostgreSQL when a DSN is configured and the in-memory
// store otherwise.
func (app *App) initStorage(ctx context.Context) (dbx.Store, repomanager.RepositoryManager, error) {
	if app.config.DatabaseDSN == "" {
		app.logger.Warn(ctx, "no database DSN configured, using in-memory storage")
		store := memory.NewStore()
		return store, repomanager.NewMemoryRepositoryManager(store), nil
	}

	db, err := openDB("pgx", app.config.DatabaseDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("db open error: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("db ping error: %w", err)
	}

	m := repomanager.NewPostgresRepositoryManager()
	if err := m.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("migration error: %w", err)
	}

	app.db = db
	return dbx.NewSQLStore(db, nil), m, nil
}

// buildLimiter uses Redis when it is configured and reachable, so limits
// hold across instances, and falls back to a per-process limiter.
func (app *App) buildLimiter(ctx context.Context) ratelimit.Limiter {
	c := app.config
	if c.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     c.RedisAddr,
			Password: c.RedisPassword,
			DB:       c.RedisDB,
		})

		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		err := client.Ping(pingCtx).Err()
		if err == nil {
			app.redis = client
			return ratelimit.NewRedisLimiter(client, c.LoginRateLimit, c.LoginRateWindow, c.RedisPrefix)
		}

		app.logger.Warn(ctx, "redis unavailable, using in-memory rate limiter", "error", err)
		_ = client.Close()
	}

	return ratelimit.NewMemory(c.LoginRateLimit, c.LoginRateWindow)
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) error {
	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
		return err
	}
	return nil
}

// Run serves until ctx is canceled or a shutdown signal arrives, then
// releases the database and Redis connections.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "env", app.config.Env)

	app.initSignalHandler(cancelFunc)

	var (
		wg     sync.WaitGroup
		runErr error
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		runErr = app.startHTTPServer(ctx, cancelFunc)
	}()

	app.health.SetReady(true)
	<-ctx.Done()
	app.health.SetReady(false)

	wg.Wait()
	app.Close()

	app.logger.Info(context.Background(), "App stopped")
	return runErr
}

// Close releases external connections. Safe to call more than once.
func (app *App) Close() {
	var errs []error
	if app.db != nil {
		errs = append(errs, app.db.Close())
		app.db = nil
	}
	if app.redis != nil {
		errs = append(errs, app.redis.Close())
		app.redis = nil
	}
	if err := errors.Join(errs...); err != nil {
		app.logger.Error(context.Background(), "error closing resources", "error", err)
	}
}
