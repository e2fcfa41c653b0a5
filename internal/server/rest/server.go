package rest

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/dailydiet/internal/logging"
	"github.com/dmitrijs2005/dailydiet/internal/server/metrics"
	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	address string
	handler http.Handler
	logger  logging.Logger
}

// Options carries the optional parts of the HTTP server.
type Options struct {
	Metrics     *metrics.Metrics
	Health      *Health
	CORSOrigins []string
}

func NewServer(address string, l logging.Logger, h *Handlers, opts Options) *Server {
	logger := l.With("module", "http_server")
	return &Server{
		address: address,
		handler: NewRouter(h, logger, opts),
		logger:  logger,
	}
}

// NewRouter builds the gin engine with every route and wraps it in CORS.
func NewRouter(h *Handlers, logger logging.Logger, opts Options) http.Handler {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(RequestID(), Logger(logger, opts.Metrics), Recovery(logger))

	health := opts.Health
	if health == nil {
		health = NewHealth(true)
	}
	r.GET("/healthz", livenessHandler)
	r.GET("/readyz", health.readinessHandler)
	if opts.Metrics != nil {
		r.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}

	authz := RequireAuth(h.sessions, logger)

	a := r.Group("/auth")
	a.POST("/register", h.register)
	a.POST("/login", h.login)
	a.POST("/refresh", h.refresh)
	a.POST("/logout", authz, h.logout)

	u := r.Group("/users", authz)
	u.GET("/me", h.me)
	u.DELETE("/me", h.deleteMe)

	m := r.Group("/meals", authz)
	m.POST("", h.createMeal)
	m.GET("", h.listMeals)
	m.GET("/metrics", h.mealMetrics)
	m.GET("/:id", h.getMeal)
	m.PUT("/:id", h.updateMeal)
	m.DELETE("/:id", h.deleteMeal)
	m.POST("/:id/photo", h.photoUploadURL)
	m.GET("/:id/photo", h.photoURL)

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "Retry-After"},
		MaxAge:         300,
	})
	return c.Handler(r)
}

// Run serves until ctx is canceled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	done := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		done <- srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return <-done
}
