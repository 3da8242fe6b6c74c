package rest

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/version"
)

// Service abstracts the engine operations the HTTP layer depends on.
type Service interface {
	State() *domain.State
	SetAlarm(ctx context.Context, value string) (*domain.State, error)
	StopAlarm(ctx context.Context) *domain.State
	SnoozeAlarm(ctx context.Context) *domain.State
	ToggleHourFormat(ctx context.Context) *domain.State
	SetTimeZone(ctx context.Context, zone string) (*domain.State, error)
}

// shutdownTimeout bounds graceful shutdown of in-flight requests.
const shutdownTimeout = 5 * time.Second

//go:embed static/index.html
var indexHTML []byte

// Server is the HTTP face of the clock.
type Server struct {
	// service provides the clock operations.
	service Service
	// hub pushes events over websocket.
	hub *Hub
	// gatherer backs /metrics, nil disables it.
	gatherer prometheus.Gatherer
	// allowedOrigins enables CORS for these origins.
	allowedOrigins []string
	// router dispatches requests.
	router *gin.Engine
}

// Option configures the server.
type Option func(*Server)

// WithAllowedOrigins allows cross-origin pages to use the API.
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) {
		s.allowedOrigins = origins
	}
}

// WithMetrics serves the gatherer on /metrics.
func WithMetrics(gatherer prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = gatherer
	}
}

// NewServer builds the router. Subscribe Hub() to the engine to feed /ws.
func NewServer(service Service, opts ...Option) *Server {
	s := &Server{
		service: service,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.hub = NewHub(service, s.allowedOrigins)
	s.router = s.newRouter()

	return s
}

// Hub returns the websocket hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Serve listens on address until ctx is canceled.
func (s *Server) Serve(ctx context.Context, address string) error {
	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", address)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", address, err)
	}

	return s.ServeListener(ctx, lis)
}

// ServeListener serves on lis until ctx is canceled.
func (s *Server) ServeListener(ctx context.Context, lis net.Listener) error {
	server := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: shutdownTimeout,
		BaseContext: func(net.Listener) context.Context {
			return context.WithoutCancel(ctx)
		},
	}

	logger.InfoKV(ctx, "HTTP server listening", "address", lis.Addr().String())

	done := make(chan struct{})

	go func() {
		defer close(done)

		<-ctx.Done()
		logger.Info(ctx, "Shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		// Hijacked websocket connections are not tracked by Shutdown.
		s.hub.Close()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.WarnKV(ctx, "HTTP shutdown incomplete", "error", err)
		}
	}()

	if err := server.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve HTTP: %w", err)
	}

	<-done
	logger.Info(ctx, "HTTP server stopped")

	return nil
}

// newRouter wires middleware and routes.
func (s *Server) newRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	if len(s.allowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:  s.allowedOrigins,
			AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders:  []string{"Origin", "Content-Type"},
			ExposeHeaders: []string{"Content-Length"},
			MaxAge:        time.Hour,
		}))
	}

	router.GET("/", s.index)
	router.GET("/health", s.health)
	router.GET("/ws", s.hub.HandleWebSocket)

	if s.gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))
	}

	api := router.Group("/api")
	{
		api.GET("/state", s.getState)
		api.POST("/alarm", s.setAlarm)
		api.DELETE("/alarm", s.stopAlarm)
		api.POST("/alarm/snooze", s.snoozeAlarm)
		api.POST("/format/toggle", s.toggleHourFormat)
		api.PUT("/timezone", s.setTimeZone)
	}

	return router
}

// requestLogger logs every request through the context logger.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		logger.DebugKV(c.Request.Context(), "HTTP request",
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start))
	}
}

func (s *Server) index(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": version.Short(),
	})
}

func (s *Server) getState(c *gin.Context) {
	c.JSON(http.StatusOK, newStateResponse(s.service.State()))
}

func (s *Server) setAlarm(c *gin.Context) {
	var request alarmRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		badRequest(c, err)
		return
	}

	state, err := s.service.SetAlarm(c.Request.Context(), request.Time)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newStateResponse(state))
}

func (s *Server) stopAlarm(c *gin.Context) {
	c.JSON(http.StatusOK, newStateResponse(s.service.StopAlarm(c.Request.Context())))
}

func (s *Server) snoozeAlarm(c *gin.Context) {
	c.JSON(http.StatusOK, newStateResponse(s.service.SnoozeAlarm(c.Request.Context())))
}

func (s *Server) toggleHourFormat(c *gin.Context) {
	c.JSON(http.StatusOK, newStateResponse(s.service.ToggleHourFormat(c.Request.Context())))
}

func (s *Server) setTimeZone(c *gin.Context) {
	var request timeZoneRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		badRequest(c, err)
		return
	}

	state, err := s.service.SetTimeZone(c.Request.Context(), request.TimeZone)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newStateResponse(state))
}

// respondError maps domain errors to status codes.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument), errors.Is(err, domain.ErrConfiguration):
		badRequest(c, err)
	default:
		logger.ErrorKV(c.Request.Context(), "Request failed", "error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
}

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
}
