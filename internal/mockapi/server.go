// Package mockapi serves a fixture copy of the catalog API. It backs the
// catalog client tests and the catalog-mock development server.
package mockapi

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/existflow/animeshelf/internal/logger"
)

// Options configures a Server
type Options struct {
	// Latency delays every response, to make debounce and stale-response
	// handling visible during development
	Latency time.Duration
	Logger  *logger.Logger
}

// Server is the fixture catalog
type Server struct {
	echo     *echo.Echo
	store    *store
	latency  time.Duration
	log      *logger.Logger
	requests atomic.Int64
}

// New creates a server with the built-in fixtures
func New(opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = logger.Default()
	}
	s := &Server{
		store:   newStore(defaultFixtures()),
		latency: opts.Latency,
		log:     log.WithFields(logger.F("component", "mockapi")),
	}
	s.setupEcho()
	return s
}

func (s *Server) setupEcho() {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.handleError

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(s.logRequests)
	e.Use(middleware.CORS())
	if s.latency > 0 {
		e.Use(s.delay)
	}

	e.GET("/health", s.handleHealth)

	animes := e.Group("/animes")
	animes.GET("/autocomplete", s.handleAutocomplete)
	animes.GET("/search", s.handleSearch)
	animes.GET("/top", s.handleTop)
	animes.GET("/popular", s.handlePopular)
	animes.GET("/genres", s.handleGenres)
	animes.GET("/genre/:name", s.handleGenre)

	e.GET("/anime/:id", s.handleAnime)
	e.GET("/character/:id", s.handleCharacter)
	e.GET("/voice-actor/:id", s.handleVoiceActor)

	e.POST("/register", s.handleRegister)
	e.POST("/login", s.handleLogin)
	e.POST("/rate-anime", s.handleRate)
	e.GET("/recommendations/:user_id", s.handleRecommendations)
	e.GET("/my-animes/:user_id", s.handleMyAnimes)

	s.echo = e
}

// logRequests logs one line per request with its status and duration
func (s *Server) logRequests(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		s.requests.Add(1)

		err := next(c)
		if err != nil {
			c.Error(err)
		}

		req := c.Request()
		res := c.Response()
		s.log.Info("HTTP request",
			logger.F("method", req.Method),
			logger.F("uri", req.RequestURI),
			logger.F("status", res.Status),
			logger.F("size", res.Size),
			logger.F("request_id", res.Header().Get(echo.HeaderXRequestID)),
			logger.F("duration", time.Since(start).String()))
		return nil
	}
}

func (s *Server) delay(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		t := time.NewTimer(s.latency)
		defer t.Stop()
		select {
		case <-t.C:
			return next(c)
		case <-c.Request().Context().Done():
			return c.Request().Context().Err()
		}
	}
}

// handleError answers every failure with the catalog's {"detail": ...} body
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	status := http.StatusInternalServerError
	detail := "internal error"

	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		if msg, ok := he.Message.(string); ok {
			detail = msg
		} else {
			detail = http.StatusText(status)
		}
	} else if errors.Is(err, context.Canceled) {
		status = 499
		detail = "client closed request"
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}
	_ = c.JSON(status, map[string]string{"detail": detail})
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Requests returns how many requests have been served
func (s *Server) Requests() int64 {
	return s.requests.Load()
}

// Start listens on addr until Shutdown
func (s *Server) Start(addr string) error {
	s.log.Info("Mock catalog listening", logger.F("addr", addr))
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
