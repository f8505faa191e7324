// Package fakeapi is an in-memory implementation of the snippet service's
// REST contract. It backs the client tests and the dev-server command so
// the client can be exercised without the real backend.
package fakeapi

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/existflow/snipvault/internal/logger"
	"github.com/existflow/snipvault/internal/model"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// user is a stored account
type user struct {
	model.UserInfo
	PasswordHash []byte
}

// snippet is a stored snippet with its owner
type snippet struct {
	model.Snippet
	Owner string
}

// Server is the fake backend
type Server struct {
	echo   *echo.Echo
	tokens *tokenIssuer
	log    *logger.Logger

	mu         sync.Mutex
	users      map[string]*user // by username
	snippets   []*snippet       // creation order
	tags       []model.Tag      // creation order
	nextUserID int64
	nextSnipID int64
	nextTagID  int64
	now        func() time.Time
}

// New creates a fake backend signing tokens with secret
func New(secret string, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	s := &Server{
		tokens: newTokenIssuer(secret),
		log:    log,
		users:  make(map[string]*user),
		now:    time.Now,
	}
	s.setupEcho()
	return s
}

func (s *Server) setupEcho() {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.handleError

	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			req := c.Request()
			s.log.Info("HTTP Response",
				logger.F("method", req.Method),
				logger.F("uri", req.RequestURI),
				logger.F("status", c.Response().Status),
				logger.F("requestID", req.Header.Get(echo.HeaderXRequestID)),
				logger.F("duration", time.Since(start).String()))
			return err
		}
	})
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"message": "Code Snippet Manager API",
			"version": "1.0.0",
		})
	})

	api := e.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/register", s.handleRegister)
	auth.POST("/login", s.handleLogin)
	auth.GET("/me", s.handleMe, s.requireUser)

	snippets := api.Group("/snippets")
	snippets.GET("/public", s.handleListPublic)
	snippets.POST("", s.handleCreate, s.requireUser)
	snippets.GET("", s.handleList, s.requireUser)
	snippets.GET("/:id", s.handleGet, s.requireUser)
	snippets.PUT("/:id", s.handleUpdate, s.requireUser)
	snippets.DELETE("/:id", s.handleDelete, s.requireUser)

	api.GET("/tags", s.handleTags)

	s.echo = e
}

// Handler returns the HTTP handler, for httptest servers
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens on addr until Shutdown
func (s *Server) Start(addr string) error {
	err := s.echo.Start(addr)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops a server started with Start
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// detail is the error envelope of the real service
type detail struct {
	Detail string `json:"detail"`
}

func fail(status int, msg string) error {
	return echo.NewHTTPError(status, msg)
}

// handleError renders every error as {"detail": "..."}
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	msg := "Internal Server Error"

	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		} else {
			msg = http.StatusText(status)
		}
	} else {
		s.log.Error("Unhandled error", logger.F("error", err))
	}

	if status == http.StatusUnauthorized {
		c.Response().Header().Set("WWW-Authenticate", "Bearer")
	}
	_ = c.JSON(status, detail{Detail: msg})
}
