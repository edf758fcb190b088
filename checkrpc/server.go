// Package checkrpc serves bundle verification over a JSON HTTP API.
package checkrpc

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/lightningnetwork/towercheck/bundle"
	"github.com/lightningnetwork/towercheck/txsource"
	"github.com/lightningnetwork/towercheck/verifier"
)

const (
	// DefaultMaxBatchSize is the default maximum number of bundles of a
	// batch request.
	DefaultMaxBatchSize = 100

	// DefaultPingTimeout bounds the backend check of /healthz.
	DefaultPingTimeout = 5 * time.Second
)

// Config holds the dependencies of the HTTP server.
type Config struct {
	// Verifier checks the submitted bundles.
	Verifier *verifier.Verifier

	// Pinger, if set, is queried by /healthz.
	Pinger txsource.Pinger

	// Metrics, if set, is served under /metrics.
	Metrics http.Handler

	// MaxBatchSize limits the number of bundles of a batch request.
	MaxBatchSize int

	// PingTimeout bounds the backend check of /healthz.
	PingTimeout time.Duration

	// AllowOrigins is the list of origins allowed to post bundles from a
	// browser. Defaults to any origin.
	AllowOrigins []string
}

// CheckResponse is the answer to a check request.
type CheckResponse struct {
	// Success is true if the tower honoured the appointment.
	Success bool `json:"success"`

	// Error is the name of the failure, empty on success.
	Error string `json:"error,omitempty"`

	// Outcome is the name of the verdict.
	Outcome verifier.Outcome `json:"outcome"`

	// Detail describes the failure.
	Detail string `json:"detail,omitempty"`

	// Chain reports each link of the receipt chain.
	Chain *verifier.ChainReport `json:"chain,omitempty"`
}

// NewCheckResponse converts a verification result.
func NewCheckResponse(res *verifier.Result) *CheckResponse {
	resp := &CheckResponse{
		Success: res.Verified(),
		Outcome: res.Outcome,
	}
	if !resp.Success {
		chain := res.Chain
		resp.Error = res.Outcome.String()
		resp.Detail = res.Err.Error()
		resp.Chain = &chain
	}

	return resp
}

// Server is the HTTP front-end of the verifier.
type Server struct {
	cfg Config

	echo *echo.Echo
}

// New creates a server with all routes registered.
func New(cfg *Config) (*Server, error) {
	if cfg.Verifier == nil {
		return nil, errors.New("http server requires a verifier")
	}

	s := &Server{cfg: *cfg}
	if s.cfg.MaxBatchSize <= 0 {
		s.cfg.MaxBatchSize = DefaultMaxBatchSize
	}
	if s.cfg.PingTimeout <= 0 {
		s.cfg.PingTimeout = DefaultPingTimeout
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.RequestLoggerWithConfig(
		middleware.RequestLoggerConfig{
			LogMethod:  true,
			LogURI:     true,
			LogStatus:  true,
			LogLatency: true,
			LogValuesFunc: func(_ echo.Context,
				v middleware.RequestLoggerValues) error {

				log.Debugf("%s %s -> %d (%v)", v.Method, v.URI,
					v.Status, v.Latency)

				return nil
			},
		},
	))
	e.Use(middleware.Recover())

	corsCfg := middleware.DefaultCORSConfig
	if len(s.cfg.AllowOrigins) > 0 {
		corsCfg.AllowOrigins = s.cfg.AllowOrigins
	}
	e.Use(middleware.CORSWithConfig(corsCfg))

	s.RegisterRoutes(e)
	s.echo = e

	return s, nil
}

// RegisterRoutes adds the server's routes to e.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	e.POST("/check", s.handleCheck)
	e.POST("/check/batch", s.handleCheckBatch)
	e.GET("/healthz", s.handleHealth)

	if s.cfg.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(s.cfg.Metrics))
	}
}

// ServeHTTP lets the server be used as a plain http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Start listens on addr in the background. Errors other than a regular
// shutdown are passed to onErr.
func (s *Server) Start(addr string, onErr func(error)) {
	log.Infof("HTTP server listening on %s", addr)

	go func() {
		err := s.echo.Start(addr)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("HTTP server failed: %v", err)
			if onErr != nil {
				onErr(err)
			}
		}
	}()
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	log.Infof("HTTP server shutting down")

	return s.echo.Shutdown(ctx)
}

// badRequest answers with a failed check caused by an unusable request.
func badRequest(c echo.Context, err error) error {
	return c.JSON(http.StatusBadRequest, &CheckResponse{
		Error:   verifier.OutcomeInvalidBundle.String(),
		Outcome: verifier.OutcomeInvalidBundle,
		Detail:  err.Error(),
	})
}

func (s *Server) handleCheck(c echo.Context) error {
	var b bundle.Bundle
	if err := (&echo.DefaultBinder{}).BindBody(c, &b); err != nil {
		return badRequest(c, err)
	}

	res := s.cfg.Verifier.Verify(c.Request().Context(), &b)

	return c.JSON(http.StatusOK, NewCheckResponse(res))
}

func (s *Server) handleCheckBatch(c echo.Context) error {
	var bundles []*bundle.Bundle
	if err := (&echo.DefaultBinder{}).BindBody(c, &bundles); err != nil {
		return badRequest(c, err)
	}

	if len(bundles) > s.cfg.MaxBatchSize {
		return badRequest(c, fmt.Errorf("batch of %d bundles exceeds "+
			"limit of %d", len(bundles), s.cfg.MaxBatchSize))
	}

	results := s.cfg.Verifier.VerifyBatch(c.Request().Context(), bundles)

	resps := make([]*CheckResponse, 0, len(results))
	for _, res := range results {
		resps = append(resps, NewCheckResponse(res))
	}

	return c.JSON(http.StatusOK, resps)
}

func (s *Server) handleHealth(c echo.Context) error {
	if s.cfg.Pinger == nil {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	}

	ctx, cancel := context.WithTimeout(
		c.Request().Context(), s.cfg.PingTimeout,
	)
	defer cancel()

	if err := s.cfg.Pinger.Ping(ctx); err != nil {
		log.Warnf("Chain backend health check failed: %v", err)

		return c.JSON(http.StatusServiceUnavailable, echo.Map{
			"status": "unavailable",
			"error":  err.Error(),
		})
	}

	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
