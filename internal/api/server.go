// Package api provides the HTTP REST API for Nimbus Core.
//
// It exposes device, device type, and scenario rule management, user
// administration, the status change audit trail, weather lookups, login,
// and the evaluation run trigger. Reads and manual status changes need
// any valid token; management writes are admin only.
//
// The server follows the same lifecycle pattern as other infrastructure
// components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nimbushome/nimbus-core/internal/auth"
	"github.com/nimbushome/nimbus-core/internal/device"
	"github.com/nimbushome/nimbus-core/internal/evaluation"
	"github.com/nimbushome/nimbus-core/internal/infrastructure/config"
	"github.com/nimbushome/nimbus-core/internal/infrastructure/logging"
	"github.com/nimbushome/nimbus-core/internal/scenario"
	"github.com/nimbushome/nimbus-core/internal/weather"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// WeatherSource fetches weather snapshots for the weather endpoint.
// Satisfied by *weather.Service and *weather.Client.
type WeatherSource interface {
	Snapshot(ctx context.Context, lat, lon float64, credential string) (*weather.Snapshot, error)
}

// EvaluationRunner triggers evaluation runs for the run endpoint.
// Satisfied by *evaluation.Orchestrator.
type EvaluationRunner interface {
	Run(ctx context.Context, credential string) (*evaluation.RunReport, error)
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config       config.APIConfig
	Security     config.SecurityConfig
	Logger       *logging.Logger
	Registry     *device.Registry
	Changer      *device.StatusChanger
	TypeRepo     device.TypeRepository
	ChangeRepo   device.StatusChangeRepository
	Rules        *scenario.Registry
	Weather      WeatherSource
	Orchestrator EvaluationRunner
	Users        auth.UserRepository
	Version      string
}

// Server is the HTTP API server for Nimbus Core.
//
// It manages the HTTP listener, routes, and middleware. The server is
// created with New() and started with Start().
type Server struct {
	cfg          config.APIConfig
	secCfg       config.SecurityConfig
	logger       *logging.Logger
	registry     *device.Registry
	changer      *device.StatusChanger
	typeRepo     device.TypeRepository
	changeRepo   device.StatusChangeRepository
	rules        *scenario.Registry
	weather      WeatherSource
	orchestrator EvaluationRunner
	users        auth.UserRepository
	version      string
	server       *http.Server
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
//
// Returns:
//   - *Server: Configured server ready to start
//   - error: If required dependencies are missing
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Registry == nil {
		return nil, fmt.Errorf("device registry is required")
	}
	if deps.Changer == nil {
		return nil, fmt.Errorf("status changer is required")
	}
	if deps.Users == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if deps.Security.JWT.Secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}

	return &Server{
		cfg:          deps.Config,
		secCfg:       deps.Security,
		logger:       deps.Logger,
		registry:     deps.Registry,
		changer:      deps.Changer,
		typeRepo:     deps.TypeRepo,
		changeRepo:   deps.ChangeRepo,
		rules:        deps.Rules,
		weather:      deps.Weather,
		orchestrator: deps.Orchestrator,
		users:        deps.Users,
		version:      deps.Version,
	}, nil
}

// Start begins listening for HTTP connections.
//
// It sets up the router and launches the HTTP listener in a background
// goroutine. The server can be stopped with Close().
//
// Returns:
//   - error: If the server fails to start (port in use, etc.)
func (s *Server) Start(_ context.Context) error {
	router := s.buildRouter()

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           router,
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		var err error
		if s.cfg.TLS.Enabled {
			s.logger.Info("API server starting with TLS",
				"address", s.server.Addr,
				"cert", s.cfg.TLS.CertFile,
			)
			err = s.server.ListenAndServeTLS(s.cfg.TLS.CertFile, s.cfg.TLS.KeyFile)
		} else {
			s.logger.Info("API server starting", "address", s.server.Addr)
			err = s.server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running and responsive.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}
	return nil
}
