package web

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/sagehealth/go-sage/internal/log"
	"github.com/sagehealth/go-sage/pkg/feature"
	"github.com/sagehealth/go-sage/pkg/observation"
	"github.com/sagehealth/go-sage/pkg/sageerr"
)

// Config configures the web surface.
type Config struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string

	Registry    *feature.Registry
	Coordinator *observation.Coordinator
	Baselines   BaselineService
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Addr == "" {
		return errors.New("web: listen address required")
	}
	if c.Registry == nil || c.Coordinator == nil || c.Baselines == nil {
		return errors.New("web: registry, coordinator, and baseline service required")
	}
	return nil
}

// Server is the HTTP/websocket surface over the pipeline.
type Server struct {
	cfg Config
	app *fiber.App
	hub *Hub
}

// stateEvent is one feature-state transition as sent to display clients.
type stateEvent struct {
	Feature feature.Type  `json:"feature"`
	State   feature.State `json:"state"`
}

// New creates the server and wires coordinator state transitions into the
// websocket hub.
func New(cfg Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Server{
		cfg: cfg,
		app: fiber.New(fiber.Config{DisableStartupMessage: true}),
		hub: NewHub(),
	}

	cfg.Coordinator.OnFeatureState(func(t feature.Type, state feature.State) {
		s.hub.BroadcastJSON(stateEvent{Feature: t, State: state})
	})

	s.routes()
	return s, nil
}

// routes registers all endpoints.
func (s *Server) routes() {
	s.app.Use(cors.New())

	s.app.Get("/healthz", s.handleHealth)
	s.app.Get("/api/features", s.handleFeatures)
	s.app.Get("/api/state", s.handleState)
	s.app.Get("/api/baseline/:userID", s.handleGetBaseline)
	s.app.Post("/api/baseline/:userID", s.handleEstablishBaseline)
	s.app.Post("/api/baseline/:userID/replace", s.handleReplaceBaseline)

	s.app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	s.app.Get("/ws/state", websocket.New(s.hub.Serve))
}

// Start listens until Shutdown is called.
func (s *Server) Start() error {
	log.Info("web surface listening", "addr", s.cfg.Addr)
	return s.app.Listen(s.cfg.Addr)
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// Hub returns the state broadcast hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// App returns the underlying fiber app, for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// errorBody is the JSON error envelope. Only the taxonomy's user message
// and stable code leave the process; technical detail stays in the logs.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// respondError maps a taxonomy error onto an HTTP response.
func respondError(c *fiber.Ctx, err *sageerr.Error) error {
	log.Warn("request failed", "path", c.Path(), "code", err.Code(), "detail", err.TechnicalDetail)
	return c.Status(httpStatus(err.Kind)).JSON(errorBody{
		Code:    err.Code(),
		Message: err.UserMessage,
	})
}

// httpStatus maps taxonomy kinds onto HTTP status codes.
func httpStatus(kind sageerr.Kind) int {
	switch kind {
	case sageerr.KindUserNotAuthenticated:
		return fiber.StatusUnauthorized
	case sageerr.KindInvalidData, sageerr.KindValueOutOfRange, sageerr.KindMissingField,
		sageerr.KindClinicalValidationFailed:
		return fiber.StatusBadRequest
	case sageerr.KindRecordingNotFound, sageerr.KindUserProfileNotFound:
		return fiber.StatusNotFound
	case sageerr.KindDuplicateFeature:
		return fiber.StatusConflict
	case sageerr.KindNetworkUnavailable, sageerr.KindRepositoryError:
		return fiber.StatusServiceUnavailable
	case sageerr.KindProcessingTimeout:
		return fiber.StatusGatewayTimeout
	default:
		return fiber.StatusInternalServerError
	}
}
