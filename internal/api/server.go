package api

import (
	"fmt"
	"net"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rxtech-lab/factory-launchpad/internal/api/middleware"
	"github.com/rxtech-lab/factory-launchpad/internal/utils"
	"github.com/rxtech-lab/factory-launchpad/internal/workflow"
	"go.uber.org/zap"
)

type ServerOptions struct {
	// Authenticator guards every route that signs or submits. Without one
	// those routes always answer 401.
	Authenticator *utils.JwtAuthenticator
	Audience      string
	// MCPHandler, when set, is mounted at /mcp behind the same auth.
	MCPHandler http.Handler
	Logger     *zap.Logger
}

type APIServer struct {
	app       *fiber.App
	launchpad workflow.Launchpad
	logger    *zap.Logger
	port      int
}

func NewAPIServer(launchpad workflow.Launchpad, opts ServerOptions) *APIServer {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	// Add middleware
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))

	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	server := &APIServer{
		app:       app,
		launchpad: launchpad,
		logger:    log,
	}
	server.setupRoutes(opts)
	return server
}

func (s *APIServer) setupRoutes(opts ServerOptions) {
	auth := middleware.AuthMiddleware(middleware.AuthConfig{
		Audience:         opts.Audience,
		JWTAuthenticator: opts.Authenticator,
	})

	// Health check
	s.app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(map[string]string{"status": "ok"})
	})
	s.app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := s.app.Group("/api")
	api.Get("/deployments/:id/address", s.handleGetAddress)
	api.Get("/verifications/:id", s.handleVerificationStatus)
	api.Post("/deployments", auth, s.handleBuild)
	api.Post("/verifications", auth, s.handleVerify)

	if opts.MCPHandler != nil {
		mcpHandler := adaptor.HTTPHandler(opts.MCPHandler)
		s.app.All("/mcp", auth, mcpHandler)
		s.app.All("/mcp/*", auth, mcpHandler)
	}
}

// Start listens on port, or on a random free port when port is nil.
func (s *APIServer) Start(port *int) (int, error) {
	addr := ":0"
	if port != nil {
		addr = fmt.Sprintf(":%d", *port)
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return 0, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.port = listener.Addr().(*net.TCPAddr).Port

	go func() {
		if err := s.app.Listener(listener); err != nil {
			s.logger.Error("api server stopped", zap.Error(err))
		}
	}()

	return s.port, nil
}

func (s *APIServer) Shutdown() error {
	return s.app.Shutdown()
}

func (s *APIServer) GetPort() int {
	return s.port
}

func (s *APIServer) GetFiberApp() *fiber.App {
	return s.app
}
