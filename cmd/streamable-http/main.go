package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload" // Automatically load .env file if present
	"github.com/rxtech-lab/factory-launchpad/internal/api"
	"github.com/rxtech-lab/factory-launchpad/internal/config"
	"github.com/rxtech-lab/factory-launchpad/internal/logger"
	"github.com/rxtech-lab/factory-launchpad/internal/mcp"
	"github.com/rxtech-lab/factory-launchpad/internal/utils"
	"github.com/rxtech-lab/factory-launchpad/internal/workflow"
	"go.uber.org/zap"
)

// Build information (set via ldflags)
var (
	Version    = "dev"
	CommitHash = "unknown"
	BuildTime  = "unknown"
)

// configureAndStartServer mounts the MCP endpoint and the REST API over
// launchpad and starts listening. Port 0 picks a free port.
func configureAndStartServer(launchpad workflow.Launchpad, server config.ServerConfig, log *zap.Logger) (*api.APIServer, int, error) {
	opts := api.ServerOptions{
		Audience: server.Audience,
		Logger:   log,
	}

	// Without a secret the authenticated routes stay closed.
	if server.JWTSecret != "" {
		authenticator, err := utils.NewSimpleJwtAuthenticator(server.JWTSecret)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to create authenticator: %w", err)
		}
		opts.Authenticator = authenticator
	} else {
		log.Warn("API_JWT_SECRET is not set; authenticated routes will reject every request")
	}

	mcpServer := mcp.NewMCPServer(launchpad, Version)
	opts.MCPHandler = mcpServer.StreamableHTTPHandler("/mcp")

	apiServer := api.NewAPIServer(launchpad, opts)
	port := server.Port
	startedPort, err := apiServer.Start(&port)
	if err != nil {
		return nil, 0, err
	}
	return apiServer, startedPort, nil
}

func main() {
	cfg, err := config.Load(config.LoadOptions{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env, err := workflow.Setup(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to set up workflow", zap.Error(err))
	}
	defer env.Close()

	apiServer, port, err := configureAndStartServer(env.Launcher(), cfg.Server, log)
	if err != nil {
		log.Fatal("failed to start API server", zap.Error(err))
	}
	log.Info("API server started",
		zap.Int("port", port),
		zap.String("version", Version),
		zap.String("commit", CommitHash),
		zap.String("built", BuildTime),
	)

	<-ctx.Done()
	log.Info("shutting down server")

	if err := apiServer.Shutdown(); err != nil {
		log.Error("error shutting down API server", zap.Error(err))
	}
	log.Info("server shut down successfully")
}
