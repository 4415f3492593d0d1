package handler

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/rxtech-lab/factory-launchpad/internal/api"
	"github.com/rxtech-lab/factory-launchpad/internal/config"
	"github.com/rxtech-lab/factory-launchpad/internal/logger"
	"github.com/rxtech-lab/factory-launchpad/internal/mcp"
	"github.com/rxtech-lab/factory-launchpad/internal/utils"
	"github.com/rxtech-lab/factory-launchpad/internal/workflow"
)

var (
	apiServer *api.APIServer
	initOnce  sync.Once
	initErr   error
)

// Handler is the main Vercel function handler
func Handler(w http.ResponseWriter, r *http.Request) {
	initOnce.Do(func() {
		initErr = initializeAPIServer(context.Background())
	})
	if initErr != nil {
		log.Printf("Failed to initialize API server: %v", initErr)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	adaptor.FiberApp(apiServer.GetFiberApp())(w, r)
}

// initializeAPIServer connects to the chain once per function instance.
// The connection lives as long as the instance does.
func initializeAPIServer(ctx context.Context) error {
	cfg, err := config.Load(config.LoadOptions{})
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	zlog := logger.New(cfg.Log.Level, cfg.Log.Format)

	env, err := workflow.Setup(ctx, cfg, zlog)
	if err != nil {
		return err
	}
	launchpad := env.Launcher()

	opts := api.ServerOptions{
		Audience:   cfg.Server.Audience,
		Logger:     zlog,
		MCPHandler: mcp.NewMCPServer(launchpad, "vercel").StreamableHTTPHandler("/mcp"),
	}
	if cfg.Server.JWTSecret != "" {
		authenticator, err := utils.NewSimpleJwtAuthenticator(cfg.Server.JWTSecret)
		if err != nil {
			return err
		}
		opts.Authenticator = authenticator
	}
	apiServer = api.NewAPIServer(launchpad, opts)

	apiServer.GetFiberApp().Get("/", func(c *fiber.Ctx) error {
		return c.JSON(map[string]interface{}{
			"message": "Factory Launchpad API",
			"status":  "running",
			"factory": env.Factory.Address().Hex(),
		})
	})

	return nil
}
