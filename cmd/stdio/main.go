package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload" // Automatically load .env file if present
	"github.com/rxtech-lab/factory-launchpad/internal/config"
	"github.com/rxtech-lab/factory-launchpad/internal/logger"
	"github.com/rxtech-lab/factory-launchpad/internal/mcp"
	"github.com/rxtech-lab/factory-launchpad/internal/workflow"
	"go.uber.org/zap"
)

// Build information (set via ldflags)
var (
	Version    = "dev"
	CommitHash = "unknown"
	BuildTime  = "unknown"
)

// newStdioServer wires an MCP server over launchpad.
func newStdioServer(launchpad workflow.Launchpad) *mcp.MCPServer {
	return mcp.NewMCPServer(launchpad, Version)
}

func main() {
	// Command line flags
	var showVersion = flag.Bool("version", false, "Show version information")
	var showHelp = flag.Bool("help", false, "Show help information")
	var enableLog = flag.Bool("log", false, "Enable logging output")
	var envFile = flag.String("env-file", "", "Additional env file to read")
	flag.Parse()

	// stdout carries the MCP protocol, so informational output goes to stderr
	if *showVersion {
		fmt.Fprintf(os.Stderr, "Factory Launchpad MCP Server\nVersion: %s\nCommit: %s\nBuilt: %s\n", Version, CommitHash, BuildTime)
		return
	}

	if *showHelp {
		fmt.Fprintf(os.Stderr, "Factory Launchpad MCP Server\n\n")
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		fmt.Fprintf(os.Stderr, "  --version    Show version information\n")
		fmt.Fprintf(os.Stderr, "  --help       Show this help message\n")
		fmt.Fprintf(os.Stderr, "  --log        Enable logging output\n")
		fmt.Fprintf(os.Stderr, "  --env-file   Additional env file to read\n\n")
		fmt.Fprintf(os.Stderr, "Description:\n")
		fmt.Fprintf(os.Stderr, "  Builds, resolves and verifies factory entities over MCP stdio.\n")
		fmt.Fprintf(os.Stderr, "  Requires PRIVATE_KEY and FACTORY_ADDRESS.\n")
		return
	}

	cfg, err := config.Load(config.LoadOptions{EnvFile: *envFile})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.Enabled(*enableLog, cfg.Log.Level, cfg.Log.Format)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env, err := workflow.Setup(ctx, cfg, log)
	if err != nil {
		log.Error("failed to set up workflow", zap.Error(err))
		fmt.Fprintf(os.Stderr, "failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer env.Close()

	mcpServer := newStdioServer(env.Launcher())

	errCh := make(chan error, 1)
	go func() {
		errCh <- mcpServer.StartStdioServer()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-errCh:
		if err != nil {
			log.Error("mcp server stopped", zap.Error(err))
		}
	}
}
