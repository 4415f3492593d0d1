package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload" // Automatically load .env file if present
	"github.com/rxtech-lab/factory-launchpad/internal/config"
	"github.com/rxtech-lab/factory-launchpad/internal/logger"
	"github.com/rxtech-lab/factory-launchpad/internal/models"
	"github.com/rxtech-lab/factory-launchpad/internal/workflow"
	"go.uber.org/zap"
)

// Build information (set via ldflags)
var (
	Version    = "dev"
	CommitHash = "unknown"
	BuildTime  = "unknown"
)

const (
	exitOK      = 0
	exitFailed  = 1
	exitPartial = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("deploy", flag.ContinueOnError)
	flags.SetOutput(stderr)
	showVersion := flags.Bool("version", false, "Show version information")
	enableLog := flags.Bool("log", false, "Enable logging output")
	requestFile := flags.String("request", "", "JSON file with the build request (overrides REQUEST_FILE)")
	envFile := flags.String("env-file", "", "Additional env file to read")
	skipBuild := flags.Bool("skip-build", false, "Only resolve the address of an already built deployment id")
	verify := flags.Bool("verify", false, "Submit the entity for verification (overrides VERIFY)")
	if err := flags.Parse(args); err != nil {
		return exitFailed
	}

	if *showVersion {
		fmt.Fprintf(stdout, "Factory Launchpad Deploy\nVersion: %s\nCommit: %s\nBuilt: %s\n", Version, CommitHash, BuildTime)
		return exitOK
	}

	cfg, err := config.Load(config.LoadOptions{EnvFile: *envFile})
	if err != nil {
		fmt.Fprintf(stderr, "failed to load configuration: %v\n", err)
		return exitFailed
	}
	if *requestFile != "" {
		cfg.RequestFile = *requestFile
	}
	if *verify {
		cfg.Verify.Enabled = true
	}

	log := logger.Enabled(*enableLog, cfg.Log.Level, cfg.Log.Format)
	defer func() { _ = log.Sync() }()

	req, err := cfg.DeploymentRequest()
	if err != nil {
		fmt.Fprintf(stderr, "invalid build request: %v\n", err)
		return exitFailed
	}

	env, err := workflow.Setup(ctx, cfg, log)
	if err != nil {
		fmt.Fprintf(stderr, "failed to connect: %v\n", err)
		return exitFailed
	}
	defer env.Close()

	log.Info("starting run",
		zap.String("factory", env.Factory.Address().Hex()),
		zap.Stringer("deployment_id", req.DeploymentID),
		zap.Bool("skip_build", *skipBuild),
	)
	result := env.Runner.Run(ctx, env.RunOptions(req, *skipBuild))

	encoder := json.NewEncoder(stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result); err != nil {
		fmt.Fprintf(stderr, "failed to encode result: %v\n", err)
	}
	return exitCode(result)
}

func exitCode(result models.DeploymentResult) int {
	switch {
	case result.Succeeded():
		return exitOK
	case result.Partial:
		return exitPartial
	default:
		return exitFailed
	}
}
