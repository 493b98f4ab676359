package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/formworks/ssa-form-filler/internal/config"
	"github.com/formworks/ssa-form-filler/internal/mcp"
	"github.com/formworks/ssa-form-filler/internal/pdf"
	"github.com/formworks/ssa-form-filler/internal/server"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// setupLogging configures logging based on the service mode
func setupLogging(cfg *config.Config) {
	if cfg.IsStdioMode() {
		// In stdio mode, redirect log output to stderr to avoid interfering with MCP protocol
		log.SetOutput(os.Stderr)
		// Reduce log verbosity in stdio mode unless debug is enabled
		if !cfg.IsDebug() {
			log.SetOutput(os.NewFile(0, os.DevNull))
		}
	} else {
		// In server mode, use normal stdout logging with more detail
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}
}

// newFormService builds the form-filling service from the configuration
func newFormService(cfg *config.Config) (*pdf.Service, error) {
	return pdf.NewService(pdf.ServiceConfig{
		ServiceName:       cfg.ServiceName,
		Version:           cfg.Version,
		TemplateDirectory: cfg.TemplateDirectory,
		DefaultTemplate:   cfg.DefaultTemplate,
		MaxTemplateSize:   cfg.MaxTemplateSize,
		Fitter:            pdf.NewFitter(cfg.MaxFontSize, cfg.MinFontSize, cfg.FontStep),
		Defaults:          pdf.DefaultLineLimits(),
	})
}

// runServerMode runs the HTTP API with signal handling
func runServerMode(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, formService *pdf.Service) {
	httpServer := server.NewServer(&server.Config{
		Host:          cfg.Host,
		Port:          cfg.Port,
		EnableLogging: true,
	}, formService)

	// Set up signal handling for graceful shutdown
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- httpServer.Run(ctx)
	}()

	select {
	case sig := <-signalCh:
		log.Printf("Received signal: %s", sig)
		log.Println("Initiating graceful shutdown...")
		cancel()

		if err := <-serverErrCh; err != nil {
			log.Printf("Server shutdown with error: %v", err)
			os.Exit(1)
		}

	case err := <-serverErrCh:
		if err != nil {
			log.Printf("Server error: %v", err)
			os.Exit(1)
		}
	}

	log.Println("Server stopped successfully")
}

// runStdioMode serves the MCP tools over stdio
func runStdioMode(ctx context.Context, cfg *config.Config, formService *pdf.Service) {
	// In stdio mode, the parent process controls our lifecycle

	mcpServer, err := mcp.NewServer(cfg, formService)
	if err != nil {
		log.Fatalf("Failed to create MCP server: %v", err)
	}

	if err := mcpServer.Run(ctx); err != nil {
		// Only log to stderr in debug mode to avoid protocol interference
		if os.Getenv("DEBUG") != "" {
			log.Printf("Server error: %v", err)
		}
		os.Exit(1)
	}
}

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			printVersion()
			return
		}
	}

	// Load configuration from flags first
	cfg, err := config.LoadFromFlags()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set up logging based on mode
	setupLogging(cfg)

	// Set version if it was provided during build
	if version != "dev" {
		cfg.Version = version
	}

	if cfg.IsDebug() && cfg.IsServerMode() {
		log.Printf("Starting with configuration: %s", cfg.String())
	}

	formService, err := newFormService(cfg)
	if err != nil {
		log.Fatalf("Failed to create form service: %v", err)
	}

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle different modes
	if cfg.IsServerMode() {
		runServerMode(ctx, cancel, cfg, formService)
	} else {
		runStdioMode(ctx, cfg, formService)
	}
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("SSA Form Filler\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	fmt.Printf("Built with: %s\n", runtime.Version())
}
