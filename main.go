package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ragindex/mcp-server/internal/config"
	"github.com/ragindex/mcp-server/internal/logger"
	"github.com/ragindex/mcp-server/tools"
)

const (
	version     = "0.1.0"
	serverName  = "ragindex"
	description = "MCP server for chunking, indexing and answering questions over local text documents"
)

func main() {
	// Handle version flag
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		fmt.Printf("%s version %s\n", serverName, version)
		os.Exit(0)
	}

	// Config path comes from RAGINDEX_CONFIG, else ./ragindex.toml if present
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", serverName, err)
		os.Exit(1)
	}

	// Logging goes to stderr (MCP uses stdout for protocol)
	logger.Setup(cfg.Log.Level, cfg.Log.JSON)
	log.Info("Starting", "server", serverName, "version", version, "about", description)
	log.Info("Chunking defaults", "config", cfg.Chunking)

	if err := tools.Configure(cfg); err != nil {
		log.Fatal("Failed to configure tools", "err", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Metrics.Addr != "" {
		metricsServer := startMetricsServer(cfg.Metrics.Addr)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			metricsServer.Shutdown(shutdownCtx)
		}()
	}

	server := createMCPServer()
	if err := registerTools(server); err != nil {
		log.Fatal("Failed to register tools", "err", err)
	}

	log.Info("Server ready and waiting for connections")

	// Set up cleanup on shutdown
	defer func() {
		if err := tools.CloseSearch(); err != nil {
			log.Error("Error closing search", "err", err)
		}
	}()

	// Run server with stdio transport
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("Server error", "err", err)
	}
}

// createMCPServer initializes the MCP server
func createMCPServer() *mcp.Server {
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    serverName,
			Version: version,
		},
		nil, // Default options
	)

	log.Debug("Server initialized", "name", serverName, "version", version)
	return server
}

// registerTools registers all MCP tools
func registerTools(server *mcp.Server) error {
	if err := tools.RegisterChunkTools(server); err != nil {
		return fmt.Errorf("failed to register chunk tools: %w", err)
	}
	if err := tools.RegisterValidationTools(server); err != nil {
		return fmt.Errorf("failed to register validation tools: %w", err)
	}
	if err := tools.RegisterSearchTools(server); err != nil {
		return fmt.Errorf("failed to register search tools: %w", err)
	}
	if err := tools.RegisterAnswerTools(server); err != nil {
		return fmt.Errorf("failed to register answer tools: %w", err)
	}

	log.Info("All tools registered", "tools", 6)
	return nil
}

// startMetricsServer serves Prometheus metrics on addr in the background
func startMetricsServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("Serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Metrics server failed", "err", err)
		}
	}()
	return srv
}
