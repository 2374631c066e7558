package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/zahlenpirat/internal/app"
	"github.com/felixgeelhaar/zahlenpirat/internal/config"
	mcpserver "github.com/felixgeelhaar/zahlenpirat/internal/mcp"
)

var mcpHTTPAddr string

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the Zahlenpirat tools over MCP (stdio by default)",
	RunE:  runMCP,
}

func init() {
	mcpCmd.Flags().StringVar(&mcpHTTPAddr, "http", "", "Serve MCP over HTTP on this address instead of stdio, e.g. :8765")
}

func runMCP(cmd *cobra.Command, args []string) error {
	dir, err := config.EnsureDir()
	if err != nil {
		return err
	}
	cfg, err := config.LoadFrom(dir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// stdout carries the protocol; logs go to a file
	logFile, err := os.OpenFile(filepath.Join(dir, "logs", "mcp.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()
	logger := slog.New(slog.NewJSONHandler(logFile, nil))

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	services, err := app.Build(ctx, cfg, dir, logger)
	if err != nil {
		return err
	}
	defer services.Close()

	srv := mcpserver.NewServer(mcpserver.Config{
		Engine:  services.Engine,
		History: services.History,
		Tasks:   services.Tasks,
		Version: Version,
	})
	if mcpHTTPAddr != "" {
		logger.Info("serving MCP over HTTP", "addr", mcpHTTPAddr)
		return srv.ServeHTTP(ctx, mcpHTTPAddr)
	}
	return srv.ServeStdio(ctx)
}

