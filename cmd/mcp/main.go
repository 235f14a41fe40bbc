package main

import (
	"context"
	"os/signal"
	"syscall"

	"slotbook/cmd/internal/app"
	"slotbook/cmd/internal/config"
	"slotbook/cmd/internal/logger"
	"slotbook/cmd/internal/mcptools"

	"github.com/labstack/gommon/log"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

const serverVersion = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load configuration: ", err)
	}

	// Logs go to stderr; stdout carries the MCP protocol.
	zlog, err := logger.New(cfg.IsProduction())
	if err != nil {
		log.Fatal("failed to initialize logger: ", err)
	}
	defer func() { _ = zlog.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, zlog)
	if err != nil {
		zlog.Fatal("Failed to initialize application", zap.Error(err))
	}
	defer application.Close()

	s := server.NewMCPServer("slotbook", serverVersion, server.WithToolCapabilities(true))
	mcptools.RegisterTools(s, &mcptools.ToolDeps{
		Appointments: application.Appointments,
		Suggestions:  application.Suggestions,
		Logger:       zlog.Named("mcp"),
	})

	zlog.Info("Serving MCP over stdio")
	if err := server.ServeStdio(s); err != nil {
		zlog.Error("MCP server stopped with error", zap.Error(err))
	}
}
