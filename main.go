package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"catalog/internal/app"
	"catalog/internal/config"
	"catalog/internal/logger"
)

func main() {
	// --- Configuration ---
	application, err := newApp(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "catalog: %v\n", err)
		os.Exit(1)
	}

	// --- Audit consumer ---
	if err := application.StartAuditConsumer(); err != nil {
		logger.Error("failed to start audit consumer", logger.Fields{"error": err.Error()})
	}

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := application.Listen(); err != nil {
			logger.Error("server failed to start", logger.Fields{"error": err.Error()})
			quit <- syscall.SIGTERM
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	<-quit
	logger.Info("shutting down server", nil)

	if err := application.Shutdown(); err != nil {
		logger.Error("error during shutdown", logger.Fields{"error": err.Error()})
		os.Exit(1)
	}
	logger.Info("server gracefully stopped", nil)
}

// newApp loads the configuration named by args and the environment, installs
// the package logger and assembles the service.
func newApp(args []string) (*app.App, error) {
	cfg, err := config.Load(args)
	if err != nil {
		return nil, err
	}

	log := logger.New(os.Stdout, cfg.Log.Level, cfg.Log.Format)
	logger.SetStd(log)

	return app.New(cfg, log)
}
