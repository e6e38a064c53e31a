package main

import (
	"context"
	"flag"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GriffinCanCode/tabterm/internal/infrastructure/config"
	"github.com/GriffinCanCode/tabterm/internal/infrastructure/probe"
	"github.com/GriffinCanCode/tabterm/internal/infrastructure/server"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Flags override the environment.
	flag.StringVar(&cfg.Server.Port, "port", cfg.Server.Port, "Server port")
	flag.StringVar(&cfg.Server.Host, "host", cfg.Server.Host, "Listen address")
	flag.BoolVar(&cfg.Logging.Development, "dev", cfg.Logging.Development, "Development logging")
	flag.StringVar(&cfg.Storage.StatePath, "state", cfg.Storage.StatePath, "State file (.json, .yaml or .toml)")
	flag.StringVar(&cfg.Terminal.Shell, "shell", cfg.Terminal.Shell, "Shell for new tabs")
	check := flag.Bool("check", false, "Wait for a running server to become healthy, then exit")
	flag.Parse()

	if *check {
		os.Exit(runCheck(cfg))
	}

	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Run()
	}()

	code := 0
	select {
	case <-sigChan:
	case err := <-errChan:
		if err != nil {
			log.Printf("Server error: %v", err)
			code = 1
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Error during shutdown: %v", err)
		code = 1
	}
	cancel()
	os.Exit(code)
}

func runCheck(cfg *config.Config) int {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	url := "http://" + net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)
	h, err := probe.New(url, probe.DefaultConfig()).Check(ctx)
	if err != nil {
		log.Printf("Health check failed: %v", err)
		return 1
	}
	log.Printf("Server healthy (%d tabs)", h.Tabs)
	return 0
}
