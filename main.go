package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"microcms-mcp-server/internal/application"
	"microcms-mcp-server/internal/domain"
)

func main() {
	configPath := flag.String("config", "", "Path to a YAML configuration file declaring services")
	serviceID := flag.String("service-id", "", "microCMS service ID (single service mode)")
	apiKey := flag.String("api-key", "", "microCMS API key (single service mode)")
	transportType := flag.String("transport", "stdio", "Transport type: stdio or http")
	httpHost := flag.String("http-host", "127.0.0.1", "HTTP transport listen host")
	httpPort := flag.Int("http-port", 3000, "HTTP transport listen port")
	flag.Parse()

	// Logs go to stderr; stdout is reserved for the stdio transport.
	log.SetOutput(os.Stderr)

	opts := domain.LoadOptions{
		ConfigPath: *configPath,
		ServiceID:  *serviceID,
		APIKey:     *apiKey,
	}

	registry := application.NewServiceRegistry(func() (*domain.AppConfig, error) {
		return domain.LoadConfig(opts)
	})

	config, err := registry.Initialize()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	switch config.Mode() {
	case domain.SingleService:
		log.Printf("Configured in single service mode: %s", config.Default().ID)
	case domain.MultiService:
		log.Printf("Configured in multi service mode: %s", strings.Join(config.ServiceIDs(), ", "))
	}

	dispatcher := application.NewDispatcher(registry)

	var transport domain.Transport
	switch *transportType {
	case "stdio":
		log.Println("Initializing stdio transport")
		transport = domain.NewStdioTransport()
	case "http":
		log.Printf("Initializing HTTP transport on %s:%d", *httpHost, *httpPort)
		transport = domain.NewHTTPTransport(*httpHost, *httpPort)
	default:
		log.Fatalf("Invalid transport type: %s", *transportType)
	}

	server := application.NewServer(transport, dispatcher, registry)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	errChan := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil {
			errChan <- fmt.Errorf("server failed to start: %w", err)
		}
	}()

	log.Printf("MCP server started (%s transport)", *transportType)

	select {
	case sig := <-sigChan:
		log.Printf("Received signal: %v", sig)
		cancel()
	case err := <-errChan:
		log.Printf("Server error: %v", err)
		cancel()
		if err := server.Close(); err != nil {
			log.Printf("Error closing server: %v", err)
		}
		os.Exit(1)
	}

	if err := server.Close(); err != nil {
		log.Printf("Error during server shutdown: %v", err)
		os.Exit(1)
	}

	log.Println("Server shutdown complete")
}
