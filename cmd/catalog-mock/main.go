package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/existflow/animeshelf/internal/logger"
	"github.com/existflow/animeshelf/internal/mockapi"
)

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}

	var latency time.Duration
	if raw := os.Getenv("LATENCY"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			log.Fatalf("Invalid LATENCY %q: %v", raw, err)
		}
		latency = d
	}

	if err := logger.Init(logger.Config{Level: logger.ParseLevel(os.Getenv("LOG_LEVEL")), Console: true}); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Close() }()

	srv := mockapi.New(mockapi.Options{Latency: latency, Logger: logger.Default()})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Error shutting down: %v", err)
		}
	}()

	log.Printf("Mock catalog starting on :%s (latency %s)", port, latency)
	if err := srv.Start(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
