package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Black-And-White-Club/poker-points/app"
	"github.com/Black-And-White-Club/poker-points/config"
	"github.com/joho/godotenv"
)

func main() {
	configFile := flag.String("config", "config.yaml", "Path to the configuration file")
	flag.Parse()

	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application := &app.App{}
	if err := application.Initialize(ctx, cfg); err != nil {
		log.Fatalf("failed to initialize app: %v", err)
	}

	runErr := application.Run(ctx)
	if runErr != nil {
		application.Observability.Provider.Logger.Error("Application stopped with error", "error", runErr)
	}

	if err := application.Close(); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
	if runErr != nil {
		os.Exit(1)
	}
}
