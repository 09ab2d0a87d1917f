package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/lucaf1-15/lucai-backend/internal/app"
	"github.com/lucaf1-15/lucai-backend/internal/config"
	log "github.com/sirupsen/logrus"
)

// main runs the server and exits on unrecoverable errors.
func main() {
	if errRun := run(os.Args[1:]); errRun != nil {
		log.WithError(errRun).Error("server failed")
		os.Exit(1)
	}
}

// run parses flags, loads config, and starts the server.
func run(args []string) error {
	// .env is optional, same as the config file.
	_ = godotenv.Load()

	fs := flag.NewFlagSet("lucai", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "config file path (or env CONFIG_PATH)")
	port := fs.Int("port", 0, "server port (overrides config)")
	if errParse := fs.Parse(args); errParse != nil {
		return errParse
	}

	path := strings.TrimSpace(*cfgPath)
	if path == "" {
		path = os.Getenv(config.EnvConfigPath)
	}

	cfg, errLoad := config.Load(path)
	if errLoad != nil {
		return errLoad
	}
	if *port > 0 {
		cfg.Port = *port
	}
	if strings.TrimSpace(cfg.JWT.Secret) == "" {
		log.Warn("JWT_SECRET is not set, using an insecure development secret")
		cfg.JWT.Secret = "dev-secret-change-in-production"
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return app.RunServer(ctx, cfg)
}
