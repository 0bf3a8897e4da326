package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"tagme/internal/app"
	"tagme/pkg/config"
	"tagme/pkg/logger"
	"tagme/pkg/shutdown"
)

// build metadata - set via ldflags during build/release
var version = "dev"

func main() {
	_ = godotenv.Load(".env")
	addrVal, dbVal, cfgVal, setFlags := config.ParseCommandFlags()

	cfgPath := config.ResolveConfigPath(cfgVal, setFlags["config"])
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// flags explicitly set win over env/config
	addr := cfg.Addr()
	if setFlags["addr"] {
		addr = addrVal
	}
	if setFlags["db"] || cfg.Server.DBPath == "" {
		cfg.Server.DBPath = dbVal
	}

	logger.InitWithLevel(cfg.Logging.Level)

	a, err := app.New(cfg, addr, version)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}

	ctx, cancel := shutdown.SetupSignalHandler(context.Background())
	defer cancel()

	if err := a.Run(ctx); err != nil {
		logger.Error("server_failed", "error", err)
	}
	if err := a.Close(); err != nil {
		logger.Error("store_close_failed", "error", err)
	}
}
