package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"tss-backtest/internal/api"
	"tss-backtest/internal/cache"
	"tss-backtest/internal/config"
	"tss-backtest/internal/logging"
)

func main() {
	cfgPath := flag.String("config", "", "Path to YAML config (optional; env overrides still apply)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	if err := logging.Setup(cfg.Logging); err != nil {
		logrus.Fatalf("Failed to set up logging: %v", err)
	}
	log := logrus.StandardLogger()

	results := cache.New(cfg.Backtest.ResultTTL)
	go results.Start(context.Background(), time.Minute)

	router := api.NewRouter(cfg, results, log)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.WithFields(logrus.Fields{
		"addr":     addr,
		"env":      cfg.Server.Env,
		"strategy": cfg.StrategyID(),
		"seed":     cfg.Backtest.Seed,
	}).Info("Starting API server")
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
