package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/openboard-dev/openboard/internal/config"
	"github.com/openboard-dev/openboard/internal/logger"
	"github.com/openboard-dev/openboard/internal/router"
	"github.com/openboard-dev/openboard/internal/setup"
)

func main() {
	var configFolder string
	flag.StringVar(&configFolder, "config_folder", "config", "path to folder with configs")
	flag.Parse()

	cfg := config.MustLoad(configFolder)
	logger.Initialize(cfg.Public.LogLevel, cfg.Public.LogJSON)

	deps, err := setup.SetupDependencies(cfg)
	if err != nil {
		logger.Log.Error("failed to initialize dependencies", "error", err)
		os.Exit(1)
	}
	defer deps.Storage.Cleanup()

	if cfg.Public.AnalyticsFlush != "" {
		if err := deps.Analytics.Start(cfg.Public.AnalyticsFlush); err != nil {
			logger.Log.Error("failed to start analytics flusher", "error", err)
			os.Exit(1)
		}
		defer deps.Analytics.Stop()
	}

	r := router.New(deps)

	addr := fmt.Sprintf(":%d", cfg.Public.Port)
	logger.Log.Info("server started", "addr", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		logger.Log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
