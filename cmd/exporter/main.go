package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/founderdesk/daylog/internal/app"
	"github.com/founderdesk/daylog/internal/export"
)

func main() {
	var configPath = flag.String("config", "config.toml", "Path to config file")
	flag.Parse()

	service, err := app.NewService(*configPath)
	if err != nil {
		logger.Error.Fatalf("Failed to load config: %v", err)
	}
	defer service.Close()

	scheduler, err := export.NewGSheetExporter(service.Config, service.Store)
	if err != nil {
		logger.Error.Fatalf("Failed to initialize Google Sheets exporter: %v", err)
	}
	defer scheduler.Stop()

	logger.Info.Println("Scoreboard exporter is running")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info.Println("Scoreboard exporter stopped")
}
