package main

import (
	"flag"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/founderdesk/daylog/internal/app"
	"github.com/founderdesk/daylog/internal/handlers"
)

func main() {
	var configPath = flag.String("config", "config.toml", "Path to config file")
	flag.Parse()

	service, err := app.NewService(*configPath)
	if err != nil {
		logger.Error.Fatalf("Failed to load config: %v", err)
	}
	defer service.Close()

	submissionHandler := handlers.NewSubmissionHandler(service)
	reviewHandler := handlers.NewReviewHandler(service)
	scoreHandler := handlers.NewScoreHandler(service)

	http.HandleFunc("POST /api/v1/logs/upsert", submissionHandler.HandleUpsert)
	http.HandleFunc("GET /api/v1/logs", submissionHandler.HandleListOwn)
	http.HandleFunc("GET /api/v1/tasks", submissionHandler.HandleListTasks)
	http.HandleFunc("GET /api/v1/reviews/pending", reviewHandler.HandlePendingQueue)
	http.HandleFunc("POST /api/v1/reviews", reviewHandler.HandleDecide)
	http.HandleFunc("GET /api/v1/score", scoreHandler.HandleScore)
	http.HandleFunc("GET /api/v1/scoreboard", scoreHandler.HandleScoreboard)
	http.HandleFunc("GET /api/v1/admin/logs", scoreHandler.HandleAdminDaily)
	http.HandleFunc("DELETE /api/v1/admin/logs/{id}", scoreHandler.HandleAdminDelete)

	http.Handle("/metrics", promhttp.Handler())

	logger.Info.Printf("Starting daylog server on %s", service.Config.Server.Port)
	logger.Debug.Println("Requiring headers:")
	for _, h := range service.Config.API.RequiredHeaders {
		logger.Debug.Printf("  %s: %s", h.Name, h.Value)
	}
	if err := http.ListenAndServe(service.Config.Server.Port, nil); err != nil {
		logger.Error.Fatalf("Daylog server failed: %v", err)
	}
}
