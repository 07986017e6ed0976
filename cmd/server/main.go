package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	gorillahandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/markMSUIIT/riceprotek-web-app/internal/config"
	"github.com/markMSUIIT/riceprotek-web-app/internal/handlers"
	"github.com/markMSUIIT/riceprotek-web-app/internal/repository"
	"github.com/markMSUIIT/riceprotek-web-app/internal/services"
	"github.com/markMSUIIT/riceprotek-web-app/pkg/database"
	"github.com/markMSUIIT/riceprotek-web-app/pkg/logging"
	"github.com/markMSUIIT/riceprotek-web-app/pkg/metrics"
	"github.com/markMSUIIT/riceprotek-web-app/pkg/nasapower"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewStructuredLogger("riceprotek-api", version, cfg.Logging.Level)
	defer logger.Sync()

	ctx := context.Background()
	logger.Info(ctx, "[STARTUP] Starting RiceProtek monitoring API server", logging.Fields{
		"version":     version,
		"server_host": cfg.Server.Host,
		"server_port": cfg.Server.Port,
		"db_host":     cfg.Database.Host,
		"db_name":     cfg.Database.Name,
	})

	metricsCollector := metrics.NewCollector("riceprotek")

	dbConfig := &database.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.Name,
		SSLMode:         cfg.Database.SSLMode,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime(),
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime(),
	}

	db, err := database.NewPostgresDB(dbConfig, logger, metricsCollector)
	if err != nil {
		logger.Fatal(ctx, "[STARTUP_ERROR] Failed to connect to database", logging.Fields{}, err)
	}
	defer db.Close()

	repo := repository.NewMonitoringRepository(db, logger, metricsCollector)

	nasaClient := nasapower.NewClient(nasapower.Config{
		BaseURL: cfg.NASAPower.BaseURL,
		Timeout: cfg.NASAPower.Timeout(),
	})

	monitoringService := services.NewMonitoringService(repo, logger, metricsCollector)
	ingestionService := services.NewIngestionService(repo, logger, metricsCollector)
	statsService := services.NewStatisticsService(repo, logger)
	syncService := services.NewNASASyncService(repo, nasaClient, logger, metricsCollector)

	monitoringHandler := handlers.NewMonitoringHandler(monitoringService, statsService, logger, metricsCollector)
	uploadHandler := handlers.NewUploadHandler(
		ingestionService,
		monitoringService,
		syncService,
		cfg.Ingestion.MaxUploadBytes,
		logger,
		metricsCollector,
	)

	router := mux.NewRouter()
	router.Use(handlers.RequestContext)

	monitoringHandler.RegisterRoutes(router)
	uploadHandler.RegisterRoutes(router)

	router.HandleFunc("/api/docs/openapi.json", handlers.OpenAPISpec).Methods("GET")
	router.HandleFunc("/api/docs", handlers.SwaggerUI).Methods("GET")
	router.Handle("/metrics", promhttp.Handler())

	handler := gorillahandlers.RecoveryHandler()(router)
	handler = gorillahandlers.CORS(
		gorillahandlers.AllowedOrigins(cfg.Server.AllowedOrigins),
		gorillahandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorillahandlers.AllowedHeaders([]string{"Content-Type", "X-Username", "X-Request-ID"}),
	)(handler)

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSecs) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSecs) * time.Second,
	}

	go func() {
		logger.Info(ctx, "[SERVER_START] HTTP server listening", logging.Fields{
			"address": server.Addr,
		})

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal(ctx, "[SERVER_ERROR] Server failed", logging.Fields{}, err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info(ctx, "[SHUTDOWN] Shutting down server...", logging.Fields{})

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Server.ShutdownTimeoutSecs)*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "[SHUTDOWN_ERROR] Server forced to shutdown", logging.Fields{}, err)
	}

	logger.Info(ctx, "[SHUTDOWN_COMPLETE] Server stopped", logging.Fields{})
}
