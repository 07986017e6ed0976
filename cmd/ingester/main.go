package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/markMSUIIT/riceprotek-web-app/internal/config"
	"github.com/markMSUIIT/riceprotek-web-app/internal/repository"
	"github.com/markMSUIIT/riceprotek-web-app/internal/services"
	"github.com/markMSUIIT/riceprotek-web-app/pkg/database"
	"github.com/markMSUIIT/riceprotek-web-app/pkg/logging"
	"github.com/markMSUIIT/riceprotek-web-app/pkg/metrics"
)

func main() {
	file := flag.String("file", "", "Path to the CSV dataset to ingest")
	areaPointID := flag.String("area-point", "", "Area point identifier the dataset belongs to")
	username := flag.String("user", "system", "Username recorded in the activity log")
	flag.Parse()

	if *file == "" || *areaPointID == "" {
		fmt.Fprintln(os.Stderr, "Usage: ingester -file <dataset.csv> -area-point <id> [-user <name>]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewStructuredLogger("riceprotek-ingester", "1.0.0", cfg.Logging.Level)
	defer logger.Sync()

	ctx := logging.WithUsername(context.Background(), *username)
	logger.Info(ctx, "[INGESTER_START] Starting dataset ingestion", logging.Fields{
		"file":          *file,
		"area_point_id": *areaPointID,
	})

	metricsCollector := metrics.NewCollector("riceprotek_ingester")

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
		logger.Fatal(ctx, "[INGESTER_ERROR] Failed to connect to database", logging.Fields{}, err)
	}
	defer db.Close()

	repo := repository.NewMonitoringRepository(db, logger, metricsCollector)
	ingestionService := services.NewIngestionService(repo, logger, metricsCollector)

	f, err := os.Open(*file)
	if err != nil {
		logger.Fatal(ctx, "[INGESTER_ERROR] Failed to open dataset file", logging.Fields{
			"file": *file,
		}, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		logger.Fatal(ctx, "[INGESTER_ERROR] Failed to stat dataset file", logging.Fields{
			"file": *file,
		}, err)
	}

	result, err := ingestionService.ProcessUpload(ctx, services.UploadRequest{
		OriginalFilename: filepath.Base(*file),
		AreaPointID:      *areaPointID,
		UploadedBy:       *username,
		FileSize:         info.Size(),
		Data:             f,
	})
	if err != nil && result == nil {
		logger.Fatal(ctx, "[INGESTION_ERROR] Ingestion failed", logging.Fields{
			"file": *file,
		}, err)
	}

	fmt.Println(strings.Repeat("=", 80))
	fmt.Println("INGESTION COMPLETE")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Upload ID:   %s\n", result.UploadID)
	fmt.Printf("Status:      %s\n", result.Status)
	fmt.Printf("Total Rows:  %d\n", result.RowCount)
	fmt.Printf("Duration:    %v\n", result.Duration)

	for _, report := range result.Reports {
		fmt.Printf("\n[%s]\n", strings.ToUpper(string(report.Domain)))
		fmt.Printf("  Attempted: %d\n", report.Attempted)
		fmt.Printf("  Accepted:  %d\n", report.Accepted)
		fmt.Printf("  Rejected:  %d\n", len(report.Rejected))
		fmt.Printf("  Persisted: %d\n", report.Persisted)
		fmt.Printf("  Failed:    %d\n", len(report.Failed))

		for i, rowErr := range report.Rejected {
			if i >= 10 {
				fmt.Printf("  ... and %d more rejected rows\n", len(report.Rejected)-10)
				break
			}
			fmt.Printf("  - row %d: %s\n", rowErr.Position, rowErr.Reason)
		}
	}

	if err != nil {
		fmt.Printf("\nIngestion aborted: %v\n", err)
		os.Exit(1)
	}
}
