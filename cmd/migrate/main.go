package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"

	_ "github.com/lib/pq"

	"github.com/markMSUIIT/riceprotek-web-app/internal/config"
	"github.com/markMSUIIT/riceprotek-web-app/pkg/database"
	"github.com/markMSUIIT/riceprotek-web-app/pkg/logging"
)

func main() {
	direction := flag.String("direction", "up", "Migration direction: up or down")
	migrationsPath := flag.String("path", "migrations", "Directory holding migration files")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewStructuredLogger("riceprotek-migrate", "1.0.0", cfg.Logging.Level)
	defer logger.Sync()

	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Name,
		cfg.Database.SSLMode,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to ping database: %v\n", err)
		os.Exit(1)
	}

	switch *direction {
	case "up":
		err = database.RunMigrations(ctx, db, *migrationsPath, logger)
	case "down":
		err = database.RollbackMigrations(ctx, db, *migrationsPath, logger)
	default:
		fmt.Fprintf(os.Stderr, "Unknown direction %q, expected up or down\n", *direction)
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Migration failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Migration completed successfully")
}
