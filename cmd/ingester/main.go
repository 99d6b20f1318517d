package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"

	"neo-platform/internal/config"
	"neo-platform/internal/repository"
	"neo-platform/internal/services"
	"neo-platform/pkg/database"
	"neo-platform/pkg/logging"
	"neo-platform/pkg/metrics"
)

const version = "1.0.0"

func main() {
	configPath := flag.String("config", "", "Config file (default: neo.yaml in . or ./config)")
	neoPath := flag.String("neofile", "", "Path to the NEO catalog CSV (overrides data.neo_path)")
	cadPath := flag.String("cadfile", "", "Path to the close approach JSON (overrides data.cad_path)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *neoPath != "" {
		cfg.Data.NEOPath = *neoPath
	}
	if *cadPath != "" {
		cfg.Data.CADPath = *cadPath
	}

	for _, validate := range []func() error{cfg.Validate, cfg.ValidateCatalog, cfg.ValidateDatabase} {
		if err := validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
			os.Exit(1)
		}
	}

	logger := logging.NewStructuredLogger("neo-ingester", version, cfg.LogLevel())

	ctx := logging.WithRunID(context.Background(), uuid.New().String())
	logger.Info(ctx, "[INGESTER_START] Starting NEO catalog ingestion", logging.Fields{
		"version":  version,
		"neo_path": cfg.Data.NEOPath,
		"cad_path": cfg.Data.CADPath,
		"db_host":  cfg.Database.Host,
		"db_name":  cfg.Database.Database,
	})

	metricsCollector := metrics.NewCollector("neo_ingester", nil)

	db, err := database.NewPostgresDB(cfg.Database.PostgresConfig(), logger, metricsCollector)
	if err != nil {
		logger.Fatal(ctx, "[INGESTER_ERROR] Failed to connect to database", logging.Fields{}, err)
	}
	defer db.Close()

	approachRepo := repository.NewApproachRepository(db, logger, metricsCollector)
	ingestionService := services.NewIngestionService(approachRepo, logger, metricsCollector)

	result, err := ingestionService.Ingest(ctx, cfg.Data.NEOPath, cfg.Data.CADPath)
	if err != nil {
		db.Close()
		logger.Fatal(ctx, "[INGESTION_ERROR] Ingestion failed", logging.Fields{}, err)
	}

	fmt.Println(strings.Repeat("=", 80))
	fmt.Println("INGESTION COMPLETE")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("NEO Records:        %d\n", result.NEORecords)
	fmt.Printf("Approach Records:   %d\n", result.ApproachRecords)
	fmt.Printf("Rejected Records:   %d\n", result.Rejected)
	fmt.Printf("Unknown Fields:     %d\n", result.Diagnostics)
	fmt.Printf("NEOs Stored:        %d\n", result.NEOsStored)
	fmt.Printf("Approaches Stored:  %d\n", result.ApproachesSaved)
	fmt.Printf("Duration:           %v\n", result.Duration)

	logger.Info(ctx, "[INGESTER_COMPLETE] Ingestion completed successfully", logging.Fields{
		"neos_stored":      result.NEOsStored,
		"approaches_saved": result.ApproachesSaved,
		"rejected":         result.Rejected,
		"duration_seconds": result.Duration.Seconds(),
	})
}
