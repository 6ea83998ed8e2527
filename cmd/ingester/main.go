package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"pvcycle-platform/internal/config"
	"pvcycle-platform/internal/repository"
	"pvcycle-platform/internal/services"
	"pvcycle-platform/pkg/database"
	"pvcycle-platform/pkg/logging"
	"pvcycle-platform/pkg/metrics"
)

func main() {
	// Parse command-line flags
	dataDir := flag.String("data-dir", "./baselines", "Directory containing baseline CSV files")
	runAfter := flag.Bool("run", false, "Run the mass flow simulation for each ingested scenario")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := logging.NewStructuredLogger("pvcycle-ingester", "1.0.0", logging.ParseLevel(cfg.Logging.Level))

	ctx := context.Background()
	logger.Info(ctx, "[INGESTER_START] Starting baseline ingestion", logging.Fields{
		"version":  "1.0.0",
		"data_dir": *dataDir,
		"run":      *runAfter,
	})

	// Initialize metrics collector
	metricsCollector := metrics.NewCollector("pvcycle_ingester")

	// Initialize database
	dbConfig := &database.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.Database,
		SSLMode:         cfg.Database.SSLMode,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
	}

	db, err := database.NewPostgresDB(dbConfig, logger, metricsCollector)
	if err != nil {
		logger.Fatal(ctx, "[INGESTER_ERROR] Failed to connect to database", logging.Fields{}, err)
	}
	defer db.Close()

	// Initialize repository
	scenarioRepo := repository.NewScenarioRepository(db, logger, metricsCollector)

	// Initialize services
	ingestionService := services.NewIngestionService(scenarioRepo, logger, metricsCollector)
	simulationService := services.NewSimulationService(scenarioRepo, cfg.Simulation, logger, metricsCollector)

	// Ingest baselines
	result, err := ingestionService.IngestDirectory(ctx, *dataDir)
	if err != nil {
		logger.Fatal(ctx, "[INGESTION_ERROR] Ingestion failed", logging.Fields{
			"error": err.Error(),
		}, err)
	}

	// Print results
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println("INGESTION COMPLETE")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Total Files:       %d\n", result.TotalFiles)
	fmt.Printf("Scenarios Created: %d\n", result.ScenariosCreated)
	fmt.Printf("Materials Created: %d\n", result.MaterialsCreated)
	fmt.Printf("Total Rows:        %d\n", result.TotalRows)
	fmt.Printf("Duration:          %v\n", result.Duration)

	if len(result.Errors) > 0 {
		fmt.Printf("\nErrors (%d):\n", len(result.Errors))
		for i, errMsg := range result.Errors {
			if i < 10 {
				fmt.Printf("  - %s\n", errMsg)
			}
		}
		if len(result.Errors) > 10 {
			fmt.Printf("  ... and %d more errors\n", len(result.Errors)-10)
		}
	}

	// Run simulations if requested
	if *runAfter {
		fmt.Println("\n" + strings.Repeat("=", 80))
		fmt.Println("RUNNING SIMULATIONS")
		fmt.Println(strings.Repeat("=", 80))

		scenarios, _, err := scenarioRepo.ListScenarios(ctx, 1000, 0)
		if err != nil {
			logger.Fatal(ctx, "[INGESTER_ERROR] Failed to list scenarios", logging.Fields{}, err)
		}

		for _, scenario := range scenarios {
			runResult, err := simulationService.RunScenario(ctx, scenario.ID)
			if err != nil {
				logger.Error(ctx, "[SIMULATION_ERROR] Simulation failed", logging.Fields{
					"scenario_id":   scenario.ID,
					"scenario_name": scenario.Name,
				}, err)
				fmt.Printf("Scenario %q: FAILED (%v)\n", scenario.Name, err)
				continue
			}

			fmt.Printf("Scenario %q: run %d, %d years, %d materials, %d diagnostics, %v\n",
				scenario.Name, runResult.RunID, len(runResult.Years), len(runResult.Materials),
				len(runResult.Diagnostics), runResult.Duration)
		}
	}

	logger.Info(ctx, "[INGESTER_COMPLETE] Ingestion completed successfully", logging.Fields{
		"total_files":       result.TotalFiles,
		"scenarios_created": result.ScenariosCreated,
		"materials_created": result.MaterialsCreated,
		"total_rows":        result.TotalRows,
		"duration_seconds":  result.Duration.Seconds(),
	})
}
