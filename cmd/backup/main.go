package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"swimschool/internal/config"
	"swimschool/internal/database"
	"swimschool/internal/logging"
	"swimschool/internal/repository"
	"swimschool/internal/service"
)

func main() {
	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
	importCmd := flag.NewFlagSet("import", flag.ExitOnError)

	exportOutput := exportCmd.String("output", "", "Output file path (default: backup_YYYYMMDD_HHMMSS.json)")
	exportTenant := exportCmd.Int64("tenant", 0, "Tenant ID to export (default: first tenant)")

	importInput := importCmd.String("input", "", "Input file path (required)")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg := config.Load()
	logging.Setup("swimschool-backup", cfg.LogLevel)
	ctx := context.Background()

	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		fatal("Failed to initialize database", err)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		fatal("Failed to run migrations", err)
	}

	backupService := service.NewBackupService(db)

	switch os.Args[1] {
	case "export":
		exportCmd.Parse(os.Args[2:])
		handleExport(ctx, db, backupService, *exportTenant, *exportOutput)

	case "import":
		importCmd.Parse(os.Args[2:])
		if *importInput == "" {
			fmt.Println("Error: -input flag is required")
			importCmd.PrintDefaults()
			os.Exit(1)
		}
		handleImport(ctx, backupService, *importInput)

	default:
		printUsage()
		os.Exit(1)
	}
}

func handleExport(ctx context.Context, db *database.DB, backupService *service.BackupService, tenantID int64, outputPath string) {
	if tenantID == 0 {
		tenant, err := repository.New(db).Tenants.First(ctx)
		if err != nil {
			fatal("Failed to look up tenant", err)
		}
		if tenant == nil {
			fatal("Nothing to export", fmt.Errorf("database has no tenant"))
		}
		tenantID = tenant.ID
	}

	if outputPath == "" {
		outputPath = fmt.Sprintf("backup_%s.json", time.Now().Format("20060102_150405"))
	}

	dir := filepath.Dir(outputPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			fatal("Failed to create output directory", err)
		}
	}

	slog.Info("Exporting tenant", "tenant_id", tenantID, "output", outputPath)
	if err := backupService.ExportFile(ctx, tenantID, outputPath); err != nil {
		fatal("Export failed", err)
	}

	if fileInfo, err := os.Stat(outputPath); err == nil {
		slog.Info("Export complete", "size_mb", fmt.Sprintf("%.2f", float64(fileInfo.Size())/1024/1024))
	}
}

func handleImport(ctx context.Context, backupService *service.BackupService, inputPath string) {
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		fatal("Input file does not exist", err)
	}

	slog.Info("Importing backup", "input", inputPath)
	tenantID, err := backupService.ImportFile(ctx, inputPath)
	if err != nil {
		fatal("Import failed", err)
	}

	slog.Info("Import complete", "tenant_id", tenantID)
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}

func printUsage() {
	fmt.Println("Swim School Backup Tool")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  backup export [options]    Export a tenant to a JSON file")
	fmt.Println("  backup import [options]    Import a JSON file as a new tenant")
	fmt.Println()
	fmt.Println("Export Options:")
	fmt.Println("  -output <file>    Output file path (default: backup_YYYYMMDD_HHMMSS.json)")
	fmt.Println("  -tenant <id>      Tenant to export (default: first tenant)")
	fmt.Println()
	fmt.Println("Import Options:")
	fmt.Println("  -input <file>     Input file path (required)")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  DATABASE_TYPE    Database type: sqlite, postgres, or mysql (default: sqlite)")
	fmt.Println("  DB_PATH          SQLite database path (default: ./swimschool.db)")
	fmt.Println("  DATABASE_URL     PostgreSQL or MySQL connection URL")
}
