package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/finops-dwh/o2c/internal/config"
	"github.com/finops-dwh/o2c/internal/infra/snowflake"
	"github.com/finops-dwh/o2c/internal/logger"
	"github.com/finops-dwh/o2c/internal/period"
	"github.com/finops-dwh/o2c/internal/pipeline"
	"github.com/finops-dwh/o2c/internal/progress"
	"github.com/finops-dwh/o2c/internal/warehouse"
)

func main() {
	log := logger.New("info")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "run":
		runExtract(log)
	case "check":
		runCheck(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Order-to-Cash DWH Extract")
	fmt.Println("\nUsage:")
	fmt.Println("  o2c <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  run     Extract a reporting period and export per-provider CSVs")
	fmt.Println("  check   Verify warehouse connectivity and session context")
	fmt.Println("  help    Show this help message")
	fmt.Println("\nRun 'o2c <command> -h' for more information on a command.")
}

func runExtract(log zerolog.Logger) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	month := fs.String("month", "", "Reporting month as YYYY-MM (defaults to the reporting cadence)")
	user := fs.String("user", "", "Warehouse user (overrides SNOWFLAKE_USER)")
	out := fs.String("out", "", "Export root directory")
	notes := fs.String("notes", "", "Free-form note attached to the run logs")
	fs.Parse(os.Args[2:])

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if *month != "" {
		cfg.Period.Month = *month
	}
	if *user != "" {
		cfg.Warehouse.User = *user
	}
	if *out != "" {
		cfg.Output.Root = *out
	}

	log = logger.New(cfg.Log.Level)
	if *notes != "" {
		log = log.With().Str("notes", *notes).Logger()
	}

	p, err := period.Resolve(cfg.Period, time.Now())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to resolve reporting period")
	}

	ctx := logger.WithContext(context.Background(), log)
	rep := progress.Multi(
		&progress.Console{Out: os.Stdout},
		&progress.Log{Logger: log},
	)

	log.Info().Str("start", p.Start).Str("end", p.End).Msg("Starting extraction")

	sess := connect(ctx, log, cfg.Warehouse, rep)
	defer sess.Close()

	result, err := pipeline.Run(ctx, sess, pipeline.Options{
		Period:     p,
		Loader:     &warehouse.ChunkedInsert{ChunkSize: cfg.Upload.ChunkSize, Reporter: rep},
		OutputRoot: cfg.Output.Root,
		OutputDirs: cfg.Output.Dirs,
		Reporter:   rep,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Extraction failed")
	}

	fmt.Printf("Exported %d files for period %s (%d orders, %d merged rows).\n",
		len(result.Files), p.Label(), result.OrderRows, result.MergedRows)
}

func runCheck(log zerolog.Logger) {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	user := fs.String("user", "", "Warehouse user (overrides SNOWFLAKE_USER)")
	fs.Parse(os.Args[2:])

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if *user != "" {
		cfg.Warehouse.User = *user
	}

	log = logger.New(cfg.Log.Level)
	ctx := logger.WithContext(context.Background(), log)

	sess := connect(ctx, log, cfg.Warehouse, &progress.Console{Out: os.Stdout})

	details, err := sess.Describe(ctx)
	if err != nil {
		sess.Close()
		log.Fatal().Err(err).Msg("Failed to describe session")
	}

	fmt.Println("\n=== Session Details ===")
	fmt.Printf("User:      %s\n", details.User)
	fmt.Printf("Account:   %s\n", details.Account)
	fmt.Printf("Role:      %s\n", details.Role)
	fmt.Printf("Warehouse: %s\n", details.Warehouse)
	fmt.Printf("Database:  %s\n", details.Database)
	fmt.Printf("Schema:    %s\n", details.Schema)

	if err := sess.Close(); err != nil {
		log.Fatal().Err(err).Msg("Failed to close connection")
	}
	fmt.Println("\nConnection closed cleanly.")
}

func connect(ctx context.Context, log zerolog.Logger, cfg config.WarehouseConfig, rep progress.Reporter) *snowflake.Session {
	connector := snowflake.NewConnector(cfg, snowflake.ConsolePrompter{}, rep)

	sess, err := connector.Connect(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Snowflake")
	}
	if err := sess.SetContext(ctx); err != nil {
		sess.Close()
		log.Fatal().Err(err).Msg("Failed to configure session context")
	}
	return sess
}
