// Package main provides the command line entry point for the trip cleaning pipeline.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"trip-data-pipeline/internal/config"
	"trip-data-pipeline/internal/log"
	"trip-data-pipeline/internal/metrics"
	"trip-data-pipeline/internal/model"
	"trip-data-pipeline/internal/pipeline"
	"trip-data-pipeline/internal/store"
)

// Exit codes
const (
	ExitSuccess      = 0
	ExitConfigError  = 1
	ExitRunError     = 2
	ExitRuntimeError = 3
)

var (
	// Global flags
	verbose bool

	// clean flags
	source       string
	cleanFile    string
	excludedFile string

	// zones flags
	topN       int
	exportPath string

	cfg *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitRuntimeError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "pipeline-cli",
	Short: "Clean taxi trip data and work with the results",
	Long: `pipeline-cli cleans raw taxi trip CSV data into a clean file and an
excluded-rows log, loads clean trips into the database and reports the
fastest pickup zones.

Configuration comes from PIPELINE_* environment variables and the optional
YAML file named by PIPELINE_CONFIG_FILE.

Examples:
  # Clean the configured raw file
  pipeline-cli clean

  # Clean a specific file
  pipeline-cli clean --source data/train.csv

  # Load the clean file into the trips table
  pipeline-cli load

  # Show the ten fastest pickup zones and save them as a spreadsheet
  pipeline-cli zones --top 10 --export reports/zones.xlsx`,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
			os.Exit(ExitConfigError)
		}
		return log.Init(verbose || cfg.Logging.Debug)
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		log.Sync()
	},
}

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Run the cleaning pipeline",
	Long: `Run the cleaning pipeline and print the run summary as JSON.

Both output files are written only when the whole run succeeds.`,
	Args: cobra.NoArgs,
	Run:  runClean,
}

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load the clean file into the trips table",
	Args:  cobra.NoArgs,
	RunE:  runLoad,
}

var zonesCmd = &cobra.Command{
	Use:   "zones",
	Short: "Report the fastest pickup zones of the clean file",
	Args:  cobra.NoArgs,
	RunE:  runZones,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	cleanCmd.Flags().StringVar(&source, "source", "", "Raw CSV path or URL (default: configured raw file)")
	cleanCmd.Flags().StringVar(&cleanFile, "clean-file", "", "Clean output path (default: configured clean file)")
	cleanCmd.Flags().StringVar(&excludedFile, "excluded-file", "", "Excluded rows output path (default: configured excluded file)")

	zonesCmd.Flags().IntVarP(&topN, "top", "n", 0, "Number of zones (default: configured top N)")
	zonesCmd.Flags().StringVarP(&exportPath, "export", "o", "", "Also write the report to a .csv, .json or .xlsx file")

	rootCmd.AddCommand(cleanCmd, loadCmd, zonesCmd)
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runClean(_ *cobra.Command, _ []string) {
	ctx, cancel := signalContext()
	defer cancel()

	runner := pipeline.NewRunner(cfg.Paths.RawFile, log.GetSugaredLogger())
	runner.CleanFile = cfg.Paths.CleanFile
	runner.ExcludedFile = cfg.Paths.ExcludedFile
	runner.Metrics = metrics.New()

	st, err := store.Open(ctx, cfg.Database)
	if err != nil {
		log.Warnw("Database unavailable, run will not be recorded", "error", err)
	} else {
		defer st.Close()
		runner.Store = st
	}

	result := runner.Run(ctx, model.RunSpec{
		Source:       source,
		CleanFile:    cleanFile,
		ExcludedFile: excludedFile,
	})
	printJSON(result)

	if !result.Succeeded() {
		log.Sync()
		os.Exit(ExitRunError)
	}
}

func runLoad(_ *cobra.Command, _ []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	st, err := store.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	retry := pipeline.DefaultRetryConfig
	retry.MaxAttempts = cfg.Database.MaxAttempts

	result, err := pipeline.LoadTripsFromFile(ctx, cfg.Paths.CleanFile, st, pipeline.LoadOptions{
		ChunkSize: cfg.Database.ChunkSize,
		Retry:     retry,
		Logger:    log.GetSugaredLogger(),
	})
	if err != nil {
		return err
	}
	printJSON(result)
	return nil
}

func runZones(_ *cobra.Command, _ []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	n := topN
	if n <= 0 {
		n = cfg.Report.TopN
	}

	zones, err := pipeline.FastestPickupZones(ctx, cfg.Paths.CleanFile, n)
	if err != nil {
		return err
	}

	fmt.Printf("Top %d Fastest Pickup Zones:\n", n)
	for i, z := range zones {
		fmt.Printf("%d. Zone: %s | Avg Speed: %.2f km/h | Trips: %d\n", i+1, z.Zone, z.AvgSpeedKmh, z.Trips)
	}

	if exportPath != "" {
		result := pipeline.ExportZones(zones, exportPath)
		if !result.Success {
			return fmt.Errorf("export failed: %s", result.Error)
		}
		log.Infow("Zone report exported", "path", result.Path, "zones", result.RecordCount)
	}
	return nil
}

func printJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}
