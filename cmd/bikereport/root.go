package main

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/fatih/color"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"bike-dashboard/internal/config"
	"bike-dashboard/internal/services"
	"bike-dashboard/pkg/logging"
	"bike-dashboard/pkg/metrics"
)

// app holds what every subcommand shares once the dataset is loaded
type app struct {
	csvPath  string
	asJSON   bool
	noColor  bool
	verbose  bool
	defaults services.ControlState

	dashboard *services.DashboardService
	details   *services.DetailService
}

func newRootCmd() *cobra.Command {
	a := &app{defaults: services.DefaultControlState()}

	cfg, err := config.LoadConfig()
	if err != nil {
		cfg = config.Default()
	}
	a.defaults.SeasonYear = cfg.Dataset.SeasonYear

	root := &cobra.Command{
		Use:   "bikereport",
		Short: "Print bike rental chart tables from the command line",
		Long: `bikereport loads the hourly bike rental CSV, keeps the rows of operational
days, and prints the same chart tables and detail panel the dashboard API serves.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if a.noColor {
				color.NoColor = true
			}
			return a.load(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.csvPath, "csv", cfg.Dataset.Path, "path to the rental CSV")
	root.PersistentFlags().BoolVar(&a.asJSON, "json", false, "print JSON instead of a table")
	root.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "disable colored output")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "write debug logs to stderr")

	root.AddCommand(
		newSeasonsCmd(a),
		newMonthlyCmd(a),
		newWeekdayCmd(a),
		newHolidayCmd(a),
		newDetailCmd(a),
		newSummaryCmd(a),
	)

	return root
}

// load reads the CSV once and builds the services
func (a *app) load(cmd *cobra.Command) error {
	logger := logging.NewNopLogger()
	if a.verbose {
		logger = logging.NewStructuredLogger("bikereport", "1.0.0", logging.DebugLevel)
		logger.SetOutput(cmd.ErrOrStderr())
	}

	// A private registry keeps repeated runs in one process from colliding.
	collector := metrics.NewCollectorWithRegistry("bikereport", prometheus.NewRegistry())

	ingestion := services.NewIngestionService(nil, logger, collector, clockwork.NewRealClock())
	dataset, _, err := ingestion.LoadCSV(cmd.Context(), a.csvPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("dataset %s not found; set --csv or DATASET_PATH", a.csvPath)
		}
		return err
	}

	a.details = services.NewDetailService(dataset, logger, collector)
	a.dashboard = services.NewDashboardService(dataset, a.details, logger, collector)
	return nil
}
