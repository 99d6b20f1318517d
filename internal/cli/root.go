package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"neo-platform/internal/config"
	"neo-platform/internal/models"
	"neo-platform/internal/services"
	"neo-platform/pkg/logging"
	"neo-platform/pkg/metrics"
)

const (
	serviceName = "neo"
	version     = "1.0.0"
)

// app is the state shared by every subcommand once flags and config are resolved
type app struct {
	cfg     *config.Config
	logger  *logging.StructuredLogger
	exports *services.ExportService
}

// load reads and links the configured catalog files
func (a *app) load(ctx context.Context) (*models.Catalog, error) {
	return a.exports.Load(ctx, a.cfg.Data.NEOPath, a.cfg.Data.CADPath)
}

// Execute runs the neo command line and exits non-zero on failure
func Execute() {
	cmd := newRootCmd(os.Stderr)
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(logOutput io.Writer) *cobra.Command {
	var (
		configPath string
		neoPath    string
		cadPath    string
		logLevel   string
	)
	a := &app{}

	cmd := &cobra.Command{
		Use:          "neo",
		Short:        "Explore near-Earth objects and their close approaches",
		Long:         "Inspect near-Earth objects and query their close approaches to Earth from the NASA/JPL catalog files,\nprinting results or exporting them to CSV or JSON.",
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("neofile") {
				cfg.Data.NEOPath = neoPath
			}
			if cmd.Flags().Changed("cadfile") {
				cfg.Data.CADPath = cadPath
			}
			if cmd.Flags().Changed("log-level") {
				cfg.Logging.Level = logLevel
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := cfg.ValidateCatalog(); err != nil {
				return err
			}

			logger := logging.NewStructuredLogger(serviceName, version, cfg.LogLevel())
			logger.SetOutput(logOutput)

			// a private registry; the CLI never exposes /metrics
			collector := metrics.NewCollector("neo_cli", prometheus.NewRegistry())

			a.cfg = cfg
			a.logger = logger
			a.exports = services.NewExportService(logger, collector)
			return nil
		},
	}

	cmd.SetVersionTemplate("neo version {{.Version}}\n")
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: neo.yaml in . or ./config)")
	cmd.PersistentFlags().StringVar(&neoPath, "neofile", "", "Path to the NEO catalog CSV (overrides data.neo_path)")
	cmd.PersistentFlags().StringVar(&cadPath, "cadfile", "", "Path to the close approach JSON (overrides data.cad_path)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides logging.level)")

	cmd.AddCommand(inspectCmd(a), queryCmd(a))
	return cmd
}

func printf(w io.Writer, format string, args ...interface{}) {
	_, _ = fmt.Fprintf(w, format, args...)
}
