// OpenClimate - command line access to the OpenClimate actor API.
// Fetches emissions, population, GDP and target tables for actors and
// exports them to files, object storage or databases.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/openearth/openclimate/pkg/client"
	"github.com/openearth/openclimate/pkg/config"
	"github.com/openearth/openclimate/pkg/diag"
	"github.com/openearth/openclimate/pkg/telemetry"
	"github.com/openearth/openclimate/pkg/tui"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

// Global flags
var (
	configFile   string
	baseURL      string
	apiVersion   string
	timeout      time.Duration
	concurrency  int
	formatFlag   string
	outputDir    string
	compression  string
	quiet        bool
	verbose      bool
	maxRows      int
	s3Bucket     string
	redisAddr    string
	duckdbPath   string
	postgresDSN  string
	otlpEndpoint string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		tui.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "openclimate",
	Short: "OpenClimate - Fetch climate data for actors",
	Long: `openclimate queries the OpenClimate API for countries, regions, cities and
companies ("actors") and turns their overviews into tables.

Tables are printed to the terminal by default, or written as CSV, JSON,
Parquet, Arrow or XLSX to a directory or S3 bucket. They can also be saved
into Redis, DuckDB or Postgres.

Examples:
  openclimate emissions US CA
  openclimate population US --format parquet --output ./data
  openclimate countries --like "united"
  openclimate search --name Minnesota`,
	Version:       fmt.Sprintf("%s (%s)", version, commit),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "Config file (default: ~/.openclimate/config.yaml, ./.openclimate.yaml)")
	pf.StringVar(&baseURL, "base-url", "", "API base URL")
	pf.StringVar(&apiVersion, "api-version", "", "API version path (e.g. /api/v1)")
	pf.DurationVar(&timeout, "timeout", 0, "Per-request timeout")
	pf.IntVar(&concurrency, "concurrency", 0, "Maximum concurrent requests (0 = unlimited)")
	pf.StringVarP(&formatFlag, "format", "f", "", "Output format (table, csv, json, parquet, arrow, xlsx)")
	pf.StringVarP(&outputDir, "output", "o", "", "Output directory (default: stdout for table, csv and json)")
	pf.StringVar(&compression, "compression", "", "Parquet/Arrow compression (none, snappy, gzip, zstd, lz4)")
	pf.BoolVarP(&quiet, "quiet", "q", false, "Suppress warnings and progress")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	pf.IntVar(&maxRows, "max-rows", 50, "Rows to print in table format (0 = all)")
	pf.StringVar(&s3Bucket, "s3", "", "Also upload to this S3 bucket")
	pf.StringVar(&redisAddr, "redis", "", "Also save tables to this Redis server")
	pf.StringVar(&duckdbPath, "duckdb", "", "Also save tables to this DuckDB file")
	pf.StringVar(&postgresDSN, "postgres", "", "Also save tables to this Postgres DSN")
	pf.StringVar(&otlpEndpoint, "otlp", "", "Export traces to this OTLP gRPC endpoint")

	rootCmd.AddCommand(emissionsCmd, datasetsCmd, populationCmd, gdpCmd, targetsCmd)
	rootCmd.AddCommand(overviewCmd, partsCmd, countriesCmd, searchCmd)
	rootCmd.AddCommand(watchCmd, configCmd)
}

// loadManager layers config files, .env and the environment, then applies
// any global flags the user set explicitly.
func loadManager(cmd *cobra.Command) (*config.Manager, error) {
	var opts []config.ManagerOption
	if configFile != "" {
		if _, err := os.Stat(configFile); err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
		opts = append(opts, config.WithPaths(configFile))
	}
	m := config.NewManager(opts...)
	if err := m.Load(); err != nil {
		return nil, err
	}
	applyFlags(cmd, m.Get())
	return m, nil
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	m, err := loadManager(cmd)
	if err != nil {
		return nil, err
	}
	cfg := m.Get()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("base-url") {
		cfg.API.BaseURL = baseURL
	}
	if flags.Changed("api-version") {
		cfg.API.Version = apiVersion
	}
	if flags.Changed("timeout") {
		cfg.API.Timeout = timeout
	}
	if flags.Changed("concurrency") {
		cfg.API.MaxConcurrency = concurrency
	}
	if flags.Changed("format") {
		cfg.Output.Format = formatFlag
	}
	if flags.Changed("output") {
		cfg.Output.Dir = outputDir
	}
	if flags.Changed("compression") {
		cfg.Output.Compression = compression
	}
	if flags.Changed("quiet") {
		cfg.API.IgnoreWarnings = quiet
	}
	if flags.Changed("s3") {
		cfg.Storage.S3.Bucket = s3Bucket
	}
	if flags.Changed("redis") {
		cfg.Storage.Redis.Address = redisAddr
	}
	if flags.Changed("duckdb") {
		cfg.Storage.DuckDB.Path = duckdbPath
	}
	if flags.Changed("postgres") {
		cfg.Storage.Postgres.DSN = postgresDSN
	}
	if flags.Changed("otlp") {
		cfg.Telemetry.Endpoint = otlpEndpoint
		cfg.Telemetry.Enabled = otlpEndpoint != ""
	}
}

// session bundles what every data command needs.
type session struct {
	cfg      *config.Config
	client   *client.Client
	warnings *diag.Collector
	progress *tui.Progress
	shutdown func(context.Context) error
}

func newSession(ctx context.Context, cmd *cobra.Command) (*session, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	shutdown, err := telemetry.Setup(ctx, cfg.Telemetry, version)
	if err != nil {
		return nil, fmt.Errorf("failed to start telemetry: %w", err)
	}

	s := &session{
		cfg:      cfg,
		warnings: diag.NewCollector(),
		shutdown: shutdown,
	}

	opts := []client.Option{client.WithSink(s.warnings)}
	if !quiet {
		s.progress = tui.NewProgress(os.Stderr, "fetching")
		opts = append(opts, client.WithProgress(s.progress.Update))
	}

	s.client, err = client.New(cfg, opts...)
	if err != nil {
		shutdown(ctx)
		return nil, err
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "Server: %s\n", s.client.Server())
	}
	return s, nil
}

// Close flushes telemetry and prints collected warnings.
func (s *session) Close() {
	if !quiet {
		tui.PrintDiagnostics(os.Stderr, s.warnings.All())
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.shutdown(ctx); err != nil && verbose {
		fmt.Fprintf(os.Stderr, "telemetry shutdown: %v\n", err)
	}
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigChan:
			fmt.Fprintln(os.Stderr, "\nInterrupted, cancelling requests...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()

	return ctx, cancel
}
