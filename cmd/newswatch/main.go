package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/deusflow/newswatch/internal/app"
	"github.com/deusflow/newswatch/internal/config"
	"github.com/deusflow/newswatch/internal/logger"
	"github.com/deusflow/newswatch/internal/metrics"
	"github.com/deusflow/newswatch/internal/news"
)

var (
	version = "dev"
	commit  = "none"
)

var (
	flagConfig  string
	flagDryRun  bool
	flagDebug   bool
	flagMonitor bool
)

var rootCmd = &cobra.Command{
	Use:           "newswatch",
	Short:         "Keyword news collector",
	Long:          "newswatch fetches keyword news feeds, stores new articles per day and posts them to a webhook.",
	RunE:          runCollect,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Perform one collection run",
	RunE:  runCollect,
}

var checkStoreCmd = &cobra.Command{
	Use:   "check-store [day]",
	Short: "Report how many fingerprints are stored for a day (default today, KST)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCheckStore,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("newswatch %s (commit: %s)\n", version, commit)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to the keyword file (default KEYWORDS_FILE or configs/keywords.yaml)")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")
	for _, c := range []*cobra.Command{rootCmd, runCmd} {
		c.Flags().BoolVar(&flagDryRun, "dry-run", false, "read the store but do not write rows or notify")
		c.Flags().BoolVar(&flagMonitor, "monitor", false, "serve /health and /metrics while running")
	}

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(checkStoreCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		logger.Error("newswatch failed", "error", err)
		os.Exit(1)
	}
}

func loadConfig(requireSink bool) (*config.Config, error) {
	if flagDryRun || !requireSink {
		os.Setenv("DRY_RUN", "true")
	}
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if flagDebug {
		cfg.Debug = true
	}
	logger.Init(cfg.Debug, cfg.LogFormat)
	return cfg, nil
}

func runCollect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(true)
	if err != nil {
		return err
	}

	if flagMonitor || os.Getenv("ENABLE_HTTP_MONITORING") == "true" {
		go startMonitoringServer()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting run", "keywords", len(cfg.Keywords), "store", cfg.StoreBackend, "dry_run", cfg.DryRun)
	res, err := app.Run(ctx, cfg)
	if err != nil {
		return err
	}
	logger.Info("run finished",
		"day", res.Day,
		"fetched", res.Fetched,
		"unique", res.Unique,
		"new", len(res.Fresh),
		"notified", res.Notified,
	)
	return nil
}

func runCheckStore(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(false)
	if err != nil {
		return err
	}

	day := news.Day(time.Now())
	if len(args) == 1 {
		if _, err := time.Parse(news.DateLayout, args[0]); err != nil {
			return fmt.Errorf("day must look like %s: %w", news.DateLayout, err)
		}
		day = args[0]
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	defer cancel()

	store, err := app.OpenStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("opening %s store: %w", cfg.StoreBackend, err)
	}
	defer store.Close()

	known, err := store.ReadFingerprints(ctx, day)
	if err != nil {
		return fmt.Errorf("%w for %s: %w", news.ErrStoreRead, day, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s store ok: %d fingerprints stored for %s\n", cfg.StoreBackend, len(known), day)
	return nil
}

func newMonitoringMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)
	mux.HandleFunc("/metrics", metricsHandler)
	return mux
}

func startMonitoringServer() {
	port := os.Getenv("MONITORING_PORT")
	if port == "" {
		port = "8080"
	}

	logger.Info("starting monitoring server", "port", port)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           newMonitoringMux(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("monitoring server error", "error", err)
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	stats := metrics.Global.GetStats()

	status := "ok"
	code := http.StatusOK
	if !stats["is_healthy"].(bool) {
		status = "error"
		code = http.StatusServiceUnavailable
	}

	response := map[string]interface{}{
		"status":     status,
		"last_run":   stats["last_run_time"],
		"last_error": stats["last_error"],
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(response)
}

func metricsHandler(w http.ResponseWriter, r *http.Request) {
	stats := metrics.Global.GetStats()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}
