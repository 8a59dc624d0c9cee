package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gorilla/mux"
	"github.com/olekukonko/tablewriter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wippyai/script-bridge/metrics"
	"github.com/wippyai/script-bridge/uithread"
	"github.com/wippyai/script-bridge/workload"
)

var simulateServe bool

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a workload and report object disposals",
	Long: `Runs concurrent scripting contexts that create event targets and then
release them, leave them to the garbage collector or keep them until the
context closes. Waits for every disposal to reach the UI thread and prints a
per-context report.`,
	RunE: runSimulate,
}

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateCmd.Flags().String("metrics-addr", "", "serve /metrics and /health on this address")
	simulateCmd.Flags().BoolVar(&simulateServe, "serve", false, "keep serving metrics after the run until interrupted")
}

func runSimulate(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	h := workload.NewHarness(ctx, uithread.WithInterval(cfg.Loop.Interval))

	reg := prometheus.NewRegistry()
	metrics.New(reg).Attach(h.Bridge, h.Table)

	var srv *http.Server
	if cfg.Metrics.Addr != "" {
		srv = &http.Server{
			Addr:         cfg.Metrics.Addr,
			Handler:      newMetricsRouter(reg, h),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		}
		go func() {
			logger.Info("metrics server listening", zap.String("addr", cfg.Metrics.Addr))
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics server failed", zap.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
	}

	h.Start(ctx)

	opts := workloadOptions(cfg)
	logger.Info("running workload",
		zap.Int("contexts", opts.Contexts),
		zap.Int("objects", opts.Objects),
		zap.Float64("releaseRatio", opts.ReleaseRatio),
		zap.Float64("collectRatio", opts.CollectRatio))

	report, err := workload.Run(ctx, h.Engine, opts)
	if err != nil {
		h.Stop(context.Background())
		return fmt.Errorf("workload: %w", err)
	}

	settleErr := workload.Settle(ctx, h.Tracker, cfg.Workload.SettleWait)
	if settleErr != nil {
		logger.Warn("workload did not settle", zap.Error(settleErr))
	}

	if simulateServe && srv != nil {
		logger.Info("serving metrics until interrupted")
		<-ctx.Done()
	}

	if err := h.Stop(context.Background()); err != nil {
		return fmt.Errorf("stop: %w", err)
	}

	renderReport(cmd.OutOrStdout(), report, h.Tracker.Counts(), h.Loop.Stats())
	return settleErr
}

// newMetricsRouter serves the Prometheus registry and a health summary of h.
func newMetricsRouter(reg *prometheus.Registry, h *workload.Harness) *mux.Router {
	router := mux.NewRouter()
	router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{})).Methods("GET")
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		counts := h.Tracker.Counts()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"status":      "healthy",
			"created":     counts.Created,
			"disposed":    counts.Disposed,
			"outstanding": counts.Outstanding(),
			"taskQueue":   h.Bridge.Tasks().Len(),
		})
	}).Methods("GET")
	return router
}

func renderReport(w io.Writer, report *workload.Report, counts workload.Counts, stats uithread.Stats) {
	table := tablewriter.NewWriter(w)
	table.Header("Context", "Created", "Released", "Forgotten", "Kept", "Duration")

	for _, c := range report.Contexts {
		table.Append(
			fmt.Sprintf("%d", c.Context),
			fmt.Sprintf("%d", c.Created),
			fmt.Sprintf("%d", c.Released),
			fmt.Sprintf("%d", c.Forgotten),
			fmt.Sprintf("%d", c.Kept),
			c.Duration.Round(time.Microsecond).String(),
		)
	}
	t := report.Totals()
	table.Append(
		"total",
		fmt.Sprintf("%d", t.Created),
		fmt.Sprintf("%d", t.Released),
		fmt.Sprintf("%d", t.Forgotten),
		fmt.Sprintf("%d", t.Kept),
		t.Duration.Round(time.Microsecond).String(),
	)
	table.Render()

	fmt.Fprintf(w, "\nDisposals: %d release, %d collector, %d context (%d of %d applied on the UI thread)\n",
		counts.Release, counts.Collector, counts.Context, counts.Disposed, counts.Created)
	fmt.Fprintf(w, "UI loop: %d flushes, %d tasks, %d commands, %d failures\n",
		stats.Flushes, stats.Tasks, stats.Commands, stats.Failures)
}
