package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/psantana5/elapsed/internal/probe"
	"github.com/psantana5/elapsed/pkg/elapsed"
	"github.com/psantana5/elapsed/pkg/metrics"
	"github.com/psantana5/elapsed/pkg/shutdown"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var watchCount int

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Log elapsed readings periodically",
	Long: `Logs the elapsed clock every interval until interrupted. With --metrics-addr
the clock is also served at /metrics in Prometheus text format.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().Duration("interval", time.Second, "time between readings")
	watchCmd.Flags().String("metrics-addr", "", "serve Prometheus metrics on this address")
	watchCmd.Flags().IntVar(&watchCount, "count", 0, "stop after this many readings (0 runs until interrupted)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	interval := viper.GetDuration("interval")
	if interval <= 0 {
		return fmt.Errorf("interval must be positive, got %v", interval)
	}

	runLog := logger.WithField("run_id", uuid.NewString())
	mgr := shutdown.New(5*time.Second, runLog)

	collector := metrics.NewCollector("elapsed")
	if res, err := probe.Run(cmd.Context(), elapsed.Active(), 1000); err == nil {
		collector.SetResolution(elapsed.Active(), res.Resolution)
	} else {
		runLog.Warn("Clock probe failed", map[string]interface{}{"error": err.Error()})
	}

	if addr := viper.GetString("metrics_addr"); addr != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collector)

		ln, err := net.Listen("tcp", addr)
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", addr, err)
		}
		srv := &http.Server{
			Handler:           metrics.NewRouter(reg),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				runLog.Error("Metrics server stopped", map[string]interface{}{"error": err.Error()})
				mgr.Trigger()
			}
		}()
		mgr.Register("metrics server", shutdown.StopHTTPServer(srv))
		runLog.Info("Serving metrics", map[string]interface{}{"addr": ln.Addr().String()})
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	go mgr.Wait(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	runLog.Info("Watching elapsed clock", map[string]interface{}{
		"source":   elapsed.Active().String(),
		"interval": interval.String(),
	})

	n := 0
loop:
	for {
		select {
		case <-ticker.C:
			n++
			runLog.Info("tick", map[string]interface{}{
				"seconds":  elapsed.Seconds(),
				"failures": elapsed.Failures(),
			})
			if watchCount > 0 && n >= watchCount {
				break loop
			}
		case <-mgr.Done():
			break loop
		case <-ctx.Done():
			break loop
		}
	}

	return mgr.Shutdown()
}
