package commands

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/penwyp/go-presence-timeline/internal/core/timeline"
	"github.com/penwyp/go-presence-timeline/internal/data/source"
	"github.com/penwyp/go-presence-timeline/internal/metrics"
	"github.com/penwyp/go-presence-timeline/internal/server"
	"github.com/penwyp/go-presence-timeline/internal/util"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newServeCmd(global *globalOptions) *cobra.Command {
	var devices []string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve reconstructed timelines over HTTP",
		Long: `Starts an HTTP server with:
  GET /api/timeline                   all devices (?date=YYYY-MM-DD, default last 24h)
  GET /api/timeline/{device}          one device
  GET /healthz                        liveness
  GET /metrics                        prometheus metrics`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, global, devices)
		},
	}

	cmd.Flags().StringSliceVar(&devices, "device", nil,
		"Devices listed by /api/timeline (default: configured or discovered)")
	cmd.Flags().String("listen", "127.0.0.1:8086",
		"Listen address for the API")
	cmd.Flags().String("metrics-addr", "",
		"Separate listen address for /metrics (empty = serve on the API address)")

	return cmd
}

func runServe(cmd *cobra.Command, global *globalOptions, ids []string) error {
	cfg, err := setup(cmd, global)
	if err != nil {
		return err
	}

	tp := util.GetTimeProvider()
	src, err := source.New(cfg.SourceOptions(tp.Location()))
	if err != nil {
		return err
	}
	defer source.Close(src)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	devices, err := resolveDevices(ctx, cfg, src, ids)
	if err != nil {
		util.LogWarn("Serving without a device list", util.F("error", err.Error()))
		devices = nil
	}

	m := metrics.New()
	srv, err := server.New(server.Options{
		Source:        source.NewCachedSource(src, nil, tp.Location(), source.DefaultCacheTTL),
		Reconstructor: timeline.NewReconstructor(tp.Location()),
		Devices:       devices,
		Metrics:       m,
		Concurrency:   cfg.Concurrency,
	})
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.ListenAndServe(gctx, cfg.ListenAddr)
	})
	if cfg.MetricsAddr != "" {
		g.Go(func() error {
			return serveMetrics(gctx, cfg.MetricsAddr, m)
		})
	}
	return g.Wait()
}

func serveMetrics(ctx context.Context, addr string, m *metrics.Metrics) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	util.LogInfo("Metrics listening", util.F("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
