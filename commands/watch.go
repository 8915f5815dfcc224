package commands

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/penwyp/go-presence-timeline/internal/application/watch"
	"github.com/penwyp/go-presence-timeline/internal/data/source"
	"github.com/penwyp/go-presence-timeline/internal/presentation/layout"
	"github.com/penwyp/go-presence-timeline/internal/util"
	"github.com/spf13/cobra"
)

type watchOptions struct {
	devices       []string
	date          string
	rolling       bool
	uiRefreshRate float64
	layoutStyle   string
	noWatch       bool
	noColor       bool
}

func newWatchCmd(global *globalOptions) *cobra.Command {
	opts := &watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Live presence timelines in the terminal",
		Long: `Shows every device's timeline and refetches it periodically.

Keys:
  [ / ]   previous / next day       t   today
  l       last 24 hours             r   refresh now
  j / k   select device             d   interval details
  v       switch layout             ?   help
  q       quit`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, global, opts)
		},
	}

	cmd.Flags().StringSliceVar(&opts.devices, "device", nil,
		"Device ID (MAC) or configured name; repeatable")
	cmd.Flags().StringVar(&opts.date, "date", "",
		"Initial day as YYYY-MM-DD (default: today)")
	cmd.Flags().BoolVar(&opts.rolling, "rolling", false,
		"Start on the last 24 hours")
	cmd.Flags().Duration("interval", 0,
		"Data refresh interval (0 = config or 60s)")
	cmd.Flags().Float64Var(&opts.uiRefreshRate, "refresh-per-second", 1,
		"Display refresh rate (0.1-20 Hz)")
	cmd.Flags().StringVar(&opts.layoutStyle, "layout", "full",
		"Layout style (full, compact)")
	cmd.Flags().BoolVar(&opts.noWatch, "no-watch", false,
		"Do not watch history files for changes")
	cmd.Flags().BoolVar(&opts.noColor, "no-color", false,
		"Disable ANSI colors")

	return cmd
}

func parseLayoutStyle(name string) (int, error) {
	switch strings.ToLower(name) {
	case "", "full":
		return layout.StyleFull, nil
	case "compact":
		return layout.StyleCompact, nil
	default:
		return 0, fmt.Errorf("invalid layout '%s': must be either 'full' or 'compact'", name)
	}
}

func runWatch(cmd *cobra.Command, global *globalOptions, opts *watchOptions) error {
	// Validate refresh rate
	if opts.uiRefreshRate < 0.1 || opts.uiRefreshRate > 20 {
		return fmt.Errorf("refresh-per-second must be between 0.1 and 20")
	}
	style, err := parseLayoutStyle(opts.layoutStyle)
	if err != nil {
		return err
	}

	cfg, err := setup(cmd, global)
	if err != nil {
		return err
	}

	tp := util.GetTimeProvider()
	window, err := resolveWindow(opts.date, opts.rolling)
	if err != nil {
		return err
	}

	src, err := source.New(cfg.SourceOptions(tp.Location()))
	if err != nil {
		return err
	}
	defer source.Close(src)

	// Set up signal handling
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	devices, err := resolveDevices(ctx, cfg, src, opts.devices)
	if err != nil {
		return err
	}

	watchDir := ""
	if fs, ok := src.(*source.FileSource); ok && !opts.noWatch {
		watchDir = fs.Dir()
		if err := ensureDir(watchDir); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	wcfg := &watch.WatchConfig{
		Devices:         devices,
		Window:          window,
		RefreshInterval: cfg.RefreshInterval,
		UIRefreshRate:   time.Duration(float64(time.Second) / opts.uiRefreshRate),
		VisibleRows:     cfg.VisibleRows(),
		Color:           !opts.noColor,
		LayoutStyle:     style,
		WatchDir:        watchDir,
		Location:        tp.Location(),
	}

	cached := source.NewCachedSource(src, nil, tp.Location(), source.DefaultCacheTTL)
	orchestrator, err := watch.NewOrchestrator(wcfg, cached, nil)
	if err != nil {
		return err
	}
	return orchestrator.Run(ctx)
}
