package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/penwyp/go-presence-timeline/internal/application/refresh"
	"github.com/penwyp/go-presence-timeline/internal/config"
	"github.com/penwyp/go-presence-timeline/internal/core/model"
	"github.com/penwyp/go-presence-timeline/internal/core/timeline"
	"github.com/penwyp/go-presence-timeline/internal/data/source"
	"github.com/penwyp/go-presence-timeline/internal/presentation/formatter"
	"github.com/penwyp/go-presence-timeline/internal/presentation/interaction"
	"github.com/penwyp/go-presence-timeline/internal/presentation/layout"
	"github.com/penwyp/go-presence-timeline/internal/util"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// globalOptions are the persistent flags shared by every command
type globalOptions struct {
	configFile string
	debug      bool
}

// showOptions are the flags of the root (show) command
type showOptions struct {
	devices      []string
	date         string
	rolling      bool
	outputFormat string
	sortBy       string
	descending   bool
	width        int
	noColor      bool
}

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	global := &globalOptions{}
	show := &showOptions{}

	cmd := &cobra.Command{
		Use:   "go-presence-timeline [flags]",
		Short: "Device presence timeline viewer",
		Long: `go-presence-timeline reconstructs when network devices were online or offline.

It reads presence-change history from JSONL files, a history HTTP backend or a
SQLite database, and shows one day (or the last 24 hours) per device as a bar
on a 00:00-24:00 axis, a table, JSON or CSV.

Examples:
  go-presence-timeline                                  # Today, every device in the data directory
  go-presence-timeline --device aa:bb:cc:dd:ee:ff       # One device
  go-presence-timeline --date 2024-05-01 -o table       # A past day as a table
  go-presence-timeline --rolling -o json                # Last 24 hours as JSON
  go-presence-timeline --source http --base-url http://nas:8080
  go-presence-timeline watch                            # Live view
  go-presence-timeline serve --listen :8086             # HTTP API`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd, global, show)
		},
	}

	addGlobalFlags(cmd, global)

	cmd.Flags().StringSliceVar(&show.devices, "device", nil,
		"Device ID (MAC) or configured name; repeatable (default: configured or discovered devices)")
	cmd.Flags().StringVar(&show.date, "date", "",
		"Day to show as YYYY-MM-DD (default: today)")
	cmd.Flags().BoolVar(&show.rolling, "rolling", false,
		"Show the last 24 hours instead of a calendar day")
	cmd.Flags().StringVarP(&show.outputFormat, "output", "o", formatter.FormatBar,
		"Output format (bar, table, intervals, json, csv, summary)")
	cmd.Flags().StringVar(&show.outputFormat, "format", "",
		"Alias for --output")
	cmd.Flags().StringVar(&show.sortBy, "sort", "name",
		"Sort devices by (name, online, changes)")
	cmd.Flags().BoolVar(&show.descending, "desc", false,
		"Sort in descending order")
	cmd.Flags().IntVar(&show.width, "width", 0,
		"Line width for bar output (0 = terminal width)")
	cmd.Flags().BoolVar(&show.noColor, "no-color", false,
		"Disable ANSI colors")

	cmd.AddCommand(newWatchCmd(global), newServeCmd(global))
	return cmd
}

func addGlobalFlags(cmd *cobra.Command, global *globalOptions) {
	pf := cmd.PersistentFlags()

	pf.StringVar(&global.configFile, "config", "",
		"Config file (default: ./config.yaml or ~/.go-presence-timeline/config.yaml)")

	// Event source
	pf.String("source", "file", "Event source (file, http, sqlite)")
	pf.String("dir", config.DefaultDataDir, "Directory of <device>.jsonl history files")
	pf.String("base-url", "", "History backend base URL for the http source")
	pf.String("db", config.DefaultDBPath, "SQLite database path for the sqlite source")
	pf.Duration("http-timeout", 0, "HTTP source request timeout (0 = default)")

	// Display and time
	pf.String("timezone", "Local", "Timezone setting (e.g., Asia/Shanghai, UTC)")
	pf.Int("rows", 0, "Maximum devices shown (0 = preference or default)")
	pf.Int("concurrency", 0, "Concurrent device fetches (0 = default)")

	// System and debugging
	pf.BoolVar(&global.debug, "debug", false, "Enable debug mode")
	pf.String("log-level", "info", "Log level (debug, info, warn, error)")
}

// setup loads configuration and initialises logging and the time provider
func setup(cmd *cobra.Command, global *globalOptions) (*config.Config, error) {
	cfg, err := config.Load(config.LoadOptions{
		ConfigFile: global.configFile,
		Flags:      cmd.Flags(),
	})
	if err != nil {
		return nil, err
	}

	logLevel := cfg.LogLevel
	if global.debug {
		logLevel = "debug"
	}
	if err := ensureDir(filepath.Dir(cfg.LogFile)); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	if err := util.InitLogger(util.LoggerOptions{
		Level:          logLevel,
		File:           cfg.LogFile,
		DebugToConsole: global.debug,
	}); err != nil {
		return nil, err
	}
	if err := util.InitializeTimeProvider(cfg.Timezone); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolveDevices picks explicit, configured or discovered devices, limited
// to the visible-row preference
func resolveDevices(ctx context.Context, cfg *config.Config, src source.Source, ids []string) ([]model.Device, error) {
	devices := cfg.ResolveDevices(ids)
	if len(devices) == 0 {
		discovered, err := source.Discover(ctx, src)
		if err != nil {
			return nil, fmt.Errorf("failed to discover devices: %w", err)
		}
		devices = discovered
	}
	if len(devices) == 0 {
		return nil, errors.New("no devices found: pass --device or list devices in the config file")
	}
	return interaction.LimitDevices(devices, cfg.VisibleRows()), nil
}

// resolveWindow returns the rolling window, the given day, or today
func resolveWindow(date string, rolling bool) (timeline.TargetWindow, error) {
	tp := util.GetTimeProvider()
	if rolling {
		return timeline.Rolling(), nil
	}
	if date == "" || strings.EqualFold(date, "today") {
		return timeline.Day(tp.Now()), nil
	}
	return timeline.ParseWindow(date, tp.Location())
}

func runShow(cmd *cobra.Command, global *globalOptions, show *showOptions) error {
	// Handle format alias
	if format := cmd.Flags().Lookup("format"); format != nil && format.Changed {
		show.outputFormat = format.Value.String()
	}

	cfg, err := setup(cmd, global)
	if err != nil {
		return err
	}

	tp := util.GetTimeProvider()
	window, err := resolveWindow(show.date, show.rolling)
	if err != nil {
		return err
	}

	src, err := source.New(cfg.SourceOptions(tp.Location()))
	if err != nil {
		return err
	}
	defer source.Close(src)

	ctx := cmd.Context()
	devices, err := resolveDevices(ctx, cfg, src, show.devices)
	if err != nil {
		return err
	}

	results, err := refresh.LoadAll(ctx, refresh.BatchRequest{
		Source:        src,
		Reconstructor: timeline.NewReconstructor(tp.Location()),
		Devices:       devices,
		Window:        window,
		Now:           tp.Now(),
		Concurrency:   cfg.Concurrency,
	})
	if err != nil {
		return err
	}

	rows := sortedRows(results, window, show)

	out := cmd.OutOrStdout()
	f, err := formatter.New(show.outputFormat, formatter.Options{
		Width: outputWidth(show.width, out),
		Color: !show.noColor && isTerminal(out),
	})
	if err != nil {
		return err
	}
	return f.Format(out, rows)
}

func sortedRows(results []refresh.DeviceTimeline, window timeline.TargetWindow, show *showOptions) []formatter.TimelineRow {
	sortable := make([]interaction.Sortable, len(results))
	for i, r := range results {
		sortable[i] = interaction.Sortable{Device: r.Device, Summary: r.Summary}
	}
	order := interaction.SortAscending
	if show.descending {
		order = interaction.SortDescending
	}
	sorter := interaction.NewDeviceSorter(interaction.ParseSortField(show.sortBy), order)

	rows := make([]formatter.TimelineRow, 0, len(results))
	for _, i := range sorter.Order(sortable) {
		r := results[i]
		rows = append(rows, formatter.TimelineRow{
			Device:     r.Device,
			Window:     window.String(),
			EventCount: r.EventCount,
			Summary:    r.Summary,
			Intervals:  r.Intervals,
		})
	}
	return rows
}

func outputWidth(flagWidth int, out io.Writer) int {
	if flagWidth > 0 {
		return layout.ClampWidth(flagWidth)
	}
	if isTerminal(out) {
		return layout.ClampWidth(layout.Sizer{}.TerminalWidth())
	}
	return 80
}

func isTerminal(out io.Writer) bool {
	f, ok := out.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func Execute() error {
	return rootCmd.Execute()
}

// Helper functions

func ensureDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}
