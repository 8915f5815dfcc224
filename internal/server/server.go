// Package server exposes reconstructed timelines over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/mux"
	"github.com/jonboulle/clockwork"
	"github.com/penwyp/go-presence-timeline/internal/application/refresh"
	"github.com/penwyp/go-presence-timeline/internal/core/model"
	"github.com/penwyp/go-presence-timeline/internal/core/timeline"
	"github.com/penwyp/go-presence-timeline/internal/data/source"
	"github.com/penwyp/go-presence-timeline/internal/metrics"
	"github.com/penwyp/go-presence-timeline/internal/presentation/formatter"
	"github.com/penwyp/go-presence-timeline/internal/util"
)

const shutdownTimeout = 5 * time.Second

// Options configures a Server
type Options struct {
	Source        source.Source
	Reconstructor *timeline.Reconstructor
	Devices       []model.Device
	Clock         clockwork.Clock
	Metrics       *metrics.Metrics
	Concurrency   int
}

// Server serves timeline JSON, health and metrics endpoints
type Server struct {
	opts   Options
	router *mux.Router
}

type errorResponse struct {
	Error string `json:"error"`
}

// New builds the router
func New(opts Options) (*Server, error) {
	if opts.Source == nil {
		return nil, errors.New("source is required")
	}
	if opts.Reconstructor == nil {
		opts.Reconstructor = timeline.NewReconstructor(util.GetTimeProvider().Location())
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}

	s := &Server{opts: opts, router: mux.NewRouter()}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	m := s.opts.Metrics
	s.router.Handle("/api/timeline", m.WrapHandler("timelines", http.HandlerFunc(s.handleTimelines))).Methods(http.MethodGet)
	s.router.Handle("/api/timeline/{device}", m.WrapHandler("timeline", http.HandlerFunc(s.handleTimeline))).Methods(http.MethodGet)
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	s.router.Handle("/metrics", m.Handler()).Methods(http.MethodGet)
}

// Handler returns the root handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		util.LogInfo("HTTP server listening", util.F("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		util.LogInfo("Shutting down HTTP server")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown: %w", err)
		}
		return nil
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	window, ok := s.parseWindow(w, r)
	if !ok {
		return
	}
	device := s.resolve(mux.Vars(r)["device"])

	events, err := s.opts.Source.FetchEvents(r.Context(), device.ID, window.ID())
	if err != nil {
		util.LogError("Timeline fetch failed", util.F("device", device.ID), util.F("error", err.Error()))
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
		return
	}

	intervals := s.opts.Reconstructor.Reconstruct(events, window, s.now())
	writeJSON(w, http.StatusOK, formatter.TimelineRow{
		Device:     device,
		Window:     window.String(),
		EventCount: len(events),
		Summary:    timeline.Summarize(intervals),
		Intervals:  intervals,
	})
}

// handleTimelines reconstructs every configured device
func (s *Server) handleTimelines(w http.ResponseWriter, r *http.Request) {
	window, ok := s.parseWindow(w, r)
	if !ok {
		return
	}

	results, err := refresh.LoadAll(r.Context(), refresh.BatchRequest{
		Source:        s.opts.Source,
		Reconstructor: s.opts.Reconstructor,
		Devices:       s.opts.Devices,
		Window:        window,
		Now:           s.now(),
		Concurrency:   s.opts.Concurrency,
	})
	if err != nil {
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
		return
	}

	rows := make([]formatter.TimelineRow, 0, len(results))
	for _, res := range results {
		rows = append(rows, formatter.TimelineRow{
			Device:     res.Device,
			Window:     window.String(),
			EventCount: res.EventCount,
			Summary:    res.Summary,
			Intervals:  res.Intervals,
		})
	}
	writeJSON(w, http.StatusOK, rows)
}

// parseWindow reads ?date=; absent means rolling
func (s *Server) parseWindow(w http.ResponseWriter, r *http.Request) (timeline.TargetWindow, bool) {
	window, err := timeline.ParseWindow(r.URL.Query().Get("date"), s.opts.Reconstructor.Location())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return timeline.TargetWindow{}, false
	}
	return window, true
}

func (s *Server) resolve(id string) model.Device {
	for _, d := range s.opts.Devices {
		if strings.EqualFold(d.ID, id) || (d.Name != "" && strings.EqualFold(d.Name, id)) {
			return d
		}
	}
	return model.Device{ID: id}
}

func (s *Server) now() time.Time {
	return s.opts.Clock.Now().In(s.opts.Reconstructor.Location())
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	data, err := sonic.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
