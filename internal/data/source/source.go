// Package source fetches raw presence events for a device and window.
package source

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/penwyp/go-presence-timeline/internal/core/model"
)

// ErrUnknownSource is returned by New for unsupported source kinds
var ErrUnknownSource = errors.New("unknown source kind")

// Source returns the raw, unsorted, possibly duplicated events of a device.
// window is a YYYY-MM-DD day identifier, or "" for the trailing 24 hours.
type Source interface {
	FetchEvents(ctx context.Context, deviceID, window string) ([]model.PresenceEvent, error)
}

// Kind names a Source implementation
type Kind string

const (
	KindFile   Kind = "file"
	KindHTTP   Kind = "http"
	KindSQLite Kind = "sqlite"
)

// Options configures New
type Options struct {
	Kind     Kind
	DataDir  string
	BaseURL  string
	DBPath   string
	Timeout  time.Duration
	Location *time.Location
}

// New builds the Source selected by opts.Kind
func New(opts Options) (Source, error) {
	switch Kind(strings.ToLower(string(opts.Kind))) {
	case KindFile, "":
		return NewFileSource(opts.DataDir), nil
	case KindHTTP:
		return NewHTTPSource(opts.BaseURL, opts.Timeout)
	case KindSQLite:
		return NewSQLiteSource(opts.DBPath, opts.Location)
	default:
		return nil, fmt.Errorf("%w: %q (use file, http or sqlite)", ErrUnknownSource, opts.Kind)
	}
}

// Close releases resources held by src, if any
func Close(src Source) error {
	if c, ok := src.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
