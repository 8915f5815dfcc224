package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/penwyp/go-presence-timeline/internal/core/model"
	"github.com/penwyp/go-presence-timeline/internal/util"
)

const historyExt = ".jsonl"

// Discoverer lists the device IDs a source holds history for
type Discoverer interface {
	ListDevices(ctx context.Context) ([]string, error)
}

// Discover returns the devices src knows about, or nil when src cannot enumerate them
func Discover(ctx context.Context, src Source) ([]model.Device, error) {
	d, ok := src.(Discoverer)
	if !ok {
		return nil, nil
	}
	ids, err := d.ListDevices(ctx)
	if err != nil {
		return nil, err
	}
	devices := make([]model.Device, 0, len(ids))
	for _, id := range ids {
		devices = append(devices, model.Device{ID: id})
	}
	return devices, nil
}

// ListDevices scans the directory for history files. The device ID is the
// file name without extension, which FileNameFor maps back to the same file.
func (s *FileSource) ListDevices(ctx context.Context) ([]string, error) {
	start := time.Now()
	util.LogDebug(fmt.Sprintf("Start scanning directory: %s", s.dir))

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("scanning %s: %w", s.dir, err)
	}

	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(name), historyExt) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, filepath.Ext(name)))
	}
	sort.Strings(ids)

	util.LogDebug(fmt.Sprintf("File scan completed: duration %v, scanned %d entries, found %d history files",
		time.Since(start), len(entries), len(ids)))
	return ids, nil
}

// ListDevices returns the distinct MAC addresses in the history table
func (s *SQLiteSource) ListDevices(ctx context.Context) ([]string, error) {
	var ids []string
	if err := s.db.WithContext(ctx).Model(&HistoryRow{}).Distinct("mac").Order("mac").Pluck("mac", &ids).Error; err != nil {
		return nil, fmt.Errorf("listing devices: %w", err)
	}
	return ids, nil
}
