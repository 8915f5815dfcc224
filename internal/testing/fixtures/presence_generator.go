// Package fixtures writes presence history files for tests.
package fixtures

import (
	"bufio"
	"os"
	"path/filepath"
	"time"

	"github.com/bytedance/sonic"
	"github.com/penwyp/go-presence-timeline/internal/core/constants"
	"github.com/penwyp/go-presence-timeline/internal/core/model"
	"github.com/penwyp/go-presence-timeline/internal/data/source"
)

// Change is one status report at an offset from a base time
type Change struct {
	After  time.Duration
	Online bool
}

// TestDataGenerator generates JSONL host-history files, one per device
type TestDataGenerator struct {
	baseDir string
	iface   string
	ip      string
}

// NewTestDataGenerator creates a new test data generator
func NewTestDataGenerator(baseDir string) *TestDataGenerator {
	return &TestDataGenerator{
		baseDir: baseDir,
		iface:   "wlan0",
		ip:      "192.168.1.20",
	}
}

// GetBaseDir returns the base directory
func (g *TestDataGenerator) GetBaseDir() string {
	return g.baseDir
}

// Record builds a host-history record at t
func (g *TestDataGenerator) Record(t time.Time, online bool) source.HostRecord {
	now := 0
	if online {
		now = 1
	}
	return source.HostRecord{
		Iface: g.iface,
		IP:    g.ip,
		Date:  t.Format(constants.TimestampLayout),
		Known: model.KnownYes,
		Now:   now,
	}
}

// GenerateChanges writes one record per change, relative to base
func (g *TestDataGenerator) GenerateChanges(deviceID string, base time.Time, changes ...Change) error {
	records := make([]source.HostRecord, 0, len(changes))
	for _, c := range changes {
		records = append(records, g.Record(base.Add(c.After), c.Online))
	}
	return g.WriteRecords(deviceID, records)
}

// GenerateSimpleDay writes an on at 08:00 and an off at 12:30
func (g *TestDataGenerator) GenerateSimpleDay(deviceID string, day time.Time) error {
	return g.GenerateChanges(deviceID, day,
		Change{After: 8 * time.Hour, Online: true},
		Change{After: 12*time.Hour + 30*time.Minute, Online: false},
	)
}

// GenerateFlapping writes n alternating reports every step from start, in
// reverse order so consumers must sort
func (g *TestDataGenerator) GenerateFlapping(deviceID string, start time.Time, n int, step time.Duration) error {
	records := make([]source.HostRecord, 0, n)
	for i := n - 1; i >= 0; i-- {
		records = append(records, g.Record(start.Add(time.Duration(i)*step), i%2 == 0))
	}
	return g.WriteRecords(deviceID, records)
}

// CreateEmptyDevice creates an empty history file
func (g *TestDataGenerator) CreateEmptyDevice(deviceID string) error {
	return g.writeLines(deviceID, nil)
}

// WriteRecords encodes records as JSON lines into the device file
func (g *TestDataGenerator) WriteRecords(deviceID string, records []source.HostRecord) error {
	lines := make([]string, 0, len(records))
	for _, r := range records {
		data, err := sonic.Marshal(r)
		if err != nil {
			return err
		}
		lines = append(lines, string(data))
	}
	return g.writeLines(deviceID, lines)
}

// AppendRawLines appends lines verbatim, for malformed-input cases
func (g *TestDataGenerator) AppendRawLines(deviceID string, lines ...string) error {
	f, err := os.OpenFile(g.pathFor(deviceID), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, line := range lines {
		if _, err := w.WriteString(line + "\n"); err != nil {
			return err
		}
	}
	return w.Flush()
}

// CleanupTestData removes all test data
func (g *TestDataGenerator) CleanupTestData() error {
	return os.RemoveAll(g.baseDir)
}

func (g *TestDataGenerator) pathFor(deviceID string) string {
	return filepath.Join(g.baseDir, source.FileNameFor(deviceID))
}

func (g *TestDataGenerator) writeLines(deviceID string, lines []string) error {
	if err := os.MkdirAll(g.baseDir, 0755); err != nil {
		return err
	}
	f, err := os.Create(g.pathFor(deviceID))
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, line := range lines {
		if _, err := w.WriteString(line + "\n"); err != nil {
			return err
		}
	}
	return w.Flush()
}
