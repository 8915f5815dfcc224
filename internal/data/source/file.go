package source

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/penwyp/go-presence-timeline/internal/core/model"
	"github.com/penwyp/go-presence-timeline/internal/util"
)

// FileSource reads <dir>/<device>.jsonl files of host-history records
type FileSource struct {
	dir string
}

// NewFileSource creates a FileSource rooted at dir
func NewFileSource(dir string) *FileSource {
	return &FileSource{dir: dir}
}

// Dir returns the watched directory
func (s *FileSource) Dir() string {
	return s.dir
}

// FileNameFor maps a device ID to its JSONL file name
func FileNameFor(deviceID string) string {
	name := strings.ToLower(deviceID)
	name = strings.NewReplacer(":", "-", "/", "_", string(filepath.Separator), "_").Replace(name)
	return name + historyExt
}

// PathFor returns the JSONL path of a device
func (s *FileSource) PathFor(deviceID string) string {
	return filepath.Join(s.dir, FileNameFor(deviceID))
}

// FetchEvents reads the device file. A missing file yields no events.
// Day windows skip records whose date prefix does not match.
func (s *FileSource) FetchEvents(ctx context.Context, deviceID, window string) ([]model.PresenceEvent, error) {
	path := s.PathFor(deviceID)
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			util.LogDebugf("No history file for %s at %s", deviceID, path)
			return []model.PresenceEvent{}, nil
		}
		return nil, fmt.Errorf("failed to open history file: %w", err)
	}
	defer file.Close()

	var records []HostRecord
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	lineCount := 0
	for scanner.Scan() {
		lineCount++
		if lineCount%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}
		var rec HostRecord
		if err := sonic.Unmarshal(line, &rec); err != nil {
			util.LogDebugf("Skip invalid JSON line %s:%d - %v", path, lineCount, err)
			continue
		}
		if window != "" && !strings.HasPrefix(rec.Date, window) {
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history file %s: %w", path, err)
	}

	return toEvents(records), nil
}
