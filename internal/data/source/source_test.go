package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/penwyp/go-presence-timeline/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeLines(t *testing.T, path string, lines ...string) {
	t.Helper()
	content := ""
	for _, l := range lines {
		content += l + "\n"
	}
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr error
		check   func(t *testing.T, src Source)
	}{
		{
			name: "default is file",
			opts: Options{DataDir: "/tmp/x"},
			check: func(t *testing.T, src Source) {
				assert.IsType(t, &FileSource{}, src)
			},
		},
		{
			name: "http",
			opts: Options{Kind: KindHTTP, BaseURL: "http://localhost:8080"},
			check: func(t *testing.T, src Source) {
				assert.IsType(t, &HTTPSource{}, src)
			},
		},
		{
			name: "sqlite",
			opts: Options{Kind: "SQLite", DBPath: filepath.Join(t.TempDir(), "h.db")},
			check: func(t *testing.T, src Source) {
				assert.IsType(t, &SQLiteSource{}, src)
				assert.NoError(t, Close(src))
			},
		},
		{
			name:    "unknown",
			opts:    Options{Kind: "redis"},
			wantErr: ErrUnknownSource,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := New(tt.opts)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, src)
		})
	}
}

func TestHostRecordToEvent(t *testing.T) {
	rec := HostRecord{Date: "2024-05-01 10:00:00", Now: 1, Iface: "eth0", IP: "10.0.0.2", Known: model.KnownYes}
	ev := rec.ToEvent()
	assert.Equal(t, "2024-05-01 10:00:00", ev.Timestamp)
	assert.True(t, ev.Online)
	assert.Equal(t, "eth0", ev.Iface)
	assert.Equal(t, "10.0.0.2", ev.IP)
	assert.Equal(t, model.KnownYes, ev.Known)

	rec.Now = 0
	assert.False(t, rec.ToEvent().Online)
}

func TestFileNameFor(t *testing.T) {
	assert.Equal(t, "aa-bb-cc-dd-ee-ff.jsonl", FileNameFor("AA:BB:CC:DD:EE:FF"))
	assert.Equal(t, "phone.jsonl", FileNameFor("phone"))
	assert.Equal(t, "a_b.jsonl", FileNameFor("a/b"))
}

func TestFileSource_FetchEvents(t *testing.T) {
	dir := t.TempDir()
	src := NewFileSource(dir)
	writeLines(t, src.PathFor("phone"),
		`{"Date":"2024-05-01 08:00:00","Now":1,"Iface":"wlan0","IP":"192.168.1.5","Known":1}`,
		`not json`,
		``,
		`{"Date":"2024-05-01 09:30:00","Now":0,"Iface":"wlan0","IP":"192.168.1.5","Known":true}`,
		`{"Date":"2024-05-02 00:00:01","Now":1,"Iface":"wlan0","IP":"192.168.1.6","Known":null}`,
	)

	t.Run("day window filters by prefix", func(t *testing.T) {
		events, err := src.FetchEvents(context.Background(), "phone", "2024-05-01")
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.True(t, events[0].Online)
		assert.Equal(t, model.KnownYes, events[0].Known)
		assert.False(t, events[1].Online)
	})

	t.Run("rolling window returns everything", func(t *testing.T) {
		events, err := src.FetchEvents(context.Background(), "phone", "")
		require.NoError(t, err)
		require.Len(t, events, 3)
		assert.Equal(t, model.KnownUnset, events[2].Known)
		assert.Equal(t, "192.168.1.6", events[2].IP)
	})

	t.Run("missing file is empty", func(t *testing.T) {
		events, err := src.FetchEvents(context.Background(), "laptop", "")
		require.NoError(t, err)
		assert.NotNil(t, events)
		assert.Empty(t, events)
	})

	t.Run("cancelled context on large file", func(t *testing.T) {
		lines := make([]string, 2048)
		for i := range lines {
			lines[i] = `{"Date":"2024-05-01 08:00:00","Now":1}`
		}
		writeLines(t, src.PathFor("big"), lines...)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := src.FetchEvents(ctx, "big", "")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestHTTPSource_FetchEvents(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		switch r.URL.Path {
		case "/api/history/aa:bb/2024-05-01", "/api/history/aa:bb":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[
				{"Date":"2024-05-01 08:00:00","Now":1,"Iface":"eth0","IP":"10.0.0.9","Known":1,"Mac":"aa:bb"},
				{"Date":"2024-05-01 12:00:00","Now":0,"Iface":"eth0","IP":"10.0.0.9","Known":0,"Mac":"aa:bb"}
			]`))
		case "/api/history/empty":
			w.WriteHeader(http.StatusOK)
		default:
			http.Error(w, "no such device", http.StatusNotFound)
		}
	}))
	defer server.Close()

	src, err := NewHTTPSource(server.URL, time.Second)
	require.NoError(t, err)

	t.Run("day window", func(t *testing.T) {
		events, err := src.FetchEvents(context.Background(), "aa:bb", "2024-05-01")
		require.NoError(t, err)
		assert.Equal(t, "/api/history/aa:bb/2024-05-01", gotPath)
		require.Len(t, events, 2)
		assert.True(t, events[0].Online)
		assert.Equal(t, model.KnownYes, events[0].Known)
		assert.Equal(t, model.KnownNo, events[1].Known)
	})

	t.Run("rolling window omits the date", func(t *testing.T) {
		_, err := src.FetchEvents(context.Background(), "aa:bb", "")
		require.NoError(t, err)
		assert.Equal(t, "/api/history/aa:bb", gotPath)
	})

	t.Run("empty body", func(t *testing.T) {
		events, err := src.FetchEvents(context.Background(), "empty", "")
		require.NoError(t, err)
		assert.Empty(t, events)
	})

	t.Run("non-2xx is an error", func(t *testing.T) {
		_, err := src.FetchEvents(context.Background(), "ghost", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "404")
	})
}

func TestNewHTTPSource_Validation(t *testing.T) {
	_, err := NewHTTPSource("", 0)
	assert.Error(t, err)
	_, err = NewHTTPSource("ftp://host", 0)
	assert.Error(t, err)
	src, err := NewHTTPSource("http://host/base/", 0)
	require.NoError(t, err)
	assert.Equal(t, "http://host/base/api/history/dev/2024-01-02", src.endpoint("dev", "2024-01-02"))
}

func TestSQLiteSource_FetchEvents(t *testing.T) {
	loc := time.UTC
	src, err := NewSQLiteSource(filepath.Join(t.TempDir(), "history.db"), loc)
	require.NoError(t, err)
	defer src.Close()

	clock := clockwork.NewFakeClockAt(time.Date(2024, 5, 2, 6, 0, 0, 0, loc))
	src.WithClock(clock)

	ctx := context.Background()
	require.NoError(t, src.Insert(ctx, "aa:bb",
		HostRecord{Date: "2024-05-01 03:00:00", Now: 1, Iface: "eth0", IP: "10.0.0.1", Known: model.KnownYes},
		HostRecord{Date: "2024-05-01 07:00:00", Now: 0, Iface: "eth0", IP: "10.0.0.1", Known: model.KnownNo},
		HostRecord{Date: "2024-05-02 05:00:00", Now: 1, Iface: "wlan0", IP: "10.0.0.2"},
	))
	require.NoError(t, src.Insert(ctx, "cc:dd",
		HostRecord{Date: "2024-05-01 09:00:00", Now: 1},
	))

	t.Run("day window", func(t *testing.T) {
		events, err := src.FetchEvents(ctx, "aa:bb", "2024-05-01")
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, "2024-05-01 03:00:00", events[0].Timestamp)
		assert.Equal(t, model.KnownYes, events[0].Known)
		assert.Equal(t, model.KnownNo, events[1].Known)
	})

	t.Run("rolling window cuts at now minus 24h", func(t *testing.T) {
		events, err := src.FetchEvents(ctx, "aa:bb", "")
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, "2024-05-01 07:00:00", events[0].Timestamp)
		assert.Equal(t, model.KnownUnset, events[1].Known)
	})

	t.Run("unknown device", func(t *testing.T) {
		events, err := src.FetchEvents(ctx, "ee:ff", "2024-05-01")
		require.NoError(t, err)
		assert.Empty(t, events)
	})
}

func TestWatcher_EmitsJSONLChanges(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Phone.jsonl"), []byte("{}\n"), 0644))

	select {
	case ev := <-w.Events():
		assert.Equal(t, "phone.jsonl", ev.FileName)
	case <-time.After(3 * time.Second):
		t.Fatal("no change event received")
	}
}

func TestWatcher_CloseIsIdempotent(t *testing.T) {
	w, err := NewWatcher(t.TempDir())
	require.NoError(t, err)
	assert.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}
