package source

import (
	"context"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/jonboulle/clockwork"
	"github.com/penwyp/go-presence-timeline/internal/core/constants"
	"github.com/penwyp/go-presence-timeline/internal/core/model"
	"github.com/penwyp/go-presence-timeline/internal/util"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// HistoryRow is one row of the history table written by the scanner
type HistoryRow struct {
	ID    uint   `gorm:"primaryKey"`
	Mac   string `gorm:"index:idx_history_mac_date;not null"`
	Date  string `gorm:"index:idx_history_mac_date;not null"`
	Now   int    `gorm:"not null;default:0"`
	Iface string
	IP    string `gorm:"column:ip"`
	Known *int
}

// TableName pins the table name expected by existing scanner databases
func (HistoryRow) TableName() string {
	return "history"
}

func (r HistoryRow) record() HostRecord {
	known := model.KnownUnset
	if r.Known != nil {
		known = model.KnownFromInt(*r.Known)
	}
	return HostRecord{
		Mac:   r.Mac,
		Date:  r.Date,
		Now:   r.Now,
		Iface: r.Iface,
		IP:    r.IP,
		Known: known,
	}
}

// SQLiteSource reads presence history from a SQLite database
type SQLiteSource struct {
	db       *gorm.DB
	location *time.Location
	clock    clockwork.Clock
}

// NewSQLiteSource opens (creating if needed) the database at path
func NewSQLiteSource(path string, loc *time.Location) (*SQLiteSource, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite source requires a database path")
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.AutoMigrate(&HistoryRow{}); err != nil {
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}
	if loc == nil {
		loc = time.Local
	}
	util.LogDebugf("Opened history database %s", path)
	return &SQLiteSource{db: db, location: loc, clock: clockwork.NewRealClock()}, nil
}

// WithClock replaces the clock used for rolling-window cutoffs
func (s *SQLiteSource) WithClock(clock clockwork.Clock) *SQLiteSource {
	s.clock = clock
	return s
}

// Insert appends records for a device
func (s *SQLiteSource) Insert(ctx context.Context, deviceID string, records ...HostRecord) error {
	rows := make([]HistoryRow, 0, len(records))
	for _, r := range records {
		row := HistoryRow{Mac: deviceID, Date: r.Date, Now: r.Now, Iface: r.Iface, IP: r.IP}
		switch r.Known {
		case model.KnownYes:
			v := 1
			row.Known = &v
		case model.KnownNo:
			v := 0
			row.Known = &v
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return fmt.Errorf("inserting history rows: %w", err)
	}
	return nil
}

// FetchEvents selects the device's rows for the window. Rolling windows
// compare the zero-padded date column lexically against now-24h.
func (s *SQLiteSource) FetchEvents(ctx context.Context, deviceID, window string) ([]model.PresenceEvent, error) {
	query := s.db.WithContext(ctx).Where("mac = ?", deviceID)
	if window != "" {
		query = query.Where("date LIKE ?", window+"%")
	} else {
		cutoff := s.clock.Now().In(s.location).Add(-constants.RollingWindow)
		query = query.Where("date >= ?", cutoff.Format(constants.TimestampLayout))
	}

	var rows []HistoryRow
	if err := query.Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}

	records := make([]HostRecord, 0, len(rows))
	for _, r := range rows {
		records = append(records, r.record())
	}
	return toEvents(records), nil
}

// Close closes the underlying connection pool
func (s *SQLiteSource) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
