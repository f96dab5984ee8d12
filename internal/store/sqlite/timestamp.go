package sqlite

import (
	"fmt"
	"time"
)

// sqliteLayout is what datetime('now') produces.
const sqliteLayout = "2006-01-02 15:04:05"

var readLayouts = []string{
	sqliteLayout,
	"2006-01-02 15:04:05.999999999",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// FormatTime renders t the way the store compares timestamps, in UTC.
func FormatTime(t time.Time) string {
	return t.UTC().Format(sqliteLayout)
}

// timestamp scans a nullable DATETIME column. The driver may hand back
// either decoded time.Time values or the raw text, depending on the
// declared column type.
type timestamp struct {
	Time  time.Time
	Valid bool
}

func (ts *timestamp) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*ts = timestamp{}
		return nil
	case time.Time:
		*ts = timestamp{Time: v.UTC(), Valid: true}
		return nil
	case string:
		return ts.parse(v)
	case []byte:
		return ts.parse(string(v))
	}
	return fmt.Errorf("timestamp: unsupported type %T", src)
}

func (ts *timestamp) parse(s string) error {
	if s == "" {
		*ts = timestamp{}
		return nil
	}
	for _, layout := range readLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			*ts = timestamp{Time: t.UTC(), Valid: true}
			return nil
		}
	}
	return fmt.Errorf("timestamp: cannot parse %q", s)
}

func (ts timestamp) ptr() *time.Time {
	if !ts.Valid {
		return nil
	}
	t := ts.Time
	return &t
}
