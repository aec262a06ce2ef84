package store

import (
	"database/sql"
	"strconv"
	"strings"
	"time"
)

// rebind rewrites `?` placeholders to `$1..$N` for Postgres. SQLite queries
// pass through unchanged, so every repo writes its SQL once with `?`.
func rebind(driver, query string) string {
	if driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// timeLayout is the storage format for timestamps. The fraction is fixed
// width so TEXT comparison orders the same way as the instants themselves;
// RFC3339Nano trims trailing zeros, which makes "10:00:00Z" sort after
// "10:00:00.5Z".
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// parseNullableTime parses a sql.NullString holding an RFC3339 timestamp.
// NULL, empty, or unparseable values come back as nil.
func parseNullableTime(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, s.String)
	if err != nil {
		return nil
	}
	return &t
}

// nullableTimeToString converts a *time.Time to a storable value, nil for
// SQL NULL.
func nullableTimeToString(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// nowUTC returns the current UTC time in storage format.
func nowUTC() string {
	return formatTime(time.Now())
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
