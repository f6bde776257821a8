package db

import "time"

// TimeFormat is the timestamp layout stored in sqlite: RFC3339 in UTC
// with second precision.
const TimeFormat = "2006-01-02T15:04:05Z"

// TimeFormatString renders t for storage.
func TimeFormatString(t time.Time) string {
	return t.UTC().Format(TimeFormat)
}

// TimeParse parses a stored timestamp. An empty string parses to the
// zero time without error (nullable columns).
func TimeParse(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, s)
}
