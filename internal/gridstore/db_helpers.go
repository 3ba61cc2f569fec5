package gridstore

import (
	"database/sql"
	"encoding/json"
	"strings"
	"time"
)

// busyRetries and busyBackoff bound how long a writer waits out a concurrent
// sqlite writer before giving up.
const (
	busyRetries = 5
	busyBackoff = 25 * time.Millisecond
)

// retryOnBusy retries fn while sqlite reports the database busy or locked.
// Non-busy errors are returned immediately.
func retryOnBusy(fn func() error) error {
	var err error
	delay := busyBackoff
	for attempt := 0; attempt < busyRetries; attempt++ {
		err = fn()
		if err == nil || !isBusy(err) {
			return err
		}
		time.Sleep(delay)
		delay *= 2
	}
	return err
}

func isBusy(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "SQLITE_BUSY")
}

// nullStr returns nil for empty strings, pointer to string otherwise.
func nullStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// nullJSON returns a nullable string for a JSON value, treating nil or empty
// as NULL.
func nullJSON(data json.RawMessage) *string {
	if len(data) == 0 {
		return nil
	}
	s := string(data)
	return &s
}

// jsonOrNil converts a sql.NullString to json.RawMessage, returning nil for
// NULL values.
func jsonOrNil(ns sql.NullString) json.RawMessage {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	return json.RawMessage(ns.String)
}
