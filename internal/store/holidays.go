package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/glhours/glhours/internal/holidays"
)

// GetHolidays returns the cached holiday list for a year. The second
// return value is false when the year was never cached.
func (db *DB) GetHolidays(year int) ([]holidays.Holiday, bool, error) {
	var payload string
	err := db.QueryRow("SELECT payload FROM holiday_years WHERE year = ?", year).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("querying holiday cache: %w", err)
	}

	var hs []holidays.Holiday
	if err := json.Unmarshal([]byte(payload), &hs); err != nil {
		return nil, false, fmt.Errorf("parsing cached holidays: %w", err)
	}
	return hs, true, nil
}

// PutHolidays caches the holiday list for a year, replacing any previous entry.
func (db *DB) PutHolidays(year int, hs []holidays.Holiday) error {
	payload, err := json.Marshal(hs)
	if err != nil {
		return fmt.Errorf("marshaling holidays: %w", err)
	}
	_, err = db.Exec(
		"INSERT INTO holiday_years (year, payload) VALUES (?, ?) ON CONFLICT(year) DO UPDATE SET payload = excluded.payload, fetched_at = CURRENT_TIMESTAMP",
		year, string(payload),
	)
	if err != nil {
		return fmt.Errorf("writing holiday cache: %w", err)
	}
	return nil
}
