package postgres

import (
	"database/sql"
	"fmt"
	"time"
)

func nowUTC() time.Time {
	return time.Now().UTC()
}

// requireRowAffected turns a zero-row update into an error so callers
// notice writes against missing rows.
func requireRowAffected(result sql.Result, entity, key string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("postgres: rows affected for %s %s: %w", entity, key, err)
	}
	if affected == 0 {
		return fmt.Errorf("postgres: %s %s not found", entity, key)
	}
	return nil
}
