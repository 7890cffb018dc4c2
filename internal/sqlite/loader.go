package sqlite

import (
	"database/sql"
	"fmt"
	"path/filepath"
)

// loadKVJSONL reads kv.jsonl from dataDir into the kv table inside one
// transaction: either every readable record loads or the table stays
// empty. A later line for the same key wins.
func loadKVJSONL(db *sql.DB, dataDir string) (int, error) {
	records, err := readKVRecords(filepath.Join(dataDir, kvJSONL))
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning load transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(upsertSQL)
	if err != nil {
		return 0, fmt.Errorf("preparing kv insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		if _, err := stmt.Exec(rec.Key, rec.Value, rec.UpdatedAt); err != nil {
			return 0, fmt.Errorf("loading key %s: %w", rec.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing load transaction: %w", err)
	}
	return len(records), nil
}
