package sqlite

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// kvJSONL is the source-of-truth file inside the data directory.
const kvJSONL = "kv.jsonl"

// kvRecord is one line of kv.jsonl.
type kvRecord struct {
	Key       string `json:"key"`
	Value     string `json:"value"`
	UpdatedAt string `json:"updated_at"`
}

// readKVRecords reads kv.jsonl. Blank lines, lines that are not JSON
// objects, and records without a key are skipped.
func readKVRecords(path string) ([]kvRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var records []kvRecord
	scanner := bufio.NewScanner(f)
	// Stored values are whole serialized sequences and can outgrow the
	// default 64 KiB token limit.
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec kvRecord
		if err := json.Unmarshal(line, &rec); err != nil || rec.Key == "" {
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning %s: %w", path, err)
	}
	return records, nil
}

// writeKVRecords atomically replaces kv.jsonl using the temp-file, fsync,
// rename pattern.
func writeKVRecords(path string, records []kvRecord) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".jsonl-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	w := bufio.NewWriter(tmp)
	enc := json.NewEncoder(w)
	for _, rec := range records {
		// Encode terminates each record with a newline.
		if err = enc.Encode(rec); err != nil {
			return fmt.Errorf("writing record %s: %w", rec.Key, err)
		}
	}
	if err = w.Flush(); err != nil {
		return fmt.Errorf("flushing buffer: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// ensureKVFile creates an empty kv.jsonl if none exists.
func ensureKVFile(dataDir string) error {
	path := filepath.Join(dataDir, kvJSONL)
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat %s: %w", kvJSONL, err)
	}
	return os.WriteFile(path, nil, 0o644)
}
