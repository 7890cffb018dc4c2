// Package sqlite implements the durable key-value store behind the
// record store. SQLite is the query engine; kv.jsonl in the data
// directory is the source of truth and is rebuilt into a fresh database
// on every Attach.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/nutrifit/internal/log"
	"github.com/mesh-intelligence/nutrifit/pkg/types"
)

// dbFileName is the SQLite file created inside the data directory.
const dbFileName = "nutrifit.db"

const upsertSQL = `INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

var _ types.KVStore = (*Backend)(nil)

// Backend implements types.KVStore on SQLite with JSONL persistence.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB
	log      *log.Logger

	// Sync strategy state
	syncStrategy  string         // effective sync strategy: immediate, on_close, batch
	batchSize     int            // number of writes before batch flush
	batchInterval time.Duration  // time between batch flushes
	pendingWrites []pendingWrite // writes not yet reflected in kv.jsonl
	batchTimer    *time.Timer    // timer for interval-based batch flush
	batchMu       sync.Mutex     // protects pendingWrites and batchTimer
}

// pendingWrite records a deferred change. Flushing rewrites kv.jsonl from
// the kv table, so one flush covers every queued write.
type pendingWrite struct {
	key       string
	operation string // "set" or "remove"
}

// NewBackend creates a detached backend. Call Attach before use.
func NewBackend(logger *log.Logger) *Backend {
	if logger == nil {
		logger = log.Discard()
	}
	return &Backend{log: logger.WithComponent(log.ComponentStorage)}
}

// Attach creates DataDir if needed, builds a fresh database from
// kv.jsonl, and starts the batch timer for the batch strategy.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}

	// The database is a cache of kv.jsonl; start from an empty file.
	dbPath := filepath.Join(dataDir, dbFileName)
	if err := os.Remove(dbPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing stale database: %w", err)
	}
	if err := runMigrations(dbPath); err != nil {
		return err
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return err
	}
	db.SetMaxOpenConns(1)

	if err := ensureKVFile(dataDir); err != nil {
		db.Close()
		return err
	}
	n, err := loadKVJSONL(db, dataDir)
	if err != nil {
		db.Close()
		return fmt.Errorf("load JSONL: %w", err)
	}

	config.DataDir = dataDir
	b.db = db
	b.config = config
	b.syncStrategy = config.GetSyncStrategy()
	b.batchSize = config.GetBatchSize()
	b.batchInterval = config.GetBatchInterval()
	b.pendingWrites = nil
	b.attached = true

	if b.syncStrategy == types.SyncBatch && b.batchInterval > 0 {
		b.startBatchTimer()
	}

	b.log.Debug("attached", "data_dir", dataDir, "records", n, "sync_strategy", b.syncStrategy)
	return nil
}

// Detach flushes pending writes and closes the database. Detach is
// idempotent; afterwards every operation returns ErrStoreDetached.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}

	b.stopBatchTimer()

	if err := b.flushPendingWrites(); err != nil {
		return fmt.Errorf("flush pending writes: %w", err)
	}

	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return err
		}
		b.db = nil
	}

	b.attached = false
	b.log.Debug("detached")
	return nil
}

// Get returns the value stored under key.
func (b *Backend) Get(key string) (string, bool, error) {
	if key == "" {
		return "", false, types.ErrInvalidKey
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return "", false, types.ErrStoreDetached
	}

	var value string
	err := b.db.QueryRow("SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("getting %s: %w", key, err)
	}
	return value, true, nil
}

// Set stores value under key and persists according to the sync strategy.
func (b *Backend) Set(key, value string) error {
	if key == "" {
		return types.ErrInvalidKey
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrStoreDetached
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := b.db.Exec(upsertSQL, key, value, now); err != nil {
		return fmt.Errorf("setting %s: %w", key, err)
	}
	return b.persist(key, "set")
}

// Remove deletes key and persists according to the sync strategy.
// Removing an absent key succeeds without touching kv.jsonl.
func (b *Backend) Remove(key string) error {
	if key == "" {
		return types.ErrInvalidKey
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrStoreDetached
	}

	res, err := b.db.Exec("DELETE FROM kv WHERE key = ?", key)
	if err != nil {
		return fmt.Errorf("removing %s: %w", key, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil
	}
	return b.persist(key, "remove")
}

// persist writes kv.jsonl now for the immediate strategy, or queues the
// write. The caller must hold b.mu.
func (b *Backend) persist(key, operation string) error {
	if b.shouldPersistImmediately() {
		if err := b.writeSnapshot(); err != nil {
			return fmt.Errorf("persisting %s: %w", kvJSONL, err)
		}
		return nil
	}
	return b.queueWrite(key, operation)
}

// writeSnapshot rewrites kv.jsonl from the kv table. The caller must hold
// b.mu.
func (b *Backend) writeSnapshot() error {
	rows, err := b.db.Query("SELECT key, value, updated_at FROM kv ORDER BY key")
	if err != nil {
		return fmt.Errorf("querying kv: %w", err)
	}
	defer rows.Close()

	var records []kvRecord
	for rows.Next() {
		var rec kvRecord
		if err := rows.Scan(&rec.Key, &rec.Value, &rec.UpdatedAt); err != nil {
			return fmt.Errorf("scanning kv: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	return writeKVRecords(filepath.Join(b.config.DataDir, kvJSONL), records)
}

// shouldPersistImmediately reports whether writes go straight to kv.jsonl.
func (b *Backend) shouldPersistImmediately() bool {
	return b.syncStrategy == types.SyncImmediate || b.syncStrategy == ""
}

// queueWrite records a deferred write. For the batch strategy the queue
// is flushed synchronously once it reaches batchSize. The caller must
// hold b.mu.
func (b *Backend) queueWrite(key, operation string) error {
	b.batchMu.Lock()
	defer b.batchMu.Unlock()

	b.pendingWrites = append(b.pendingWrites, pendingWrite{key: key, operation: operation})

	if b.syncStrategy == types.SyncBatch && b.batchSize > 0 && len(b.pendingWrites) >= b.batchSize {
		return b.flushPendingWritesBatchLocked()
	}
	return nil
}

// flushPendingWrites flushes queued writes. The caller must hold b.mu.
func (b *Backend) flushPendingWrites() error {
	b.batchMu.Lock()
	defer b.batchMu.Unlock()

	return b.flushPendingWritesBatchLocked()
}

// flushPendingWritesBatchLocked rewrites kv.jsonl if anything is queued.
// The caller must hold b.mu and b.batchMu. On failure the queue is kept
// so a later flush retries.
func (b *Backend) flushPendingWritesBatchLocked() error {
	if len(b.pendingWrites) == 0 {
		return nil
	}
	if err := b.writeSnapshot(); err != nil {
		return fmt.Errorf("flush %d pending writes (last %s %s): %w",
			len(b.pendingWrites),
			b.pendingWrites[len(b.pendingWrites)-1].operation,
			b.pendingWrites[len(b.pendingWrites)-1].key,
			err)
	}
	b.log.Debug("flushed pending writes", "count", len(b.pendingWrites))
	b.pendingWrites = nil
	return nil
}

// pendingCount reports how many writes are queued.
func (b *Backend) pendingCount() int {
	b.batchMu.Lock()
	defer b.batchMu.Unlock()
	return len(b.pendingWrites)
}

// startBatchTimer starts the periodic flush for the batch strategy.
func (b *Backend) startBatchTimer() {
	b.batchMu.Lock()
	defer b.batchMu.Unlock()

	if b.batchTimer != nil {
		return
	}

	b.batchTimer = time.AfterFunc(b.batchInterval, func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		if !b.attached {
			return
		}

		if err := b.flushPendingWrites(); err != nil {
			b.log.Error("batch flush failed", "error", err)
		}

		b.batchMu.Lock()
		if b.batchTimer != nil {
			b.batchTimer.Reset(b.batchInterval)
		}
		b.batchMu.Unlock()
	})
}

// stopBatchTimer stops the batch timer if running.
func (b *Backend) stopBatchTimer() {
	b.batchMu.Lock()
	defer b.batchMu.Unlock()

	if b.batchTimer != nil {
		b.batchTimer.Stop()
		b.batchTimer = nil
	}
}
