// Store lifecycle shared by the nutrifit commands.
package main

import (
	"errors"
	"fmt"

	"github.com/mesh-intelligence/nutrifit/internal/memory"
	"github.com/mesh-intelligence/nutrifit/internal/sqlite"
	"github.com/mesh-intelligence/nutrifit/internal/tracker"
	"github.com/mesh-intelligence/nutrifit/pkg/types"
)

// session is a loaded record store and the means to release its backend.
type session struct {
	store *tracker.Store
	close func() error
}

// openSession attaches the configured backend and loads the records. The
// caller must call close.
func (a *app) openSession() (*session, error) {
	cfg, err := a.storageConfig()
	if err != nil {
		return nil, userError(err)
	}

	var (
		kv      types.KVStore
		closeFn = func() error { return nil }
	)
	switch cfg.Backend {
	case types.BackendMemory:
		kv = memory.NewStore()
	default:
		backend := sqlite.NewBackend(a.log)
		if err := backend.Attach(cfg); err != nil {
			return nil, sysError(fmt.Errorf("attach backend: %w", err))
		}
		kv = backend
		closeFn = backend.Detach
	}

	store := tracker.NewStore(kv, tracker.WithLogger(a.log))
	if err := store.Load(); err != nil {
		_ = closeFn()
		return nil, sysError(fmt.Errorf("load records: %w", err))
	}

	a.log.Debug("session opened", "backend", cfg.Backend, "data_dir", cfg.DataDir)
	return &session{store: store, close: closeFn}, nil
}

// withSession opens a session, runs fn and closes the session. A close
// failure is reported only if fn succeeded.
func (a *app) withSession(fn func(s *session) error) (err error) {
	s, err := a.openSession()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.close(); cerr != nil && err == nil {
			err = sysError(fmt.Errorf("close backend: %w", cerr))
		}
	}()
	return fn(s)
}

// storeError classifies an error from a store mutation.
func storeError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, types.ErrNotFound) {
		return userError(err)
	}
	return sysError(err)
}
