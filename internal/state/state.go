// Package state persists the play queue across restarts.
package state

import (
	"context"
	"database/sql"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	dbutil "github.com/llehouerou/wavecore/internal/db"
)

const saveDebounce = 500 * time.Millisecond

type Manager struct {
	db        *sql.DB
	saveMu    sync.Mutex
	saveTimer *time.Timer
	pending   *QueueState
}

// Open opens the state database at path, creating it if needed.
func Open(path string) (*Manager, error) {
	sqlDB, err := dbutil.Open(path)
	if err != nil {
		return nil, err
	}

	if err := initSchema(sqlDB); err != nil {
		sqlDB.Close()
		return nil, err
	}

	return &Manager{db: sqlDB}, nil
}

func (m *Manager) Close() error {
	flushErr := m.Flush()
	if err := m.db.Close(); err != nil {
		return err
	}
	return flushErr
}

// Flush writes the pending queue state now.
func (m *Manager) Flush() error {
	m.saveMu.Lock()
	if m.saveTimer != nil {
		m.saveTimer.Stop()
		m.saveTimer = nil
	}
	pending := m.pending
	m.pending = nil
	m.saveMu.Unlock()

	if pending == nil {
		return nil
	}
	return saveQueue(context.Background(), m.db, *pending)
}

func (m *Manager) GetQueue() (*QueueState, error) {
	return getQueue(context.Background(), m.db)
}

// SaveQueue schedules state to be written. Saves within the debounce window
// collapse into the last one.
func (m *Manager) SaveQueue(state QueueState) {
	m.saveMu.Lock()
	defer m.saveMu.Unlock()

	m.pending = &state

	if m.saveTimer != nil {
		m.saveTimer.Stop()
	}

	m.saveTimer = time.AfterFunc(saveDebounce, func() {
		m.saveMu.Lock()
		pending := m.pending
		m.pending = nil
		m.saveMu.Unlock()

		if pending == nil {
			return
		}
		if err := saveQueue(context.Background(), m.db, *pending); err != nil {
			log.WithFields(log.Fields{
				"package":  "state",
				"struct":   "Manager",
				"function": "SaveQueue",
			}).WithError(err).Warn("failed to save queue")
		}
	})
}
