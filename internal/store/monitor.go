package store

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
)

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Monitor tracks database readiness with a periodic ping so request
// handlers can check it without blocking.
type Monitor struct {
	db          Pinger
	interval    time.Duration
	pingTimeout time.Duration
	onReady     func(context.Context) error

	ready       atomic.Bool
	initialized atomic.Bool
}

// NewMonitor creates a Monitor. onReady, if non-nil, runs once the first time
// the database answers (schema migrations); until it succeeds the monitor
// keeps reporting not ready.
func NewMonitor(db Pinger, interval, pingTimeout time.Duration, onReady func(context.Context) error) *Monitor {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if pingTimeout <= 0 {
		pingTimeout = 3 * time.Second
	}
	return &Monitor{db: db, interval: interval, pingTimeout: pingTimeout, onReady: onReady}
}

// Ready reports the last observed state
func (m *Monitor) Ready() bool {
	return m.ready.Load()
}

// Check pings once and updates the state
func (m *Monitor) Check(ctx context.Context) bool {
	if m.db == nil {
		m.set(false, nil)
		return false
	}

	pctx, cancel := context.WithTimeout(ctx, m.pingTimeout)
	err := m.db.Ping(pctx)
	cancel()
	if err != nil {
		m.set(false, err)
		return false
	}

	if !m.initialized.Load() && m.onReady != nil {
		if err := m.onReady(ctx); err != nil {
			log.Error().Err(err).Msg("database initialization failed")
			m.set(false, err)
			return false
		}
	}
	m.initialized.Store(true)
	m.set(true, nil)
	return true
}

// Run checks until ctx is cancelled
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Check(ctx)
		}
	}
}

func (m *Monitor) set(ready bool, err error) {
	prev := m.ready.Swap(ready)
	switch {
	case ready && !prev:
		log.Info().Msg("database connected")
	case !ready && prev:
		log.Warn().Err(err).Msg("database connection lost")
	}
}
