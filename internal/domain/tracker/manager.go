// Package tracker ties a profile, its targets and an owned meal ledger
// into sessions whose lifetime the caller controls.
package tracker

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yanqian/nutrient-tracker/internal/domain/ledger"
	"github.com/yanqian/nutrient-tracker/internal/domain/nutrient"
	"github.com/yanqian/nutrient-tracker/internal/domain/rda"
	apperrors "github.com/yanqian/nutrient-tracker/pkg/errors"
	"github.com/yanqian/nutrient-tracker/pkg/util"
)

// Manager opens, looks up and closes sessions.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	resolver *nutrient.Resolver
	store    ledger.Store
	cfg      Config
	logger   *slog.Logger
	now      func() time.Time
	newID    func() string
}

// NewManager is a wire provider for the tracker domain.
func NewManager(cfg Config, resolver *nutrient.Resolver, store ledger.Store, logger *slog.Logger) *Manager {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Manager{
		sessions: make(map[string]*Session),
		resolver: resolver,
		store:    store,
		cfg:      cfg,
		logger:   logger.With("component", "tracker.manager"),
		now:      util.NowUTC,
		newID:    uuid.NewString,
	}
}

// Now is the manager's clock, exposed so handlers share it.
func (m *Manager) Now() time.Time {
	return m.now()
}

// Open validates profile, computes its report and restores any records
// previously stored under owner. A store read failure opens an empty
// ledger and is logged.
func (m *Manager) Open(ctx context.Context, owner string, profile rda.Profile) (*Session, SessionInfo, error) {
	profile = profile.Normalize()
	if err := profile.Validate(); err != nil {
		return nil, SessionInfo{}, apperrors.Wrap(apperrors.CodeInvalidInput, "invalid profile", err)
	}
	owner = strings.TrimSpace(owner)

	l := ledger.New()
	var skipped []ledger.Record
	if owner != "" && m.store != nil {
		records, err := m.store.List(ctx, owner)
		if err != nil {
			m.logger.Warn("restore meals failed", "owner", owner, "error", err)
		} else {
			l, skipped = ledger.Restore(records)
			if len(skipped) > 0 {
				m.logger.Warn("skipped unreadable meal records", "owner", owner, "count", len(skipped))
			}
		}
	}

	id := m.newID()
	if owner == "" {
		owner = id
	}
	sess := &Session{
		id:       id,
		owner:    owner,
		report:   rda.Calculate(profile),
		ledger:   l,
		resolver: m.resolver,
		store:    m.store,
		cfg:      m.cfg,
		logger:   m.logger,
	}

	m.mu.Lock()
	m.sessions[id] = sess
	m.mu.Unlock()

	m.logger.Info("session opened", "session", id, "owner", owner, "restored", l.Len())
	return sess, SessionInfo{
		ID:       id,
		Owner:    owner,
		Report:   sess.report,
		Restored: l.Len(),
		Skipped:  len(skipped),
	}, nil
}

// Get returns an open session.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	sess, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, apperrors.Wrap(apperrors.CodeNotFound, "session not found", nil)
	}
	return sess, nil
}

// Close drops a session and its in-memory ledger. Persisted records stay.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return apperrors.Wrap(apperrors.CodeNotFound, "session not found", nil)
	}
	delete(m.sessions, id)
	m.logger.Info("session closed", "session", id)
	return nil
}

// Len reports the number of open sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Resolver exposes the shared food resolver.
func (m *Manager) Resolver() *nutrient.Resolver {
	return m.resolver
}
