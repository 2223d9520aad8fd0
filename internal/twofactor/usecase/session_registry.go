package usecase

import (
	"sync"
	"time"

	twofactorDomain "github.com/allisson/stepup/internal/twofactor/domain"
)

// SessionRegistry holds one verification ledger per caller session with
// automatic cleanup of idle sessions. Ledgers never leak across sessions: a
// new session always starts with an empty ledger, and removing a session
// discards every grant it accumulated.
type SessionRegistry struct {
	mu          sync.Mutex
	sessions    map[string]*sessionEntry
	idleTimeout time.Duration
	done        chan struct{}
	closeOnce   sync.Once
}

// sessionEntry holds a ledger and last access time for cleanup.
type sessionEntry struct {
	ledger     *twofactorDomain.VerificationLedger
	lastAccess time.Time
}

// NewSessionRegistry creates a registry that sweeps idle sessions every
// 5 minutes. Sessions idle longer than idleTimeout are discarded.
func NewSessionRegistry(idleTimeout time.Duration) *SessionRegistry {
	return newSessionRegistry(idleTimeout, 5*time.Minute)
}

func newSessionRegistry(idleTimeout, sweepInterval time.Duration) *SessionRegistry {
	registry := &SessionRegistry{
		sessions:    make(map[string]*sessionEntry),
		idleTimeout: idleTimeout,
		done:        make(chan struct{}),
	}

	go registry.sweepStale(sweepInterval)

	return registry
}

// LedgerFor returns the ledger for the given session, creating an empty one
// on first access. Every call refreshes the session's idle timer. The
// get-or-create is atomic so concurrent callers always share one ledger.
func (r *SessionRegistry) LedgerFor(sessionID string) *twofactorDomain.VerificationLedger {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.sessions[sessionID]
	if !ok {
		entry = &sessionEntry{
			ledger: twofactorDomain.NewVerificationLedger(),
		}
		r.sessions[sessionID] = entry
	}
	entry.lastAccess = time.Now()

	return entry.ledger
}

// Remove discards the given session and its ledger.
func (r *SessionRegistry) Remove(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sessionID)
}

// Len returns the number of tracked sessions.
func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Close stops the background sweep. Safe to call multiple times.
func (r *SessionRegistry) Close() {
	r.closeOnce.Do(func() {
		close(r.done)
	})
}

// sweepStale removes sessions that haven't been accessed within the idle
// timeout. Runs periodically to prevent unbounded memory growth.
func (r *SessionRegistry) sweepStale(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.done:
			return
		case <-ticker.C:
			threshold := time.Now().Add(-r.idleTimeout)
			r.mu.Lock()
			for sessionID, entry := range r.sessions {
				if entry.lastAccess.Before(threshold) {
					delete(r.sessions, sessionID)
				}
			}
			r.mu.Unlock()
		}
	}
}
