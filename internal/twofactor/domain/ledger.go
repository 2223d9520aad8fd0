package domain

import (
	"sync"
	"time"
)

// VerificationLedger stores the most recent successful two-factor
// verification time per operation kind. Entries are kept in memory only and
// are overwritten on re-verification. Expiry is evaluated by readers against
// the grace period; the ledger itself never discards entries except on Reset.
type VerificationLedger struct {
	mu      sync.RWMutex
	entries map[OperationKind]time.Time
}

// NewVerificationLedger returns an empty ledger.
func NewVerificationLedger() *VerificationLedger {
	return &VerificationLedger{
		entries: make(map[OperationKind]time.Time),
	}
}

// Record stores the verification time for the given kind, replacing any
// previous entry.
func (l *VerificationLedger) Record(kind OperationKind, verifiedAt time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[kind] = verifiedAt
}

// LastVerifiedAt returns the stored verification time for the given kind.
// The second return value reports whether an entry exists.
func (l *VerificationLedger) LastVerifiedAt(kind OperationKind) (time.Time, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	verifiedAt, ok := l.entries[kind]
	return verifiedAt, ok
}

// Reset discards every entry, forcing fresh verification for all kinds.
func (l *VerificationLedger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = make(map[OperationKind]time.Time)
}

// Len returns the number of stored entries.
func (l *VerificationLedger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
