package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventType classifies verification event journal entries.
type EventType string

const (
	// VerificationEventType records a successful two-factor verification.
	VerificationEventType EventType = "verification"

	// ResetEventType records a session-wide ledger reset.
	ResetEventType EventType = "reset"
)

// VerificationEvent is an append-only journal entry describing a ledger
// mutation. Events are written after the ledger and are never consulted by
// enforcement decisions; they exist for audit and incident investigation.
type VerificationEvent struct {
	ID          uuid.UUID
	RequestID   uuid.UUID
	PrincipalID string
	SessionID   string
	Operation   OperationKind
	EventType   EventType
	Metadata    map[string]any
	Signature   []byte
	CreatedAt   time.Time
}
