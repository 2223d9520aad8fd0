package domain

// Reason strings attached to permissive decisions. Kept verbatim from the
// admin platform so clients can continue matching on them.
const (
	ReasonNotRequired = "2FA not enabled or not required for sensitive operations"
	ReasonRecentValid = "Recent 2FA verification still valid"
)

// TwoFactorStatus is the per-principal answer from the two-factor provider.
type TwoFactorStatus struct {
	Enabled bool `json:"is_enabled"`
}

// TwoFactorSettings is the platform-wide enforcement configuration from the
// two-factor provider.
type TwoFactorSettings struct {
	RequireForSensitiveActions bool `json:"require_for_sensitive_actions"`
}

// Decision is the outcome of evaluating an operation kind for an actor.
type Decision struct {
	// Required reports whether the caller must complete a fresh two-factor
	// verification before performing the operation.
	Required bool

	// Reason explains a permissive decision. Empty when Required is true.
	Reason string

	// Policy is the static policy of the evaluated kind.
	Policy OperationPolicy

	// FailClosed reports that Required is true because the provider could
	// not be consulted, not because the provider demanded verification.
	// Surfaced in logs and metrics only, never on the wire.
	FailClosed bool
}

// Grace describes how much of the recent-verification window remains for
// one operation kind.
type Grace struct {
	// RemainingMillis is the unelapsed portion of the grace period in
	// milliseconds. Zero when no valid verification exists.
	RemainingMillis int64

	// Valid reports whether a recent verification currently covers the kind.
	Valid bool
}
