package domain

// Actor identifies the caller on whose behalf enforcement decisions are
// made. PrincipalID selects the two-factor status lookup; SessionID selects
// the verification ledger, so grace never leaks across sessions.
type Actor struct {
	PrincipalID string `json:"principal_id"`
	SessionID   string `json:"session_id"`
}
