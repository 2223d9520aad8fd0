// Package domain defines the two-factor enforcement domain models.
// Sensitive administrative operations are classified by OperationKind, each
// carrying a static OperationPolicy that drives re-verification decisions.
package domain

import (
	"sort"

	"github.com/allisson/stepup/internal/errors"
)

// OperationKind identifies a class of sensitive administrative action.
// The set is closed: values outside the policy table are rejected at the
// API boundary and never reach decision logic.
type OperationKind string

const (
	// DeleteAccountOperation removes a single administrator account.
	DeleteAccountOperation OperationKind = "delete-single-account"

	// ChangeRoleOperation changes the role of a single administrator.
	ChangeRoleOperation OperationKind = "change-role-single"

	// BulkDeleteAccountsOperation removes multiple administrator accounts at once.
	BulkDeleteAccountsOperation OperationKind = "bulk-delete-accounts"

	// BulkChangeRoleOperation changes roles for multiple administrators at once.
	BulkChangeRoleOperation OperationKind = "bulk-change-role"

	// CreateCustomRoleOperation creates a new custom role definition.
	CreateCustomRoleOperation OperationKind = "create-custom-role"

	// DeactivateAccountOperation deactivates a single administrator account.
	DeactivateAccountOperation OperationKind = "deactivate-account"

	// ChangeSystemSettingsOperation modifies system-wide platform settings.
	ChangeSystemSettingsOperation OperationKind = "change-system-settings"
)

// RiskLevel grades how dangerous an operation kind is. It is informational
// for callers (e.g., UI emphasis) and does not alter decision flow.
type RiskLevel string

const (
	// HighRisk marks operations that affect a single account or role.
	HighRisk RiskLevel = "high"

	// CriticalRisk marks bulk operations and system-wide changes.
	CriticalRisk RiskLevel = "critical"
)

// OperationPolicy is the static metadata attached to an operation kind.
type OperationPolicy struct {
	Kind        OperationKind `json:"kind"`
	RiskLevel   RiskLevel     `json:"risk_level"`
	Description string        `json:"description"`

	// RequiresRecentAuth marks kinds that participate in the recent-verification
	// grace period. Kinds without it always demand fresh verification whenever
	// two-factor is globally required.
	RequiresRecentAuth bool `json:"requires_recent_auth"`
}

// policyTable is the fixed, read-only policy configuration. Which kinds get
// the grace period is a product decision carried over from the admin
// platform, not a rule derived from risk level.
var policyTable = map[OperationKind]OperationPolicy{
	DeleteAccountOperation: {
		Kind:               DeleteAccountOperation,
		RiskLevel:          HighRisk,
		Description:        "Delete an administrator account",
		RequiresRecentAuth: true,
	},
	ChangeRoleOperation: {
		Kind:               ChangeRoleOperation,
		RiskLevel:          HighRisk,
		Description:        "Change the role of an administrator",
		RequiresRecentAuth: true,
	},
	BulkDeleteAccountsOperation: {
		Kind:               BulkDeleteAccountsOperation,
		RiskLevel:          CriticalRisk,
		Description:        "Delete multiple administrator accounts",
		RequiresRecentAuth: true,
	},
	BulkChangeRoleOperation: {
		Kind:               BulkChangeRoleOperation,
		RiskLevel:          CriticalRisk,
		Description:        "Change roles for multiple administrators",
		RequiresRecentAuth: true,
	},
	CreateCustomRoleOperation: {
		Kind:               CreateCustomRoleOperation,
		RiskLevel:          HighRisk,
		Description:        "Create a custom role",
		RequiresRecentAuth: false,
	},
	DeactivateAccountOperation: {
		Kind:               DeactivateAccountOperation,
		RiskLevel:          HighRisk,
		Description:        "Deactivate an administrator account",
		RequiresRecentAuth: false,
	},
	ChangeSystemSettingsOperation: {
		Kind:               ChangeSystemSettingsOperation,
		RiskLevel:          CriticalRisk,
		Description:        "Change system-wide settings",
		RequiresRecentAuth: false,
	},
}

// ErrUnknownOperation indicates an operation kind outside the policy table.
var ErrUnknownOperation = errors.Wrap(errors.ErrInvalidInput, "unknown operation kind")

// ParseOperationKind validates a wire slug against the policy table and
// returns the typed kind. Returns ErrUnknownOperation for anything else.
func ParseOperationKind(value string) (OperationKind, error) {
	kind := OperationKind(value)
	if _, ok := policyTable[kind]; !ok {
		return "", ErrUnknownOperation
	}
	return kind, nil
}

// PolicyFor returns the static policy for the given operation kind.
func PolicyFor(kind OperationKind) (OperationPolicy, error) {
	policy, ok := policyTable[kind]
	if !ok {
		return OperationPolicy{}, ErrUnknownOperation
	}
	return policy, nil
}

// OperationKinds returns every registered operation kind in stable order.
func OperationKinds() []OperationKind {
	kinds := make([]OperationKind, 0, len(policyTable))
	for kind := range policyTable {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Policies returns the full policy table in stable order, for listing APIs.
func Policies() []OperationPolicy {
	kinds := OperationKinds()
	policies := make([]OperationPolicy, 0, len(kinds))
	for _, kind := range kinds {
		policies = append(policies, policyTable[kind])
	}
	return policies
}
