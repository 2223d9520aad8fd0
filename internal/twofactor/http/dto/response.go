// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"time"

	twofactorDomain "github.com/allisson/stepup/internal/twofactor/domain"
)

// OperationPolicyResponse represents an operation's static policy in API responses.
type OperationPolicyResponse struct {
	Kind               string `json:"kind"`
	RiskLevel          string `json:"risk_level"`
	Description        string `json:"description"`
	RequiresRecentAuth bool   `json:"requires_recent_auth"`
}

// MapOperationPolicyToResponse converts a domain operation policy to an API response.
func MapOperationPolicyToResponse(policy twofactorDomain.OperationPolicy) OperationPolicyResponse {
	return OperationPolicyResponse{
		Kind:               string(policy.Kind),
		RiskLevel:          string(policy.RiskLevel),
		Description:        policy.Description,
		RequiresRecentAuth: policy.RequiresRecentAuth,
	}
}

// ListOperationsResponse represents the full policy table in API responses.
type ListOperationsResponse struct {
	Data []OperationPolicyResponse `json:"data"`
}

// MapPoliciesToListResponse converts the policy table to a list API response.
func MapPoliciesToListResponse(policies []twofactorDomain.OperationPolicy) ListOperationsResponse {
	policyResponses := make([]OperationPolicyResponse, 0, len(policies))
	for _, policy := range policies {
		policyResponses = append(policyResponses, MapOperationPolicyToResponse(policy))
	}
	return ListOperationsResponse{
		Data: policyResponses,
	}
}

// DecisionResponse represents an enforcement decision in API responses.
// Reason is only present on permissive decisions; a required decision
// carries no reason because the caller is expected to prompt for
// verification.
type DecisionResponse struct {
	Required bool                    `json:"required"`
	Reason   string                  `json:"reason,omitempty"`
	Policy   OperationPolicyResponse `json:"policy"`
}

// MapDecisionToResponse converts a domain decision to an API response.
func MapDecisionToResponse(decision *twofactorDomain.Decision) DecisionResponse {
	return DecisionResponse{
		Required: decision.Required,
		Reason:   decision.Reason,
		Policy:   MapOperationPolicyToResponse(decision.Policy),
	}
}

// GraceResponse represents the remaining grace period for an operation kind.
type GraceResponse struct {
	Operation   string `json:"operation"`
	RemainingMS int64  `json:"remaining_ms"`
}

// VerificationResponse contains the result of recording a verification.
type VerificationResponse struct {
	Operation  string    `json:"operation"`
	VerifiedAt time.Time `json:"verified_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// VerificationEventResponse represents a journal entry in API responses.
// Reset events carry an empty operation slug.
type VerificationEventResponse struct {
	ID          string         `json:"id"`
	RequestID   string         `json:"request_id"`
	PrincipalID string         `json:"principal_id"`
	SessionID   string         `json:"session_id"`
	Operation   string         `json:"operation,omitempty"`
	EventType   string         `json:"event_type"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// MapVerificationEventToResponse converts a domain verification event to an API response.
func MapVerificationEventToResponse(event *twofactorDomain.VerificationEvent) VerificationEventResponse {
	return VerificationEventResponse{
		ID:          event.ID.String(),
		RequestID:   event.RequestID.String(),
		PrincipalID: event.PrincipalID,
		SessionID:   event.SessionID,
		Operation:   string(event.Operation),
		EventType:   string(event.EventType),
		Metadata:    event.Metadata,
		CreatedAt:   event.CreatedAt,
	}
}

// ListVerificationEventsResponse represents a paginated list of journal entries.
type ListVerificationEventsResponse struct {
	Data []VerificationEventResponse `json:"data"`
}

// MapVerificationEventsToListResponse converts domain verification events to a list API response.
func MapVerificationEventsToListResponse(
	events []*twofactorDomain.VerificationEvent,
) ListVerificationEventsResponse {
	eventResponses := make([]VerificationEventResponse, 0, len(events))
	for _, event := range events {
		eventResponses = append(eventResponses, MapVerificationEventToResponse(event))
	}
	return ListVerificationEventsResponse{
		Data: eventResponses,
	}
}
