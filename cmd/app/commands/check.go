package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	twofactorDomain "github.com/allisson/stepup/internal/twofactor/domain"
	twofactorUseCase "github.com/allisson/stepup/internal/twofactor/usecase"
)

// RunCheck evaluates whether the given operation requires fresh two-factor
// verification for the given actor and prints the decision. Useful for
// debugging enforcement behavior against a running provider.
//
// Requirements: Database must be accessible and the two-factor provider reachable;
// an unreachable provider yields a fail-closed "required" decision, not an error.
func RunCheck(
	ctx context.Context,
	enforcementUseCase twofactorUseCase.EnforcementUseCase,
	logger *slog.Logger,
	writer io.Writer,
	operation, principalID, sessionID string,
	format string,
) error {
	if principalID == "" {
		return fmt.Errorf("principal is required")
	}
	if sessionID == "" {
		return fmt.Errorf("session is required")
	}

	kind, err := twofactorDomain.ParseOperationKind(operation)
	if err != nil {
		return fmt.Errorf("invalid operation %q: %w", operation, err)
	}

	actor := twofactorDomain.Actor{
		PrincipalID: principalID,
		SessionID:   sessionID,
	}

	logger.Info("evaluating operation",
		slog.String("operation", string(kind)),
		slog.String("principal_id", principalID),
		slog.String("session_id", sessionID),
	)

	decision, err := enforcementUseCase.Evaluate(ctx, actor, kind)
	if err != nil {
		return fmt.Errorf("failed to evaluate operation: %w", err)
	}

	if format == "json" {
		if err := outputDecisionJSON(writer, decision); err != nil {
			return fmt.Errorf("failed to output JSON: %w", err)
		}
	} else {
		outputDecisionText(writer, decision)
	}

	return nil
}

// outputDecisionText outputs the decision in human-readable text format.
func outputDecisionText(writer io.Writer, decision *twofactorDomain.Decision) {
	_, _ = fmt.Fprintf(writer, "Operation:   %s\n", decision.Policy.Kind)
	_, _ = fmt.Fprintf(writer, "Risk Level:  %s\n", decision.Policy.RiskLevel)
	_, _ = fmt.Fprintf(writer, "Description: %s\n\n", decision.Policy.Description)

	if decision.Required {
		_, _ = fmt.Fprintf(writer, "Verification Required: YES\n")
		if decision.FailClosed {
			_, _ = fmt.Fprintf(writer, "Note: provider unavailable, failing closed\n")
		}
	} else {
		_, _ = fmt.Fprintf(writer, "Verification Required: NO\n")
		_, _ = fmt.Fprintf(writer, "Reason: %s\n", decision.Reason)
	}
}

// outputDecisionJSON outputs the decision in JSON format for machine consumption.
func outputDecisionJSON(writer io.Writer, decision *twofactorDomain.Decision) error {
	result := map[string]interface{}{
		"operation":   decision.Policy.Kind,
		"risk_level":  decision.Policy.RiskLevel,
		"description": decision.Policy.Description,
		"required":    decision.Required,
	}
	if !decision.Required {
		result["reason"] = decision.Reason
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	_, _ = fmt.Fprintln(writer, string(jsonBytes))
	return nil
}
