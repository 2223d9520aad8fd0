package commands

import (
	"encoding/json"
	"fmt"
	"io"

	twofactorDomain "github.com/allisson/stepup/internal/twofactor/domain"
)

// RunListOperations prints the policy table of sensitive operation kinds.
// The table is static configuration, so no database access is needed.
func RunListOperations(writer io.Writer, format string) error {
	policies := twofactorDomain.Policies()

	if format == "json" {
		jsonBytes, err := json.MarshalIndent(policies, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		_, _ = fmt.Fprintln(writer, string(jsonBytes))
		return nil
	}

	_, _ = fmt.Fprintf(writer, "Sensitive Operations\n")
	_, _ = fmt.Fprintf(writer, "====================\n\n")

	for _, policy := range policies {
		_, _ = fmt.Fprintf(writer, "%s\n", policy.Kind)
		_, _ = fmt.Fprintf(writer, "  Risk Level:          %s\n", policy.RiskLevel)
		_, _ = fmt.Fprintf(writer, "  Description:         %s\n", policy.Description)
		_, _ = fmt.Fprintf(writer, "  Grace Period Applies: %t\n\n", policy.RequiresRecentAuth)
	}

	return nil
}
