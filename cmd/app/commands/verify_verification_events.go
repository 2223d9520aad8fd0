package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	twofactorUseCase "github.com/allisson/stepup/internal/twofactor/usecase"
)

// RunVerifyVerificationEvents verifies cryptographic integrity of the verification
// event journal within a time range. Validates HMAC-SHA256 signatures against the
// derived signing key for tamper detection.
//
// Requirements: Database must be migrated and the signing key configured.
func RunVerifyVerificationEvents(
	ctx context.Context,
	verificationEventUseCase twofactorUseCase.VerificationEventUseCase,
	logger *slog.Logger,
	writer io.Writer,
	startDate, endDate string,
	format string,
) error {
	// Parse date strings to time.Time
	start, err := parseDate(startDate)
	if err != nil {
		return fmt.Errorf("invalid start date: %w", err)
	}

	end, err := parseDate(endDate)
	if err != nil {
		return fmt.Errorf("invalid end date: %w", err)
	}

	// Validate time range
	if !end.After(start) {
		return fmt.Errorf("end date must be after start date")
	}

	logger.Info("verifying verification events",
		slog.Time("start_date", start),
		slog.Time("end_date", end),
	)

	// Execute batch verification
	report, err := verificationEventUseCase.VerifyBatch(ctx, start, end)
	if err != nil {
		return fmt.Errorf("failed to verify verification events: %w", err)
	}

	// Output result based on format
	if format == "json" {
		if err := outputVerifyJSON(writer, report); err != nil {
			return fmt.Errorf("failed to output JSON: %w", err)
		}
	} else {
		outputVerifyText(writer, report, start, end)
	}

	// Log summary
	logger.Info("verification completed",
		slog.Int64("total_checked", report.TotalChecked),
		slog.Int64("valid", report.Valid),
		slog.Int64("invalid", report.Invalid),
	)

	// Exit with error code if integrity check failed
	if report.Invalid > 0 {
		return fmt.Errorf("integrity check failed: %d invalid signature(s)", report.Invalid)
	}

	return nil
}

// parseDate parses a date string in format "YYYY-MM-DD" or "YYYY-MM-DD HH:MM:SS" to time.Time.
func parseDate(dateStr string) (time.Time, error) {
	// Try full datetime format first
	t, err := time.Parse("2006-01-02 15:04:05", dateStr)
	if err == nil {
		return t, nil
	}

	// Try date-only format (defaults to start of day)
	t, err = time.Parse("2006-01-02", dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf(
			"invalid date format (expected YYYY-MM-DD or YYYY-MM-DD HH:MM:SS): %s",
			dateStr,
		)
	}

	return t, nil
}

// outputVerifyText outputs the verification result in human-readable text format.
func outputVerifyText(writer io.Writer, report *twofactorUseCase.VerificationReport, start, end time.Time) {
	_, _ = fmt.Fprintf(writer, "Verification Event Integrity Check\n")
	_, _ = fmt.Fprintf(writer, "==================================\n\n")
	_, _ = fmt.Fprintf(writer,
		"Time Range: %s to %s\n\n",
		start.Format("2006-01-02 15:04:05"),
		end.Format("2006-01-02 15:04:05"),
	)

	_, _ = fmt.Fprintf(writer, "Total Checked:  %d\n", report.TotalChecked)
	_, _ = fmt.Fprintf(writer, "Valid:          %d\n", report.Valid)
	_, _ = fmt.Fprintf(writer, "Invalid:        %d\n\n", report.Invalid)

	switch {
	case report.Invalid > 0:
		_, _ = fmt.Fprintf(writer, "WARNING: %d event(s) failed integrity check!\n\n", report.Invalid)
		_, _ = fmt.Fprintf(writer, "Invalid Event IDs:\n")
		for _, id := range report.InvalidIDs {
			_, _ = fmt.Fprintf(writer, "  - %s\n", id)
		}
		_, _ = fmt.Fprintf(writer, "\nStatus: FAILED ❌\n")
	case report.TotalChecked == 0:
		_, _ = fmt.Fprintf(writer, "Status: No events found in specified time range\n")
	default:
		_, _ = fmt.Fprintf(writer, "Status: PASSED ✓\n")
	}
}

// outputVerifyJSON outputs the verification result in JSON format for machine consumption.
func outputVerifyJSON(writer io.Writer, report *twofactorUseCase.VerificationReport) error {
	result := map[string]interface{}{
		"total_checked": report.TotalChecked,
		"valid_count":   report.Valid,
		"invalid_count": report.Invalid,
		"invalid_ids":   report.InvalidIDs,
		"passed":        report.Invalid == 0,
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	_, _ = fmt.Fprintln(writer, string(jsonBytes))
	return nil
}
