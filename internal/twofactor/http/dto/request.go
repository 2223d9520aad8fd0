// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"

	twofactorDomain "github.com/allisson/stepup/internal/twofactor/domain"
	customValidation "github.com/allisson/stepup/internal/validation"
)

// RecordVerificationRequest contains the parameters for recording a
// completed interactive two-factor verification.
type RecordVerificationRequest struct {
	Operation string         `json:"operation"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Validate checks if the record verification request is valid. The operation
// slug must belong to the registered policy table.
func (r *RecordVerificationRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Operation,
			validation.Required,
			customValidation.NotBlank,
			validation.By(validateOperationKind),
		),
	)
}

// validateOperationKind checks that a slug names a registered operation kind.
func validateOperationKind(value interface{}) error {
	slug, ok := value.(string)
	if !ok {
		return validation.NewError("validation_operation_type", "must be a string")
	}

	if _, err := twofactorDomain.ParseOperationKind(slug); err != nil {
		return validation.NewError("validation_operation_unknown", "must be a registered operation kind")
	}

	return nil
}
