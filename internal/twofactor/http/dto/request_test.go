package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecordVerificationRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		request RecordVerificationRequest
		wantErr bool
	}{
		{
			name:    "Success_KnownOperation",
			request: RecordVerificationRequest{Operation: "bulk-delete-accounts"},
			wantErr: false,
		},
		{
			name: "Success_WithMetadata",
			request: RecordVerificationRequest{
				Operation: "change-role-single",
				Metadata:  map[string]any{"method": "totp"},
			},
			wantErr: false,
		},
		{
			name:    "Error_EmptyOperation",
			request: RecordVerificationRequest{Operation: ""},
			wantErr: true,
		},
		{
			name:    "Error_BlankOperation",
			request: RecordVerificationRequest{Operation: "   "},
			wantErr: true,
		},
		{
			name:    "Error_UnknownOperation",
			request: RecordVerificationRequest{Operation: "drop-all-tables"},
			wantErr: true,
		},
		{
			name:    "Error_WrongCase",
			request: RecordVerificationRequest{Operation: "Bulk-Delete-Accounts"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
