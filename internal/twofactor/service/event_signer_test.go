package service

import (
	"crypto/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/stepup/internal/errors"
	twofactorDomain "github.com/allisson/stepup/internal/twofactor/domain"
)

func newTestSigner(t *testing.T) EventSigner {
	t.Helper()

	rootKey := make([]byte, 32)
	_, err := rand.Read(rootKey)
	require.NoError(t, err)

	signer, err := NewEventSigner(rootKey)
	require.NoError(t, err)
	return signer
}

func newTestEvent() *twofactorDomain.VerificationEvent {
	return &twofactorDomain.VerificationEvent{
		ID:          uuid.Must(uuid.NewV7()),
		RequestID:   uuid.Must(uuid.NewV7()),
		PrincipalID: "admin-42",
		SessionID:   "session-abc",
		Operation:   twofactorDomain.DeleteAccountOperation,
		EventType:   twofactorDomain.VerificationEventType,
		Metadata:    map[string]any{"source": "modal"},
		CreatedAt:   time.Now().UTC(),
	}
}

func TestNewEventSigner_EmptyKey(t *testing.T) {
	_, err := NewEventSigner(nil)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = NewEventSigner([]byte{})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestEventSigner_SignAndVerify(t *testing.T) {
	signer := newTestSigner(t)
	event := newTestEvent()

	signature, err := signer.Sign(event)
	require.NoError(t, err)
	assert.Len(t, signature, 32, "HMAC-SHA256 should produce 32-byte signature")

	event.Signature = signature

	err = signer.Verify(event)
	assert.NoError(t, err)
}

func TestEventSigner_VerifyDetectsOperationTampering(t *testing.T) {
	signer := newTestSigner(t)
	event := newTestEvent()

	signature, _ := signer.Sign(event)
	event.Signature = signature

	// Rewrite the event to claim a less sensitive operation
	event.Operation = twofactorDomain.CreateCustomRoleOperation

	err := signer.Verify(event)
	assert.ErrorIs(t, err, twofactorDomain.ErrSignatureInvalid)
}

func TestEventSigner_VerifyDetectsSessionTampering(t *testing.T) {
	signer := newTestSigner(t)
	event := newTestEvent()

	signature, _ := signer.Sign(event)
	event.Signature = signature

	// Move the event to another session
	event.SessionID = "session-xyz"

	err := signer.Verify(event)
	assert.ErrorIs(t, err, twofactorDomain.ErrSignatureInvalid)
}

func TestEventSigner_VerifyDetectsMetadataTampering(t *testing.T) {
	signer := newTestSigner(t)
	event := newTestEvent()

	signature, _ := signer.Sign(event)
	event.Signature = signature

	event.Metadata["source"] = "api"

	err := signer.Verify(event)
	assert.ErrorIs(t, err, twofactorDomain.ErrSignatureInvalid)
}

func TestEventSigner_DifferentKeysProduceDifferentSignatures(t *testing.T) {
	signer1 := newTestSigner(t)
	signer2 := newTestSigner(t)
	event := newTestEvent()

	sig1, err := signer1.Sign(event)
	require.NoError(t, err)
	sig2, err := signer2.Sign(event)
	require.NoError(t, err)

	assert.NotEqual(t, sig1, sig2, "Different keys should produce different signatures")
}

func TestEventSigner_ConsistentSignatures(t *testing.T) {
	signer := newTestSigner(t)
	event := newTestEvent()

	sig1, _ := signer.Sign(event)
	sig2, _ := signer.Sign(event)
	sig3, _ := signer.Sign(event)

	assert.Equal(t, sig1, sig2, "Signatures should be deterministic")
	assert.Equal(t, sig2, sig3, "Signatures should be deterministic")
}

func TestEventSigner_NilMetadata(t *testing.T) {
	signer := newTestSigner(t)
	event := newTestEvent()
	event.Metadata = nil

	signature, err := signer.Sign(event)
	require.NoError(t, err)

	event.Signature = signature
	err = signer.Verify(event)
	assert.NoError(t, err)
}

func TestEventSigner_ResetEvent(t *testing.T) {
	signer := newTestSigner(t)
	event := newTestEvent()
	event.Operation = ""
	event.EventType = twofactorDomain.ResetEventType

	signature, err := signer.Sign(event)
	require.NoError(t, err)

	event.Signature = signature
	err = signer.Verify(event)
	assert.NoError(t, err)
}

func TestEventSigner_VerifyWithWrongKey(t *testing.T) {
	signer1 := newTestSigner(t)
	signer2 := newTestSigner(t)
	event := newTestEvent()

	signature, _ := signer1.Sign(event)
	event.Signature = signature

	err := signer2.Verify(event)
	assert.ErrorIs(t, err, twofactorDomain.ErrSignatureInvalid, "Verification with wrong key should fail")
}
