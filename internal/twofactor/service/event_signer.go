package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	apperrors "github.com/allisson/stepup/internal/errors"
	twofactorDomain "github.com/allisson/stepup/internal/twofactor/domain"
)

type eventSigner struct {
	rootKey []byte
}

// NewEventSigner creates an HMAC-based verification event signer using
// HKDF-SHA256 for key derivation and HMAC-SHA256 for signature generation.
// The root key comes from configuration and must not be empty.
func NewEventSigner(rootKey []byte) (EventSigner, error) {
	if len(rootKey) == 0 {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "event signing key must not be empty")
	}

	key := make([]byte, len(rootKey))
	copy(key, rootKey)

	return &eventSigner{rootKey: key}, nil
}

// deriveSigningKey uses HKDF-SHA256 to derive a 32-byte signing key from the
// configured root key. Info parameter: "verification-event-signing-v1"
// (versioned for future algorithm changes).
func (s *eventSigner) deriveSigningKey() ([]byte, error) {
	info := []byte("verification-event-signing-v1")
	hash := sha256.New
	hkdf := hkdf.New(hash, s.rootKey, nil, info)

	signingKey := make([]byte, 32)
	if _, err := io.ReadFull(hkdf, signingKey); err != nil {
		return nil, err
	}

	return signingKey, nil
}

// canonicalizeEvent converts a verification event to canonical bytes for signing.
// Format: request_id || principal_id || session_id || operation || event_type || metadata || created_at
// Uses length-prefixed encoding for variable-length fields to prevent ambiguity.
func (s *eventSigner) canonicalizeEvent(event *twofactorDomain.VerificationEvent) ([]byte, error) {
	buf := make([]byte, 0, 512)

	// Request ID (16 bytes)
	buf = append(buf, event.RequestID[:]...)

	// Variable-length identity and classification fields (length-prefixed)
	buf = appendLengthPrefixed(buf, []byte(event.PrincipalID))
	buf = appendLengthPrefixed(buf, []byte(event.SessionID))
	buf = appendLengthPrefixed(buf, []byte(string(event.Operation)))
	buf = appendLengthPrefixed(buf, []byte(string(event.EventType)))

	// Metadata JSON (length-prefixed, deterministic serialization)
	if event.Metadata != nil {
		metadataBytes, err := json.Marshal(event.Metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal metadata: %w", err)
		}
		buf = appendLengthPrefixed(buf, metadataBytes)
	} else {
		// Empty metadata = 0 length prefix
		buf = appendLengthPrefixed(buf, nil)
	}

	// Timestamp (Unix nano for precision)
	timeBytes := make([]byte, 8)
	binary.BigEndian.PutUint64(timeBytes, uint64(event.CreatedAt.UnixNano()))
	buf = append(buf, timeBytes...)

	return buf, nil
}

// appendLengthPrefixed adds a 4-byte big-endian length prefix followed by data.
// Format: [length (4 bytes)] + [data (length bytes)]
// Panics if data length exceeds uint32 max (4GB) to prevent integer overflow.
func appendLengthPrefixed(buf []byte, data []byte) []byte {
	dataLen := len(data)
	if dataLen > 0xFFFFFFFF {
		panic("data length exceeds uint32 max (4GB)")
	}
	length := make([]byte, 4)
	binary.BigEndian.PutUint32(length, uint32(dataLen))
	buf = append(buf, length...)
	buf = append(buf, data...)
	return buf
}

// Sign generates an HMAC-SHA256 signature for the verification event.
// Returns a 32-byte signature or an error if signing fails.
func (s *eventSigner) Sign(event *twofactorDomain.VerificationEvent) ([]byte, error) {
	signingKey, err := s.deriveSigningKey()
	if err != nil {
		return nil, fmt.Errorf("failed to derive signing key: %w", err)
	}
	defer zero(signingKey)

	canonical, err := s.canonicalizeEvent(event)
	if err != nil {
		return nil, fmt.Errorf("failed to canonicalize event: %w", err)
	}

	mac := hmac.New(sha256.New, signingKey)
	mac.Write(canonical)
	signature := mac.Sum(nil)

	return signature, nil
}

// Verify checks if the verification event signature is valid.
// Returns nil if valid, ErrSignatureInvalid if tampered or invalid.
func (s *eventSigner) Verify(event *twofactorDomain.VerificationEvent) error {
	expectedSig, err := s.Sign(event)
	if err != nil {
		return fmt.Errorf("failed to compute expected signature: %w", err)
	}

	if !hmac.Equal(event.Signature, expectedSig) {
		return twofactorDomain.ErrSignatureInvalid
	}

	return nil
}

// zero overwrites sensitive data in memory with zeros.
func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
