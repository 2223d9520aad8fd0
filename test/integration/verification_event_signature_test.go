package integration

import (
	"context"
	"database/sql"
	"encoding/hex"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/stepup/internal/database"
	"github.com/allisson/stepup/internal/testutil"
	twofactorDomain "github.com/allisson/stepup/internal/twofactor/domain"
	twofactorRepository "github.com/allisson/stepup/internal/twofactor/repository"
	twofactorService "github.com/allisson/stepup/internal/twofactor/service"
	twofactorUseCase "github.com/allisson/stepup/internal/twofactor/usecase"
)

// signatureTestContext holds dependencies for journal signature tests.
type signatureTestContext struct {
	db          *sql.DB
	driver      string
	registry    *twofactorUseCase.SessionRegistry
	enforcement twofactorUseCase.EnforcementUseCase
	journal     twofactorUseCase.VerificationEventUseCase
}

// setupSignatureTest wires the journal pipeline against a migrated database.
// The status provider points at an unreachable address: recording and
// verifying events never consults it.
func setupSignatureTest(t *testing.T, driver string) *signatureTestContext {
	t.Helper()

	var db *sql.DB
	var eventRepo twofactorUseCase.VerificationEventRepository
	if driver == "postgres" {
		db = testutil.SetupPostgresDB(t)
		eventRepo = twofactorRepository.NewPostgreSQLVerificationEventRepository(db)
	} else {
		db = testutil.SetupMySQLDB(t)
		eventRepo = twofactorRepository.NewMySQLVerificationEventRepository(db)
	}
	t.Cleanup(func() { testutil.TeardownDB(t, db) })

	rootKey, err := hex.DecodeString(testSigningKey)
	require.NoError(t, err, "failed to decode signing key")

	eventSigner, err := twofactorService.NewEventSigner(rootKey)
	require.NoError(t, err, "failed to create event signer")

	registry := twofactorUseCase.NewSessionRegistry(time.Hour)
	t.Cleanup(registry.Close)

	provider := twofactorService.NewHTTPStatusProvider("http://127.0.0.1:0", "", time.Second)

	enforcement := twofactorUseCase.NewEnforcementUseCase(
		registry,
		provider,
		eventRepo,
		eventSigner,
		5*time.Minute,
		slog.Default(),
	)

	journal := twofactorUseCase.NewVerificationEventUseCase(
		database.NewTxManager(db),
		eventRepo,
		eventSigner,
	)

	return &signatureTestContext{
		db:          db,
		driver:      driver,
		registry:    registry,
		enforcement: enforcement,
		journal:     journal,
	}
}

// tamperEvent rewrites the principal_id of a stored event directly in the
// database, bypassing the signer.
func tamperEvent(t *testing.T, testCtx *signatureTestContext, id uuid.UUID) {
	t.Helper()

	var result sql.Result
	var err error
	if testCtx.driver == "postgres" {
		result, err = testCtx.db.Exec(
			"UPDATE verification_events SET principal_id = 'intruder' WHERE id = $1", id)
	} else {
		// MySQL stores UUID as BINARY(16), need binary representation
		idBinary, marshalErr := id.MarshalBinary()
		require.NoError(t, marshalErr, "failed to marshal UUID")
		result, err = testCtx.db.Exec(
			"UPDATE verification_events SET principal_id = 'intruder' WHERE id = ?", idBinary)
	}
	require.NoError(t, err, "failed to tamper with verification event")

	rowsAffected, err := result.RowsAffected()
	require.NoError(t, err)
	require.Equal(t, int64(1), rowsAffected, "UPDATE should affect exactly 1 row")
}

// cleanJournal truncates the journal table so batch counts start from zero.
func cleanJournal(t *testing.T, testCtx *signatureTestContext) {
	t.Helper()

	if testCtx.driver == "postgres" {
		testutil.CleanupPostgresDB(t, testCtx.db)
	} else {
		testutil.CleanupMySQLDB(t, testCtx.db)
	}
}

// TestVerificationEventSignature_EndToEnd verifies the complete journal
// signing and verification workflow including tamper detection.
func TestVerificationEventSignature_EndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	dbConfigs := []struct {
		name   string
		driver string
		skip   func(*testing.T)
	}{
		{name: "PostgreSQL", driver: "postgres", skip: testutil.SkipIfNoPostgres},
		{name: "MySQL", driver: "mysql", skip: testutil.SkipIfNoMySQL},
	}

	for _, dbConfig := range dbConfigs {
		t.Run(dbConfig.name, func(t *testing.T) {
			dbConfig.skip(t)

			ctx := context.Background()
			testCtx := setupSignatureTest(t, dbConfig.driver)

			actor := twofactorDomain.Actor{
				PrincipalID: "admin-42",
				SessionID:   "session-signature",
			}

			t.Run("SignedEventRoundTrip", func(t *testing.T) {
				requestID := uuid.Must(uuid.NewV7())
				metadata := map[string]any{
					"user_agent": "integration-test",
					"ip_address": "127.0.0.1",
				}

				err := testCtx.enforcement.RecordVerification(
					ctx, actor, twofactorDomain.DeleteAccountOperation, requestID, metadata)
				require.NoError(t, err, "failed to record verification")

				events, err := testCtx.journal.List(ctx, 0, 1, nil, nil)
				require.NoError(t, err, "failed to list verification events")
				require.Len(t, events, 1, "expected exactly one event")

				event := events[0]
				assert.Equal(t, requestID, event.RequestID)
				assert.Equal(t, twofactorDomain.VerificationEventType, event.EventType)
				assert.NotEmpty(t, event.Signature, "signature should not be empty")

				err = testCtx.journal.VerifyIntegrity(ctx, event.ID)
				assert.NoError(t, err, "signature verification should succeed after round trip")
			})

			t.Run("ResetEventSigned", func(t *testing.T) {
				requestID := uuid.Must(uuid.NewV7())

				err := testCtx.enforcement.ResetAll(ctx, actor, requestID)
				require.NoError(t, err, "failed to reset session")

				events, err := testCtx.journal.List(ctx, 0, 1, nil, nil)
				require.NoError(t, err, "failed to list verification events")
				require.Len(t, events, 1, "expected exactly one event")

				event := events[0]
				assert.Equal(t, twofactorDomain.ResetEventType, event.EventType)
				assert.Empty(t, string(event.Operation), "reset events carry no operation")

				err = testCtx.journal.VerifyIntegrity(ctx, event.ID)
				assert.NoError(t, err, "reset event signature should verify")
			})

			t.Run("TamperDetection", func(t *testing.T) {
				requestID := uuid.Must(uuid.NewV7())

				err := testCtx.enforcement.RecordVerification(
					ctx, actor, twofactorDomain.ChangeRoleOperation, requestID, nil)
				require.NoError(t, err, "failed to record verification")

				events, err := testCtx.journal.List(ctx, 0, 1, nil, nil)
				require.NoError(t, err, "failed to list verification events")
				require.Len(t, events, 1)

				tamperEvent(t, testCtx, events[0].ID)

				err = testCtx.journal.VerifyIntegrity(ctx, events[0].ID)
				assert.Error(t, err, "verification should fail for tampered event")
				assert.ErrorIs(t, err, twofactorDomain.ErrSignatureInvalid)
			})

			t.Run("VerifyBatch_AllValid", func(t *testing.T) {
				cleanJournal(t, testCtx)
				startTime := time.Now().UTC().Add(-time.Second)
				kinds := []twofactorDomain.OperationKind{
					twofactorDomain.DeleteAccountOperation,
					twofactorDomain.BulkDeleteAccountsOperation,
					twofactorDomain.BulkChangeRoleOperation,
				}

				batchActor := twofactorDomain.Actor{
					PrincipalID: "admin-43",
					SessionID:   "session-batch-valid",
				}

				for _, kind := range kinds {
					err := testCtx.enforcement.RecordVerification(
						ctx, batchActor, kind, uuid.Must(uuid.NewV7()), nil)
					require.NoError(t, err, "failed to record verification")
					time.Sleep(10 * time.Millisecond) // Ensure distinct timestamps
				}

				endTime := time.Now().UTC().Add(time.Second)

				report, err := testCtx.journal.VerifyBatch(ctx, startTime, endTime)
				require.NoError(t, err, "batch verification should succeed")

				assert.Equal(t, int64(3), report.TotalChecked, "should check 3 events")
				assert.Equal(t, int64(3), report.Valid, "all 3 should be valid")
				assert.Equal(t, int64(0), report.Invalid, "no invalid events")
				assert.Empty(t, report.InvalidIDs, "no invalid event IDs")
			})

			t.Run("VerifyBatch_WithInvalid", func(t *testing.T) {
				cleanJournal(t, testCtx)
				startTime := time.Now().UTC().Add(-time.Second)

				batchActor := twofactorDomain.Actor{
					PrincipalID: "admin-44",
					SessionID:   "session-batch-invalid",
				}

				for i := 0; i < 3; i++ {
					err := testCtx.enforcement.RecordVerification(
						ctx, batchActor, twofactorDomain.DeleteAccountOperation,
						uuid.Must(uuid.NewV7()), nil)
					require.NoError(t, err, "failed to record verification")
					time.Sleep(10 * time.Millisecond)
				}

				endTime := time.Now().UTC().Add(time.Second)

				events, err := testCtx.journal.List(ctx, 0, 3, &startTime, &endTime)
				require.NoError(t, err, "failed to list verification events")
				require.Len(t, events, 3, "expected 3 events")

				// Tamper with the middle event
				tamperEvent(t, testCtx, events[1].ID)

				report, err := testCtx.journal.VerifyBatch(ctx, startTime, endTime)
				require.NoError(t, err, "batch verification should not error")

				assert.Equal(t, int64(3), report.TotalChecked, "should check 3 events")
				assert.Equal(t, int64(2), report.Valid, "2 should be valid")
				assert.Equal(t, int64(1), report.Invalid, "1 should be invalid")
				require.Len(t, report.InvalidIDs, 1, "should have 1 invalid event ID")
				assert.Equal(t, events[1].ID, report.InvalidIDs[0], "invalid ID should match tampered event")
			})
		})
	}
}
