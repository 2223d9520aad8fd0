package domain

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerificationLedger_RecordAndLookup(t *testing.T) {
	ledger := NewVerificationLedger()
	verifiedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	_, ok := ledger.LastVerifiedAt(DeleteAccountOperation)
	assert.False(t, ok)

	ledger.Record(DeleteAccountOperation, verifiedAt)

	got, ok := ledger.LastVerifiedAt(DeleteAccountOperation)
	require.True(t, ok)
	assert.Equal(t, verifiedAt, got)

	// Entries are scoped per kind.
	_, ok = ledger.LastVerifiedAt(BulkDeleteAccountsOperation)
	assert.False(t, ok)
}

func TestVerificationLedger_LastWriteWins(t *testing.T) {
	ledger := NewVerificationLedger()
	first := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	second := first.Add(2 * time.Minute)

	ledger.Record(ChangeRoleOperation, first)
	ledger.Record(ChangeRoleOperation, second)

	got, ok := ledger.LastVerifiedAt(ChangeRoleOperation)
	require.True(t, ok)
	assert.Equal(t, second, got)
	assert.Equal(t, 1, ledger.Len())
}

func TestVerificationLedger_Reset(t *testing.T) {
	ledger := NewVerificationLedger()
	now := time.Now().UTC()

	ledger.Record(DeleteAccountOperation, now)
	ledger.Record(BulkChangeRoleOperation, now)
	require.Equal(t, 2, ledger.Len())

	ledger.Reset()

	assert.Equal(t, 0, ledger.Len())
	_, ok := ledger.LastVerifiedAt(DeleteAccountOperation)
	assert.False(t, ok)
	_, ok = ledger.LastVerifiedAt(BulkChangeRoleOperation)
	assert.False(t, ok)
}

func TestVerificationLedger_ConcurrentAccess(t *testing.T) {
	ledger := NewVerificationLedger()
	kinds := OperationKinds()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			kind := kinds[i%len(kinds)]
			ledger.Record(kind, time.Now().UTC())
			_, _ = ledger.LastVerifiedAt(kind)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, len(kinds), ledger.Len())
}
