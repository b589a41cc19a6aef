package riddlogix

import (
	"context"
	"testing"

	"github.com/heroiclabs/nakama-common/runtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Mock logger for tests
type mockTestLogger struct{}

func (l *mockTestLogger) Debug(format string, v ...interface{})                   {}
func (l *mockTestLogger) Info(format string, v ...interface{})                    {}
func (l *mockTestLogger) Warn(format string, v ...interface{})                    {}
func (l *mockTestLogger) Error(format string, v ...interface{})                   {}
func (l *mockTestLogger) WithField(key string, value interface{}) runtime.Logger  { return l }
func (l *mockTestLogger) WithFields(fields map[string]interface{}) runtime.Logger { return l }
func (l *mockTestLogger) Fields() map[string]interface{}                          { return map[string]interface{}{} }

func testWrite(collection, key, userID string) *runtime.StorageWrite {
	return &runtime.StorageWrite{
		Collection:      collection,
		Key:             key,
		UserID:          userID,
		PermissionRead:  runtime.STORAGE_PERMISSION_PUBLIC_READ,
		PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
	}
}

// Test creating an absent object through the transaction helper
func TestStorageUpdate_CreatesAbsentObject(t *testing.T) {
	logger := &mockTestLogger{}
	nk := NewMockNakama(t)
	ctx := context.Background()

	committed, written, err := storageUpdate(ctx, logger, nk, testWrite("col", "key", ""), func(current string) (string, bool, error) {
		assert.Equal(t, "", current)
		return `{"v":1}`, true, nil
	})
	require.NoError(t, err)
	assert.True(t, written)
	assert.Equal(t, `{"v":1}`, committed)

	value, ok := nk.StoredValue("col", "key", "")
	assert.True(t, ok)
	assert.Equal(t, `{"v":1}`, value)
}

// Test that returning write=false leaves the store untouched
func TestStorageUpdate_NoOpSkipsWrite(t *testing.T) {
	logger := &mockTestLogger{}
	nk := NewMockNakama(t)
	ctx := context.Background()
	nk.SeedObject("col", "key", "", `{"v":1}`)

	committed, written, err := storageUpdate(ctx, logger, nk, testWrite("col", "key", ""), func(current string) (string, bool, error) {
		assert.Equal(t, `{"v":1}`, current)
		return "", false, nil
	})
	require.NoError(t, err)
	assert.False(t, written)
	assert.Equal(t, `{"v":1}`, committed)
}

// Test that a concurrent writer fails the conditional write and the
// transaction retries against the fresh value
func TestStorageUpdate_RetriesOnVersionConflict(t *testing.T) {
	logger := &mockTestLogger{}
	nk := NewMockNakama(t)
	ctx := context.Background()
	nk.SeedObject("col", "key", "", `{"v":1}`)

	seen := make([]string, 0, 2)
	raced := false
	nk.WriteHook = func(writes []*runtime.StorageWrite) error {
		if !raced {
			// Another writer lands between our read and write.
			raced = true
			nk.SeedObject("col", "key", "", `{"v":2}`)
		}
		return nil
	}

	committed, written, err := storageUpdate(ctx, logger, nk, testWrite("col", "key", ""), func(current string) (string, bool, error) {
		seen = append(seen, current)
		return `{"v":3}`, true, nil
	})
	require.NoError(t, err)
	assert.True(t, written)
	assert.Equal(t, `{"v":3}`, committed)
	// The first attempt saw the stale value, the retry saw the racer's write.
	assert.Equal(t, []string{`{"v":1}`, `{"v":2}`}, seen)
}

// Test that the retry loop gives up after maxWriteAttempts
func TestStorageUpdate_GivesUpWhenContended(t *testing.T) {
	logger := &mockTestLogger{}
	nk := NewMockNakama(t)
	ctx := context.Background()

	attempts := 0
	nk.WriteHook = func(writes []*runtime.StorageWrite) error {
		attempts++
		return runtime.NewError("storage write rejected: version check failed", 3)
	}

	_, written, err := storageUpdate(ctx, logger, nk, testWrite("col", "key", ""), func(current string) (string, bool, error) {
		return `{"v":1}`, true, nil
	})
	assert.ErrorIs(t, err, ErrRecordContended)
	assert.False(t, written)
	assert.Equal(t, maxWriteAttempts, attempts)
}

// Test that a read failure surfaces as a store-unavailable error
func TestStorageUpdate_ReadFailure(t *testing.T) {
	logger := &mockTestLogger{}
	nk := NewMockNakama(t)
	ctx := context.Background()
	nk.ReadErr = runtime.NewError("db down", 14)

	_, _, err := storageUpdate(ctx, logger, nk, testWrite("col", "key", ""), func(current string) (string, bool, error) {
		t.Fatal("update fn must not run when the read fails")
		return "", false, nil
	})
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

// Test that an error from the update fn aborts without writing
func TestStorageUpdate_FnErrorAborts(t *testing.T) {
	logger := &mockTestLogger{}
	nk := NewMockNakama(t)
	ctx := context.Background()

	_, written, err := storageUpdate(ctx, logger, nk, testWrite("col", "key", ""), func(current string) (string, bool, error) {
		return "", false, ErrPayloadDecode
	})
	assert.ErrorIs(t, err, ErrPayloadDecode)
	assert.False(t, written)
	_, ok := nk.StoredValue("col", "key", "")
	assert.False(t, ok)
}

func TestStorageGet(t *testing.T) {
	logger := &mockTestLogger{}
	nk := NewMockNakama(t)
	ctx := context.Background()
	nk.SeedObject("col", "key", "user1", `{"v":1}`)

	value, err := storageGet(ctx, logger, nk, "col", "key", "user1")
	require.NoError(t, err)
	assert.Equal(t, `{"v":1}`, value)

	value, err = storageGet(ctx, logger, nk, "col", "missing", "user1")
	require.NoError(t, err)
	assert.Equal(t, "", value)
}
