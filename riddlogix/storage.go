package riddlogix

import (
	"context"

	"github.com/heroiclabs/nakama-common/runtime"
)

const (
	riddleStorageCollection      = "riddle_defs"
	bestStorageCollection        = "riddle_best"
	leaderboardStorageCollection = "riddle_leaders"
	achievementStorageCollection = "riddle_achievements"
	topScoreStorageCollection    = "riddle_counts"
	streaksStorageCollection     = "riddle_streaks"
)

// maxWriteAttempts bounds the optimistic retry loop on conditional write conflicts.
const maxWriteAttempts = 5

var (
	ErrStoreUnavailable = runtime.NewError("shared store unavailable", UNAVAILABLE_ERROR_CODE)        // UNAVAILABLE
	ErrRecordContended  = runtime.NewError("record contended, retries exhausted", ABORTED_ERROR_CODE) // ABORTED
)

// storageUpdateFn transforms the current stored value (empty string when the
// object does not exist yet) into its next value. Returning write=false leaves
// the object untouched and ends the transaction as a no-op.
type storageUpdateFn func(current string) (next string, write bool, err error)

// storageUpdate applies fn to one storage object as an optimistic transaction:
// read the object and its version, compute the next value, then write it back
// conditioned on the version read ("*" enforces create-only when the object was
// absent). A conflicting concurrent writer fails the conditional write, and the
// whole read-transform-write cycle is retried against the fresh value, up to
// maxWriteAttempts.
//
// The write template carries collection, key, owner and permissions; value and
// version are filled in here.
func storageUpdate(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, write *runtime.StorageWrite, fn storageUpdateFn) (committed string, written bool, err error) {
	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		objects, err := nk.StorageRead(ctx, []*runtime.StorageRead{{
			Collection: write.Collection,
			Key:        write.Key,
			UserID:     write.UserID,
		}})
		if err != nil {
			logger.Error("Failed to read storage object %s/%s: %v", write.Collection, write.Key, err)
			return "", false, ErrStoreUnavailable
		}

		current := ""
		version := "*"
		if len(objects) > 0 {
			current = objects[0].Value
			version = objects[0].Version
		}

		next, shouldWrite, err := fn(current)
		if err != nil {
			return "", false, err
		}
		if !shouldWrite {
			return current, false, nil
		}

		write.Value = next
		write.Version = version
		if _, err := nk.StorageWrite(ctx, []*runtime.StorageWrite{write}); err != nil {
			logger.Debug("Conditional write conflict on %s/%s (attempt %d): %v", write.Collection, write.Key, attempt+1, err)
			continue
		}
		return next, true, nil
	}

	logger.Error("Gave up updating storage object %s/%s after %d attempts", write.Collection, write.Key, maxWriteAttempts)
	return "", false, ErrRecordContended
}

// resolveCollection maps a system's default storage collection through the
// registry's optional collection resolver. Systems fall back to the default
// collection when no resolver is installed or the resolver fails.
func resolveCollection(ctx context.Context, rl Riddlogix, systemType SystemType, collection string) string {
	impl, ok := rl.(*riddlogixImpl)
	if !ok {
		return collection
	}
	resolved, err := impl.resolveCollection(ctx, systemType, collection)
	if err != nil || resolved == "" {
		return collection
	}
	return resolved
}

// storageGet reads one storage object and returns its raw value, or an empty
// string when the object does not exist.
func storageGet(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, collection, key, userID string) (string, error) {
	objects, err := nk.StorageRead(ctx, []*runtime.StorageRead{{
		Collection: collection,
		Key:        key,
		UserID:     userID,
	}})
	if err != nil {
		logger.Error("Failed to read storage object %s/%s: %v", collection, key, err)
		return "", ErrStoreUnavailable
	}
	if len(objects) == 0 {
		return "", nil
	}
	return objects[0].Value, nil
}
