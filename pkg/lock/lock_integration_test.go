package lock_test

import (
	"context"
	"testing"
	"time"

	"github.com/dhis2-sre/im-atlas/pkg/inttest"
	"github.com/dhis2-sre/im-atlas/pkg/lock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisLocker(t *testing.T) {
	t.Parallel()

	client := inttest.SetupRedis(t)
	ctx := context.Background()

	t.Run("IsExclusive", func(t *testing.T) {
		locker := lock.NewRedisLocker(client, time.Minute)

		unlock, err := locker.Lock(ctx, "exclusive")
		require.NoError(t, err)

		_, err = locker.Lock(ctx, "exclusive")
		assert.ErrorIs(t, err, lock.ErrLocked)

		require.NoError(t, unlock())

		unlock, err = locker.Lock(ctx, "exclusive")
		require.NoError(t, err)
		require.NoError(t, unlock())
	})

	t.Run("Expires", func(t *testing.T) {
		locker := lock.NewRedisLocker(client, 100*time.Millisecond)

		_, err := locker.Lock(ctx, "expires")
		require.NoError(t, err)

		require.Eventually(t, func() bool {
			unlock, err := locker.Lock(ctx, "expires")
			if err != nil {
				return false
			}
			return unlock() == nil
		}, 5*time.Second, 50*time.Millisecond)
	})

	t.Run("DoesNotReleaseLockTakenOver", func(t *testing.T) {
		locker := lock.NewRedisLocker(client, 100*time.Millisecond)

		staleUnlock, err := locker.Lock(ctx, "taken-over")
		require.NoError(t, err)

		var unlock lock.Unlock
		require.Eventually(t, func() bool {
			unlock, err = locker.Lock(ctx, "taken-over")
			return err == nil
		}, 5*time.Second, 50*time.Millisecond)

		require.NoError(t, staleUnlock())
		value, err := client.Get("taken-over").Result()
		require.NoError(t, err)
		assert.NotEmpty(t, value)

		require.NoError(t, unlock())
	})
}
