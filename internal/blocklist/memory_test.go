package blocklist

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func Test_MemoryBlocklist(t *testing.T) {
	t.Parallel()

	t.Run("absent jti is not revoked", func(t *testing.T) {
		b := NewMemory()

		revoked, err := b.Contains(t.Context(), "unknown-jti")

		require.NoError(t, err)
		require.False(t, revoked, "absent entry must mean not revoked")
	})

	t.Run("added jti is revoked", func(t *testing.T) {
		b := NewMemory()

		err := b.Add(t.Context(), "some-jti", time.Hour)
		require.NoError(t, err)

		revoked, err := b.Contains(t.Context(), "some-jti")
		require.NoError(t, err)
		require.True(t, revoked)
	})

	t.Run("entry expires after ttl", func(t *testing.T) {
		b := NewMemory()

		now := time.Now()
		b.now = func() time.Time { return now }

		err := b.Add(t.Context(), "some-jti", time.Hour)
		require.NoError(t, err)

		// Jump past the entry deadline
		b.now = func() time.Time { return now.Add(time.Hour + time.Second) }

		revoked, err := b.Contains(t.Context(), "some-jti")
		require.NoError(t, err)
		require.False(t, revoked, "entry should self-expire after ttl")
	})

	t.Run("re-add extends entry", func(t *testing.T) {
		b := NewMemory()

		now := time.Now()
		b.now = func() time.Time { return now }

		require.NoError(t, b.Add(t.Context(), "some-jti", time.Minute))
		require.NoError(t, b.Add(t.Context(), "some-jti", time.Hour))

		b.now = func() time.Time { return now.Add(30 * time.Minute) }

		revoked, err := b.Contains(t.Context(), "some-jti")
		require.NoError(t, err)
		require.True(t, revoked, "later add with longer ttl should win")
	})
}
