package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *SQLite {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLite_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)

	_, ok, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Set(ctx, CarouselKey("top"), "900"))
	require.NoError(t, s.Set(ctx, CarouselKey("top"), "1800"))

	v, ok, err := s.Get(ctx, CarouselKey("top"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "1800", v)

	require.NoError(t, s.Delete(ctx, CarouselKey("top"), "never-set"))
	_, ok, err = s.Get(ctx, CarouselKey("top"))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSQLite_SetManyIsAtomic(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)

	require.NoError(t, s.SetMany(ctx, map[string]string{
		KeyIsLoggedIn: "true",
		KeyUserID:     "u42",
		KeyLoginTime:  "1700000000000",
	}))

	for _, k := range []string{KeyIsLoggedIn, KeyUserID, KeyLoginTime} {
		_, ok, err := s.Get(ctx, k)
		require.NoError(t, err)
		require.True(t, ok, k)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	err := s.SetMany(cancelled, map[string]string{KeyUserID: "other", KeyLoginTime: "1"})
	require.Error(t, err)

	v, _, err := s.Get(ctx, KeyUserID)
	require.NoError(t, err)
	require.Equal(t, "u42", v, "failed batch must not leave partial writes")
}

func TestSQLite_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, KeySelectedGenre, "Action"))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	v, ok, err := s.Get(ctx, KeySelectedGenre)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "Action", v)
}

func TestMemory_CountsWritesAndFails(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Set(ctx, "a", "1"))
	require.NoError(t, m.Delete(ctx, "a"))
	require.Equal(t, 2, m.Writes())
	require.Empty(t, m.Snapshot())

	boom := errors.New("disk full")
	m.FailWith(boom)
	require.ErrorIs(t, m.Set(ctx, "a", "1"), boom)
	_, _, err := m.Get(ctx, "a")
	require.ErrorIs(t, err, boom)
	require.Equal(t, 2, m.Writes())
}
