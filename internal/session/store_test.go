package session

import (
	"context"
	"errors"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/existflow/animeshelf/internal/logger"
	"github.com/existflow/animeshelf/internal/storage"
)

var epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func clockAt(t time.Time) Option {
	return WithClock(func() time.Time { return t })
}

func seed(t *testing.T, kv storage.Store, userID string, loginTime time.Time) {
	t.Helper()
	require.NoError(t, kv.SetMany(context.Background(), map[string]string{
		storage.KeyIsLoggedIn: "true",
		storage.KeyUserID:     userID,
		storage.KeyLoginTime:  strconv.FormatInt(loginTime.UnixMilli(), 10),
	}))
}

func restore(kv storage.Store, now time.Time) *Store {
	return Restore(context.Background(), kv, clockAt(now), WithLogger(logger.Discard()))
}

func TestRestore_ExpiredSessionIsPurged(t *testing.T) {
	kv := storage.NewMemory()
	seed(t, kv, "u42", epoch.Add(-8*24*time.Hour))

	s := restore(kv, epoch)

	require.False(t, s.LoggedIn())
	require.Empty(t, s.UserID())
	require.Empty(t, kv.Snapshot())
}

func TestRestore_ExactlyTTLIsExpired(t *testing.T) {
	kv := storage.NewMemory()
	seed(t, kv, "u42", epoch.Add(-TTL))

	require.False(t, restore(kv, epoch).LoggedIn())
}

func TestRestore_FreshSessionSurvives(t *testing.T) {
	kv := storage.NewMemory()
	seed(t, kv, "u42", epoch.Add(-time.Hour))

	s := restore(kv, epoch)

	cur := s.Current()
	require.True(t, cur.LoggedIn)
	require.Equal(t, "u42", cur.UserID)
	require.Equal(t, epoch.Add(-time.Hour).UnixMilli(), cur.LoginTime.UnixMilli())
	require.Equal(t, epoch.Add(-time.Hour+TTL).UnixMilli(), cur.ExpiresAt().UnixMilli())
	require.Len(t, kv.Snapshot(), 3)
}

func TestRestore_CorruptStateIsPurged(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]string
	}{
		{"bad login time", map[string]string{
			storage.KeyIsLoggedIn: "true", storage.KeyUserID: "u42", storage.KeyLoginTime: "yesterday",
		}},
		{"missing login time", map[string]string{
			storage.KeyIsLoggedIn: "true", storage.KeyUserID: "u42",
		}},
		{"missing user", map[string]string{
			storage.KeyIsLoggedIn: "true", storage.KeyLoginTime: strconv.FormatInt(epoch.UnixMilli(), 10),
		}},
		{"blank user", map[string]string{
			storage.KeyIsLoggedIn: "true", storage.KeyUserID: " ", storage.KeyLoginTime: strconv.FormatInt(epoch.UnixMilli(), 10),
		}},
		{"future login", map[string]string{
			storage.KeyIsLoggedIn: "true", storage.KeyUserID: "u42", storage.KeyLoginTime: strconv.FormatInt(epoch.Add(time.Hour).UnixMilli(), 10),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := storage.NewMemory()
			require.NoError(t, kv.SetMany(context.Background(), tt.values))

			s := restore(kv, epoch)
			require.False(t, s.LoggedIn())
			require.Empty(t, kv.Snapshot())
		})
	}
}

func TestRestore_NotLoggedInLeavesStorageAlone(t *testing.T) {
	kv := storage.NewMemory()
	require.NoError(t, kv.SetMany(context.Background(), map[string]string{
		storage.KeyIsLoggedIn:    "false",
		storage.KeySelectedGenre: "Action",
	}))

	s := restore(kv, epoch)
	require.False(t, s.LoggedIn())
	require.Len(t, kv.Snapshot(), 2)
}

func TestRestore_ReadFailureStartsAnonymous(t *testing.T) {
	kv := storage.NewMemory()
	seed(t, kv, "u42", epoch)
	kv.FailWith(errors.New("database is locked"))

	s := restore(kv, epoch)
	require.False(t, s.LoggedIn())

	kv.FailWith(nil)
	require.Len(t, kv.Snapshot(), 3, "a read failure must not purge")
}

func TestLogin_SurvivesReload(t *testing.T) {
	kv, err := storage.Open(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	defer kv.Close()

	s := restore(kv, epoch)
	require.False(t, s.LoggedIn())
	require.NoError(t, s.Login(context.Background(), "u42"))
	require.True(t, s.LoggedIn())

	reloaded := restore(kv, epoch.Add(3*24*time.Hour))
	require.True(t, reloaded.LoggedIn())
	require.Equal(t, "u42", reloaded.UserID())

	expired := restore(kv, epoch.Add(TTL+time.Second))
	require.False(t, expired.LoggedIn())
}

func TestLogin_RejectsEmptyID(t *testing.T) {
	kv := storage.NewMemory()
	s := restore(kv, epoch)

	require.ErrorIs(t, s.Login(context.Background(), "  "), ErrEmptyUserID)
	require.Zero(t, kv.Writes())
}

func TestLogin_WriteFailureKeepsMemory(t *testing.T) {
	kv := storage.NewMemory()
	s := restore(kv, epoch)
	kv.FailWith(errors.New("disk full"))

	require.Error(t, s.Login(context.Background(), "u42"))
	require.False(t, s.LoggedIn())
}

func TestLogout_ClearsEverything(t *testing.T) {
	kv := storage.NewMemory()
	seed(t, kv, "u42", epoch)
	s := restore(kv, epoch)

	var seen []Session
	off := s.OnChange(func(cur Session) { seen = append(seen, cur) })
	defer off()

	require.NoError(t, s.Logout(context.Background()))
	require.False(t, s.LoggedIn())
	require.Empty(t, kv.Snapshot())
	require.Len(t, seen, 1)
	require.False(t, seen[0].LoggedIn)
}

func TestLogout_StorageFailureStillClearsMemory(t *testing.T) {
	kv := storage.NewMemory()
	seed(t, kv, "u42", epoch)
	s := restore(kv, epoch)
	kv.FailWith(errors.New("disk full"))

	require.Error(t, s.Logout(context.Background()))
	require.False(t, s.LoggedIn())
	require.True(t, s.Current().ExpiresAt().IsZero())
}
