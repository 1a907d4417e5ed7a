package cli

import (
	"bytes"
	"context"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/existflow/animeshelf/internal/logger"
	"github.com/existflow/animeshelf/internal/mockapi"
	"github.com/existflow/animeshelf/internal/storage"
)

// setup points the CLI at a fresh fixture catalog and a private home
// directory, returning the state database path
func setup(t *testing.T) string {
	t.Helper()

	srv := httptest.NewServer(mockapi.New(mockapi.Options{Logger: logger.Discard()}).Handler())
	t.Cleanup(srv.Close)

	home := t.TempDir()
	dbPath := filepath.Join(home, "state.db")
	t.Setenv("HOME", home)
	t.Setenv("ANIMESHELF_API_URL", srv.URL)
	t.Setenv("ANIMESHELF_DB_PATH", dbPath)
	return dbPath
}

// resetFlags undoes the previous invocation; cobra keeps parsed values on
// the package-level commands
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, "", args...)
	require.NoError(t, err, out)
	return out
}

func readKey(t *testing.T, dbPath, key string) (string, bool) {
	t.Helper()
	db, err := storage.Open(dbPath)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	v, ok, err := db.Get(context.Background(), key)
	require.NoError(t, err)
	return v, ok
}

func TestTop_LimitFlagIsRemembered(t *testing.T) {
	dbPath := setup(t)

	out := mustRun(t, "top", "-n", "3")
	require.Contains(t, out, "Best ratings (3)")
	require.Contains(t, out, "Fullmetal Alchemist: Brotherhood")

	v, ok := readKey(t, dbPath, storage.KeyTopAnimesLimit)
	require.True(t, ok)
	require.Equal(t, "3", v)

	out = mustRun(t, "top")
	require.Contains(t, out, "Best ratings (3)")
}

func TestLimit_ShowSetAndReject(t *testing.T) {
	setup(t)

	out := mustRun(t, "limit")
	require.Contains(t, out, "top      20")
	require.Contains(t, out, "search   25")

	out = mustRun(t, "limit", "search", "5000")
	require.Contains(t, out, "search limit set to 1000")

	_, err := run(t, "", "limit", "top", "abc")
	require.ErrorContains(t, err, "positive number")

	_, err = run(t, "", "limit", "nope", "3")
	require.ErrorContains(t, err, "unknown list")
}

func TestSearch_RemembersQuery(t *testing.T) {
	dbPath := setup(t)

	out := mustRun(t, "search", "naruto")
	require.Contains(t, out, "Naruto: Shippuuden")

	v, ok := readKey(t, dbPath, storage.KeyAnimeSearch)
	require.True(t, ok)
	require.Equal(t, "naruto", v)

	out = mustRun(t, "search", "zzzz")
	require.Contains(t, out, `No results for "zzzz"`)
}

func TestSuggest_SettlesOnOneFetch(t *testing.T) {
	setup(t)

	out := mustRun(t, "suggest", "na")
	require.Contains(t, out, "Naruto")

	_, err := run(t, "", "suggest", "n")
	require.ErrorContains(t, err, "at least 2 characters")
}

func TestShow(t *testing.T) {
	setup(t)

	out := mustRun(t, "show", "5114")
	require.Contains(t, out, "Fullmetal Alchemist: Brotherhood")
	require.Contains(t, out, "Spring 2009")
	require.Contains(t, out, "Bones")

	_, err := run(t, "", "show", "abc")
	require.ErrorContains(t, err, "invalid anime id")

	_, err = run(t, "", "show", "424242")
	require.ErrorContains(t, err, "not found")
}

func TestShow_FollowCastToPeople(t *testing.T) {
	setup(t)

	out := mustRun(t, "show", "5114")
	require.Contains(t, out, "Elric, Edward [11] (Park, Romi [81])")

	out = mustRun(t, "character", "11")
	require.Contains(t, out, "Elric, Edward")
	require.Contains(t, out, "State Alchemist")
	require.Contains(t, out, "Park, Romi [81]")

	out = mustRun(t, "va", "81")
	require.Contains(t, out, "1972-01-21")
	require.Contains(t, out, "Elric, Edward [11]")

	_, err := run(t, "", "character", "x")
	require.ErrorContains(t, err, "invalid character id")

	_, err = run(t, "", "voice-actor", "999")
	require.ErrorContains(t, err, "not found")
}

func TestGenre_SetShowClear(t *testing.T) {
	dbPath := setup(t)

	out := mustRun(t, "genre")
	require.Contains(t, out, "No genre selected")

	out = mustRun(t, "genre", "set", "romance")
	require.Contains(t, out, "Switched to: Romance")

	v, _ := readKey(t, dbPath, storage.KeySelectedGenre)
	require.Equal(t, "Romance", v)

	out = mustRun(t, "genre")
	require.Contains(t, out, "Current genre: Romance")

	out = mustRun(t, "genre", "ls")
	require.Regexp(t, `❯ \d+\s+Romance`, out)

	out = mustRun(t, "genre", "show", "-n", "1")
	require.Contains(t, out, "Clannad: After Story")

	_, err := run(t, "", "genre", "set", "nope")
	require.ErrorContains(t, err, "genre not found")

	mustRun(t, "genre", "clear")
	_, ok := readKey(t, dbPath, storage.KeySelectedGenre)
	require.False(t, ok)

	_, err = run(t, "", "genre", "show")
	require.ErrorContains(t, err, "no genre selected")
}

func TestAuth_RegisterRateAndLogout(t *testing.T) {
	dbPath := setup(t)

	out := mustRun(t, "auth", "status")
	require.Contains(t, out, "Not logged in")

	_, err := run(t, "", "rate", "1", "9")
	require.ErrorContains(t, err, "not logged in")

	_, err = run(t, "spike\nbebop\nnope\n", "auth", "register")
	require.ErrorContains(t, err, "passwords do not match")

	out, err = run(t, "spike\nbebop\nbebop\n", "auth", "register")
	require.NoError(t, err, out)
	require.Contains(t, out, "logged in as user 1")

	v, _ := readKey(t, dbPath, storage.KeyUserID)
	require.Equal(t, "1", v)

	out = mustRun(t, "auth", "status")
	require.Contains(t, out, "Logged in as user 1")

	mustRun(t, "rate", "1", "9")
	out = mustRun(t, "my-animes")
	require.Contains(t, out, " 9/10")
	require.Contains(t, out, "Cowboy Bebop")

	out = mustRun(t, "recommend")
	require.Contains(t, out, "Recommended for you")
	require.NotContains(t, out, "Cowboy Bebop")

	_, err = run(t, "", "rate", "1", "11")
	require.ErrorContains(t, err, "between 1 and 10")

	out = mustRun(t, "auth", "logout")
	require.Contains(t, out, "Logged out")
	_, ok := readKey(t, dbPath, storage.KeyIsLoggedIn)
	require.False(t, ok)
}

func TestAuth_LoginWithFlagAndBadPassword(t *testing.T) {
	setup(t)

	_, err := run(t, "spike\nbebop\nbebop\n", "auth", "register")
	require.NoError(t, err)
	mustRun(t, "auth", "logout")

	_, err = run(t, "wrong\n", "auth", "login", "-u", "spike")
	require.ErrorContains(t, err, "invalid username or password")

	out, err := run(t, "bebop\n", "auth", "login", "-u", "spike")
	require.NoError(t, err, out)
	require.Contains(t, out, "Logged in as user 1")
}
