package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/existflow/animeshelf/internal/logger"
	"github.com/existflow/animeshelf/internal/mockapi"
	"github.com/existflow/animeshelf/internal/model"
)

func newMockClient(t *testing.T) *Client {
	t.Helper()
	srv := httptest.NewServer(mockapi.New(mockapi.Options{Logger: logger.Discard()}).Handler())
	t.Cleanup(srv.Close)

	c, err := New(srv.URL, WithLogger(logger.Discard()), WithUserAgent("animeshelf/test"))
	require.NoError(t, err)
	return c
}

func testContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestParseBaseURL(t *testing.T) {
	u, err := parseBaseURL("")
	require.NoError(t, err)
	require.Equal(t, defaultBaseURL, u.String())

	u, err = parseBaseURL("catalog.local:9000/api/?x=1#frag")
	require.NoError(t, err)
	require.Equal(t, "http://catalog.local:9000/api", u.String())

	_, err = parseBaseURL("http://")
	require.Error(t, err)
}

func TestClient_SendsHeadersAndEncodesQueries(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	t.Cleanup(srv.Close)

	c, err := New(srv.URL+"/v1/", WithLogger(logger.Discard()), WithUserAgent("animeshelf/1.2.3"))
	require.NoError(t, err)

	_, err = c.Search(testContext(t), "fullmetal & co", 30)
	require.NoError(t, err)

	require.Equal(t, "/v1/animes/search", got.URL.Path)
	require.Equal(t, url.Values{"q": {"fullmetal & co"}, "limit": {"30"}}, got.URL.Query())
	require.Equal(t, "application/json", got.Header.Get("Accept"))
	require.Equal(t, "animeshelf/1.2.3", got.Header.Get("User-Agent"))
	_, err = uuid.Parse(got.Header.Get(RequestIDHeader))
	require.NoError(t, err)

	_, err = c.ByGenre(testContext(t), "Slice of Life", 0)
	require.NoError(t, err)
	require.Equal(t, "/v1/animes/genre/Slice of Life", got.URL.Path)
	require.Empty(t, got.URL.RawQuery)
}

func TestClient_Lists(t *testing.T) {
	c := newMockClient(t)
	ctx := testContext(t)

	top, err := c.Top(ctx, 5)
	require.NoError(t, err)
	require.Len(t, top, 5)
	require.Equal(t, 5114, top[0].ID)

	popular, err := c.Popular(ctx, 0)
	require.NoError(t, err)
	require.Len(t, popular, 20)

	hits, err := c.Search(ctx, "naruto", 10)
	require.NoError(t, err)
	require.Len(t, hits, 2)

	none, err := c.Search(ctx, "   ", 10)
	require.NoError(t, err)
	require.Empty(t, none)

	sugg, err := c.Autocomplete(ctx, "cow")
	require.NoError(t, err)
	require.Equal(t, []model.Suggestion{{
		ID: 1, Title: "Cowboy Bebop", ImageURL: "https://cdn.myanimelist.net/images/anime/1.jpg",
	}}, sugg)

	genres, err := c.Genres(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, genres)

	romance, err := c.ByGenre(ctx, "Romance", 1)
	require.NoError(t, err)
	require.Len(t, romance, 1)
	require.Equal(t, "Clannad: After Story", romance[0].Title)
}

func TestClient_Details(t *testing.T) {
	c := newMockClient(t)
	ctx := testContext(t)

	d, err := c.Anime(ctx, 5114)
	require.NoError(t, err)
	require.Equal(t, "Fullmetal Alchemist: Brotherhood", d.Title)
	require.Equal(t, "Spring 2009", d.Aired())
	require.Len(t, d.Characters, 2)

	_, err = c.Anime(ctx, 424242)
	require.ErrorIs(t, err, ErrNotFound)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusNotFound, apiErr.Status)
	require.Equal(t, "anime not found", apiErr.Detail)
}

func TestClient_People(t *testing.T) {
	c := newMockClient(t)
	ctx := testContext(t)

	ch, err := c.Character(ctx, 11)
	require.NoError(t, err)
	require.Equal(t, "Elric, Edward", ch.Name)
	require.Len(t, ch.VoiceActors, 1)
	require.Equal(t, "Park, Romi", ch.VoiceActors[0].Name)

	va, err := c.VoiceActor(ctx, ch.VoiceActors[0].ID)
	require.NoError(t, err)
	require.Len(t, va.Characters, 1)
	require.Equal(t, ch.ID, va.Characters[0].ID)

	_, err = c.Character(ctx, 0)
	require.ErrorContains(t, err, "character id required")

	_, err = c.VoiceActor(ctx, 424242)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestClient_AccountFlow(t *testing.T) {
	c := newMockClient(t)
	ctx := testContext(t)
	creds := model.Credentials{Username: "faye", Password: "valentine"}

	msg, err := c.Register(ctx, creds)
	require.NoError(t, err)
	require.NotEmpty(t, msg)

	_, err = c.Login(ctx, model.Credentials{Username: "faye", Password: "nope"})
	require.ErrorIs(t, err, ErrUnauthorized)

	res, err := c.Login(ctx, creds)
	require.NoError(t, err)
	require.Equal(t, model.UserID("1"), res.UserID)

	_, err = c.RateAnime(ctx, model.Rating{UserID: res.UserID, AnimeID: 19, Rating: 10})
	require.NoError(t, err)

	_, err = c.RateAnime(ctx, model.Rating{UserID: res.UserID, AnimeID: 19, Rating: 0})
	require.Error(t, err)

	mine, err := c.MyAnimes(ctx, res.UserID.String())
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Equal(t, "Monster", mine[0].Title)

	recs, err := c.Recommendations(ctx, res.UserID.String())
	require.NoError(t, err)
	require.NotEmpty(t, recs)
}

func TestClient_ErrorDetailShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"detail string", `{"detail":"Usuário ou senha incorretos."}`, "Usuário ou senha incorretos."},
		{"detail list", `{"detail":[{"loc":["query","q"],"msg":"field required"}]}`, "field required"},
		{"message", `{"message":"Bad Gateway"}`, "Bad Gateway"},
		{"plain text", `upstream exploded`, "upstream exploded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
				_, _ = w.Write([]byte(tt.body))
			}))
			t.Cleanup(srv.Close)

			c, err := New(srv.URL, WithLogger(logger.Discard()))
			require.NoError(t, err)

			_, err = c.Top(testContext(t), 1)
			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			require.Equal(t, http.StatusBadGateway, apiErr.Status)
			require.Equal(t, tt.want, apiErr.Detail)
		})
	}
}

func TestClient_HonorsContext(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(block)
		srv.Close()
	})

	c, err := New(srv.URL, WithLogger(logger.Discard()))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.Autocomplete(ctx, "slow")
	require.ErrorIs(t, err, context.Canceled)
}
