// Package catalog is the HTTP client for the anime catalog API.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/existflow/animeshelf/internal/logger"
	"github.com/existflow/animeshelf/internal/model"
)

const (
	defaultBaseURL   = "http://localhost:8000"
	defaultTimeout   = 10 * time.Second
	defaultUserAgent = "animeshelf/dev"

	// RequestIDHeader carries a per-request id the server can log
	RequestIDHeader = "X-Request-Id"
)

// Client talks to the catalog API
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	log       *logger.Logger
}

// Option customizes a Client
type Option func(*Client)

// WithHTTPClient replaces the instrumented default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithUserAgent sets the User-Agent header
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua = strings.TrimSpace(ua); ua != "" {
			c.userAgent = ua
		}
	}
}

// WithLogger sets the request logger
func WithLogger(l *logger.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New builds a Client for baseURL. Requests are traced through otelhttp.
func New(baseURL string, opts ...Option) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL: base,
		http: &http.Client{
			Timeout:   defaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		userAgent: defaultUserAgent,
		log:       logger.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.WithFields(logger.F("component", "catalog"))
	return c, nil
}

// BaseURL returns the API root
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Autocomplete returns title suggestions for a partial query
func (c *Client) Autocomplete(ctx context.Context, q string) ([]model.Suggestion, error) {
	values := url.Values{}
	values.Set("q", q)
	var out []model.Suggestion
	if err := c.get(ctx, "/animes/autocomplete", values, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Search returns animes whose title matches q
func (c *Client) Search(ctx context.Context, q string, limit int) ([]model.Anime, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, nil
	}
	values := limitValues(limit)
	values.Set("q", q)
	return c.animes(ctx, "/animes/search", values)
}

// Top returns the best rated animes
func (c *Client) Top(ctx context.Context, limit int) ([]model.Anime, error) {
	return c.animes(ctx, "/animes/top", limitValues(limit))
}

// Popular returns the animes with the most members
func (c *Client) Popular(ctx context.Context, limit int) ([]model.Anime, error) {
	return c.animes(ctx, "/animes/popular", limitValues(limit))
}

// ByGenre returns the best rated animes of one genre
func (c *Client) ByGenre(ctx context.Context, genre string, limit int) ([]model.Anime, error) {
	genre = strings.TrimSpace(genre)
	if genre == "" {
		return nil, fmt.Errorf("genre required")
	}
	return c.animes(ctx, "/animes/genre/"+url.PathEscape(genre), limitValues(limit))
}

// Genres lists every genre
func (c *Client) Genres(ctx context.Context) ([]model.Genre, error) {
	var out []model.Genre
	if err := c.get(ctx, "/animes/genres", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Anime returns the full record of one anime
func (c *Client) Anime(ctx context.Context, id int) (*model.AnimeDetails, error) {
	if id <= 0 {
		return nil, fmt.Errorf("anime id required")
	}
	var out model.AnimeDetails
	if err := c.get(ctx, "/anime/"+strconv.Itoa(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Character returns the profile of a character
func (c *Client) Character(ctx context.Context, id int) (*model.CharacterDetails, error) {
	if id <= 0 {
		return nil, fmt.Errorf("character id required")
	}
	var out model.CharacterDetails
	if err := c.get(ctx, "/character/"+strconv.Itoa(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VoiceActor returns the profile of a voice actor with the characters they voice
func (c *Client) VoiceActor(ctx context.Context, id int) (*model.VoiceActorDetails, error) {
	if id <= 0 {
		return nil, fmt.Errorf("voice actor id required")
	}
	var out model.VoiceActorDetails
	if err := c.get(ctx, "/voice-actor/"+strconv.Itoa(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Recommendations returns personalized picks for userID
func (c *Client) Recommendations(ctx context.Context, userID string) ([]model.Anime, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("user id required")
	}
	return c.animes(ctx, "/recommendations/"+url.PathEscape(userID), nil)
}

// MyAnimes returns the animes userID has rated, best first
func (c *Client) MyAnimes(ctx context.Context, userID string) ([]model.RatedAnime, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("user id required")
	}
	var out []model.RatedAnime
	if err := c.get(ctx, "/my-animes/"+url.PathEscape(userID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// RateAnime stores or replaces a rating
func (c *Client) RateAnime(ctx context.Context, r model.Rating) (string, error) {
	if !model.ValidRating(r.Rating) {
		return "", fmt.Errorf("rating must be between %d and %d", model.MinRating, model.MaxRating)
	}
	var out model.Message
	if err := c.send(ctx, http.MethodPost, "/rate-anime", r, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// Login checks credentials and returns the user id
func (c *Client) Login(ctx context.Context, creds model.Credentials) (*model.LoginResult, error) {
	var out model.LoginResult
	if err := c.send(ctx, http.MethodPost, "/login", creds, &out); err != nil {
		return nil, err
	}
	if out.UserID == "" {
		return nil, fmt.Errorf("login response has no user_id")
	}
	return &out, nil
}

// Register creates an account
func (c *Client) Register(ctx context.Context, creds model.Credentials) (string, error) {
	var out model.Message
	if err := c.send(ctx, http.MethodPost, "/register", creds, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

func (c *Client) animes(ctx context.Context, path string, values url.Values) ([]model.Anime, error) {
	var out []model.Anime
	if err := c.get(ctx, path, values, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func limitValues(limit int) url.Values {
	values := url.Values{}
	if limit > 0 {
		values.Set("limit", strconv.Itoa(limit))
	}
	return values
}

func (c *Client) get(ctx context.Context, path string, values url.Values, dest any) error {
	return c.do(ctx, http.MethodGet, path, values, nil, dest)
}

func (c *Client) send(ctx context.Context, method, path string, body, dest any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	return c.do(ctx, method, path, nil, payload, dest)
}

// do sends one request. path must already be escaped.
func (c *Client) do(ctx context.Context, method, path string, values url.Values, body []byte, dest any) error {
	reqURL := c.baseURL.String() + path
	if len(values) > 0 {
		reqURL += "?" + values.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(RequestIDHeader, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.log.Debug("API request",
		logger.F("method", method),
		logger.F("path", path),
		logger.F("status", resp.StatusCode),
		logger.F("request_id", requestID),
		logger.F("duration", time.Since(start).Round(time.Millisecond)))

	if resp.StatusCode >= 400 {
		return newAPIError(method, path, resp)
	}
	if dest == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = defaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api url %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse api url %q: missing host", raw)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
