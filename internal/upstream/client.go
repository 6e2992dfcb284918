// Package upstream talks to the Last.fm REST API in its JSON flavour.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog"
)

const (
	DefaultBaseURL = "https://ws.audioscrobbler.com/2.0/"

	// MaxPageSize is the largest page the API documents for paginated methods.
	MaxPageSize = 200

	userAgent = "lastfm-dashboard/1.0"
)

type Method string

const (
	MethodUserInfo     Method = "user.getInfo"
	MethodRecentTracks Method = "user.getRecentTracks"
	MethodTopArtists   Method = "user.getTopArtists"
	MethodTopTracks    Method = "user.getTopTracks"
	MethodTopAlbums    Method = "user.getTopAlbums"
	MethodTrackInfo    Method = "track.getInfo"
)

// Params is a flat set of query parameters. Values are formatted with %v.
type Params map[string]any

// StatusError is returned when the API answers with anything but 200.
type StatusError struct {
	Method Method
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d", e.Method, e.Status)
}

// Temporary reports whether the status is worth retrying.
func (e *StatusError) Temporary() bool {
	return e.Status/100 == 5
}

// APIError is a Last.fm error document: {"error": N, "message": "..."}.
type APIError struct {
	Method  Method
	Status  int
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: last.fm error %d: %s", e.Method, e.Code, e.Message)
}

// Temporary reports whether Last.fm documents the code as transient.
// Rate limiting (29) is not.
func (e *APIError) Temporary() bool {
	switch e.Code {
	case 8, 11, 16:
		return true
	}
	return false
}

const errCodeNotFound = 6

// ErrMissingKey means the response parsed but lacked the expected container.
var ErrMissingKey = errors.New("response lacks expected top-level key")

// Temporary reports whether err is an upstream failure that may succeed on retry.
func Temporary(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Temporary()
	}
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.Temporary()
	}
	return false
}

// NotFound reports whether err is Last.fm's "not found" answer.
func NotFound(err error) bool {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.Code == errCodeNotFound
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status == http.StatusNotFound
	}
	return false
}

type Config struct {
	BaseURL  string
	APIKey   string
	CacheTTL time.Duration
	// CacheSize of zero disables memoization.
	CacheSize int
}

// Client issues single parameterized queries. It never retries; callers decide.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	cache      *expirable.LRU[string, []byte]
	metrics    *Metrics
	logger     zerolog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

func NewClient(config Config, opts ...Option) *Client {
	c := &Client{
		baseURL:    config.BaseURL,
		apiKey:     config.APIKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     zerolog.Nop(),
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if config.CacheSize > 0 {
		c.cache = expirable.NewLRU[string, []byte](config.CacheSize, nil, config.CacheTTL)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch calls method with params and returns the raw JSON body on success.
// Identical (method, params) pairs are served from the cache when enabled.
func (c *Client) Fetch(ctx context.Context, method Method, params Params) (json.RawMessage, error) {
	query := c.encode(method, params)
	if c.cache != nil {
		if body, ok := c.cache.Get(query); ok {
			c.metrics.cacheHit(method)
			return body, nil
		}
	}

	start := time.Now()
	body, err := c.do(ctx, method, query)
	c.metrics.observe(method, err, time.Since(start))
	if err != nil {
		c.logger.Debug().Str("method", string(method)).Err(err).Msg("upstream call failed")
		return nil, err
	}

	if c.cache != nil {
		c.cache.Add(query, body)
	}
	return body, nil
}

func (c *Client) do(ctx context.Context, method Method, query string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+query, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: building request: %w", method, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: reading body: %w", method, err)
	}

	if resp.StatusCode != http.StatusOK {
		if apiErr := parseAPIError(method, resp.StatusCode, body); apiErr != nil && resp.StatusCode/100 != 5 {
			return nil, apiErr
		}
		return nil, &StatusError{Method: method, Status: resp.StatusCode}
	}
	if apiErr := parseAPIError(method, resp.StatusCode, body); apiErr != nil {
		return nil, apiErr
	}
	return body, nil
}

func parseAPIError(method Method, status int, body []byte) *APIError {
	var doc struct {
		Error   *int   `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &doc); err != nil || doc.Error == nil {
		return nil
	}
	return &APIError{Method: method, Status: status, Code: *doc.Error, Message: doc.Message}
}

// encode builds a deterministic query string so it doubles as the cache key.
func (c *Client) encode(method Method, params Params) string {
	values := url.Values{}
	for k, v := range params {
		if v == nil {
			continue
		}
		s := fmt.Sprint(v)
		if s == "" {
			continue
		}
		values.Set(k, s)
	}
	values.Set("method", string(method))
	values.Set("api_key", c.apiKey)
	values.Set("format", "json")
	return values.Encode()
}
