package upstream

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

const testBaseURL = "http://lastfm.test/2.0/"

func newTestClient(t *testing.T, cacheSize int) (*Client, *httpmock.MockTransport) {
	t.Helper()
	transport := httpmock.NewMockTransport()
	client := NewClient(
		Config{BaseURL: testBaseURL, APIKey: "test-key", CacheSize: cacheSize, CacheTTL: time.Minute},
		WithHTTPClient(&http.Client{Transport: transport}),
	)
	return client, transport
}

func TestFetchAddsFixedParams(t *testing.T) {
	client, transport := newTestClient(t, 0)

	var got map[string]string
	transport.RegisterResponder("GET", testBaseURL, func(req *http.Request) (*http.Response, error) {
		got = map[string]string{}
		for k := range req.URL.Query() {
			got[k] = req.URL.Query().Get(k)
		}
		return httpmock.NewStringResponse(200, `{"user":{"name":"rj"}}`), nil
	})

	if _, err := client.Fetch(context.Background(), MethodUserInfo, Params{"user": "rj", "empty": ""}); err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	want := map[string]string{"method": "user.getInfo", "api_key": "test-key", "format": "json", "user": "rj"}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("param %q = %q, want %q", k, got[k], v)
		}
	}
	if _, ok := got["empty"]; ok {
		t.Errorf("empty params should be dropped, got %v", got)
	}
}

func TestFetchNon200IsStatusError(t *testing.T) {
	client, transport := newTestClient(t, 0)
	transport.RegisterResponder("GET", testBaseURL, httpmock.NewStringResponder(503, "unavailable"))

	_, err := client.Fetch(context.Background(), MethodRecentTracks, Params{"user": "rj"})
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected *StatusError, got %v", err)
	}
	if se.Status != 503 {
		t.Errorf("Status = %d, want 503", se.Status)
	}
	if !Temporary(err) {
		t.Errorf("503 should be temporary")
	}
}

func TestFetchAPIErrorDocument(t *testing.T) {
	client, transport := newTestClient(t, 0)
	transport.RegisterResponder("GET", testBaseURL,
		httpmock.NewStringResponder(404, `{"error":6,"message":"User not found"}`))

	_, err := client.Fetch(context.Background(), MethodUserInfo, Params{"user": "nobody"})
	var ae *APIError
	if !errors.As(err, &ae) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if ae.Code != 6 || ae.Status != 404 {
		t.Errorf("got code %d status %d, want 6/404", ae.Code, ae.Status)
	}
	if !NotFound(err) {
		t.Errorf("NotFound(%v) = false", err)
	}
}

func TestRateLimitIsNotTemporary(t *testing.T) {
	client, transport := newTestClient(t, 0)
	transport.RegisterResponder("GET", testBaseURL,
		httpmock.NewStringResponder(200, `{"error":29,"message":"Rate limit exceeded"}`))

	_, err := client.Fetch(context.Background(), MethodRecentTracks, Params{"user": "rj"})
	if err == nil {
		t.Fatal("expected error")
	}
	if Temporary(err) {
		t.Errorf("rate limiting must not be retried")
	}
}

func TestFetchMemoizesIdenticalParams(t *testing.T) {
	client, transport := newTestClient(t, 8)
	transport.RegisterResponder("GET", testBaseURL, httpmock.NewStringResponder(200, `{"toptracks":{"track":[]}}`))

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := client.TopTracks(ctx, "rj", PeriodOverall, 10); err != nil {
			t.Fatalf("TopTracks: %v", err)
		}
	}
	if _, err := client.TopTracks(ctx, "rj", Period7Day, 10); err != nil {
		t.Fatalf("TopTracks: %v", err)
	}

	if got := transport.GetTotalCallCount(); got != 2 {
		t.Errorf("upstream calls = %d, want 2", got)
	}
}

func TestFetchFailuresAreNotCached(t *testing.T) {
	client, transport := newTestClient(t, 8)
	transport.RegisterResponder("GET", testBaseURL, httpmock.NewStringResponder(500, ""))

	for i := 0; i < 2; i++ {
		if _, err := client.Fetch(context.Background(), MethodTopArtists, Params{"user": "rj"}); err == nil {
			t.Fatal("expected error")
		}
	}
	if got := transport.GetTotalCallCount(); got != 2 {
		t.Errorf("upstream calls = %d, want 2", got)
	}
}

func TestMetricsCountOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	transport := httpmock.NewMockTransport()
	client := NewClient(Config{BaseURL: testBaseURL, APIKey: "k"},
		WithHTTPClient(&http.Client{Transport: transport}), WithMetrics(metrics))

	transport.RegisterResponder("GET", testBaseURL, httpmock.NewStringResponder(429, ""))
	client.Fetch(context.Background(), MethodRecentTracks, Params{"user": "rj"})

	got := testutil.ToFloat64(metrics.calls.WithLabelValues(string(MethodRecentTracks), "rate_limited"))
	if got != 1 {
		t.Errorf("rate_limited count = %v, want 1", got)
	}
}

func TestRecentTracksMissingKey(t *testing.T) {
	client, transport := newTestClient(t, 0)
	transport.RegisterResponder("GET", testBaseURL, httpmock.NewStringResponder(200, `{"something":{}}`))

	_, err := client.RecentTracks(context.Background(), RecentQuery{User: "rj"})
	if !errors.Is(err, ErrMissingKey) {
		t.Fatalf("expected ErrMissingKey, got %v", err)
	}
}

func TestRecentQueryParams(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	p := RecentQuery{User: "rj", Limit: 500, From: from}.Params()

	if p["limit"] != MaxPageSize {
		t.Errorf("limit = %v, want %d", p["limit"], MaxPageSize)
	}
	if p["page"] != 1 {
		t.Errorf("page = %v, want 1", p["page"])
	}
	if p["from"] != from.Unix() {
		t.Errorf("from = %v, want %d", p["from"], from.Unix())
	}
	if _, ok := p["to"]; ok {
		t.Errorf("zero To should be omitted")
	}
}

func TestParsePeriod(t *testing.T) {
	if p, err := ParsePeriod(""); err != nil || p != PeriodOverall {
		t.Errorf("ParsePeriod(\"\") = %q, %v", p, err)
	}
	if p, err := ParsePeriod("3month"); err != nil || p != Period3Month {
		t.Errorf("ParsePeriod(3month) = %q, %v", p, err)
	}
	if _, err := ParsePeriod("fortnight"); err == nil {
		t.Errorf("expected error for unknown period")
	}
}
