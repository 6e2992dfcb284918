package scrobbles

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/rs/zerolog"

	"github.com/ademuri/lastfm-dashboard/internal/upstream"
)

const testBaseURL = "http://lastfm.test/2.0/"

// pageBody renders n completed tracks for page, numbered from offset.
func pageBody(page, totalPages, n, offset int, nowPlaying bool) string {
	var entries []string
	if nowPlaying {
		entries = append(entries, `{"artist":{"#text":"Live"},"name":"Playing","@attr":{"nowplaying":"true"}}`)
	}
	for i := 0; i < n; i++ {
		id := offset + i
		entries = append(entries, fmt.Sprintf(
			`{"artist":{"#text":"Artist %d"},"album":{"#text":"Album"},"name":"Track %d","date":{"uts":"%d","#text":"x"}}`,
			id%5, id, 1700000000-id*60))
	}
	return fmt.Sprintf(`{"recenttracks":{"track":[%s],"@attr":{"page":"%d","totalPages":"%d","perPage":"%d"}}}`,
		strings.Join(entries, ","), page, totalPages, n)
}

type pageSpec struct {
	status int
	body   string
}

func newTestPaginator(t *testing.T, pageSize int, pages map[int]pageSpec) (*Paginator, *httpmock.MockTransport) {
	t.Helper()
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", testBaseURL, func(req *http.Request) (*http.Response, error) {
		page, _ := strconv.Atoi(req.URL.Query().Get("page"))
		spec, ok := pages[page]
		if !ok {
			return httpmock.NewStringResponse(500, "no such page"), nil
		}
		return httpmock.NewStringResponse(spec.status, spec.body), nil
	})

	client := upstream.NewClient(upstream.Config{BaseURL: testBaseURL, APIKey: "k"},
		upstream.WithHTTPClient(&http.Client{Transport: transport}))
	p := NewPaginator(client, nil, Config{PageSize: pageSize, Attempts: 1}, zerolog.Nop())
	return p, transport
}

func TestCollectAllStopsAtTotalPages(t *testing.T) {
	p, transport := newTestPaginator(t, 3, map[int]pageSpec{
		1: {200, pageBody(1, 2, 3, 0, true)},
		2: {200, pageBody(2, 2, 3, 3, false)},
		3: {200, pageBody(3, 2, 3, 6, false)},
	})

	h := p.CollectAll(context.Background(), upstream.RecentQuery{User: "rj"})

	if h.Partial != nil {
		t.Fatalf("unexpected partial error: %v", h.Partial)
	}
	if len(h.Records) != 6 {
		t.Fatalf("len(records) = %d, want 6", len(h.Records))
	}
	if h.TotalPages != 2 || h.Pages != 2 {
		t.Errorf("pages = %d/%d, want 2/2", h.Pages, h.TotalPages)
	}
	if got := transport.GetTotalCallCount(); got != 2 {
		t.Errorf("calls = %d, want 2", got)
	}
	for _, r := range h.Records {
		if r.Track == "Playing" {
			t.Errorf("now playing entry leaked into history")
		}
	}
	if len(h.Records) > h.TotalPages*3 {
		t.Errorf("collected %d records, more than %d pages of 3", len(h.Records), h.TotalPages)
	}
}

func TestCollectAllShortPageEndsEarly(t *testing.T) {
	// totalPages claims 10 but page 2 is short.
	p, transport := newTestPaginator(t, 3, map[int]pageSpec{
		1: {200, pageBody(1, 10, 3, 0, false)},
		2: {200, pageBody(2, 10, 1, 3, false)},
	})

	h := p.CollectAll(context.Background(), upstream.RecentQuery{User: "rj"})

	if len(h.Records) != 4 {
		t.Fatalf("len(records) = %d, want 4", len(h.Records))
	}
	if got := transport.GetTotalCallCount(); got != 2 {
		t.Errorf("calls = %d, want 2", got)
	}
}

func TestCollectAllEmptyFirstPage(t *testing.T) {
	p, _ := newTestPaginator(t, 3, map[int]pageSpec{
		1: {200, `{"recenttracks":{"track":[],"@attr":{"totalPages":"0"}}}`},
	})

	h := p.CollectAll(context.Background(), upstream.RecentQuery{User: "rj"})
	if h.Partial != nil {
		t.Errorf("empty first page is not a failure: %v", h.Partial)
	}
	if len(h.Records) != 0 {
		t.Errorf("len(records) = %d, want 0", len(h.Records))
	}
}

func TestCollectAllKeepsPartialResults(t *testing.T) {
	p, _ := newTestPaginator(t, 3, map[int]pageSpec{
		1: {200, pageBody(1, 3, 3, 0, false)},
		2: {429, `{"error":29,"message":"Rate limit exceeded"}`},
	})

	h := p.CollectAll(context.Background(), upstream.RecentQuery{User: "rj"})
	if h.Partial == nil {
		t.Fatalf("expected the rate limit to be reported")
	}
	if len(h.Records) != 3 {
		t.Errorf("len(records) = %d, want the 3 from page 1", len(h.Records))
	}
}

func TestCollectAllMissingKeyStops(t *testing.T) {
	p, _ := newTestPaginator(t, 3, map[int]pageSpec{
		1: {200, pageBody(1, 2, 3, 0, false)},
		2: {200, `{"unexpected":{}}`},
	})

	h := p.CollectAll(context.Background(), upstream.RecentQuery{User: "rj"})
	if h.Partial == nil {
		t.Errorf("expected missing key to end collection")
	}
	if len(h.Records) != 3 {
		t.Errorf("len(records) = %d, want 3", len(h.Records))
	}
}

func TestCollectAllTruncatesOversizedPages(t *testing.T) {
	p, _ := newTestPaginator(t, 2, map[int]pageSpec{
		1: {200, pageBody(1, 1, 5, 0, false)},
	})

	h := p.CollectAll(context.Background(), upstream.RecentQuery{User: "rj"})
	if len(h.Records) != 2 {
		t.Errorf("len(records) = %d, want page size 2", len(h.Records))
	}
}

func TestCollectAllRetriesServerErrors(t *testing.T) {
	transport := httpmock.NewMockTransport()
	calls := 0
	transport.RegisterResponder("GET", testBaseURL, func(req *http.Request) (*http.Response, error) {
		calls++
		if calls == 1 {
			return httpmock.NewStringResponse(502, "bad gateway"), nil
		}
		return httpmock.NewStringResponse(200, pageBody(1, 1, 2, 0, false)), nil
	})
	client := upstream.NewClient(upstream.Config{BaseURL: testBaseURL, APIKey: "k"},
		upstream.WithHTTPClient(&http.Client{Transport: transport}))
	p := NewPaginator(client, nil, Config{PageSize: 3, Attempts: 3, RetryDelay: time.Millisecond}, zerolog.Nop())

	h := p.CollectAll(context.Background(), upstream.RecentQuery{User: "rj"})
	if h.Partial != nil {
		t.Fatalf("unexpected partial error: %v", h.Partial)
	}
	if len(h.Records) != 2 {
		t.Errorf("len(records) = %d, want 2", len(h.Records))
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestCollectAllIsRepeatable(t *testing.T) {
	pages := map[int]pageSpec{
		1: {200, pageBody(1, 2, 3, 0, false)},
		2: {200, pageBody(2, 2, 2, 3, false)},
	}
	p, _ := newTestPaginator(t, 3, pages)

	first := p.CollectAll(context.Background(), upstream.RecentQuery{User: "rj"})
	second := p.CollectAll(context.Background(), upstream.RecentQuery{User: "rj"})

	if len(first.Records) != len(second.Records) {
		t.Fatalf("lengths differ: %d vs %d", len(first.Records), len(second.Records))
	}
	for i := range first.Records {
		if first.Records[i] != second.Records[i] {
			t.Errorf("record %d differs: %+v vs %+v", i, first.Records[i], second.Records[i])
		}
	}
}

func TestCollectAllThrottles(t *testing.T) {
	transport := httpmock.NewMockTransport()
	var stamps []time.Time
	transport.RegisterResponder("GET", testBaseURL, func(req *http.Request) (*http.Response, error) {
		stamps = append(stamps, time.Now())
		page, _ := strconv.Atoi(req.URL.Query().Get("page"))
		return httpmock.NewStringResponse(200, pageBody(page, 3, 1, page, false)), nil
	})
	client := upstream.NewClient(upstream.Config{BaseURL: testBaseURL, APIKey: "k"},
		upstream.WithHTTPClient(&http.Client{Transport: transport}))
	p := NewPaginator(client, nil, Config{PageSize: 1, Throttle: 20 * time.Millisecond, Attempts: 1}, zerolog.Nop())

	h := p.CollectAll(context.Background(), upstream.RecentQuery{User: "rj"})
	if len(h.Records) != 3 {
		t.Fatalf("len(records) = %d, want 3", len(h.Records))
	}
	for i := 1; i < len(stamps); i++ {
		if gap := stamps[i].Sub(stamps[i-1]); gap < 15*time.Millisecond {
			t.Errorf("calls %d and %d only %v apart", i-1, i, gap)
		}
	}
}

func TestFromRecentTrackDay(t *testing.T) {
	rt, err := upstream.DecodeRecentTracks([]byte(pageBody(1, 1, 1, 0, false)))
	if err != nil {
		t.Fatalf("DecodeRecentTracks: %v", err)
	}
	rec, ok := FromRecentTrack(rt.Tracks[0])
	if !ok {
		t.Fatal("expected completed record")
	}
	want := time.Date(2023, 11, 14, 0, 0, 0, 0, time.UTC)
	if !rec.Day().Equal(want) {
		t.Errorf("Day() = %v, want %v", rec.Day(), want)
	}
}
