package scrobbles

import (
	"context"
	"time"

	"github.com/avast/retry-go"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/ademuri/lastfm-dashboard/internal/upstream"
)

// Fetcher is the slice of the upstream client the paginator needs.
type Fetcher interface {
	RecentTracks(ctx context.Context, q upstream.RecentQuery) (*upstream.RecentTracks, error)
}

type Config struct {
	// PageSize is clamped to upstream.MaxPageSize.
	PageSize int
	// Throttle is the minimum spacing between two upstream calls.
	Throttle time.Duration
	// Attempts per page; only temporary upstream failures are retried.
	Attempts   uint
	RetryDelay time.Duration
}

func DefaultConfig() Config {
	return Config{
		PageSize:   upstream.MaxPageSize,
		Throttle:   500 * time.Millisecond,
		Attempts:   3,
		RetryDelay: time.Second,
	}
}

// NewLimiter returns a limiter that spaces calls by interval. A non-positive
// interval disables throttling.
func NewLimiter(interval time.Duration) *rate.Limiter {
	if interval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(interval), 1)
}

type Paginator struct {
	fetcher Fetcher
	limiter *rate.Limiter
	config  Config
	logger  zerolog.Logger
}

// NewPaginator builds a paginator. limiter may be shared with other
// sequential callers so that the overall call spacing holds; nil creates one
// from config.Throttle.
func NewPaginator(fetcher Fetcher, limiter *rate.Limiter, config Config, logger zerolog.Logger) *Paginator {
	if config.PageSize <= 0 || config.PageSize > upstream.MaxPageSize {
		config.PageSize = upstream.MaxPageSize
	}
	if config.Attempts == 0 {
		config.Attempts = 1
	}
	if limiter == nil {
		limiter = NewLimiter(config.Throttle)
	}
	return &Paginator{fetcher: fetcher, limiter: limiter, config: config, logger: logger}
}

// History is the outcome of a full collection.
type History struct {
	Records    []Record
	Pages      int
	TotalPages int
	// Partial holds the failure that ended collection early, if any. The
	// records gathered before it are still valid.
	Partial error
}

// CollectAll walks every page of the recent-tracks listing described by q,
// starting at page 1. It stops when the page counter passes the total reported
// on the first page, when a page comes back short, or on the first failure.
// Failures never discard the records already gathered.
func (p *Paginator) CollectAll(ctx context.Context, q upstream.RecentQuery) History {
	var h History
	q.Limit = p.config.PageSize
	log := p.logger.With().Str("user", q.User).Logger()

	for page := 1; ; {
		if err := p.limiter.Wait(ctx); err != nil {
			h.Partial = err
			break
		}

		q.Page = page
		pr, err := p.fetchPage(ctx, q)
		if err != nil {
			log.Warn().Err(err).Int("page", page).Int("collected", len(h.Records)).
				Msg("stopping collection early")
			h.Partial = err
			break
		}

		if page == 1 {
			h.TotalPages = pr.TotalPages
		}
		h.Records = append(h.Records, pr.Records...)
		h.Pages++
		log.Debug().Int("page", page).Int("pages", h.TotalPages).Int("records", len(pr.Records)).
			Msg("downloaded page")

		if pr.Raw < q.Limit {
			break
		}
		page++
		if page > h.TotalPages {
			break
		}
	}

	return h
}

func (p *Paginator) fetchPage(ctx context.Context, q upstream.RecentQuery) (PageResult, error) {
	var pr PageResult
	err := retry.Do(
		func() error {
			rt, err := p.fetcher.RecentTracks(ctx, q)
			if err != nil {
				return err
			}
			pr = newPage(rt, q.Page, q.Limit)
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(p.config.Attempts),
		retry.Delay(p.config.RetryDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(upstream.Temporary),
		retry.OnRetry(func(n uint, err error) {
			p.logger.Info().Err(err).Uint("attempt", n+1).Msg("last.fm errored, retrying")
		}),
	)
	return pr, err
}
