package dashboard

import (
	"github.com/rs/zerolog"

	"github.com/ademuri/lastfm-dashboard/internal/analysis"
	"github.com/ademuri/lastfm-dashboard/internal/scrobbles"
	"github.com/ademuri/lastfm-dashboard/internal/upstream"
)

type Config struct {
	Paginator scrobbles.Config
	Analysis  analysis.Options
}

func DefaultConfig() Config {
	return Config{Paginator: scrobbles.DefaultConfig(), Analysis: analysis.DefaultOptions()}
}

// NewSession wires a request-scoped session around client. One limiter is
// shared by the paginator and every other call of the session.
func NewSession(client *upstream.Client, user string, config Config, logger zerolog.Logger) *analysis.Session {
	limiter := scrobbles.NewLimiter(config.Paginator.Throttle)
	return &analysis.Session{
		User:      user,
		Paginator: scrobbles.NewPaginator(client, limiter, config.Paginator, logger),
		Tops:      client,
		Catalog:   client,
		Limiter:   limiter,
		Options:   config.Analysis,
		Logger:    logger.With().Str("user", user).Logger(),
	}
}
