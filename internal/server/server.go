// Package server exposes dashboards and exports over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/ademuri/lastfm-dashboard/internal/analysis"
	"github.com/ademuri/lastfm-dashboard/internal/dashboard"
	"github.com/ademuri/lastfm-dashboard/internal/dataset"
	"github.com/ademuri/lastfm-dashboard/internal/export"
	"github.com/ademuri/lastfm-dashboard/internal/theme"
	"github.com/ademuri/lastfm-dashboard/internal/upstream"
)

// UserChecker reports upstream.ErrUnknownUser for names without a profile.
type UserChecker interface {
	Check(ctx context.Context, user string) error
}

type Config struct {
	Dashboard dashboard.Config
	// Request holds the defaults each dashboard request starts from.
	Request dashboard.Request
}

type Server struct {
	client   *upstream.Client
	users    UserChecker
	config   Config
	gatherer prometheus.Gatherer
	metrics  *httpMetrics
	logger   zerolog.Logger

	// Now is overridden in tests.
	Now func() time.Time
}

// New builds a server. reg receives the HTTP metrics and is served on
// /metrics; it should also hold the upstream client's metrics.
func New(client *upstream.Client, users UserChecker, config Config, reg *prometheus.Registry, logger zerolog.Logger) *Server {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	return &Server{
		client:   client,
		users:    users,
		config:   config,
		gatherer: reg,
		metrics:  newHTTPMetrics(reg),
		logger:   logger,
		Now:      time.Now,
	}
}

// Register attaches all routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", s.instrument(s.handleHealth, "healthz"))
	mux.HandleFunc("/api/dashboard", s.instrument(s.handleDashboard, "dashboard"))
	mux.HandleFunc("/export", s.instrument(s.handleExport, "export"))
	mux.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type params struct {
	user    string
	period  upstream.Period
	theme   theme.Name
	history bool
}

func parseParams(r *http.Request) (params, error) {
	q := r.URL.Query()
	var (
		p   params
		err error
	)
	p.user = strings.TrimSpace(q.Get("user"))
	if p.user == "" {
		return p, errors.New("missing user")
	}
	if p.period, err = upstream.ParsePeriod(q.Get("period")); err != nil {
		return p, err
	}
	if p.theme, err = theme.Parse(q.Get("theme")); err != nil {
		return p, err
	}
	if h := q.Get("history"); h != "" {
		if p.history, err = strconv.ParseBool(h); err != nil {
			return p, fmt.Errorf("invalid history %q", h)
		}
	}
	return p, nil
}

// build checks the user and runs the dashboard. It writes the error response
// itself and returns nil when the request cannot proceed.
func (s *Server) build(w http.ResponseWriter, r *http.Request, p params) *dashboard.Result {
	log := requestLogger(r)
	if err := s.users.Check(r.Context(), p.user); err != nil {
		if errors.Is(err, upstream.ErrUnknownUser) {
			writeError(w, http.StatusNotFound, "unknown_user", err)
			return nil
		}
		log.Error().Err(err).Str("user", p.user).Msg("checking user")
		writeError(w, http.StatusBadGateway, "upstream_error", err)
		return nil
	}

	session := dashboard.NewSession(s.client, p.user, s.config.Dashboard, log)
	session.Now = s.Now
	req := s.config.Request
	req.Period = p.period
	req.IncludeHistory = p.history
	return dashboard.Build(r.Context(), s.client, session, req)
}

type windowView struct {
	Label            string  `json:"label"`
	Start            string  `json:"start"`
	End              string  `json:"end"`
	UniqueArtists    int     `json:"unique_artists"`
	UniqueTracks     int     `json:"unique_tracks"`
	Scrobbles        int     `json:"scrobbles"`
	ListeningMinutes float64 `json:"listening_minutes"`
	AvgPerDay        float64 `json:"avg_scrobbles_per_day"`
	MostActiveDay    string  `json:"most_active_day"`
	MostActiveCount  int     `json:"most_active_day_count"`
}

func newWindowView(win analysis.Window, m analysis.WindowMetrics) windowView {
	return windowView{
		Label:            win.String(),
		Start:            win.Start.Format(time.DateOnly),
		End:              win.End.Add(-time.Second).Format(time.DateOnly),
		UniqueArtists:    m.UniqueArtists,
		UniqueTracks:     m.UniqueTracks,
		Scrobbles:        m.Scrobbles,
		ListeningMinutes: m.ListeningMinutes,
		AvgPerDay:        m.AvgPerDay,
		MostActiveDay:    m.MostActiveDay.Label,
		MostActiveCount:  m.MostActiveDay.Count,
	}
}

type streakView struct {
	Longest      int    `json:"longest"`
	LongestStart string `json:"longest_start,omitempty"`
	LongestEnd   string `json:"longest_end,omitempty"`
	Current      int    `json:"current"`
	LastDate     string `json:"last_date,omitempty"`
}

func newStreakView(r *analysis.StreakReport) *streakView {
	if r == nil {
		return nil
	}
	v := &streakView{Longest: r.Longest.Length, Current: r.Current}
	if r.Longest.Length > 0 {
		v.LongestStart = r.Longest.Start.Format(time.DateOnly)
		v.LongestEnd = r.Longest.End.Format(time.DateOnly)
	}
	if !r.LastDate.IsZero() {
		v.LastDate = r.LastDate.Format(time.DateOnly)
	}
	return v
}

type dashboardResponse struct {
	User      string            `json:"user"`
	Period    upstream.Period   `json:"period"`
	Generated time.Time         `json:"generated"`
	Theme     theme.Name        `json:"theme"`
	Palette   theme.Palette     `json:"palette"`
	Datasets  *dataset.Datasets `json:"datasets"`
	Weekly    struct {
		Current  windowView `json:"current"`
		Previous windowView `json:"previous"`
	} `json:"weekly"`
	Streaks *streakView `json:"streaks,omitempty"`
	Notes   []string    `json:"notes"`
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	p, err := parseParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	res := s.build(w, r, p)
	if res == nil {
		return
	}

	resp := dashboardResponse{
		User:      res.User,
		Period:    res.Period,
		Generated: res.Generated,
		Theme:     p.theme,
		Palette:   theme.Lookup(p.theme),
		Datasets:  res.Datasets,
		Streaks:   newStreakView(res.Streaks),
		Notes:     res.Notes,
	}
	resp.Weekly.Current = newWindowView(res.Weekly.Current, res.Weekly.CurrentMetrics)
	resp.Weekly.Previous = newWindowView(res.Weekly.Previous, res.Weekly.PreviousMetrics)
	if resp.Notes == nil {
		resp.Notes = []string{}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	p, err := parseParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	format := export.FormatCSV
	if f := r.URL.Query().Get("format"); f != "" {
		if format, err = export.ParseFormat(f); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", err)
			return
		}
	}
	if format == export.FormatScrobbles {
		p.history = true
	}

	res := s.build(w, r, p)
	if res == nil {
		return
	}
	artifact, err := export.Serialize(res.Datasets, format, res.User, res.Generated)
	if errors.Is(err, export.ErrNothingToExport) {
		writeError(w, http.StatusUnprocessableEntity, "nothing_to_export", err)
		return
	}
	if err != nil {
		log := requestLogger(r)
		log.Error().Err(err).Msg("serializing export")
		writeError(w, http.StatusInternalServerError, "export_failed", err)
		return
	}

	w.Header().Set("Content-Type", artifact.MIME)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", artifact.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(artifact.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifact.Data)
}
