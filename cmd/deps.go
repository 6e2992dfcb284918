/*
Copyright 2020 Google LLC

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/lastfm-dashboard/internal/analysis"
	"github.com/ademuri/lastfm-dashboard/internal/dashboard"
	"github.com/ademuri/lastfm-dashboard/internal/upstream"
)

// requireFlags returns a PreRunE that fails when any of names is empty after
// the config file has been applied.
func requireFlags(names ...string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		var missing []string
		for _, name := range names {
			if viper.GetString(name) == "" {
				missing = append(missing, fmt.Sprintf("%q", name))
			}
		}
		if len(missing) > 0 {
			return fmt.Errorf("required flag(s) %s not set", strings.Join(missing, ", "))
		}
		return nil
	}
}

type userChecker interface {
	Check(ctx context.Context, user string) error
}

// deps are the long-lived pieces shared by every command.
type deps struct {
	client   *upstream.Client
	users    userChecker
	registry *prometheus.Registry
	config   dashboard.Config
	logger   zerolog.Logger
}

func newDeps() deps {
	logger := newLogger()
	registry := prometheus.NewRegistry()
	client := upstream.NewClient(
		upstream.Config{
			BaseURL:   viper.GetString("base-url"),
			APIKey:    viper.GetString("api_key"),
			CacheSize: viper.GetInt("cache-size"),
			CacheTTL:  viper.GetDuration("cache-ttl"),
		},
		upstream.WithLogger(logger),
		upstream.WithMetrics(upstream.NewMetrics(registry)),
	)
	return deps{
		client:   client,
		users:    upstream.NewProfileChecker(viper.GetString("api_key"), viper.GetString("secret")),
		registry: registry,
		config:   sessionConfig(),
		logger:   logger,
	}
}

func sessionConfig() dashboard.Config {
	config := dashboard.DefaultConfig()
	config.Paginator.Throttle = viper.GetDuration("throttle")
	if retries := viper.GetUint("retries"); retries > 0 {
		config.Paginator.Attempts = retries
		config.Analysis.Attempts = retries
	}
	if mps := viper.GetFloat64("minutes-per-scrobble"); mps > 0 {
		config.Analysis.MinutesPerScrobble = mps
	}
	return config
}

func (d deps) session(user string) *analysis.Session {
	return dashboard.NewSession(d.client, user, d.config, d.logger)
}

// checkUser fails with upstream.ErrUnknownUser when user has no profile.
func (d deps) checkUser(ctx context.Context, user string) error {
	if err := d.users.Check(ctx, user); err != nil {
		if errors.Is(err, upstream.ErrUnknownUser) {
			return err
		}
		return fmt.Errorf("checking user: %w", err)
	}
	return nil
}

// buildDashboard checks the user and runs one dashboard request.
func (d deps) buildDashboard(ctx context.Context, user string, req dashboard.Request) (*dashboard.Result, error) {
	if err := d.checkUser(ctx, user); err != nil {
		return nil, err
	}
	return dashboard.Build(ctx, d.client, d.session(user), req), nil
}

// requestFromFlags starts from the default request and applies --period.
func requestFromFlags() (dashboard.Request, error) {
	req := dashboard.DefaultRequest()
	period, err := upstream.ParsePeriod(viper.GetString("period"))
	if err != nil {
		return req, err
	}
	req.Period = period
	return req, nil
}
