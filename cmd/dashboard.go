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
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/lastfm-dashboard/internal/dashboard"
	"github.com/ademuri/lastfm-dashboard/internal/dataset"
	"github.com/ademuri/lastfm-dashboard/internal/theme"
)

type DashboardConfig struct {
	User    string
	Request dashboard.Request
	Theme   theme.Name
}

var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	Short:   "Prints the user's dashboard",
	Long:    `Fetches the top lists, recent tracks, weekly comparison and decades for the user and prints them as tables.`,
	PreRunE: requireFlags("api_key", "user"),
	Run: func(cmd *cobra.Command, args []string) {
		config, err := dashboardConfigFromFlags(cmd)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		if err := printDashboard(cmd.Context(), os.Stdout, newDeps(), config); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)

	dashboardCmd.Flags().IntP("number", "n", 10, "number of entries in the top lists")
	dashboardCmd.Flags().Int("recent", 10, "number of recent tracks to show")
	dashboardCmd.Flags().Bool("history", false, "also collect the full scrobble history for streaks and diversity (slow)")
}

func dashboardConfigFromFlags(cmd *cobra.Command) (DashboardConfig, error) {
	req, err := requestFromFlags()
	if err != nil {
		return DashboardConfig{}, err
	}
	req.TopLimit, _ = cmd.Flags().GetInt("number")
	req.RecentLimit, _ = cmd.Flags().GetInt("recent")
	req.IncludeHistory, _ = cmd.Flags().GetBool("history")

	t, err := theme.Parse(viper.GetString("theme"))
	if err != nil {
		return DashboardConfig{}, err
	}
	return DashboardConfig{User: viper.GetString("user"), Request: req, Theme: t}, nil
}

func printDashboard(ctx context.Context, w io.Writer, d deps, config DashboardConfig) error {
	if ctx == nil {
		ctx = context.Background()
	}
	res, err := d.buildDashboard(ctx, config.User, config.Request)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Dashboard for %s (%s), theme %s\n", res.User, res.Period, config.Theme)
	names := res.Datasets.Names()
	if !config.Request.IncludeHistory {
		names = slices.DeleteFunc(names, dataset.IsHistory)
	}
	if err := printDatasets(w, res.Datasets, names); err != nil {
		return err
	}
	if config.Request.IncludeHistory {
		printStreakSummary(w, res.Streaks)
	}
	printNotes(w, res.Notes)
	return nil
}
