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
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/lastfm-dashboard/internal/analysis"
	"github.com/ademuri/lastfm-dashboard/internal/dataset"
	"github.com/ademuri/lastfm-dashboard/internal/upstream"
)

var historyCmd = &cobra.Command{
	Use:   "history [from (optional)] [to (optional)]",
	Short: "Summarizes the user's scrobble history",
	Long: `Collects every scrobble in the date range and prints streaks, diversity, the
listening clock and the top artist of each month. Date strings look like
'yyyy', 'yyyy-mm', 'yyyy-mm-dd', or relative like '30d', '12w', '6m', '1y'.
With no dates the whole history is collected.`,
	Args:    cobra.MaximumNArgs(2),
	PreRunE: requireFlags("api_key", "user"),
	Run: func(cmd *cobra.Command, args []string) {
		start, end, err := parseDateRangeFromArgs(args)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		if err := printHistory(cmd.Context(), os.Stdout, newDeps(), viper.GetString("user"), start, end); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
}

func printHistory(ctx context.Context, w io.Writer, d deps, user string, start, end time.Time) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := d.checkUser(ctx, user); err != nil {
		return err
	}

	s := d.session(user)
	h := s.Paginator.CollectAll(ctx, upstream.RecentQuery{User: user, From: start, To: end})
	if h.Partial != nil {
		d.logger.Warn().Err(h.Partial).Int("pages", h.Pages).Msg("history is incomplete")
	}

	report := analysis.DetectStreaks(h.Records, now().UTC())
	div := analysis.MeasureDiversity(h.Records)
	clock := analysis.ListeningClock(h.Records)
	ds := dataset.Assemble(dataset.Inputs{
		History:   h.Records,
		Streaks:   &report,
		Diversity: &div,
		Clock:     &clock,
		Monthly:   analysis.MonthlyTopArtists(h.Records),
	})

	const dateFormat = "2006-01-02"
	from, to := "the beginning", "now"
	if !start.IsZero() {
		from = start.Format(dateFormat)
	}
	if !end.IsZero() {
		to = end.Format(dateFormat)
	}
	fmt.Fprintf(w, "Found %d scrobbles over %d pages from %s to %s\n", len(h.Records), h.Pages, from, to)

	names := []string{dataset.Streaks, dataset.Diversity, dataset.ListeningClock, dataset.MonthlyTopArtists}
	if err := printDatasets(w, ds, names); err != nil {
		return err
	}
	printStreakSummary(w, &report)
	if h.Partial != nil {
		printNotes(w, []string{fmt.Sprintf("history stopped after %d of %d pages: %v", h.Pages, h.TotalPages, h.Partial)})
	}
	return nil
}
