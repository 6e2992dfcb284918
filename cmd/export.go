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
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/lastfm-dashboard/internal/export"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Writes the user's dashboard data to a file",
	Long: `Builds the dashboard datasets and serializes the non-empty ones.
  --format is one of: csv, json, xlsx, powerbi, tableau, txt, sqlite, scrobbles-csv.`,
	PreRunE: requireFlags("api_key", "user"),
	Run: func(cmd *cobra.Command, args []string) {
		format, _ := cmd.Flags().GetString("format")
		history, _ := cmd.Flags().GetBool("history")
		dir, _ := cmd.Flags().GetString("out")

		path, err := exportToFile(cmd.Context(), newDeps(), viper.GetString("user"), format, history, dir)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s\n", path)
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	addExportFlags(exportCmd)
	exportCmd.Flags().StringP("out", "o", ".", "directory to write the export to")
}

func addExportFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("format", "f", string(export.FormatCSV), "export format")
	cmd.Flags().Bool("history", false, "include the full scrobble history and the tables derived from it (slow)")
}

// buildArtifact runs the dashboard and serializes it. The scrobbles-csv format
// always collects the history.
func buildArtifact(ctx context.Context, d deps, user, formatName string, history bool) (*export.Artifact, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	format, err := export.ParseFormat(formatName)
	if err != nil {
		return nil, err
	}
	req, err := requestFromFlags()
	if err != nil {
		return nil, err
	}
	req.IncludeHistory = history || format == export.FormatScrobbles

	res, err := d.buildDashboard(ctx, user, req)
	if err != nil {
		return nil, err
	}
	return export.Serialize(res.Datasets, format, res.User, res.Generated)
}

func exportToFile(ctx context.Context, d deps, user, format string, history bool, dir string) (string, error) {
	artifact, err := buildArtifact(ctx, d, user, format, history)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, artifact.Filename)
	if err := os.WriteFile(path, artifact.Data, 0644); err != nil {
		return "", fmt.Errorf("writing export: %w", err)
	}
	return path, nil
}
