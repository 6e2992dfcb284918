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
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/lastfm-dashboard/internal/mailer"
)

var emailExportCmd = &cobra.Command{
	Use:   "email-export <address>",
	Short: "Emails the user's dashboard data as an attachment",
	Long: `Builds the dashboard datasets, serializes them in --format and sends the
result through SendGrid. Requires --from and sendgrid_api_key (unless --dry_run).`,
	Args:    cobra.ExactArgs(1),
	PreRunE: requireFlags("api_key", "user", "from"),
	Run: func(cmd *cobra.Command, args []string) {
		format, _ := cmd.Flags().GetString("format")
		history, _ := cmd.Flags().GetBool("history")

		d := newDeps()
		m, err := mailer.New(mailer.Config{
			APIKey: viper.GetString("sendgrid_api_key"),
			From:   viper.GetString("from"),
			DryRun: viper.GetBool("dry_run"),
		}, d.logger)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		user := viper.GetString("user")
		artifact, err := buildArtifact(cmd.Context(), d, user, format, history)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		if err := m.Send(cmd.Context(), args[0], user, artifact); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(emailExportCmd)

	addExportFlags(emailExportCmd)

	emailExportCmd.Flags().String("from", "", "From email address")
	viper.BindPFlag("from", emailExportCmd.Flags().Lookup("from"))

	emailExportCmd.Flags().String("sendgrid_api_key", "", "SendGrid API key")
	viper.BindPFlag("sendgrid_api_key", emailExportCmd.Flags().Lookup("sendgrid_api_key"))

	emailExportCmd.Flags().Bool("dry_run", false, "log the email instead of sending it")
	viper.BindPFlag("dry_run", emailExportCmd.Flags().Lookup("dry_run"))
}
