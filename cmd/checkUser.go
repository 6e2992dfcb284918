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
)

var checkUserCmd = &cobra.Command{
	Use:     "check-user",
	Short:   "Checks that the last.fm user exists",
	PreRunE: requireFlags("api_key", "user"),
	Run: func(cmd *cobra.Command, args []string) {
		user := viper.GetString("user")
		if err := newDeps().checkUser(cmd.Context(), user); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		fmt.Printf("User %s exists\n", user)
	},
}

func init() {
	rootCmd.AddCommand(checkUserCmd)
}
