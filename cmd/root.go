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
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/ademuri/lastfm-dashboard/internal/analysis"
	"github.com/ademuri/lastfm-dashboard/internal/scrobbles"
	"github.com/ademuri/lastfm-dashboard/internal/theme"
	"github.com/ademuri/lastfm-dashboard/internal/upstream"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "lastfm-dashboard",
	Short: "Builds listening dashboards from last.fm data",
	Long: `Fetches a user's last.fm listening data and turns it into tables: top
artists, tracks and albums, a weekly comparison, decades, streaks and more.
The tables can be printed, exported in several formats, emailed or served
over HTTP.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.lastfm-dashboard.yaml)")

	flags.String("api_key", "", "last.fm API key")
	flags.String("secret", "", "last.fm secret")
	flags.StringP("user", "u", "", "last.fm username to act on")
	flags.String("period", string(upstream.PeriodOverall), "period for the top lists: overall, 7day, 1month, 3month, 6month or 12month")
	flags.String("theme", string(theme.Default), "dashboard theme: light, dark, black, blue, orange or graffiti")
	flags.String("log-level", "info", "log level: debug, info, warn or error")
	flags.Duration("throttle", scrobbles.DefaultConfig().Throttle, "minimum spacing between last.fm calls")
	flags.Uint("retries", scrobbles.DefaultConfig().Attempts, "attempts per call on temporary last.fm failures")
	flags.Float64("minutes-per-scrobble", analysis.DefaultMinutesPerScrobble, "minutes of listening time counted per scrobble")
	flags.Int("cache-size", 256, "number of last.fm responses to memoize (0 disables)")
	flags.Duration("cache-ttl", 10*time.Minute, "how long memoized last.fm responses stay valid")
	flags.String("base-url", upstream.DefaultBaseURL, "last.fm API endpoint")

	flags.VisitAll(func(f *pflag.Flag) {
		if f.Name != "config" {
			viper.BindPFlag(f.Name, f)
		}
	})
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".lastfm-dashboard" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".lastfm-dashboard")
	}

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	// See https://github.com/spf13/viper/pull/852
	rootCmd.PersistentFlags().VisitAll(func(f *pflag.Flag) {
		if !f.Changed && viper.IsSet(f.Name) && viper.GetString(f.Name) != "" {
			rootCmd.PersistentFlags().Set(f.Name, viper.GetString(f.Name))
		}
	})
}

// newLogger writes to stderr through the console writer at --log-level.
func newLogger() zerolog.Logger {
	level, err := zerolog.ParseLevel(viper.GetString("log-level"))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).
		With().
		Timestamp().
		Logger()
}
