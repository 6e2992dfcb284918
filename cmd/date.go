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
	"regexp"
	"strconv"
	"time"
)

// ParsedDate records which precision a date string was given in.
type ParsedDate struct {
	Date     time.Time
	Year     bool
	Month    bool
	Day      bool
	Relative bool
}

var (
	yearPattern     = regexp.MustCompile(`^\d{4}$`)
	monthPattern    = regexp.MustCompile(`^\d{4}-\d{2}$`)
	dayPattern      = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	relativePattern = regexp.MustCompile(`^(\d+)([dwmy])$`)
)

// now is replaced in tests.
var now = time.Now

func parseDateRangeFromArgs(args []string) (start time.Time, end time.Time, err error) {
	switch len(args) {
	case 0:
		// Unbounded.

	case 1:
		start, end, err = getImplicitDateRange(args[0])

	case 2:
		start, end, err = getExplicitDateRange(args[0], args[1])

	default:
		err = fmt.Errorf("Expected at most two date arguments")
	}
	return
}

func getImplicitDateRange(ds string) (start time.Time, end time.Time, err error) {
	date, err := parseSingleDatestring(ds)
	if err != nil {
		return
	}

	start = date.Date
	switch {
	case date.Year:
		end = start.AddDate(1, 0, 0)

	case date.Month:
		end = start.AddDate(0, 1, 0)

	case date.Day:
		end = start.AddDate(0, 0, 1)

	case date.Relative:
		end = now().UTC()

	default:
		err = fmt.Errorf("Invalid format: %q", ds)
	}

	return
}

func getExplicitDateRange(startString, endString string) (start time.Time, end time.Time, err error) {
	startParsed, err := parseSingleDatestring(startString)
	if err != nil {
		return
	}
	start = startParsed.Date

	endParsed, err := parseSingleDatestring(endString)
	if err != nil {
		return
	}
	end = endParsed.Date

	if !end.After(start) {
		err = fmt.Errorf("End date %q is not after start date %q", endString, startString)
	}
	return
}

func parseSingleDatestring(ds string) (date ParsedDate, err error) {
	switch {
	case yearPattern.MatchString(ds):
		date.Date, err = time.Parse("2006", ds)
		date.Year = true

	case monthPattern.MatchString(ds):
		date.Date, err = time.Parse("2006-01", ds)
		date.Month = true

	case dayPattern.MatchString(ds):
		date.Date, err = time.Parse("2006-01-02", ds)
		date.Day = true

	case relativePattern.MatchString(ds):
		m := relativePattern.FindStringSubmatch(ds)
		var amount int
		amount, err = strconv.Atoi(m[1])
		if err != nil {
			break
		}
		t := now().UTC()
		switch m[2] {
		case "d":
			date.Date = t.AddDate(0, 0, -amount)
		case "w":
			date.Date = t.AddDate(0, 0, -amount*7)
		case "m":
			date.Date = t.AddDate(0, -amount, 0)
		case "y":
			date.Date = t.AddDate(-amount, 0, 0)
		}
		date.Relative = true

	default:
		err = fmt.Errorf("Invalid format: %q", ds)
	}

	if err != nil {
		err = fmt.Errorf("Parsing datestring %q: %w", ds, err)
	}
	return
}
