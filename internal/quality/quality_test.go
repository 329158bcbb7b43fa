// Copyright 2026 the Labor Stats Pipeline authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package quality

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/laborstats/pipeline/internal/dataset"
	"github.com/shopspring/decimal"
)

func mustParse(tb testing.TB, s string) *dataset.BLSTable {
	tb.Helper()

	table, err := dataset.ParseBLS(strings.NewReader(s))
	if err != nil {
		tb.Fatal(err)
	}
	return table
}

func TestClean(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		input     string
		wantCols  []string
		wantRecs  []*Record
		wantStats *Stats
	}{
		{
			name: "sentinel_rows",
			input: "series_id        \tyear\tperiod\t       value\tfootnote_codes\n" +
				"PRS30006011      \t2020\tQ01\t          1.5\t\n" +
				"PRS30006011      \t2020\tQ05\t          9.9\t\n" +
				"PRS30006011      \t2020\t q05 \t          9.9\t\n" +
				"PRS30006011      \t2020\tQ02\t         -0.4\tR\n",
			wantCols: []string{"series_id", "year", "period", "value"},
			wantRecs: []*Record{
				{SeriesID: "PRS30006011", Year: 2020, Period: "Q01", Value: decimal.RequireFromString("1.5")},
				{SeriesID: "PRS30006011", Year: 2020, Period: "Q02", Value: decimal.RequireFromString("-0.4")},
			},
			wantStats: &Stats{Input: 4, Kept: 2, Sentinel: 2},
		},
		{
			name: "other_periods_and_malformed",
			input: "series_id\tyear\tperiod\tvalue\n" +
				"S1\t2020\tM13\t1\n" +
				"S1\t2020\n" +
				"S1\tyear\tQ01\t1\n" +
				"S1\t2020\tQ03\t-\n" +
				"\t2020\tQ03\t1\n" +
				" S1 \t 2021 \t q04 \t 12345.678 \n",
			wantCols: []string{"series_id", "year", "period", "value"},
			wantRecs: []*Record{
				{SeriesID: "S1", Year: 2021, Period: "Q04", Value: decimal.RequireFromString("12345.678")},
			},
			wantStats: &Stats{Input: 6, Kept: 1, OtherPeriod: 1, Malformed: 4},
		},
		{
			name: "stray_quote_isolated",
			input: "series_id\tyear\tperiod\tvalue\tfootnote_codes\n" +
				"S1\t2020\tQ01\t\"1.0\t\n" +
				"S1\t2020\tQ02\t2.0\t\n" +
				"S1\t2020\tQ03\t3.0\t\n",
			wantCols: []string{"series_id", "year", "period", "value"},
			wantRecs: []*Record{
				{SeriesID: "S1", Year: 2020, Period: "Q02", Value: decimal.RequireFromString("2.0")},
				{SeriesID: "S1", Year: 2020, Period: "Q03", Value: decimal.RequireFromString("3.0")},
			},
			wantStats: &Stats{Input: 3, Kept: 2, Malformed: 1},
		},
		{
			name: "extra_columns_trimmed",
			input: "series_id\tyear\tperiod\tvalue\tfootnote_codes\tsource\n" +
				"S1\t2020\tQ01\t1\tP\t  survey  \n" +
				"S1\t2020\tQ02\t2\n",
			wantCols: []string{"series_id", "year", "period", "value", "source"},
			wantRecs: []*Record{
				{SeriesID: "S1", Year: 2020, Period: "Q01", Value: decimal.RequireFromString("1"), Extra: map[string]string{"source": "survey"}},
				{SeriesID: "S1", Year: 2020, Period: "Q02", Value: decimal.RequireFromString("2"), Extra: map[string]string{"source": ""}},
			},
			wantStats: &Stats{Input: 2, Kept: 2},
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			input := mustParse(t, tc.input)
			before := len(input.Rows)

			got, stats := Clean(input)

			if diff := cmp.Diff(tc.wantCols, got.Columns); diff != "" {
				t.Errorf("columns mismatch (-want, +got):\n%s", diff)
			}
			if diff := cmp.Diff(tc.wantRecs, got.Records); diff != "" {
				t.Errorf("records mismatch (-want, +got):\n%s", diff)
			}
			if diff := cmp.Diff(tc.wantStats, stats); diff != "" {
				t.Errorf("stats mismatch (-want, +got):\n%s", diff)
			}
			if len(input.Rows) != before {
				t.Errorf("input was modified")
			}

			for _, r := range got.Records {
				if _, ok := quarters[r.Period]; !ok {
					t.Errorf("unexpected period %q", r.Period)
				}
				if r.SeriesID != strings.TrimSpace(r.SeriesID) {
					t.Errorf("series id %q has surrounding whitespace", r.SeriesID)
				}
			}
		})
	}
}
