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

package report

import (
	"math"
	"sort"

	"github.com/laborstats/pipeline/internal/dataset"
	"github.com/laborstats/pipeline/internal/quality"
	"github.com/shopspring/decimal"
)

// PopulationStats summarizes population over the years present in the data,
// optionally restricted to an inclusive window.
type PopulationStats struct {
	Status      string  `json:"status"`
	WindowFrom  int     `json:"window_from,omitempty"`
	WindowTo    int     `json:"window_to,omitempty"`
	FirstYear   int     `json:"first_year"`
	LastYear    int     `json:"last_year"`
	Years       []int   `json:"years"`
	RecordCount int     `json:"record_count"`
	Mean        float64 `json:"mean_population"`
	StdDev      float64 `json:"std_dev_population"`
}

// BestYear is the year with the largest summed value for a series.
type BestYear struct {
	SeriesID string `json:"series_id"`
	Year     int    `json:"year"`
	Value    Number `json:"value"`
}

// JoinedRow is a cleaned observation with the population of its year, if
// known.
type JoinedRow struct {
	SeriesID   string `json:"series_id"`
	Year       int    `json:"year"`
	Period     string `json:"period"`
	Value      Number `json:"value"`
	Population *int64 `json:"population"`
}

// computePopulationStats returns the statistics over the records whose year
// falls within [from, to], where 0 leaves that side open. The standard
// deviation is the sample deviation and is 0 for a single year. It returns a
// reason when there is nothing to summarize.
func computePopulationStats(records []*dataset.PopulationRecord, from, to int) (*PopulationStats, string) {
	if len(records) == 0 {
		return nil, "no population data available"
	}

	stats := &PopulationStats{
		Status:     StatusOK,
		WindowFrom: from,
		WindowTo:   to,
	}

	values := make([]float64, 0, len(records))
	for _, r := range records {
		if from != 0 && r.Year < from {
			continue
		}
		if to != 0 && r.Year > to {
			continue
		}
		stats.Years = append(stats.Years, r.Year)
		values = append(values, float64(r.Population))
	}

	if len(values) == 0 {
		return nil, "no population data within the configured years"
	}

	sort.Ints(stats.Years)
	stats.FirstYear = stats.Years[0]
	stats.LastYear = stats.Years[len(stats.Years)-1]
	stats.RecordCount = len(values)

	var sum float64
	for _, v := range values {
		sum += v
	}
	stats.Mean = sum / float64(len(values))

	if len(values) > 1 {
		var sq float64
		for _, v := range values {
			d := v - stats.Mean
			sq += d * d
		}
		stats.StdDev = math.Sqrt(sq / float64(len(values)-1))
	}
	return stats, ""
}

// computeBestYears sums the values of each series per year and picks the year
// with the largest sum. Ties go to the earliest year. The result is sorted by
// series id.
func computeBestYears(records []*quality.Record) []*BestYear {
	type seriesYear struct {
		series string
		year   int
	}

	sums := make(map[seriesYear]decimal.Decimal)
	for _, r := range records {
		k := seriesYear{r.SeriesID, r.Year}
		sums[k] = sums[k].Add(r.Value)
	}

	best := make(map[string]*BestYear)
	for k, sum := range sums {
		cur, ok := best[k.series]
		if !ok {
			best[k.series] = &BestYear{SeriesID: k.series, Year: k.year, Value: Number{sum}}
			continue
		}

		switch cmp := sum.Cmp(cur.Value.Decimal); {
		case cmp > 0, cmp == 0 && k.year < cur.Year:
			cur.Year = k.year
			cur.Value = Number{sum}
		}
	}

	out := make([]*BestYear, 0, len(best))
	for _, b := range best {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].SeriesID < out[j].SeriesID
	})
	return out
}

// joinPopulation left joins records with population on year. Every record
// produces exactly one row, in input order.
func joinPopulation(records []*quality.Record, population []*dataset.PopulationRecord) []*JoinedRow {
	byYear := make(map[int]int64, len(population))
	for _, p := range population {
		byYear[p.Year] = p.Population
	}

	rows := make([]*JoinedRow, 0, len(records))
	for _, r := range records {
		row := &JoinedRow{
			SeriesID: r.SeriesID,
			Year:     r.Year,
			Period:   r.Period,
			Value:    Number{r.Value},
		}
		if pop, ok := byYear[r.Year]; ok {
			row.Population = &pop
		}
		rows = append(rows, row)
	}
	return rows
}

// focusRows returns the joined rows of one series and period, sorted by year.
func focusRows(rows []*JoinedRow, series, period string) []*JoinedRow {
	var out []*JoinedRow
	for _, r := range rows {
		if r.SeriesID == series && r.Period == period {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Year < out[j].Year
	})
	return out
}
