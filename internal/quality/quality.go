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

// Package quality repairs the known defects of the labor statistics data file
// before it is analyzed.
package quality

import (
	"strconv"
	"strings"

	"github.com/laborstats/pipeline/internal/dataset"
	"github.com/laborstats/pipeline/internal/project"
	"github.com/shopspring/decimal"
)

// SentinelPeriod is the annual average row mixed in with the quarterly data.
const SentinelPeriod = "Q05"

var quarters = map[string]struct{}{
	"Q01": {},
	"Q02": {},
	"Q03": {},
	"Q04": {},
}

// Record is one cleaned quarterly observation.
type Record struct {
	SeriesID string
	Year     int
	Period   string
	Value    decimal.Decimal

	// Extra holds any other columns of the file, trimmed.
	Extra map[string]string
}

// Table is the cleaned data. Every record has a quarterly period, no value
// has surrounding whitespace and there is no footnote column.
type Table struct {
	Columns []string
	Records []*Record
}

// Stats counts what Clean did.
type Stats struct {
	Input int `json:"input"`
	Kept  int `json:"kept"`

	// Sentinel rows had the Q05 period; OtherPeriod rows had any other period
	// outside Q01 to Q04.
	Sentinel    int `json:"sentinel"`
	OtherPeriod int `json:"other_period"`

	// Malformed rows were too short or had a year or value that could not be
	// parsed.
	Malformed int `json:"malformed"`
}

// Clean applies the fixed cleaning steps to t: rows with a non-quarterly
// period are dropped, every cell is trimmed and the footnote column is
// removed. Rows that cannot be parsed are excluded and counted. Values are
// otherwise kept as they are, including negatives. Clean does not modify t.
func Clean(t *dataset.BLSTable) (*Table, *Stats) {
	stats := &Stats{Input: len(t.Rows)}

	idxSeries := t.Index(dataset.ColumnSeriesID)
	idxYear := t.Index(dataset.ColumnYear)
	idxPeriod := t.Index(dataset.ColumnPeriod)
	idxValue := t.Index(dataset.ColumnValue)

	out := &Table{
		Columns: make([]string, 0, len(t.Columns)),
		Records: make([]*Record, 0, len(t.Rows)),
	}

	extras := make(map[int]string)
	for i, c := range t.Columns {
		if c == dataset.ColumnFootnoteCodes {
			continue
		}
		out.Columns = append(out.Columns, c)

		switch i {
		case idxSeries, idxYear, idxPeriod, idxValue:
		default:
			extras[i] = c
		}
	}

	for _, row := range t.Rows {
		rawPeriod, ok := row.Cell(idxPeriod)
		if !ok {
			stats.Malformed++
			continue
		}

		period := strings.ToUpper(project.TrimSpace(rawPeriod))
		if period == SentinelPeriod {
			stats.Sentinel++
			continue
		}
		if _, ok := quarters[period]; !ok {
			stats.OtherPeriod++
			continue
		}

		rec, ok := parseRecord(row, idxSeries, idxYear, idxValue)
		if !ok {
			stats.Malformed++
			continue
		}
		rec.Period = period

		if len(extras) > 0 {
			rec.Extra = make(map[string]string, len(extras))
			for i, name := range extras {
				v, _ := row.Cell(i)
				rec.Extra[name] = project.TrimSpace(v)
			}
		}

		out.Records = append(out.Records, rec)
	}

	stats.Kept = len(out.Records)
	return out, stats
}

func parseRecord(row dataset.BLSRow, idxSeries, idxYear, idxValue int) (*Record, bool) {
	series, ok := row.Cell(idxSeries)
	if !ok {
		return nil, false
	}
	series = project.TrimSpace(series)
	if series == "" {
		return nil, false
	}

	rawYear, ok := row.Cell(idxYear)
	if !ok {
		return nil, false
	}
	year, err := strconv.Atoi(project.TrimSpace(rawYear))
	if err != nil {
		return nil, false
	}

	rawValue, ok := row.Cell(idxValue)
	if !ok {
		return nil, false
	}
	value, err := decimal.NewFromString(project.TrimSpace(rawValue))
	if err != nil {
		return nil, false
	}

	return &Record{
		SeriesID: series,
		Year:     year,
		Value:    value,
	}, true
}
