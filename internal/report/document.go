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
	"fmt"
	"time"

	"github.com/laborstats/pipeline/internal/dataset"
	"github.com/laborstats/pipeline/internal/quality"
	"github.com/shopspring/decimal"
)

// Section statuses.
const (
	StatusOK     = "ok"
	StatusNoData = "no_data"
)

// NoData replaces a section that could not be computed.
type NoData struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

func noData(format string, args ...any) *NoData {
	return &NoData{
		Status: StatusNoData,
		Reason: fmt.Sprintf(format, args...),
	}
}

// Number is a decimal that encodes as a JSON number rather than a string.
type Number struct {
	decimal.Decimal
}

// MarshalJSON implements json.Marshaler.
func (n Number) MarshalJSON() ([]byte, error) {
	return []byte(n.String()), nil
}

// BestYears is the ranking section.
type BestYears struct {
	Status      string      `json:"status"`
	TotalSeries int         `json:"total_series"`
	Series      []*BestYear `json:"series"`
}

// JoinedReport is the left join section.
type JoinedReport struct {
	Status         string       `json:"status"`
	RecordCount    int          `json:"record_count"`
	WithPopulation int          `json:"with_population"`
	Rows           []*JoinedRow `json:"rows"`
}

// Focus holds the joined rows of a single series and period.
type Focus struct {
	Status      string       `json:"status"`
	SeriesID    string       `json:"series_id"`
	Period      string       `json:"period"`
	RecordCount int          `json:"record_count"`
	YearRange   string       `json:"year_range"`
	Rows        []*JoinedRow `json:"rows"`
}

// Sources records where the inputs came from.
type Sources struct {
	BLSKey           string `json:"bls_key"`
	PopulationPrefix string `json:"population_prefix"`
	PopulationMode   string `json:"population_mode"`
	TriggerKey       string `json:"trigger_key,omitempty"`
}

// Document is the report written to the blobstore. Each section is either its
// computed value or a *NoData.
type Document struct {
	GeneratedAt time.Time      `json:"generated_at"`
	Sources     Sources        `json:"sources"`
	Quality     *quality.Stats `json:"quality"`

	PopulationStats any `json:"population_stats"`
	BestYears       any `json:"best_years"`
	JoinedReport    any `json:"joined_report"`
	Focus           any `json:"focus"`
}

// Options controls the optional parts of a document.
type Options struct {
	StatsFromYear int
	StatsToYear   int
	FocusSeries   string
	FocusPeriod   string
}

// Build computes every section of the document. It never fails; a section
// that cannot be computed holds a *NoData. It also returns the joined rows.
func Build(table *quality.Table, cleaning *quality.Stats, population []*dataset.PopulationRecord, opts *Options) (*Document, []*JoinedRow) {
	doc := &Document{
		Quality: cleaning,
	}

	if stats, reason := computePopulationStats(population, opts.StatsFromYear, opts.StatsToYear); stats != nil {
		doc.PopulationStats = stats
	} else {
		doc.PopulationStats = noData("%s", reason)
	}

	if len(table.Records) == 0 {
		reason := "no labor statistics records available"
		if cleaning != nil && cleaning.Input > 0 {
			reason = fmt.Sprintf("all %d labor statistics rows were excluded by cleaning", cleaning.Input)
		}
		doc.BestYears = noData("%s", reason)
		doc.JoinedReport = noData("%s", reason)
		doc.Focus = noData("%s", reason)
		return doc, nil
	}

	best := computeBestYears(table.Records)
	doc.BestYears = &BestYears{
		Status:      StatusOK,
		TotalSeries: len(best),
		Series:      best,
	}

	joined := joinPopulation(table.Records, population)
	withPop := 0
	for _, r := range joined {
		if r.Population != nil {
			withPop++
		}
	}
	doc.JoinedReport = &JoinedReport{
		Status:         StatusOK,
		RecordCount:    len(joined),
		WithPopulation: withPop,
		Rows:           joined,
	}

	focus := focusRows(joined, opts.FocusSeries, opts.FocusPeriod)
	if len(focus) == 0 {
		doc.Focus = noData("no records for series %s period %s", opts.FocusSeries, opts.FocusPeriod)
	} else {
		doc.Focus = &Focus{
			Status:      StatusOK,
			SeriesID:    opts.FocusSeries,
			Period:      opts.FocusPeriod,
			RecordCount: len(focus),
			YearRange:   fmt.Sprintf("%d-%d", focus[0].Year, focus[len(focus)-1].Year),
			Rows:        focus,
		}
	}

	return doc, joined
}

// noDataSections counts the sections of doc that could not be computed.
func noDataSections(doc *Document) int {
	n := 0
	for _, s := range []any{doc.PopulationStats, doc.BestYears, doc.JoinedReport, doc.Focus} {
		if _, ok := s.(*NoData); ok {
			n++
		}
	}
	return n
}
