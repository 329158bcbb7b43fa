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

// Package report holds the measures recorded while generating the analytics
// report.
package report

import (
	"github.com/laborstats/pipeline/internal/metrics"
	"go.opencensus.io/stats"
)

var (
	reportMetricsPrefix = metrics.MetricRoot + "report/"

	Generated = stats.Int64(reportMetricsPrefix+"generated",
		"Number of reports written", stats.UnitDimensionless)
	Failed = stats.Int64(reportMetricsPrefix+"failed",
		"Number of report invocations that failed", stats.UnitDimensionless)
	MalformedRecords = stats.Int64(reportMetricsPrefix+"malformed_records",
		"Number of labor statistics rows excluded as malformed", stats.UnitDimensionless)
	NoDataSections = stats.Int64(reportMetricsPrefix+"no_data_sections",
		"Number of report sections that could not be computed", stats.UnitDimensionless)
	Latency = stats.Float64(reportMetricsPrefix+"latency",
		"Time taken to generate a report", stats.UnitMilliseconds)
)
