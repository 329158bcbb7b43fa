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
	"github.com/laborstats/pipeline/internal/metrics"
	"github.com/laborstats/pipeline/pkg/observability"
	"go.opencensus.io/stats/view"
)

func init() {
	observability.CollectViews([]*view.View{
		{
			Name:        metrics.MetricRoot + "report_generated_count",
			Description: "Total count of reports written",
			Measure:     Generated,
			Aggregation: view.Sum(),
		},
		{
			Name:        metrics.MetricRoot + "report_failed_count",
			Description: "Total count of failed report invocations",
			Measure:     Failed,
			Aggregation: view.Sum(),
		},
		{
			Name:        metrics.MetricRoot + "report_malformed_records_latest",
			Description: "Latest number of rows excluded as malformed",
			Measure:     MalformedRecords,
			Aggregation: view.LastValue(),
		},
		{
			Name:        metrics.MetricRoot + "report_no_data_sections_count",
			Description: "Total count of report sections without data",
			Measure:     NoDataSections,
			Aggregation: view.Sum(),
		},
		{
			Name:        metrics.MetricRoot + "report_latency",
			Description: "Distribution of report generation latency",
			Measure:     Latency,
			Aggregation: view.Distribution(100, 500, 1000, 5000, 10000, 30000, 60000),
		},
	}...)
}
