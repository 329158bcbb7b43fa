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

package ingest

import (
	"github.com/laborstats/pipeline/internal/metrics"
	"github.com/laborstats/pipeline/pkg/observability"
	"go.opencensus.io/stats/view"
)

func init() {
	observability.CollectViews([]*view.View{
		{
			Name:        metrics.MetricRoot + "ingest_files_uploaded_count",
			Description: "Total count of archive files uploaded",
			Measure:     FilesUploaded,
			Aggregation: view.Sum(),
		},
		{
			Name:        metrics.MetricRoot + "ingest_files_skipped_count",
			Description: "Total count of archive files skipped",
			Measure:     FilesSkipped,
			Aggregation: view.Sum(),
		},
		{
			Name:        metrics.MetricRoot + "ingest_files_failed_count",
			Description: "Total count of archive files that failed to transfer",
			Measure:     FilesFailed,
			Aggregation: view.Sum(),
		},
		{
			Name:        metrics.MetricRoot + "ingest_bytes_uploaded_sum",
			Description: "Total archive bytes uploaded",
			Measure:     BytesUploaded,
			Aggregation: view.Sum(),
		},
		{
			Name:        metrics.MetricRoot + "ingest_snapshots_written_count",
			Description: "Total count of population snapshots written",
			Measure:     SnapshotsWritten,
			Aggregation: view.Sum(),
		},
		{
			Name:        metrics.MetricRoot + "ingest_snapshot_failures_count",
			Description: "Total count of failed population snapshots",
			Measure:     SnapshotFailures,
			Aggregation: view.Sum(),
		},
	}...)
}
