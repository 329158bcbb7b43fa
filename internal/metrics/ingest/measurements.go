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

// Package ingest holds the measures recorded while mirroring the labor
// statistics archive and snapshotting the population API.
package ingest

import (
	"github.com/laborstats/pipeline/internal/metrics"
	"go.opencensus.io/stats"
)

var (
	ingestMetricsPrefix = metrics.MetricRoot + "ingest/"

	FilesUploaded = stats.Int64(ingestMetricsPrefix+"files_uploaded",
		"Number of archive files uploaded", stats.UnitDimensionless)
	FilesSkipped = stats.Int64(ingestMetricsPrefix+"files_skipped",
		"Number of archive files skipped as up to date", stats.UnitDimensionless)
	FilesFailed = stats.Int64(ingestMetricsPrefix+"files_failed",
		"Number of archive files that failed to transfer", stats.UnitDimensionless)
	BytesUploaded = stats.Int64(ingestMetricsPrefix+"bytes_uploaded",
		"Number of archive bytes uploaded", stats.UnitBytes)
	SnapshotsWritten = stats.Int64(ingestMetricsPrefix+"snapshots_written",
		"Number of population snapshots written", stats.UnitDimensionless)
	SnapshotFailures = stats.Int64(ingestMetricsPrefix+"snapshot_failures",
		"Number of failed population snapshots", stats.UnitDimensionless)
)
