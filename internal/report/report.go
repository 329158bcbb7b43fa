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

// Package report builds the analytics report from the mirrored labor
// statistics and the population snapshots.
package report

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/laborstats/pipeline/internal/dataset"
	reportmetrics "github.com/laborstats/pipeline/internal/metrics/report"
	"github.com/laborstats/pipeline/internal/quality"
	"github.com/laborstats/pipeline/internal/storage"
	"github.com/laborstats/pipeline/pkg/logging"
	"github.com/laborstats/pipeline/pkg/observability"
	"github.com/laborstats/pipeline/pkg/render"
	"go.opencensus.io/stats"
)

// Invocation statuses.
const (
	ResultSuccess = "success"
	ResultIgnored = "ignored"
	ResultFailed  = "failed"
)

// Result is the outcome of one invocation.
type Result struct {
	StatusCode int    `json:"status_code"`
	Status     string `json:"status"`
	ReportKey  string `json:"report_key,omitempty"`
	ParquetKey string `json:"parquet_key,omitempty"`
	TriggerKey string `json:"trigger_key,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Generator loads both datasets and writes the report.
type Generator struct {
	config    *Config
	blobstore storage.Blobstore
	loader    *dataset.Loader
	mode      dataset.PopulationMode
	h         *render.Renderer

	now func() time.Time
}

// NewGenerator creates a new generator.
func NewGenerator(cfg *Config, blobstore storage.Blobstore) (*Generator, error) {
	if blobstore == nil {
		return nil, fmt.Errorf("missing blobstore")
	}

	mode, err := dataset.ParsePopulationMode(cfg.PopulationMode)
	if err != nil {
		return nil, err
	}

	return &Generator{
		config:    cfg,
		blobstore: blobstore,
		loader:    dataset.NewLoader(blobstore, cfg.Bucket),
		mode:      mode,
		h:         render.NewRenderer(),
		now:       time.Now,
	}, nil
}

// Generate builds the report and writes it to the configured key. The report
// is written only after every section has been computed and only if the
// invocation has not run out of time, so a failed invocation leaves any
// previous report in place.
func (g *Generator) Generate(ctx context.Context, triggerKey string) *Result {
	logger := logging.FromContext(ctx).Named("report.Generate").
		With("trigger_key", triggerKey)

	start := time.Now()
	result := &Result{TriggerKey: triggerKey}

	ctx, cancel := context.WithTimeout(ctx, g.config.MaxRuntime)
	defer cancel()

	if err := g.generate(ctx, triggerKey, result); err != nil {
		logger.Errorw("failed to generate report", "error", err)
		stats.Record(ctx, reportmetrics.Failed.M(1))
		observability.RecordLatency(ctx, start, reportmetrics.Latency, &observability.ResultNotOK)

		result.StatusCode = http.StatusInternalServerError
		result.Status = ResultFailed
		result.ReportKey = ""
		result.ParquetKey = ""
		result.Error = err.Error()
		return result
	}

	stats.Record(ctx, reportmetrics.Generated.M(1))
	observability.RecordLatency(ctx, start, reportmetrics.Latency, &observability.ResultOK)

	logger.Infow("report written", "key", result.ReportKey)
	result.StatusCode = http.StatusOK
	result.Status = ResultSuccess
	return result
}

func (g *Generator) generate(ctx context.Context, triggerKey string, result *Result) error {
	logger := logging.FromContext(ctx).Named("report.generate")

	table, err := g.loader.LoadBLS(ctx, g.config.BLSDataKey)
	if err != nil {
		return fmt.Errorf("failed to load labor statistics: %w", err)
	}

	population, err := g.loader.LoadPopulation(ctx, g.config.PopulationPrefix, g.mode)
	if err != nil {
		return fmt.Errorf("failed to load population: %w", err)
	}

	cleaned, cleaning := quality.Clean(table)
	logger.Infow("cleaned labor statistics",
		"input", cleaning.Input,
		"kept", cleaning.Kept,
		"sentinel", cleaning.Sentinel,
		"other_period", cleaning.OtherPeriod,
		"malformed", cleaning.Malformed)
	stats.Record(ctx, reportmetrics.MalformedRecords.M(int64(cleaning.Malformed)))

	doc, joined := Build(cleaned, cleaning, population, &Options{
		StatsFromYear: g.config.StatsFromYear,
		StatsToYear:   g.config.StatsToYear,
		FocusSeries:   g.config.FocusSeries,
		FocusPeriod:   g.config.FocusPeriod,
	})
	doc.GeneratedAt = g.now().UTC()
	doc.Sources = Sources{
		BLSKey:           g.config.BLSDataKey,
		PopulationPrefix: g.config.PopulationPrefix,
		PopulationMode:   string(g.mode),
		TriggerKey:       triggerKey,
	}

	if n := noDataSections(doc); n > 0 {
		logger.Warnw("report has sections without data", "sections", n)
		stats.Record(ctx, reportmetrics.NoDataSections.M(int64(n)))
	}

	b, err := g.h.MarshalJSON(doc)
	if err != nil {
		return err
	}

	var pq []byte
	if g.config.ParquetKey != "" && len(joined) > 0 {
		if pq, err = encodeParquet(joined); err != nil {
			return err
		}
	}

	// Nothing is persisted once the time budget is spent.
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("report not written: %w", err)
	}

	if pq != nil {
		if err := g.write(ctx, g.config.ParquetKey, pq, "application/vnd.apache.parquet"); err != nil {
			return err
		}
		result.ParquetKey = g.config.ParquetKey
	}

	if err := g.write(ctx, g.config.ReportKey, b, "application/json"); err != nil {
		return err
	}
	result.ReportKey = g.config.ReportKey
	return nil
}

func (g *Generator) write(ctx context.Context, key string, b []byte, contentType string) error {
	ctx, cancel := context.WithTimeout(ctx, g.config.UploadTimeout)
	defer cancel()

	if err := g.blobstore.CreateObject(ctx, g.config.Bucket, key, b, false, contentType, nil); err != nil {
		return fmt.Errorf("failed to write %s to blobstore: %w", key, err)
	}
	return nil
}
