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

// Package snapshot stores dated copies of the population API response.
package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/laborstats/pipeline/internal/metrics/ingest"
	"github.com/laborstats/pipeline/internal/storage"
	"github.com/laborstats/pipeline/pkg/logging"
	"go.opencensus.io/stats"
)

// Config configures where snapshots are written.
type Config struct {
	Prefix string `env:"POPULATION_PREFIX, default=raw/datausa/population/"`

	UploadTimeout time.Duration `env:"SNAPSHOT_UPLOAD_TIMEOUT, default=1m"`
}

// Source is the API being captured.
type Source interface {
	SourceURL() string
	Fetch(ctx context.Context) ([]byte, error)
}

// Result describes a single snapshot attempt.
type Result struct {
	Success     bool   `json:"success"`
	FileSaved   string `json:"file_saved,omitempty"`
	RecordCount int    `json:"record_count"`
	SourceURL   string `json:"api_url,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Writer fetches the API once and writes the response to a new object.
type Writer struct {
	source    Source
	blobstore storage.Blobstore
	bucket    string
	config    *Config

	now   func() time.Time
	newID func() string
}

// NewWriter creates a new snapshot writer.
func NewWriter(source Source, blobstore storage.Blobstore, bucket string, config *Config) *Writer {
	return &Writer{
		source:    source,
		blobstore: blobstore,
		bucket:    bucket,
		config:    config,
		now:       time.Now,
		newID:     shortID,
	}
}

// Key returns the object key for a snapshot taken at t. The id suffix keeps
// snapshots taken within the same second apart.
func Key(prefix string, t time.Time, id string) string {
	return storage.JoinKey(prefix, "population_"+t.UTC().Format("20060102_150405")+"_"+id+".json")
}

// shortID returns the first eight hex digits of a random UUID.
func shortID() string {
	return uuid.New().String()[:8]
}

// Snapshot performs one fetch and one write. Every call writes a new object,
// even when the response is identical to the previous snapshot. The returned
// result is never nil; on failure it carries the error message and nothing is
// written.
func (w *Writer) Snapshot(ctx context.Context) (*Result, error) {
	logger := logging.FromContext(ctx).Named("snapshot.Snapshot")

	invoked := w.now().UTC()
	result := &Result{SourceURL: w.source.SourceURL()}

	fail := func(err error) (*Result, error) {
		stats.Record(ctx, ingest.SnapshotFailures.M(1))
		logger.Errorw("failed to write snapshot", "error", err)
		result.Success = false
		result.Error = err.Error()
		return result, err
	}

	b, err := w.source.Fetch(ctx)
	if err != nil {
		return fail(fmt.Errorf("failed to fetch population data: %w", err))
	}

	count, err := recordCount(b)
	if err != nil {
		return fail(fmt.Errorf("failed to parse population data: %w", err))
	}

	key := Key(w.config.Prefix, invoked, w.newID())
	metadata := map[string]string{
		"source-url":          result.SourceURL,
		"ingestion-timestamp": invoked.Format(time.RFC3339),
		"record-count":        strconv.Itoa(count),
	}

	if err := func() error {
		ctx, cancel := context.WithTimeout(ctx, w.config.UploadTimeout)
		defer cancel()
		return w.blobstore.CreateObject(ctx, w.bucket, key, b, false, "application/json", metadata)
	}(); err != nil {
		return fail(fmt.Errorf("failed to write %s to blobstore: %w", key, err))
	}

	stats.Record(ctx, ingest.SnapshotsWritten.M(1))
	logger.Infow("wrote snapshot", "key", key, "records", count)

	result.Success = true
	result.FileSaved = key
	result.RecordCount = count
	return result, nil
}

// recordCount validates that b is JSON and returns the number of records it
// carries: the length of a top-level "data" array, or of a bare array.
func recordCount(b []byte) (int, error) {
	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		return 0, err
	}

	switch typ := doc.(type) {
	case []any:
		return len(typ), nil
	case map[string]any:
		if data, ok := typ["data"].([]any); ok {
			return len(data), nil
		}
	}
	return 0, nil
}
