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

// Package syncjob runs one invocation of the ingestion job: a mirror of the
// labor statistics archive and a population snapshot.
package syncjob

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/laborstats/pipeline/internal/bls"
	"github.com/laborstats/pipeline/internal/datausa"
	"github.com/laborstats/pipeline/internal/fetch"
	"github.com/laborstats/pipeline/internal/middleware"
	"github.com/laborstats/pipeline/internal/mirror"
	"github.com/laborstats/pipeline/internal/serverenv"
	"github.com/laborstats/pipeline/internal/snapshot"
	"github.com/laborstats/pipeline/pkg/logging"
	"github.com/laborstats/pipeline/pkg/render"
	"golang.org/x/sync/errgroup"
)

// Overall job statuses.
const (
	StatusSuccess = "success"
	StatusPartial = "partial_success"
	StatusFailed  = "failed"
)

// Result is the outcome of one invocation.
type Result struct {
	StatusCode   int              `json:"status_code"`
	Status       string           `json:"status"`
	RequestID    string           `json:"request_id"`
	Timestamp    time.Time        `json:"timestamp"`
	BLSSync      *mirror.Manifest `json:"bls_sync"`
	BLSSyncError string           `json:"bls_sync_error,omitempty"`
	DataUSASync  *snapshot.Result `json:"datausa_sync"`
}

// Job runs the archive mirror and the population snapshot.
type Job struct {
	config      *Config
	syncer      *mirror.Syncer
	snapshotter *snapshot.Writer
	env         *serverenv.ServerEnv

	now func() time.Time
}

// New creates a job that reads the live archive and API.
func New(cfg *Config, env *serverenv.ServerEnv) (*Job, error) {
	if env.Blobstore() == nil {
		return nil, fmt.Errorf("missing blobstore in server environment")
	}

	fetcher := fetch.New(cfg.UserAgent)

	return NewWithSources(cfg, env,
		bls.NewClient(fetcher, &cfg.BLS),
		datausa.NewClient(fetcher, &cfg.DataUSA)), nil
}

// NewWithSources creates a job over the given sources.
func NewWithSources(cfg *Config, env *serverenv.ServerEnv, archive mirror.Source, population snapshot.Source) *Job {
	return &Job{
		config:      cfg,
		syncer:      mirror.NewSyncer(archive, env.Blobstore(), cfg.Bucket, &cfg.Mirror),
		snapshotter: snapshot.NewWriter(population, env.Blobstore(), cfg.Bucket, &cfg.Snapshot),
		env:         env,
		now:         time.Now,
	}
}

// Run performs both parts concurrently and summarizes them. A failure of one
// part does not prevent the other from running.
func (j *Job) Run(ctx context.Context) *Result {
	logger := logging.FromContext(ctx).Named("syncjob.Run")

	ctx, cancel := context.WithTimeout(ctx, j.config.MaxRuntime)
	defer cancel()

	requestID := middleware.RequestIDFromContext(ctx)
	if requestID == "" {
		requestID = uuid.New().String()
	}

	result := &Result{
		RequestID: requestID,
		Timestamp: j.now().UTC(),
	}

	var g errgroup.Group
	g.Go(func() error {
		manifest, err := j.syncer.Sync(ctx)
		if err != nil {
			logger.Errorw("archive sync failed", "error", err)
			result.BLSSyncError = err.Error()
			return nil
		}
		result.BLSSync = manifest
		return nil
	})
	g.Go(func() error {
		// The result is populated on failure too.
		res, _ := j.snapshotter.Snapshot(ctx)
		result.DataUSASync = res
		return nil
	})
	_ = g.Wait()

	blsOK := result.BLSSync != nil && result.BLSSync.Success
	popOK := result.DataUSASync != nil && result.DataUSASync.Success

	switch {
	case blsOK && popOK:
		result.Status, result.StatusCode = StatusSuccess, http.StatusOK
	case blsOK || popOK:
		result.Status, result.StatusCode = StatusPartial, http.StatusMultiStatus
	default:
		result.Status, result.StatusCode = StatusFailed, http.StatusInternalServerError
	}

	logger.Infow("sync job finished",
		"status", result.Status,
		"bls_success", blsOK,
		"population_success", popOK)
	return result
}

// RunOnce runs a single invocation with no retries, writes the result as JSON
// to w, and returns an error unless both parts succeeded. Retrying is left to
// whatever triggered the invocation.
func (j *Job) RunOnce(ctx context.Context, w io.Writer) error {
	result := j.Run(ctx)

	b, err := render.NewRenderer().MarshalJSON(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	if _, err := w.Write(b); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}

	if result.StatusCode != http.StatusOK {
		return fmt.Errorf("sync finished with status %s", result.Status)
	}
	return nil
}
