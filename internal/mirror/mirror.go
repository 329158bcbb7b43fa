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

// Package mirror keeps a copy of the labor statistics archive in the
// blobstore, transferring only files that are new or have changed.
package mirror

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/laborstats/pipeline/internal/bls"
	"github.com/laborstats/pipeline/internal/metrics/ingest"
	"github.com/laborstats/pipeline/internal/storage"
	"github.com/laborstats/pipeline/pkg/logging"
	"go.opencensus.io/stats"
	"golang.org/x/sync/errgroup"
)

// Source is the remote archive being mirrored.
type Source interface {
	ListFiles(ctx context.Context) ([]*bls.RemoteFile, error)
	Download(ctx context.Context, f *bls.RemoteFile) ([]byte, error)
}

// Manifest is the outcome of a single sync. File names are listed in the
// order the archive listed them.
type Manifest struct {
	TotalFiles int      `json:"total_files"`
	Uploaded   []string `json:"uploaded"`
	Skipped    []string `json:"skipped"`
	Failed     []string `json:"failed,omitempty"`
	Errors     []string `json:"errors,omitempty"`
	Success    bool     `json:"success"`
}

// Syncer mirrors a Source into a blobstore prefix.
type Syncer struct {
	source    Source
	blobstore storage.Blobstore
	bucket    string
	config    *Config
}

// NewSyncer creates a new syncer.
func NewSyncer(source Source, blobstore storage.Blobstore, bucket string, config *Config) *Syncer {
	return &Syncer{
		source:    source,
		blobstore: blobstore,
		bucket:    bucket,
		config:    config,
	}
}

// Sync compares the archive listing with the objects stored under the
// configured prefix and uploads every file that is absent or different.
// Nothing is ever deleted.
//
// Failing to list either side is fatal and returns an error. A failure to
// transfer an individual file is recorded in the manifest and does not stop
// the remaining transfers.
func (s *Syncer) Sync(ctx context.Context) (*Manifest, error) {
	logger := logging.FromContext(ctx).Named("mirror.Sync").
		With("bucket", s.bucket).
		With("prefix", s.config.Prefix)

	remote, err := s.source.ListFiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list remote files: %w", err)
	}

	stored, err := s.blobstore.ListObjects(ctx, s.bucket, storage.DirPrefix(s.config.Prefix))
	if err != nil {
		return nil, fmt.Errorf("failed to list stored objects: %w", err)
	}

	statuses := computeActions(s.config.Prefix, remote, stored)
	logger.Debugw("computed actions", "remote", len(remote), "stored", len(stored))

	limit := s.config.Concurrency
	if limit < 1 {
		limit = 1
	}

	var g errgroup.Group
	g.SetLimit(limit)

	var mu sync.Mutex
	var merr *multierror.Error

	for _, st := range statuses {
		st := st
		if !st.needsUpload() {
			continue
		}

		g.Go(func() error {
			n, err := s.transfer(ctx, st)
			if err != nil {
				logger.Errorw("failed to transfer file", "file", st.Remote.Name, "error", err)
				stats.Record(ctx, ingest.FilesFailed.M(1))

				mu.Lock()
				st.Failed = true
				merr = multierror.Append(merr, err)
				mu.Unlock()
				return nil
			}

			logger.Infow("uploaded file", "file", st.Remote.Name, "reason", st.Decision.Reason, "bytes", n)
			stats.Record(ctx, ingest.FilesUploaded.M(1), ingest.BytesUploaded.M(int64(n)))

			mu.Lock()
			st.Uploaded = true
			mu.Unlock()
			return nil
		})
	}

	// Workers never return an error.
	_ = g.Wait()

	manifest := buildManifest(statuses)
	if merr != nil {
		for _, e := range merr.Errors {
			manifest.Errors = append(manifest.Errors, e.Error())
		}
	}

	if skipped := len(manifest.Skipped); skipped > 0 {
		stats.Record(ctx, ingest.FilesSkipped.M(int64(skipped)))
	}

	logger.Infow("sync finished",
		"total", manifest.TotalFiles,
		"uploaded", len(manifest.Uploaded),
		"skipped", len(manifest.Skipped),
		"failed", len(manifest.Failed))
	return manifest, nil
}

// transfer downloads a single file and writes it to the blobstore.
func (s *Syncer) transfer(ctx context.Context, st *FileStatus) (int, error) {
	f := st.Remote

	b, err := s.source.Download(ctx, f)
	if err != nil {
		return 0, fmt.Errorf("failed to download %s: %w", f.Name, err)
	}

	metadata := map[string]string{
		"source-url": f.URL,
	}
	if !f.LastModified.IsZero() {
		metadata["source-last-modified"] = f.LastModified.UTC().Format(time.RFC3339)
	}

	if err := func() error {
		ctx, cancel := context.WithTimeout(ctx, s.config.UploadTimeout)
		defer cancel()
		return s.blobstore.CreateObject(ctx, s.bucket, st.Key, b, false, "", metadata)
	}(); err != nil {
		return 0, fmt.Errorf("failed to write %s to blobstore: %w", f.Name, err)
	}
	return len(b), nil
}

func buildManifest(statuses []*FileStatus) *Manifest {
	m := &Manifest{
		TotalFiles: len(statuses),
		Uploaded:   make([]string, 0, len(statuses)),
		Skipped:    make([]string, 0, len(statuses)),
	}

	for _, st := range statuses {
		switch {
		case st.Failed:
			m.Failed = append(m.Failed, st.Remote.Name)
		case st.Uploaded:
			m.Uploaded = append(m.Uploaded, st.Remote.Name)
		default:
			m.Skipped = append(m.Skipped, st.Remote.Name)
		}
	}

	m.Success = len(m.Failed) == 0
	return m
}
