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

// Package serverenv defines common parameters for the job environment.
package serverenv

import (
	"context"
	"fmt"

	"github.com/laborstats/pipeline/internal/storage"
	"github.com/laborstats/pipeline/pkg/observability"
)

// ServerEnv represents latent environment configuration for the jobs in this
// application.
type ServerEnv struct {
	blobstore             storage.Blobstore
	observabilityExporter observability.Exporter
}

// Option defines function types to modify the ServerEnv on creation.
type Option func(*ServerEnv) *ServerEnv

// New creates a new ServerEnv with the requested options.
func New(ctx context.Context, opts ...Option) *ServerEnv {
	env := &ServerEnv{}

	for _, f := range opts {
		env = f(env)
	}

	return env
}

// WithBlobStorage creates an Option to install a specific Blobstore.
func WithBlobStorage(sto storage.Blobstore) Option {
	return func(s *ServerEnv) *ServerEnv {
		s.blobstore = sto
		return s
	}
}

// WithObservabilityExporter creates an Option to install a specific
// observability exporter.
func WithObservabilityExporter(oe observability.Exporter) Option {
	return func(s *ServerEnv) *ServerEnv {
		s.observabilityExporter = oe
		return s
	}
}

// Blobstore returns the installed blobstore.
func (s *ServerEnv) Blobstore() storage.Blobstore {
	return s.blobstore
}

// ObservabilityExporter returns the installed observability exporter.
func (s *ServerEnv) ObservabilityExporter() observability.Exporter {
	return s.observabilityExporter
}

// Close shuts down the server env, closing observability connections.
func (s *ServerEnv) Close(ctx context.Context) error {
	if s == nil {
		return nil
	}

	if s.observabilityExporter != nil {
		if err := s.observabilityExporter.Close(); err != nil {
			return fmt.Errorf("failed to close observability exporter: %w", err)
		}
	}

	return nil
}
