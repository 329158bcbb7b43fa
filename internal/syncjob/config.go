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

package syncjob

import (
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/laborstats/pipeline/internal/bls"
	"github.com/laborstats/pipeline/internal/datausa"
	"github.com/laborstats/pipeline/internal/mirror"
	"github.com/laborstats/pipeline/internal/maintenance"
	"github.com/laborstats/pipeline/internal/setup"
	"github.com/laborstats/pipeline/internal/snapshot"
	"github.com/laborstats/pipeline/internal/storage"
	"github.com/laborstats/pipeline/pkg/observability"
	"github.com/robfig/cron/v3"
)

// Compile-time check to assert this config matches requirements.
var (
	_ setup.BlobstoreConfigProvider             = (*Config)(nil)
	_ setup.ObservabilityExporterConfigProvider = (*Config)(nil)
	_ setup.Validator                           = (*Config)(nil)
	_ maintenance.Config                        = (*Config)(nil)
)

// Config represents the configuration and associated environment variables for
// the sync job.
type Config struct {
	Storage       storage.Config
	Observability observability.Config

	BLS      bls.Config
	DataUSA  datausa.Config
	Mirror   mirror.Config
	Snapshot snapshot.Config

	Port        string        `env:"PORT, default=8080"`
	Bucket      string        `env:"BUCKET"`
	UserAgent   string        `env:"SYNC_USER_AGENT"`
	MaxRuntime  time.Duration `env:"MAX_RUNTIME, default=15m"`
	Maintenance bool          `env:"MAINTENANCE_MODE, default=false"`

	// Schedule is a cron expression. When set, the binary stays up and runs
	// the job on that schedule instead of once.
	Schedule      string        `env:"SYNC_SCHEDULE"`
	RetryAttempts uint64        `env:"SYNC_RETRY_ATTEMPTS, default=2"`
	RetryBackoff  time.Duration `env:"SYNC_RETRY_BACKOFF, default=30s"`
}

// BlobstoreConfig returns the blobstore configuration.
func (c *Config) BlobstoreConfig() *storage.Config {
	return &c.Storage
}

// MaintenanceMode reports whether job triggers are refused.
func (c *Config) MaintenanceMode() bool {
	return c.Maintenance
}

// ObservabilityExporterConfig returns the observability configuration.
func (c *Config) ObservabilityExporterConfig() *observability.Config {
	return &c.Observability
}

// Validate checks the values that have no usable default.
func (c *Config) Validate() error {
	var merr *multierror.Error

	if c.Bucket == "" {
		merr = multierror.Append(merr, fmt.Errorf("BUCKET is required"))
	}
	if c.UserAgent == "" {
		merr = multierror.Append(merr, fmt.Errorf("SYNC_USER_AGENT is required"))
	}
	if c.Mirror.Concurrency < 1 {
		merr = multierror.Append(merr, fmt.Errorf("SYNC_CONCURRENCY must be at least 1, got %d", c.Mirror.Concurrency))
	}
	if c.MaxRuntime <= 0 {
		merr = multierror.Append(merr, fmt.Errorf("MAX_RUNTIME must be positive, got %s", c.MaxRuntime))
	}
	if _, err := c.BLS.ListingLocation(); err != nil {
		merr = multierror.Append(merr, err)
	}
	if c.RetryBackoff <= 0 {
		merr = multierror.Append(merr, fmt.Errorf("SYNC_RETRY_BACKOFF must be positive, got %s", c.RetryBackoff))
	}
	if c.Schedule != "" {
		if _, err := cron.ParseStandard(c.Schedule); err != nil {
			merr = multierror.Append(merr, fmt.Errorf("SYNC_SCHEDULE is invalid: %w", err))
		}
	}
	return merr.ErrorOrNil()
}
