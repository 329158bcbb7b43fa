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
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/laborstats/pipeline/internal/dataset"
	"github.com/laborstats/pipeline/internal/maintenance"
	"github.com/laborstats/pipeline/internal/setup"
	"github.com/laborstats/pipeline/internal/storage"
	"github.com/laborstats/pipeline/pkg/observability"
)

// Compile-time check to assert this config matches requirements.
var (
	_ setup.BlobstoreConfigProvider             = (*Config)(nil)
	_ setup.ObservabilityExporterConfigProvider = (*Config)(nil)
	_ setup.Validator                           = (*Config)(nil)
	_ maintenance.Config                        = (*Config)(nil)
)

// Config represents the configuration and associated environment variables for
// the report job.
type Config struct {
	Storage       storage.Config
	Observability observability.Config

	Port        string        `env:"PORT, default=8080"`
	Bucket      string        `env:"BUCKET"`
	MaxRuntime  time.Duration `env:"MAX_RUNTIME, default=5m"`
	Maintenance bool          `env:"MAINTENANCE_MODE, default=false"`

	BLSDataKey       string `env:"BLS_DATA_KEY, default=raw/pr/pr.data.0.Current"`
	PopulationPrefix string `env:"POPULATION_PREFIX, default=raw/datausa/population/"`
	PopulationMode   string `env:"POPULATION_MODE, default=latest"`

	ReportKey     string        `env:"REPORT_KEY, default=analytics/report.json"`
	ParquetKey    string        `env:"REPORT_PARQUET_KEY"`
	UploadTimeout time.Duration `env:"REPORT_UPLOAD_TIMEOUT, default=1m"`

	// StatsFromYear and StatsToYear bound the population statistics. Zero
	// leaves that side open.
	StatsFromYear int `env:"POPULATION_STATS_FROM_YEAR, default=0"`
	StatsToYear   int `env:"POPULATION_STATS_TO_YEAR, default=0"`

	FocusSeries string `env:"REPORT_FOCUS_SERIES, default=PRS30006032"`
	FocusPeriod string `env:"REPORT_FOCUS_PERIOD, default=Q01"`
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

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	var merr *multierror.Error

	if c.Bucket == "" {
		merr = multierror.Append(merr, fmt.Errorf("BUCKET is required"))
	}
	if c.ReportKey == "" {
		merr = multierror.Append(merr, fmt.Errorf("REPORT_KEY is required"))
	}
	if _, err := dataset.ParsePopulationMode(c.PopulationMode); err != nil {
		merr = multierror.Append(merr, fmt.Errorf("POPULATION_MODE: %w", err))
	}
	if c.StatsFromYear != 0 && c.StatsToYear != 0 && c.StatsFromYear > c.StatsToYear {
		merr = multierror.Append(merr, fmt.Errorf("POPULATION_STATS_FROM_YEAR (%d) is after POPULATION_STATS_TO_YEAR (%d)",
			c.StatsFromYear, c.StatsToYear))
	}
	if c.MaxRuntime <= 0 {
		merr = multierror.Append(merr, fmt.Errorf("MAX_RUNTIME must be positive, got %s", c.MaxRuntime))
	}
	return merr.ErrorOrNil()
}
