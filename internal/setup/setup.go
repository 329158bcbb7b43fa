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

// Package setup provides common logic for configuring the various jobs.
package setup

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/laborstats/pipeline/internal/serverenv"
	"github.com/laborstats/pipeline/internal/storage"
	"github.com/laborstats/pipeline/pkg/logging"
	"github.com/laborstats/pipeline/pkg/observability"
	"github.com/sethvargo/go-envconfig"
)

// BlobstoreConfigProvider provides the information about current storage
// configuration.
type BlobstoreConfigProvider interface {
	BlobstoreConfig() *storage.Config
}

// ObservabilityExporterConfigProvider signals that the config knows how to
// configure an observability exporter.
type ObservabilityExporterConfigProvider interface {
	ObservabilityExporterConfig() *observability.Config
}

// Validator is implemented by configurations that check their own values
// after processing.
type Validator interface {
	Validate() error
}

// DotEnvFiles are loaded, in order, before the environment is processed.
// Missing files are ignored and variables already set in the environment win.
var DotEnvFiles = []string{".env"}

// Setup runs common initialization code for all jobs. See SetupWith.
func Setup(ctx context.Context, config any) (*serverenv.ServerEnv, error) {
	if err := LoadDotEnv(ctx, DotEnvFiles...); err != nil {
		return nil, err
	}
	return SetupWith(ctx, config, envconfig.OsLookuper())
}

// SetupWith processes the environment into config using the given lookuper and
// installs the providers the config asks for. The caller is responsible for
// closing the returned environment.
func SetupWith(ctx context.Context, config any, l envconfig.Lookuper) (*serverenv.ServerEnv, error) {
	logger := logging.FromContext(ctx).Named("setup.SetupWith")

	if err := envconfig.ProcessWith(ctx, config, l); err != nil {
		return nil, fmt.Errorf("error loading environment variables: %w", err)
	}
	logger.Debugw("provided", "config", config)

	if v, ok := config.(Validator); ok {
		if err := v.Validate(); err != nil {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
	}

	var serverEnvOpts []serverenv.Option

	// Configure the observability exporter first so later steps are recorded.
	if provider, ok := config.(ObservabilityExporterConfigProvider); ok {
		logger.Debugw("configuring observability exporter")

		oeConfig := provider.ObservabilityExporterConfig()
		oe, err := observability.NewFromEnv(oeConfig)
		if err != nil {
			return nil, fmt.Errorf("unable to create ObservabilityExporter provider: %w", err)
		}
		if err := oe.StartExporter(ctx); err != nil {
			return nil, fmt.Errorf("error initializing observability exporter: %w", err)
		}
		serverEnvOpts = append(serverEnvOpts, serverenv.WithObservabilityExporter(oe))
		logger.Infow("observability", "exporter", oeConfig.ExporterType)
	}

	if provider, ok := config.(BlobstoreConfigProvider); ok {
		logger.Debugw("configuring blobstore")

		bsConfig := provider.BlobstoreConfig()
		blobStore, err := storage.BlobstoreFor(ctx, bsConfig)
		if err != nil {
			return nil, fmt.Errorf("unable to connect to storage system: %w", err)
		}
		serverEnvOpts = append(serverEnvOpts, serverenv.WithBlobStorage(blobStore))
		logger.Infow("blobstore", "type", bsConfig.Type)
	}

	return serverenv.New(ctx, serverEnvOpts...), nil
}

// LoadDotEnv loads variables from the given dotenv files into the process
// environment. Files that do not exist are skipped.
func LoadDotEnv(ctx context.Context, files ...string) error {
	logger := logging.FromContext(ctx).Named("setup.LoadDotEnv")

	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
		logger.Debugw("loaded environment file", "file", f)
	}
	return nil
}
