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

// This package is the ingestion job. It mirrors the labor statistics archive
// into the blobstore and saves a population snapshot. By default it runs once
// and exits; -serve exposes it over HTTP and SYNC_SCHEDULE runs it on a cron
// schedule.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/laborstats/pipeline/internal/buildinfo"
	"github.com/laborstats/pipeline/internal/interrupt"
	"github.com/laborstats/pipeline/internal/server"
	"github.com/laborstats/pipeline/internal/setup"
	"github.com/laborstats/pipeline/internal/syncjob"
	"github.com/laborstats/pipeline/pkg/logging"
)

var (
	flagServe   = flag.Bool("serve", false, "serve the job over HTTP instead of running once")
	flagEnvFile = flag.String("env-file", ".env", "optional dotenv file to load before reading the environment")
)

func main() {
	flag.Parse()

	ctx, done := interrupt.Context()
	defer done()

	logger := logging.NewLoggerFromEnv().
		With("build_id", buildinfo.Sync.ID()).
		With("build_tag", buildinfo.Sync.Tag())
	ctx = logging.WithLogger(ctx, logger)

	err := realMain(ctx)
	done()

	if err != nil {
		logger.Fatal(err)
	}
	logger.Info("successful shutdown")
}

func realMain(ctx context.Context) error {
	logger := logging.FromContext(ctx)

	if err := setup.LoadDotEnv(ctx, *flagEnvFile); err != nil {
		return fmt.Errorf("setup.LoadDotEnv: %w", err)
	}

	var config syncjob.Config
	env, err := setup.Setup(ctx, &config)
	if err != nil {
		return fmt.Errorf("setup.Setup: %w", err)
	}
	defer env.Close(ctx)

	job, err := syncjob.New(&config, env)
	if err != nil {
		return fmt.Errorf("syncjob.New: %w", err)
	}

	switch {
	case *flagServe:
		srv, err := server.New(config.Port)
		if err != nil {
			return fmt.Errorf("server.New: %w", err)
		}
		logger.Infof("listening on :%s", config.Port)

		return srv.ServeHTTPHandler(ctx, syncjob.NewServer(job).Routes(ctx))
	case config.Schedule != "":
		return job.Schedule(ctx, config.Schedule)
	}

	if err := job.RunOnce(ctx, os.Stdout); err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}
	return nil
}
