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

// This package is the report job. With -serve it listens for storage change
// notifications and regenerates the report whenever a population snapshot
// lands. Otherwise it generates the report once for the snapshot named by
// -key.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/laborstats/pipeline/internal/buildinfo"
	"github.com/laborstats/pipeline/internal/interrupt"
	"github.com/laborstats/pipeline/internal/report"
	"github.com/laborstats/pipeline/internal/server"
	"github.com/laborstats/pipeline/internal/setup"
	"github.com/laborstats/pipeline/pkg/logging"
	"github.com/laborstats/pipeline/pkg/render"
)

var (
	flagServe   = flag.Bool("serve", false, "listen for storage notifications instead of running once")
	flagKey     = flag.String("key", "", "snapshot key that triggered this run, recorded in the report")
	flagEnvFile = flag.String("env-file", ".env", "optional dotenv file to load before reading the environment")
)

func main() {
	flag.Parse()

	ctx, done := interrupt.Context()
	defer done()

	logger := logging.NewLoggerFromEnv().
		With("build_id", buildinfo.Report.ID()).
		With("build_tag", buildinfo.Report.Tag())
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

	var config report.Config
	env, err := setup.Setup(ctx, &config)
	if err != nil {
		return fmt.Errorf("setup.Setup: %w", err)
	}
	defer env.Close(ctx)

	if *flagServe {
		reportServer, err := report.NewServer(&config, env)
		if err != nil {
			return fmt.Errorf("report.NewServer: %w", err)
		}

		srv, err := server.New(config.Port)
		if err != nil {
			return fmt.Errorf("server.New: %w", err)
		}
		logger.Infof("listening on :%s", config.Port)

		return srv.ServeHTTPHandler(ctx, reportServer.Routes(ctx))
	}

	generator, err := report.NewGenerator(&config, env.Blobstore())
	if err != nil {
		return fmt.Errorf("report.NewGenerator: %w", err)
	}

	result := generator.Generate(ctx, *flagKey)

	b, err := render.NewRenderer().MarshalJSON(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	if _, err := os.Stdout.Write(b); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}

	if result.Status != report.ResultSuccess {
		return fmt.Errorf("report generation failed: %s", result.Error)
	}
	return nil
}
