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
	"context"
	"fmt"
	"net/http"

	"github.com/laborstats/pipeline/pkg/logging"
	"github.com/robfig/cron/v3"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

// runWithRetry runs the job and retries while both parts fail. Only scheduled
// runs retry; a partial result is left for the next scheduled run.
func (j *Job) runWithRetry(ctx context.Context) (*Result, error) {
	logger := logging.FromContext(ctx).Named("syncjob.runWithRetry")

	b, err := retry.NewExponential(j.config.RetryBackoff)
	if err != nil {
		return nil, fmt.Errorf("failed to configure backoff: %w", err)
	}
	b = retry.WithMaxRetries(j.config.RetryAttempts, b)

	var result *Result
	attempt := 0
	if err := retry.Do(ctx, b, func(ctx context.Context) error {
		attempt++
		result = j.Run(ctx)
		if result.StatusCode == http.StatusInternalServerError {
			logger.Warnw("sync attempt failed", "attempt", attempt, "request_id", result.RequestID)
			return retry.RetryableError(fmt.Errorf("sync attempt %d failed", attempt))
		}
		return nil
	}); err != nil {
		return result, err
	}
	return result, nil
}

// Schedule runs the job on the given cron schedule until ctx is done.
func (j *Job) Schedule(ctx context.Context, spec string) error {
	logger := logging.FromContext(ctx).Named("syncjob.Schedule")

	c := cron.New(
		cron.WithLogger(&cronLogger{logger: logger}),
		cron.WithChain(
			cron.Recover(&cronLogger{logger: logger}),
			cron.SkipIfStillRunning(&cronLogger{logger: logger}),
		),
	)

	if _, err := c.AddFunc(spec, func() {
		if j.config.MaintenanceMode() {
			logger.Infow("skipped scheduled sync in maintenance mode")
			return
		}

		result, err := j.runWithRetry(ctx)
		if err != nil {
			logger.Errorw("scheduled sync failed", "error", err)
			return
		}
		logger.Infow("scheduled sync complete", "status", result.Status, "request_id", result.RequestID)
	}); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}

	c.Start()
	logger.Infow("sync scheduled", "schedule", spec)

	<-ctx.Done()

	// Wait for a running invocation to observe the cancellation.
	<-c.Stop().Done()
	return nil
}

// cronLogger adapts a zap logger to cron.Logger.
type cronLogger struct {
	logger *zap.SugaredLogger
}

func (l *cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debugw(msg, keysAndValues...)
}

func (l *cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Errorw(msg, append(keysAndValues, "error", err)...)
}
