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

// Package project defines helpers shared by every package in the pipeline.
package project

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/laborstats/pipeline/pkg/logging"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
)

// TestContext returns a context with test values pre-populated.
func TestContext(tb testing.TB) context.Context {
	ctx := context.Background()
	ctx = logging.WithLogger(ctx, TestLogger(tb))
	return ctx
}

// TestLogger returns a logger configured for test. It logs warnings and above
// unless TEST_LOG_LEVEL names another level. See the following link for more
// information:
//
//	https://pkg.go.dev/go.uber.org/zap/zaptest
func TestLogger(tb testing.TB) *zap.SugaredLogger {
	return zaptest.NewLogger(tb, zaptest.Level(testLogLevel(os.Getenv("TEST_LOG_LEVEL")))).Sugar()
}

func testLogLevel(s string) zapcore.Level {
	level := zapcore.WarnLevel
	if s == "" {
		return level
	}
	if err := level.UnmarshalText([]byte(strings.ToLower(TrimSpace(s)))); err != nil {
		return zapcore.WarnLevel
	}
	return level
}
