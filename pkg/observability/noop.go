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

package observability

import (
	"context"

	"github.com/laborstats/pipeline/pkg/logging"
	"go.uber.org/zap"
)

// Compile-time check to verify implements interface.
var _ Exporter = (*noopExporter)(nil)

// noopExporter is an observability exporter that does nothing. Measures are
// still recorded by the jobs but no view is registered, so nothing is kept.
type noopExporter struct {
	logger *zap.SugaredLogger
}

// NewNoop returns an exporter that records nothing.
func NewNoop(ctx context.Context) (Exporter, error) {
	return &noopExporter{
		logger: logging.FromContext(ctx).Named("observability.noop"),
	}, nil
}

func (g *noopExporter) StartExporter(_ context.Context) error {
	g.logger.Infow("metrics are not exported",
		"views", len(AllViews()),
		"hint", "set OBSERVABILITY_EXPORTER to PROMETHEUS or OCAGENT")
	return nil
}

func (g *noopExporter) Close() error {
	return nil
}
