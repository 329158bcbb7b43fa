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
	"fmt"
	"net/http"

	"contrib.go.opencensus.io/exporter/prometheus"
)

var (
	_ Exporter     = (*prometheusExporter)(nil)
	_ http.Handler = (*prometheusExporter)(nil)
)

// prometheusExporter serves the registered views at scrape time.
type prometheusExporter struct {
	exporter *prometheus.Exporter
}

// NewPrometheus creates an exporter that serves metrics in the prometheus
// text format.
func NewPrometheus(_ context.Context, config *PrometheusConfig) (Exporter, error) {
	pe, err := prometheus.NewExporter(prometheus.Options{
		Namespace: config.Namespace,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}
	return &prometheusExporter{pe}, nil
}

// StartExporter registers the collected views.
func (e *prometheusExporter) StartExporter(_ context.Context) error {
	if err := registerViews(); err != nil {
		return fmt.Errorf("failed to start prometheus exporter: %w", err)
	}
	return nil
}

// ServeHTTP serves the metrics page.
func (e *prometheusExporter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	e.exporter.ServeHTTP(w, r)
}

// Close is a no-op; the exporter has nothing to flush.
func (e *prometheusExporter) Close() error {
	return nil
}
