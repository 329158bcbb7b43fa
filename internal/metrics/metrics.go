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

// Package metrics defines the opencensus measures recorded by the pipeline.
// Views are registered with observability.CollectViews from each feature
// subpackage and exported when the observability exporter starts.
package metrics

// MetricRoot is the prefix for every metric the pipeline records.
const MetricRoot = "laborstats/pipeline/"
