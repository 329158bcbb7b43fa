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

package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/laborstats/pipeline/internal/metrics"
	"github.com/laborstats/pipeline/pkg/observability"

	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
)

const metricPrefix = metrics.MetricRoot + "storage"

var (
	mOperations = stats.Int64(metricPrefix+"/operations", "blobstore operations", stats.UnitDimensionless)
	mLatency    = stats.Float64(metricPrefix+"/latency", "blobstore operation latency", stats.UnitMilliseconds)

	mAzureRefreshFailed  = stats.Int64(metricPrefix+"/azure/refresh_failed", "refresh token failed", stats.UnitDimensionless)
	mAzureRefreshExpired = stats.Int64(metricPrefix+"/azure/refresh_expired", "refresh token expired", stats.UnitDimensionless)

	backendTagKey   = tag.MustNewKey("backend")
	operationTagKey = tag.MustNewKey("operation")
)

func init() {
	observability.CollectViews(
		&view.View{
			Name:        metricPrefix + "/operations",
			Description: "Blobstore operations by backend, operation and result",
			TagKeys:     []tag.Key{backendTagKey, operationTagKey, observability.ResultTagKey},
			Measure:     mOperations,
			Aggregation: view.Count(),
		},
		&view.View{
			Name:        metricPrefix + "/latency",
			Description: "Distribution of blobstore operation latency in milliseconds",
			TagKeys:     []tag.Key{backendTagKey, operationTagKey},
			Measure:     mLatency,
			Aggregation: view.Distribution(5, 25, 100, 250, 1000, 5000, 30000),
		},
		&view.View{
			Name:        metricPrefix + "/azure/refresh_failed",
			Description: "Number of failed refreshes",
			Measure:     mAzureRefreshFailed,
			Aggregation: view.Count(),
		},
		&view.View{
			Name:        metricPrefix + "/azure/refresh_expired",
			Description: "Number of refreshes that returned an already expired token",
			Measure:     mAzureRefreshExpired,
			Aggregation: view.Count(),
		},
	)
}

// Compile-time check to verify implements interface.
var (
	_ Blobstore = (*instrumented)(nil)
	_ Deleter   = (*instrumented)(nil)
)

// instrumented records the count and latency of every call to the wrapped
// blobstore, tagged with the backend type.
type instrumented struct {
	next    Blobstore
	backend BlobstoreType
}

func instrument(bs Blobstore, backend BlobstoreType) Blobstore {
	return &instrumented{next: bs, backend: backend}
}

func (i *instrumented) record(ctx context.Context, op string, start time.Time, err error) {
	result := observability.ResultOK
	if err != nil {
		result = observability.ResultNotOK
	}

	mutators := []tag.Mutator{
		tag.Upsert(backendTagKey, string(i.backend)),
		tag.Upsert(operationTagKey, op),
	}
	latency := float64(time.Since(start)) / float64(time.Millisecond)
	_ = stats.RecordWithTags(ctx, mutators, mLatency.M(latency))
	_ = stats.RecordWithTags(ctx, append(mutators, result), mOperations.M(1))
}

// CreateObject creates or overwrites an object in the wrapped blobstore.
func (i *instrumented) CreateObject(ctx context.Context, bucket, key string, contents []byte, cacheable bool, contentType string, metadata map[string]string) (err error) {
	defer func(start time.Time) { i.record(ctx, "create", start, err) }(time.Now())
	return i.next.CreateObject(ctx, bucket, key, contents, cacheable, contentType, metadata)
}

// GetObject fetches an object from the wrapped blobstore. A missing object is
// recorded as a failure.
func (i *instrumented) GetObject(ctx context.Context, bucket, key string) (b []byte, err error) {
	defer func(start time.Time) { i.record(ctx, "get", start, err) }(time.Now())
	return i.next.GetObject(ctx, bucket, key)
}

// ListObjects lists objects in the wrapped blobstore.
func (i *instrumented) ListObjects(ctx context.Context, bucket, prefix string) (objs []*ObjectAttrs, err error) {
	defer func(start time.Time) { i.record(ctx, "list", start, err) }(time.Now())
	return i.next.ListObjects(ctx, bucket, prefix)
}

// DeleteObject deletes an object when the wrapped blobstore supports it.
func (i *instrumented) DeleteObject(ctx context.Context, bucket, key string) (err error) {
	defer func(start time.Time) { i.record(ctx, "delete", start, err) }(time.Now())

	d, ok := i.next.(Deleter)
	if !ok {
		return fmt.Errorf("blobstore %T does not support deletion", i.next)
	}
	return d.DeleteObject(ctx, bucket, key)
}
