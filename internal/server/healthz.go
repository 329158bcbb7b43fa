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

package server

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/laborstats/pipeline/internal/storage"
	"github.com/laborstats/pipeline/pkg/logging"

	"golang.org/x/time/rate"
)

// HandleHealthz returns a handler that reports whether the bucket can be
// listed. The store is probed at most once per second since this is an
// unauthenticated endpoint; in between, the last probe result is reused.
func HandleHealthz(bs storage.Blobstore, bucket string) http.Handler {
	limiter := rate.NewLimiter(rate.Every(1*time.Second), 1)

	var mu sync.Mutex
	var lastErr error

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		logger := logging.FromContext(ctx).Named("server.HandleHealthz")

		mu.Lock()
		if bs != nil && limiter.Allow() {
			_, lastErr = bs.ListObjects(ctx, bucket, healthzPrefix)
		}
		err := lastErr
		mu.Unlock()

		if err != nil {
			logger.Errorw("failed to list bucket", "bucket", bucket, "error", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError),
				http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status": "ok"}`)
	})
}

// healthzPrefix is a prefix that matches no pipeline object, so the probe
// stays cheap on large buckets.
const healthzPrefix = ".healthz/"
