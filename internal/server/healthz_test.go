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
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/laborstats/pipeline/internal/project"
	"github.com/laborstats/pipeline/internal/storage"
)

type unreachableStore struct {
	storage.Blobstore
}

func (unreachableStore) ListObjects(_ context.Context, _, _ string) ([]*storage.ObjectAttrs, error) {
	return nil, errors.New("dial tcp: connection refused")
}

func TestHandleHealthz(t *testing.T) {
	t.Parallel()

	ctx := project.TestContext(t)

	memory, err := storage.NewMemory(ctx)
	if err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		name string
		bs   storage.Blobstore
		code int
	}{
		{
			name: "healthy",
			bs:   memory,
			code: http.StatusOK,
		},
		{
			name: "unreachable",
			bs:   unreachableStore{},
			code: http.StatusInternalServerError,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			h := HandleHealthz(tc.bs, "bucket")

			// The second request reuses the rate-limited probe result.
			for i := 0; i < 2; i++ {
				r := httptest.NewRequest(http.MethodGet, "/health", nil)
				r = r.Clone(ctx)
				w := httptest.NewRecorder()

				h.ServeHTTP(w, r)

				if got, want := w.Code, tc.code; got != want {
					t.Errorf("request %d: expected %d to be %d", i, got, want)
				}
			}
		})
	}
}
