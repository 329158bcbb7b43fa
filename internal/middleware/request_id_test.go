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

package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/laborstats/pipeline/internal/middleware"
	"github.com/laborstats/pipeline/internal/project"
)

func TestPopulateRequestID(t *testing.T) {
	t.Parallel()

	ctx := project.TestContext(t)

	cases := []struct {
		name     string
		existing string
		header   string
		want     string
	}{
		{
			name: "generated",
		},
		{
			name:     "existing",
			existing: "abc-123",
			header:   "ignored",
			want:     "abc-123",
		},
		{
			name:   "header",
			header: " scheduler-run-7 ",
			want:   "scheduler-run-7",
		},
		{
			name:   "header_not_printable",
			header: "bad\x01id",
		},
		{
			name:   "header_too_long",
			header: strings.Repeat("a", 129),
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			reqCtx := ctx
			if tc.existing != "" {
				reqCtx = middleware.WithRequestID(reqCtx, tc.existing)
			}

			r, err := http.NewRequestWithContext(reqCtx, http.MethodGet, "/", nil)
			if err != nil {
				t.Fatal(err)
			}
			if tc.header != "" {
				r.Header.Set(middleware.HeaderRequestID, tc.header)
			}

			var got string
			h := middleware.PopulateRequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = middleware.RequestIDFromContext(r.Context())
			}))
			w := httptest.NewRecorder()
			h.ServeHTTP(w, r)

			if got == "" {
				t.Fatal("expected request id to be populated")
			}
			if tc.want != "" && got != tc.want {
				t.Errorf("expected %q to be %q", got, tc.want)
			}
			if tc.want == "" && got == strings.TrimSpace(tc.header) {
				t.Errorf("expected header value %q to be rejected", tc.header)
			}
			if echoed := w.Header().Get(middleware.HeaderRequestID); echoed != got {
				t.Errorf("expected response header %q to be %q", echoed, got)
			}
		})
	}
}
