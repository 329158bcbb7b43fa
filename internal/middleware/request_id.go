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

// Package middleware defines shared middleware for the job servers.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type contextKey string

// contextKeyRequestID is the unique key in the context where the request ID is
// stored.
const contextKeyRequestID = contextKey("request_id")

// HeaderRequestID is the header a trigger may set to choose the request ID of
// an invocation. The ID in use is echoed back on the response.
const HeaderRequestID = "X-Request-ID"

// maxRequestIDLength bounds request IDs accepted from the header.
const maxRequestIDLength = 128

// PopulateRequestID sets the request ID for the invocation. An ID already in
// the context wins, then a usable X-Request-ID header, then a random UUID.
func PopulateRequestID() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			id := RequestIDFromContext(ctx)
			if id == "" {
				id = headerRequestID(r)
				if id == "" {
					u, err := uuid.NewRandom()
					if err != nil {
						http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
						return
					}
					id = u.String()
				}

				ctx = WithRequestID(ctx, id)
				r = r.Clone(ctx)
			}

			w.Header().Set(HeaderRequestID, id)
			next.ServeHTTP(w, r)
		})
	}
}

// headerRequestID returns the trimmed header value, or "" when it is too long
// or carries anything but printable ASCII.
func headerRequestID(r *http.Request) string {
	v := strings.TrimSpace(r.Header.Get(HeaderRequestID))
	if len(v) > maxRequestIDLength {
		return ""
	}
	for i := 0; i < len(v); i++ {
		if v[i] < 0x21 || v[i] > 0x7e {
			return ""
		}
	}
	return v
}

// RequestIDFromContext pulls the request ID from the context, if one was set.
// If one was not set, it returns the empty string.
func RequestIDFromContext(ctx context.Context) string {
	v := ctx.Value(contextKeyRequestID)
	if v == nil {
		return ""
	}

	t, ok := v.(string)
	if !ok {
		return ""
	}
	return t
}

// WithRequestID sets the request ID on the provided context, returning a new
// context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKeyRequestID, id)
}
