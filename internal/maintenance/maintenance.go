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

// Package maintenance pauses job triggers while an operator works on the
// bucket.
package maintenance

import (
	"net/http"
	"strconv"
	"time"

	"github.com/laborstats/pipeline/pkg/logging"
	"github.com/laborstats/pipeline/pkg/render"
)

// Config is an interface that determines if the implementer can supply
// maintenance mode settings.
type Config interface {
	MaintenanceMode() bool
}

// retryAfter is advertised to schedulers that honor Retry-After.
const retryAfter = 5 * time.Minute

// Responder answers triggers with 503 while maintenance mode is on.
type Responder struct {
	inMaintenance bool
	h             *render.Renderer
}

// New creates a new maintenance mode responder.
func New(c Config) *Responder {
	return &Responder{
		inMaintenance: c.MaintenanceMode(),
		h:             render.NewRenderer(),
	}
}

// Enabled reports whether triggers are being refused.
func (r *Responder) Enabled() bool {
	return r.inMaintenance
}

// Handle returns next unchanged, or a handler that refuses every request when
// maintenance mode is on.
func (r *Responder) Handle(next http.Handler) http.Handler {
	if !r.inMaintenance {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		logger := logging.FromContext(req.Context()).Named("maintenance")
		logger.Infow("refused trigger in maintenance mode", "path", req.URL.Path)

		w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
		r.h.RenderJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "maintenance",
		})
	})
}
