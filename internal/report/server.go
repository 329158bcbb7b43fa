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

package report

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/laborstats/pipeline/internal/maintenance"
	"github.com/laborstats/pipeline/internal/middleware"
	"github.com/laborstats/pipeline/internal/server"
	"github.com/laborstats/pipeline/internal/serverenv"
	"github.com/laborstats/pipeline/pkg/logging"
	"github.com/laborstats/pipeline/pkg/observability"
	"github.com/laborstats/pipeline/pkg/render"
)

// maxNotificationBytes caps the size of a notification body.
const maxNotificationBytes = 1 << 20

// Server runs the generator for storage change notifications.
type Server struct {
	config    *Config
	env       *serverenv.ServerEnv
	generator *Generator
	h         *render.Renderer
}

// NewServer creates a new server.
func NewServer(cfg *Config, env *serverenv.ServerEnv) (*Server, error) {
	generator, err := NewGenerator(cfg, env.Blobstore())
	if err != nil {
		return nil, fmt.Errorf("failed to create generator: %w", err)
	}

	return &Server{
		config:    cfg,
		env:       env,
		generator: generator,
		h:         render.NewRenderer(),
	}, nil
}

// Routes returns the router for this server.
func (s *Server) Routes(ctx context.Context) *mux.Router {
	logger := logging.FromContext(ctx).Named("report")

	r := mux.NewRouter()
	r.Use(middleware.Recovery())
	r.Use(middleware.PopulateRequestID())
	r.Use(middleware.PopulateLogger(logger))

	r.Handle("/health", server.HandleHealthz(s.env.Blobstore(), s.config.Bucket)).Methods(http.MethodGet)
	if h := observability.MetricsHandler(s.env.ObservabilityExporter()); h != nil {
		r.Handle("/metrics", h).Methods(http.MethodGet)
	}
	r.Handle("/", maintenance.New(s.config).Handle(s.handleNotification())).Methods(http.MethodPost)

	return r
}

// handleNotification generates the report once per notification that names a
// population snapshot. Notifications for other keys are acknowledged so the
// sender does not redeliver them.
func (s *Server) handleNotification() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		logger := logging.FromContext(ctx).Named("report.handleNotification")

		body, err := io.ReadAll(io.LimitReader(r.Body, maxNotificationBytes))
		if err != nil {
			s.h.RenderJSON(w, http.StatusBadRequest, fmt.Errorf("failed to read body: %w", err))
			return
		}

		keys, err := ParseNotification(body)
		if err != nil {
			logger.Warnw("rejected notification", "error", err)
			s.h.RenderJSON(w, http.StatusBadRequest, err)
			return
		}

		matched := matchingKeys(s.config.PopulationPrefix, keys)
		if len(matched) == 0 {
			logger.Infow("ignoring notification", "keys", keys)
			s.h.RenderJSON(w, http.StatusOK, &Result{
				StatusCode: http.StatusOK,
				Status:     ResultIgnored,
			})
			return
		}

		result := s.generator.Generate(ctx, matched[len(matched)-1])
		s.h.RenderJSON(w, result.StatusCode, result)
	})
}
