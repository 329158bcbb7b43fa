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

package syncjob

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/laborstats/pipeline/internal/maintenance"
	"github.com/laborstats/pipeline/internal/middleware"
	"github.com/laborstats/pipeline/internal/server"
	"github.com/laborstats/pipeline/pkg/logging"
	"github.com/laborstats/pipeline/pkg/observability"
	"github.com/laborstats/pipeline/pkg/render"
)

// Server exposes the job over HTTP for schedulers that trigger by request.
type Server struct {
	job *Job
	h   *render.Renderer
}

// NewServer creates a new server.
func NewServer(job *Job) *Server {
	return &Server{
		job: job,
		h:   render.NewRenderer(),
	}
}

// Routes returns the router for this server.
func (s *Server) Routes(ctx context.Context) *mux.Router {
	logger := logging.FromContext(ctx).Named("syncjob")

	r := mux.NewRouter()
	r.Use(middleware.Recovery())
	r.Use(middleware.PopulateRequestID())
	r.Use(middleware.PopulateLogger(logger))

	r.Handle("/health", server.HandleHealthz(s.job.env.Blobstore(), s.job.config.Bucket)).Methods(http.MethodGet)
	if h := observability.MetricsHandler(s.job.env.ObservabilityExporter()); h != nil {
		r.Handle("/metrics", h).Methods(http.MethodGet)
	}
	r.Handle("/", maintenance.New(s.job.config).Handle(s.handleSync())).Methods(http.MethodPost)

	return r
}

func (s *Server) handleSync() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		result := s.job.Run(r.Context())
		s.h.RenderJSON(w, result.StatusCode, result)
	})
}
