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
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/laborstats/pipeline/internal/project"
)

func TestServer(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(project.TestContext(t))
	defer cancel()

	s, err := New("")
	if err != nil {
		t.Fatal(err)
	}
	if s.Port() == "" || s.Port() == "0" {
		t.Fatalf("expected a random port, got %q", s.Port())
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "ok")
	})

	doneCh := make(chan error, 1)
	go func() {
		doneCh <- s.ServeHTTPHandler(ctx, mux)
	}()

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get("http://localhost:" + s.Port() + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(b), "ok"; got != want {
		t.Errorf("expected %q to be %q", got, want)
	}

	cancel()
	if err := <-doneCh; err != nil {
		t.Fatal(err)
	}
}
