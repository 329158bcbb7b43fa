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

package datausa

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/laborstats/pipeline/internal/fetch"
	"github.com/laborstats/pipeline/internal/project"
)

func TestClient_Fetch(t *testing.T) {
	t.Parallel()

	ctx := project.TestContext(t)

	r := mux.NewRouter()
	r.HandleFunc("/data", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Accept"); got != "application/json" {
			w.WriteHeader(http.StatusNotAcceptable)
			return
		}
		fmt.Fprint(w, `{"data":[{"Year":"2022","Population":333287562}]}`)
	}).Methods(http.MethodGet)
	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)

	t.Run("ok", func(t *testing.T) {
		t.Parallel()

		c := NewClient(fetch.New("test"), &Config{URL: ts.URL + "/data", Timeout: 5 * time.Second, MaxBytes: 1024})
		b, err := c.Fetch(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if got, want := string(b), `{"data":[{"Year":"2022","Population":333287562}]}`; got != want {
			t.Errorf("expected %q to be %q", got, want)
		}
		if got, want := c.SourceURL(), ts.URL+"/data"; got != want {
			t.Errorf("expected %q to be %q", got, want)
		}
	})

	t.Run("not_found", func(t *testing.T) {
		t.Parallel()

		c := NewClient(fetch.New("test"), &Config{URL: ts.URL + "/nope", Timeout: 5 * time.Second, MaxBytes: 1024})
		if _, err := c.Fetch(ctx); !errors.Is(err, fetch.ErrTransport) {
			t.Errorf("expected %v to be %v", err, fetch.ErrTransport)
		}
	})
}
