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

package snapshot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/laborstats/pipeline/internal/project"
	"github.com/laborstats/pipeline/internal/storage"
	"github.com/laborstats/pipeline/pkg/errcmp"
)

const testURL = "https://api.test/population"

type fakeSource struct {
	body []byte
	err  error
}

func (f *fakeSource) SourceURL() string { return testURL }

func (f *fakeSource) Fetch(_ context.Context) ([]byte, error) {
	return f.body, f.err
}

func TestKey(t *testing.T) {
	t.Parallel()

	ts := time.Date(2024, 7, 4, 9, 5, 3, 0, time.FixedZone("EST", -5*60*60))
	if got, want := Key("raw/datausa/population", ts, "0a1b2c3d"), "raw/datausa/population/population_20240704_140503_0a1b2c3d.json"; got != want {
		t.Errorf("expected %q to be %q", got, want)
	}
}

func TestSnapshot(t *testing.T) {
	t.Parallel()

	invoked := time.Date(2024, 7, 4, 14, 5, 3, 0, time.UTC)

	cases := []struct {
		name      string
		source    *fakeSource
		want      *Result
		wantErr   string
		wantCount string
	}{
		{
			name:      "wrapped",
			source:    &fakeSource{body: []byte(`{"data":[{"Year":"2020","Population":1},{"Year":"2021","Population":2}]}`)},
			want:      &Result{Success: true, FileSaved: "raw/population/population_20240704_140503_abcdef01.json", RecordCount: 2, SourceURL: testURL},
			wantCount: "2",
		},
		{
			name:      "bare_array",
			source:    &fakeSource{body: []byte(`[{"Year":2020,"Population":1}]`)},
			want:      &Result{Success: true, FileSaved: "raw/population/population_20240704_140503_abcdef01.json", RecordCount: 1, SourceURL: testURL},
			wantCount: "1",
		},
		{
			name:      "object_without_data",
			source:    &fakeSource{body: []byte(`{"Year":2020,"Population":1}`)},
			want:      &Result{Success: true, FileSaved: "raw/population/population_20240704_140503_abcdef01.json", RecordCount: 0, SourceURL: testURL},
			wantCount: "0",
		},
		{
			name:    "invalid_json",
			source:  &fakeSource{body: []byte(`<html>busy</html>`)},
			want:    &Result{SourceURL: testURL},
			wantErr: "failed to parse population data",
		},
		{
			name:    "fetch_error",
			source:  &fakeSource{err: errors.New("timeout")},
			want:    &Result{SourceURL: testURL},
			wantErr: "failed to fetch population data: timeout",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctx := project.TestContext(t)
			bs, err := storage.NewMemory(ctx)
			if err != nil {
				t.Fatal(err)
			}

			w := NewWriter(tc.source, bs, "bucket", &Config{Prefix: "raw/population/", UploadTimeout: time.Second})
			w.now = func() time.Time { return invoked }
			w.newID = func() string { return "abcdef01" }

			got, err := w.Snapshot(ctx)
			errcmp.MustMatch(t, err, tc.wantErr)

			if tc.wantErr != "" {
				if got.Error == "" {
					t.Errorf("expected result to carry the error")
				}
				got.Error = ""
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("mismatch (-want, +got):\n%s", diff)
			}

			objs, err := bs.ListObjects(ctx, "bucket", "")
			if err != nil {
				t.Fatal(err)
			}
			if tc.wantErr != "" {
				if len(objs) != 0 {
					t.Errorf("expected nothing to be written, got %d objects", len(objs))
				}
				return
			}

			mem := bs.(*storage.Memory)
			if got, want := mem.ContentType("bucket", got.FileSaved), "application/json"; got != want {
				t.Errorf("expected content type %q to be %q", got, want)
			}

			wantMD := map[string]string{
				"source-url":          testURL,
				"ingestion-timestamp": "2024-07-04T14:05:03Z",
				"record-count":        tc.wantCount,
			}
			if diff := cmp.Diff(wantMD, mem.Metadata("bucket", got.FileSaved)); diff != "" {
				t.Errorf("metadata mismatch (-want, +got):\n%s", diff)
			}

			b, err := bs.GetObject(ctx, "bucket", got.FileSaved)
			if err != nil {
				t.Fatal(err)
			}
			if got, want := string(b), string(tc.source.body); got != want {
				t.Errorf("expected stored body %q to be %q", got, want)
			}
		})
	}
}

func TestSnapshot_NoDedup(t *testing.T) {
	t.Parallel()

	ctx := project.TestContext(t)
	bs, err := storage.NewMemory(ctx)
	if err != nil {
		t.Fatal(err)
	}

	w := NewWriter(&fakeSource{body: []byte(`{"data":[]}`)}, bs, "bucket", &Config{Prefix: "pop/", UploadTimeout: time.Second})

	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	w.now = func() time.Time {
		ts = ts.Add(time.Second)
		return ts
	}

	for i := 0; i < 2; i++ {
		if _, err := w.Snapshot(ctx); err != nil {
			t.Fatal(err)
		}
	}

	objs, err := bs.ListObjects(ctx, "bucket", "pop/")
	if err != nil {
		t.Fatal(err)
	}
	if got, want := len(objs), 2; got != want {
		t.Errorf("expected %d snapshots, got %d", want, got)
	}
}

func TestSnapshot_SameSecond(t *testing.T) {
	t.Parallel()

	ctx := project.TestContext(t)
	bs, err := storage.NewMemory(ctx)
	if err != nil {
		t.Fatal(err)
	}

	cfg := &Config{Prefix: "pop/", UploadTimeout: time.Second}
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	first := NewWriter(&fakeSource{body: []byte(`[{"Year":2020,"Population":1}]`)}, bs, "bucket", cfg)
	first.now = func() time.Time { return base }

	second := NewWriter(&fakeSource{body: []byte(`[{"Year":2021,"Population":2}]`)}, bs, "bucket", cfg)
	second.now = func() time.Time { return base.Add(300 * time.Millisecond) }

	r1, err := first.Snapshot(ctx)
	if err != nil {
		t.Fatal(err)
	}
	r2, err := second.Snapshot(ctx)
	if err != nil {
		t.Fatal(err)
	}

	if r1.FileSaved == r2.FileSaved {
		t.Fatalf("expected distinct keys, both were %q", r1.FileSaved)
	}

	objs, err := bs.ListObjects(ctx, "bucket", "pop/")
	if err != nil {
		t.Fatal(err)
	}
	if got, want := len(objs), 2; got != want {
		t.Errorf("expected %d snapshots, got %d", want, got)
	}

	b, err := bs.GetObject(ctx, "bucket", r1.FileSaved)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(b), `[{"Year":2020,"Population":1}]`; got != want {
		t.Errorf("expected first snapshot %q to be preserved, got %q", want, got)
	}
}
