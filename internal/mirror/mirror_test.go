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

package mirror

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/laborstats/pipeline/internal/bls"
	"github.com/laborstats/pipeline/internal/project"
	"github.com/laborstats/pipeline/internal/storage"
	"github.com/laborstats/pipeline/pkg/errcmp"
)

const testBucket = "archive"

var published = time.Date(2024, 3, 1, 8, 30, 0, 0, time.UTC)

type fakeSource struct {
	mu        sync.Mutex
	files     []*bls.RemoteFile
	contents  map[string][]byte
	listErr   error
	failNames map[string]bool
	downloads []string
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		contents:  make(map[string][]byte),
		failNames: make(map[string]bool),
	}
}

func (f *fakeSource) add(name, body string) {
	f.files = append(f.files, &bls.RemoteFile{
		Name:         name,
		Size:         int64(len(body)),
		LastModified: published,
		URL:          "https://archive.test/pr/" + name,
	})
	f.contents[name] = []byte(body)
}

func (f *fakeSource) ListFiles(_ context.Context) ([]*bls.RemoteFile, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.files, nil
}

func (f *fakeSource) Download(_ context.Context, file *bls.RemoteFile) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.downloads = append(f.downloads, file.Name)
	if f.failNames[file.Name] {
		return nil, fmt.Errorf("connection reset while reading %s", file.Name)
	}
	return f.contents[file.Name], nil
}

// failingStore rejects writes to one key.
type failingStore struct {
	storage.Blobstore
	failKey string
}

func (s *failingStore) CreateObject(ctx context.Context, bucket, key string, contents []byte, cacheable bool, contentType string, metadata map[string]string) error {
	if key == s.failKey {
		return storage.ErrWrite
	}
	return s.Blobstore.CreateObject(ctx, bucket, key, contents, cacheable, contentType, metadata)
}

func testConfig() *Config {
	return &Config{
		Prefix:        "raw/pr/",
		Concurrency:   3,
		UploadTimeout: 10 * time.Second,
	}
}

func newMemory(tb testing.TB) storage.Blobstore {
	tb.Helper()

	bs, err := storage.NewMemory(context.Background())
	if err != nil {
		tb.Fatal(err)
	}
	return bs
}

func TestSync_PartialArchive(t *testing.T) {
	t.Parallel()

	ctx := project.TestContext(t)
	bs := newMemory(t)

	src := newFakeSource()
	for i := 0; i < 15; i++ {
		src.add(fmt.Sprintf("pr.file.%02d", i), strings.Repeat("x", i+1))
	}

	// The first 12 files are already mirrored.
	for _, f := range src.files[:12] {
		if err := bs.CreateObject(ctx, testBucket, "raw/pr/"+f.Name, src.contents[f.Name], false, "", nil); err != nil {
			t.Fatal(err)
		}
	}

	manifest, err := NewSyncer(src, bs, testBucket, testConfig()).Sync(ctx)
	if err != nil {
		t.Fatal(err)
	}

	want := &Manifest{
		TotalFiles: 15,
		Uploaded:   []string{"pr.file.12", "pr.file.13", "pr.file.14"},
		Skipped: []string{
			"pr.file.00", "pr.file.01", "pr.file.02", "pr.file.03",
			"pr.file.04", "pr.file.05", "pr.file.06", "pr.file.07",
			"pr.file.08", "pr.file.09", "pr.file.10", "pr.file.11",
		},
		Success: true,
	}
	if diff := cmp.Diff(want, manifest); diff != "" {
		t.Errorf("mismatch (-want, +got):\n%s", diff)
	}

	if got := len(src.downloads); got != 3 {
		t.Errorf("expected 3 downloads, got %d: %v", got, src.downloads)
	}

	b, err := bs.GetObject(ctx, testBucket, "raw/pr/pr.file.14")
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(b), strings.Repeat("x", 15); got != want {
		t.Errorf("expected %q to be %q", got, want)
	}

	md := bs.(*storage.Memory).Metadata(testBucket, "raw/pr/pr.file.14")
	wantMD := map[string]string{
		"source-url":           "https://archive.test/pr/pr.file.14",
		"source-last-modified": "2024-03-01T08:30:00Z",
	}
	if diff := cmp.Diff(wantMD, md); diff != "" {
		t.Errorf("metadata mismatch (-want, +got):\n%s", diff)
	}
}

func TestSync_Idempotent(t *testing.T) {
	t.Parallel()

	ctx := project.TestContext(t)
	bs := newMemory(t)

	src := newFakeSource()
	src.add("pr.series", "series_id\tseries_title\n")
	src.add("pr.data.0.Current", "series_id\tyear\tperiod\tvalue\n")

	syncer := NewSyncer(src, bs, testBucket, testConfig())

	first, err := syncer.Sync(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got := len(first.Uploaded); got != 2 {
		t.Fatalf("expected 2 uploads on first sync, got %d", got)
	}

	second, err := syncer.Sync(ctx)
	if err != nil {
		t.Fatal(err)
	}

	want := &Manifest{
		TotalFiles: 2,
		Uploaded:   []string{},
		Skipped:    []string{"pr.series", "pr.data.0.Current"},
		Success:    true,
	}
	if diff := cmp.Diff(want, second); diff != "" {
		t.Errorf("mismatch (-want, +got):\n%s", diff)
	}
}

func TestSync_Additive(t *testing.T) {
	t.Parallel()

	ctx := project.TestContext(t)
	bs := newMemory(t)

	// Objects unknown to the archive, including nested ones, are left alone.
	for _, key := range []string{"raw/pr/retired.file", "raw/pr/archive/pr.series"} {
		if err := bs.CreateObject(ctx, testBucket, key, []byte("keep"), false, "", nil); err != nil {
			t.Fatal(err)
		}
	}

	src := newFakeSource()
	src.add("pr.series", "series")

	manifest, err := NewSyncer(src, bs, testBucket, testConfig()).Sync(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"pr.series"}, manifest.Uploaded); diff != "" {
		t.Errorf("mismatch (-want, +got):\n%s", diff)
	}

	objs, err := bs.ListObjects(ctx, testBucket, "raw/pr/")
	if err != nil {
		t.Fatal(err)
	}
	keys := make([]string, 0, len(objs))
	for _, o := range objs {
		keys = append(keys, o.Key)
	}

	wantKeys := []string{"raw/pr/archive/pr.series", "raw/pr/pr.series", "raw/pr/retired.file"}
	if diff := cmp.Diff(wantKeys, keys); diff != "" {
		t.Errorf("mismatch (-want, +got):\n%s", diff)
	}
}

func TestSync_ChangedSize(t *testing.T) {
	t.Parallel()

	ctx := project.TestContext(t)
	bs := newMemory(t)

	if err := bs.CreateObject(ctx, testBucket, "raw/pr/pr.series", []byte("short"), false, "", nil); err != nil {
		t.Fatal(err)
	}

	src := newFakeSource()
	src.add("pr.series", "a longer body")

	manifest, err := NewSyncer(src, bs, testBucket, testConfig()).Sync(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"pr.series"}, manifest.Uploaded); diff != "" {
		t.Errorf("mismatch (-want, +got):\n%s", diff)
	}

	b, err := bs.GetObject(ctx, testBucket, "raw/pr/pr.series")
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(b), "a longer body"; got != want {
		t.Errorf("expected %q to be %q", got, want)
	}
}

func TestSync_FileFailures(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		failFetch string
		failKey   string
		wantErr   string
	}{
		{
			name:      "download",
			failFetch: "pr.file.1",
			wantErr:   "failed to download pr.file.1",
		},
		{
			name:    "upload",
			failKey: "raw/pr/pr.file.1",
			wantErr: "failed to write pr.file.1 to blobstore",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctx := project.TestContext(t)
			bs := &failingStore{Blobstore: newMemory(t), failKey: tc.failKey}

			src := newFakeSource()
			src.add("pr.file.0", "zero")
			src.add("pr.file.1", "one")
			src.add("pr.file.2", "two")
			if tc.failFetch != "" {
				src.failNames[tc.failFetch] = true
			}

			manifest, err := NewSyncer(src, bs, testBucket, testConfig()).Sync(ctx)
			if err != nil {
				t.Fatal(err)
			}

			if manifest.Success {
				t.Errorf("expected sync to be unsuccessful")
			}
			if diff := cmp.Diff([]string{"pr.file.0", "pr.file.2"}, manifest.Uploaded); diff != "" {
				t.Errorf("uploaded mismatch (-want, +got):\n%s", diff)
			}
			if diff := cmp.Diff([]string{"pr.file.1"}, manifest.Failed); diff != "" {
				t.Errorf("failed mismatch (-want, +got):\n%s", diff)
			}
			if got, want := manifest.TotalFiles, len(manifest.Uploaded)+len(manifest.Skipped)+len(manifest.Failed); got != want {
				t.Errorf("expected total %d to be %d", got, want)
			}
			if len(manifest.Errors) != 1 {
				t.Fatalf("expected 1 error, got %v", manifest.Errors)
			}
			if !strings.Contains(manifest.Errors[0], tc.wantErr) {
				t.Errorf("expected %q to contain %q", manifest.Errors[0], tc.wantErr)
			}
		})
	}
}

func TestSync_ListingFailures(t *testing.T) {
	t.Parallel()

	t.Run("remote", func(t *testing.T) {
		t.Parallel()

		ctx := project.TestContext(t)
		bs := newMemory(t)

		src := newFakeSource()
		src.add("pr.series", "series")
		src.listErr = errors.New("listing unavailable")

		manifest, err := NewSyncer(src, bs, testBucket, testConfig()).Sync(ctx)
		errcmp.MustMatch(t, err, "failed to list remote files: listing unavailable")
		if manifest != nil {
			t.Errorf("expected no manifest, got %#v", manifest)
		}

		objs, err := bs.ListObjects(ctx, testBucket, "")
		if err != nil {
			t.Fatal(err)
		}
		if len(objs) != 0 {
			t.Errorf("expected nothing to be written, got %d objects", len(objs))
		}
	})

	t.Run("stored", func(t *testing.T) {
		t.Parallel()

		ctx := project.TestContext(t)
		src := newFakeSource()
		src.add("pr.series", "series")

		manifest, err := NewSyncer(src, &brokenLister{}, testBucket, testConfig()).Sync(ctx)
		errcmp.MustMatch(t, err, "failed to list stored objects")
		if manifest != nil {
			t.Errorf("expected no manifest, got %#v", manifest)
		}
		if len(src.downloads) != 0 {
			t.Errorf("expected no downloads, got %v", src.downloads)
		}
	})
}

type brokenLister struct {
	storage.Blobstore
}

func (b *brokenLister) ListObjects(_ context.Context, _, _ string) ([]*storage.ObjectAttrs, error) {
	return nil, errors.New("access denied")
}
