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

package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestMemory(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	bs, err := NewMemory(ctx)
	if err != nil {
		t.Fatal(err)
	}
	mem := bs.(*Memory)

	md := map[string]string{"source-url": "https://example.com/pr.series"}
	for _, key := range []string{"raw/pr/pr.series", "raw/pr/pr.data.0.Current", "raw/pr/old/pr.txt", "analytics/report.json"} {
		if err := bs.CreateObject(ctx, "bucket", key, []byte(key), false, "text/plain", md); err != nil {
			t.Fatal(err)
		}
	}
	if err := bs.CreateObject(ctx, "other", "raw/pr/pr.series", []byte("x"), false, "", nil); err != nil {
		t.Fatal(err)
	}

	t.Run("get", func(t *testing.T) {
		t.Parallel()

		b, err := bs.GetObject(ctx, "bucket", "raw/pr/pr.series")
		if err != nil {
			t.Fatal(err)
		}
		if got, want := string(b), "raw/pr/pr.series"; got != want {
			t.Errorf("expected %q to be %q", got, want)
		}
	})

	t.Run("get_missing", func(t *testing.T) {
		t.Parallel()

		if _, err := bs.GetObject(ctx, "bucket", "nope"); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected %v to be %v", err, ErrNotFound)
		}
	})

	t.Run("list", func(t *testing.T) {
		t.Parallel()

		objs, err := bs.ListObjects(ctx, "bucket", "raw/pr/")
		if err != nil {
			t.Fatal(err)
		}

		keys := make([]string, 0, len(objs))
		for _, o := range objs {
			keys = append(keys, o.Key)
			if o.Size != int64(len(o.Key)) {
				t.Errorf("%s: expected size %d to be %d", o.Key, o.Size, len(o.Key))
			}
			if o.MD5 == "" {
				t.Errorf("%s: expected md5", o.Key)
			}
		}

		want := []string{"raw/pr/old/pr.txt", "raw/pr/pr.data.0.Current", "raw/pr/pr.series"}
		if diff := cmp.Diff(want, keys); diff != "" {
			t.Errorf("mismatch (-want, +got):\n%s", diff)
		}
	})

	t.Run("metadata", func(t *testing.T) {
		t.Parallel()

		if diff := cmp.Diff(md, mem.Metadata("bucket", "raw/pr/pr.series")); diff != "" {
			t.Errorf("mismatch (-want, +got):\n%s", diff)
		}
		if got, want := mem.ContentType("bucket", "raw/pr/pr.series"), "text/plain"; got != want {
			t.Errorf("expected %q to be %q", got, want)
		}
	})
}

func TestMemory_SetLastModified(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	bs, err := NewMemory(ctx)
	if err != nil {
		t.Fatal(err)
	}
	mem := bs.(*Memory)

	if err := bs.CreateObject(ctx, "bucket", "a", []byte("a"), false, "", nil); err != nil {
		t.Fatal(err)
	}

	want := time.Date(2020, 1, 2, 3, 4, 0, 0, time.UTC)
	mem.SetLastModified("bucket", "a", want)

	objs, err := bs.ListObjects(ctx, "bucket", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(objs) != 1 {
		t.Fatalf("expected 1 object, got %d", len(objs))
	}
	if got := objs[0].LastModified; !got.Equal(want) {
		t.Errorf("expected %v to be %v", got, want)
	}
}

func TestMemory_CreateObjectCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	bs, err := NewMemory(ctx)
	if err != nil {
		t.Fatal(err)
	}

	err = bs.CreateObject(ctx, "bucket", "a", []byte("a"), false, "", nil)
	if !errors.Is(err, ErrWrite) {
		t.Errorf("expected %v to be %v", err, ErrWrite)
	}
}
