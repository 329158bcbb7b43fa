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
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/laborstats/pipeline/internal/bls"
	"github.com/laborstats/pipeline/internal/storage"
)

func TestDecide(t *testing.T) {
	t.Parallel()

	older := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := older.Add(time.Hour)

	cases := []struct {
		name     string
		remote   *bls.RemoteFile
		existing *storage.ObjectAttrs
		want     Decision
	}{
		{
			name:     "absent",
			remote:   &bls.RemoteFile{Name: "pr.series", Size: 10},
			existing: nil,
			want:     Decision{Upload: true, Reason: ReasonNew},
		},
		{
			name:     "same_size_older_remote",
			remote:   &bls.RemoteFile{Name: "pr.series", Size: 10, LastModified: older},
			existing: &storage.ObjectAttrs{Key: "raw/pr/pr.series", Size: 10, LastModified: newer},
			want:     Decision{Upload: false, Reason: ReasonUpToDate},
		},
		{
			name:     "same_size_same_time",
			remote:   &bls.RemoteFile{Name: "pr.series", Size: 10, LastModified: older},
			existing: &storage.ObjectAttrs{Key: "raw/pr/pr.series", Size: 10, LastModified: older},
			want:     Decision{Upload: false, Reason: ReasonUpToDate},
		},
		{
			name:     "size_changed",
			remote:   &bls.RemoteFile{Name: "pr.series", Size: 11, LastModified: older},
			existing: &storage.ObjectAttrs{Key: "raw/pr/pr.series", Size: 10, LastModified: newer},
			want:     Decision{Upload: true, Reason: ReasonSizeChanged},
		},
		{
			name:     "republished",
			remote:   &bls.RemoteFile{Name: "pr.series", Size: 10, LastModified: newer},
			existing: &storage.ObjectAttrs{Key: "raw/pr/pr.series", Size: 10, LastModified: older},
			want:     Decision{Upload: true, Reason: ReasonUpdated},
		},
		{
			name:     "zero_remote_time",
			remote:   &bls.RemoteFile{Name: "pr.series", Size: 10},
			existing: &storage.ObjectAttrs{Key: "raw/pr/pr.series", Size: 10, LastModified: older},
			want:     Decision{Upload: false, Reason: ReasonUpToDate},
		},
		{
			name:     "hash_changed",
			remote:   &bls.RemoteFile{Name: "pr.series", Size: 10, MD5: "aaaa"},
			existing: &storage.ObjectAttrs{Key: "raw/pr/pr.series", Size: 10, MD5: "bbbb"},
			want:     Decision{Upload: true, Reason: ReasonHashChanged},
		},
		{
			name:     "hash_equal_wins_over_size_and_time",
			remote:   &bls.RemoteFile{Name: "pr.series", Size: 99, MD5: "AAAA", LastModified: newer},
			existing: &storage.ObjectAttrs{Key: "raw/pr/pr.series", Size: 10, MD5: "aaaa", LastModified: older},
			want:     Decision{Upload: false, Reason: ReasonUpToDate},
		},
		{
			name:     "one_sided_hash",
			remote:   &bls.RemoteFile{Name: "pr.series", Size: 12},
			existing: &storage.ObjectAttrs{Key: "raw/pr/pr.series", Size: 10, MD5: "aaaa"},
			want:     Decision{Upload: true, Reason: ReasonSizeChanged},
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := Decide(tc.remote, tc.existing)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("mismatch (-want, +got):\n%s", diff)
			}

			// Decide has no hidden state.
			if again := Decide(tc.remote, tc.existing); again != got {
				t.Errorf("expected %v to equal %v", again, got)
			}
		})
	}
}

func TestComputeActions(t *testing.T) {
	t.Parallel()

	remote := []*bls.RemoteFile{
		{Name: "pr.series", Size: 5},
		{Name: "pr.data.0.Current", Size: 7},
	}
	stored := []*storage.ObjectAttrs{
		{Key: "raw/pr/pr.series", Size: 5},
		{Key: "raw/pr/old/pr.data.0.Current", Size: 7},
	}

	got := computeActions("raw/pr", remote, stored)
	if len(got) != 2 {
		t.Fatalf("expected 2 statuses, got %d", len(got))
	}

	if got[0].Remote.Name != "pr.series" || got[0].Order != 1 {
		t.Errorf("unexpected first status %#v", got[0])
	}
	if got[0].Key != "raw/pr/pr.series" {
		t.Errorf("expected key raw/pr/pr.series, got %q", got[0].Key)
	}
	if got[0].needsUpload() {
		t.Errorf("expected pr.series to be skipped")
	}

	// Nested objects are not direct children of the prefix.
	if got[1].Existing != nil {
		t.Errorf("expected no existing object for %s, got %#v", got[1].Remote.Name, got[1].Existing)
	}
	if got, want := got[1].Decision.Reason, ReasonNew; got != want {
		t.Errorf("expected reason %q to be %q", got, want)
	}
}
