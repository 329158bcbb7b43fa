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
	"sort"

	"github.com/laborstats/pipeline/internal/bls"
	"github.com/laborstats/pipeline/internal/storage"
)

// FileStatus tracks a single remote file through a sync.
type FileStatus struct {
	Order    int
	Remote   *bls.RemoteFile
	Existing *storage.ObjectAttrs
	Key      string
	Decision Decision

	Uploaded bool
	Failed   bool
}

func (f *FileStatus) needsUpload() bool {
	return f.Decision.Upload
}

func sortFileStatus(fs []*FileStatus) {
	sort.Slice(fs, func(i, j int) bool {
		return fs[i].Order < fs[j].Order
	})
}

// computeActions pairs each remote file with the stored object of the same
// name and decides what to do with it. Only objects directly under prefix are
// considered; the result is in listing order.
func computeActions(prefix string, remote []*bls.RemoteFile, stored []*storage.ObjectAttrs) []*FileStatus {
	existing := make(map[string]*storage.ObjectAttrs, len(stored))
	for _, obj := range stored {
		name, ok := storage.ChildKey(prefix, obj.Key)
		if !ok {
			continue
		}
		existing[name] = obj
	}

	statuses := make([]*FileStatus, 0, len(remote))
	for i, f := range remote {
		cur := existing[f.Name]
		statuses = append(statuses, &FileStatus{
			// Start ordering at 1 because a value of 0 is also the default value.
			Order:    i + 1,
			Remote:   f,
			Existing: cur,
			Key:      storage.JoinKey(prefix, f.Name),
			Decision: Decide(f, cur),
		})
	}

	sortFileStatus(statuses)
	return statuses
}
