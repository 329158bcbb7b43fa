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
	"strings"

	"github.com/laborstats/pipeline/internal/bls"
	"github.com/laborstats/pipeline/internal/storage"
)

// Reasons reported by Decide.
const (
	ReasonNew         = "new"
	ReasonSizeChanged = "size-changed"
	ReasonHashChanged = "hash-changed"
	ReasonUpdated     = "updated"
	ReasonUpToDate    = "up-to-date"
)

// Decision is the outcome of comparing a remote file with the stored copy.
type Decision struct {
	Upload bool
	Reason string
}

// Decide reports whether the remote file must be uploaded given the object
// currently stored under the same name, which is nil if there is none.
//
// When both sides carry a content digest, the digests decide. Otherwise a
// size difference, or a remote modification time strictly after the stored
// object's, requires an upload. A zero remote modification time never causes
// an upload on its own.
func Decide(remote *bls.RemoteFile, existing *storage.ObjectAttrs) Decision {
	if existing == nil {
		return Decision{Upload: true, Reason: ReasonNew}
	}

	if remote.MD5 != "" && existing.MD5 != "" {
		if !strings.EqualFold(remote.MD5, existing.MD5) {
			return Decision{Upload: true, Reason: ReasonHashChanged}
		}
		return Decision{Upload: false, Reason: ReasonUpToDate}
	}

	if remote.Size != existing.Size {
		return Decision{Upload: true, Reason: ReasonSizeChanged}
	}

	if !remote.LastModified.IsZero() && remote.LastModified.After(existing.LastModified) {
		return Decision{Upload: true, Reason: ReasonUpdated}
	}

	return Decision{Upload: false, Reason: ReasonUpToDate}
}
