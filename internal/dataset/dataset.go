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

// Package dataset reads the mirrored labor statistics file and the population
// snapshots out of the blobstore.
package dataset

import (
	"errors"

	"github.com/laborstats/pipeline/internal/storage"
)

var (
	// ErrSchemaMismatch is returned when a source does not have the expected
	// columns or fields.
	ErrSchemaMismatch = errors.New("schema mismatch")

	// ErrSourceUnavailable is returned when a source could not be read from
	// the blobstore.
	ErrSourceUnavailable = errors.New("source unavailable")
)

// Loader reads datasets from a single bucket.
type Loader struct {
	blobstore storage.Blobstore
	bucket    string
}

// NewLoader creates a new loader.
func NewLoader(blobstore storage.Blobstore, bucket string) *Loader {
	return &Loader{
		blobstore: blobstore,
		bucket:    bucket,
	}
}
