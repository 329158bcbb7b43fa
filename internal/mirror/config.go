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

import "time"

// Config configures the sync engine.
type Config struct {
	// Prefix is the destination directory for mirrored files.
	Prefix string `env:"BLS_PREFIX, default=raw/pr/"`

	// Concurrency is the number of files transferred at the same time.
	Concurrency int `env:"SYNC_CONCURRENCY, default=4"`

	// UploadTimeout is the maximum amount of time to wait when writing a
	// single file to the blobstore.
	UploadTimeout time.Duration `env:"SYNC_UPLOAD_TIMEOUT, default=2m"`
}
