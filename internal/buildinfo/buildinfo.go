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

// Package buildinfo provides high-level build information injected during
// build through -ldflags.
package buildinfo

import "fmt"

var (
	// id is the unique build identifier.
	id = "unknown"

	// tag is the git tag from which this build was created.
	tag = "unknown"
)

// info is the build information for a single binary.
type info struct {
	name string
}

// Name is the binary name.
func (i info) Name() string {
	return i.name
}

// ID is the unique build identifier.
func (info) ID() string {
	return id
}

// Tag is the git tag from which this build was created.
func (info) Tag() string {
	return tag
}

// UserAgent is the value sent as the User-Agent header when the binary does
// not configure one.
func (i info) UserAgent() string {
	return fmt.Sprintf("laborstats-%s/%s", i.name, tag)
}

var (
	// Sync is the build information for the sync job.
	Sync = info{name: "sync"}

	// Report is the build information for the report job.
	Report = info{name: "report"}
)
