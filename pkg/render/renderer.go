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

// Package render writes JSON responses and stored JSON documents.
package render

import (
	"bytes"
	"sync"
)

const (
	// initialBufferSize covers a typical job result.
	initialBufferSize = 1024

	// maxPooledBufferSize keeps report-sized buffers out of the pool.
	maxPooledBufferSize = 1 << 20
)

// Renderer encodes into pooled buffers so a failed encode never leaves a
// partial response.
type Renderer struct {
	pool *sync.Pool
}

// NewRenderer returns an instantiated renderer.
func NewRenderer() *Renderer {
	return &Renderer{
		pool: &sync.Pool{
			New: func() any {
				return bytes.NewBuffer(make([]byte, 0, initialBufferSize))
			},
		},
	}
}

func (r *Renderer) getBuffer() *bytes.Buffer {
	b := r.pool.Get().(*bytes.Buffer)
	b.Reset()
	return b
}

func (r *Renderer) putBuffer(b *bytes.Buffer) {
	if b.Cap() > maxPooledBufferSize {
		return
	}
	r.pool.Put(b)
}
