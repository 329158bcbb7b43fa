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

package serverenv

import (
	"context"
	"testing"

	"github.com/laborstats/pipeline/internal/storage"
	"github.com/laborstats/pipeline/pkg/observability"
)

func TestNew(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	bs, err := storage.NewMemory(ctx)
	if err != nil {
		t.Fatal(err)
	}
	oe, err := observability.NewNoop(ctx)
	if err != nil {
		t.Fatal(err)
	}

	env := New(ctx, WithBlobStorage(bs), WithObservabilityExporter(oe))
	if env.Blobstore() != bs {
		t.Errorf("expected blobstore to be installed")
	}
	if env.ObservabilityExporter() != oe {
		t.Errorf("expected exporter to be installed")
	}
	if err := env.Close(ctx); err != nil {
		t.Fatal(err)
	}
}

func TestClose_nil(t *testing.T) {
	t.Parallel()

	var env *ServerEnv
	if err := env.Close(context.Background()); err != nil {
		t.Fatal(err)
	}
}
