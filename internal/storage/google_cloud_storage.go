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
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

// Compile-time check to verify implements interface.
var (
	_ Blobstore = (*GoogleCloudStorage)(nil)
	_ Deleter   = (*GoogleCloudStorage)(nil)
)

// GoogleCloudStorage implements the Blob interface and provides the ability
// write files to Google Cloud Storage.
type GoogleCloudStorage struct {
	client *storage.Client
}

// NewGoogleCloudStorage creates a Google Cloud Storage Client using the
// application default credentials.
func NewGoogleCloudStorage(ctx context.Context) (Blobstore, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("storage.NewClient: %w", err)
	}
	return &GoogleCloudStorage{client}, nil
}

// CreateObject creates a new cloud storage object or overwrites an existing one.
func (gcs *GoogleCloudStorage) CreateObject(ctx context.Context, bucket, key string, contents []byte, cacheable bool, contentType string, metadata map[string]string) error {
	wc := gcs.client.Bucket(bucket).Object(key).NewWriter(ctx)
	wc.CacheControl = cacheControl(cacheable)
	if contentType != "" {
		wc.ContentType = contentType
	}
	if len(metadata) > 0 {
		wc.Metadata = metadata
	}

	if _, err := wc.Write(contents); err != nil {
		wc.Close()
		return fmt.Errorf("%w: storage.Writer.Write: %w", ErrWrite, err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("%w: storage.Writer.Close: %w", ErrWrite, err)
	}
	return nil
}

// DeleteObject deletes a cloud storage object, returns nil if the object was
// successfully deleted, or of the object doesn't exist.
func (gcs *GoogleCloudStorage) DeleteObject(ctx context.Context, bucket, key string) error {
	if err := gcs.client.Bucket(bucket).Object(key).Delete(ctx); err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			// Object doesn't exist; presumably already deleted.
			return nil
		}
		return fmt.Errorf("storage.DeleteObject: %w", err)
	}
	return nil
}

// GetObject returns the contents for the given object. If the object does not
// exist, it returns ErrNotFound.
func (gcs *GoogleCloudStorage) GetObject(ctx context.Context, bucket, key string) ([]byte, error) {
	r, err := gcs.client.Bucket(bucket).Object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to create object reader: %w", err)
	}
	defer r.Close()

	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to download bytes: %w", err)
	}
	return b, nil
}

// ListObjects iterates every object under prefix.
func (gcs *GoogleCloudStorage) ListObjects(ctx context.Context, bucket, prefix string) ([]*ObjectAttrs, error) {
	var objs []*ObjectAttrs

	it := gcs.client.Bucket(bucket).Objects(ctx, &storage.Query{Prefix: prefix})
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", err)
		}

		objs = append(objs, &ObjectAttrs{
			Key:          attrs.Name,
			Size:         attrs.Size,
			ETag:         attrs.Etag,
			MD5:          hex.EncodeToString(attrs.MD5),
			LastModified: attrs.Updated.UTC(),
		})
	}

	sortObjects(objs)
	return objs, nil
}
