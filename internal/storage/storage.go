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

// Package storage is an interface over object storage. The pipeline only ever
// adds or replaces objects; deletion is a separate capability that must be
// enabled explicitly.
package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

var (
	// ErrNotFound is the error returned when an object does not exist.
	ErrNotFound = errors.New("storage object not found")

	// ErrWrite is the error returned when an object could not be written.
	ErrWrite = errors.New("storage write failed")

	// ErrDeleteDisabled is returned by DeleterFor when deletion has not been
	// enabled in the configuration.
	ErrDeleteDisabled = errors.New("storage deletion is disabled")
)

// ObjectAttrs describes an object that exists in the store.
type ObjectAttrs struct {
	Key          string
	Size         int64
	ETag         string
	LastModified time.Time

	// MD5 is the hex-encoded content digest, when the backend can report one
	// without downloading the object.
	MD5 string
}

// Blobstore defines the minimum interface for a blob storage system. It
// deliberately has no way to remove data.
type Blobstore interface {
	// CreateObject creates or overwrites an object in the storage system. If
	// contentType is blank, the default for the chosen storage implementation
	// is used. Metadata keys are stored as provided where the backend allows.
	CreateObject(ctx context.Context, bucket, key string, contents []byte, cacheable bool, contentType string, metadata map[string]string) error

	// GetObject fetches the object's contents. It returns ErrNotFound if the
	// object does not exist.
	GetObject(ctx context.Context, bucket, key string) ([]byte, error)

	// ListObjects returns every object whose key starts with prefix, sorted by
	// key.
	ListObjects(ctx context.Context, bucket, prefix string) ([]*ObjectAttrs, error)
}

// Deleter is implemented by blobstores that can remove objects.
type Deleter interface {
	// DeleteObject deletes an object or does nothing if the object doesn't
	// exist.
	DeleteObject(ctx context.Context, bucket, key string) error
}

// BlobstoreFor returns the blobstore for the given configuration. Every call
// to it is recorded in the storage metrics.
func BlobstoreFor(ctx context.Context, cfg *Config) (Blobstore, error) {
	bs, err := newBlobstore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return instrument(bs, cfg.Type), nil
}

func newBlobstore(ctx context.Context, cfg *Config) (Blobstore, error) {
	switch typ := cfg.Type; typ {
	case BlobstoreTypeAWSS3:
		return NewAWSS3(ctx)
	case BlobstoreTypeS3Compatible:
		return NewS3Compatible(ctx, &cfg.S3Compatible)
	case BlobstoreTypeAzureBlobStorage:
		return NewAzureBlobstore(ctx, &cfg.Azure)
	case BlobstoreTypeGoogleCloudStorage:
		return NewGoogleCloudStorage(ctx)
	case BlobstoreTypeFilesystem:
		return NewFilesystemStorage(ctx)
	case BlobstoreTypeMemory:
		return NewMemory(ctx)
	default:
		return nil, fmt.Errorf("unknown blob store: %v", typ)
	}
}

// DeleterFor returns the delete capability of the given blobstore. It returns
// ErrDeleteDisabled unless deletion was enabled in cfg.
func DeleterFor(bs Blobstore, cfg *Config) (Deleter, error) {
	if cfg == nil || !cfg.AllowDelete {
		return nil, ErrDeleteDisabled
	}

	if i, ok := bs.(*instrumented); ok {
		if _, ok := i.next.(Deleter); !ok {
			return nil, fmt.Errorf("blobstore %T does not support deletion", i.next)
		}
	}

	d, ok := bs.(Deleter)
	if !ok {
		return nil, fmt.Errorf("blobstore %T does not support deletion", bs)
	}
	return d, nil
}

// ChildKey returns the name of key relative to prefix, and whether key is a
// direct child of prefix (no further path separators). The prefix is treated
// as a directory.
func ChildKey(prefix, key string) (string, bool) {
	prefix = DirPrefix(prefix)
	if !strings.HasPrefix(key, prefix) {
		return "", false
	}

	name := strings.TrimPrefix(key, prefix)
	if name == "" || strings.Contains(name, "/") {
		return "", false
	}
	return name, true
}

// DirPrefix normalizes prefix so that it ends with a single slash. An empty
// prefix stays empty and refers to the bucket root.
func DirPrefix(prefix string) string {
	prefix = strings.TrimLeft(prefix, "/")
	if prefix == "" {
		return ""
	}
	return strings.TrimRight(prefix, "/") + "/"
}

// JoinKey joins a directory prefix and an object name.
func JoinKey(prefix, name string) string {
	return DirPrefix(prefix) + strings.TrimLeft(name, "/")
}

func sortObjects(objs []*ObjectAttrs) {
	sort.Slice(objs, func(i, j int) bool {
		return objs[i].Key < objs[j].Key
	})
}

func cacheControl(cacheable bool) string {
	if cacheable {
		return "public, max-age=86400"
	}
	return "no-cache, max-age=0"
}

// etagMD5 returns the content digest carried by an S3-style ETag. Multipart
// uploads produce ETags that are not digests; those return "".
func etagMD5(etag string) string {
	etag = strings.Trim(etag, `"`)
	if len(etag) != 32 {
		return ""
	}
	for _, r := range etag {
		if !strings.ContainsRune("0123456789abcdef", r) {
			return ""
		}
	}
	return etag
}
