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
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"path"
	"strings"
	"sync"
	"time"
)

// Compile-time check to verify implements interface.
var (
	_ Blobstore = (*Memory)(nil)
	_ Deleter   = (*Memory)(nil)
)

// Memory implements Blobstore and provides the ability write files to
// memory.
type Memory struct {
	lock sync.Mutex
	data map[string]*memoryObject
}

type memoryObject struct {
	contents    []byte
	contentType string
	metadata    map[string]string
	modified    time.Time
}

// NewMemory creates a Blobstore that writes data in memory.
func NewMemory(_ context.Context) (Blobstore, error) {
	return &Memory{
		data: make(map[string]*memoryObject),
	}, nil
}

// CreateObject creates a new object or overwrites an existing one.
func (s *Memory) CreateObject(ctx context.Context, bucket, key string, contents []byte, _ bool, contentType string, metadata map[string]string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	md := make(map[string]string, len(metadata))
	for k, v := range metadata {
		md[k] = v
	}

	s.data[path.Join(bucket, key)] = &memoryObject{
		contents:    append([]byte(nil), contents...),
		contentType: contentType,
		metadata:    md,
		modified:    time.Now().UTC(),
	}
	return nil
}

// DeleteObject deletes an object. It returns nil if the object was deleted or
// if the object no longer exists.
func (s *Memory) DeleteObject(_ context.Context, bucket, key string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	delete(s.data, path.Join(bucket, key))
	return nil
}

// GetObject returns the contents for the given object. If the object does not
// exist, it returns ErrNotFound.
func (s *Memory) GetObject(_ context.Context, bucket, key string) ([]byte, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	v, ok := s.data[path.Join(bucket, key)]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v.contents...), nil
}

// ListObjects lists the objects in bucket whose key begins with prefix.
func (s *Memory) ListObjects(_ context.Context, bucket, prefix string) ([]*ObjectAttrs, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	root := path.Join(bucket) + "/"
	objs := make([]*ObjectAttrs, 0, len(s.data))
	for pth, obj := range s.data {
		if !strings.HasPrefix(pth, root) {
			continue
		}
		key := strings.TrimPrefix(pth, root)
		if !strings.HasPrefix(key, prefix) {
			continue
		}

		sum := md5.Sum(obj.contents)
		digest := hex.EncodeToString(sum[:])
		objs = append(objs, &ObjectAttrs{
			Key:          key,
			Size:         int64(len(obj.contents)),
			ETag:         digest,
			MD5:          digest,
			LastModified: obj.modified,
		})
	}
	sortObjects(objs)
	return objs, nil
}

// Metadata returns the metadata stored with the object, or nil if the object
// does not exist.
func (s *Memory) Metadata(bucket, key string) map[string]string {
	s.lock.Lock()
	defer s.lock.Unlock()

	v, ok := s.data[path.Join(bucket, key)]
	if !ok {
		return nil
	}
	md := make(map[string]string, len(v.metadata))
	for k, val := range v.metadata {
		md[k] = val
	}
	return md
}

// ContentType returns the content type stored with the object.
func (s *Memory) ContentType(bucket, key string) string {
	s.lock.Lock()
	defer s.lock.Unlock()

	if v, ok := s.data[path.Join(bucket, key)]; ok {
		return v.contentType
	}
	return ""
}

// SetLastModified overrides the modification time of an existing object.
func (s *Memory) SetLastModified(bucket, key string, t time.Time) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if v, ok := s.data[path.Join(bucket, key)]; ok {
		v.modified = t
	}
}
