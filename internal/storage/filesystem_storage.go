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
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Compile-time check to verify implements interface.
var (
	_ Blobstore = (*FilesystemStorage)(nil)
	_ Deleter   = (*FilesystemStorage)(nil)
)

// tempPrefix marks partially written files; they never show up in listings.
const tempPrefix = ".tmp-"

// FilesystemStorage implements Blobstore and provides the ability
// write files to the filesystem. The bucket is a directory and keys are paths
// below it. Metadata and content types are not persisted.
type FilesystemStorage struct{}

// NewFilesystemStorage creates a Blobsstore compatible storage for the
// filesystem.
func NewFilesystemStorage(_ context.Context) (Blobstore, error) {
	return &FilesystemStorage{}, nil
}

// CreateObject creates a new object or overwrites an existing one. The
// contents are written to a temporary file first and renamed into place, so
// readers never observe a partial object.
func (s *FilesystemStorage) CreateObject(_ context.Context, bucket, key string, contents []byte, _ bool, _ string, _ map[string]string) error {
	pth := filepath.Join(bucket, filepath.FromSlash(key))
	dir := filepath.Dir(pth)

	if _, err := os.Stat(bucket); err != nil {
		return fmt.Errorf("%w: bucket %s: %w", ErrWrite, bucket, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}

	f, err := os.CreateTemp(dir, tempPrefix)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	tmp := f.Name()

	if _, err := f.Write(contents); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if err := os.Rename(tmp, pth); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return nil
}

// DeleteObject deletes an object or does nothing if the object doesn't exist.
func (s *FilesystemStorage) DeleteObject(_ context.Context, bucket, key string) error {
	pth := filepath.Join(bucket, filepath.FromSlash(key))
	if err := os.Remove(pth); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("storage.DeleteObject: %w", err)
	}
	return nil
}

// GetObject returns the contents for the given object. If the object does not
// exist, it returns ErrNotFound.
func (s *FilesystemStorage) GetObject(_ context.Context, bucket, key string) ([]byte, error) {
	pth := filepath.Join(bucket, filepath.FromSlash(key))
	b, err := os.ReadFile(pth)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read %s: %w", pth, err)
	}
	return b, nil
}

// ListObjects walks the directory containing prefix and returns the files
// whose key begins with prefix.
func (s *FilesystemStorage) ListObjects(ctx context.Context, bucket, prefix string) ([]*ObjectAttrs, error) {
	var dir string
	if i := strings.LastIndex(prefix, "/"); i >= 0 {
		dir = prefix[:i]
	}
	root := filepath.Join(bucket, filepath.FromSlash(dir))

	var objs []*ObjectAttrs
	err := filepath.WalkDir(root, func(pth string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && pth == root {
				return fs.SkipDir
			}
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), tempPrefix) {
			return nil
		}

		rel, err := filepath.Rel(bucket, pth)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if !strings.HasPrefix(key, prefix) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		objs = append(objs, &ObjectAttrs{
			Key:          key,
			Size:         info.Size(),
			LastModified: info.ModTime().UTC(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", root, err)
	}

	sortObjects(objs)
	return objs, nil
}
