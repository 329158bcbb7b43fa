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
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// Compile-time check to verify implements interface.
var (
	_ Blobstore = (*S3Compatible)(nil)
	_ Deleter   = (*S3Compatible)(nil)
)

// S3Compatible implements Blobstore against any endpoint that speaks the S3
// API with static credentials, such as Cloudflare R2 or MinIO.
type S3Compatible struct {
	client *s3.Client
}

// NewS3Compatible creates a path-style S3 client for the configured endpoint.
func NewS3Compatible(_ context.Context, cfg *S3CompatibleConfig) (Blobstore, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("missing S3_ENDPOINT")
	}
	if cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
		return nil, fmt.Errorf("missing S3_ACCESS_KEY_ID or S3_SECRET_ACCESS_KEY")
	}

	client := s3.New(s3.Options{
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		BaseEndpoint: aws.String(cfg.Endpoint),
		Region:       cfg.Region,
		UsePathStyle: true,
	})

	return &S3Compatible{
		client: client,
	}, nil
}

// CreateObject creates a new object or overwrites an existing one.
func (s *S3Compatible) CreateObject(ctx context.Context, bucket, key string, contents []byte, cacheable bool, contentType string, metadata map[string]string) error {
	input := &s3.PutObjectInput{
		Bucket:       aws.String(bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(contents),
		CacheControl: aws.String(cacheControl(cacheable)),
		Metadata:     metadata,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("%w: put %s: %w", ErrWrite, key, err)
	}
	return nil
}

// DeleteObject deletes an object, returns nil if the object was successfully
// deleted, or of the object doesn't exist.
func (s *S3Compatible) DeleteObject(ctx context.Context, bucket, key string) error {
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("storage.DeleteObject: %w", err)
	}
	return nil
}

// GetObject returns the contents for the given object. If the object does not
// exist, it returns ErrNotFound.
func (s *S3Compatible) GetObject(ctx context.Context, bucket, key string) ([]byte, error) {
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get object: %w", err)
	}
	defer result.Body.Close()

	b, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read object: %w", err)
	}
	return b, nil
}

// ListObjects pages through every object under prefix.
func (s *S3Compatible) ListObjects(ctx context.Context, bucket, prefix string) ([]*ObjectAttrs, error) {
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	})

	var objs []*ObjectAttrs
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", err)
		}

		for _, o := range page.Contents {
			etag := aws.ToString(o.ETag)
			objs = append(objs, &ObjectAttrs{
				Key:          aws.ToString(o.Key),
				Size:         aws.ToInt64(o.Size),
				ETag:         etag,
				MD5:          etagMD5(etag),
				LastModified: aws.ToTime(o.LastModified).UTC(),
			})
		}
	}

	sortObjects(objs)
	return objs, nil
}
