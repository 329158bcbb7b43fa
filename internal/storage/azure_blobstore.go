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
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/Azure/azure-storage-blob-go/azblob"
	"github.com/Azure/go-autorest/autorest/adal"
	"github.com/laborstats/pipeline/pkg/logging"
	"go.opencensus.io/stats"
)

// Compile-time check to verify implements interface.
var (
	_ Blobstore = (*AzureBlobstore)(nil)
	_ Deleter   = (*AzureBlobstore)(nil)
)

// AzureBlobstore implements the Blob interface and provides the ability
// write files to Azure Blob Storage.
type AzureBlobstore struct {
	serviceURL *azblob.ServiceURL
}

func newAccessTokenCredential(accountName, accountKey string) (azblob.Credential, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("storage.newAccessTokenCredential: %w", err)
	}
	return credential, nil
}

func newMSITokenCredential(ctx context.Context, blobstoreURL string) (azblob.Credential, error) {
	logger := logging.FromContext(ctx).Named("storage.azure")

	msiEndpoint, err := adal.GetMSIVMEndpoint()
	if err != nil {
		return nil, fmt.Errorf("failed to get MSI endpoint: %w", err)
	}

	spt, err := adal.NewServicePrincipalTokenFromMSI(msiEndpoint, blobstoreURL)
	if err != nil {
		return nil, fmt.Errorf("failed to get service principal token from msi %v: %w", msiEndpoint, err)
	}

	tokenRefresher := func(credential azblob.TokenCredential) time.Duration {
		if err := spt.Refresh(); err != nil {
			logger.Errorw("failed to refresh access token", "error", err)
			stats.Record(ctx, mAzureRefreshFailed.M(1))
			return 0
		}

		token := spt.Token()
		credential.SetToken(token.AccessToken)

		exp := token.Expires().UTC().Sub(time.Now().UTC().Add(2 * time.Minute))
		if exp <= 0 {
			stats.Record(ctx, mAzureRefreshExpired.M(1))
			return 0
		}
		return exp
	}

	return azblob.NewTokenCredential("", tokenRefresher), nil
}

// NewAzureBlobstore creates a storage client for the configured account. The
// storage account key is used if provided, otherwise managed identity.
func NewAzureBlobstore(ctx context.Context, cfg *AzureConfig) (Blobstore, error) {
	if cfg.AccountName == "" {
		return nil, fmt.Errorf("missing AZURE_STORAGE_ACCOUNT")
	}

	primaryURLRaw := fmt.Sprintf("https://%s.blob.core.windows.net", cfg.AccountName)
	primaryURL, err := url.Parse(primaryURLRaw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL %v: %w", primaryURLRaw, err)
	}

	var credential azblob.Credential
	if cfg.AccessKey != "" {
		credential, err = newAccessTokenCredential(cfg.AccountName, cfg.AccessKey)
	} else {
		credential, err = newMSITokenCredential(ctx, primaryURLRaw)
	}
	if err != nil {
		return nil, err
	}

	p := azblob.NewPipeline(credential, azblob.PipelineOptions{})
	serviceURL := azblob.NewServiceURL(*primaryURL, p)

	return &AzureBlobstore{
		serviceURL: &serviceURL,
	}, nil
}

// CreateObject creates a new blobstore object or overwrites an existing one.
func (s *AzureBlobstore) CreateObject(ctx context.Context, container, name string, contents []byte, cacheable bool, contentType string, metadata map[string]string) error {
	blobURL := s.serviceURL.NewContainerURL(container).NewBlockBlobURL(name)

	sum := md5.Sum(contents)
	headers := azblob.BlobHTTPHeaders{
		CacheControl: cacheControl(cacheable),
		ContentMD5:   sum[:],
	}
	if contentType != "" {
		headers.ContentType = contentType
	}

	if _, err := azblob.UploadBufferToBlockBlob(ctx, contents, blobURL, azblob.UploadToBlockBlobOptions{
		BlobHTTPHeaders: headers,
		Metadata:        azblob.Metadata(metadata),
	}); err != nil {
		return fmt.Errorf("%w: upload %s: %w", ErrWrite, name, err)
	}
	return nil
}

// DeleteObject deletes a blobstore object, returns nil if the object was
// successfully deleted, or if the object doesn't exist.
func (s *AzureBlobstore) DeleteObject(ctx context.Context, container, name string) error {
	blobURL := s.serviceURL.NewContainerURL(container).NewBlockBlobURL(name)
	if _, err := blobURL.Delete(ctx, azblob.DeleteSnapshotsOptionInclude, azblob.BlobAccessConditions{}); err != nil {
		if isAzureNotFound(err) {
			return nil
		}
		return fmt.Errorf("storage.DeleteObject: %w", err)
	}
	return nil
}

// GetObject returns the contents for the given object. If the object does not
// exist, it returns ErrNotFound.
func (s *AzureBlobstore) GetObject(ctx context.Context, container, name string) ([]byte, error) {
	blobURL := s.serviceURL.NewContainerURL(container).NewBlockBlobURL(name)
	dr, err := blobURL.Download(ctx, 0, azblob.CountToEnd, azblob.BlobAccessConditions{}, false, azblob.ClientProvidedKeyOptions{})
	if err != nil {
		if isAzureNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to download object: %w", err)
	}

	body := dr.Body(azblob.RetryReaderOptions{MaxRetryRequests: 5})
	defer body.Close()

	var b bytes.Buffer
	if _, err := io.Copy(&b, body); err != nil {
		return nil, fmt.Errorf("failed to read object: %w", err)
	}
	return b.Bytes(), nil
}

// ListObjects pages through every blob under prefix.
func (s *AzureBlobstore) ListObjects(ctx context.Context, container, prefix string) ([]*ObjectAttrs, error) {
	containerURL := s.serviceURL.NewContainerURL(container)

	var objs []*ObjectAttrs
	for marker := (azblob.Marker{}); marker.NotDone(); {
		resp, err := containerURL.ListBlobsFlatSegment(ctx, marker, azblob.ListBlobsSegmentOptions{
			Prefix: prefix,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list blobs: %w", err)
		}
		marker = resp.NextMarker

		for _, item := range resp.Segment.BlobItems {
			var size int64
			if item.Properties.ContentLength != nil {
				size = *item.Properties.ContentLength
			}
			objs = append(objs, &ObjectAttrs{
				Key:          item.Name,
				Size:         size,
				ETag:         string(item.Properties.Etag),
				MD5:          hex.EncodeToString(item.Properties.ContentMD5),
				LastModified: item.Properties.LastModified.UTC(),
			})
		}
	}

	sortObjects(objs)
	return objs, nil
}

func isAzureNotFound(err error) bool {
	var serr azblob.StorageError
	if !errors.As(err, &serr) {
		return false
	}
	code := serr.ServiceCode()
	return code == azblob.ServiceCodeBlobNotFound || code == azblob.ServiceCodeContainerNotFound
}
