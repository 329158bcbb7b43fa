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

// Package bls lists and downloads files from the labor statistics archive
// directory.
package bls

import (
	"context"
	"fmt"
	"time"
	_ "time/tzdata"

	"github.com/laborstats/pipeline/internal/fetch"
	"github.com/laborstats/pipeline/pkg/logging"
)

// RemoteFile describes a file published in the archive listing.
type RemoteFile struct {
	Name         string    `json:"name"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified,omitempty"`
	URL          string    `json:"url"`

	// MD5 is the hex content digest, when the archive publishes one. The
	// directory listing does not, so this is usually empty.
	MD5 string `json:"md5,omitempty"`
}

// Config configures access to the archive.
type Config struct {
	URL string `env:"BLS_URL, default=https://download.bls.gov/pub/time.series/pr/"`

	// MaxListingBytes and MaxFileBytes cap the size of the directory listing
	// and of each archive file.
	MaxListingBytes int64 `env:"BLS_MAX_LISTING_BYTES, default=1048576"`
	MaxFileBytes    int64 `env:"MAX_FILE_BYTES, default=268435456"`

	ListingTimeout  time.Duration `env:"BLS_LISTING_TIMEOUT, default=30s"`
	DownloadTimeout time.Duration `env:"BLS_DOWNLOAD_TIMEOUT, default=2m"`

	// ListingTimeZone is the zone of the server's listing timestamps. The
	// archive server shows US Eastern local time.
	ListingTimeZone string `env:"BLS_LISTING_TZ, default=America/New_York"`
}

// ListingLocation resolves ListingTimeZone. An empty zone is UTC.
func (c *Config) ListingLocation() (*time.Location, error) {
	loc, err := time.LoadLocation(c.ListingTimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid BLS_LISTING_TZ %q: %w", c.ListingTimeZone, err)
	}
	return loc, nil
}

// Client reads the archive.
type Client struct {
	fetcher *fetch.Client
	config  *Config
}

// NewClient creates a new archive client.
func NewClient(fetcher *fetch.Client, config *Config) *Client {
	return &Client{
		fetcher: fetcher,
		config:  config,
	}
}

// ListFiles downloads and parses the directory listing. Subdirectories and
// navigation links are not returned.
func (c *Client) ListFiles(ctx context.Context) ([]*RemoteFile, error) {
	logger := logging.FromContext(ctx).Named("bls.ListFiles")

	b, err := c.fetcher.Get(ctx, c.config.URL, "*/*", c.config.ListingTimeout, c.config.MaxListingBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to download listing: %w", err)
	}

	loc, err := c.config.ListingLocation()
	if err != nil {
		return nil, err
	}

	files, err := ParseListing(c.config.URL, b, loc)
	if err != nil {
		return nil, err
	}

	logger.Debugw("parsed listing", "url", c.config.URL, "files", len(files))
	return files, nil
}

// Download fetches the contents of a single file.
func (c *Client) Download(ctx context.Context, f *RemoteFile) ([]byte, error) {
	return c.fetcher.Get(ctx, f.URL, "*/*", c.config.DownloadTimeout, c.config.MaxFileBytes)
}
